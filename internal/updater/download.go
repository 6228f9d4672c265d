package updater

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sjzar/advshortcut/internal/errors"
)

const chunkSize = 32 * 1024

type httpCandidate struct {
	version     string
	body        string
	date        string
	assetName   string
	assetURL    string
	assetSize   uint64
	checksumURL string
	client      *http.Client
	install     func(path string) error
}

func (c *httpCandidate) Version() string { return c.version }
func (c *httpCandidate) Body() string    { return c.body }
func (c *httpCandidate) Date() string    { return c.date }

// DownloadAndInstall streams the platform asset to a temp file, verifies it
// against the published checksum when there is one, and installs it.
func (c *httpCandidate) DownloadAndInstall(ctx context.Context) <-chan DownloadEvent {
	events := make(chan DownloadEvent)
	go func() {
		defer close(events)
		send := func(ev DownloadEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		path, err := c.download(ctx, send)
		if path != "" {
			defer os.Remove(path)
		}
		if err != nil {
			send(Failed{Err: err})
			return
		}
		if !send(Finished{}) {
			return
		}

		if c.checksumURL != "" {
			if err := c.verify(ctx, path); err != nil {
				send(Failed{Err: err})
				return
			}
		}

		install := c.install
		if install == nil {
			install = Install
		}
		if err := install(path); err != nil {
			send(Failed{Err: errors.UpdateInstallFailed(err)})
		}
	}()
	return events
}

func (c *httpCandidate) download(ctx context.Context, send func(DownloadEvent) bool) (string, error) {
	if c.assetURL == "" {
		return "", errors.UpdateDownloadFailed(fmt.Errorf("release %s has no asset %s", c.version, PlatformAssetName()))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.assetURL, nil)
	if err != nil {
		return "", errors.UpdateDownloadFailed(err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.UpdateDownloadFailed(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", errors.UpdateDownloadFailed(fmt.Errorf("download returned %d", resp.StatusCode))
	}

	total := c.assetSize
	if resp.ContentLength > 0 {
		total = uint64(resp.ContentLength)
	}
	if !send(Started{ContentLength: total}) {
		return "", ctx.Err()
	}

	f, err := os.CreateTemp("", "advshortcut-update-*")
	if err != nil {
		return "", errors.UpdateDownloadFailed(err)
	}
	path := f.Name()
	defer f.Close()

	buf := make([]byte, chunkSize)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := f.Write(buf[:n]); err != nil {
				return path, errors.FileWriteFailed(path, err)
			}
			if !send(Progress{ChunkLength: uint64(n)}) {
				return path, ctx.Err()
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return path, errors.UpdateDownloadFailed(rerr)
		}
	}
	if err := f.Chmod(0o755); err != nil {
		log.Debug().Err(err).Msg("chmod update binary")
	}
	log.Debug().Str("path", path).Msg("update downloaded")
	return path, nil
}

// verify compares the sha256 of path with the checksum listed for the asset.
// Both "checksums.txt" (sha  name per line) and single-hash files are read.
func (c *httpCandidate) verify(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.checksumURL, nil)
	if err != nil {
		return errors.UpdateDownloadFailed(err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return errors.UpdateDownloadFailed(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.UpdateDownloadFailed(fmt.Errorf("checksum download returned %d", resp.StatusCode))
	}

	want := ""
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		switch {
		case len(fields) == 1:
			want = fields[0]
		case len(fields) >= 2 && strings.TrimPrefix(fields[1], "*") == c.assetName:
			want = fields[0]
		}
		if want != "" {
			break
		}
	}
	if want == "" {
		return errors.UpdateDownloadFailed(fmt.Errorf("no checksum listed for %s", c.assetName))
	}

	got, err := fileSHA256(path)
	if err != nil {
		return errors.FileReadFailed(path, err)
	}
	if !strings.EqualFold(got, want) {
		return errors.UpdateDownloadFailed(fmt.Errorf("checksum mismatch: got %s, want %s", got, want))
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
