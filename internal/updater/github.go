package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sjzar/advshortcut/internal/errors"
)

const (
	DefaultEndpoint = "https://api.github.com"
	checkTimeout    = 5 * time.Second
	maxNotesLength  = 4000
)

// GitHubChecker looks up the latest release of Repo ("owner/name").
type GitHubChecker struct {
	Repo           string
	Endpoint       string
	CurrentVersion string
	// AssetName overrides the platform asset name.
	AssetName string
	Client    *http.Client
	// Install replaces the running binary with the downloaded file.
	Install func(path string) error
}

type githubRelease struct {
	TagName     string        `json:"tag_name"`
	HTMLURL     string        `json:"html_url"`
	Body        string        `json:"body"`
	PublishedAt string        `json:"published_at"`
	Draft       bool          `json:"draft"`
	Assets      []githubAsset `json:"assets"`
}

type githubAsset struct {
	Name               string `json:"name"`
	Size               uint64 `json:"size"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// PlatformAssetName is the release asset built for this OS/arch.
func PlatformAssetName() string {
	name := fmt.Sprintf("advshortcut_%s_%s", runtime.GOOS, runtime.GOARCH)
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return name
}

func (g *GitHubChecker) client() *http.Client {
	if g.Client != nil {
		return g.Client
	}
	return http.DefaultClient
}

// Check queries /repos/{repo}/releases/latest. A missing repository setting
// or release is reported as ErrNoReleaseChannel.
func (g *GitHubChecker) Check(ctx context.Context) (Candidate, error) {
	if strings.TrimSpace(g.Repo) == "" {
		return nil, errors.ErrNoReleaseChannel
	}
	endpoint := g.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/repos/%s/releases/latest", strings.TrimRight(endpoint, "/"), g.Repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.UpdateCheckFailed(err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "advshortcut/"+g.CurrentVersion)

	resp, err := g.client().Do(req)
	if err != nil {
		return nil, errors.UpdateCheckFailed(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.ErrNoReleaseChannel
	case resp.StatusCode != http.StatusOK:
		return nil, errors.UpdateCheckFailed(fmt.Errorf("GitHub API returned %d", resp.StatusCode))
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, errors.Update(errors.ErrNoReleaseChannel.Message, err)
	}
	if release.TagName == "" || release.Draft {
		return nil, errors.ErrNoReleaseChannel
	}

	log.Debug().Str("latest", release.TagName).Str("current", g.CurrentVersion).Msg("release fetched")
	if !IsNewer(release.TagName, g.CurrentVersion) {
		return nil, nil
	}

	assetName := g.AssetName
	if assetName == "" {
		assetName = PlatformAssetName()
	}
	cand := &httpCandidate{
		version: NormalizeVersion(release.TagName),
		body:    truncate(release.Body, maxNotesLength),
		date:    release.PublishedAt,
		client:  g.client(),
		install: g.Install,
	}
	for _, a := range release.Assets {
		switch {
		case a.Name == assetName:
			cand.assetURL = a.BrowserDownloadURL
			cand.assetSize = a.Size
			cand.assetName = a.Name
		case a.Name == "checksums.txt" || a.Name == assetName+".sha256":
			cand.checksumURL = a.BrowserDownloadURL
		}
	}
	return cand, nil
}
