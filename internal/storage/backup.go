package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/model"
	"github.com/sjzar/advshortcut/pkg/util"
	"github.com/sjzar/advshortcut/pkg/util/lz4"
	"github.com/sjzar/advshortcut/pkg/util/zstd"
)

type Codec string

const (
	CodecZstd Codec = "zstd"
	CodecLZ4  Codec = "lz4"
)

const (
	backupPrefix     = "data-"
	backupTimeLayout = "20060102T150405.000000"
)

func ParseCodec(s string) (Codec, error) {
	switch Codec(strings.ToLower(s)) {
	case CodecZstd, "zst", "":
		return CodecZstd, nil
	case CodecLZ4:
		return CodecLZ4, nil
	}
	return "", errors.InvalidParam("storage.compression", "unknown codec "+s)
}

func (c Codec) Ext() string {
	if c == CodecLZ4 {
		return ".json.lz4"
	}
	return ".json.zst"
}

func (c Codec) compress(b []byte) ([]byte, error) {
	if c == CodecLZ4 {
		return lz4.Compress(b)
	}
	return zstd.Compress(b), nil
}

func codecOf(name string) (Codec, bool) {
	switch {
	case strings.HasSuffix(name, CodecZstd.Ext()):
		return CodecZstd, true
	case strings.HasSuffix(name, CodecLZ4.Ext()):
		return CodecLZ4, true
	}
	return "", false
}

// BackupFile describes one snapshot in the backup directory.
type BackupFile struct {
	Name  string    `json:"name"`
	Path  string    `json:"path"`
	Size  int64     `json:"size"`
	Time  time.Time `json:"time"`
	Codec Codec     `json:"codec"`
}

// Backups keeps the Keep most recent compressed snapshots of the data.
type Backups struct {
	Dir   string
	Keep  int
	Codec Codec
	Now   func() time.Time
}

func NewBackups(dir string, keep int, codec string) (*Backups, error) {
	c, err := ParseCodec(codec)
	if err != nil {
		return nil, err
	}
	if keep <= 0 {
		keep = DefaultBackups
	}
	return &Backups{Dir: dir, Keep: keep, Codec: c, Now: time.Now}, nil
}

// Save stores content as a new snapshot and prunes the oldest ones.
func (b *Backups) Save(content []byte) (string, error) {
	if err := util.PrepareDir(b.Dir); err != nil {
		return "", errors.FileWriteFailed(b.Dir, err)
	}
	packed, err := b.Codec.compress(content)
	if err != nil {
		return "", errors.Storage("compress backup", err)
	}
	name := backupPrefix + b.Now().UTC().Format(backupTimeLayout) + b.Codec.Ext()
	path := filepath.Join(b.Dir, name)
	if err := util.WriteFileAtomic(path, packed, 0644); err != nil {
		return "", errors.FileWriteFailed(path, err)
	}
	if err := b.prune(); err != nil {
		log.Warn().Err(err).Msg("prune backups failed")
	}
	log.Debug().Str("backup", name).Int("size", len(packed)).Msg("backup saved")
	return name, nil
}

// List returns the snapshots, newest first.
func (b *Backups) List() ([]BackupFile, error) {
	entries, err := os.ReadDir(b.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.FileReadFailed(b.Dir, err)
	}
	var files []BackupFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), backupPrefix) {
			continue
		}
		codec, ok := codecOf(e.Name())
		if !ok {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(e.Name(), backupPrefix), codec.Ext())
		ts, err := time.Parse(backupTimeLayout, stamp)
		if err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, BackupFile{
			Name:  e.Name(),
			Path:  filepath.Join(b.Dir, e.Name()),
			Size:  info.Size(),
			Time:  ts,
			Codec: codec,
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Time.After(files[j].Time) })
	return files, nil
}

func (b *Backups) prune() error {
	files, err := b.List()
	if err != nil {
		return err
	}
	for i := b.Keep; i < len(files); i++ {
		if err := os.Remove(files[i].Path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Read returns the decompressed content of backup name, or of the newest
// backup when name is empty or "latest".
func (b *Backups) Read(name string) ([]byte, error) {
	if name == "" || name == "latest" {
		files, err := b.List()
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, errors.NotFound("backup", nil)
		}
		name = files[0].Name
	}
	name = filepath.Base(name)
	codec, ok := codecOf(name)
	if !ok {
		return nil, errors.InvalidParam("backup", fmt.Sprintf("%s is not a backup file", name))
	}
	path := filepath.Join(b.Dir, name)
	packed, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileNotFound(path)
		}
		return nil, errors.FileReadFailed(path, err)
	}
	if codec == CodecLZ4 {
		return lz4.Decompress(packed)
	}
	return zstd.Decompress(packed)
}

// Restore decodes backup name into app data. The caller decides where to
// put it, usually store.Replace.
func (b *Backups) Restore(name string) (*model.AppData, error) {
	content, err := b.Read(name)
	if err != nil {
		return nil, err
	}
	var data model.AppData
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, errors.Storage("decode backup "+name, err)
	}
	data.Normalize()
	return &data, nil
}
