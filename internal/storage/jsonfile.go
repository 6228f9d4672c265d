package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/model"
	"github.com/sjzar/advshortcut/pkg/util"
)

// JSONFile stores AppData as one indented JSON document. Each save rewrites
// the whole file; the other collection is taken from the file as it is.
type JSONFile struct {
	path    string
	backups *Backups

	mu       sync.Mutex
	lastHash uint64
	hashMu   sync.RWMutex
}

func NewJSONFile(path string, backups *Backups) *JSONFile {
	return &JSONFile{path: path, backups: backups}
}

func (f *JSONFile) Type() string { return TypeJSON }
func (f *JSONFile) Path() string { return f.path }
func (f *JSONFile) Close() error { return nil }

// Known reports whether content is what this backend last read or wrote.
func (f *JSONFile) Known(content []byte) bool {
	f.hashMu.RLock()
	defer f.hashMu.RUnlock()
	return f.lastHash != 0 && xxhash.Sum64(content) == f.lastHash
}

func (f *JSONFile) remember(content []byte) {
	f.hashMu.Lock()
	f.lastHash = xxhash.Sum64(content)
	f.hashMu.Unlock()
}

// Load reads the data file, creating it with the default data when absent.
func (f *JSONFile) Load(ctx context.Context) (*model.AppData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	data, raw, err := f.read()
	if err != nil {
		return nil, err
	}
	if raw == nil {
		log.Info().Str("path", f.path).Msg("data file not found, creating default")
		if err := f.write(data, nil); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func (f *JSONFile) SaveShortcuts(ctx context.Context, shortcuts []model.Shortcut) error {
	return f.update(ctx, "shortcuts", func(d *model.AppData) {
		d.Shortcuts = model.CloneShortcuts(shortcuts)
	})
}

func (f *JSONFile) SaveGroups(ctx context.Context, groups []model.Group) error {
	return f.update(ctx, "groups", func(d *model.AppData) {
		d.Groups = model.CloneGroups(groups)
	})
}

func (f *JSONFile) update(ctx context.Context, collection string, fn func(*model.AppData)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	data, raw, err := f.read()
	if err != nil {
		return errors.StorageSaveFailed(collection, err)
	}
	fn(data)
	if err := f.write(data, raw); err != nil {
		return errors.StorageSaveFailed(collection, err)
	}
	return nil
}

// read returns the decoded file and its raw bytes; raw is nil when the file
// does not exist and data is then the default.
func (f *JSONFile) read() (*model.AppData, []byte, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultAppData(), nil, nil
		}
		return nil, nil, errors.FileReadFailed(f.path, err)
	}
	var data model.AppData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, nil, errors.Storage("decode "+f.path, err)
	}
	f.remember(raw)
	return &data, raw, nil
}

func (f *JSONFile) write(data *model.AppData, prev []byte) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errors.Storage("encode app data", err)
	}
	if f.backups != nil && prev != nil && !bytes.Equal(prev, out) {
		if _, err := f.backups.Save(prev); err != nil {
			log.Warn().Err(err).Msg("backup before save failed")
		}
	}
	// remember first so a watcher racing the rename sees our own content
	f.remember(out)
	if err := util.WriteFileAtomic(f.path, out, 0644); err != nil {
		return errors.FileWriteFailed(f.path, err)
	}
	return nil
}
