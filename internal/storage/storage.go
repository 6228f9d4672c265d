// Package storage persists the shortcut and group collections.
package storage

import (
	"path/filepath"
	"strings"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/store"
	"github.com/sjzar/advshortcut/pkg/util"
)

const (
	TypeJSON   = "json"
	TypeSQLite = "sqlite"

	DataFileName   = "data.json"
	SQLiteFileName = "data.db"
	BackupDirName  = "backups"

	DefaultBackups = 10
)

// Backend is a store.Backend with a location on disk.
type Backend interface {
	store.Backend
	Type() string
	Path() string
	Close() error
}

type Options struct {
	DataDir     string
	Type        string
	Backups     int
	Compression string
}

func (o Options) withDefaults() Options {
	if o.DataDir == "" {
		o.DataDir = util.DefaultDataDir()
	}
	o.Type = strings.ToLower(strings.TrimSpace(o.Type))
	if o.Type == "" {
		o.Type = TypeJSON
	}
	if o.Compression == "" {
		o.Compression = string(CodecZstd)
	}
	return o
}

// BackupDir is where rotating backups of the data dir are kept.
func BackupDir(dataDir string) string {
	return filepath.Join(dataDir, BackupDirName)
}

// Open returns the backend selected by opts.Type.
func Open(opts Options) (Backend, error) {
	opts = opts.withDefaults()
	if err := util.PrepareDir(opts.DataDir); err != nil {
		return nil, errors.FileWriteFailed(opts.DataDir, err)
	}

	var backups *Backups
	if opts.Backups > 0 {
		var err error
		backups, err = NewBackups(BackupDir(opts.DataDir), opts.Backups, opts.Compression)
		if err != nil {
			return nil, err
		}
	}

	switch opts.Type {
	case TypeJSON:
		return NewJSONFile(filepath.Join(opts.DataDir, DataFileName), backups), nil
	case TypeSQLite:
		return NewSQLite(filepath.Join(opts.DataDir, SQLiteFileName), backups)
	default:
		return nil, errors.InvalidParam("storage.type", "unknown storage type "+opts.Type)
	}
}
