package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/model"
	"github.com/sjzar/advshortcut/pkg/util"
)

//go:embed migrations/*.sql
var migrations embed.FS

var gooseMu sync.Mutex

// SQLite keeps the collections in two tables; actions are stored as JSON.
// Saves replace a whole table inside one transaction.
type SQLite struct {
	db      *sql.DB
	path    string
	backups *Backups
}

func NewSQLite(path string, backups *Backups) (*SQLite, error) {
	if err := util.PrepareDir(filepath.Dir(path)); err != nil {
		return nil, errors.FileWriteFailed(path, err)
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Storage("open database", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Storage("ping database", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, errors.Storage("run migrations", err)
	}
	log.Debug().Str("path", path).Msg("sqlite storage ready")
	return &SQLite{db: db, path: path, backups: backups}, nil
}

func migrate(db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.Up(db, "migrations")
}

type gooseLogger struct{}

func (gooseLogger) Fatalf(format string, v ...interface{}) { log.Error().Msgf(format, v...) }
func (gooseLogger) Printf(format string, v ...interface{}) { log.Debug().Msgf(format, v...) }

func (s *SQLite) Type() string { return TypeSQLite }
func (s *SQLite) Path() string { return s.path }
func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Load(ctx context.Context) (*model.AppData, error) {
	data, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(data.Groups) == 0 {
		data.Groups = model.DefaultAppData().Groups
		if err := s.SaveGroups(ctx, data.Groups); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func (s *SQLite) load(ctx context.Context) (*model.AppData, error) {
	data := &model.AppData{Shortcuts: []model.Shortcut{}, Groups: []model.Group{}}

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, icon, group_id, actions, sort_order, created_at, updated_at
		FROM shortcuts ORDER BY group_id, sort_order, id`)
	if err != nil {
		return nil, errors.Storage("query shortcuts", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sc model.Shortcut
		var actions string
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.Icon, &sc.GroupID, &actions, &sc.Order, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return nil, errors.Storage("scan shortcut", err)
		}
		if err := json.Unmarshal([]byte(actions), &sc.Actions); err != nil {
			return nil, errors.Storage(fmt.Sprintf("decode actions of shortcut %s", sc.ID), err)
		}
		data.Shortcuts = append(data.Shortcuts, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("query shortcuts", err)
	}

	grows, err := s.db.QueryContext(ctx, `SELECT id, name, color, icon, sort_order, is_expanded
		FROM shortcut_groups ORDER BY sort_order, id`)
	if err != nil {
		return nil, errors.Storage("query groups", err)
	}
	defer grows.Close()
	for grows.Next() {
		var g model.Group
		if err := grows.Scan(&g.ID, &g.Name, &g.Color, &g.Icon, &g.Order, &g.IsExpanded); err != nil {
			return nil, errors.Storage("scan group", err)
		}
		data.Groups = append(data.Groups, g)
	}
	if err := grows.Err(); err != nil {
		return nil, errors.Storage("query groups", err)
	}
	return data, nil
}

func (s *SQLite) backup(ctx context.Context) {
	if s.backups == nil {
		return
	}
	data, err := s.load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("read data for backup failed")
		return
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return
	}
	if _, err := s.backups.Save(raw); err != nil {
		log.Warn().Err(err).Msg("backup before save failed")
	}
}

func (s *SQLite) SaveShortcuts(ctx context.Context, shortcuts []model.Shortcut) error {
	s.backup(ctx)
	err := s.replace(ctx, "shortcuts", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO shortcuts
			(id, name, icon, group_id, actions, sort_order, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, sc := range shortcuts {
			actions, err := json.Marshal(sc.Actions)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, sc.ID, sc.Name, sc.Icon, sc.GroupID, string(actions), sc.Order, sc.CreatedAt, sc.UpdatedAt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.StorageSaveFailed("shortcuts", err)
	}
	return nil
}

func (s *SQLite) SaveGroups(ctx context.Context, groups []model.Group) error {
	s.backup(ctx)
	err := s.replace(ctx, "shortcut_groups", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO shortcut_groups
			(id, name, color, icon, sort_order, is_expanded) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, g := range groups {
			if _, err := stmt.ExecContext(ctx, g.ID, g.Name, g.Color, g.Icon, g.Order, g.IsExpanded); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.StorageSaveFailed("groups", err)
	}
	return nil
}

func (s *SQLite) replace(ctx context.Context, table string, insert func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return err
	}
	if err := insert(tx); err != nil {
		return err
	}
	return tx.Commit()
}
