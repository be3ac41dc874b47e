// Package sqlitestore keeps the application document in a local SQLite
// database (pure-Go modernc driver), one row of the kv_store table per slot.
package sqlitestore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/contactkeeper/internal/dbx"
	"github.com/dmitrijs2005/contactkeeper/internal/filex"
	"github.com/dmitrijs2005/contactkeeper/internal/models"
	"github.com/dmitrijs2005/contactkeeper/internal/state"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Store struct {
	db  *sql.DB
	key string
}

// Open opens (or creates) the database at dsn and applies migrations. For a
// plain file path the parent directory is created first.
func Open(ctx context.Context, dsn, key string) (*Store, error) {
	if isFilePath(dsn) {
		if _, err := filex.EnsureParentDir(dsn); err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s, err := New(ctx, db, key)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	// one writer at a time keeps concurrent Update calls from hitting SQLITE_BUSY
	db.SetMaxOpenConns(1)
	return s, nil
}

// isFilePath reports whether dsn names a file on disk rather than an
// in-memory database or a file: URI.
func isFilePath(dsn string) bool {
	return dsn != "" && !strings.HasPrefix(dsn, ":memory:") && !strings.HasPrefix(dsn, "file:")
}

// New wraps an already opened database and applies migrations.
func New(ctx context.Context, db *sql.DB, key string) (*Store, error) {
	if key == "" {
		key = state.DefaultKey
	}
	if err := dbx.Migrate(ctx, db, "sqlite3", migrations, "migrations"); err != nil {
		return nil, err
	}
	return &Store{db: db, key: key}, nil
}

func (s *Store) Load(ctx context.Context) (*models.AppState, error) {
	data, err := get(ctx, s.db, s.key)
	if err != nil {
		return nil, err
	}
	return state.Decode(data)
}

func (s *Store) Save(ctx context.Context, st *models.AppState) error {
	data, err := state.Encode(st)
	if err != nil {
		return err
	}
	return set(ctx, s.db, s.key, data)
}

// Update runs the read-modify-write cycle in one transaction. The initial
// insert takes SQLite's write lock before the document is read.
func (s *Store) Update(ctx context.Context, fn func(*models.AppState) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO kv_store (key, value) VALUES (?, ?) ON CONFLICT(key) DO NOTHING`,
			s.key, []byte{}); err != nil {
			return fmt.Errorf("failed to lock state[%s]: %w", s.key, err)
		}
		data, err := get(ctx, tx, s.key)
		if err != nil {
			return err
		}
		st, err := state.Decode(data)
		if err != nil {
			return err
		}
		if err := fn(st); err != nil {
			return err
		}
		out, err := state.Encode(st)
		if err != nil {
			return err
		}
		return set(ctx, tx, s.key, out)
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}

func get(ctx context.Context, db dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get state[%s]: %w", key, err)
	}
	return value, nil
}

func set(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set state[%s]: %w", key, err)
	}
	return nil
}
