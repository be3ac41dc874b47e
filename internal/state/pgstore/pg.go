// Package pgstore keeps the application document in PostgreSQL as a JSONB
// row of the app_state table. Several processes can share one database;
// Update serializes them with a row lock.
package pgstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/contactkeeper/internal/dbx"
	"github.com/dmitrijs2005/contactkeeper/internal/models"
	"github.com/dmitrijs2005/contactkeeper/internal/state"

	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Store struct {
	db  *sql.DB
	key string
}

// Open connects with the pgx driver, checks the connection and applies
// migrations.
func Open(ctx context.Context, dsn, key string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db, key), nil
}

// Migrate creates or upgrades the app_state table.
func Migrate(ctx context.Context, db *sql.DB) error {
	return dbx.Migrate(ctx, db, "pgx", migrations, "migrations")
}

// New wraps a migrated database.
func New(db *sql.DB, key string) *Store {
	if key == "" {
		key = state.DefaultKey
	}
	return &Store{db: db, key: key}
}

func (s *Store) Load(ctx context.Context) (*models.AppState, error) {
	data, err := get(ctx, s.db, s.key, false)
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

// Update locks the row with SELECT ... FOR UPDATE for the whole cycle.
func (s *Store) Update(ctx context.Context, fn func(*models.AppState) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO app_state (key, value) VALUES ($1, 'null'::jsonb) ON CONFLICT (key) DO NOTHING`,
			s.key); err != nil {
			return fmt.Errorf("failed to init state[%s]: %w", s.key, err)
		}
		data, err := get(ctx, tx, s.key, true)
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

func get(ctx context.Context, db dbx.DBTX, key string, lock bool) ([]byte, error) {
	q := `SELECT value FROM app_state WHERE key = $1`
	if lock {
		q += ` FOR UPDATE`
	}
	var value []byte
	err := db.QueryRowContext(ctx, q, key).Scan(&value)
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
		INSERT INTO app_state (key, value, updated_at) VALUES ($1, $2::jsonb, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("failed to set state[%s]: %w", key, err)
	}
	return nil
}
