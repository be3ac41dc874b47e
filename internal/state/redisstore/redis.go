// Package redisstore keeps the application document as a JSON string under a
// single Redis key, so several processes can share one datastore.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/contactkeeper/internal/models"
	"github.com/dmitrijs2005/contactkeeper/internal/state"
	"github.com/redis/go-redis/v9"
)

// maxRetries bounds optimistic Update attempts when the key changes under WATCH.
const maxRetries = 10

var ErrTooManyConflicts = errors.New("state key kept changing during update")

type Store struct {
	rdb *redis.Client
	key string
}

type Options struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// Open connects and pings the server.
func Open(ctx context.Context, o Options) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     o.Addr,
		Password: o.Password,
		DB:       o.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return New(rdb, o.Key), nil
}

// New wraps an existing client.
func New(rdb *redis.Client, key string) *Store {
	if key == "" {
		key = state.DefaultKey
	}
	return &Store{rdb: rdb, key: key}
}

func (s *Store) Load(ctx context.Context) (*models.AppState, error) {
	data, err := get(ctx, s.rdb, s.key)
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
	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set state[%s]: %w", s.key, err)
	}
	return nil
}

// Update uses WATCH/MULTI: the write only lands if nobody touched the key
// since it was read, otherwise the cycle is retried.
func (s *Store) Update(ctx context.Context, fn func(*models.AppState) error) error {
	txf := func(tx *redis.Tx) error {
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
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, out, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, s.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrTooManyConflicts
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func get(ctx context.Context, c getter, key string) ([]byte, error) {
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get state[%s]: %w", key, err)
	}
	return data, nil
}
