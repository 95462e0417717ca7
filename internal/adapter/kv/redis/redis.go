// Package redis implements kv.Store on top of a Redis server.
//
// Listing uses SCAN, which pages through the keyspace without blocking the
// server. SCAN gives no ordering guarantee and may return a key more than
// once; callers that need order sort the drained result.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/vadimbarashkov/url-shortener-kv/internal/adapter/kv"
)

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

type Store struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// List runs one SCAN iteration over keys matching prefix.
func (s *Store) List(ctx context.Context, prefix, cursor string, limit int) (kv.Page, error) {
	const op = "adapter.kv.redis.Store.List"

	if limit <= 0 {
		return kv.Page{}, fmt.Errorf("%s: limit must be positive, got %d", op, limit)
	}

	var scanCursor uint64

	if cursor != "" {
		var err error

		scanCursor, err = strconv.ParseUint(cursor, 10, 64)
		if err != nil {
			return kv.Page{}, fmt.Errorf("%s: malformed cursor %q: %w", op, cursor, err)
		}
	}

	keys, next, err := s.rdb.Scan(ctx, scanCursor, globEscaper.Replace(prefix)+"*", int64(limit)).Result()
	if err != nil {
		return kv.Page{}, fmt.Errorf("%s: failed to scan keys: %w", op, err)
	}

	if next == 0 {
		return kv.Page{Keys: keys, Complete: true}, nil
	}

	return kv.Page{Keys: keys, Cursor: strconv.FormatUint(next, 10)}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	const op = "adapter.kv.redis.Store.Get"

	value, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%s: %w", op, kv.ErrKeyNotFound)
		}

		return "", fmt.Errorf("%s: failed to get key: %w", op, err)
	}

	return value, nil
}

func (s *Store) Put(ctx context.Context, key, value string) error {
	const op = "adapter.kv.redis.Store.Put"

	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("%s: failed to set key: %w", op, err)
	}

	return nil
}
