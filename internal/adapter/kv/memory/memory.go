// Package memory provides an in-process kv.Store for development and tests.
// Data does not survive a restart. Each List call sorts every matching key,
// so draining n keys costs O(n²/limit); it is not meant for large keyspaces.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vadimbarashkov/url-shortener-kv/internal/adapter/kv"
)

type Store struct {
	mu   sync.RWMutex
	data map[string]string
}

func New() *Store {
	return &Store{data: make(map[string]string)}
}

// List returns keys with the given prefix in ascending order, starting after cursor.
func (s *Store) List(ctx context.Context, prefix, cursor string, limit int) (kv.Page, error) {
	const op = "adapter.kv.memory.Store.List"

	if err := ctx.Err(); err != nil {
		return kv.Page{}, fmt.Errorf("%s: %w", op, err)
	}

	if limit <= 0 {
		return kv.Page{}, fmt.Errorf("%s: limit must be positive, got %d", op, limit)
	}

	s.mu.RLock()
	keys := make([]string, 0, len(s.data))
	for key := range s.data {
		if strings.HasPrefix(key, prefix) && key > cursor {
			keys = append(keys, key)
		}
	}
	s.mu.RUnlock()

	sort.Strings(keys)

	if len(keys) <= limit {
		return kv.Page{Keys: keys, Complete: true}, nil
	}

	keys = keys[:limit]

	return kv.Page{Keys: keys, Cursor: keys[len(keys)-1]}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	const op = "adapter.kv.memory.Store.Get"

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	value, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%s: %w", op, kv.ErrKeyNotFound)
	}

	return value, nil
}

func (s *Store) Put(ctx context.Context, key, value string) error {
	const op = "adapter.kv.memory.Store.Put"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()

	return nil
}
