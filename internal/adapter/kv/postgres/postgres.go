// Package postgres implements kv.Store over a single key/value table.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/url-shortener-kv/internal/adapter/kv"
)

const undefinedTableErrCode = "42P01"

// ErrSchemaMissing is returned when the kv table has not been migrated.
var ErrSchemaMissing = errors.New("kv table does not exist")

func wrapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTableErrCode {
		return fmt.Errorf("%w: %w", ErrSchemaMissing, err)
	}

	return err
}

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// List returns keys with the given prefix in ascending order, starting after cursor.
func (s *Store) List(ctx context.Context, prefix, cursor string, limit int) (kv.Page, error) {
	const op = "adapter.kv.postgres.Store.List"
	const query = `SELECT key FROM kv WHERE starts_with(key, $1) AND key > $2 ORDER BY key LIMIT $3`

	if limit <= 0 {
		return kv.Page{}, fmt.Errorf("%s: limit must be positive, got %d", op, limit)
	}

	keys := make([]string, 0, limit)

	if err := s.db.SelectContext(ctx, &keys, query, prefix, cursor, limit); err != nil {
		return kv.Page{}, fmt.Errorf("%s: failed to select from kv table: %w", op, wrapPgError(err))
	}

	if len(keys) < limit {
		return kv.Page{Keys: keys, Complete: true}, nil
	}

	return kv.Page{Keys: keys, Cursor: keys[len(keys)-1]}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	const op = "adapter.kv.postgres.Store.Get"
	const query = `SELECT value FROM kv WHERE key = $1`

	var value string

	if err := s.db.GetContext(ctx, &value, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, kv.ErrKeyNotFound)
		}

		return "", fmt.Errorf("%s: failed to get row from kv table: %w", op, wrapPgError(err))
	}

	return value, nil
}

func (s *Store) Put(ctx context.Context, key, value string) error {
	const op = "adapter.kv.postgres.Store.Put"
	const query = `INSERT INTO kv(key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("%s: failed to upsert into kv table: %w", op, wrapPgError(err))
	}

	return nil
}
