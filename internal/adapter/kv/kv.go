// Package kv declares the minimal key-value store contract the service is
// built on: paginated prefix listing, get and put. Implementations are not
// expected to offer transactions or compare-and-swap.
package kv

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key does not exist.
var ErrKeyNotFound = errors.New("key not found")

// Page is one batch of a prefix listing.
type Page struct {
	// Keys holds the keys of this batch. Order is backend specific, and a key
	// may appear in more than one page of the same listing.
	Keys []string
	// Cursor resumes the listing on the next call. Empty means start.
	Cursor string
	// Complete reports that no further pages exist.
	Complete bool
}

// Store is a key-value backend.
type Store interface {
	List(ctx context.Context, prefix, cursor string, limit int) (Page, error)
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
}
