// Package kvstore persists URL mappings in a key-value backend using the
// fixed-width key layout from package keyspace.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vadimbarashkov/url-shortener-kv/internal/adapter/kv"
	"github.com/vadimbarashkov/url-shortener-kv/internal/entity"
	"github.com/vadimbarashkov/url-shortener-kv/internal/keyspace"
)

const (
	DefaultPageSize = 1000
	DefaultMaxPages = 10000
)

// ErrScanLimitExceeded is returned when draining the namespace needs more pages than allowed.
var ErrScanLimitExceeded = errors.New("scan page limit exceeded")

type Option func(*URLRepository)

// WithPageSize sets how many keys are requested per List call.
func WithPageSize(n int) Option {
	return func(r *URLRepository) {
		r.pageSize = n
	}
}

// WithMaxPages caps the number of List calls made by ListMappingKeys.
func WithMaxPages(n int) Option {
	return func(r *URLRepository) {
		r.maxPages = n
	}
}

// WithTimeout bounds every backend call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *URLRepository) {
		r.timeout = d
	}
}

// WithRegisterer registers the store metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(r *URLRepository) {
		r.reg = reg
	}
}

type URLRepository struct {
	store    kv.Store
	pageSize int
	maxPages int
	timeout  time.Duration
	reg      prometheus.Registerer
	metrics  *metrics
}

func NewURLRepository(store kv.Store, opts ...Option) *URLRepository {
	r := &URLRepository{
		store:    store,
		pageSize: DefaultPageSize,
		maxPages: DefaultMaxPages,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.metrics = newMetrics(r.reg)

	return r
}

func (r *URLRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, r.timeout)
}

// Save stores url under the mapping key of serial. An existing entry is overwritten.
func (r *URLRepository) Save(ctx context.Context, serial uint64, url string) (err error) {
	const op = "adapter.repository.kvstore.URLRepository.Save"

	started := time.Now()
	defer func() {
		r.metrics.observe("save", statusOf(err), started)
	}()

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.store.Put(ctx, keyspace.MappingKey(serial), url); err != nil {
		return fmt.Errorf("%s: %w: %w", op, entity.ErrStore, err)
	}

	return nil
}

func (r *URLRepository) RetrieveBySerial(ctx context.Context, serial uint64) (url string, err error) {
	const op = "adapter.repository.kvstore.URLRepository.RetrieveBySerial"

	started := time.Now()
	defer func() {
		r.metrics.observe("retrieve", statusOf(err), started)
	}()

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	url, err = r.store.Get(ctx, keyspace.MappingKey(serial))
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return "", fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return "", fmt.Errorf("%s: %w: %w", op, entity.ErrStore, err)
	}

	return url, nil
}

// ListMappingKeys drains every page of the mapping namespace and returns all keys found.
// Keys may repeat when the backend reports one twice across pages.
func (r *URLRepository) ListMappingKeys(ctx context.Context) (keys []string, err error) {
	const op = "adapter.repository.kvstore.URLRepository.ListMappingKeys"

	started := time.Now()
	pages := 0
	defer func() {
		r.metrics.observe("list", statusOf(err), started)
		r.metrics.scanPages.Observe(float64(pages))
	}()

	prefix := keyspace.MappingPrefix()
	cursor := ""

	for {
		if pages >= r.maxPages {
			return nil, fmt.Errorf("%s: %w: %w after %d pages", op, entity.ErrStore, ErrScanLimitExceeded, pages)
		}

		page, err := r.listPage(ctx, prefix, cursor)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, entity.ErrStore, err)
		}
		pages++

		keys = append(keys, page.Keys...)

		if page.Complete {
			return keys, nil
		}

		cursor = page.Cursor
	}
}

func (r *URLRepository) listPage(ctx context.Context, prefix, cursor string) (kv.Page, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.store.List(ctx, prefix, cursor, r.pageSize)
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return statusSuccess
	case errors.Is(err, entity.ErrURLNotFound):
		return statusNotFound
	default:
		return statusError
	}
}
