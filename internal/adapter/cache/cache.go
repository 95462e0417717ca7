// Package cache provides a read-through cache in front of the URL store.
//
// Mappings never change once written, so a hit can be served without going to
// the backend. Only successful lookups are cached: a serial reported missing
// may be written a moment later by another instance.
package cache

import (
	"context"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	DefaultTTL             = 30 * time.Second
	defaultCleanupInterval = time.Minute
)

type urlRepository interface {
	Save(ctx context.Context, serial uint64, url string) error
	RetrieveBySerial(ctx context.Context, serial uint64) (string, error)
}

type CachedURLRepository struct {
	next   urlRepository
	ttl    time.Duration
	items  *gocache.Cache
	hits   prometheus.Counter
	misses prometheus.Counter
}

// NewCachedURLRepository wraps next. A nil reg leaves the counters unregistered.
func NewCachedURLRepository(next urlRepository, ttl time.Duration, reg prometheus.Registerer) *CachedURLRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c := &CachedURLRepository{
		next:  next,
		ttl:   ttl,
		items: gocache.New(ttl, defaultCleanupInterval),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "resolve_cache",
			Name:      "hits_total",
			Help:      "Lookups served from the resolve cache.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "resolve_cache",
			Name:      "misses_total",
			Help:      "Lookups that went to the URL store.",
		}),
	}

	if reg != nil {
		reg.MustRegister(c.hits, c.misses)
	}

	return c
}

func (c *CachedURLRepository) Save(ctx context.Context, serial uint64, url string) error {
	if err := c.next.Save(ctx, serial, url); err != nil {
		return err
	}

	// A concurrent allocation may have overwritten an older entry for the same serial.
	c.items.Delete(cacheKey(serial))

	return nil
}

func (c *CachedURLRepository) RetrieveBySerial(ctx context.Context, serial uint64) (string, error) {
	key := cacheKey(serial)

	if v, ok := c.items.Get(key); ok {
		c.hits.Inc()
		return v.(string), nil
	}

	c.misses.Inc()

	url, err := c.next.RetrieveBySerial(ctx, serial)
	if err != nil {
		return "", err
	}

	c.items.Set(key, url, c.ttl)

	return url, nil
}

func cacheKey(serial uint64) string {
	return strconv.FormatUint(serial, 10)
}
