// Package sequence allocates serials from an atomic Redis counter.
package sequence

import (
	"context"
	"fmt"
	"math"

	"github.com/redis/go-redis/v9"
	"github.com/vadimbarashkov/url-shortener-kv/internal/codec"
	"github.com/vadimbarashkov/url-shortener-kv/internal/keyspace"
	"github.com/vadimbarashkov/url-shortener-kv/internal/serial"
)

// CounterKey holds the last serial handed out.
const CounterKey = keyspace.Namespace + ":counter"

type keyLister interface {
	ListMappingKeys(ctx context.Context) ([]string, error)
}

// RedisCounter hands out serials with INCR. On first use the counter is seeded
// from the highest serial already stored, so it continues an existing keyspace.
type RedisCounter struct {
	rdb     *redis.Client
	lister  keyLister
	initial uint64
}

func NewRedisCounter(rdb *redis.Client, lister keyLister, initial uint64) *RedisCounter {
	return &RedisCounter{
		rdb:     rdb,
		lister:  lister,
		initial: initial,
	}
}

func (c *RedisCounter) NextSerial(ctx context.Context) (uint64, error) {
	const op = "adapter.sequence.RedisCounter.NextSerial"

	exists, err := c.rdb.Exists(ctx, CounterKey).Result()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to check counter: %w", op, err)
	}

	if exists == 0 {
		if err := c.seed(ctx); err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
	}

	n, err := c.rdb.Incr(ctx, CounterKey).Result()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to increment counter: %w", op, err)
	}

	return uint64(n), nil
}

func (c *RedisCounter) seed(ctx context.Context) error {
	keys, err := c.lister.ListMappingKeys(ctx)
	if err != nil {
		return fmt.Errorf("failed to list mapping keys: %w", err)
	}

	var start uint64
	if c.initial > 0 {
		start = c.initial - 1
	}
	if top, ok := serial.HighWaterMark(keys); ok && top > start {
		start = top
	}

	// INCR works on signed 64-bit integers.
	if start >= math.MaxInt64 {
		return fmt.Errorf("counter cannot continue past serial %d: %w", start, codec.ErrEncodingOverflow)
	}

	// Another instance may seed concurrently; SETNX keeps the first value.
	if err := c.rdb.SetNX(ctx, CounterKey, start, 0).Err(); err != nil {
		return fmt.Errorf("failed to seed counter: %w", err)
	}

	return nil
}
