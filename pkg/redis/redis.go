// Package redis builds a go-redis client and waits for the server to answer.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingInterval = time.Second

type Option func(*redis.Options)

func WithPassword(password string) Option {
	return func(o *redis.Options) {
		o.Password = password
	}
}

func WithDB(db int) Option {
	return func(o *redis.Options) {
		o.DB = db
	}
}

func WithTimeouts(dial, read, write time.Duration) Option {
	return func(o *redis.Options) {
		o.DialTimeout = dial
		o.ReadTimeout = read
		o.WriteTimeout = write
	}
}

func WithMaxRetries(n int) Option {
	return func(o *redis.Options) {
		o.MaxRetries = n
	}
}

// New connects to addr and pings it up to attempts times before giving up.
func New(ctx context.Context, logger *slog.Logger, addr string, attempts int, opts ...Option) (*redis.Client, error) {
	const op = "redis.New"

	o := &redis.Options{Addr: addr}
	for _, opt := range opts {
		opt(o)
	}

	rdb := redis.NewClient(o)

	if err := ping(ctx, logger, rdb, attempts); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("%s: failed to ping redis: %w", op, err)
	}

	return rdb, nil
}

func ping(ctx context.Context, logger *slog.Logger, rdb *redis.Client, attempts int) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	var err error

	for i := 0; i < max(attempts, 1); i++ {
		if err = rdb.Ping(ctx).Err(); err == nil {
			return nil
		}

		logger.Warn("unable to reach redis, retrying", slog.Int("attempt", i+1), slog.Any("err", err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	return err
}
