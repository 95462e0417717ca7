// Package postgres opens a sqlx handle over the pgx driver and applies
// embedded migrations.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	defaultConnMaxIdleTime = 5 * time.Minute
	defaultConnMaxLifetime = 30 * time.Minute
	defaultMaxIdleConns    = 5
	defaultMaxOpenConns    = 25
	defaultPingAttempts    = 1
	pingInterval           = time.Second
)

type config struct {
	pingAttempts int
	logger       *slog.Logger
	setup        []func(*sqlx.DB)
}

type Option func(*config)

func WithConnMaxIdleTime(d time.Duration) Option {
	return func(c *config) {
		c.setup = append(c.setup, func(db *sqlx.DB) { db.SetConnMaxIdleTime(d) })
	}
}

func WithConnMaxLifetime(d time.Duration) Option {
	return func(c *config) {
		c.setup = append(c.setup, func(db *sqlx.DB) { db.SetConnMaxLifetime(d) })
	}
}

func WithMaxIdleConns(n int) Option {
	return func(c *config) {
		c.setup = append(c.setup, func(db *sqlx.DB) { db.SetMaxIdleConns(n) })
	}
}

func WithMaxOpenConns(n int) Option {
	return func(c *config) {
		c.setup = append(c.setup, func(db *sqlx.DB) { db.SetMaxOpenConns(n) })
	}
}

// WithPing makes New retry the initial ping up to attempts times, logging each failure.
func WithPing(logger *slog.Logger, attempts int) Option {
	return func(c *config) {
		c.logger = logger
		c.pingAttempts = attempts
	}
}

func New(ctx context.Context, dsn string, opts ...Option) (*sqlx.DB, error) {
	const op = "postgres.New"

	cfg := &config{pingAttempts: defaultPingAttempts}
	for _, opt := range opts {
		opt(cfg)
	}

	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open database: %w", op, err)
	}

	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetMaxOpenConns(defaultMaxOpenConns)

	for _, setup := range cfg.setup {
		setup(db)
	}

	if err := ping(ctx, cfg, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}

	return db, nil
}

func ping(ctx context.Context, cfg *config, db *sqlx.DB) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	var err error

	for i := 0; i < max(cfg.pingAttempts, 1); i++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}

		if cfg.logger != nil {
			cfg.logger.Warn("unable to reach database, retrying", slog.Int("attempt", i+1), slog.Any("err", err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	return err
}
