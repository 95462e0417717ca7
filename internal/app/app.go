package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/go-chi/httplog/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vadimbarashkov/url-shortener-kv/internal/adapter/cache"
	"github.com/vadimbarashkov/url-shortener-kv/internal/adapter/kv"
	"github.com/vadimbarashkov/url-shortener-kv/internal/adapter/kv/memory"
	kvpostgres "github.com/vadimbarashkov/url-shortener-kv/internal/adapter/kv/postgres"
	kvredis "github.com/vadimbarashkov/url-shortener-kv/internal/adapter/kv/redis"
	"github.com/vadimbarashkov/url-shortener-kv/internal/adapter/repository/kvstore"
	"github.com/vadimbarashkov/url-shortener-kv/internal/adapter/sequence"
	"github.com/vadimbarashkov/url-shortener-kv/internal/config"
	"github.com/vadimbarashkov/url-shortener-kv/internal/serial"
	"github.com/vadimbarashkov/url-shortener-kv/internal/usecase"
	"github.com/vadimbarashkov/url-shortener-kv/migrations"
	"github.com/vadimbarashkov/url-shortener-kv/pkg/postgres"
	"github.com/vadimbarashkov/url-shortener-kv/pkg/redis"
	"golang.org/x/sync/errgroup"

	delivery "github.com/vadimbarashkov/url-shortener-kv/internal/adapter/delivery/http"
	goredis "github.com/redis/go-redis/v9"
)

// NewLogger builds the process logger from the log section of cfg.
func NewLogger(cfg *config.Config, w io.Writer) *httplog.Logger {
	return httplog.NewLogger("url-shortener", httplog.Options{
		LogLevel:        cfg.Log.SlogLevel(),
		JSON:            cfg.Log.JSON,
		Concise:         cfg.Log.Concise,
		RequestHeaders:  !cfg.Log.Concise,
		TimeFieldFormat: "2006-01-02T15:04:05.000Z07:00",
		Tags: map[string]string{
			"env": cfg.Env,
		},
		Writer: w,
	})
}

// Service holds the wired use case and the resources backing it.
type Service struct {
	UseCase *usecase.URLUseCase
	closers []func() error
}

// Close releases backend connections in reverse order of acquisition.
func (s *Service) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

// NewService connects the configured backend and assembles the URL use case.
// A nil reg leaves the store and cache metrics unregistered.
func NewService(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*Service, error) {
	const op = "app.NewService"

	svc := &Service{}

	var (
		store kv.Store
		rdb   *goredis.Client
	)

	switch cfg.Store.Backend {
	case config.BackendRedis:
		var err error

		rdb, err = redis.New(
			ctx,
			logger,
			cfg.Redis.Addr,
			cfg.Redis.PingAttempts,
			redis.WithPassword(cfg.Redis.Password),
			redis.WithDB(cfg.Redis.DB),
			redis.WithTimeouts(cfg.Redis.DialTimeout, cfg.Redis.ReadTimeout, cfg.Redis.WriteTimeout),
			redis.WithMaxRetries(cfg.Redis.MaxRetries),
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to connect to redis: %w", op, err)
		}
		svc.closers = append(svc.closers, rdb.Close)

		store = kvredis.New(rdb)
	case config.BackendPostgres:
		db, err := postgres.New(
			ctx,
			cfg.Postgres.DSN(),
			postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
			postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
			postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
			postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
			postgres.WithPing(logger, cfg.Postgres.PingAttempts),
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to connect to database: %w", op, err)
		}
		svc.closers = append(svc.closers, db.Close)

		if err := postgres.RunMigrations(db, migrations.FS); err != nil {
			svc.Close()
			return nil, fmt.Errorf("%s: failed to run migrations: %w", op, err)
		}

		store = kvpostgres.New(db)
	default:
		logger.Warn("using in-memory store, mappings are lost on exit")
		store = memory.New()
	}

	logger.Info("store ready", slog.String("backend", cfg.Store.Backend))

	urlRepo := kvstore.NewURLRepository(
		store,
		kvstore.WithPageSize(cfg.Allocator.PageSize),
		kvstore.WithMaxPages(cfg.Allocator.MaxScanPages),
		kvstore.WithTimeout(cfg.Store.Timeout),
		kvstore.WithRegisterer(reg),
	)

	var serials interface {
		NextSerial(ctx context.Context) (uint64, error)
	}

	switch cfg.Allocator.Strategy {
	case config.StrategyCounter:
		serials = sequence.NewRedisCounter(rdb, urlRepo, cfg.Allocator.InitialSerial)
	default:
		serials = serial.NewScanner(urlRepo, cfg.Allocator.InitialSerial)
	}

	if cfg.Cache.Enabled {
		svc.UseCase = usecase.New(cfg.MinCodeWidth, cache.NewCachedURLRepository(urlRepo, cfg.Cache.TTL, reg), serials)
	} else {
		svc.UseCase = usecase.New(cfg.MinCodeWidth, urlRepo, serials)
	}

	return svc, nil
}

func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	logger := NewLogger(cfg, os.Stdout)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc, err := NewService(ctx, cfg, logger.Logger, reg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer svc.Close()

	router := delivery.NewRouter(
		logger,
		svc.UseCase,
		cfg.RedirectBaseURL,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        router,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", slog.String("addr", server.Addr), slog.String("env", cfg.Env))

		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		logger.Info("shutting down server")

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}
