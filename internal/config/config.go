package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

const (
	StrategyScan    = "scan"
	StrategyCounter = "counter"
)

var (
	ErrCounterRequiresRedis = errors.New("counter allocator requires the redis backend")
	ErrRedisAddrMissing     = errors.New("redis backend requires redis.addr")
	ErrPostgresDBMissing    = errors.New("postgres backend requires postgres.db")
)

type Config struct {
	Env             string `yaml:"env" validate:"oneof=dev stage prod"`
	RedirectBaseURL string `yaml:"redirect_base_url" validate:"required,url"`
	MinCodeWidth    int    `yaml:"min_code_width" validate:"min=1,max=11"`
	HTTPServer      `yaml:"http_server"`
	Store           `yaml:"store"`
	Allocator       `yaml:"allocator"`
	Cache           `yaml:"cache"`
	Redis           `yaml:"redis"`
	Postgres        `yaml:"postgres"`
	Log             `yaml:"log"`
}

type HTTPServer struct {
	Port           int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	CertFile       string        `yaml:"cert_file"`
	KeyFile        string        `yaml:"key_file"`
}

var defaultHTTPServer = HTTPServer{
	Port:           8080,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// Store selects the key-value backend holding the mappings.
type Store struct {
	Backend string        `yaml:"backend" validate:"oneof=memory redis postgres"`
	Timeout time.Duration `yaml:"timeout" validate:"min=0"`
}

var defaultStore = Store{
	Backend: BackendMemory,
	Timeout: 3 * time.Second,
}

// Allocator controls how serials are assigned.
type Allocator struct {
	Strategy      string `yaml:"strategy" validate:"oneof=scan counter"`
	InitialSerial uint64 `yaml:"initial_serial" validate:"min=1"`
	PageSize      int    `yaml:"page_size" validate:"min=1"`
	MaxScanPages  int    `yaml:"max_scan_pages" validate:"min=1"`
}

var defaultAllocator = Allocator{
	Strategy:      StrategyScan,
	InitialSerial: 1,
	PageSize:      1000,
	MaxScanPages:  10000,
}

type Cache struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl" validate:"min=0"`
}

var defaultCache = Cache{
	Enabled: true,
	TTL:     30 * time.Second,
}

type Redis struct {
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db" validate:"min=0"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	PingAttempts int           `yaml:"ping_attempts" validate:"min=1"`
}

var defaultRedis = Redis{
	Addr:         "localhost:6379",
	DialTimeout:  5 * time.Second,
	ReadTimeout:  3 * time.Second,
	WriteTimeout: 3 * time.Second,
	MaxRetries:   3,
	PingAttempts: 5,
}

type Postgres struct {
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	DB              string        `yaml:"db"`
	SSLMode         string        `yaml:"sslmode"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	PingAttempts    int           `yaml:"ping_attempts" validate:"min=1"`
}

var defaultPostgres = Postgres{
	Host:            "localhost",
	Port:            5432,
	SSLMode:         "disable",
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: 30 * time.Minute,
	MaxIdleConns:    5,
	MaxOpenConns:    25,
	PingAttempts:    5,
}

func (p *Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

type Log struct {
	Level   string `yaml:"level" validate:"oneof=debug info warn error"`
	JSON    bool   `yaml:"json"`
	Concise bool   `yaml:"concise"`
}

var defaultLog = Log{
	Level:   "info",
	Concise: true,
}

func (l *Log) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads the YAML file at path over the defaults and validates the result.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	var cfg Config
	setDefaults(&cfg)

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	switch {
	case c.Allocator.Strategy == StrategyCounter && c.Store.Backend != BackendRedis:
		return ErrCounterRequiresRedis
	case c.Store.Backend == BackendRedis && c.Redis.Addr == "":
		return ErrRedisAddrMissing
	case c.Store.Backend == BackendPostgres && c.Postgres.DB == "":
		return ErrPostgresDBMissing
	}

	return nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.RedirectBaseURL = "http://localhost:8080"
	cfg.MinCodeWidth = 7
	cfg.HTTPServer = defaultHTTPServer
	cfg.Store = defaultStore
	cfg.Allocator = defaultAllocator
	cfg.Cache = defaultCache
	cfg.Redis = defaultRedis
	cfg.Postgres = defaultPostgres
	cfg.Log = defaultLog
}
