package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// DevJWTSecret is the signing key used when JWT_SECRET is unset.
const DevJWTSecret = "dev-secret-change-in-production"

var (
	ErrDevSecretInProduction = errors.New("JWT_SECRET must be set in production environment")
	ErrInvalidTokenTTL       = errors.New("token lifetimes must be positive")
	ErrRefreshShorterAccess  = errors.New("JWT_REFRESH_TTL must not be shorter than JWT_ACCESS_TTL")
	ErrUnknownStorageDriver  = errors.New("STORAGE_DRIVER must be mysql or memory")
	ErrMemoryInProduction    = errors.New("STORAGE_DRIVER=memory is not allowed in production")
)

// Storage drivers.
const (
	StorageMySQL  = "mysql"
	StorageMemory = "memory"
)

type Config struct {
	Port         string        `envconfig:"PORT" default:"8080"`
	Env          string        `envconfig:"ENV" default:"development"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`

	StorageDriver  string `envconfig:"STORAGE_DRIVER" default:"mysql"`
	DatabaseDSN    string `envconfig:"DATABASE_DSN" default:"root:password@tcp(127.0.0.1:3306)/todos?parseTime=true"`
	MigrateOnStart bool   `envconfig:"MIGRATE_ON_START" default:"true"`
	RedisAddr      string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	JWTSecret     string        `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	JWTAccessTTL  time.Duration `envconfig:"JWT_ACCESS_TTL" default:"5m"`
	JWTRefreshTTL time.Duration `envconfig:"JWT_REFRESH_TTL" default:"24h"`

	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"5"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"10"`

	// RequestsPerMinute caps every route per client IP.
	RequestsPerMinute int `envconfig:"REQUESTS_PER_MINUTE" default:"300"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("processing env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c Config) Validate() error {
	if c.IsProduction() && c.JWTSecret == DevJWTSecret {
		return ErrDevSecretInProduction
	}
	if c.JWTAccessTTL <= 0 || c.JWTRefreshTTL <= 0 {
		return ErrInvalidTokenTTL
	}
	if c.JWTRefreshTTL < c.JWTAccessTTL {
		return ErrRefreshShorterAccess
	}
	switch c.StorageDriver {
	case StorageMySQL:
	case StorageMemory:
		if c.IsProduction() {
			return ErrMemoryInProduction
		}
	default:
		return ErrUnknownStorageDriver
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
