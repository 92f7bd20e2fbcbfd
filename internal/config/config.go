// Package config loads the server and seeder configuration from the
// environment, optionally populated from .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/inkwell/pkg/db"
	"github.com/dmitrymomot/inkwell/pkg/logger"
)

var (
	ErrLoadDotenv    = errors.New("config: failed to load .env file")
	ErrParse         = errors.New("config: failed to parse environment")
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Backends selectable for quota counters and the category cache.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	AppEnv          string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	RedisURL        string        `env:"REDIS_URL"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	CacheBackend     string        `env:"CACHE_BACKEND" envDefault:"memory"`
	CategoryCacheTTL time.Duration `env:"CATEGORY_CACHE_TTL" envDefault:"5m"`
	ArticleRetention time.Duration `env:"ARTICLE_RETENTION" envDefault:"720h"`

	DB    db.Config
	Log   logger.Config
	JWT   JWT
	Quota Quota
}

type JWT struct {
	Secret string        `env:"JWT_SECRET,required"`
	Issuer string        `env:"JWT_ISSUER" envDefault:"inkwell"`
	TTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`
}

// Quota configures the daily quota and the per-minute throttle.
type Quota struct {
	Backend           string `env:"QUOTA_BACKEND" envDefault:"memory"`
	DailyLimit        int64  `env:"QUOTA_DAILY_LIMIT" envDefault:"1000"`
	Timezone          string `env:"QUOTA_TIMEZONE" envDefault:"Local"`
	FailOpen          bool   `env:"QUOTA_FAIL_OPEN" envDefault:"true"`
	ThrottlePerMinute int    `env:"THROTTLE_PER_MINUTE" envDefault:"60"`
	TrustForwardedFor bool   `env:"TRUST_FORWARDED_FOR" envDefault:"false"`
}

// Location resolves Timezone. Validate has already checked it.
func (q Quota) Location() *time.Location {
	loc, err := time.LoadLocation(q.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Load reads the given .env files, or ".env" when none are named, then
// parses the process environment. Missing files are ignored; variables
// already set take precedence over file values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, errors.Join(ErrLoadDotenv, fmt.Errorf("%s: %w", f, err))
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParse, err)
	}
	return cfg, cfg.Validate()
}

// Parse builds a Config from vars alone, ignoring the process
// environment.
func Parse(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, errors.Join(ErrParse, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the values env tags cannot express.
func (c Config) Validate() error {
	var errs []error

	backends := []string{BackendMemory, BackendRedis, BackendPostgres}
	if !slices.Contains(backends, c.Quota.Backend) {
		errs = append(errs, fmt.Errorf("QUOTA_BACKEND %q: want memory, redis or postgres", c.Quota.Backend))
	}
	if !slices.Contains(backends[:2], c.CacheBackend) {
		errs = append(errs, fmt.Errorf("CACHE_BACKEND %q: want memory or redis", c.CacheBackend))
	}
	if c.RedisURL == "" && (c.Quota.Backend == BackendRedis || c.CacheBackend == BackendRedis) {
		errs = append(errs, errors.New("REDIS_URL is required by the redis backend"))
	}
	if c.Quota.DailyLimit < 0 {
		errs = append(errs, errors.New("QUOTA_DAILY_LIMIT must not be negative"))
	}
	if c.Quota.ThrottlePerMinute <= 0 {
		errs = append(errs, errors.New("THROTTLE_PER_MINUTE must be positive"))
	}
	if _, err := time.LoadLocation(c.Quota.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("QUOTA_TIMEZONE: %w", err))
	}
	if c.ArticleRetention <= 0 {
		errs = append(errs, errors.New("ARTICLE_RETENTION must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}
	return nil
}

// UsesRedis reports whether any backend needs a Redis connection.
func (c Config) UsesRedis() bool {
	return c.Quota.Backend == BackendRedis || c.CacheBackend == BackendRedis
}
