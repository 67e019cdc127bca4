package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/albertocavalcante/go-openregister"
	"github.com/albertocavalcante/go-openregister/cache"
	"github.com/albertocavalcante/go-openregister/internal/tracing"
	"github.com/albertocavalcante/go-openregister/registry"
)

// Cache backends selectable with --cache.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
)

// Config holds the command's configuration, read from the config file,
// OPENREGISTER_* environment variables and flags.
type Config struct {
	Phase           string         `mapstructure:"phase"`
	BaseDomain      string         `mapstructure:"base_domain"`
	Timeout         time.Duration  `mapstructure:"timeout"`
	PageSize        int            `mapstructure:"page_size"`
	MaxResolveDepth int            `mapstructure:"max_resolve_depth"`
	DeadRegisters   []string       `mapstructure:"dead_registers"`
	Debug           bool           `mapstructure:"debug"`
	Cache           CacheConfig    `mapstructure:"cache"`
	Tracing         tracing.Config `mapstructure:"tracing"`
}

// CacheConfig selects and configures the response cache.
type CacheConfig struct {
	// Backend is one of none, memory, sqlite, redis.
	Backend string `mapstructure:"backend"`

	// Path is the SQLite database file.
	Path string `mapstructure:"path"`

	// RedisURL is a redis:// URL for the redis backend.
	RedisURL string `mapstructure:"redis_url"`

	// TTL bounds how long a response is served from cache. Zero keeps
	// responses until the cache is cleared.
	TTL time.Duration `mapstructure:"ttl"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Phase:           openregister.DefaultPhase,
		BaseDomain:      registry.DefaultBaseDomain,
		Timeout:         registry.DefaultRequestTimeout,
		PageSize:        registry.DefaultPageSize,
		MaxResolveDepth: openregister.DefaultMaxResolveDepth,
		Cache: CacheConfig{
			Backend: CacheSQLite,
			Path:    defaultCachePath(),
			TTL:     24 * time.Hour,
		},
		Tracing: tracing.DefaultConfig(),
	}
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "openregister", "register_cache.sqlite")
}

// Validate checks the configuration for values the catalog would reject
// late or silently misuse.
func (c Config) Validate() error {
	if err := registry.ValidatePhase(c.Phase); err != nil {
		return err
	}
	if c.PageSize < 0 {
		return errors.New("page_size must be positive")
	}
	if c.Timeout < 0 {
		return errors.New("timeout must be positive")
	}
	switch c.Cache.Backend {
	case CacheNone, CacheMemory:
	case CacheSQLite:
		if c.Cache.Path == "" {
			return errors.New("cache.path required for sqlite cache")
		}
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return errors.New("cache.redis_url required for redis cache")
		}
	default:
		return fmt.Errorf("unsupported cache backend: %q", c.Cache.Backend)
	}
	return nil
}

// openStore builds the configured response cache. The returned closer
// releases the backend and is never nil.
func openStore(cfg CacheConfig) (cache.Store, io.Closer, error) {
	switch cfg.Backend {
	case CacheNone, "":
		return cache.NoopStore{}, nopCloser{}, nil
	case CacheMemory:
		return cache.NewMemoryStore(cfg.TTL), nopCloser{}, nil
	case CacheSQLite:
		store, err := cache.OpenSQLiteStore(cfg.Path, cfg.TTL)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case CacheRedis:
		store, err := cache.NewRedisStore(cache.RedisOptions{URL: cfg.RedisURL, TTL: cfg.TTL})
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unsupported cache backend: %q", cfg.Backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// catalogOptions translates the configuration into catalog options.
func (c Config) catalogOptions() []openregister.Option {
	opts := []openregister.Option{
		openregister.WithBaseDomain(c.BaseDomain),
		openregister.WithTimeout(c.Timeout),
		openregister.WithPageSize(c.PageSize),
		openregister.WithMaxResolveDepth(c.MaxResolveDepth),
	}
	if len(c.DeadRegisters) > 0 {
		opts = append(opts, openregister.WithDeadRegisters(slices.Clone(c.DeadRegisters)...))
	}
	return opts
}
