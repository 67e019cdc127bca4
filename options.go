package openregister

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/albertocavalcante/go-openregister/cache"
	"github.com/albertocavalcante/go-openregister/registry"
)

// DefaultMaxResolveDepth bounds how many curies a single value may follow.
const DefaultMaxResolveDepth = 32

// Option configures a Catalog.
type Option func(*catalogConfig) error

// catalogConfig holds all catalog configuration.
type catalogConfig struct {
	client          *registry.Client
	httpClient      *http.Client
	timeout         time.Duration
	baseDomain      string
	store           cache.Store
	tracerProvider  trace.TracerProvider
	pageSize        int
	maxResolveDepth int
	deadRegisters   map[string]bool

	// logger is the structured logger for debug/info output.
	// If nil, logging is disabled (silent mode).
	logger *slog.Logger
}

// WithRegistryClient shares an existing registry client. When set, the
// transport options (HTTP client, timeout, base domain, store, tracer) are
// ignored.
func WithRegistryClient(client *registry.Client) Option {
	return func(c *catalogConfig) error {
		c.client = client
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client for register requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *catalogConfig) error {
		c.httpClient = client
		return nil
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *catalogConfig) error {
		c.timeout = d
		return nil
	}
}

// WithBaseDomain serves every register from a mirror of openregister.org.
func WithBaseDomain(domain string) Option {
	return func(c *catalogConfig) error {
		c.baseDomain = domain
		return nil
	}
}

// WithCache sets the response store consulted before each request.
func WithCache(store cache.Store) Option {
	return func(c *catalogConfig) error {
		c.store = store
		return nil
	}
}

// WithTracerProvider records a span for every request.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *catalogConfig) error {
		c.tracerProvider = tp
		return nil
	}
}

// WithPageSize sets the page size used to fetch a register's records.
// Only the first page is fetched.
func WithPageSize(n int) Option {
	return func(c *catalogConfig) error {
		c.pageSize = n
		return nil
	}
}

// WithMaxResolveDepth bounds the number of curies a value may follow.
func WithMaxResolveDepth(n int) Option {
	return func(c *catalogConfig) error {
		c.maxResolveDepth = n
		return nil
	}
}

// WithDeadRegisters excludes registers from discovery, e.g. ones listed in
// the register index that no longer serve records.
func WithDeadRegisters(names ...string) Option {
	return func(c *catalogConfig) error {
		for _, name := range names {
			c.deadRegisters[name] = true
		}
		return nil
	}
}

// WithLogger sets a structured logger for catalog diagnostics.
// If not set, logging is disabled (silent mode).
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil)).With("component", "openregister")
//	catalog, err := openregister.NewCatalog(openregister.WithLogger(logger))
func WithLogger(l *slog.Logger) Option {
	return func(c *catalogConfig) error {
		c.logger = l
		return nil
	}
}

// validate checks the configuration for logical consistency.
func (c *catalogConfig) validate() error {
	if c.timeout < 0 {
		return errors.New("timeout must be positive")
	}
	if c.pageSize < 0 {
		return errors.New("page size must be positive")
	}
	if c.maxResolveDepth < 0 {
		return errors.New("max resolve depth must be positive")
	}
	return nil
}

// log returns the configured logger, or a no-op logger if none was set.
// This allows internal code to call logging methods without nil checks.
func (c *catalogConfig) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.New(discardHandler{})
}

// discardHandler is a slog.Handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// newCatalogConfig applies the options over the defaults and validates the result.
func newCatalogConfig(opts ...Option) (*catalogConfig, error) {
	c := &catalogConfig{
		pageSize:        registry.DefaultPageSize,
		maxResolveDepth: DefaultMaxResolveDepth,
		deadRegisters:   make(map[string]bool),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	if c.pageSize == 0 {
		c.pageSize = registry.DefaultPageSize
	}
	if c.maxResolveDepth == 0 {
		c.maxResolveDepth = DefaultMaxResolveDepth
	}

	return c, nil
}

// registryClient returns the shared client, or builds one from the options.
func (c *catalogConfig) registryClient() *registry.Client {
	if c.client != nil {
		return c.client
	}

	var opts []registry.ClientOption
	if c.httpClient != nil {
		opts = append(opts, registry.WithHTTPClient(c.httpClient))
	}
	if c.timeout > 0 {
		opts = append(opts, registry.WithTimeout(c.timeout))
	}
	opts = append(opts,
		registry.WithBaseDomain(c.baseDomain),
		registry.WithStore(c.store),
		registry.WithTracerProvider(c.tracerProvider),
		registry.WithLogger(c.logger),
	)
	return registry.NewClient(opts...)
}
