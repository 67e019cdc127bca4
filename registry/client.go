package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/albertocavalcante/go-openregister/cache"
)

// Client configuration defaults.
const (
	DefaultBaseDomain          = "openregister.org"
	DefaultPageSize            = 5000
	DefaultMaxIdleConns        = 50
	DefaultMaxIdleConnsPerHost = 20
	DefaultIdleConnTimeout     = 90 * time.Second
	DefaultRequestTimeout      = 15 * time.Second
)

const tracerName = "github.com/albertocavalcante/go-openregister/registry"

// StatusError is returned when an endpoint answers with a non-200 status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// Client fetches metadata and records from the Open Register platform.
type Client struct {
	baseDomain string
	client     *http.Client
	store      cache.Store
	tracer     trace.Tracer
	logger     *slog.Logger

	validateResponses bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithValidation enables or disables validation of metadata responses.
func WithValidation(enabled bool) ClientOption {
	return func(c *Client) {
		c.validateResponses = enabled
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithTimeout sets a custom HTTP request timeout.
// Zero or negative values fall back to the default timeout (15 seconds).
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.client.Timeout = timeout
		} else {
			c.client.Timeout = DefaultRequestTimeout
		}
	}
}

// WithBaseDomain replaces "openregister.org" in every endpoint, for mirrors.
func WithBaseDomain(domain string) ClientOption {
	return func(c *Client) {
		if domain != "" {
			c.baseDomain = strings.Trim(domain, ".")
		}
	}
}

// WithStore sets the response store consulted before each request.
func WithStore(store cache.Store) ClientOption {
	return func(c *Client) {
		if store != nil {
			c.store = store
		}
	}
}

// WithTracerProvider enables a span per fetch.
func WithTracerProvider(tp trace.TracerProvider) ClientOption {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithLogger sets the logger for cache diagnostics.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for the public Open Register platform.
//
// By default, metadata responses are validated and no response store is used.
func NewClient(opts ...ClientOption) *Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
		DisableCompression:  false,
	}

	c := &Client{
		baseDomain: DefaultBaseDomain,
		client: &http.Client{
			Timeout:   DefaultRequestTimeout,
			Transport: transport,
		},
		store:             cache.NoopStore{},
		tracer:            noop.NewTracerProvider().Tracer(tracerName),
		logger:            slog.New(slog.DiscardHandler),
		validateResponses: true,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseDomain returns the domain every endpoint hangs off.
func (c *Client) BaseDomain() string {
	return c.baseDomain
}

// MetadataURL returns the metadata endpoint for a register or field.
func (c *Client) MetadataURL(metaType, phase, name string) string {
	return fmt.Sprintf("http://%s.%s.%s/record/%s.json", metaType, phase, c.baseDomain, name)
}

// RecordsURL returns the record set endpoint for a register.
func (c *Client) RecordsURL(phase, name string, pageSize int) string {
	return fmt.Sprintf("https://%s.%s.%s/records.json?page-size=%d", name, phase, c.baseDomain, pageSize)
}

// RegisterIndexURL returns the endpoint listing every register on a phase.
func (c *Client) RegisterIndexURL(phase string) string {
	return fmt.Sprintf("http://%s.%s.%s/records.json", MetaTypeRegister, phase, c.baseDomain)
}

// GetRegisterMetadata fetches and parses a register's metadata record.
func (c *Client) GetRegisterMetadata(ctx context.Context, phase, name string) (*RegisterMetadata, error) {
	if err := validateTarget(phase, name); err != nil {
		return nil, err
	}

	var meta RegisterMetadata
	err := c.getJSON(ctx, c.MetadataURL(MetaTypeRegister, phase, name), &meta, func() error {
		if !c.validateResponses {
			return nil
		}
		if err := meta.Validate(); err != nil {
			return fmt.Errorf("register metadata validation failed for %s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, wrapFetch("register metadata", name, err)
	}
	return &meta, nil
}

// GetFieldMetadata fetches and parses a field's metadata record.
func (c *Client) GetFieldMetadata(ctx context.Context, phase, name string) (*FieldMetadata, error) {
	if err := ValidatePhase(phase); err != nil {
		return nil, err
	}
	if err := ValidateFieldName(name); err != nil {
		return nil, err
	}

	var meta FieldMetadata
	err := c.getJSON(ctx, c.MetadataURL(MetaTypeField, phase, name), &meta, func() error {
		if !c.validateResponses {
			return nil
		}
		if err := meta.Validate(); err != nil {
			return fmt.Errorf("field metadata validation failed for %s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, wrapFetch("field metadata", name, err)
	}
	return &meta, nil
}

// GetRecords fetches a single page of a register's records.
// A zero or negative pageSize uses DefaultPageSize.
func (c *Client) GetRecords(ctx context.Context, phase, name string, pageSize int) (*RecordSet, error) {
	if err := validateTarget(phase, name); err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var records RecordSet
	if err := c.getJSON(ctx, c.RecordsURL(phase, name, pageSize), &records, nil); err != nil {
		return nil, wrapFetch("records", name, err)
	}
	return &records, nil
}

// GetRegisterIndex fetches every register declared on a phase.
func (c *Client) GetRegisterIndex(ctx context.Context, phase string) (*RegisterIndex, error) {
	if err := ValidatePhase(phase); err != nil {
		return nil, err
	}

	var index RegisterIndex
	if err := c.getJSON(ctx, c.RegisterIndexURL(phase), &index, nil); err != nil {
		return nil, wrapFetch("register index", phase, err)
	}
	return &index, nil
}

func validateTarget(phase, name string) error {
	if err := ValidatePhase(phase); err != nil {
		return err
	}
	return ValidateName(name)
}

// checkError marks a failure of the caller's check on a decoded body.
type checkError struct{ err error }

func (e *checkError) Error() string { return e.err.Error() }
func (e *checkError) Unwrap() error { return e.err }

// wrapFetch adds the "failed to fetch" context to transport and decode
// errors. Check failures already carry their own context.
func wrapFetch(what, name string, err error) error {
	var cerr *checkError
	if errors.As(err, &cerr) {
		return cerr.err
	}
	return fmt.Errorf("failed to fetch %s for %s: %w", what, name, err)
}

// getJSON fetches url and decodes the body into v, then runs check if set.
// A fresh body is written to the store only once it decodes and passes check.
func (c *Client) getJSON(ctx context.Context, url string, v any, check func() error) error {
	ctx, span := c.tracer.Start(ctx, "registry.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("url.full", url)),
	)
	defer span.End()

	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	body, hit := c.lookup(ctx, url)
	span.SetAttributes(attribute.Bool("cache.hit", hit))
	if !hit {
		var err error
		if body, err = c.get(ctx, url); err != nil {
			return fail(err)
		}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fail(fmt.Errorf("failed to parse %s: %w", url, err))
	}
	if check != nil {
		if err := check(); err != nil {
			return fail(&checkError{err: err})
		}
	}

	if !hit {
		if err := c.store.Put(ctx, url, body); err != nil {
			c.logger.Warn("response cache write failed", "url", url, "error", err)
		}
	}
	return nil
}

// lookup returns the stored body for url. Store errors count as misses.
func (c *Client) lookup(ctx context.Context, url string) ([]byte, bool) {
	body, ok, err := c.store.Get(ctx, url)
	if err != nil {
		c.logger.Warn("response cache read failed", "url", url, "error", err)
		return nil, false
	}
	if ok {
		c.logger.Debug("response cache hit", "url", url)
	}
	return body, ok
}

// get performs an HTTP GET and returns the response body.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	return io.ReadAll(resp.Body)
}
