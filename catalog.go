package openregister

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/albertocavalcante/go-openregister/registry"
)

// Catalog constructs registers and fields and keeps one live instance per
// (type, phase, name). Metadata for an instance is fetched exactly once;
// failed constructions are not remembered, so a later call retries.
//
// A Catalog is safe for concurrent use. Concurrent requests for the same
// instance share a single construction.
type Catalog struct {
	client *registry.Client
	cfg    *catalogConfig
	log    *slog.Logger

	mu        sync.Mutex
	instances map[string]any // "type--phase--name" -> *Register or *Field
	group     singleflight.Group
}

// NewCatalog creates an empty catalog.
func NewCatalog(opts ...Option) (*Catalog, error) {
	cfg, err := newCatalogConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Catalog{
		client:    cfg.registryClient(),
		cfg:       cfg,
		log:       cfg.log(),
		instances: make(map[string]any),
	}, nil
}

// Client returns the registry client the catalog fetches through.
func (c *Catalog) Client() *registry.Client {
	return c.client
}

// Len returns the number of live registers and fields.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.instances)
}

// Register returns the register name on phase, fetching its metadata and
// resolving its fields on first use.
func (c *Catalog) Register(ctx context.Context, phase, name string) (*Register, error) {
	return load(c, cacheKey(registry.MetaTypeRegister, phase, name), func() (*Register, error) {
		return c.buildRegister(ctx, phase, name)
	})
}

// Field returns the field name on phase, fetching its metadata on first use.
func (c *Catalog) Field(ctx context.Context, phase, name string) (*Field, error) {
	return load(c, cacheKey(registry.MetaTypeField, phase, name), func() (*Field, error) {
		meta, err := c.client.GetFieldMetadata(ctx, phase, name)
		if err != nil {
			return nil, err
		}
		c.log.Debug("loaded field", "phase", phase, "field", name, "datatype", meta.Datatype)
		return newField(name, phase, RemoteField, *meta), nil
	})
}

// systemField returns the synthetic field name on phase. It never fetches.
func (c *Catalog) systemField(phase, name string) *Field {
	f, _ := load(c, cacheKey(registry.MetaTypeField, phase, name), func() (*Field, error) {
		return newField(name, phase, SystemField, registry.FieldMetadata{}), nil
	})
	return f
}

func (c *Catalog) buildRegister(ctx context.Context, phase, name string) (*Register, error) {
	meta, err := c.client.GetRegisterMetadata(ctx, phase, name)
	if err != nil {
		return nil, err
	}

	fields := make([]*Field, 0, len(meta.Fields)+len(SystemFields))
	for _, fieldName := range meta.Fields {
		f, err := c.Field(ctx, phase, fieldName)
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", name, err)
		}
		fields = append(fields, f)
	}
	for _, fieldName := range SystemFields {
		fields = append(fields, c.systemField(phase, fieldName))
	}

	c.log.Debug("loaded register", "phase", phase, "register", name, "fields", len(fields))
	return &Register{
		name:    name,
		phase:   phase,
		meta:    *meta,
		fields:  fields,
		catalog: c,
	}, nil
}

// load returns the instance under key, building and storing it on a miss.
func load[T any](c *Catalog, key string, build func() (T, error)) (T, error) {
	c.mu.Lock()
	if v, ok := c.instances[key]; ok {
		c.mu.Unlock()
		return v.(T), nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.Lock()
		if v, ok := c.instances[key]; ok {
			c.mu.Unlock()
			return v, nil
		}
		c.mu.Unlock()

		built, err := build()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.instances[key] = built
		c.mu.Unlock()
		return built, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// cacheKey joins the identity triple the way instances are keyed.
func cacheKey(metaType, phase, name string) string {
	return strings.Join([]string{metaType, phase, name}, "--")
}
