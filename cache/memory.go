package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	// DefaultExpiration is a suggested ttl for NewMemoryStore in short-lived
	// processes.
	DefaultExpiration = 10 * time.Minute

	// DefaultCleanupInterval is how often expired entries are evicted.
	DefaultCleanupInterval = 30 * time.Minute
)

// MemoryStore is an in-process store backed by go-cache.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates an in-memory store whose entries expire after ttl.
// A zero or negative ttl keeps entries until Flush is called.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		return &MemoryStore{cache: gocache.New(gocache.NoExpiration, 0)}
	}
	return &MemoryStore{cache: gocache.New(ttl, DefaultCleanupInterval)}
}

// Get retrieves a cached body.
func (c *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, found := c.cache.Get(key)
	if !found {
		return nil, false, nil
	}

	body, ok := value.([]byte)
	if !ok {
		return nil, false, nil
	}
	return cloneBytes(body), true, nil
}

// Put stores a body using the store's default expiration.
func (c *MemoryStore) Put(ctx context.Context, key string, body []byte) error {
	c.cache.Set(key, cloneBytes(body), gocache.DefaultExpiration)
	return nil
}

// Len returns the number of cached entries, including expired ones not yet
// cleaned up.
func (c *MemoryStore) Len() int {
	return c.cache.ItemCount()
}

// Flush removes all entries.
func (c *MemoryStore) Flush() {
	c.cache.Flush()
}
