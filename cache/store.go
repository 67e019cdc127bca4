// Package cache provides response stores for the Open Register client.
//
// A Store holds raw response bodies keyed by request URL. The registry
// client consults it before issuing a GET and writes every successful body
// back, so repeated runs can skip the network entirely.
//
// Four backends are available:
//
//   - NoopStore: never hits, discards writes
//   - MemoryStore: in-process, TTL based
//   - SQLiteStore: on-disk, survives process restarts
//   - RedisStore: shared between processes and hosts
//
// Example:
//
//	store, err := cache.OpenSQLiteStore("register_cache.sqlite", 24*time.Hour)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//	client := registry.NewClient(registry.WithStore(store))
package cache

import "context"

// Store is a byte-level response cache keyed by request URL.
type Store interface {
	// Get returns the cached body for key. The bool reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores body under key, replacing any previous entry.
	Put(ctx context.Context, key string, body []byte) error
}

// Compile-time interface compliance checks
var _ Store = NoopStore{}
var _ Store = (*MemoryStore)(nil)
var _ Store = (*SQLiteStore)(nil)
var _ Store = (*RedisStore)(nil)
var _ Store = (*FailingStore)(nil)

// NoopStore is a store that discards all writes and always returns cache misses.
type NoopStore struct{}

// Get always returns a cache miss.
func (NoopStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Put discards the body and returns success.
func (NoopStore) Put(ctx context.Context, key string, body []byte) error {
	return nil
}

// cloneBytes returns a copy so callers cannot mutate cached bodies.
func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
