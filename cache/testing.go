package cache

import (
	"context"
	"errors"
)

// FailingStore is a store that always returns errors.
// Useful for testing that cache failures never break a fetch.
type FailingStore struct {
	GetErr error
	PutErr error
}

// NewFailingStore creates a store that fails with the given errors.
func NewFailingStore(getErr, putErr error) *FailingStore {
	if getErr == nil {
		getErr = errors.New("cache get failed")
	}
	if putErr == nil {
		putErr = errors.New("cache put failed")
	}
	return &FailingStore{GetErr: getErr, PutErr: putErr}
}

// Get always returns an error.
func (c *FailingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, c.GetErr
}

// Put always returns an error.
func (c *FailingStore) Put(ctx context.Context, key string, body []byte) error {
	return c.PutErr
}
