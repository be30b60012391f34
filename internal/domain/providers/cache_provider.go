package providers

import (
	"context"
)

// CacheProvider defines the interface for caching operations. The analytics
// services memoize derived view models through it; writers invalidate by
// clinic-scoped key prefix.
type CacheProvider interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// DeleteByPrefix removes every key under a prefix
	DeleteByPrefix(ctx context.Context, prefix string) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) (bool, error)
}
