package cache

import (
	"context"
	"time"
)

// Cache is the common interface for cache implementations
type Cache interface {
	// Get retrieves a value from the cache; the second return reports presence
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in the cache with an expiration
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)

	// Delete removes a value from the cache
	Delete(ctx context.Context, key string)

	// DeleteByPrefix removes all values whose key starts with the given prefix
	DeleteByPrefix(ctx context.Context, prefix string)

	// Flush removes all values from the cache
	Flush(ctx context.Context)
}
