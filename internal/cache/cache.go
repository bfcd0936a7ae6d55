// Package cache provides a small byte cache used to memoize the parsed
// catalog per rotation, so page views between refreshes skip re-parsing the
// raw payload. The interface allows swapping the in-memory implementation
// (single instance) for Redis (multiple instances) by configuration.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with a TTL.
type Cache interface {
	// Get retrieves a value by key. Returns ErrCacheMiss if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

type cacheError string

func (e cacheError) Error() string { return string(e) }

// ErrCacheMiss indicates the key was not found in cache.
const ErrCacheMiss cacheError = "cache miss"
