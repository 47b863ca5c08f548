// Package cache provides byte-level caches for remote analysis results.
//
// A style analysis is expensive and deterministic enough per image that
// repeating it for the same picture wastes quota. [Cache] stores the raw
// result bytes under keys built by a [Keyer]; callers own serialization.
//
// Three backends are provided:
//
//   - [FileCache]: one JSON file per entry under a local directory (CLI)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: stores nothing (caching disabled, tests)
//
// Entries carry their own TTL. Expired entries read as misses.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values by key.
//
// Get reports a miss as (nil, false, nil); an error means the backend
// itself failed and the caller should treat the lookup as a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}
