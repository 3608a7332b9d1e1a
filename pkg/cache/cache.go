// Package cache provides pluggable byte caches for podfeed.
//
// The statistics provider caches GitHub responses through a [Cache] so that
// rebuilding the feed does not hit the API for every pod every time. Three
// backends are available:
//
//   - [FileCache]: entries as JSON files under ~/.cache/podfeed (CLI default)
//   - [RedisCache]: shared cache for the HTTP publisher
//   - [NullCache]: caching disabled (--no-cache, tests)
//
// Use [NewScoped] to give each data source its own key space.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
//
// Get reports a miss with (nil, false, nil); errors are reserved for backend
// failures. A ttl of 0 passed to Set means the entry never expires.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
