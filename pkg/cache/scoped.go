package cache

import (
	"context"
	"time"

	"github.com/matzehuels/podfeed/pkg/observability"
)

// Scoped wraps a Cache and prefixes every key, giving a component its own
// namespace inside a shared backend. It also reports hits, misses and writes
// to the registered observability cache hooks.
//
//	github := cache.NewScoped(backend, "github:")
//	github.Set(ctx, "repo:AFNetworking/AFNetworking", data, time.Hour)
type Scoped struct {
	inner  Cache
	prefix string
}

// NewScoped creates a Scoped view of inner. A nil inner is treated as a
// NullCache.
func NewScoped(inner Cache, prefix string) *Scoped {
	if inner == nil {
		inner = NewNullCache()
	}
	return &Scoped{inner: inner, prefix: prefix}
}

// Prefix returns the key prefix of this view.
func (s *Scoped) Prefix() string { return s.prefix }

// Get retrieves a prefixed key from the inner cache.
func (s *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := s.inner.Get(ctx, s.prefix+key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, s.prefix)
		} else {
			observability.Cache().OnCacheMiss(ctx, s.prefix)
		}
	}
	return data, hit, err
}

// Set stores a prefixed key in the inner cache.
func (s *Scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := s.inner.Set(ctx, s.prefix+key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, s.prefix, len(data))
	return nil
}

// Delete removes a prefixed key from the inner cache.
func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close closes the inner cache.
func (s *Scoped) Close() error {
	return s.inner.Close()
}

var _ Cache = (*Scoped)(nil)
