package cache

import (
	"context"
	"time"

	"github.com/matzehuels/lifeline/pkg/observability"
)

// Instrumented reports every lookup and write of the wrapped cache to the
// registered observability.CacheHooks, labelled with [KeyType].
type Instrumented struct {
	Cache
}

// WithHooks wraps c so its traffic reaches the cache hooks.
func WithHooks(c Cache) Cache {
	if c == nil {
		c = NewNullCache()
	}
	return &Instrumented{Cache: c}
}

// Get implements [Cache].
func (c *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if hit && err == nil {
		observability.Cache().OnCacheHit(ctx, KeyType(key))
	} else {
		observability.Cache().OnCacheMiss(ctx, KeyType(key))
	}
	return data, hit, err
}

// Set implements [Cache].
func (c *Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, KeyType(key), len(data))
	return nil
}
