package cache

import (
	"context"
	"time"
)

// NullCache stores nothing, so every layout and artifact lookup is a miss
// and the pipeline recomputes it. It stands in for the file cache when the
// CLI runs with --no-cache or has no usable cache directory, and
// [WithHooks] wraps it when given no cache at all so misses are still
// reported to the cache hooks.
type NullCache struct{}

// NewNullCache returns a cache that never hits.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get reports a miss for every key.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set drops data; rendered layouts are never kept.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

func (c *NullCache) Delete(ctx context.Context, key string) error { return nil }

func (c *NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
