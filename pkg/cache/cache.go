// Package cache stores computed layouts and rendered artifacts keyed by a
// hash of their inputs.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, used by the CLI
//   - [RedisCache]: shared cache for the API server (github.com/redis/go-redis/v9)
//   - [MemoryCache]: process-local map, used in tests and by `serve` without Redis
//   - [NullCache]: caching disabled
//
// # Keys
//
// A [Keyer] derives keys from content hashes. Layout keys combine the hash
// of the input document with everything that changes geometry (the layout
// config); artifact keys combine the hash of a serialized layout with the
// output format and style switches. Identical inputs therefore map to the
// same key across processes and backends:
//
//	k := cache.NewDefaultKeyer()
//	key := k.LayoutKey(cache.Hash(doc), cache.LayoutKeyOpts{ConfigHash: cfgHash})
//	if data, ok, _ := c.Get(ctx, key); ok {
//		...
//	}
//
// A cache is an optimization only: every error from Get is treated as a miss
// by callers, and Set failures are logged and ignored.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is
	// reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Default entry lifetimes. Layouts are pure functions of their inputs, so
// they only expire to bound storage.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
