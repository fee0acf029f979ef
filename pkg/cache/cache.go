// Package cache stores detection results keyed by boot file content.
//
// Detection is a pure function of the boot file bytes, so its result can be
// reused across scans of the same package, or of different packages that
// ship the same build. Implementations:
//
//   - [FileCache]: sharded JSON files under a local directory (CLI default)
//   - [RedisCache]: a shared Redis instance
//   - [NullCache]: disables caching
//
// Keys are produced by a [Keyer] so that several deployments can share one
// backend through [ScopedKeyer].
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long detection results are kept when no TTL is configured.
const DefaultTTL = 30 * 24 * time.Hour

// Cache is a byte-oriented key/value store with optional expiration.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// NullCache never stores anything. It backs --no-cache and the "none"
// backend.
type NullCache struct{}

// NewNullCache returns a cache on which every Get misses.
func NewNullCache() Cache {
	return NullCache{}
}

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
