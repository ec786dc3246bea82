// Package cache provides storage for rendered frames, timeline plans and
// fetched assets.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [MemoryCache]: an in-process map with expiry (server default, tests)
//   - [RedisCache]: a shared Redis instance for multi-instance servers
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: stores nothing (--no-cache)
//
// All backends implement [Cache] and are safe for concurrent use. [Open]
// selects a backend from a [Config].
//
// # Keys
//
// A [Keyer] derives keys from the inputs of an operation. Frame keys hash the
// dataset and settings together with every option that changes the output, so
// a hit is always byte-identical to a fresh render.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values per entry type.
const (
	TTLFrame = 7 * 24 * time.Hour
	TTLPlan  = 7 * 24 * time.Hour
	TTLAsset = 24 * time.Hour
)

// Cache is a byte store with per-entry expiry. A ttl of 0 means no expiry.
//
// Get returns (nil, false, nil) on a miss; expired entries are misses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}
