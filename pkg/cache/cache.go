// Package cache stores computed layouts and rendered artifacts between runs.
//
// Layout is deterministic for a given diagram and set of options, so the
// pipeline keys results by a hash of both and skips the computation on a
// hit. Three backends are provided:
//
//   - [NullCache]: never stores anything (--no-cache)
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance
//
// [Instrument] wraps any backend so hits, misses and writes reach the
// registered [observability.CacheHooks].
//
// Cache failures are never fatal to the pipeline: callers treat a Get error
// as a miss and log Set errors.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. Expired entries
	// are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
