// Package cache stores rendered artifacts so that unchanged lineage
// documents are not laid out and rendered again.
//
// Keys are derived from everything that influences the output: the
// document bytes, the configuration and the render flags. [Key] hashes
// those parts into a stable string.
//
//	key := cache.Key("render", docHash, cfgHash, "svg", detailed)
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    return data, nil
//	}
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Close() error
}

// NullCache misses on every lookup and discards writes. It backs --no-cache
// and the "none" backend.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() *NullCache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error                     { return nil }
func (*NullCache) Close() error                                             { return nil }

var _ Cache = (*NullCache)(nil)
