package cache

import (
	"context"
	"time"

	"github.com/matzehuels/tablescape/pkg/observability"
)

// Instrumented reports cache traffic to observability hooks.
type Instrumented struct {
	Cache
	hooks observability.CacheHooks
}

// Instrument wraps c so every Get and Set is reported to the registered
// cache hooks, labelled by KeyType.
func Instrument(c Cache) *Instrumented {
	return &Instrumented{Cache: c, hooks: observability.Cache()}
}

// Get implements Cache.
func (c *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			c.hooks.OnCacheHit(ctx, KeyType(key))
		} else {
			c.hooks.OnCacheMiss(ctx, KeyType(key))
		}
	}
	return data, hit, err
}

// Set implements Cache.
func (c *Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		c.hooks.OnCacheSet(ctx, KeyType(key), len(data))
	}
	return err
}
