package cache

import (
	"context"
	"time"
)

// GetOrCompute returns the cached value for key, or computes, stores and
// returns it. A failing cache is treated as a miss; only compute errors are
// returned. hit reports whether the value came from the cache.
func GetOrCompute(ctx context.Context, c Cache, key string, ttl time.Duration, compute func() ([]byte, error)) (data []byte, hit bool, err error) {
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		return data, true, nil
	}
	data, err = compute()
	if err != nil {
		return nil, false, err
	}
	_ = c.Set(ctx, key, data, ttl)
	return data, false, nil
}
