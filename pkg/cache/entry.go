package cache

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Entry is a single cached key with generation-fenced loads. Invalidate
// bumps the generation, and a load that overlaps it never leaves its
// result in the cache.
type Entry[V any] struct {
	cache Cache[V]
	key   string
	ttl   time.Duration
	gen   atomic.Uint64
	loads singleflight.Group
}

// NewEntry binds key in c. A zero ttl means the cache default.
func NewEntry[V any](c Cache[V], key string, ttl time.Duration) *Entry[V] {
	return &Entry[V]{cache: c, key: key, ttl: ttl}
}

// Get returns the cached value or loads it with fn. Concurrent misses
// within one generation share a single fn call. Failing to store the
// loaded value is not an error.
func (e *Entry[V]) Get(ctx context.Context, fn func(ctx context.Context) (V, error)) (V, error) {
	if v, err := e.cache.Get(ctx, e.key); err == nil {
		return v, nil
	}

	gen := e.gen.Load()
	res, err, _ := e.loads.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		_ = e.cache.Set(ctx, e.key, v, e.ttl)
		// Invalidate bumps before it deletes, so either its delete lands
		// after this Set or the bump is visible here.
		if e.gen.Load() != gen {
			_ = e.cache.Delete(ctx, e.key)
		}
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Invalidate drops the cached value and fences off in-flight loads.
func (e *Entry[V]) Invalidate(ctx context.Context) error {
	e.gen.Add(1)
	return e.cache.Delete(ctx, e.key)
}
