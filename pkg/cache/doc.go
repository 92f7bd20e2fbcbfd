// Package cache holds small generic caches used by the API: an in-process
// LRU with TTLs and a Redis-backed variant sharing the same interface.
//
// Category listings are cached through an [Entry] and invalidated
// whenever a category changes:
//
//	categories := cache.NewEntry(cache.NewMemory[[]content.Category](), "all", 5*time.Minute)
//	list, err := categories.Get(ctx, repo.List)
//	...
//	err = categories.Invalidate(ctx)
//
// A zero TTL means the cache default, a negative one means no expiry.
//
// The in-memory cache accepts a clock through [WithClock], which lets the
// quota counters share one notion of "now" with their limiter.
package cache
