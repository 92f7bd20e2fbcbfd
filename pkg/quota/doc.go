// Package quota enforces a per-identity daily request ceiling.
//
// Each identity key owns one counter record that expires at the end of
// the calendar day it was created in. A request is admitted while the
// counter is below the ceiling and increments it; once the ceiling is
// reached further requests are rejected without touching the counter
// until the day rolls over.
//
//	lim := quota.New(quota.NewMemoryStore(), quota.WithLocation(loc))
//	d, err := lim.CheckAndIncrement(ctx, quota.UserKey(userID), 1000)
//	if err != nil { ... }
//	if !d.Allowed {
//		// 429, retry after d.RetryAfter(time.Now())
//	}
//
// Stores decide how the read-modify-write stays atomic per key:
// MemoryStore serializes callers with striped mutexes, RedisStore runs a
// Lua script and PostgresStore relies on a conditional upsert.
package quota
