package quota

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// takeScript performs the Store.Take steps inside Redis so concurrent
// callers across instances never overshoot the ceiling.
//
// KEYS[1] counter hash
// ARGV[1] ceiling, ARGV[2] now (unix ms), ARGV[3] resets_at for a fresh window (unix ms)
// Returns {allowed, count, resets_at}.
var takeScript = redis.NewScript(`
local ceiling = tonumber(ARGV[1])
local now = tonumber(ARGV[2])
local count = tonumber(redis.call('HGET', KEYS[1], 'count') or '0')
local resets = tonumber(redis.call('HGET', KEYS[1], 'resets_at') or '0')

if resets == 0 or now > resets then
	count = 0
	resets = tonumber(ARGV[3])
end

if count >= ceiling then
	return {0, count, resets}
end

count = count + 1
redis.call('HSET', KEYS[1], 'count', count, 'resets_at', resets)
redis.call('PEXPIREAT', KEYS[1], resets + 60000)
return {1, count, resets}
`)

// RedisStore keeps counters in Redis hashes that expire shortly after
// their window ends.
type RedisStore struct {
	client redis.Scripter
	prefix string
}

// NewRedisStore creates a store. Keys are written as "{prefix}:{key}";
// an empty prefix defaults to "quota".
func NewRedisStore(client redis.Scripter, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "quota"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Take implements Store.
func (s *RedisStore) Take(ctx context.Context, key string, ceiling int64, now, resetsAt time.Time) (Record, bool, error) {
	res, err := takeScript.Run(ctx, s.client, []string{s.prefix + ":" + key},
		ceiling, now.UnixMilli(), resetsAt.UnixMilli(),
	).Int64Slice()
	if err != nil {
		return Record{}, false, err
	}
	if len(res) != 3 {
		return Record{}, false, errors.Join(ErrBadResponse, errors.New("want 3 values from take script"))
	}

	rec := Record{
		Key:      key,
		Count:    res[1],
		ResetsAt: time.UnixMilli(res[2]).In(resetsAt.Location()),
	}
	return rec, res[0] == 1, nil
}

var _ Store = (*RedisStore)(nil)
