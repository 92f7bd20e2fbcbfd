package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOption configures Redis.
type RedisOption func(*redisOptions)

type redisOptions struct {
	codec      any
	prefix     string
	defaultTTL time.Duration
}

// WithPrefix namespaces keys as "{prefix}:{key}".
func WithPrefix(prefix string) RedisOption {
	return func(o *redisOptions) { o.prefix = prefix }
}

// WithRedisDefaultTTL sets the TTL used when Set receives zero. Default: 1h.
func WithRedisDefaultTTL(d time.Duration) RedisOption {
	return func(o *redisOptions) { o.defaultTTL = d }
}

// WithCodec replaces the JSON codec. c must implement Codec[V] for the
// cache's value type, otherwise it is ignored.
func WithCodec(c any) RedisOption {
	return func(o *redisOptions) { o.codec = c }
}

// Redis is a cache stored in Redis. The client is owned by the caller.
type Redis[V any] struct {
	client redis.UniversalClient
	codec  Codec[V]
	opts   redisOptions
}

// NewRedis creates a Redis-backed cache.
func NewRedis[V any](client redis.UniversalClient, opts ...RedisOption) *Redis[V] {
	o := redisOptions{defaultTTL: time.Hour}
	for _, opt := range opts {
		opt(&o)
	}

	codec, ok := o.codec.(Codec[V])
	if !ok {
		codec = jsonCodec[V]{}
	}

	return &Redis[V]{client: client, codec: codec, opts: o}
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V

	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, err
	}
	return r.codec.Unmarshal(data)
}

func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := r.codec.Marshal(value)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = r.opts.defaultTTL
	}
	// Redis treats 0 as "keep forever".
	return r.client.Set(ctx, r.key(key), data, max(ttl, 0)).Err()
}

func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Clear removes the prefixed keys with SCAN, or flushes the database
// when no prefix is set.
func (r *Redis[V]) Clear(ctx context.Context) error {
	if r.opts.prefix == "" {
		return r.client.FlushDB(ctx).Err()
	}

	iter := r.client.Scan(ctx, 0, r.opts.prefix+":*", 100).Iterator()
	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return r.client.Del(ctx, batch...).Err()
	}
	return nil
}

func (r *Redis[V]) Close() error { return nil }

func (r *Redis[V]) key(k string) string {
	if r.opts.prefix == "" {
		return k
	}
	return r.opts.prefix + ":" + k
}

var _ Cache[any] = (*Redis[any])(nil)
