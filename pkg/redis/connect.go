package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Option tunes the client created by Open.
type Option func(*options)

type options struct {
	poolSize      int
	minIdleConns  int
	retryAttempts int
	retryInterval time.Duration
	ioTimeout     time.Duration
	dialTimeout   time.Duration
}

// WithPoolSize caps open connections. Default: 10.
func WithPoolSize(n int) Option {
	return func(o *options) { o.poolSize = n }
}

// WithMinIdleConns keeps n connections warm. Default: 2.
func WithMinIdleConns(n int) Option {
	return func(o *options) { o.minIdleConns = n }
}

// WithRetry sets how many pings Open attempts before giving up. The wait
// between attempts grows linearly from interval. Default: 3, 2s.
func WithRetry(attempts int, interval time.Duration) Option {
	return func(o *options) {
		o.retryAttempts = attempts
		o.retryInterval = interval
	}
}

// WithTimeouts sets the dial and the read/write timeouts. Default: 5s, 1s.
func WithTimeouts(dial, io time.Duration) Option {
	return func(o *options) {
		o.dialTimeout = dial
		o.ioTimeout = io
	}
}

// Open connects to the Redis server at url (redis:// or rediss://) and
// pings it until it answers or the retries run out.
//
// Quota counters sit on the request path, so the I/O timeout defaults low.
func Open(ctx context.Context, url string, opts ...Option) (redis.UniversalClient, error) {
	if url == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, ErrFailedToParseURL
	}

	o := options{
		poolSize:      10,
		minIdleConns:  2,
		retryAttempts: 3,
		retryInterval: 2 * time.Second,
		ioTimeout:     time.Second,
		dialTimeout:   5 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}

	ro, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}
	ro.PoolSize = o.poolSize
	ro.MinIdleConns = o.minIdleConns
	ro.DialTimeout = o.dialTimeout
	ro.ReadTimeout = o.ioTimeout
	ro.WriteTimeout = o.ioTimeout

	var lastErr error
	for i := range max(o.retryAttempts, 1) {
		client := redis.NewClient(ro)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectionFailed, ctx.Err())
		case <-time.After(time.Duration(i+1) * o.retryInterval):
		}
	}

	return nil, errors.Join(ErrConnectionFailed, lastErr)
}
