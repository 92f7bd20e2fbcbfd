//go:build integration

package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inkwell/pkg/cache"
	"github.com/dmitrymomot/inkwell/pkg/redis"
)

func newRedisClient(t *testing.T) goredis.UniversalClient {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}

	client, err := redis.Open(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

type category struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func TestRedisCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewRedis[[]category](newRedisClient(t), cache.WithPrefix("test-categories"))
	t.Cleanup(func() { _ = c.Clear(ctx) })

	_, err := c.Get(ctx, "all")
	require.ErrorIs(t, err, cache.ErrNotFound)

	want := []category{{Name: "Tech", Slug: "tech"}, {Name: "Life", Slug: "life"}}
	require.NoError(t, c.Set(ctx, "all", want, time.Minute))

	got, err := c.Get(ctx, "all")
	require.NoError(t, err)
	require.Equal(t, want, got)

	require.NoError(t, c.Delete(ctx, "all"))
	_, err = c.Get(ctx, "all")
	require.ErrorIs(t, err, cache.ErrNotFound)
}

func TestRedisCacheClearKeepsOtherPrefixes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newRedisClient(t)
	a := cache.NewRedis[int](client, cache.WithPrefix("test-clear-a"))
	b := cache.NewRedis[int](client, cache.WithPrefix("test-clear-b"))
	t.Cleanup(func() { _ = b.Clear(ctx) })

	require.NoError(t, a.Set(ctx, "x", 1, time.Minute))
	require.NoError(t, b.Set(ctx, "x", 2, time.Minute))
	require.NoError(t, a.Clear(ctx))

	_, err := a.Get(ctx, "x")
	require.ErrorIs(t, err, cache.ErrNotFound)
	v, err := b.Get(ctx, "x")
	require.NoError(t, err)
	require.Equal(t, 2, v)
}
