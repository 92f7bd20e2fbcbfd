package middlewares_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inkwell/middlewares"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestThrottleStore(t *testing.T) {
	t.Parallel()

	t.Run("burst then refill", func(t *testing.T) {
		t.Parallel()
		clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
		s := middlewares.NewThrottleStore(60, middlewares.WithThrottleClock(clock.Now))

		for range 60 {
			ok, _ := s.Reserve("ip:1")
			require.True(t, ok)
		}
		ok, wait := s.Reserve("ip:1")
		assert.False(t, ok)
		assert.InDelta(t, time.Second, wait, float64(10*time.Millisecond))

		clock.Advance(time.Second)
		ok, _ = s.Reserve("ip:1")
		assert.True(t, ok)
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()
		s := middlewares.NewThrottleStore(1)

		ok, _ := s.Reserve("a")
		assert.True(t, ok)
		ok, _ = s.Reserve("a")
		assert.False(t, ok)
		ok, _ = s.Reserve("b")
		assert.True(t, ok)
	})

	t.Run("cleanup drops idle keys", func(t *testing.T) {
		t.Parallel()
		clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
		s := middlewares.NewThrottleStore(10,
			middlewares.WithThrottleClock(clock.Now),
			middlewares.WithThrottleIdleTTL(time.Minute))

		s.Reserve("old")
		clock.Advance(2 * time.Minute)
		s.Reserve("fresh")

		assert.Equal(t, 1, s.Cleanup())
		assert.Equal(t, 1, s.Len())
	})

	t.Run("janitor stops with context", func(t *testing.T) {
		t.Parallel()
		clock := &fakeClock{now: time.Now()}
		s := middlewares.NewThrottleStore(10,
			middlewares.WithThrottleClock(clock.Now),
			middlewares.WithThrottleIdleTTL(time.Millisecond))
		s.Reserve("k")
		clock.Advance(time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		s.StartJanitor(ctx, 5*time.Millisecond)

		assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
	})
}

func TestThrottle(t *testing.T) {
	t.Parallel()

	app := newApp(ok, middlewares.Throttle(middlewares.NewThrottleStore(2), nil))

	assert.Equal(t, http.StatusOK, do(app, fromAddr("198.51.100.1:1")).Code)
	assert.Equal(t, http.StatusOK, do(app, fromAddr("198.51.100.1:1")).Code)

	rec := do(app, fromAddr("198.51.100.1:1"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do(app, fromAddr("198.51.100.2:1")).Code)
}
