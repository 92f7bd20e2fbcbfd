package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inkwell/internal/web"
	"github.com/dmitrymomot/inkwell/middlewares"
	"github.com/dmitrymomot/inkwell/pkg/quota"
)

type brokenLimiter struct{}

func (brokenLimiter) CheckAndIncrement(context.Context, string, int64) (quota.Decision, error) {
	return quota.Decision{}, errors.New("redis: connection refused")
}

func (brokenLimiter) Now() time.Time { return time.Now() }

func fromAddr(addr string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = addr
	return req
}

func TestDailyQuota(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)
	newLimiter := func() *quota.Limiter {
		return quota.New(quota.NewMemoryStore(),
			quota.WithClock(func() time.Time { return now }),
			quota.WithLocation(time.UTC))
	}

	t.Run("admits up to the ceiling then rejects", func(t *testing.T) {
		t.Parallel()
		app := newApp(ok, middlewares.DailyQuota(newLimiter(), 3))

		for i := range 3 {
			rec := do(app, fromAddr("198.51.100.1:1000"))
			require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
			assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
			assert.Equal(t, strconv.Itoa(2-i), rec.Header().Get("X-RateLimit-Remaining"))
		}

		rec := do(app, fromAddr("198.51.100.1:1000"))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.JSONEq(t, `{"error":"API rate limit exceeded. Try again later."}`, rec.Body.String())
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		// Two hours until midnight UTC.
		assert.Equal(t, "7200", rec.Header().Get("Retry-After"))

		reset := quota.EndOfDay(now).Unix()
		assert.Equal(t, strconv.FormatInt(reset, 10), rec.Header().Get("X-RateLimit-Reset"))
	})

	t.Run("identities are isolated", func(t *testing.T) {
		t.Parallel()
		app := newApp(ok, middlewares.DailyQuota(newLimiter(), 1))

		assert.Equal(t, http.StatusOK, do(app, fromAddr("198.51.100.1:1")).Code)
		assert.Equal(t, http.StatusTooManyRequests, do(app, fromAddr("198.51.100.1:2")).Code)
		assert.Equal(t, http.StatusOK, do(app, fromAddr("198.51.100.2:1")).Code)
	})

	t.Run("authenticated caller charged by user", func(t *testing.T) {
		t.Parallel()
		tokens := newTokens(t, time.Now)
		token, err := tokens.Issue("7", "", "")
		require.NoError(t, err)

		app := newApp(ok, middlewares.Auth(tokens), middlewares.DailyQuota(newLimiter(), 1))

		first := bearer(token)
		first.RemoteAddr = "198.51.100.1:1"
		assert.Equal(t, http.StatusOK, do(app, first).Code)

		second := bearer(token)
		second.RemoteAddr = "203.0.113.5:1"
		assert.Equal(t, http.StatusTooManyRequests, do(app, second).Code)
	})

	t.Run("zero ceiling rejects everything", func(t *testing.T) {
		t.Parallel()
		rec := do(newApp(ok, middlewares.DailyQuota(newLimiter(), 0)), fromAddr("198.51.100.1:1"))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("store failure fails open by default", func(t *testing.T) {
		t.Parallel()
		rec := do(newApp(ok, middlewares.DailyQuota(brokenLimiter{}, 10)), fromAddr("198.51.100.1:1"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	})

	t.Run("store failure fails closed when configured", func(t *testing.T) {
		t.Parallel()
		mw := middlewares.DailyQuota(brokenLimiter{}, 10, middlewares.WithQuotaFailOpen(false))
		rec := do(newApp(ok, mw), fromAddr("198.51.100.1:1"))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("handler failure does not refund", func(t *testing.T) {
		t.Parallel()
		failing := func(c web.Context) error { return errors.New("boom") }
		app := newApp(failing, middlewares.DailyQuota(newLimiter(), 1))

		assert.Equal(t, http.StatusInternalServerError, do(app, fromAddr("198.51.100.9:1")).Code)
		assert.Equal(t, http.StatusTooManyRequests, do(app, fromAddr("198.51.100.9:1")).Code)
	})
}
