package middlewares

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/inkwell/internal/web"
	"github.com/dmitrymomot/inkwell/pkg/quota"
)

// QuotaExceededMessage is the error body of a rejected request.
const QuotaExceededMessage = "API rate limit exceeded. Try again later."

// Limiter admits requests against a daily ceiling. *quota.Limiter
// implements it.
type Limiter interface {
	CheckAndIncrement(ctx context.Context, key string, ceiling int64) (quota.Decision, error)
	Now() time.Time
}

var _ Limiter = (*quota.Limiter)(nil)

// QuotaOption configures DailyQuota.
type QuotaOption func(*quotaConfig)

type quotaConfig struct {
	keyFunc  KeyFunc
	failOpen bool
}

// WithQuotaKeyFunc replaces the identity derivation.
// Default: IdentityKey(false).
func WithQuotaKeyFunc(fn KeyFunc) QuotaOption {
	return func(cfg *quotaConfig) {
		if fn != nil {
			cfg.keyFunc = fn
		}
	}
}

// WithQuotaFailOpen sets whether requests are admitted when the counter
// store fails. Default: true.
func WithQuotaFailOpen(v bool) QuotaOption {
	return func(cfg *quotaConfig) {
		cfg.failOpen = v
	}
}

// DailyQuota charges every request against the caller's daily quota.
// Admitted responses carry X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset; rejected ones answer 429 with Retry-After.
// Quota is consumed on admission and never refunded.
func DailyQuota(limiter Limiter, limit int64, opts ...QuotaOption) web.Middleware {
	cfg := &quotaConfig{
		keyFunc:  IdentityKey(false),
		failOpen: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			key := cfg.keyFunc(c)

			dec, err := limiter.CheckAndIncrement(c, key, limit)
			if err != nil {
				if !cfg.failOpen {
					return web.ErrServiceUnavailable("rate limiter unavailable", web.WithErrorCode("quota_unavailable"), web.WithError(err))
				}
				c.LogWarn("quota check failed, admitting request", slog.String("key", key), slog.Any("error", err))
				return next(c)
			}

			c.SetHeader("X-RateLimit-Limit", strconv.FormatInt(dec.Limit, 10))
			c.SetHeader("X-RateLimit-Remaining", strconv.FormatInt(dec.Remaining(), 10))
			c.SetHeader("X-RateLimit-Reset", strconv.FormatInt(dec.ResetsAt.Unix(), 10))

			if !dec.Allowed {
				retry := dec.RetryAfter(limiter.Now())
				c.SetHeader("Retry-After", strconv.Itoa(int(retry.Seconds())))
				c.LogInfo("daily quota exceeded", slog.String("key", key), slog.Int64("limit", dec.Limit))
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": QuotaExceededMessage})
			}

			return next(c)
		}
	}
}
