package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/inkwell/internal/web"
)

// DefaultTimeout bounds a request when Timeout is given a non-positive value.
const DefaultTimeout = 30 * time.Second

// Timeout attaches a deadline to the request context. Handlers and stores
// observe it through ctx; a handler that fails because the deadline passed
// is reported as 503 with code "timeout".
func Timeout(d time.Duration) web.Middleware {
	if d <= 0 {
		d = DefaultTimeout
	}

	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			ctx, cancel := context.WithTimeout(c.Context(), d)
			defer cancel()
			c.SetContext(ctx)

			err := next(c)
			if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Written() {
				c.LogWarn("request timeout", slog.String("timeout", d.String()))
				return web.ErrServiceUnavailable("request timed out",
					web.WithErrorCode("timeout"),
					web.WithRetryable(),
					web.WithError(errors.Join(context.DeadlineExceeded, err)),
				)
			}
			return err
		}
	}
}
