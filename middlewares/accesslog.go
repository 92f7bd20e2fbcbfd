package middlewares

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/inkwell/internal/web"
)

// AccessLog logs one line per request once the handler chain returns.
// Server errors are logged at error level, client errors at warn.
func AccessLog() web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			start := time.Now()
			err := next(c)

			status := 0
			var size int64
			if rw, ok := c.Response().(*web.ResponseWriter); ok {
				status, size = rw.Status(), rw.Size()
			}
			if err != nil {
				// The app's error handler renders after this returns.
				status = 500
				if httpErr := web.AsHTTPError(err); httpErr != nil {
					status = httpErr.Code
				}
			}

			r := c.Request()
			attrs := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int64("bytes", size),
				slog.Duration("duration", time.Since(start)),
			}

			switch {
			case status >= 500:
				c.LogError("request", attrs...)
			case status >= 400:
				c.LogWarn("request", attrs...)
			default:
				c.LogInfo("request", attrs...)
			}
			return err
		}
	}
}
