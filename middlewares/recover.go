package middlewares

import (
	"log/slog"
	"net/http"
	"runtime"

	"github.com/dmitrymomot/inkwell/internal/web"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

// RecoverOption configures Recover.
type RecoverOption func(*recoverConfig)

type recoverConfig struct {
	stackSize    int
	disableStack bool
}

// WithRecoverStackSize sets the maximum captured stack size.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *recoverConfig) {
		if size > 0 {
			cfg.stackSize = size
		}
	}
}

// WithoutRecoverStack disables stack capture.
func WithoutRecoverStack() RecoverOption {
	return func(cfg *recoverConfig) {
		cfg.disableStack = true
	}
}

// Recover turns handler panics into a *PanicError for the app's error
// handler. http.ErrAbortHandler is re-raised so net/http can drop the
// connection.
func Recover(opts ...RecoverOption) web.Middleware {
	cfg := &recoverConfig{stackSize: DefaultStackSize}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				attrs := []any{slog.Any("panic", r)}
				var stack []byte
				if !cfg.disableStack {
					stack = make([]byte, cfg.stackSize)
					stack = stack[:runtime.Stack(stack, false)]
					attrs = append(attrs, slog.String("stack", string(stack)))
				}
				c.LogError("panic recovered", attrs...)

				err = &PanicError{Value: r, Stack: stack}
			}()

			return next(c)
		}
	}
}
