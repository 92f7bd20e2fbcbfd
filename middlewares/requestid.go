package middlewares

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/inkwell/internal/web"
	"github.com/dmitrymomot/inkwell/pkg/id"
	"github.com/dmitrymomot/inkwell/pkg/logger"
)

type requestIDKey struct{}

// RequestIDHeader is the header used to propagate and echo request IDs.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength bounds IDs accepted from clients.
const maxRequestIDLength = 128

// RequestIDOption configures RequestID.
type RequestIDOption func(*requestIDConfig)

type requestIDConfig struct {
	generator func() string
	headers   []string
}

// WithRequestIDHeaders sets the headers checked, in order, for an
// upstream request ID.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		cfg.headers = headers
	}
}

// WithRequestIDGenerator replaces the ULID generator.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		if gen != nil {
			cfg.generator = gen
		}
	}
}

// RequestID tags every request with an ID, reusing a well-formed upstream
// one, and echoes it in the X-Request-ID response header.
func RequestID(opts ...RequestIDOption) web.Middleware {
	cfg := &requestIDConfig{
		generator: id.NewULID,
		headers:   []string{RequestIDHeader, "X-Correlation-ID"},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			var reqID string
			for _, h := range cfg.headers {
				if v := c.Header(h); v != "" && len(v) <= maxRequestIDLength {
					reqID = v
					break
				}
			}
			if reqID == "" {
				reqID = cfg.generator()
			}

			c.Set(requestIDKey{}, reqID)
			c.SetHeader(RequestIDHeader, reqID)
			return next(c)
		}
	}
}

// GetRequestID returns the request ID, or "" outside RequestID.
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// RequestIDExtractor adds "request_id" to log records.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v := GetRequestID(ctx); v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
}
