package middlewares

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/inkwell/internal/web"
)

// CORSOption configures CORS.
type CORSOption func(*corsConfig)

type corsConfig struct {
	allowOrigins     []string
	allowMethods     []string
	allowHeaders     []string
	exposeHeaders    []string
	maxAge           time.Duration
	allowCredentials bool
}

// WithAllowOrigins sets the allowed origins. "*" allows any origin.
func WithAllowOrigins(origins ...string) CORSOption {
	return func(cfg *corsConfig) {
		cfg.allowOrigins = origins
	}
}

func WithAllowCredentials() CORSOption {
	return func(cfg *corsConfig) {
		cfg.allowCredentials = true
	}
}

func WithCORSMaxAge(d time.Duration) CORSOption {
	return func(cfg *corsConfig) {
		cfg.maxAge = d
	}
}

// CORS answers preflight requests and decorates API responses for
// browser clients. The quota and request ID headers are exposed so
// front-ends can read them.
func CORS(opts ...CORSOption) web.Middleware {
	cfg := &corsConfig{
		allowOrigins: []string{"*"},
		allowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		allowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader},
		exposeHeaders: []string{
			RequestIDHeader, "Retry-After",
			"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset",
		},
		maxAge: 12 * time.Hour,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	allowMethods := strings.Join(cfg.allowMethods, ", ")
	allowHeaders := strings.Join(cfg.allowHeaders, ", ")
	exposeHeaders := strings.Join(cfg.exposeHeaders, ", ")
	maxAge := strconv.Itoa(int(cfg.maxAge.Seconds()))
	wildcard := slices.Contains(cfg.allowOrigins, "*")

	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			origin := c.Header("Origin")
			if origin == "" || (!wildcard && !slices.Contains(cfg.allowOrigins, origin)) {
				return next(c)
			}

			h := c.Response().Header()
			h.Add("Vary", "Origin")
			if wildcard && !cfg.allowCredentials {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
			}
			if cfg.allowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			h.Set("Access-Control-Expose-Headers", exposeHeaders)

			if c.Request().Method == http.MethodOptions && c.Header("Access-Control-Request-Method") != "" {
				h.Add("Vary", "Access-Control-Request-Method")
				h.Add("Vary", "Access-Control-Request-Headers")
				h.Set("Access-Control-Allow-Methods", allowMethods)
				h.Set("Access-Control-Allow-Headers", allowHeaders)
				if cfg.maxAge > 0 {
					h.Set("Access-Control-Max-Age", maxAge)
				}
				return c.NoContent(http.StatusNoContent)
			}

			return next(c)
		}
	}
}
