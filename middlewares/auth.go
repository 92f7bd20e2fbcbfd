package middlewares

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/inkwell/internal/web"
	"github.com/dmitrymomot/inkwell/pkg/jwt"
	"github.com/dmitrymomot/inkwell/pkg/logger"
)

type claimsKey struct{}

// TokenParser validates an access token. *jwt.Service implements it.
type TokenParser interface {
	Parse(token string) (*jwt.Claims, error)
}

var _ TokenParser = (*jwt.Service)(nil)

// AuthOption configures Auth.
type AuthOption func(*authConfig)

type authConfig struct {
	extractor web.Extractor
	optional  bool
}

// WithAuthExtractor replaces the default Bearer token extractor.
func WithAuthExtractor(ext web.Extractor) AuthOption {
	return func(cfg *authConfig) {
		cfg.extractor = ext
	}
}

// OptionalAuth lets anonymous requests through. A token that is present
// must still be valid.
func OptionalAuth() AuthOption {
	return func(cfg *authConfig) {
		cfg.optional = true
	}
}

// Auth validates the caller's access token and stores its claims for
// Claims and UserID.
func Auth(tokens TokenParser, opts ...AuthOption) web.Middleware {
	cfg := &authConfig{
		extractor: web.NewExtractor(web.FromBearerToken()),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			token, ok := cfg.extractor.Extract(c)
			if !ok {
				if cfg.optional {
					return next(c)
				}
				return web.ErrUnauthorized("missing authentication token", web.WithErrorCode("unauthenticated"))
			}

			claims, err := tokens.Parse(token)
			if err != nil {
				c.LogDebug("token rejected", slog.Any("error", err))
				if errors.Is(err, jwt.ErrExpiredToken) {
					return web.ErrUnauthorized("token expired", web.WithErrorCode("token_expired"), web.WithError(err))
				}
				return web.ErrUnauthorized("invalid token", web.WithErrorCode("invalid_token"), web.WithError(err))
			}

			c.Set(claimsKey{}, claims)
			return next(c)
		}
	}
}

// Claims returns the authenticated caller's claims, or nil.
func Claims(ctx context.Context) *jwt.Claims {
	v, _ := ctx.Value(claimsKey{}).(*jwt.Claims)
	return v
}

// UserID returns the authenticated caller's ID, or "".
func UserID(ctx context.Context) string {
	if claims := Claims(ctx); claims != nil {
		return claims.Subject
	}
	return ""
}

// UserIDExtractor adds "user_id" to log records of authenticated requests.
func UserIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v := UserID(ctx); v != "" {
			return slog.String("user_id", v), true
		}
		return slog.Attr{}, false
	}
}
