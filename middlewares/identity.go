package middlewares

import (
	"net"
	"net/http"
	"strings"

	"github.com/dmitrymomot/inkwell/internal/web"
	"github.com/dmitrymomot/inkwell/pkg/quota"
)

// KeyFunc derives the identity a limit is charged to.
type KeyFunc func(c web.Context) string

// IdentityKey charges authenticated callers by user ID and anonymous ones
// by client address. X-Forwarded-For is honoured only when trustProxy is
// set, otherwise clients could pick their own key.
func IdentityKey(trustProxy bool) KeyFunc {
	return func(c web.Context) string {
		if uid := UserID(c); uid != "" {
			return quota.UserKey(uid)
		}
		return quota.IPKey(ClientIP(c.Request(), trustProxy))
	}
}

// ClientIP returns the caller's address without the port.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}

	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	if addr != "" {
		return addr
	}
	return "unknown"
}
