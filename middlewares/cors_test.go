package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/inkwell/internal/web"
	"github.com/dmitrymomot/inkwell/middlewares"
)

func corsApp(mw web.Middleware) *web.App {
	return web.New(
		web.WithMiddleware(mw),
		web.WithHandlers(routes(func(r web.Router) {
			r.GET("/api/articles", ok)
		})),
	)
}

func TestCORS(t *testing.T) {
	t.Parallel()

	t.Run("no origin untouched", func(t *testing.T) {
		t.Parallel()
		rec := do(corsApp(middlewares.CORS()), httptest.NewRequest(http.MethodGet, "/api/articles", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard simple request", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
		req.Header.Set("Origin", "https://blog.example")

		rec := do(corsApp(middlewares.CORS()), req)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "X-RateLimit-Remaining")
	})

	t.Run("preflight", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodOptions, "/api/articles", nil)
		req.Header.Set("Origin", "https://blog.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		rec := do(corsApp(middlewares.CORS()), req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
		assert.Equal(t, "43200", rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("listed origin echoed", func(t *testing.T) {
		t.Parallel()
		mw := middlewares.CORS(middlewares.WithAllowOrigins("https://app.example"), middlewares.WithAllowCredentials())
		req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
		req.Header.Set("Origin", "https://app.example")

		rec := do(corsApp(mw), req)
		assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("unlisted origin ignored", func(t *testing.T) {
		t.Parallel()
		mw := middlewares.CORS(middlewares.WithAllowOrigins("https://app.example"))
		req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
		req.Header.Set("Origin", "https://evil.example")

		rec := do(corsApp(mw), req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
