package middlewares_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/dmitrymomot/inkwell/internal/web"
)

type routes func(r web.Router)

func (f routes) Routes(r web.Router) { f(r) }

func renderError(c web.Context, err error) error {
	code := http.StatusInternalServerError
	if httpErr := web.AsHTTPError(err); httpErr != nil {
		code = httpErr.Code
	}
	return c.JSON(code, map[string]string{"error": err.Error()})
}

// newApp serves h on every method of "/" behind mw.
func newApp(h web.HandlerFunc, mw ...web.Middleware) *web.App {
	return web.New(
		web.WithErrorHandler(renderError),
		web.WithMiddleware(mw...),
		web.WithHandlers(routes(func(r web.Router) {
			r.GET("/", h)
			r.POST("/", h)
		})),
	)
}

func ok(c web.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func do(app http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}
