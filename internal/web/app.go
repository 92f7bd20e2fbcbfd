package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/inkwell/pkg/health"
	"github.com/dmitrymomot/inkwell/pkg/logger"
)

// Default server timeouts.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20
	defaultShutdownTimeout   = 30 * time.Second
	defaultHealthTimeout     = 5 * time.Second
)

// Health endpoint paths.
const (
	LivenessPath  = "/health/live"
	ReadinessPath = "/health/ready"
)

// App holds the router and everything needed to serve it.
// It is immutable after New returns.
type App struct {
	router                  chi.Router
	logger                  *slog.Logger
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	healthChecks            health.Checks
	middlewares             []Middleware
	handlers                []Handler
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger exposed through Context.Logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithErrorHandler sets the handler for errors returned by handlers and
// middleware.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler replaces chi's plain-text 404 response.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithMethodNotAllowedHandler replaces chi's plain-text 405 response.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.methodNotAllowedHandler = h
	}
}

// WithMiddleware appends global middleware, run in the given order for
// every request including health probes.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers route handlers.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithHealthChecks mounts the liveness and readiness endpoints. Readiness
// runs every check and answers 503 when any of them fails.
func WithHealthChecks(checks health.Checks) Option {
	return func(a *App) {
		if a.healthChecks == nil {
			a.healthChecks = make(health.Checks, len(checks))
		}
		for name, fn := range checks {
			a.healthChecks[name] = fn
		}
	}
}

// New creates an App with the given options.
func New(opts ...Option) *App {
	a := &App{
		router: chi.NewRouter(),
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.setupRoutes()
	return a
}

// ServeHTTP makes App usable with httptest and custom servers.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	if a.notFoundHandler != nil {
		a.router.NotFound(a.wrapHandler(a.notFoundHandler))
	}
	if a.methodNotAllowedHandler != nil {
		a.router.MethodNotAllowed(a.wrapHandler(a.methodNotAllowedHandler))
	}

	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}

	if a.healthChecks != nil {
		a.router.Get(LivenessPath, health.Liveness())
		a.router.Get(ReadinessPath, health.Readiness(a.healthChecks, defaultHealthTimeout, a.logger))
	}

	r := &routerAdapter{router: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}
}

func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := a.newContext(w, r)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

func (a *App) handleError(c Context, err error) {
	if c.Written() {
		c.LogWarn("error after response was written", slog.Any("error", err))
		return
	}
	if a.errorHandler != nil {
		if herr := a.errorHandler(c, err); herr != nil {
			c.LogError("error handler failed", slog.Any("error", herr))
		}
		return
	}
	http.Error(c.Response(), http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
