package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// RunOption configures App.Run.
type RunOption func(*runConfig)

type runConfig struct {
	baseCtx         context.Context
	listener        net.Listener
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	shutdownTimeout time.Duration
}

// ShutdownTimeout bounds the graceful shutdown of the server and hooks.
// Default: 30s.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// StartupHook registers a function run after the listener is bound and
// before requests are served. A failing hook aborts the start.
func StartupHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.startupHooks = append(c.startupHooks, fn)
		}
	}
}

// ShutdownHook registers a cleanup function run, in registration order,
// after the HTTP server has drained.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.shutdownHooks = append(c.shutdownHooks, fn)
		}
	}
}

// WithBaseContext sets the parent of the signal-aware context.
// Cancelling it stops the server like SIGTERM does.
func WithBaseContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}

// WithListener serves on an existing listener instead of binding addr.
func WithListener(ln net.Listener) RunOption {
	return func(c *runConfig) {
		c.listener = ln
	}
}

// Run serves the app on addr and blocks until SIGINT, SIGTERM or the base
// context ends, then shuts down gracefully.
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := &runConfig{
		baseCtx:         context.Background(),
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if addr == "" {
		addr = ":8080"
	}
	log := a.logger

	server := &http.Server{
		Addr:              addr,
		Handler:           a.router,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
	}

	ctx, cancel := signal.NotifyContext(cfg.baseCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ln := cfg.listener
	if ln == nil {
		var err error
		if ln, err = net.Listen("tcp", addr); err != nil {
			return err
		}
	}

	for _, hook := range cfg.startupHooks {
		if err := hook(ctx); err != nil {
			_ = ln.Close()
			return errors.Join(errors.New("web: startup hook failed"), err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer shutdownCancel()

	var errs []error
	if err := server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	for _, hook := range cfg.shutdownHooks {
		if err := hook(shutdownCtx); err != nil {
			errs = append(errs, err)
			log.Error("shutdown hook failed", slog.Any("error", err))
		}
	}

	if len(errs) > 0 {
		log.Error("shutdown completed with errors")
		return errors.Join(errs...)
	}
	log.Info("shutdown completed")
	return nil
}
