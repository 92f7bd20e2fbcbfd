// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc probes one dependency. A nil error means healthy.
type CheckFunc func(ctx context.Context) error

// Checks maps dependency names to probes.
type Checks map[string]CheckFunc

// Report is the readiness response body.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]Result `json:"checks,omitempty"`
}

// Result is the outcome of one check.
type Result struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency"`
}

// Liveness answers 200 as long as the process can serve HTTP.
func Liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Report{Status: StatusHealthy})
	}
}

// Readiness runs all checks concurrently within timeout and answers 503
// when any of them fails.
func Readiness(checks Checks, timeout time.Duration, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep := Run(r.Context(), checks, timeout, log)

		code := http.StatusOK
		if rep.Status != StatusHealthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, rep)
	}
}

// Run executes checks and aggregates their results.
func Run(ctx context.Context, checks Checks, timeout time.Duration, log *slog.Logger) Report {
	rep := Report{Status: StatusHealthy, Checks: make(map[string]Result, len(checks))}
	if len(checks) == 0 {
		return rep
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for name, check := range checks {
		g.Go(func() error {
			start := time.Now()
			err := check(ctx)
			res := Result{Status: StatusHealthy, Latency: time.Since(start).String()}
			if err != nil {
				res.Status, res.Error = StatusUnhealthy, err.Error()
				log.WarnContext(ctx, "health check failed", slog.String("check", name), slog.String("error", err.Error()))
			}

			mu.Lock()
			defer mu.Unlock()
			rep.Checks[name] = res
			if err != nil {
				rep.Status = StatusUnhealthy
			}
			return nil
		})
	}
	_ = g.Wait()

	return rep
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
