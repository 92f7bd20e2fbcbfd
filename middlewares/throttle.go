package middlewares

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmitrymomot/inkwell/internal/web"
)

// ThrottleStore hands out one token bucket per identity key and forgets
// keys idle for longer than the idle TTL.
type ThrottleStore struct {
	entries map[string]*throttleEntry
	now     func() time.Time
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	mu      sync.Mutex
}

type throttleEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// ThrottleOption configures a ThrottleStore.
type ThrottleOption func(*ThrottleStore)

// WithThrottleIdleTTL sets how long an unused bucket is kept. Default: 10m.
func WithThrottleIdleTTL(d time.Duration) ThrottleOption {
	return func(s *ThrottleStore) {
		if d > 0 {
			s.idleTTL = d
		}
	}
}

// WithThrottleClock replaces time.Now.
func WithThrottleClock(now func() time.Time) ThrottleOption {
	return func(s *ThrottleStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewThrottleStore allows perMinute requests per key per minute, with the
// whole minute's allowance available as a burst.
func NewThrottleStore(perMinute int, opts ...ThrottleOption) *ThrottleStore {
	s := &ThrottleStore{
		entries: make(map[string]*throttleEntry),
		now:     time.Now,
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   perMinute,
		idleTTL: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reserve takes one token for key. When none is available it returns
// false and the wait until the next token.
func (s *ThrottleStore) Reserve(key string) (bool, time.Duration) {
	now := s.now()

	s.mu.Lock()
	ent, ok := s.entries[key]
	if !ok {
		ent = &throttleEntry{lim: rate.NewLimiter(s.limit, s.burst)}
		s.entries[key] = ent
	}
	ent.lastSeen = now
	s.mu.Unlock()

	if ent.lim.AllowN(now, 1) {
		return true, 0
	}
	r := ent.lim.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Minute
	}
	wait := r.DelayFrom(now)
	r.CancelAt(now)
	return false, wait
}

// Cleanup drops buckets idle for longer than the idle TTL and returns
// how many were dropped.
func (s *ThrottleStore) Cleanup() int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of tracked keys.
func (s *ThrottleStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// StartJanitor runs Cleanup every interval until ctx is done.
func (s *ThrottleStore) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// Throttle rejects bursts above the store's per-minute rate with 429.
func Throttle(store *ThrottleStore, keyFunc KeyFunc) web.Middleware {
	if keyFunc == nil {
		keyFunc = IdentityKey(false)
	}

	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			key := keyFunc(c)
			ok, wait := store.Reserve(key)
			if ok {
				return next(c)
			}

			secs := max(int(math.Ceil(wait.Seconds())), 1)
			c.SetHeader("Retry-After", strconv.Itoa(secs))
			c.LogDebug("request throttled", slog.String("key", key))
			return web.ErrTooManyRequests("Too many requests.", web.WithErrorCode("throttled"))
		}
	}
}
