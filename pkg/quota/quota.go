package quota

import (
	"context"
	"errors"
	"time"
)

// Record is the stored counter for one identity key.
type Record struct {
	Key      string    `json:"key"`
	Count    int64     `json:"count"`
	ResetsAt time.Time `json:"resets_at"`
}

// Expired reports whether the record no longer applies at now.
func (r Record) Expired(now time.Time) bool {
	return now.After(r.ResetsAt)
}

// Store keeps counter records. Take must behave as one atomic step per key:
//
//  1. Load the record for key. A missing record, or one whose ResetsAt
//     is before now, counts as zero with ResetsAt set to resetsAt.
//  2. When Count >= ceiling, return the record unchanged and false.
//  3. Otherwise persist Count+1 (expiring at ResetsAt) and return it and true.
type Store interface {
	Take(ctx context.Context, key string, ceiling int64, now, resetsAt time.Time) (Record, bool, error)
}

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed  bool
	Count    int64
	Limit    int64
	ResetsAt time.Time
}

// Remaining is how many more requests the key may make today.
func (d Decision) Remaining() int64 {
	return max(d.Limit-d.Count, 0)
}

// RetryAfter is the wait until the counter resets, rounded up to a second.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	wait := d.ResetsAt.Sub(now)
	if wait <= 0 {
		return 0
	}
	return wait.Truncate(time.Second) + time.Second
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLocation sets the time zone whose midnight resets counters.
// Default: time.Local.
func WithLocation(loc *time.Location) Option {
	return func(l *Limiter) {
		if loc != nil {
			l.loc = loc
		}
	}
}

// Limiter admits requests against a daily ceiling.
type Limiter struct {
	store Store
	now   func() time.Time
	loc   *time.Location
}

// New creates a Limiter on top of store.
func New(store Store, opts ...Option) *Limiter {
	l := &Limiter{store: store, now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CheckAndIncrement admits one request for key when its counter is below
// ceiling. A non-positive ceiling rejects everything. Store failures are
// returned as errors; the caller decides whether to fail open.
func (l *Limiter) CheckAndIncrement(ctx context.Context, key string, ceiling int64) (Decision, error) {
	if key == "" {
		return Decision{}, ErrInvalidKey
	}
	if l.store == nil {
		return Decision{}, ErrNilStore
	}

	now := l.now().In(l.loc)
	resetsAt := EndOfDay(now)
	if ceiling <= 0 {
		return Decision{Limit: 0, ResetsAt: resetsAt}, nil
	}

	rec, ok, err := l.store.Take(ctx, key, ceiling, now, resetsAt)
	if err != nil {
		return Decision{}, errors.Join(ErrStore, err)
	}

	return Decision{
		Allowed:  ok,
		Count:    rec.Count,
		Limit:    ceiling,
		ResetsAt: rec.ResetsAt,
	}, nil
}

// Now returns the limiter's current time in its location.
func (l *Limiter) Now() time.Time {
	return l.now().In(l.loc)
}

// EndOfDay returns the last instant of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location()).Add(-time.Nanosecond)
}

// UserKey is the identity key of an authenticated caller.
func UserKey(userID string) string {
	return "user:" + userID
}

// IPKey is the identity key of an anonymous caller.
func IPKey(addr string) string {
	return "ip:" + addr
}
