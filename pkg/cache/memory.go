package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// MemoryOption configures Memory.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	now             func() time.Time
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	maxEntries      int
}

// WithDefaultTTL sets the TTL used when Set receives zero. Default: 1h.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(o *memoryOptions) { o.defaultTTL = d }
}

// WithCleanupInterval sets how often expired entries are swept.
// Zero disables the sweeper. Default: 1m.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(o *memoryOptions) { o.cleanupInterval = d }
}

// WithMaxEntries caps the entry count, evicting the least recently used.
func WithMaxEntries(n int) MemoryOption {
	return func(o *memoryOptions) { o.maxEntries = n }
}

// WithClock replaces time.Now for expiry decisions.
func WithClock(now func() time.Time) MemoryOption {
	return func(o *memoryOptions) {
		if now != nil {
			o.now = now
		}
	}
}

type item[V any] struct {
	expiresAt time.Time
	value     V
	key       string
}

// Memory is an in-process LRU cache with TTL expiry.
type Memory[V any] struct {
	opts   memoryOptions
	items  map[string]*list.Element
	order  *list.List
	done   chan struct{}
	mu     sync.Mutex
	closed bool
}

// NewMemory creates an in-memory cache and starts its sweeper.
// Call Close to stop it.
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	o := memoryOptions{
		now:             time.Now,
		defaultTTL:      time.Hour,
		cleanupInterval: time.Minute,
	}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Memory[V]{
		opts:  o,
		items: make(map[string]*list.Element),
		order: list.New(),
		done:  make(chan struct{}),
	}
	if o.cleanupInterval > 0 {
		go m.sweep()
	}
	return m
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	el, ok := m.items[key]
	if !ok {
		return zero, ErrNotFound
	}
	it := el.Value.(*item[V])
	if m.expired(it, m.opts.now()) {
		m.remove(el)
		return zero, ErrNotFound
	}

	m.order.MoveToFront(el)
	return it.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if ttl == 0 {
		ttl = m.opts.defaultTTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.opts.now().Add(ttl)
	}

	if el, ok := m.items[key]; ok {
		it := el.Value.(*item[V])
		it.value, it.expiresAt = value, expiresAt
		m.order.MoveToFront(el)
		return nil
	}

	if m.opts.maxEntries > 0 && len(m.items) >= m.opts.maxEntries {
		if oldest := m.order.Back(); oldest != nil {
			m.remove(oldest)
		}
	}

	m.items[key] = m.order.PushFront(&item[V]{key: key, value: value, expiresAt: expiresAt})
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if el, ok := m.items[key]; ok {
		m.remove(el)
	}
	return nil
}

func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.items = make(map[string]*list.Element)
	m.order.Init()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops the sweeper. It is safe to call more than once.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

// DeleteExpired drops every expired entry and returns how many were removed.
func (m *Memory[V]) DeleteExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.opts.now()
	removed := 0
	for el := m.order.Back(); el != nil; {
		prev := el.Prev()
		if m.expired(el.Value.(*item[V]), now) {
			m.remove(el)
			removed++
		}
		el = prev
	}
	return removed
}

func (m *Memory[V]) sweep() {
	ticker := time.NewTicker(m.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.DeleteExpired()
		}
	}
}

func (m *Memory[V]) expired(it *item[V], now time.Time) bool {
	return !it.expiresAt.IsZero() && now.After(it.expiresAt)
}

// remove must be called with mu held.
func (m *Memory[V]) remove(el *list.Element) {
	m.order.Remove(el)
	delete(m.items, el.Value.(*item[V]).key)
}

var _ Cache[any] = (*Memory[any])(nil)
