package quota

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/dmitrymomot/inkwell/pkg/cache"
)

const stripes = 64

// MemoryStore keeps counters in process memory. Counters are lost on
// restart and not shared between instances.
type MemoryStore struct {
	records *cache.Memory[Record]
	locks   [stripes]sync.Mutex
}

// NewMemoryStore creates a store; opts tune the underlying cache (sweep
// interval, entry cap, clock).
func NewMemoryStore(opts ...cache.MemoryOption) *MemoryStore {
	return &MemoryStore{records: cache.NewMemory[Record](opts...)}
}

// Take implements Store. Callers with the same key are serialized on one
// of a fixed set of mutexes chosen by key hash.
func (s *MemoryStore) Take(ctx context.Context, key string, ceiling int64, now, resetsAt time.Time) (Record, bool, error) {
	mu := &s.locks[stripe(key)]
	mu.Lock()
	defer mu.Unlock()

	rec, err := s.records.Get(ctx, key)
	if err != nil || rec.Expired(now) {
		rec = Record{Key: key, ResetsAt: resetsAt}
	}

	if rec.Count >= ceiling {
		return rec, false, nil
	}

	rec.Count++
	// The cache clock may differ from now, so keep the entry a little
	// longer than the window; Expired guards correctness.
	ttl := max(rec.ResetsAt.Sub(now), 0) + time.Minute
	if err := s.records.Set(ctx, key, rec, ttl); err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

// Reset forgets the counter for key.
func (s *MemoryStore) Reset(ctx context.Context, key string) error {
	mu := &s.locks[stripe(key)]
	mu.Lock()
	defer mu.Unlock()
	return s.records.Delete(ctx, key)
}

// Close stops the background sweeper.
func (s *MemoryStore) Close() error {
	return s.records.Close()
}

func stripe(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % stripes
}

var _ Store = (*MemoryStore)(nil)
