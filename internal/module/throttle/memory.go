package throttle

import (
	"context"
	"sync"
	"time"
)

// counter is one key's window state. The window length is captured at
// creation so that limiters with different windows can share one store
// without sweeping each other's entries early.
type counter struct {
	count   int
	started time.Time
	window  time.Duration
}

// MemoryStore is a process-local fixed-window counter map. Expired windows
// are swept lazily on each attempt; there is no background timer. The map
// is the only shared mutable state and is guarded by a mutex.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*counter

	// now is overridable in tests.
	now func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*counter),
		now:     time.Now,
	}
}

// Attempt implements Store.
func (s *MemoryStore) Attempt(_ context.Context, key string, limit int, window time.Duration) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	// Lazy cleanup: drop every entry whose window elapsed, not just the one
	// being attempted, so idle keys do not accumulate.
	for k, c := range s.entries {
		if now.Sub(c.started) > c.window {
			delete(s.entries, k)
		}
	}

	c, ok := s.entries[key]
	if !ok {
		s.entries[key] = &counter{count: 1, started: now, window: window}
		return Decision{Allowed: true, Remaining: limit - 1, RetryAfter: window}, nil
	}

	if c.count < limit {
		c.count++
		return Decision{Allowed: true, Remaining: limit - c.count, RetryAfter: window}, nil
	}

	return Decision{Allowed: false, Remaining: 0, RetryAfter: window}, nil
}

// Len returns the number of live window entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var _ Store = (*MemoryStore)(nil)
