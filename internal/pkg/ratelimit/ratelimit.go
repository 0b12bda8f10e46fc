package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process keyed attempt counter with TTL eviction.
// It is safe for concurrent use from multiple request goroutines, but its
// counts are per-process: a multi-worker deployment must use the shared
// database-backed store instead, or each worker limits independently.
type MemoryStore struct {
	mu       sync.Mutex
	attempts map[string][]time.Time

	// now is overridable in tests
	now func() time.Time
}

// NewMemoryStore creates an empty in-memory attempt store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		attempts: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Count returns the number of attempts recorded for the key since the
// given instant.
func (s *MemoryStore) Count(_ context.Context, clientKey string, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, at := range s.attempts[clientKey] {
		if at.After(since) {
			n++
		}
	}
	return n, nil
}

// Take counts the key's attempts since the given instant and, while the
// count is under the limit, records a new one. Check and record happen
// under one lock so concurrent attempts cannot overshoot the limit.
func (s *MemoryStore) Take(_ context.Context, clientKey string, since time.Time, limit int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, at := range s.attempts[clientKey] {
		if at.After(since) {
			n++
		}
	}
	if n >= limit {
		return false, nil
	}

	s.attempts[clientKey] = append(s.attempts[clientKey], s.now())
	return true, nil
}

// Record registers one attempt for the key at the current time
func (s *MemoryStore) Record(_ context.Context, clientKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts[clientKey] = append(s.attempts[clientKey], s.now())
	return nil
}

// Clear removes all attempts for the key
func (s *MemoryStore) Clear(_ context.Context, clientKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.attempts, clientKey)
	return nil
}

// Sweep drops attempts older than the given instant and evicts empty keys
func (s *MemoryStore) Sweep(_ context.Context, before time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, times := range s.attempts {
		kept := times[:0]
		for _, at := range times {
			if at.After(before) {
				kept = append(kept, at)
			}
		}
		if len(kept) == 0 {
			delete(s.attempts, key)
		} else {
			s.attempts[key] = kept
		}
	}
	return nil
}
