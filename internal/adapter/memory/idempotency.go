package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	portidempotency "github.com/alanyang/project-chat/internal/port/idempotency"
)

var _ portidempotency.Store = (*IdempotencyStore)(nil)

type idempotencyEntry struct {
	result    []byte
	pending   bool
	expiresAt time.Time
}

// IdempotencyStore is the single-node stand-in for processed_operations.
// Entries, pending reservations included, expire after ttl; expired keys are
// dropped lazily and by Sweep.
type IdempotencyStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]idempotencyEntry
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]idempotencyEntry),
	}
}

// live returns the unexpired entry for key. Callers hold s.mu.
func (s *IdempotencyStore) live(key string, now time.Time) (idempotencyEntry, bool) {
	entry, ok := s.entries[key]
	if !ok {
		return idempotencyEntry{}, false
	}
	if now.After(entry.expiresAt) {
		delete(s.entries, key)
		return idempotencyEntry{}, false
	}
	return entry, true
}

func (s *IdempotencyStore) Check(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.live(key, s.now())
	if !ok || entry.pending {
		return nil, false, nil
	}
	return entry.result, true, nil
}

func (s *IdempotencyStore) Reserve(_ context.Context, key string, _ uuid.UUID, _ string) (bool, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(key, now); ok {
		return false, nil
	}
	s.entries[key] = idempotencyEntry{pending: true, expiresAt: now.Add(s.ttl)}
	return true, nil
}

func (s *IdempotencyStore) Store(_ context.Context, key string, _ uuid.UUID, _ string, result []byte) error {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.live(key, now); ok && !entry.pending {
		return nil
	}
	s.entries[key] = idempotencyEntry{result: result, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[key]; ok && entry.pending {
		delete(s.entries, key)
	}
	return nil
}

// Sweep removes expired entries and returns how many were dropped.
func (s *IdempotencyStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}
