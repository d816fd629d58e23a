package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ledgerbook/bookkeeper/internal/core/ports"
)

const defaultIdempotencyTTL = 24 * time.Hour

type idemEntry struct {
	id      int64
	expires time.Time
}

// IdempotencyStore keeps idempotency keys in process with a TTL.
type IdempotencyStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]idemEntry
}

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// NewIdempotencyStore returns a store whose keys expire after ttl.
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{ttl: ttl, now: time.Now, entries: map[string]idemEntry{}}
}

// Lookup returns the id remembered for key, if it has not expired.
func (s *IdempotencyStore) Lookup(_ context.Context, key string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return 0, false, nil
	}
	if s.now().After(e.expires) {
		delete(s.entries, key)
		return 0, false, nil
	}
	return e.id, true, nil
}

// Remember stores id for key unless a live entry already exists.
func (s *IdempotencyStore) Remember(_ context.Context, key string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if e, ok := s.entries[key]; ok && !now.After(e.expires) {
		return nil
	}
	s.entries[key] = idemEntry{id: id, expires: now.Add(s.ttl)}
	return nil
}
