// Package memory provides a process-local document store for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
	"github.com/ledgerbook/bookkeeper/internal/core/ports"
)

// Store keeps one versioned document in memory.
type Store struct {
	mu      sync.RWMutex
	data    []byte
	version int64
}

var _ ports.DocumentStore = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// NewStoreWith returns a store seeded with data at version 1.
func NewStoreWith(data []byte) *Store {
	s := &Store{}
	if len(data) > 0 {
		s.data = append([]byte(nil), data...)
		s.version = 1
	}
	return s
}

// Load returns a copy of the document and its version.
func (s *Store) Load(ctx context.Context) ([]byte, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.data...), s.version, nil
}

// Save replaces the document if expectedVersion is current.
func (s *Store) Save(ctx context.Context, data []byte, expectedVersion int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if expectedVersion != s.version {
		return 0, domain.ErrVersionConflict
	}
	s.data = append([]byte(nil), data...)
	s.version++
	return s.version, nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }
