// Package instrumented decorates stores with Prometheus metrics.
package instrumented

import (
	"context"
	"errors"
	"time"

	"github.com/ledgerbook/bookkeeper/internal/api/metrics"
	"github.com/ledgerbook/bookkeeper/internal/core/domain"
	"github.com/ledgerbook/bookkeeper/internal/core/ports"
)

// DocumentStore records latency and outcome of every call to the wrapped store.
type DocumentStore struct {
	next    ports.DocumentStore
	backend string
}

var _ ports.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore wraps next, labelling metrics with backend.
func NewDocumentStore(next ports.DocumentStore, backend string) *DocumentStore {
	return &DocumentStore{next: next, backend: backend}
}

func (s *DocumentStore) Load(ctx context.Context) ([]byte, int64, error) {
	start := time.Now()
	data, version, err := s.next.Load(ctx)
	s.observe("load", start, err)
	return data, version, err
}

func (s *DocumentStore) Save(ctx context.Context, data []byte, expectedVersion int64) (int64, error) {
	start := time.Now()
	version, err := s.next.Save(ctx, data, expectedVersion)
	s.observe("save", start, err)
	return version, err
}

func (s *DocumentStore) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.next.Ping(ctx)
	s.observe("ping", start, err)
	return err
}

func (s *DocumentStore) observe(op string, start time.Time, err error) {
	metrics.StoreOperationDuration.WithLabelValues(s.backend, op).Observe(time.Since(start).Seconds())
	metrics.StoreOperationsTotal.WithLabelValues(s.backend, op, result(err)).Inc()
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrVersionConflict):
		return "conflict"
	default:
		return "error"
	}
}

// IdempotencyStore counts lookup hits and misses.
type IdempotencyStore struct {
	next ports.IdempotencyStore
}

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// NewIdempotencyStore wraps next.
func NewIdempotencyStore(next ports.IdempotencyStore) *IdempotencyStore {
	return &IdempotencyStore{next: next}
}

func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (int64, bool, error) {
	id, ok, err := s.next.Lookup(ctx, key)
	if err == nil {
		if ok {
			metrics.IdempotencyTotal.WithLabelValues("hit").Inc()
		} else {
			metrics.IdempotencyTotal.WithLabelValues("miss").Inc()
		}
	}
	return id, ok, err
}

func (s *IdempotencyStore) Remember(ctx context.Context, key string, id int64) error {
	return s.next.Remember(ctx, key, id)
}
