package instrumented

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/bookkeeper/internal/api/metrics"
	"github.com/ledgerbook/bookkeeper/internal/core/domain"
	"github.com/ledgerbook/bookkeeper/internal/infrastructure/db/memory"
)

func TestDocumentStore_CountsOutcomes(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore(memory.NewStore(), "test-outcomes")

	_, _, err := s.Load(ctx)
	require.NoError(t, err)
	_, err = s.Save(ctx, []byte(`{}`), 0)
	require.NoError(t, err)
	_, err = s.Save(ctx, []byte(`{}`), 0)
	require.ErrorIs(t, err, domain.ErrVersionConflict)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreOperationsTotal.WithLabelValues("test-outcomes", "load", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreOperationsTotal.WithLabelValues("test-outcomes", "save", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreOperationsTotal.WithLabelValues("test-outcomes", "save", "conflict")))
}

func TestIdempotencyStore_CountsHits(t *testing.T) {
	ctx := context.Background()
	s := NewIdempotencyStore(memory.NewIdempotencyStore(0))
	hits := testutil.ToFloat64(metrics.IdempotencyTotal.WithLabelValues("hit"))
	misses := testutil.ToFloat64(metrics.IdempotencyTotal.WithLabelValues("miss"))

	_, ok, err := s.Lookup(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, s.Remember(ctx, "k", 9))
	id, ok, err := s.Lookup(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(9), id)

	assert.Equal(t, hits+1, testutil.ToFloat64(metrics.IdempotencyTotal.WithLabelValues("hit")))
	assert.Equal(t, misses+1, testutil.ToFloat64(metrics.IdempotencyTotal.WithLabelValues("miss")))
}
