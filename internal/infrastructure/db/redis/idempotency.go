package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ledgerbook/bookkeeper/internal/core/ports"
)

const defaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore remembers which record an idempotency key produced.
// Key format: idem:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// NewIdempotencyStore creates an IdempotencyStore whose keys expire after ttl.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Lookup reports the record id stored for key, if any.
func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (int64, bool, error) {
	id, err := s.client.Get(ctx, s.key(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return id, true, nil
}

// Remember records id for key unless the key is already taken.
func (s *IdempotencyStore) Remember(ctx context.Context, key string, id int64) error {
	if err := s.client.SetNX(ctx, s.key(key), id, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(k string) string {
	return "idem:" + k
}
