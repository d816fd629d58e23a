package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
	"github.com/ledgerbook/bookkeeper/internal/core/ports"
)

// DefaultPrefix namespaces the ledger keys.
const DefaultPrefix = "bookkeeper:ledger"

// DocumentStore keeps the ledger under <prefix>:record with its version in
// <prefix>:version. Saves run inside WATCH/MULTI on the version key.
type DocumentStore struct {
	client *redis.Client
	prefix string
}

var _ ports.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore wraps client. An empty prefix selects DefaultPrefix.
func NewDocumentStore(client *redis.Client, prefix string) *DocumentStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &DocumentStore{client: client, prefix: prefix}
}

func (s *DocumentStore) recordKey() string  { return s.prefix + ":record" }
func (s *DocumentStore) versionKey() string { return s.prefix + ":version" }

// Load returns the document and its version. A missing document is (nil, 0).
func (s *DocumentStore) Load(ctx context.Context) ([]byte, int64, error) {
	vals, err := s.client.MGet(ctx, s.recordKey(), s.versionKey()).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: redis load: %v", domain.ErrStoreUnavailable, err)
	}
	var data []byte
	if raw, ok := vals[0].(string); ok {
		data = []byte(raw)
	}
	var version int64
	if raw, ok := vals[1].(string); ok {
		version, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: redis version %q: %v", domain.ErrStoreUnavailable, raw, err)
		}
	}
	return data, version, nil
}

// Save writes data when the stored version still equals expectedVersion.
func (s *DocumentStore) Save(ctx context.Context, data []byte, expectedVersion int64) (int64, error) {
	var next int64
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, s.versionKey()).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != expectedVersion {
			return domain.ErrVersionConflict
		}
		next = current + 1
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.recordKey(), data, 0)
			pipe.Set(ctx, s.versionKey(), next, 0)
			return nil
		})
		return err
	}, s.versionKey())

	switch {
	case err == nil:
		return next, nil
	case errors.Is(err, domain.ErrVersionConflict), errors.Is(err, redis.TxFailedErr):
		return 0, domain.ErrVersionConflict
	default:
		return 0, fmt.Errorf("%w: redis save: %v", domain.ErrStoreUnavailable, err)
	}
}

// Ping checks the connection.
func (s *DocumentStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
