package ports

import "context"

// DocumentStore persists the whole ledger as one JSON document.
//
// Every document carries a version. Load returns version 0 when the document
// does not exist yet. Save writes data only if the stored version still equals
// expectedVersion and returns the new version; backends that support it reject
// a stale write with domain.ErrVersionConflict. Transport failures are reported
// as domain.ErrStoreUnavailable.
type DocumentStore interface {
	Load(ctx context.Context) (data []byte, version int64, err error)
	Save(ctx context.Context, data []byte, expectedVersion int64) (int64, error)
	Ping(ctx context.Context) error
}

// IdempotencyStore remembers which record an idempotency key produced.
type IdempotencyStore interface {
	// Lookup returns the record id stored for key, if any.
	Lookup(ctx context.Context, key string) (int64, bool, error)
	Remember(ctx context.Context, key string, id int64) error
}
