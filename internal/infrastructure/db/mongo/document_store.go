package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
	"github.com/ledgerbook/bookkeeper/internal/core/ports"
)

const (
	collectionLedger = "ledger"
	// DefaultDocumentID is the _id of the ledger document.
	DefaultDocumentID = "ledger"
)

// ledgerDocument is the stored form: the JSON ledger converted to BSON under
// record, guarded by a monotonically increasing version.
type ledgerDocument struct {
	ID      string   `bson:"_id"`
	Version int64    `bson:"version"`
	Record  bson.Raw `bson:"record"`
}

// DocumentStore keeps the ledger as a single MongoDB document.
type DocumentStore struct {
	col *mongo.Collection
	id  string
}

var _ ports.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore stores the ledger in the "ledger" collection under id.
// An empty id selects DefaultDocumentID.
func NewDocumentStore(db *mongo.Database, id string) *DocumentStore {
	if id == "" {
		id = DefaultDocumentID
	}
	return &DocumentStore{col: db.Collection(collectionLedger), id: id}
}

// Load returns the ledger as JSON. A missing document is (nil, 0).
func (s *DocumentStore) Load(ctx context.Context) ([]byte, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc ledgerDocument
	err := s.col.FindOne(ctx, bson.M{"_id": s.id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("%w: mongo load: %v", domain.ErrStoreUnavailable, err)
	}
	if len(doc.Record) == 0 {
		return nil, doc.Version, nil
	}
	data, err := bson.MarshalExtJSON(doc.Record, false, false)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: mongo record: %v", domain.ErrStoreUnavailable, err)
	}
	return data, doc.Version, nil
}

// Save inserts the first version and afterwards replaces the document only
// while its version still equals expectedVersion.
func (s *DocumentStore) Save(ctx context.Context, data []byte, expectedVersion int64) (int64, error) {
	var record bson.D
	if err := bson.UnmarshalExtJSON(data, false, &record); err != nil {
		return 0, fmt.Errorf("%w: ledger is not a JSON object: %v", domain.ErrInvalidInput, err)
	}
	raw, err := bson.Marshal(record)
	if err != nil {
		return 0, fmt.Errorf("mongo encode: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	next := ledgerDocument{ID: s.id, Version: expectedVersion + 1, Record: raw}
	if expectedVersion == 0 {
		_, err := s.col.InsertOne(ctx, next)
		if mongo.IsDuplicateKeyError(err) {
			return 0, domain.ErrVersionConflict
		}
		if err != nil {
			return 0, fmt.Errorf("%w: mongo insert: %v", domain.ErrStoreUnavailable, err)
		}
		return next.Version, nil
	}

	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": s.id, "version": expectedVersion}, next)
	if err != nil {
		return 0, fmt.Errorf("%w: mongo replace: %v", domain.ErrStoreUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return 0, domain.ErrVersionConflict
	}
	return next.Version, nil
}

// Ping checks the deployment is reachable.
func (s *DocumentStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return s.col.Database().Client().Ping(ctx, nil)
}
