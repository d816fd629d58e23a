// Package mongo holds the MongoDB backed document store.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

const (
	defaultTimeout = 10 * time.Second
	appName        = "bookkeeper"
)

// Config selects the server, the database and the ledger document.
type Config struct {
	URI        string
	Database   string
	DocumentID string
	Timeout    time.Duration
}

func (c Config) validate() error {
	switch {
	case c.URI == "":
		return errors.New("mongo: URI is required")
	case c.Database == "":
		return errors.New("mongo: database is required")
	}
	return nil
}

// clientOptions reads and writes with majority concern so that a version
// bump acknowledged to one instance is visible to every other.
func (c Config) clientOptions() *options.ClientOptions {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return options.Client().
		ApplyURI(c.URI).
		SetAppName(appName).
		SetTimeout(timeout).
		SetReadConcern(readconcern.Majority()).
		SetWriteConcern(writeconcern.Majority())
}

// Open connects, pings the primary and returns the ledger store along with
// the client, which the caller disconnects on shutdown.
func Open(ctx context.Context, cfg Config) (*DocumentStore, *mongo.Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, nil, err
	}
	opts := cfg.clientOptions()

	connectCtx, cancel := context.WithTimeout(ctx, *opts.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: mongo connect: %v", domain.ErrStoreUnavailable, err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, nil, fmt.Errorf("%w: mongo ping: %v", domain.ErrStoreUnavailable, err)
	}

	return NewDocumentStore(client.Database(cfg.Database), cfg.DocumentID), client, nil
}
