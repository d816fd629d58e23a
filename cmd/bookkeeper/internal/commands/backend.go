package commands

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ledgerbook/bookkeeper/internal/api/handler"
	"github.com/ledgerbook/bookkeeper/internal/core/ports"
	"github.com/ledgerbook/bookkeeper/internal/infrastructure/config"
	"github.com/ledgerbook/bookkeeper/internal/infrastructure/db/document"
	"github.com/ledgerbook/bookkeeper/internal/infrastructure/db/instrumented"
	"github.com/ledgerbook/bookkeeper/internal/infrastructure/db/jsonbin"
	"github.com/ledgerbook/bookkeeper/internal/infrastructure/db/memory"
	"github.com/ledgerbook/bookkeeper/internal/infrastructure/db/mongo"
	"github.com/ledgerbook/bookkeeper/internal/infrastructure/db/redis"
	"github.com/ledgerbook/bookkeeper/pkg/logger"
)

// backend is the opened document store with everything that hangs off it.
type backend struct {
	store  ports.DocumentStore
	idem   ports.IdempotencyStore
	checks map[string]handler.Checker
	close  []func(context.Context) error
}

// openBackend connects the configured document store and the idempotency
// store. Idempotency keys go to Redis when REDIS_ADDR is set and stay in
// process memory otherwise.
func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	b := &backend{checks: map[string]handler.Checker{}}

	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  cfg.Redis.Timeout,
		})
		if err != nil {
			return nil, err
		}
		rdb = client
		b.close = append(b.close, func(context.Context) error { return client.Close() })
		b.checks["redis"] = handler.CheckFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}

	var raw ports.DocumentStore
	switch cfg.Store.Backend {
	case config.BackendMemory:
		raw = memory.NewStore()
		log.Warn().Msg("using in-memory ledger store, data is lost on restart")
	case config.BackendJSONBin:
		raw = jsonbin.New(jsonbin.Config{
			BaseURL:   cfg.JSONBin.BaseURL,
			BinID:     cfg.JSONBin.BinID,
			MasterKey: cfg.JSONBin.MasterKey,
			Timeout:   cfg.JSONBin.Timeout,
		}, nil, log)
		log.Warn().Msg("jsonbin has no conditional writes, run a single instance")
	case config.BackendMongo:
		store, client, err := mongo.Open(ctx, mongo.Config{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			DocumentID: cfg.Mongo.DocumentID,
			Timeout:    cfg.Mongo.Timeout,
		})
		if err != nil {
			b.Close(ctx)
			return nil, err
		}
		b.close = append(b.close, client.Disconnect)
		raw = store
	case config.BackendRedis:
		if rdb == nil {
			b.Close(ctx)
			return nil, errors.New("redis backend requires REDIS_ADDR")
		}
		raw = redis.NewDocumentStore(rdb, cfg.Redis.Prefix)
	default:
		b.Close(ctx)
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	b.store = instrumented.NewDocumentStore(raw, cfg.Store.Backend)
	b.checks["store"] = b.store

	if rdb != nil {
		b.idem = instrumented.NewIdempotencyStore(redis.NewIdempotencyStore(rdb, cfg.Store.IdempotencyTTL))
	} else {
		b.idem = instrumented.NewIdempotencyStore(memory.NewIdempotencyStore(cfg.Store.IdempotencyTTL))
	}

	log.Info().Str("backend", cfg.Store.Backend).Bool("redis_idempotency", rdb != nil).Msg("ledger store ready")
	return b, nil
}

// repository wraps the store in the ledger repository.
func (b *backend) repository(cfg *config.Config) *document.Repository {
	return document.New(b.store, logger.Component("repository"),
		document.WithMaxAttempts(cfg.Store.MaxAttempts),
		document.WithLegacyLocation(cfg.Location()),
	)
}

// Close releases connections in reverse order of opening.
func (b *backend) Close(ctx context.Context) {
	for i := len(b.close) - 1; i >= 0; i-- {
		_ = b.close[i](ctx)
	}
}
