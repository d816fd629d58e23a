// Package document implements the ledger repository on top of a single JSON
// document held by a ports.DocumentStore. Every write loads the document,
// mutates it in memory and saves it back under an optimistic version check,
// retrying the whole cycle when another writer got there first.
package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
	"github.com/ledgerbook/bookkeeper/internal/core/ports"
)

const defaultMaxAttempts = 5

// Repository implements ports.LedgerRepository.
type Repository struct {
	store       ports.DocumentStore
	log         zerolog.Logger
	now         func() time.Time
	codec       codec
	maxAttempts uint
	backoff     func() backoff.BackOff
}

var _ ports.LedgerRepository = (*Repository)(nil)

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides the time source used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithMaxAttempts bounds how many times a write is attempted on version conflicts.
func WithMaxAttempts(n uint) Option {
	return func(r *Repository) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithLegacyLocation sets the zone naive timestamps in old documents were written in.
func WithLegacyLocation(loc *time.Location) Option {
	return func(r *Repository) {
		if loc != nil {
			r.codec.loc = loc
		}
	}
}

// WithBackOff overrides the retry policy between conflicting writes.
func WithBackOff(f func() backoff.BackOff) Option {
	return func(r *Repository) { r.backoff = f }
}

// New returns a Repository over store.
func New(store ports.DocumentStore, log zerolog.Logger, opts ...Option) *Repository {
	r := &Repository{
		store:       store,
		log:         log,
		now:         time.Now,
		codec:       codec{loc: time.UTC},
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackOff,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 25 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	return b
}

func (r *Repository) clock() time.Time {
	return r.now().UTC()
}

// load reads and decodes the document. A missing document decodes as an
// empty ledger with version 0.
func (r *Repository) load(ctx context.Context) (*ledger, int64, error) {
	data, version, err := r.store.Load(ctx)
	if err != nil {
		return nil, 0, err
	}
	l := newLedger()
	if len(data) == 0 {
		return l, version, nil
	}
	if err := json.Unmarshal(data, l); err != nil {
		return nil, 0, fmt.Errorf("%w: decode ledger: %v", domain.ErrStoreUnavailable, err)
	}
	l.fill()
	return l, version, nil
}

// read runs fn over a freshly loaded document.
func (r *Repository) read(ctx context.Context, fn func(l *ledger) error) error {
	l, _, err := r.load(ctx)
	if err != nil {
		return err
	}
	return fn(l)
}

// mutate runs one read-modify-write cycle and repeats it while the store
// reports a version conflict. Errors returned by fn end the cycle unchanged.
func (r *Repository) mutate(ctx context.Context, op string, fn func(l *ledger) error) error {
	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		l, version, err := r.load(ctx)
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		if err := fn(l); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		data, err := json.Marshal(l)
		if err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("encode ledger: %w", err))
		}
		if _, err := r.store.Save(ctx, data, version); err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				r.log.Warn().Str("op", op).Int("attempt", attempt).Int64("version", version).
					Msg("ledger write conflict, retrying")
				return struct{}{}, err
			}
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(r.backoff()), backoff.WithMaxTries(r.maxAttempts))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Init makes sure every collection exists and the bootstrap admin is present.
func (r *Repository) Init(ctx context.Context, bootstrapAdminID int64) error {
	return r.mutate(ctx, "init ledger", func(l *ledger) error {
		if bootstrapAdminID == 0 {
			return nil
		}
		k := idKey(bootstrapAdminID)
		u, ok := l.Users[k]
		if !ok {
			now := r.codec.formatTime(r.clock())
			l.Users[k] = &userRecord{Role: domain.RoleAdmin, CreatedAt: now, LastActive: now}
			return nil
		}
		u.Role = domain.RoleAdmin
		return nil
	})
}

// touchSession advances the parent session's last_updated, if it exists.
func (r *Repository) touchSession(l *ledger, sessionID int64, now string) {
	if s, ok := l.Sessions[idKey(sessionID)]; ok {
		s.LastUpdated = now
	}
}

// activeSession returns the session record or the error explaining why
// children may not be written to it.
func activeSession(l *ledger, sessionID int64) (*sessionRecord, error) {
	s, ok := l.Sessions[idKey(sessionID)]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if !s.IsActive {
		return nil, domain.ErrSessionClosed
	}
	return s, nil
}
