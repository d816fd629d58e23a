package document

import (
	"context"
	"sort"
	"strings"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

// CreateSession opens an active session and returns its id.
func (r *Repository) CreateSession(ctx context.Context, in domain.SessionInput) (int64, error) {
	var id int64
	err := r.mutate(ctx, "create session", func(l *ledger) error {
		now := r.codec.formatTime(r.clock())
		id = l.nextID(domain.CollectionSessions)
		l.Sessions[idKey(id)] = &sessionRecord{
			UserID:      in.OwnerID,
			Name:        truncate(strings.TrimSpace(in.Name), domain.MaxSessionNameLen),
			Budget:      in.Budget,
			Currency:    in.Currency,
			IsActive:    true,
			CreatedAt:   now,
			LastUpdated: now,
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	r.log.Info().Int64("session_id", id).Int64("user_id", in.OwnerID).Msg("session created")
	return id, nil
}

// GetSession returns domain.ErrSessionNotFound for unknown ids.
func (r *Repository) GetSession(ctx context.Context, id int64) (*domain.Session, error) {
	var out domain.Session
	err := r.read(ctx, func(l *ledger) error {
		s, ok := l.Sessions[idKey(id)]
		if !ok {
			return domain.ErrSessionNotFound
		}
		out = r.codec.session(idKey(id), s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSessions returns the owner's sessions, newest id first.
func (r *Repository) ListSessions(ctx context.Context, ownerID int64) ([]domain.Session, error) {
	out := []domain.Session{}
	err := r.read(ctx, func(l *ledger) error {
		for k, s := range l.Sessions {
			if s.UserID == ownerID {
				out = append(out, r.codec.session(k, s))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// CloseSession marks the session inactive. Closing a closed session is a no-op.
func (r *Repository) CloseSession(ctx context.Context, id int64) error {
	return r.mutate(ctx, "close session", func(l *ledger) error {
		s, ok := l.Sessions[idKey(id)]
		if !ok {
			return domain.ErrSessionNotFound
		}
		if !s.IsActive {
			return nil
		}
		now := r.codec.formatTime(r.clock())
		s.IsActive = false
		s.ClosedAt = &now
		s.LastUpdated = now
		return nil
	})
}

// ResetSession deletes every transaction and debt of an active session and
// returns how many records were removed.
func (r *Repository) ResetSession(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.mutate(ctx, "reset session", func(l *ledger) error {
		n = 0
		s, err := activeSession(l, id)
		if err != nil {
			return err
		}
		for k, t := range l.Transactions {
			if t.SessionID == id {
				delete(l.Transactions, k)
				n++
			}
		}
		for k, d := range l.Debts {
			if d.SessionID == id {
				delete(l.Debts, k)
				n++
			}
		}
		s.LastUpdated = r.codec.formatTime(r.clock())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// SessionView returns the session with its derived totals.
func (r *Repository) SessionView(ctx context.Context, id int64) (*domain.SessionView, error) {
	snap, err := r.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	view := domain.NewSessionView(snap.Session, snap.Transactions, snap.Debts)
	return &view, nil
}

// Snapshot returns the session with all of its children from one read.
// Children are ordered by id.
func (r *Repository) Snapshot(ctx context.Context, id int64) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	err := r.read(ctx, func(l *ledger) error {
		s, ok := l.Sessions[idKey(id)]
		if !ok {
			return domain.ErrSessionNotFound
		}
		snap.Session = r.codec.session(idKey(id), s)
		snap.Transactions = []domain.Transaction{}
		for k, t := range l.Transactions {
			if t.SessionID == id {
				snap.Transactions = append(snap.Transactions, r.codec.transaction(k, t))
			}
		}
		snap.Debts = []domain.Debt{}
		for k, d := range l.Debts {
			if d.SessionID == id {
				snap.Debts = append(snap.Debts, r.codec.debt(k, d))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(snap.Transactions, func(i, j int) bool { return snap.Transactions[i].ID < snap.Transactions[j].ID })
	sort.Slice(snap.Debts, func(i, j int) bool { return snap.Debts[i].ID < snap.Debts[j].ID })
	return &snap, nil
}
