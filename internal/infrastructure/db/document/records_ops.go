package document

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

// AddTransaction records a sale or expense on an active session.
// Expenses never carry an expense_amount.
func (r *Repository) AddTransaction(ctx context.Context, in domain.TransactionInput) (int64, error) {
	if !in.Type.Valid() {
		return 0, domain.ErrInvalidValue
	}
	if in.Amount < 0 || in.ExpenseAmount < 0 {
		return 0, domain.ErrInvalidValue
	}
	cost := in.ExpenseAmount
	if in.Type == domain.TransactionExpense {
		cost = 0
	}

	var id int64
	err := r.mutate(ctx, "add transaction", func(l *ledger) error {
		s, err := activeSession(l, in.SessionID)
		if err != nil {
			return err
		}
		now := r.codec.formatTime(r.clock())
		id = l.nextID(domain.CollectionTransactions)
		l.Transactions[idKey(id)] = &transactionRecord{
			SessionID:     in.SessionID,
			Type:          string(in.Type),
			Amount:        in.Amount,
			ExpenseAmount: cost,
			Description:   truncate(in.Description, domain.MaxDescriptionLen),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		s.LastUpdated = now
		return nil
	})
	if err != nil {
		return 0, err
	}
	r.log.Debug().Int64("transaction_id", id).Int64("session_id", in.SessionID).Str("type", string(in.Type)).Msg("transaction added")
	return id, nil
}

// GetTransaction returns domain.ErrTransactionNotFound for unknown ids.
func (r *Repository) GetTransaction(ctx context.Context, id int64) (*domain.Transaction, error) {
	var out domain.Transaction
	err := r.read(ctx, func(l *ledger) error {
		t, ok := l.Transactions[idKey(id)]
		if !ok {
			return domain.ErrTransactionNotFound
		}
		out = r.codec.transaction(idKey(id), t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTransactions returns the session's transactions newest first by
// created_at, ties by id descending. Search is a case-insensitive substring
// match on the description.
func (r *Repository) ListTransactions(ctx context.Context, f domain.ListFilter) ([]domain.Transaction, error) {
	search := strings.ToLower(f.Search)
	out := []domain.Transaction{}
	err := r.read(ctx, func(l *ledger) error {
		for k, t := range l.Transactions {
			if t.SessionID != f.SessionID {
				continue
			}
			if f.Type != "" && t.Type != f.Type {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(t.Description), search) {
				continue
			}
			out = append(out, r.codec.transaction(k, t))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return newer(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return limit(out, f.Limit), nil
}

// AddDebt records a debt on an active session.
func (r *Repository) AddDebt(ctx context.Context, in domain.DebtInput) (int64, error) {
	if !in.Type.Valid() || in.Amount < 0 {
		return 0, domain.ErrInvalidValue
	}

	var id int64
	err := r.mutate(ctx, "add debt", func(l *ledger) error {
		s, err := activeSession(l, in.SessionID)
		if err != nil {
			return err
		}
		now := r.codec.formatTime(r.clock())
		id = l.nextID(domain.CollectionDebts)
		l.Debts[idKey(id)] = &debtRecord{
			SessionID:   in.SessionID,
			Type:        string(in.Type),
			PersonName:  truncate(in.PersonName, domain.MaxPersonNameLen),
			Amount:      in.Amount,
			Description: truncate(in.Description, domain.MaxDescriptionLen),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		s.LastUpdated = now
		return nil
	})
	if err != nil {
		return 0, err
	}
	r.log.Debug().Int64("debt_id", id).Int64("session_id", in.SessionID).Str("type", string(in.Type)).Msg("debt added")
	return id, nil
}

// GetDebt returns domain.ErrDebtNotFound for unknown ids.
func (r *Repository) GetDebt(ctx context.Context, id int64) (*domain.Debt, error) {
	var out domain.Debt
	err := r.read(ctx, func(l *ledger) error {
		d, ok := l.Debts[idKey(id)]
		if !ok {
			return domain.ErrDebtNotFound
		}
		out = r.codec.debt(idKey(id), d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDebts returns the session's debts newest first. Search matches the
// person name or the description.
func (r *Repository) ListDebts(ctx context.Context, f domain.ListFilter) ([]domain.Debt, error) {
	search := strings.ToLower(f.Search)
	out := []domain.Debt{}
	err := r.read(ctx, func(l *ledger) error {
		for k, d := range l.Debts {
			if d.SessionID != f.SessionID {
				continue
			}
			if f.Type != "" && d.Type != f.Type {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(d.PersonName), search) &&
				!strings.Contains(strings.ToLower(d.Description), search) {
				continue
			}
			out = append(out, r.codec.debt(k, d))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return newer(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return limit(out, f.Limit), nil
}

func newer(a time.Time, aID int64, b time.Time, bID int64) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aID > bID
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
