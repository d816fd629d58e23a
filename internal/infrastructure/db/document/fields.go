package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindAmount
	kindBool
)

// editableFields whitelists what UpdateField may change per collection.
var editableFields = map[domain.Collection]map[string]fieldKind{
	domain.CollectionSessions: {
		"name":      kindString,
		"budget":    kindAmount,
		"currency":  kindString,
		"is_active": kindBool,
	},
	domain.CollectionTransactions: {
		"amount":         kindAmount,
		"expense_amount": kindAmount,
		"description":    kindString,
	},
	domain.CollectionDebts: {
		"type":        kindString,
		"person_name": kindString,
		"amount":      kindAmount,
		"description": kindString,
		"is_repaid":   kindBool,
	},
}

// UpdateField sets one whitelisted field, coercing value to the field's type,
// and advances updated_at and the parent session's last_updated.
func (r *Repository) UpdateField(ctx context.Context, c domain.Collection, id int64, field string, value any) error {
	kind, ok := editableFields[c][field]
	if !ok {
		return fmt.Errorf("%w: %s.%s", domain.ErrInvalidField, c, field)
	}
	v, err := coerce(kind, value)
	if err != nil {
		return err
	}

	return r.mutate(ctx, "update "+string(c), func(l *ledger) error {
		now := r.codec.formatTime(r.clock())
		switch c {
		case domain.CollectionSessions:
			return r.updateSession(l, id, field, v, now)
		case domain.CollectionTransactions:
			return r.updateTransaction(l, id, field, v, now)
		case domain.CollectionDebts:
			return r.updateDebt(l, id, field, v, now)
		}
		return domain.ErrInvalidField
	})
}

func (r *Repository) updateSession(l *ledger, id int64, field string, v any, now string) error {
	s, ok := l.Sessions[idKey(id)]
	if !ok {
		return domain.ErrSessionNotFound
	}
	switch field {
	case "name":
		name := truncate(strings.TrimSpace(v.(string)), domain.MaxSessionNameLen)
		if name == "" {
			return domain.ErrInvalidValue
		}
		s.Name = name
	case "budget":
		s.Budget = v.(float64)
	case "currency":
		s.Currency = strings.TrimSpace(v.(string))
	case "is_active":
		active := v.(bool)
		if active {
			s.ClosedAt = nil
		} else if s.IsActive {
			s.ClosedAt = &now
		}
		s.IsActive = active
	}
	s.LastUpdated = now
	return nil
}

func (r *Repository) updateTransaction(l *ledger, id int64, field string, v any, now string) error {
	t, ok := l.Transactions[idKey(id)]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	if _, err := activeSession(l, t.SessionID); errors.Is(err, domain.ErrSessionClosed) {
		return err
	}
	switch field {
	case "amount":
		t.Amount = v.(float64)
	case "expense_amount":
		if t.Type == string(domain.TransactionExpense) {
			return fmt.Errorf("%w: expenses have no expense_amount", domain.ErrInvalidField)
		}
		t.ExpenseAmount = v.(float64)
	case "description":
		t.Description = truncate(v.(string), domain.MaxDescriptionLen)
	}
	t.UpdatedAt = now
	r.touchSession(l, t.SessionID, now)
	return nil
}

func (r *Repository) updateDebt(l *ledger, id int64, field string, v any, now string) error {
	d, ok := l.Debts[idKey(id)]
	if !ok {
		return domain.ErrDebtNotFound
	}
	switch field {
	case "type":
		typ := domain.DebtType(v.(string))
		if !typ.Valid() {
			return domain.ErrInvalidValue
		}
		d.Type = string(typ)
	case "person_name":
		name := truncate(strings.TrimSpace(v.(string)), domain.MaxPersonNameLen)
		if name == "" {
			return domain.ErrInvalidValue
		}
		d.PersonName = name
	case "amount":
		d.Amount = v.(float64)
	case "description":
		d.Description = truncate(v.(string), domain.MaxDescriptionLen)
	case "is_repaid":
		d.IsRepaid = v.(bool)
	}
	d.UpdatedAt = now
	r.touchSession(l, d.SessionID, now)
	return nil
}

// Delete removes one transaction or debt. Sessions are closed, never
// deleted, and users are kept for good.
func (r *Repository) Delete(ctx context.Context, c domain.Collection, id int64) error {
	return r.mutate(ctx, "delete "+string(c), func(l *ledger) error {
		k := idKey(id)
		now := r.codec.formatTime(r.clock())
		switch c {
		case domain.CollectionTransactions:
			t, ok := l.Transactions[k]
			if !ok {
				return domain.ErrTransactionNotFound
			}
			if _, err := activeSession(l, t.SessionID); errors.Is(err, domain.ErrSessionClosed) {
				return err
			}
			delete(l.Transactions, k)
			r.touchSession(l, t.SessionID, now)
		case domain.CollectionDebts:
			d, ok := l.Debts[k]
			if !ok {
				return domain.ErrDebtNotFound
			}
			delete(l.Debts, k)
			r.touchSession(l, d.SessionID, now)
		default:
			return fmt.Errorf("%w: %s cannot be deleted", domain.ErrInvalidInput, c)
		}
		return nil
	})
}

// coerce converts loosely typed input (JSON numbers, numeric strings with a
// decimal comma, "1"/"0") to the field's type. Amounts must be finite and
// non-negative.
func coerce(kind fieldKind, value any) (any, error) {
	switch kind {
	case kindAmount:
		f, err := toFloat(value)
		if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidValue, value)
		}
		return f, nil
	case kindBool:
		b, err := toBool(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidValue, value)
		}
		return b, nil
	default:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected text, got %T", domain.ErrInvalidValue, value)
		}
		return s, nil
	}
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v), ",", "."), 64)
	}
	return 0, fmt.Errorf("unsupported type %T", value)
}

func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(v))
	default:
		f, err := toFloat(value)
		if err != nil {
			return false, err
		}
		return f != 0, nil
	}
}
