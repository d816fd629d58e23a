package document

import (
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

// ledger is the persisted document. Record maps are keyed by the decimal id.
type ledger struct {
	Users        map[string]*userRecord        `json:"users"`
	Sessions     map[string]*sessionRecord     `json:"sessions"`
	Transactions map[string]*transactionRecord `json:"transactions"`
	Debts        map[string]*debtRecord        `json:"debts"`
	Sequences    map[string]int64              `json:"sequences"`
}

func newLedger() *ledger {
	l := &ledger{}
	l.fill()
	return l
}

// fill adds any collection missing from an older or hand-edited document.
func (l *ledger) fill() {
	if l.Users == nil {
		l.Users = map[string]*userRecord{}
	}
	if l.Sessions == nil {
		l.Sessions = map[string]*sessionRecord{}
	}
	if l.Transactions == nil {
		l.Transactions = map[string]*transactionRecord{}
	}
	if l.Debts == nil {
		l.Debts = map[string]*debtRecord{}
	}
	if l.Sequences == nil {
		l.Sequences = map[string]int64{}
	}
	dropNil(l.Users)
	dropNil(l.Sessions)
	dropNil(l.Transactions)
	dropNil(l.Debts)
}

func dropNil[T any](m map[string]*T) {
	for k, v := range m {
		if v == nil {
			delete(m, k)
		}
	}
}

// nextID assigns the next id of a collection. The sequence never goes below
// the largest numeric key already present, so legacy documents without
// sequences continue from max(existing)+1.
func (l *ledger) nextID(c domain.Collection) int64 {
	last := l.Sequences[string(c)]
	for _, k := range l.keys(c) {
		if id, err := strconv.ParseInt(k, 10, 64); err == nil && id > last {
			last = id
		}
	}
	l.Sequences[string(c)] = last + 1
	return last + 1
}

func (l *ledger) keys(c domain.Collection) []string {
	var out []string
	switch c {
	case domain.CollectionUsers:
		for k := range l.Users {
			out = append(out, k)
		}
	case domain.CollectionSessions:
		for k := range l.Sessions {
			out = append(out, k)
		}
	case domain.CollectionTransactions:
		for k := range l.Transactions {
			out = append(out, k)
		}
	case domain.CollectionDebts:
		for k := range l.Debts {
			out = append(out, k)
		}
	}
	return out
}

type userRecord struct {
	Role         string  `json:"role"`
	AccessExpiry *string `json:"access_expiry"`
	CreatedAt    string  `json:"created_at"`
	LastActive   string  `json:"last_active"`
}

type sessionRecord struct {
	UserID      int64   `json:"user_id"`
	Name        string  `json:"name"`
	Budget      float64 `json:"budget"`
	Currency    string  `json:"currency"`
	IsActive    bool    `json:"is_active"`
	CreatedAt   string  `json:"created_at"`
	ClosedAt    *string `json:"closed_at"`
	LastUpdated string  `json:"last_updated"`
}

type transactionRecord struct {
	SessionID     int64   `json:"session_id"`
	Type          string  `json:"type"`
	Amount        float64 `json:"amount"`
	ExpenseAmount float64 `json:"expense_amount"`
	Description   string  `json:"description"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type debtRecord struct {
	SessionID   int64   `json:"session_id"`
	Type        string  `json:"type"`
	PersonName  string  `json:"person_name"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	IsRepaid    bool    `json:"is_repaid"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// legacyLayout is the naive ISO-8601 form older documents were written in.
const legacyLayout = "2006-01-02T15:04:05.999999999"

// codec converts between wire records and domain values. Naive legacy
// timestamps are interpreted in loc.
type codec struct {
	loc *time.Location
}

func (c codec) formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func (c codec) formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := c.formatTime(*t)
	return &s
}

// parseTime accepts RFC 3339 and legacy naive timestamps. Unparseable values
// read as the zero time.
func (c codec) parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC()
	}
	if t, err := time.ParseInLocation(legacyLayout, s, c.loc); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

func (c codec) parseTimePtr(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t := c.parseTime(*s)
	if t.IsZero() {
		return nil
	}
	return &t
}

func (c codec) user(key string, r *userRecord) domain.User {
	id, _ := strconv.ParseInt(key, 10, 64)
	role := r.Role
	if role == "" {
		role = domain.RoleUser
	}
	return domain.User{
		ID:           id,
		Role:         role,
		AccessExpiry: c.parseTimePtr(r.AccessExpiry),
		CreatedAt:    c.parseTime(r.CreatedAt),
		LastActive:   c.parseTime(r.LastActive),
	}
}

func (c codec) session(key string, r *sessionRecord) domain.Session {
	id, _ := strconv.ParseInt(key, 10, 64)
	return domain.Session{
		ID:          id,
		OwnerID:     r.UserID,
		Name:        r.Name,
		Budget:      r.Budget,
		Currency:    r.Currency,
		IsActive:    r.IsActive,
		CreatedAt:   c.parseTime(r.CreatedAt),
		ClosedAt:    c.parseTimePtr(r.ClosedAt),
		LastUpdated: c.parseTime(r.LastUpdated),
	}
}

func (c codec) transaction(key string, r *transactionRecord) domain.Transaction {
	id, _ := strconv.ParseInt(key, 10, 64)
	return domain.Transaction{
		ID:            id,
		SessionID:     r.SessionID,
		Type:          domain.TransactionType(r.Type),
		Amount:        r.Amount,
		ExpenseAmount: r.ExpenseAmount,
		Description:   r.Description,
		CreatedAt:     c.parseTime(r.CreatedAt),
		UpdatedAt:     c.parseTime(r.UpdatedAt),
	}
}

func (c codec) debt(key string, r *debtRecord) domain.Debt {
	id, _ := strconv.ParseInt(key, 10, 64)
	return domain.Debt{
		ID:          id,
		SessionID:   r.SessionID,
		Type:        domain.DebtType(r.Type),
		PersonName:  r.PersonName,
		Amount:      r.Amount,
		Description: r.Description,
		IsRepaid:    r.IsRepaid,
		CreatedAt:   c.parseTime(r.CreatedAt),
		UpdatedAt:   c.parseTime(r.UpdatedAt),
	}
}

func idKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
