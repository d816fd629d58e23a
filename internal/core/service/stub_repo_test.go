package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubLedgerRepo struct {
	users    map[int64]*domain.User
	sessions map[int64]*domain.Session
	txs      map[int64]*domain.Transaction
	debts    map[int64]*domain.Debt
	nextID   int64
	now      time.Time

	updates []string // "<collection>.<field>" per UpdateField call
	deleted []string // "<collection>:<id>" per Delete call
	addErr  error    // if set, AddTransaction and AddDebt return this error
}

func newStubLedgerRepo() *stubLedgerRepo {
	return &stubLedgerRepo{
		users:    map[int64]*domain.User{},
		sessions: map[int64]*domain.Session{},
		txs:      map[int64]*domain.Transaction{},
		debts:    map[int64]*domain.Debt{},
		now:      time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC),
	}
}

func (r *stubLedgerRepo) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *stubLedgerRepo) seedSession(owner int64, name string, active bool) int64 {
	id := r.id()
	r.sessions[id] = &domain.Session{ID: id, OwnerID: owner, Name: name, Budget: 100, Currency: "USDT", IsActive: active, CreatedAt: r.now}
	return id
}

func (r *stubLedgerRepo) Init(_ context.Context, adminID int64) error {
	r.users[adminID] = &domain.User{ID: adminID, Role: domain.RoleAdmin}
	return nil
}

func (r *stubLedgerRepo) TouchUser(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		u = &domain.User{ID: id, Role: domain.RoleUser, CreatedAt: r.now}
		r.users[id] = u
	}
	u.LastActive = r.now
	clone := *u
	return &clone, nil
}

func (r *stubLedgerRepo) GetUser(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubLedgerRepo) ListUsers(_ context.Context) ([]domain.User, error) {
	out := []domain.User{}
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubLedgerRepo) SetUserRole(ctx context.Context, id int64, role string) (*domain.User, error) {
	if _, err := r.TouchUser(ctx, id); err != nil {
		return nil, err
	}
	u := r.users[id]
	if role == domain.RoleUser {
		u.AccessExpiry = nil
	}
	u.Role = role
	clone := *u
	return &clone, nil
}

func (r *stubLedgerRepo) SetAccessExpiry(ctx context.Context, id int64, expiry *time.Time) (*domain.User, error) {
	if _, err := r.TouchUser(ctx, id); err != nil {
		return nil, err
	}
	u := r.users[id]
	u.AccessExpiry = expiry
	clone := *u
	return &clone, nil
}

func (r *stubLedgerRepo) SetAccessExpiryForAll(_ context.Context, expiry *time.Time) (int, error) {
	n := 0
	for _, u := range r.users {
		if u.IsAdmin() {
			continue
		}
		u.AccessExpiry = expiry
		n++
	}
	return n, nil
}

func (r *stubLedgerRepo) CreateSession(_ context.Context, in domain.SessionInput) (int64, error) {
	id := r.id()
	r.sessions[id] = &domain.Session{ID: id, OwnerID: in.OwnerID, Name: in.Name, Budget: in.Budget, Currency: in.Currency, IsActive: true, CreatedAt: r.now}
	return id, nil
}

func (r *stubLedgerRepo) GetSession(_ context.Context, id int64) (*domain.Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *stubLedgerRepo) ListSessions(_ context.Context, owner int64) ([]domain.Session, error) {
	out := []domain.Session{}
	for _, s := range r.sessions {
		if s.OwnerID == owner {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *stubLedgerRepo) CloseSession(_ context.Context, id int64) error {
	s, ok := r.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.IsActive = false
	return nil
}

func (r *stubLedgerRepo) ResetSession(_ context.Context, id int64) (int, error) {
	s, ok := r.sessions[id]
	if !ok {
		return 0, domain.ErrSessionNotFound
	}
	if !s.IsActive {
		return 0, domain.ErrSessionClosed
	}
	n := 0
	for k, t := range r.txs {
		if t.SessionID == id {
			delete(r.txs, k)
			n++
		}
	}
	for k, d := range r.debts {
		if d.SessionID == id {
			delete(r.debts, k)
			n++
		}
	}
	return n, nil
}

func (r *stubLedgerRepo) AddTransaction(_ context.Context, in domain.TransactionInput) (int64, error) {
	if r.addErr != nil {
		return 0, r.addErr
	}
	if s, ok := r.sessions[in.SessionID]; !ok {
		return 0, domain.ErrSessionNotFound
	} else if !s.IsActive {
		return 0, domain.ErrSessionClosed
	}
	id := r.id()
	r.txs[id] = &domain.Transaction{
		ID: id, SessionID: in.SessionID, Type: in.Type, Amount: in.Amount,
		ExpenseAmount: in.ExpenseAmount, Description: in.Description, CreatedAt: r.now, UpdatedAt: r.now,
	}
	return id, nil
}

func (r *stubLedgerRepo) GetTransaction(_ context.Context, id int64) (*domain.Transaction, error) {
	t, ok := r.txs[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *stubLedgerRepo) ListTransactions(_ context.Context, f domain.ListFilter) ([]domain.Transaction, error) {
	out := []domain.Transaction{}
	for _, t := range r.txs {
		if t.SessionID == f.SessionID && (f.Type == "" || string(t.Type) == f.Type) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *stubLedgerRepo) AddDebt(_ context.Context, in domain.DebtInput) (int64, error) {
	if r.addErr != nil {
		return 0, r.addErr
	}
	if _, ok := r.sessions[in.SessionID]; !ok {
		return 0, domain.ErrSessionNotFound
	}
	id := r.id()
	r.debts[id] = &domain.Debt{
		ID: id, SessionID: in.SessionID, Type: in.Type, PersonName: in.PersonName,
		Amount: in.Amount, Description: in.Description, CreatedAt: r.now, UpdatedAt: r.now,
	}
	return id, nil
}

func (r *stubLedgerRepo) GetDebt(_ context.Context, id int64) (*domain.Debt, error) {
	d, ok := r.debts[id]
	if !ok {
		return nil, domain.ErrDebtNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *stubLedgerRepo) ListDebts(_ context.Context, f domain.ListFilter) ([]domain.Debt, error) {
	out := []domain.Debt{}
	for _, d := range r.debts {
		if d.SessionID == f.SessionID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// UpdateField applies the handful of fields the services write directly.
func (r *stubLedgerRepo) UpdateField(_ context.Context, c domain.Collection, id int64, field string, value any) error {
	r.updates = append(r.updates, string(c)+"."+field)
	switch c {
	case domain.CollectionSessions:
		s, ok := r.sessions[id]
		if !ok {
			return domain.ErrSessionNotFound
		}
		switch field {
		case "name":
			s.Name = value.(string)
		case "budget":
			s.Budget = value.(float64)
		}
	case domain.CollectionTransactions:
		t, ok := r.txs[id]
		if !ok {
			return domain.ErrTransactionNotFound
		}
		if field == "amount" {
			t.Amount = value.(float64)
		}
	case domain.CollectionDebts:
		d, ok := r.debts[id]
		if !ok {
			return domain.ErrDebtNotFound
		}
		if field == "is_repaid" {
			d.IsRepaid = value.(bool)
		}
	}
	return nil
}

func (r *stubLedgerRepo) Delete(_ context.Context, c domain.Collection, id int64) error {
	r.deleted = append(r.deleted, fmt.Sprintf("%s:%d", c, id))
	switch c {
	case domain.CollectionTransactions:
		delete(r.txs, id)
	case domain.CollectionDebts:
		delete(r.debts, id)
	}
	return nil
}

func (r *stubLedgerRepo) SessionView(ctx context.Context, id int64) (*domain.SessionView, error) {
	snap, err := r.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	v := domain.NewSessionView(snap.Session, snap.Transactions, snap.Debts)
	return &v, nil
}

func (r *stubLedgerRepo) Snapshot(_ context.Context, id int64) (*domain.Snapshot, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	snap := &domain.Snapshot{Session: *s, Transactions: []domain.Transaction{}, Debts: []domain.Debt{}}
	for _, t := range r.txs {
		if t.SessionID == id {
			snap.Transactions = append(snap.Transactions, *t)
		}
	}
	for _, d := range r.debts {
		if d.SessionID == id {
			snap.Debts = append(snap.Debts, *d)
		}
	}
	sort.Slice(snap.Transactions, func(i, j int) bool { return snap.Transactions[i].ID < snap.Transactions[j].ID })
	sort.Slice(snap.Debts, func(i, j int) bool { return snap.Debts[i].ID < snap.Debts[j].ID })
	return snap, nil
}

// stubIdem is an in-memory ports.IdempotencyStore.
type stubIdem struct {
	keys      map[string]int64
	lookupErr error
}

func newStubIdem() *stubIdem { return &stubIdem{keys: map[string]int64{}} }

func (s *stubIdem) Lookup(_ context.Context, key string) (int64, bool, error) {
	if s.lookupErr != nil {
		return 0, false, s.lookupErr
	}
	id, ok := s.keys[key]
	return id, ok, nil
}

func (s *stubIdem) Remember(_ context.Context, key string, id int64) error {
	if _, ok := s.keys[key]; !ok {
		s.keys[key] = id
	}
	return nil
}
