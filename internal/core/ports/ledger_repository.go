package ports

import (
	"context"
	"time"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

// LedgerRepository defines persistence operations over the ledger document.
// Each call is one read-modify-write (or one read) of the whole document.
type LedgerRepository interface {
	// Init makes sure every collection exists and the bootstrap admin is present.
	Init(ctx context.Context, bootstrapAdminID int64) error

	// TouchUser creates the user on first interaction and refreshes last_active.
	TouchUser(ctx context.Context, id int64) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	// SetUserRole creates the user if needed.
	SetUserRole(ctx context.Context, id int64, role string) (*domain.User, error)
	SetAccessExpiry(ctx context.Context, id int64, expiry *time.Time) (*domain.User, error)
	// SetAccessExpiryForAll updates every non-admin user and returns how many changed.
	SetAccessExpiryForAll(ctx context.Context, expiry *time.Time) (int, error)

	CreateSession(ctx context.Context, in domain.SessionInput) (int64, error)
	GetSession(ctx context.Context, id int64) (*domain.Session, error)
	// ListSessions returns the owner's sessions, newest id first.
	ListSessions(ctx context.Context, ownerID int64) ([]domain.Session, error)
	CloseSession(ctx context.Context, id int64) error
	// ResetSession deletes every transaction and debt of an active session.
	ResetSession(ctx context.Context, id int64) (int, error)

	AddTransaction(ctx context.Context, in domain.TransactionInput) (int64, error)
	GetTransaction(ctx context.Context, id int64) (*domain.Transaction, error)
	// ListTransactions returns newest first by created_at, ties by id descending.
	ListTransactions(ctx context.Context, f domain.ListFilter) ([]domain.Transaction, error)

	AddDebt(ctx context.Context, in domain.DebtInput) (int64, error)
	GetDebt(ctx context.Context, id int64) (*domain.Debt, error)
	ListDebts(ctx context.Context, f domain.ListFilter) ([]domain.Debt, error)

	// UpdateField sets one whitelisted field, coercing the value to the field's type.
	UpdateField(ctx context.Context, c domain.Collection, id int64, field string, value any) error
	// Delete removes a transaction or debt. Sessions and users cannot be deleted.
	Delete(ctx context.Context, c domain.Collection, id int64) error

	SessionView(ctx context.Context, id int64) (*domain.SessionView, error)
	// Snapshot returns the session with all of its children from one read.
	Snapshot(ctx context.Context, id int64) (*domain.Snapshot, error)
}
