package ports

import (
	"context"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

// Actor identifies the caller of a use case. Admins may act on any session;
// everyone else only on sessions they own.
type Actor struct {
	UserID int64
	Role   string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

// UpdateSessionInput carries the optional session settings to change.
type UpdateSessionInput struct {
	Name   *string
	Budget *float64
}

// AddTransactionInput carries a new sale or expense. IdempotencyKey is optional.
type AddTransactionInput struct {
	domain.TransactionInput
	IdempotencyKey string
}

// QuickExpenseInput records an expense under a named category.
type QuickExpenseInput struct {
	SessionID      int64
	Category       string
	Amount         float64
	IdempotencyKey string
}

// AddDebtInput carries a new debt. IdempotencyKey is optional.
type AddDebtInput struct {
	domain.DebtInput
	IdempotencyKey string
}

// TransactionResult is returned when a transaction is recorded.
type TransactionResult struct {
	Transaction domain.Transaction
	// AlreadyExisted is true when the idempotency key matched an earlier add.
	AlreadyExisted bool
}

// DebtResult is returned when a debt is recorded.
type DebtResult struct {
	Debt           domain.Debt
	AlreadyExisted bool
}

// LedgerService defines use-case operations over sessions and their records.
type LedgerService interface {
	CreateSession(ctx context.Context, actor Actor, in domain.SessionInput) (*domain.Session, error)
	ListSessions(ctx context.Context, actor Actor) ([]domain.Session, error)
	GetSession(ctx context.Context, actor Actor, sessionID int64) (*domain.SessionView, error)
	UpdateSession(ctx context.Context, actor Actor, sessionID int64, in UpdateSessionInput) (*domain.SessionView, error)
	CloseSession(ctx context.Context, actor Actor, sessionID int64) (*domain.SessionView, error)
	ResetSession(ctx context.Context, actor Actor, sessionID int64) (*domain.SessionView, error)

	AddTransaction(ctx context.Context, actor Actor, in AddTransactionInput) (*TransactionResult, error)
	AddQuickExpense(ctx context.Context, actor Actor, in QuickExpenseInput) (*TransactionResult, error)
	ListTransactions(ctx context.Context, actor Actor, f domain.ListFilter) ([]domain.Transaction, error)
	UpdateTransaction(ctx context.Context, actor Actor, id int64, field string, value any) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, actor Actor, id int64) error

	AddDebt(ctx context.Context, actor Actor, in AddDebtInput) (*DebtResult, error)
	ListDebts(ctx context.Context, actor Actor, f domain.ListFilter) ([]domain.Debt, error)
	UpdateDebt(ctx context.Context, actor Actor, id int64, field string, value any) (*domain.Debt, error)
	RepayDebt(ctx context.Context, actor Actor, id int64) (*domain.Debt, error)
	DeleteDebt(ctx context.Context, actor Actor, id int64) error
}
