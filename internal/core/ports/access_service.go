package ports

import (
	"context"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

// AccessService manages users, roles and paid access windows.
type AccessService interface {
	// Touch registers the user on first interaction and refreshes last_active.
	Touch(ctx context.Context, userID int64) (*domain.User, error)
	// CheckAccess returns domain.ErrAccessExpired when the user may not use the ledger.
	CheckAccess(ctx context.Context, user *domain.User) error

	ListUsers(ctx context.Context) ([]domain.User, error)
	GrantAccess(ctx context.Context, userID int64, days int) (*domain.User, error)
	RevokeAccess(ctx context.Context, userID int64) (*domain.User, error)
	AddAdmin(ctx context.Context, userID int64) (*domain.User, error)
	RemoveAdmin(ctx context.Context, userID int64) (*domain.User, error)
	// GrantAll and RevokeAll touch every non-admin user and return how many.
	GrantAll(ctx context.Context, days int) (int, error)
	RevokeAll(ctx context.Context) (int, error)
}
