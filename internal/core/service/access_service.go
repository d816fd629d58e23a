package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
	"github.com/ledgerbook/bookkeeper/internal/core/ports"
)

const DefaultAccessDays = 30

// AccessService implements ports.AccessService. The bootstrap admin is
// configured at startup and can never lose the admin role.
type AccessService struct {
	repo             ports.LedgerRepository
	bootstrapAdminID int64
	defaultDays      int
	now              func() time.Time
	logger           zerolog.Logger
}

var _ ports.AccessService = (*AccessService)(nil)

func NewAccessService(repo ports.LedgerRepository, bootstrapAdminID int64, defaultDays int, logger zerolog.Logger) *AccessService {
	if defaultDays <= 0 {
		defaultDays = DefaultAccessDays
	}
	return &AccessService{
		repo:             repo,
		bootstrapAdminID: bootstrapAdminID,
		defaultDays:      defaultDays,
		now:              time.Now,
		logger:           logger,
	}
}

func (s *AccessService) Touch(ctx context.Context, userID int64) (*domain.User, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id must be positive", domain.ErrInvalidInput)
	}
	return s.repo.TouchUser(ctx, userID)
}

func (s *AccessService) CheckAccess(_ context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrUserNotFound
	}
	if !user.HasAccess(s.now()) {
		return domain.ErrAccessExpired
	}
	return nil
}

func (s *AccessService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListUsers(ctx)
}

// GrantAccess opens an access window of days days starting now. Zero days
// selects the configured default.
func (s *AccessService) GrantAccess(ctx context.Context, userID int64, days int) (*domain.User, error) {
	expiry, err := s.expiry(days)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.SetAccessExpiry(ctx, userID, &expiry)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", userID).Time("access_expiry", expiry).Msg("access granted")
	return u, nil
}

func (s *AccessService) RevokeAccess(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := s.repo.SetAccessExpiry(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", userID).Msg("access revoked")
	return u, nil
}

func (s *AccessService) AddAdmin(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := s.repo.SetUserRole(ctx, userID, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", userID).Msg("admin added")
	return u, nil
}

// RemoveAdmin demotes an admin to a plain user without access.
func (s *AccessService) RemoveAdmin(ctx context.Context, userID int64) (*domain.User, error) {
	if userID == s.bootstrapAdminID {
		return nil, domain.ErrProtectedAdmin
	}
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin() {
		return nil, fmt.Errorf("%w: user %d is not an admin", domain.ErrInvalidInput, userID)
	}
	u, err = s.repo.SetUserRole(ctx, userID, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", userID).Msg("admin removed")
	return u, nil
}

func (s *AccessService) GrantAll(ctx context.Context, days int) (int, error) {
	expiry, err := s.expiry(days)
	if err != nil {
		return 0, err
	}
	n, err := s.repo.SetAccessExpiryForAll(ctx, &expiry)
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int("users", n).Time("access_expiry", expiry).Msg("access granted to all users")
	return n, nil
}

func (s *AccessService) RevokeAll(ctx context.Context) (int, error) {
	n, err := s.repo.SetAccessExpiryForAll(ctx, nil)
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int("users", n).Msg("access revoked for all users")
	return n, nil
}

func (s *AccessService) expiry(days int) (time.Time, error) {
	if days < 0 {
		return time.Time{}, fmt.Errorf("%w: days must not be negative", domain.ErrInvalidInput)
	}
	if days == 0 {
		days = s.defaultDays
	}
	return s.now().UTC().AddDate(0, 0, days), nil
}
