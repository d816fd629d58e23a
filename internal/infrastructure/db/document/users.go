package document

import (
	"context"
	"sort"
	"time"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

// ensureUser returns the user record, creating a plain user when absent.
func (r *Repository) ensureUser(l *ledger, id int64, now string) *userRecord {
	k := idKey(id)
	u, ok := l.Users[k]
	if !ok {
		u = &userRecord{Role: domain.RoleUser, CreatedAt: now, LastActive: now}
		l.Users[k] = u
	}
	return u
}

// TouchUser creates the user on first interaction and refreshes last_active.
func (r *Repository) TouchUser(ctx context.Context, id int64) (*domain.User, error) {
	var out domain.User
	err := r.mutate(ctx, "touch user", func(l *ledger) error {
		now := r.codec.formatTime(r.clock())
		u := r.ensureUser(l, id, now)
		u.LastActive = now
		out = r.codec.user(idKey(id), u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUser returns domain.ErrUserNotFound for unknown ids.
func (r *Repository) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var out domain.User
	err := r.read(ctx, func(l *ledger) error {
		u, ok := l.Users[idKey(id)]
		if !ok {
			return domain.ErrUserNotFound
		}
		out = r.codec.user(idKey(id), u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers returns every known user ordered by id.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	err := r.read(ctx, func(l *ledger) error {
		out = make([]domain.User, 0, len(l.Users))
		for k, u := range l.Users {
			out = append(out, r.codec.user(k, u))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SetUserRole creates the user if needed. Demoting a user also clears
// their access window.
func (r *Repository) SetUserRole(ctx context.Context, id int64, role string) (*domain.User, error) {
	if role != domain.RoleAdmin && role != domain.RoleUser {
		return nil, domain.ErrInvalidValue
	}
	var out domain.User
	err := r.mutate(ctx, "set user role", func(l *ledger) error {
		u := r.ensureUser(l, id, r.codec.formatTime(r.clock()))
		if u.Role == domain.RoleAdmin && role == domain.RoleUser {
			u.AccessExpiry = nil
		}
		u.Role = role
		out = r.codec.user(idKey(id), u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SetAccessExpiry creates the user if needed. A nil expiry revokes access.
func (r *Repository) SetAccessExpiry(ctx context.Context, id int64, expiry *time.Time) (*domain.User, error) {
	var out domain.User
	err := r.mutate(ctx, "set access expiry", func(l *ledger) error {
		u := r.ensureUser(l, id, r.codec.formatTime(r.clock()))
		u.AccessExpiry = r.codec.formatTimePtr(expiry)
		out = r.codec.user(idKey(id), u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SetAccessExpiryForAll updates every non-admin user.
func (r *Repository) SetAccessExpiryForAll(ctx context.Context, expiry *time.Time) (int, error) {
	var n int
	err := r.mutate(ctx, "set access expiry for all", func(l *ledger) error {
		n = 0
		value := r.codec.formatTimePtr(expiry)
		for _, u := range l.Users {
			if u.Role == domain.RoleAdmin {
				continue
			}
			u.AccessExpiry = value
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
