package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is a chat user known to the ledger. The ID is the external chat user id.
type User struct {
	ID           int64      `json:"id"`
	Role         string     `json:"role"`
	AccessExpiry *time.Time `json:"access_expiry,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActive   time.Time  `json:"last_active"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasAccess reports whether the user may use the ledger at the given instant.
// Admins always have access; everyone else needs an unexpired access window.
func (u *User) HasAccess(now time.Time) bool {
	if u.IsAdmin() {
		return true
	}
	if u.AccessExpiry == nil {
		return false
	}
	return now.Before(*u.AccessExpiry)
}
