package domain

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDebtNotFound        = errors.New("debt not found")

	ErrForbidden        = errors.New("access forbidden")
	ErrAccessExpired    = errors.New("access expired")
	ErrProtectedAdmin   = errors.New("bootstrap admin cannot be demoted")
	ErrSessionClosed    = errors.New("session is closed")
	ErrDuplicateSession = errors.New("session with this name already exists")
	ErrInvalidField     = errors.New("field cannot be updated")
	ErrInvalidValue     = errors.New("invalid field value")
	ErrInvalidInput     = errors.New("invalid input")

	// ErrStoreUnavailable means the document store could not be read or written.
	// It is never returned for a ledger that is merely empty.
	ErrStoreUnavailable = errors.New("document store unavailable")
	// ErrVersionConflict means another writer replaced the document between
	// our read and our write.
	ErrVersionConflict = errors.New("document version conflict")
)

// IsNotFound reports whether err is one of the record-not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrDebtNotFound)
}
