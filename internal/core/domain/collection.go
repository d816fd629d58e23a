package domain

// Collection names one of the record collections of the ledger document.
type Collection string

const (
	CollectionUsers        Collection = "users"
	CollectionSessions     Collection = "sessions"
	CollectionTransactions Collection = "transactions"
	CollectionDebts        Collection = "debts"
)

// NotFoundErr returns the not-found error matching the collection.
func (c Collection) NotFoundErr() error {
	switch c {
	case CollectionUsers:
		return ErrUserNotFound
	case CollectionSessions:
		return ErrSessionNotFound
	case CollectionTransactions:
		return ErrTransactionNotFound
	case CollectionDebts:
		return ErrDebtNotFound
	default:
		return ErrInvalidInput
	}
}
