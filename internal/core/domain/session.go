package domain

import "time"

const (
	MaxSessionNameLen = 50
	MinSessionNameLen = 3
)

// Session is a named, currency-scoped ledger owned by one user.
type Session struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"owner_id"`
	Name        string     `json:"name"`
	Budget      float64    `json:"budget"`
	Currency    string     `json:"currency"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	LastUpdated time.Time  `json:"last_updated"`
}

// SessionInput carries the data needed to open a new session.
type SessionInput struct {
	OwnerID  int64
	Name     string
	Budget   float64
	Currency string
}

// SessionView is a session together with its derived totals.
type SessionView struct {
	Session

	Balance       float64 `json:"balance"`
	TotalSales    float64 `json:"total_sales"`
	TotalExpenses float64 `json:"total_expenses"`
	SalesCount    int     `json:"sales_count"`
	ExpensesCount int     `json:"expenses_count"`
	AvgCheck      float64 `json:"avg_check"`
	OwedToMe      float64 `json:"owed_to_me"`
	IOwe          float64 `json:"i_owe"`
}

// Snapshot is a point-in-time copy of one session and all of its children,
// read from a single document load.
type Snapshot struct {
	Session      Session
	Transactions []Transaction
	Debts        []Debt
}

// Sales returns the sale transactions of the snapshot in their stored order.
func (s *Snapshot) Sales() []Transaction {
	return s.byType(TransactionSale)
}

// Expenses returns the expense transactions of the snapshot in their stored order.
func (s *Snapshot) Expenses() []Transaction {
	return s.byType(TransactionExpense)
}

func (s *Snapshot) byType(t TransactionType) []Transaction {
	out := make([]Transaction, 0, len(s.Transactions))
	for _, tx := range s.Transactions {
		if tx.Type == t {
			out = append(out, tx)
		}
	}
	return out
}
