package domain

import "time"

const MaxPersonNameLen = 50

// DebtType distinguishes receivables from payables.
type DebtType string

const (
	DebtOwedToMe DebtType = "owed_to_me"
	DebtIOwe     DebtType = "i_owe"
)

// Valid reports whether t is a known debt type.
func (t DebtType) Valid() bool {
	return t == DebtOwedToMe || t == DebtIOwe
}

// Debt is a receivable or payable tracked inside a session.
type Debt struct {
	ID          int64     `json:"id"`
	SessionID   int64     `json:"session_id"`
	Type        DebtType  `json:"type"`
	PersonName  string    `json:"person_name"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	IsRepaid    bool      `json:"is_repaid"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DebtInput carries the data needed to record a debt.
type DebtInput struct {
	SessionID   int64
	Type        DebtType
	PersonName  string
	Amount      float64
	Description string
}
