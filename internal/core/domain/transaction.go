package domain

import (
	"encoding/json"
	"time"
)

const MaxDescriptionLen = 100

// TransactionType distinguishes sales from expenses.
type TransactionType string

const (
	TransactionSale    TransactionType = "sale"
	TransactionExpense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionSale || t == TransactionExpense
}

// Transaction is a recorded sale or expense within a session.
// ExpenseAmount is the cost attributed to a sale and is always 0 for expenses.
type Transaction struct {
	ID            int64           `json:"id"`
	SessionID     int64           `json:"session_id"`
	Type          TransactionType `json:"type"`
	Amount        float64         `json:"amount"`
	ExpenseAmount float64         `json:"expense_amount"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Profit is the amount left after the attributed cost.
func (t Transaction) Profit() float64 {
	return t.Amount - t.ExpenseAmount
}

// transactionFields has Transaction's fields without its methods.
type transactionFields Transaction

// MarshalJSON writes the stored fields plus the derived profit.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		transactionFields
		Profit float64 `json:"profit"`
	}{transactionFields(t), t.Profit()})
}

// TransactionInput carries the data needed to record a transaction.
type TransactionInput struct {
	SessionID     int64
	Type          TransactionType
	Amount        float64
	ExpenseAmount float64
	Description   string
}

// ListFilter narrows list queries over a session's children.
// Zero values mean "no filter"; Limit <= 0 means unlimited.
type ListFilter struct {
	SessionID int64
	Type      string
	Search    string
	Limit     int
}
