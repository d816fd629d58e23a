package handler

import (
	"encoding/json"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

// errorResponse is the error envelope documented on every 4xx/5xx response.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Sessions ---

type createSessionRequest struct {
	Name     string  `json:"name"     validate:"required,min=3,max=50"`
	Budget   float64 `json:"budget"   validate:"gt=0"`
	Currency string  `json:"currency" validate:"omitempty,max=10"`
}

type updateSessionRequest struct {
	Name   *string  `json:"name"   validate:"omitempty,min=3,max=50"`
	Budget *float64 `json:"budget" validate:"omitempty,gt=0"`
}

type sessionLinks struct {
	Self         string `json:"self"`
	Transactions string `json:"transactions"`
	Debts        string `json:"debts"`
	Report       string `json:"report"`
}

type sessionResponse struct {
	domain.SessionView
	Links sessionLinks `json:"_links"`
}

// --- Transactions ---

type saleRequest struct {
	Amount        float64 `json:"amount"         validate:"gt=0"`
	ExpenseAmount float64 `json:"expense_amount" validate:"gte=0"`
	Description   string  `json:"description"`
}

type expenseRequest struct {
	Amount      float64 `json:"amount"      validate:"gt=0"`
	Description string  `json:"description"`
}

type quickExpenseRequest struct {
	Category string  `json:"category" validate:"required"`
	Amount   float64 `json:"amount"   validate:"gt=0"`
}

type updateFieldRequest struct {
	Field string `json:"field" validate:"required"`
	// Value is coerced to the field's type: numbers accept "12,5" and
	// booleans accept "true", "1" or 1.
	Value any `json:"value" swaggertype:"string"`
}

type transactionResponse struct {
	domain.Transaction
	AlreadyExisted bool `json:"already_existed,omitempty"`
}

// MarshalJSON keeps already_existed next to the transaction's own fields;
// the embedded Transaction would otherwise marshal alone.
func (r transactionResponse) MarshalJSON() ([]byte, error) {
	body, err := json.Marshal(r.Transaction)
	if err != nil || !r.AlreadyExisted {
		return body, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	fields["already_existed"] = json.RawMessage("true")
	return json.Marshal(fields)
}

type quickExpenseCategoriesResponse struct {
	Categories []string `json:"categories"`
}

// --- Debts ---

type debtRequest struct {
	Type        string  `json:"type"        validate:"required,oneof=owed_to_me i_owe"`
	PersonName  string  `json:"person_name" validate:"required"`
	Amount      float64 `json:"amount"      validate:"gt=0"`
	Description string  `json:"description"`
}

type debtResponse struct {
	domain.Debt
	AlreadyExisted bool `json:"already_existed,omitempty"`
}

// --- Access ---

type grantAccessRequest struct {
	// Days of access; 0 selects the configured default.
	Days int `json:"days" validate:"gte=0,lte=3650"`
}

type bulkAccessResponse struct {
	Updated int `json:"updated"`
}

type meResponse struct {
	User      domain.User `json:"user"`
	HasAccess bool        `json:"has_access"`
}
