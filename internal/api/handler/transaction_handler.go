package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ledgerbook/bookkeeper/internal/api/metrics"
	"github.com/ledgerbook/bookkeeper/internal/core/analytics"
	"github.com/ledgerbook/bookkeeper/internal/core/domain"
	"github.com/ledgerbook/bookkeeper/internal/core/ports"
)

const idempotencyHeader = "Idempotency-Key"

// TransactionHandler serves sales, expenses and their edits.
type TransactionHandler struct {
	service ports.LedgerService
}

func NewTransactionHandler(service ports.LedgerService) *TransactionHandler {
	return &TransactionHandler{service: service}
}

// AddSale handles POST /v1/sessions/:id/sales.
//
// @Summary      Record a sale
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id               path      int          true   "Session id"
// @Param        Idempotency-Key  header    string       false  "Replays the first result for a repeated key"
// @Param        body             body      saleRequest  true   "Sale"
// @Success      201              {object}  transactionResponse
// @Success      200              {object}  transactionResponse  "Idempotent replay"
// @Failure      409              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Router       /v1/sessions/{id}/sales [post]
func (h *TransactionHandler) AddSale(c echo.Context) error {
	var req saleRequest
	return h.add(c, &req, func(sessionID int64) domain.TransactionInput {
		return domain.TransactionInput{
			SessionID:     sessionID,
			Type:          domain.TransactionSale,
			Amount:        req.Amount,
			ExpenseAmount: req.ExpenseAmount,
			Description:   req.Description,
		}
	})
}

// AddExpense handles POST /v1/sessions/:id/expenses.
//
// @Summary      Record an expense
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id               path      int             true   "Session id"
// @Param        Idempotency-Key  header    string          false  "Replays the first result for a repeated key"
// @Param        body             body      expenseRequest  true   "Expense"
// @Success      201              {object}  transactionResponse
// @Failure      409              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Router       /v1/sessions/{id}/expenses [post]
func (h *TransactionHandler) AddExpense(c echo.Context) error {
	var req expenseRequest
	return h.add(c, &req, func(sessionID int64) domain.TransactionInput {
		return domain.TransactionInput{
			SessionID:   sessionID,
			Type:        domain.TransactionExpense,
			Amount:      req.Amount,
			Description: req.Description,
		}
	})
}

// AddQuickExpense handles POST /v1/sessions/:id/quick-expenses.
//
// @Summary      Record an expense under a quick category
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id               path      int                  true   "Session id"
// @Param        Idempotency-Key  header    string               false  "Replays the first result for a repeated key"
// @Param        body             body      quickExpenseRequest  true   "Category and amount"
// @Success      201              {object}  transactionResponse
// @Failure      409              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Router       /v1/sessions/{id}/quick-expenses [post]
func (h *TransactionHandler) AddQuickExpense(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	sessionID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req quickExpenseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.AddQuickExpense(c.Request().Context(), actor, ports.QuickExpenseInput{
		SessionID:      sessionID,
		Category:       req.Category,
		Amount:         req.Amount,
		IdempotencyKey: c.Request().Header.Get(idempotencyHeader),
	})
	if err != nil {
		return err
	}
	return respondTransaction(c, res)
}

// QuickExpenseCategories handles GET /v1/quick-expense-categories.
//
// @Summary      List the preset quick expense categories
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  quickExpenseCategoriesResponse
// @Router       /v1/quick-expense-categories [get]
func (h *TransactionHandler) QuickExpenseCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, quickExpenseCategoriesResponse{Categories: analytics.QuickExpenseCategories()})
}

// List handles GET /v1/sessions/:id/transactions.
//
// @Summary      List a session's transactions, newest first
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      int     true   "Session id"
// @Param        type    query     string  false  "sale or expense"
// @Param        search  query     string  false  "Case-insensitive description filter"
// @Param        limit   query     int     false  "Maximum number of results"
// @Success      200     {array}   domain.Transaction
// @Failure      422     {object}  errorResponse
// @Router       /v1/sessions/{id}/transactions [get]
func (h *TransactionHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	f, err := listFilter(c)
	if err != nil {
		return err
	}
	txs, err := h.service.ListTransactions(c.Request().Context(), actor, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, txs)
}

// Update handles PATCH /v1/transactions/:id.
//
// @Summary      Change one field of a transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                 true  "Transaction id"
// @Param        body  body      updateFieldRequest  true  "amount, expense_amount or description"
// @Success      200   {object}  domain.Transaction
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/transactions/{id} [patch]
func (h *TransactionHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateFieldRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Value == nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "value is required")
	}

	tx, err := h.service.UpdateTransaction(c.Request().Context(), actor, id, req.Field, req.Value)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tx)
}

// Delete handles DELETE /v1/transactions/:id.
//
// @Summary      Delete a transaction
// @Tags         transactions
// @Security     BearerAuth
// @Param        id   path  int  true  "Transaction id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteTransaction(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// add binds req, then records the transaction built by input.
func (h *TransactionHandler) add(c echo.Context, req any, input func(sessionID int64) domain.TransactionInput) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	sessionID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	res, err := h.service.AddTransaction(c.Request().Context(), actor, ports.AddTransactionInput{
		TransactionInput: input(sessionID),
		IdempotencyKey:   c.Request().Header.Get(idempotencyHeader),
	})
	if err != nil {
		return err
	}
	return respondTransaction(c, res)
}

func respondTransaction(c echo.Context, res *ports.TransactionResult) error {
	if res.AlreadyExisted {
		return c.JSON(http.StatusOK, transactionResponse{Transaction: res.Transaction, AlreadyExisted: true})
	}
	metrics.RecordsCreatedTotal.WithLabelValues(string(res.Transaction.Type)).Inc()
	return c.JSON(http.StatusCreated, transactionResponse{Transaction: res.Transaction})
}

// listFilter reads the session id path parameter and the type, search and
// limit query parameters.
func listFilter(c echo.Context) (domain.ListFilter, error) {
	sessionID, err := pathID(c, "id")
	if err != nil {
		return domain.ListFilter{}, err
	}
	f := domain.ListFilter{SessionID: sessionID}
	err = echo.QueryParamsBinder(c).
		String("type", &f.Type).
		String("search", &f.Search).
		Int("limit", &f.Limit).
		BindError()
	if err != nil || f.Limit < 0 {
		return domain.ListFilter{}, echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	return f, nil
}
