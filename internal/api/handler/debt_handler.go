package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ledgerbook/bookkeeper/internal/api/metrics"
	"github.com/ledgerbook/bookkeeper/internal/core/domain"
	"github.com/ledgerbook/bookkeeper/internal/core/ports"
)

// DebtHandler serves the debts tracked inside a session.
type DebtHandler struct {
	service ports.LedgerService
}

func NewDebtHandler(service ports.LedgerService) *DebtHandler {
	return &DebtHandler{service: service}
}

// Add handles POST /v1/sessions/:id/debts.
//
// @Summary      Record a debt
// @Tags         debts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id               path      int          true   "Session id"
// @Param        Idempotency-Key  header    string       false  "Replays the first result for a repeated key"
// @Param        body             body      debtRequest  true   "Debt"
// @Success      201              {object}  debtResponse
// @Success      200              {object}  debtResponse  "Idempotent replay"
// @Failure      409              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Router       /v1/sessions/{id}/debts [post]
func (h *DebtHandler) Add(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	sessionID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req debtRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.AddDebt(c.Request().Context(), actor, ports.AddDebtInput{
		DebtInput: domain.DebtInput{
			SessionID:   sessionID,
			Type:        domain.DebtType(req.Type),
			PersonName:  req.PersonName,
			Amount:      req.Amount,
			Description: req.Description,
		},
		IdempotencyKey: c.Request().Header.Get(idempotencyHeader),
	})
	if err != nil {
		return err
	}
	if res.AlreadyExisted {
		return c.JSON(http.StatusOK, debtResponse{Debt: res.Debt, AlreadyExisted: true})
	}
	metrics.RecordsCreatedTotal.WithLabelValues("debt").Inc()
	return c.JSON(http.StatusCreated, debtResponse{Debt: res.Debt})
}

// List handles GET /v1/sessions/:id/debts.
//
// @Summary      List a session's debts, newest first
// @Tags         debts
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      int     true   "Session id"
// @Param        type    query     string  false  "owed_to_me or i_owe"
// @Param        search  query     string  false  "Matches person name or description"
// @Param        limit   query     int     false  "Maximum number of results"
// @Success      200     {array}   domain.Debt
// @Router       /v1/sessions/{id}/debts [get]
func (h *DebtHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	f, err := listFilter(c)
	if err != nil {
		return err
	}
	debts, err := h.service.ListDebts(c.Request().Context(), actor, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, debts)
}

// Update handles PATCH /v1/debts/:id.
//
// @Summary      Change one field of a debt
// @Tags         debts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                 true  "Debt id"
// @Param        body  body      updateFieldRequest  true  "type, person_name, amount, description or is_repaid"
// @Success      200   {object}  domain.Debt
// @Failure      422   {object}  errorResponse
// @Router       /v1/debts/{id} [patch]
func (h *DebtHandler) Update(c echo.Context) error {
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

	d, err := h.service.UpdateDebt(c.Request().Context(), actor, id, req.Field, req.Value)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// Repay handles POST /v1/debts/:id/repay.
//
// @Summary      Mark a debt as repaid
// @Tags         debts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Debt id"
// @Success      200  {object}  domain.Debt
// @Failure      404  {object}  errorResponse
// @Router       /v1/debts/{id}/repay [post]
func (h *DebtHandler) Repay(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	d, err := h.service.RepayDebt(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// Delete handles DELETE /v1/debts/:id.
//
// @Summary      Delete a debt
// @Tags         debts
// @Security     BearerAuth
// @Param        id   path  int  true  "Debt id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/debts/{id} [delete]
func (h *DebtHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteDebt(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
