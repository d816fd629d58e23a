package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ledgerbook/bookkeeper/internal/api/metrics"
	"github.com/ledgerbook/bookkeeper/internal/core/domain"
	"github.com/ledgerbook/bookkeeper/internal/core/ports"
)

// SessionHandler serves session lifecycle endpoints.
type SessionHandler struct {
	service ports.LedgerService
}

func NewSessionHandler(service ports.LedgerService) *SessionHandler {
	return &SessionHandler{service: service}
}

// Create handles POST /v1/sessions.
//
// @Summary      Open a new session
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createSessionRequest  true  "Session settings"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/sessions [post]
func (h *SessionHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req createSessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	s, err := h.service.CreateSession(c.Request().Context(), actor, domain.SessionInput{
		OwnerID:  actor.UserID,
		Name:     strings.TrimSpace(req.Name),
		Budget:   req.Budget,
		Currency: req.Currency,
	})
	if err != nil {
		return err
	}
	metrics.RecordsCreatedTotal.WithLabelValues("session").Inc()
	return c.JSON(http.StatusCreated, toSessionResponse(domain.NewSessionView(*s, nil, nil)))
}

// List handles GET /v1/sessions.
//
// @Summary      List the caller's sessions, newest first
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Session
// @Router       /v1/sessions [get]
func (h *SessionHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	sessions, err := h.service.ListSessions(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessions)
}

// Get handles GET /v1/sessions/:id.
//
// @Summary      Get a session with its totals
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Session id"
// @Success      200  {object}  sessionResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/sessions/{id} [get]
func (h *SessionHandler) Get(c echo.Context) error {
	return h.viewOp(c, h.service.GetSession)
}

// Update handles PATCH /v1/sessions/:id.
//
// @Summary      Rename a session or change its budget
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                   true  "Session id"
// @Param        body  body      updateSessionRequest  true  "Fields to change"
// @Success      200   {object}  sessionResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/sessions/{id} [patch]
func (h *SessionHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateSessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := h.service.UpdateSession(c.Request().Context(), actor, id, ports.UpdateSessionInput{
		Name:   req.Name,
		Budget: req.Budget,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(*view))
}

// Close handles POST /v1/sessions/:id/close.
//
// @Summary      Close a session; closed sessions accept no new records
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Session id"
// @Success      200  {object}  sessionResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/sessions/{id}/close [post]
func (h *SessionHandler) Close(c echo.Context) error {
	return h.viewOp(c, h.service.CloseSession)
}

// Reset handles POST /v1/sessions/:id/reset.
//
// @Summary      Delete every transaction and debt of an active session
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Session id"
// @Success      200  {object}  sessionResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/sessions/{id}/reset [post]
func (h *SessionHandler) Reset(c echo.Context) error {
	return h.viewOp(c, h.service.ResetSession)
}

type sessionViewOp func(ctx context.Context, actor ports.Actor, sessionID int64) (*domain.SessionView, error)

func (h *SessionHandler) viewOp(c echo.Context, op sessionViewOp) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	view, err := op(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(*view))
}

func toSessionResponse(v domain.SessionView) sessionResponse {
	self := fmt.Sprintf("/v1/sessions/%d", v.ID)
	return sessionResponse{
		SessionView: v,
		Links: sessionLinks{
			Self:         self,
			Transactions: self + "/transactions",
			Debts:        self + "/debts",
			Report:       self + "/report",
		},
	}
}
