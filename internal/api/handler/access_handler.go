package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
	"github.com/ledgerbook/bookkeeper/internal/core/ports"
)

// AccessHandler serves the caller's profile and the admin user-management endpoints.
type AccessHandler struct {
	service ports.AccessService
	now     func() time.Time
}

func NewAccessHandler(service ports.AccessService) *AccessHandler {
	return &AccessHandler{service: service, now: time.Now}
}

// Me handles GET /v1/me. It answers even when access has expired so that
// clients can show the expiry.
//
// @Summary      The calling user and whether their access is active
// @Tags         access
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Router       /v1/me [get]
func (h *AccessHandler) Me(c echo.Context) error {
	user, ok := c.Get("user").(*domain.User)
	if !ok || user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return c.JSON(http.StatusOK, meResponse{User: *user, HasAccess: user.HasAccess(h.now())})
}

// ListUsers handles GET /v1/admin/users.
//
// @Summary      List every known user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      403  {object}  errorResponse
// @Router       /v1/admin/users [get]
func (h *AccessHandler) ListUsers(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// GrantAccess handles POST /v1/admin/users/:id/access.
//
// @Summary      Grant a user access for N days from now
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                 true  "User id"
// @Param        body  body      grantAccessRequest  true  "Days of access"
// @Success      200   {object}  domain.User
// @Failure      422   {object}  errorResponse
// @Router       /v1/admin/users/{id}/access [post]
func (h *AccessHandler) GrantAccess(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req grantAccessRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.service.GrantAccess(c.Request().Context(), id, req.Days)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// RevokeAccess handles DELETE /v1/admin/users/:id/access.
//
// @Summary      Revoke a user's access
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  domain.User
// @Failure      404  {object}  errorResponse
// @Router       /v1/admin/users/{id}/access [delete]
func (h *AccessHandler) RevokeAccess(c echo.Context) error {
	return h.userOp(c, h.service.RevokeAccess)
}

// AddAdmin handles POST /v1/admin/users/:id/admin.
//
// @Summary      Promote a user to admin
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  domain.User
// @Router       /v1/admin/users/{id}/admin [post]
func (h *AccessHandler) AddAdmin(c echo.Context) error {
	return h.userOp(c, h.service.AddAdmin)
}

// RemoveAdmin handles DELETE /v1/admin/users/:id/admin.
//
// @Summary      Demote an admin; the bootstrap admin cannot be demoted
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  domain.User
// @Failure      403  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/admin/users/{id}/admin [delete]
func (h *AccessHandler) RemoveAdmin(c echo.Context) error {
	return h.userOp(c, h.service.RemoveAdmin)
}

// GrantAll handles POST /v1/admin/access/grant-all.
//
// @Summary      Grant every non-admin user access for N days
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      grantAccessRequest  true  "Days of access"
// @Success      200   {object}  bulkAccessResponse
// @Router       /v1/admin/access/grant-all [post]
func (h *AccessHandler) GrantAll(c echo.Context) error {
	var req grantAccessRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	n, err := h.service.GrantAll(c.Request().Context(), req.Days)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bulkAccessResponse{Updated: n})
}

// RevokeAll handles POST /v1/admin/access/revoke-all.
//
// @Summary      Revoke access of every non-admin user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  bulkAccessResponse
// @Router       /v1/admin/access/revoke-all [post]
func (h *AccessHandler) RevokeAll(c echo.Context) error {
	n, err := h.service.RevokeAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bulkAccessResponse{Updated: n})
}

func (h *AccessHandler) userOp(c echo.Context, op func(ctx context.Context, userID int64) (*domain.User, error)) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	user, err := op(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
