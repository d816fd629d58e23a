package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ledgerbook/bookkeeper/internal/core/ports"
)

// ctxActor extracts the caller injected by the Auth and Access middleware.
// A missing user id means the middleware did not run; reject with 401.
func ctxActor(c echo.Context) (ports.Actor, error) {
	userID, _ := c.Get("user_id").(int64)
	if userID <= 0 {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	role, _ := c.Get("role").(string)
	return ports.Actor{UserID: userID, Role: role}, nil
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// bindAndValidate binds the body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
