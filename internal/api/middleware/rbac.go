package middleware

import (
	"fmt"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

// RBAC admits the user injected by Access only when their role is one of
// roles. Refusals are domain.ErrForbidden, rendered by the error handler.
func RBAC(roles ...string) echo.MiddlewareFunc {
	denied := fmt.Errorf("%w: requires %s role", domain.ErrForbidden, strings.Join(roles, " or "))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, _ := c.Get("user").(*domain.User)
			if user == nil || !slices.Contains(roles, user.Role) {
				return denied
			}
			return next(c)
		}
	}
}
