package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ledgerbook/bookkeeper/internal/core/ports"
)

// Access registers the authenticated user on first contact, refreshes their
// last activity and injects "user" and "role". Routes listed in exempt skip
// the access-window check but are still touched. Must run after Auth.
func Access(service ports.AccessService, exempt ...string) echo.MiddlewareFunc {
	skip := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		skip[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get("user_id").(int64)
			if userID <= 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			ctx := c.Request().Context()
			user, err := service.Touch(ctx, userID)
			if err != nil {
				return err
			}
			c.Set("user", user)
			c.Set("role", user.Role)

			if _, ok := skip[c.Path()]; ok {
				return next(c)
			}
			if err := service.CheckAccess(ctx, user); err != nil {
				return err
			}
			return next(c)
		}
	}
}
