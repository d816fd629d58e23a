package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Auth validates the HS256 bearer token and injects the numeric subject
// into the context as "user_id". Tokens without an expiry are rejected.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	keyFunc := func(*jwt.Token) (any, error) {
		return []byte(jwtSecret), nil
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			scheme, raw, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			var claims jwt.RegisteredClaims
			tkn, err := parser.ParseWithClaims(strings.TrimSpace(raw), &claims, keyFunc)
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			userID, err := strconv.ParseInt(claims.Subject, 10, 64)
			if err != nil || userID <= 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
			}

			c.Set("user_id", userID)
			return next(c)
		}
	}
}
