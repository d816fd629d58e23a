package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain
// errors to status codes and renders {"error": "<message>"}. Unexpected
// errors are logged and answered with a generic 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrAccessExpired):
		return http.StatusForbidden, "access expired, contact an administrator"
	case errors.Is(err, domain.ErrProtectedAdmin):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrSessionClosed),
		errors.Is(err, domain.ErrDuplicateSession):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrVersionConflict):
		log.Warn().Err(err).Str("path", c.Path()).Msg("write conflict after retries")
		return http.StatusConflict, "ledger was modified concurrently, retry the request"
	case errors.Is(err, domain.ErrInvalidField),
		errors.Is(err, domain.ErrInvalidValue),
		errors.Is(err, domain.ErrInvalidInput):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrStoreUnavailable):
		log.Error().Err(err).Str("path", c.Path()).Msg("document store unavailable")
		return http.StatusServiceUnavailable, "storage temporarily unavailable"
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
