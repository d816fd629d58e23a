package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{domain.ErrSessionNotFound, http.StatusNotFound},
		{fmt.Errorf("load: %w", domain.ErrDebtNotFound), http.StatusNotFound},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrAccessExpired, http.StatusForbidden},
		{domain.ErrProtectedAdmin, http.StatusForbidden},
		{domain.ErrSessionClosed, http.StatusConflict},
		{domain.ErrDuplicateSession, http.StatusConflict},
		{domain.ErrVersionConflict, http.StatusConflict},
		{fmt.Errorf("%w: transactions.id", domain.ErrInvalidField), http.StatusUnprocessableEntity},
		{domain.ErrInvalidValue, http.StatusUnprocessableEntity},
		{domain.ErrInvalidInput, http.StatusUnprocessableEntity},
		{fmt.Errorf("jsonbin: %w", domain.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	handle := NewHTTPErrorHandler(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			handle(tt.err, c)

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == "" {
				t.Fatalf("expected error envelope, got %q", rec.Body.String())
			}
		})
	}
}

func TestHTTPErrorHandler_HidesInternalDetails(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("dial tcp 10.0.0.1: secret"), c)

	if rec.Body.String() != "{\"error\":\"internal server error\"}\n" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}
