package middleware

import (
	"sync"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"

	"github.com/ledgerbook/bookkeeper/internal/api/metrics"
)

// Metrics counts and times requests per route pattern
// (bookkeeper_requests_total, bookkeeper_request_duration_seconds).
// The collectors register with the default registry on first use, so every
// router built in the process shares them. Scrapes of /metrics are skipped.
func Metrics() echo.MiddlewareFunc {
	return httpMetrics()
}

var httpMetrics = sync.OnceValue(func() echo.MiddlewareFunc {
	return echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem: metrics.Namespace,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	})
})

// RenderErrors hands a handler error to the echo error handler and swallows
// it, so middleware further out see the final status code instead of
// guessing one from the error.
func RenderErrors() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				c.Error(err)
			}
			return nil
		}
	}
}
