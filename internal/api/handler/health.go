package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const readinessTimeout = 3 * time.Second

// HealthHandler serves GET /health: the process is up.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Liveness handles GET /health.
//
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Checker pings one dependency.
type Checker interface {
	Ping(ctx context.Context) error
}

// CheckFunc adapts a function to Checker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Ping(ctx context.Context) error { return f(ctx) }

// ReadinessHandler serves GET /health/ready: every dependency answers.
type ReadinessHandler struct {
	checks map[string]Checker
}

// NewReadinessHandler takes the dependencies to ping, keyed by the name
// reported in the response.
func NewReadinessHandler(checks map[string]Checker) *ReadinessHandler {
	return &ReadinessHandler{checks: checks}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Readiness handles GET /health/ready.
//
// @Summary      Readiness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  readinessResponse
// @Failure      503  {object}  readinessResponse
// @Router       /health/ready [get]
func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	deps := make(map[string]dependencyStatus, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			deps[name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
			continue
		}
		deps[name] = dependencyStatus{Status: "ok"}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}
	return c.JSON(httpStatus, readinessResponse{Status: status, Dependencies: deps})
}
