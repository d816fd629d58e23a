package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ledgerbook/bookkeeper/internal/api/metrics"
	"github.com/ledgerbook/bookkeeper/internal/core/analytics"
	"github.com/ledgerbook/bookkeeper/internal/core/ports"
	"github.com/ledgerbook/bookkeeper/internal/core/report"
)

const (
	defaultStatDays     = 7
	defaultForecastDays = 30
)

// AnalyticsHandler serves per-session analytics, the text report and CSV exports.
// Sessions without enough data still answer 200 with zero values and a message.
type AnalyticsHandler struct {
	service ports.AnalyticsService
}

func NewAnalyticsHandler(service ports.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// Summary handles GET /v1/sessions/:id/analytics/summary.
//
// @Summary      Full analytics summary of a session
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Session id"
// @Success      200  {object}  analytics.Summary
// @Failure      404  {object}  errorResponse
// @Router       /v1/sessions/{id}/analytics/summary [get]
func (h *AnalyticsHandler) Summary(c echo.Context) error {
	return sessionQuery(c, h.service.Summary)
}

// Daily handles GET /v1/sessions/:id/analytics/daily.
//
// @Summary      Per-day totals for the last N days, oldest first
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int  true   "Session id"
// @Param        days  query     int  false  "Days to include (1-90, default 7)"
// @Success      200   {array}   analytics.DailyStat
// @Failure      422   {object}  errorResponse
// @Router       /v1/sessions/{id}/analytics/daily [get]
func (h *AnalyticsHandler) Daily(c echo.Context) error {
	days, err := queryDays(c, defaultStatDays)
	if err != nil {
		return err
	}
	return sessionQuery(c, func(ctx context.Context, actor ports.Actor, id int64) ([]analytics.DailyStat, error) {
		return h.service.DailyStatistics(ctx, actor, id, days)
	})
}

// Velocity handles GET /v1/sessions/:id/analytics/velocity.
//
// @Summary      Sales velocity
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Session id"
// @Success      200  {object}  analytics.Velocity
// @Router       /v1/sessions/{id}/analytics/velocity [get]
func (h *AnalyticsHandler) Velocity(c echo.Context) error {
	return sessionQuery(c, h.service.Velocity)
}

// Profitability handles GET /v1/sessions/:id/analytics/profitability.
//
// @Summary      Per-sale profitability
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Session id"
// @Success      200  {object}  analytics.Profitability
// @Router       /v1/sessions/{id}/analytics/profitability [get]
func (h *AnalyticsHandler) Profitability(c echo.Context) error {
	return sessionQuery(c, h.service.Profitability)
}

// ROI handles GET /v1/sessions/:id/analytics/roi.
//
// @Summary      Return on investment and advertising spend
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Session id"
// @Success      200  {object}  analytics.ROI
// @Router       /v1/sessions/{id}/analytics/roi [get]
func (h *AnalyticsHandler) ROI(c echo.Context) error {
	return sessionQuery(c, h.service.ROI)
}

// Expenses handles GET /v1/sessions/:id/analytics/expenses.
//
// @Summary      Expenses by category, largest first
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Session id"
// @Success      200  {array}   analytics.CategoryTotal
// @Router       /v1/sessions/{id}/analytics/expenses [get]
func (h *AnalyticsHandler) Expenses(c echo.Context) error {
	return sessionQuery(c, h.service.ExpenseBreakdown)
}

// Forecast handles GET /v1/sessions/:id/analytics/forecast.
//
// @Summary      Revenue and profit forecast
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int  true   "Session id"
// @Param        days  query     int  false  "Horizon in days (1-365, default 30)"
// @Success      200   {object}  analytics.Forecast
// @Failure      422   {object}  errorResponse
// @Router       /v1/sessions/{id}/analytics/forecast [get]
func (h *AnalyticsHandler) Forecast(c echo.Context) error {
	days, err := queryDays(c, defaultForecastDays)
	if err != nil {
		return err
	}
	return sessionQuery(c, func(ctx context.Context, actor ports.Actor, id int64) (*analytics.Forecast, error) {
		return h.service.Forecast(ctx, actor, id, days)
	})
}

// BreakEven handles GET /v1/analytics/break-even.
//
// @Summary      Units needed to cover fixed costs
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        fixed_costs      query     number  true  "Total fixed costs"
// @Param        profit_per_unit  query     number  true  "Profit per unit sold"
// @Success      200              {object}  analytics.BreakEvenPoint
// @Failure      400              {object}  errorResponse
// @Router       /v1/analytics/break-even [get]
func (h *AnalyticsHandler) BreakEven(c echo.Context) error {
	var fixed, perUnit float64
	err := echo.QueryParamsBinder(c).
		MustFloat64("fixed_costs", &fixed).
		MustFloat64("profit_per_unit", &perUnit).
		BindError()
	if err != nil || fixed < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "fixed_costs and profit_per_unit are required numbers")
	}
	return c.JSON(http.StatusOK, analytics.BreakEven(fixed, perUnit))
}

// Report handles GET /v1/sessions/:id/report.
//
// @Summary      Plain-text analytics report
// @Tags         reports
// @Produce      plain
// @Security     BearerAuth
// @Param        id   path      int  true  "Session id"
// @Success      200  {string}  string
// @Router       /v1/sessions/{id}/report [get]
func (h *AnalyticsHandler) Report(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	text, err := h.service.Report(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	metrics.ReportsGeneratedTotal.WithLabelValues("text").Inc()
	return c.String(http.StatusOK, text)
}

// Export handles GET /v1/sessions/:id/export/:kind.
//
// @Summary      CSV export of sales, expenses or debts
// @Tags         reports
// @Produce      text/csv
// @Security     BearerAuth
// @Param        id    path      int     true  "Session id"
// @Param        kind  path      string  true  "sales, expenses or debts"
// @Success      200   {file}    file
// @Failure      422   {object}  errorResponse
// @Router       /v1/sessions/{id}/export/{kind} [get]
func (h *AnalyticsHandler) Export(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	kind := report.ExportKind(c.Param("kind"))
	data, err := h.service.Export(c.Request().Context(), actor, id, kind)
	if err != nil {
		return err
	}
	metrics.ReportsGeneratedTotal.WithLabelValues(string(kind)).Inc()
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("session_%d_%s.csv", id, kind)))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

// sessionQuery runs a read-only use case on the session in the path and
// renders the result as JSON.
func sessionQuery[T any](c echo.Context, query func(ctx context.Context, actor ports.Actor, sessionID int64) (T, error)) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := query(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// queryDays reads the optional days query parameter; range checks belong
// to the service.
func queryDays(c echo.Context, def int) (int, error) {
	days := def
	if err := echo.QueryParamsBinder(c).Int("days", &days).BindError(); err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "days must be an integer")
	}
	return days, nil
}
