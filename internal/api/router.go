package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/ledgerbook/bookkeeper/internal/api/handler"
	"github.com/ledgerbook/bookkeeper/internal/api/middleware"
	"github.com/ledgerbook/bookkeeper/internal/core/domain"
	"github.com/ledgerbook/bookkeeper/internal/core/ports"
)

// Deps are the services and settings the router wires into handlers.
type Deps struct {
	Ledger    ports.LedgerService
	Analytics ports.AnalyticsService
	Access    ports.AccessService
	// Checks are pinged by the readiness probe, keyed by dependency name.
	Checks    map[string]handler.Checker
	JWTSecret string
	Logger    zerolog.Logger
}

// NewRouter builds the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.Metrics())
	e.Use(middleware.RenderErrors())
	e.Use(requestLogger(d.Logger))

	// --- Probes, metrics and docs (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(d.Checks).Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	sessions := handler.NewSessionHandler(d.Ledger)
	transactions := handler.NewTransactionHandler(d.Ledger)
	debts := handler.NewDebtHandler(d.Ledger)
	reports := handler.NewAnalyticsHandler(d.Analytics)
	access := handler.NewAccessHandler(d.Access)

	v1 := e.Group("/v1",
		middleware.Auth(d.JWTSecret),
		middleware.Access(d.Access, "/v1/me"),
	)
	v1.GET("/me", access.Me)

	v1.POST("/sessions", sessions.Create)
	v1.GET("/sessions", sessions.List)
	v1.GET("/sessions/:id", sessions.Get)
	v1.PATCH("/sessions/:id", sessions.Update)
	v1.POST("/sessions/:id/close", sessions.Close)
	v1.POST("/sessions/:id/reset", sessions.Reset)

	v1.POST("/sessions/:id/sales", transactions.AddSale)
	v1.POST("/sessions/:id/expenses", transactions.AddExpense)
	v1.POST("/sessions/:id/quick-expenses", transactions.AddQuickExpense)
	v1.GET("/sessions/:id/transactions", transactions.List)
	v1.PATCH("/transactions/:id", transactions.Update)
	v1.DELETE("/transactions/:id", transactions.Delete)
	v1.GET("/quick-expense-categories", transactions.QuickExpenseCategories)

	v1.POST("/sessions/:id/debts", debts.Add)
	v1.GET("/sessions/:id/debts", debts.List)
	v1.PATCH("/debts/:id", debts.Update)
	v1.DELETE("/debts/:id", debts.Delete)
	v1.POST("/debts/:id/repay", debts.Repay)

	v1.GET("/sessions/:id/analytics/summary", reports.Summary)
	v1.GET("/sessions/:id/analytics/daily", reports.Daily)
	v1.GET("/sessions/:id/analytics/velocity", reports.Velocity)
	v1.GET("/sessions/:id/analytics/profitability", reports.Profitability)
	v1.GET("/sessions/:id/analytics/roi", reports.ROI)
	v1.GET("/sessions/:id/analytics/expenses", reports.Expenses)
	v1.GET("/sessions/:id/analytics/forecast", reports.Forecast)
	v1.GET("/analytics/break-even", reports.BreakEven)
	v1.GET("/sessions/:id/report", reports.Report)
	v1.GET("/sessions/:id/export/:kind", reports.Export)

	// --- Admin ---
	admin := v1.Group("/admin", middleware.RBAC(domain.RoleAdmin))
	admin.GET("/users", access.ListUsers)
	admin.POST("/users/:id/access", access.GrantAccess)
	admin.DELETE("/users/:id/access", access.RevokeAccess)
	admin.POST("/users/:id/admin", access.AddAdmin)
	admin.DELETE("/users/:id/admin", access.RemoveAdmin)
	admin.POST("/access/grant-all", access.GrantAll)
	admin.POST("/access/revoke-all", access.RevokeAll)

	return e
}

// requestLogger logs one structured line per request. Errors are rendered
// by the error handler before the line is written.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			userID, _ := c.Get("user_id").(int64)
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Int64("user_id", userID).
				Msg("request")
			return nil
		},
	})
}
