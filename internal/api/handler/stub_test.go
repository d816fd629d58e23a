package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ledgerbook/bookkeeper/internal/core/analytics"
	"github.com/ledgerbook/bookkeeper/internal/core/domain"
	"github.com/ledgerbook/bookkeeper/internal/core/ports"
	"github.com/ledgerbook/bookkeeper/internal/core/report"
)

// ---------------------------------------------------------------------------
// Stub services: set only the funcs a test needs; anything else panics.
// ---------------------------------------------------------------------------

type stubLedger struct {
	ports.LedgerService

	createSession    func(ctx context.Context, actor ports.Actor, in domain.SessionInput) (*domain.Session, error)
	listSessions     func(ctx context.Context, actor ports.Actor) ([]domain.Session, error)
	getSession       func(ctx context.Context, actor ports.Actor, id int64) (*domain.SessionView, error)
	updateSession    func(ctx context.Context, actor ports.Actor, id int64, in ports.UpdateSessionInput) (*domain.SessionView, error)
	closeSession     func(ctx context.Context, actor ports.Actor, id int64) (*domain.SessionView, error)
	addTransaction   func(ctx context.Context, actor ports.Actor, in ports.AddTransactionInput) (*ports.TransactionResult, error)
	addQuickExpense  func(ctx context.Context, actor ports.Actor, in ports.QuickExpenseInput) (*ports.TransactionResult, error)
	listTransactions func(ctx context.Context, actor ports.Actor, f domain.ListFilter) ([]domain.Transaction, error)
	updateTx         func(ctx context.Context, actor ports.Actor, id int64, field string, value any) (*domain.Transaction, error)
	addDebt          func(ctx context.Context, actor ports.Actor, in ports.AddDebtInput) (*ports.DebtResult, error)
	repayDebt        func(ctx context.Context, actor ports.Actor, id int64) (*domain.Debt, error)
}

func (s *stubLedger) CreateSession(ctx context.Context, a ports.Actor, in domain.SessionInput) (*domain.Session, error) {
	return s.createSession(ctx, a, in)
}
func (s *stubLedger) ListSessions(ctx context.Context, a ports.Actor) ([]domain.Session, error) {
	return s.listSessions(ctx, a)
}
func (s *stubLedger) GetSession(ctx context.Context, a ports.Actor, id int64) (*domain.SessionView, error) {
	return s.getSession(ctx, a, id)
}
func (s *stubLedger) UpdateSession(ctx context.Context, a ports.Actor, id int64, in ports.UpdateSessionInput) (*domain.SessionView, error) {
	return s.updateSession(ctx, a, id, in)
}
func (s *stubLedger) CloseSession(ctx context.Context, a ports.Actor, id int64) (*domain.SessionView, error) {
	return s.closeSession(ctx, a, id)
}
func (s *stubLedger) AddTransaction(ctx context.Context, a ports.Actor, in ports.AddTransactionInput) (*ports.TransactionResult, error) {
	return s.addTransaction(ctx, a, in)
}
func (s *stubLedger) AddQuickExpense(ctx context.Context, a ports.Actor, in ports.QuickExpenseInput) (*ports.TransactionResult, error) {
	return s.addQuickExpense(ctx, a, in)
}
func (s *stubLedger) ListTransactions(ctx context.Context, a ports.Actor, f domain.ListFilter) ([]domain.Transaction, error) {
	return s.listTransactions(ctx, a, f)
}
func (s *stubLedger) UpdateTransaction(ctx context.Context, a ports.Actor, id int64, field string, value any) (*domain.Transaction, error) {
	return s.updateTx(ctx, a, id, field, value)
}
func (s *stubLedger) AddDebt(ctx context.Context, a ports.Actor, in ports.AddDebtInput) (*ports.DebtResult, error) {
	return s.addDebt(ctx, a, in)
}
func (s *stubLedger) RepayDebt(ctx context.Context, a ports.Actor, id int64) (*domain.Debt, error) {
	return s.repayDebt(ctx, a, id)
}

type stubAnalytics struct {
	ports.AnalyticsService

	daily    func(ctx context.Context, actor ports.Actor, id int64, days int) ([]analytics.DailyStat, error)
	forecast func(ctx context.Context, actor ports.Actor, id int64, days int) (*analytics.Forecast, error)
	roi      func(ctx context.Context, actor ports.Actor, id int64) (*analytics.ROI, error)
	report   func(ctx context.Context, actor ports.Actor, id int64) (string, error)
	export   func(ctx context.Context, actor ports.Actor, id int64, kind report.ExportKind) ([]byte, error)
}

func (s *stubAnalytics) DailyStatistics(ctx context.Context, a ports.Actor, id int64, days int) ([]analytics.DailyStat, error) {
	return s.daily(ctx, a, id, days)
}
func (s *stubAnalytics) Forecast(ctx context.Context, a ports.Actor, id int64, days int) (*analytics.Forecast, error) {
	return s.forecast(ctx, a, id, days)
}
func (s *stubAnalytics) ROI(ctx context.Context, a ports.Actor, id int64) (*analytics.ROI, error) {
	return s.roi(ctx, a, id)
}
func (s *stubAnalytics) Report(ctx context.Context, a ports.Actor, id int64) (string, error) {
	return s.report(ctx, a, id)
}
func (s *stubAnalytics) Export(ctx context.Context, a ports.Actor, id int64, kind report.ExportKind) ([]byte, error) {
	return s.export(ctx, a, id, kind)
}

type stubAccessService struct {
	ports.AccessService

	grantAccess func(ctx context.Context, userID int64, days int) (*domain.User, error)
	removeAdmin func(ctx context.Context, userID int64) (*domain.User, error)
	grantAll    func(ctx context.Context, days int) (int, error)
}

func (s *stubAccessService) GrantAccess(ctx context.Context, userID int64, days int) (*domain.User, error) {
	return s.grantAccess(ctx, userID, days)
}
func (s *stubAccessService) RemoveAdmin(ctx context.Context, userID int64) (*domain.User, error) {
	return s.removeAdmin(ctx, userID)
}
func (s *stubAccessService) GrantAll(ctx context.Context, days int) (int, error) {
	return s.grantAll(ctx, days)
}

// ---------------------------------------------------------------------------
// Request helpers
// ---------------------------------------------------------------------------

var testActor = ports.Actor{UserID: 10, Role: domain.RoleUser}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// newRequest builds a context as the Auth and Access middleware leave it.
// params are name/value pairs for the path parameters.
func newRequest(e *echo.Echo, method, target, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", testActor.UserID)
	c.Set("role", testActor.Role)

	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

// serve runs h and renders a returned error like the echo error handler does.
func serve(t *testing.T, e *echo.Echo, c echo.Context, h echo.HandlerFunc) {
	t.Helper()
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
}

// httpCode extracts the status of an *echo.HTTPError, or 0.
func httpCode(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return 0
}
