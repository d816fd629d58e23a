package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/bookkeeper/internal/api/handler"
	"github.com/ledgerbook/bookkeeper/internal/core/analytics"
	"github.com/ledgerbook/bookkeeper/internal/core/service"
	"github.com/ledgerbook/bookkeeper/internal/infrastructure/db/document"
	"github.com/ledgerbook/bookkeeper/internal/infrastructure/db/memory"
)

const (
	testSecret  = "test-secret"
	testAdminID = 1
	testUserID  = 10
)

type testServer struct {
	t      *testing.T
	srv    *httptest.Server
	tokens map[int64]string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repo := document.New(store, zerolog.Nop())
	require.NoError(t, repo.Init(ctx, testAdminID))

	e := NewRouter(Deps{
		Ledger:    service.NewLedgerService(repo, memory.NewIdempotencyStore(time.Hour), zerolog.Nop()),
		Analytics: service.NewAnalyticsService(repo, analytics.Options{}, time.UTC, zerolog.Nop()),
		Access:    service.NewAccessService(repo, testAdminID, 30, zerolog.Nop()),
		Checks:    map[string]handler.Checker{"store": store},
		JWTSecret: testSecret,
		Logger:    zerolog.Nop(),
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	issuer := service.NewTokenIssuer(testSecret, time.Hour)
	ts := &testServer{t: t, srv: srv, tokens: map[int64]string{}}
	for _, id := range []int64{testAdminID, testUserID} {
		tok, _, err := issuer.Issue(id)
		require.NoError(t, err)
		ts.tokens[id] = tok
	}
	return ts
}

// do sends a request as user (0 for anonymous) and decodes a JSON body into out when given.
func (ts *testServer) do(user int64, method, path, body string, out any, headers ...string) *http.Response {
	ts.t.Helper()
	req, err := http.NewRequest(method, ts.srv.URL+path, strings.NewReader(body))
	require.NoError(ts.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != 0 {
		req.Header.Set("Authorization", "Bearer "+ts.tokens[user])
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := ts.srv.Client().Do(req)
	require.NoError(ts.t, err)
	ts.t.Cleanup(func() { _ = resp.Body.Close() })
	if out != nil {
		require.NoError(ts.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestRouter_Probes(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusOK, ts.do(0, http.MethodGet, "/health", "", nil).StatusCode)

	var ready map[string]any
	resp := ts.do(0, http.MethodGet, "/health/ready", "", &ready)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", ready["status"])

	resp = ts.do(0, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `bookkeeper_requests_total{code="200",host=`)
	assert.Contains(t, string(body), `url="/health"`)
}

func TestRouter_RequiresToken(t *testing.T) {
	ts := newTestServer(t)

	var body map[string]string
	resp := ts.do(0, http.MethodGet, "/v1/sessions", "", &body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "missing authorization header", body["error"])
}

func TestRouter_AccessWindow(t *testing.T) {
	ts := newTestServer(t)

	// A new user is registered but has no access yet; /v1/me still answers.
	var me struct {
		User      map[string]any `json:"user"`
		HasAccess bool           `json:"has_access"`
	}
	resp := ts.do(testUserID, http.MethodGet, "/v1/me", "", &me)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, me.HasAccess)

	resp = ts.do(testUserID, http.MethodGet, "/v1/sessions", "", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Regular users cannot reach admin routes.
	resp = ts.do(testUserID, http.MethodPost, "/v1/admin/users/10/access", `{"days":7}`, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.do(testAdminID, http.MethodPost, "/v1/admin/users/10/access", `{"days":7}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(testUserID, http.MethodGet, "/v1/sessions", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Access to the ledger does not open the admin routes.
	var refusal map[string]string
	resp = ts.do(testUserID, http.MethodGet, "/v1/admin/users", "", &refusal)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "access forbidden: requires admin role", refusal["error"])

	// The bootstrap admin cannot be demoted.
	resp = ts.do(testAdminID, http.MethodDelete, "/v1/admin/users/1/admin", "", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRouter_LedgerScenario(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusOK,
		ts.do(testAdminID, http.MethodPost, "/v1/admin/users/10/access", `{"days":30}`, nil).StatusCode)

	var session struct {
		ID            int64   `json:"id"`
		TotalSales    float64 `json:"total_sales"`
		TotalExpenses float64 `json:"total_expenses"`
		Balance       float64 `json:"balance"`
		SalesCount    int     `json:"sales_count"`
		AvgCheck      float64 `json:"avg_check"`
		OwedToMe      float64 `json:"owed_to_me"`
		Currency      string  `json:"currency"`
	}
	resp := ts.do(testUserID, http.MethodPost, "/v1/sessions", `{"name":"Shop","budget":1000,"currency":"USD"}`, &session)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotZero(t, session.ID)
	assert.Equal(t, "USD", session.Currency)
	base := "/v1/sessions/" + jsonID(session.ID)

	// Duplicate names are refused, ignoring case.
	resp = ts.do(testUserID, http.MethodPost, "/v1/sessions", `{"name":"shop","budget":5}`, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Sale with cost; replaying the idempotency key does not add a second one.
	resp = ts.do(testUserID, http.MethodPost, base+"/sales",
		`{"amount":100,"expense_amount":20,"description":"Widget"}`, nil, "Idempotency-Key", "sale-1")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = ts.do(testUserID, http.MethodPost, base+"/sales",
		`{"amount":100,"expense_amount":20,"description":"Widget"}`, nil, "Idempotency-Key", "sale-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(testUserID, http.MethodGet, base, "", &session)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 100.0, session.TotalSales)
	assert.Equal(t, 20.0, session.TotalExpenses)
	assert.Equal(t, 80.0, session.Balance)
	assert.Equal(t, 1, session.SalesCount)
	assert.Equal(t, 100.0, session.AvgCheck)

	// Advertising expense feeds the breakdown and ROI.
	resp = ts.do(testUserID, http.MethodPost, base+"/expenses", `{"amount":50,"description":"Advertising campaign"}`, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var breakdown []analytics.CategoryTotal
	ts.do(testUserID, http.MethodGet, base+"/analytics/expenses", "", &breakdown)
	require.Len(t, breakdown, 1)
	assert.Equal(t, analytics.CategoryAdsContextual, breakdown[0].Category)
	assert.Equal(t, 50.0, breakdown[0].Amount)

	var roi analytics.ROI
	ts.do(testUserID, http.MethodGet, base+"/analytics/roi", "", &roi)
	assert.Equal(t, 50.0, roi.AdSpend)

	// Debts: repaid debts drop out of the totals.
	var debt struct {
		ID int64 `json:"id"`
	}
	resp = ts.do(testUserID, http.MethodPost, base+"/debts", `{"type":"owed_to_me","person_name":"Alice","amount":30}`, &debt)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	ts.do(testUserID, http.MethodGet, base, "", &session)
	assert.Equal(t, 30.0, session.OwedToMe)

	resp = ts.do(testUserID, http.MethodPost, "/v1/debts/"+jsonID(debt.ID)+"/repay", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ts.do(testUserID, http.MethodGet, base, "", &session)
	assert.Equal(t, 0.0, session.OwedToMe)

	// Today's daily entry carries the sale.
	var daily []analytics.DailyStat
	ts.do(testUserID, http.MethodGet, base+"/analytics/daily?days=7", "", &daily)
	require.Len(t, daily, 7)
	today := daily[0]
	assert.Equal(t, 1, today.SalesCount)
	assert.Equal(t, 100.0, today.TotalSales)

	resp = ts.do(testAdminID, http.MethodGet, base, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "admins see every session")

	// CSV export and text report.
	resp = ts.do(testUserID, http.MethodGet, base+"/export/sales", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")

	resp = ts.do(testUserID, http.MethodGet, base+"/export/unknown", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = ts.do(testUserID, http.MethodGet, base+"/report", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Closed sessions refuse new records.
	resp = ts.do(testUserID, http.MethodPost, base+"/close", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = ts.do(testUserID, http.MethodPost, base+"/sales", `{"amount":5}`, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Unknown records map to 404.
	resp = ts.do(testUserID, http.MethodDelete, "/v1/transactions/999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
