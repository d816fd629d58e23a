package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ledgerbook/bookkeeper/internal/core/analytics"
	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

var testNow = time.Date(2026, 3, 18, 15, 0, 0, 0, time.UTC)

func testSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Session: domain.Session{ID: 1, Name: "Shop", Currency: "USD", Budget: 1000, IsActive: true, CreatedAt: testNow.AddDate(0, 0, -10)},
		Transactions: []domain.Transaction{
			{ID: 1, SessionID: 1, Type: domain.TransactionSale, Amount: 100, ExpenseAmount: 20, Description: "Widget", CreatedAt: testNow.Add(-2 * time.Hour)},
			{ID: 2, SessionID: 1, Type: domain.TransactionExpense, Amount: 50, Description: "Advertising campaign", CreatedAt: testNow.Add(-time.Hour)},
			{ID: 3, SessionID: 1, Type: domain.TransactionSale, Amount: 40, Description: "Gadget, large", CreatedAt: testNow.Add(-time.Hour)},
		},
		Debts: []domain.Debt{
			{ID: 1, SessionID: 1, Type: domain.DebtIOwe, PersonName: "Bob", Amount: 10, CreatedAt: testNow},
			{ID: 2, SessionID: 1, Type: domain.DebtOwedToMe, PersonName: "Alice", Amount: 30, IsRepaid: true, CreatedAt: testNow.Add(-time.Hour)},
		},
	}
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	if !bytes.HasPrefix(data, utf8BOM) {
		t.Fatalf("export must start with a UTF-8 BOM")
	}
	rows, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	return rows
}

func TestCSV_Sales(t *testing.T) {
	data, err := CSV(ExportSales, testSnapshot(), time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := readCSV(t, data)
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 sales, got %d rows", len(rows))
	}
	// Newest first.
	if rows[1][0] != "3" || rows[2][0] != "1" {
		t.Errorf("unexpected order: %v", rows)
	}
	if rows[1][6] != "Gadget, large" {
		t.Errorf("description with comma must survive quoting, got %q", rows[1][6])
	}
	want := []string{"1", "2026-03-18 13:00:00", "100.00", "20.00", "80.00", "80.00", "Widget"}
	for i := range want {
		if rows[2][i] != want[i] {
			t.Errorf("column %d: got %q, want %q", i, rows[2][i], want[i])
		}
	}
}

func TestCSV_Expenses(t *testing.T) {
	data, err := CSV(ExportExpenses, testSnapshot(), time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := readCSV(t, data)
	if len(rows) != 2 || rows[1][3] != "Advertising campaign" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestCSV_Debts(t *testing.T) {
	data, err := CSV(ExportDebts, testSnapshot(), time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := readCSV(t, data)
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 debts, got %d", len(rows))
	}
	if rows[1][2] != string(domain.DebtOwedToMe) || rows[1][3] != "Owed to me" || rows[1][7] != "true" {
		t.Errorf("receivables are listed first, got %v", rows[1])
	}
	if rows[2][3] != "I owe" {
		t.Errorf("unexpected label %q", rows[2][3])
	}
}

func TestCSV_UnknownKind(t *testing.T) {
	_, err := CSV("charts", testSnapshot(), time.UTC)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCSV_EmptySession(t *testing.T) {
	data, err := CSV(ExportSales, &domain.Snapshot{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows := readCSV(t, data); len(rows) != 1 {
		t.Errorf("expected header only, got %v", rows)
	}
}

func TestText_ContainsSections(t *testing.T) {
	s := analytics.Summarize(testSnapshot(), testNow, analytics.Options{})
	out := Text(s, time.UTC)

	for _, want := range []string{
		"Session: Shop",
		"Revenue: 140.00 USD",
		"Expenses: 70.00 USD",
		"Net profit: 70.00 USD",
		"Ad spend: 50.00 USD",
		analytics.CategoryAdsContextual + ": 50.00 USD (100.0%)",
		"LAST 7 DAYS",
		"30-DAY FORECAST",
		"RECOMMENDATIONS",
		"Generated: 18.03.2026 15:00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}
}

func TestText_NoExpenses(t *testing.T) {
	snap := &domain.Snapshot{Session: domain.Session{Name: "Empty", Currency: "EUR"}}
	out := Text(analytics.Summarize(snap, testNow, analytics.Options{}), nil)
	if !strings.Contains(out, "No expense data") {
		t.Errorf("expected empty-expenses line\n%s", out)
	}
	if !strings.Contains(out, "Status: closed") {
		t.Errorf("inactive session must show as closed\n%s", out)
	}
}
