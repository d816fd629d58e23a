package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

var testNow = time.Date(2026, 3, 18, 15, 0, 0, 0, time.UTC)

type snapBuilder struct {
	snap   domain.Snapshot
	nextID int64
}

func newSnap() *snapBuilder {
	return &snapBuilder{
		snap:   domain.Snapshot{Session: domain.Session{ID: 1, Name: "Shop", Currency: "USD", IsActive: true}},
		nextID: 1,
	}
}

func (b *snapBuilder) sale(amount, cost float64, at time.Time) *snapBuilder {
	return b.tx(domain.TransactionSale, amount, cost, "sale", at)
}

func (b *snapBuilder) expense(amount float64, desc string, at time.Time) *snapBuilder {
	return b.tx(domain.TransactionExpense, amount, 0, desc, at)
}

func (b *snapBuilder) tx(typ domain.TransactionType, amount, cost float64, desc string, at time.Time) *snapBuilder {
	b.snap.Transactions = append(b.snap.Transactions, domain.Transaction{
		ID:            b.nextID,
		SessionID:     b.snap.Session.ID,
		Type:          typ,
		Amount:        amount,
		ExpenseAmount: cost,
		Description:   desc,
		CreatedAt:     at,
		UpdatedAt:     at,
	})
	b.nextID++
	return b
}

func (b *snapBuilder) build() *domain.Snapshot {
	s := b.snap
	return &s
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// ---------------------------------------------------------------------------
// DailyStatistics
// ---------------------------------------------------------------------------

func TestDailyStatistics_OneSaleToday(t *testing.T) {
	snap := newSnap().sale(100, 10, testNow.Add(-time.Hour)).build()

	stats := DailyStatistics(snap, testNow, 7)
	if len(stats) != 7 {
		t.Fatalf("expected 7 days, got %d", len(stats))
	}

	today := stats[0]
	if today.Date != "2026-03-18" {
		t.Errorf("expected newest day first, got %s", today.Date)
	}
	if today.SalesCount != 1 || today.TotalSales != 100 || today.TotalExpenses != 10 || today.NetProfit != 90 {
		t.Errorf("unexpected today stats: %+v", today)
	}
	for _, d := range stats[1:] {
		if d.SalesCount != 0 || d.ExpensesCount != 0 || d.TotalSales != 0 || d.TotalExpenses != 0 || d.NetProfit != 0 {
			t.Errorf("day %s must be zero-filled, got %+v", d.Date, d)
		}
	}
}

func TestDailyStatistics_DayBoundaries(t *testing.T) {
	midnight := time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)
	snap := newSnap().
		sale(10, 0, midnight).                       // first instant of today
		sale(20, 0, midnight.Add(-time.Nanosecond)). // last instant of yesterday
		expense(5, "box", midnight.AddDate(0, 0, -2)).
		sale(99, 0, midnight.AddDate(0, 0, -3)). // outside a 3-day window
		build()

	stats := DailyStatistics(snap, testNow, 3)
	if len(stats) != 3 {
		t.Fatalf("expected 3 days, got %d", len(stats))
	}
	if stats[0].TotalSales != 10 {
		t.Errorf("today: expected 10, got %v", stats[0].TotalSales)
	}
	if stats[1].TotalSales != 20 {
		t.Errorf("yesterday: expected 20, got %v", stats[1].TotalSales)
	}
	if stats[2].ExpensesCount != 1 || stats[2].NetProfit != -5 {
		t.Errorf("two days ago: unexpected %+v", stats[2])
	}
}

func TestDailyStatistics_UsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	now := time.Date(2026, 3, 18, 2, 0, 0, 0, loc)
	// 22:00 UTC on the 17th is 03:00 on the 18th in UTC+5.
	snap := newSnap().sale(50, 0, time.Date(2026, 3, 17, 22, 0, 0, 0, time.UTC)).build()

	stats := DailyStatistics(snap, now, 2)
	if stats[0].Date != "2026-03-18" {
		t.Fatalf("expected local date first, got %s", stats[0].Date)
	}
	// 03:00 local is after now (02:00) but still today.
	if stats[0].SalesCount != 1 {
		t.Errorf("sale must be bucketed into the local day, got %+v", stats)
	}
}

func TestDailyStatistics_NonPositiveDays(t *testing.T) {
	if got := DailyStatistics(newSnap().build(), testNow, 0); len(got) != 0 {
		t.Errorf("expected empty result, got %d entries", len(got))
	}
}

// ---------------------------------------------------------------------------
// SalesVelocity
// ---------------------------------------------------------------------------

func TestSalesVelocity_FewerThanTwoSales(t *testing.T) {
	for _, snap := range []*domain.Snapshot{
		newSnap().build(),
		newSnap().sale(10, 0, testNow).build(),
	} {
		v := SalesVelocity(snap)
		if v.SalesPerDay != 0 || v.Score != 0 || v.AvgHoursBetweenSales != 0 {
			t.Errorf("expected zero velocity, got %+v", v)
		}
		if v.Message == "" {
			t.Error("expected an explanatory message")
		}
	}
}

func TestSalesVelocity_EvenlySpaced(t *testing.T) {
	snap := newSnap().
		sale(10, 0, testNow.Add(-12*time.Hour)).
		sale(10, 0, testNow.Add(-6*time.Hour)).
		sale(10, 0, testNow).
		build()

	v := SalesVelocity(snap)
	if !approx(v.AvgHoursBetweenSales, 6) {
		t.Errorf("expected 6h average, got %v", v.AvgHoursBetweenSales)
	}
	if !approx(v.SalesPerDay, 4) {
		t.Errorf("expected 4 sales/day, got %v", v.SalesPerDay)
	}
	if v.Score != 6 {
		t.Errorf("expected score 6, got %d", v.Score)
	}
	if v.SalesAnalyzed != 3 {
		t.Errorf("expected 3 sales analysed, got %d", v.SalesAnalyzed)
	}
}

func TestSalesVelocity_IgnoresZeroGaps(t *testing.T) {
	snap := newSnap().
		sale(10, 0, testNow).
		sale(10, 0, testNow).
		build()

	v := SalesVelocity(snap)
	if v.Score != 0 || v.SalesPerDay != 0 {
		t.Errorf("simultaneous sales give no velocity, got %+v", v)
	}
}

func TestSalesVelocity_WindowOfFifty(t *testing.T) {
	b := newSnap()
	// 10 old sales a day apart, then 50 recent sales an hour apart.
	base := testNow.AddDate(0, 0, -60)
	for i := 0; i < 10; i++ {
		b.sale(1, 0, base.AddDate(0, 0, i))
	}
	for i := 0; i < 50; i++ {
		b.sale(1, 0, testNow.Add(-time.Duration(i)*time.Hour))
	}

	v := SalesVelocity(b.build())
	if v.SalesAnalyzed != velocityWindow {
		t.Fatalf("expected %d sales analysed, got %d", velocityWindow, v.SalesAnalyzed)
	}
	if !approx(v.AvgHoursBetweenSales, 1) {
		t.Errorf("only the recent window must count, got %vh", v.AvgHoursBetweenSales)
	}
	if v.Score != 10 {
		t.Errorf("expected score 10, got %d", v.Score)
	}
}

func TestVelocityScore_Thresholds(t *testing.T) {
	cases := []struct {
		perDay float64
		want   int
	}{
		{12, 10}, {10, 10}, {7, 8}, {5, 8}, {3, 6}, {2, 6}, {1.5, 4}, {1, 4}, {0.7, 2}, {0.5, 2}, {0.1, 1},
	}
	for _, tc := range cases {
		if got := velocityScore(tc.perDay); got != tc.want {
			t.Errorf("velocityScore(%v) = %d, want %d", tc.perDay, got, tc.want)
		}
	}
}

// ---------------------------------------------------------------------------
// ProfitabilityAnalysis
// ---------------------------------------------------------------------------

func TestProfitability_Empty(t *testing.T) {
	p := ProfitabilityAnalysis(newSnap().build())
	if p.ProfitablePercent != 0 || p.AvgProfitMargin != 0 || p.SalesAnalyzed != 0 {
		t.Errorf("expected zero result, got %+v", p)
	}
	if p.MostProfitable == nil || p.LeastProfitable == nil {
		t.Error("top lists must be empty, not nil")
	}
}

func TestProfitability_Partitions(t *testing.T) {
	snap := newSnap().
		sale(100, 20, testNow).                  // +80, margin 80
		sale(50, 60, testNow.Add(-time.Hour)).   // -10, margin -20
		sale(30, 30, testNow.Add(-2*time.Hour)). // 0, margin 0
		sale(0, 5, testNow.Add(-3*time.Hour)).   // -5, excluded from margin
		expense(1000, "rent", testNow).
		build()

	p := ProfitabilityAnalysis(snap)
	if p.TotalProfitable != 1 || p.TotalUnprofitable != 2 {
		t.Errorf("expected 1 profitable / 2 unprofitable, got %d / %d", p.TotalProfitable, p.TotalUnprofitable)
	}
	if p.SalesAnalyzed != 4 {
		t.Errorf("expected 4 sales analysed, got %d", p.SalesAnalyzed)
	}
	if !approx(p.ProfitablePercent, 25) {
		t.Errorf("expected 25%%, got %v", p.ProfitablePercent)
	}
	if !approx(p.AvgProfitMargin, 20) {
		t.Errorf("expected average margin 20, got %v", p.AvgProfitMargin)
	}
	if p.MostProfitable[0].Profit() != 80 {
		t.Errorf("most profitable first, got %+v", p.MostProfitable[0])
	}
	if p.LeastProfitable[0].Profit() != -10 {
		t.Errorf("least profitable first, got %+v", p.LeastProfitable[0])
	}
}

func TestProfitability_TopFive(t *testing.T) {
	b := newSnap()
	for i := 0; i < 8; i++ {
		b.sale(float64(10*(i+1)), 0, testNow.Add(-time.Duration(i)*time.Minute))
	}
	p := ProfitabilityAnalysis(b.build())
	if len(p.MostProfitable) != 5 || len(p.LeastProfitable) != 5 {
		t.Fatalf("expected 5 entries each, got %d / %d", len(p.MostProfitable), len(p.LeastProfitable))
	}
	if p.MostProfitable[0].Amount != 80 || p.LeastProfitable[0].Amount != 10 {
		t.Errorf("unexpected ordering: most=%v least=%v", p.MostProfitable[0].Amount, p.LeastProfitable[0].Amount)
	}
}
