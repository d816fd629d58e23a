// Package report renders analytics results for people: a plain-text report
// and CSV exports of a session's records.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/ledgerbook/bookkeeper/internal/core/analytics"
)

const (
	rule          = "----------------------------"
	reportDays    = 7
	maxScoreFlame = 5
)

// Text renders the summary as a plain-text analytics report. Timestamps are
// shown in loc.
func Text(s analytics.Summary, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	d := s.Details
	cur := d.Currency
	var b strings.Builder

	section := func(title string) {
		fmt.Fprintf(&b, "\n%s\n%s\n", title, rule)
	}

	b.WriteString("ANALYTICS REPORT\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Session: %s\n", d.Name)
	fmt.Fprintf(&b, "Currency: %s\n", cur)
	fmt.Fprintf(&b, "Status: %s\n", statusLabel(d.IsActive))
	fmt.Fprintf(&b, "Created: %s\n", d.CreatedAt.In(loc).Format("02.01.2006 15:04"))

	section("KEY METRICS")
	fmt.Fprintf(&b, "- Revenue: %s\n", money(d.TotalSales, cur))
	fmt.Fprintf(&b, "- Expenses: %s\n", money(d.TotalExpenses, cur))
	fmt.Fprintf(&b, "- Net profit: %s\n", money(d.Balance, cur))
	fmt.Fprintf(&b, "- Budget: %s\n", money(d.Budget, cur))
	fmt.Fprintf(&b, "- Sales: %d\n", d.SalesCount)
	fmt.Fprintf(&b, "- Average check: %s\n", money(d.AvgCheck, cur))
	fmt.Fprintf(&b, "- Owed to me: %s\n", money(d.OwedToMe, cur))
	fmt.Fprintf(&b, "- I owe: %s\n", money(d.IOwe, cur))
	fmt.Fprintf(&b, "- Profitability: %.1f%% (%d/%d profitable)\n",
		s.Profitability.ProfitablePercent, s.Profitability.TotalProfitable, s.Profitability.SalesAnalyzed)

	section("SALES VELOCITY")
	fmt.Fprintf(&b, "- Average time between sales: %.1f hours\n", s.Velocity.AvgHoursBetweenSales)
	fmt.Fprintf(&b, "- Sales per day: %.1f\n", s.Velocity.SalesPerDay)
	fmt.Fprintf(&b, "- Velocity score: %s (%d/10)\n", scoreBar(s.Velocity.Score), s.Velocity.Score)

	section("PROFITABILITY")
	fmt.Fprintf(&b, "- Average margin: %.1f%%\n", s.Profitability.AvgProfitMargin)
	fmt.Fprintf(&b, "- Profitable deals: %d\n", s.Profitability.TotalProfitable)
	fmt.Fprintf(&b, "- Loss-making deals: %d\n", s.Profitability.TotalUnprofitable)

	section("ROI")
	fmt.Fprintf(&b, "- ROI: %.1f%%\n", s.ROI.ROIPercent)
	fmt.Fprintf(&b, "- ROMI: %.1f%%\n", s.ROI.ROMI)
	fmt.Fprintf(&b, "- Ad spend: %s\n", money(s.ROI.AdSpend, cur))
	fmt.Fprintf(&b, "- CAC: %s\n", money(s.ROI.CAC, cur))
	fmt.Fprintf(&b, "- LTV/CAC: %.2f\n", s.ROI.LTVCACRatio)

	section("EXPENSES BY CATEGORY")
	if len(s.ExpenseBreakdown) == 0 {
		b.WriteString("- No expense data\n")
	}
	for _, c := range s.ExpenseBreakdown {
		fmt.Fprintf(&b, "- %s: %s (%.1f%%)\n", c.Category, money(c.Amount, cur), c.Percent)
	}

	if len(s.DailyStats) > 0 {
		section(fmt.Sprintf("LAST %d DAYS", len(s.DailyStats)))
		var profit float64
		var sales int
		for i, day := range s.DailyStats {
			profit += day.NetProfit
			sales += day.SalesCount
			if i >= reportDays {
				continue
			}
			sign := "+"
			if day.NetProfit < 0 {
				sign = "-"
			}
			fmt.Fprintf(&b, "- %s %s: %s %.0f (%d sales)\n", shortDay(day.DayName), day.Date, sign, abs(day.NetProfit), day.SalesCount)
		}
		fmt.Fprintf(&b, "- Total over %d days: %.0f %s (%d sales)\n", len(s.DailyStats), profit, cur, sales)
	}

	section(fmt.Sprintf("%d-DAY FORECAST", s.Forecast.Days))
	if s.Forecast.Confidence == 0 {
		fmt.Fprintf(&b, "- %s\n", s.Forecast.Message)
	} else {
		fmt.Fprintf(&b, "- Expected profit: %.0f %s\n", s.Forecast.ForecastProfit, cur)
		fmt.Fprintf(&b, "- Expected revenue: %.0f %s\n", s.Forecast.ForecastRevenue, cur)
		fmt.Fprintf(&b, "- Trend: %s\n", s.Forecast.Trend)
		fmt.Fprintf(&b, "- Confidence: %.0f%%\n", s.Forecast.Confidence)
		fmt.Fprintf(&b, "- Average daily profit: %.0f %s\n", s.Forecast.AvgDailyProfit, cur)
	}

	section("RECOMMENDATIONS")
	if len(s.Recommendations) == 0 {
		b.WriteString("- Metrics look healthy, keep going\n")
	}
	for _, r := range s.Recommendations {
		fmt.Fprintf(&b, "- %s\n", r)
	}

	fmt.Fprintf(&b, "\nGenerated: %s\n", s.GeneratedAt.In(loc).Format("02.01.2006 15:04"))
	return b.String()
}

func money(v float64, currency string) string {
	return fmt.Sprintf("%.2f %s", v, currency)
}

func statusLabel(active bool) string {
	if active {
		return "active"
	}
	return "closed"
}

func scoreBar(score int) string {
	return strings.Repeat("*", min(maxScoreFlame, score/2))
}

func shortDay(name string) string {
	if len(name) > 3 {
		return name[:3]
	}
	return name
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
