package analytics

import (
	"fmt"
	"time"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

const (
	summaryDays         = 7
	summaryForecastDays = 30
)

// Recommendation thresholds.
const (
	minProfitablePercent = 70
	minROMI              = 100
	minSalesPerDay       = 1
	minLTVCACRatio       = 3
)

// Options parameterise the engine. Zero values fall back to the defaults.
type Options struct {
	Classifier    Classifier
	AdMatcher     Matcher
	LTVMultiplier float64
}

// WithDefaults fills every zero field with its default.
func (o Options) WithDefaults() Options {
	if o.Classifier == nil {
		o.Classifier = DefaultClassifier()
	}
	if o.AdMatcher == nil {
		o.AdMatcher = DefaultAdMatcher()
	}
	if o.LTVMultiplier <= 0 {
		o.LTVMultiplier = DefaultLTVMultiplier
	}
	return o
}

// Summary is the full analytics picture of one session.
type Summary struct {
	Details          domain.SessionView `json:"details"`
	Velocity         Velocity           `json:"velocity"`
	Profitability    Profitability      `json:"profitability"`
	ROI              ROI                `json:"roi"`
	Forecast         Forecast           `json:"forecast"`
	DailyStats       []DailyStat        `json:"daily_stats"`
	ExpenseBreakdown []CategoryTotal    `json:"expense_breakdown"`
	Recommendations  []string           `json:"recommendations"`
	GeneratedAt      time.Time          `json:"generated_at"`
}

// Summarize runs every engine function over one snapshot.
func Summarize(snap *domain.Snapshot, now time.Time, opts Options) Summary {
	opts = opts.WithDefaults()

	s := Summary{
		Details:          domain.NewSessionView(snap.Session, snap.Transactions, snap.Debts),
		Velocity:         SalesVelocity(snap),
		Profitability:    ProfitabilityAnalysis(snap),
		ROI:              ROIAnalysis(snap, opts.AdMatcher, opts.LTVMultiplier),
		Forecast:         SalesForecast(snap, now, summaryForecastDays),
		DailyStats:       DailyStatistics(snap, now, summaryDays),
		ExpenseBreakdown: ExpenseBreakdown(snap, opts.Classifier),
		GeneratedAt:      now,
	}
	s.Recommendations = Recommendations(s.Profitability, s.ROI, s.Velocity)
	return s
}

// Recommendations returns advice for every metric below its threshold.
func Recommendations(p Profitability, r ROI, v Velocity) []string {
	out := []string{}
	if p.ProfitablePercent < minProfitablePercent {
		out = append(out, "Increase the share of profitable deals: review loss-making sales")
	}
	if r.ROMI < minROMI {
		out = append(out, "Optimise advertising spend: check the effectiveness of each channel")
	}
	if v.SalesPerDay < minSalesPerDay {
		out = append(out, "Increase sales frequency: consider promotions or additional sales channels")
	}
	if r.LTVCACRatio < minLTVCACRatio {
		out = append(out, "Improve customer retention: work on repeat sales")
	}
	return out
}

// BreakEvenPoint is the number of units needed to cover fixed costs.
type BreakEvenPoint struct {
	Units         float64 `json:"break_even_units"`
	FixedCosts    float64 `json:"total_fixed_costs"`
	ProfitPerUnit float64 `json:"profit_per_unit"`
	Message       string  `json:"message"`
}

// BreakEven returns fixed/profitPerUnit, or zero units when a unit makes no profit.
func BreakEven(fixedCosts, profitPerUnit float64) BreakEvenPoint {
	if profitPerUnit <= 0 {
		return BreakEvenPoint{FixedCosts: fixedCosts, ProfitPerUnit: profitPerUnit, Message: "insufficient profit per unit"}
	}
	units := fixedCosts / profitPerUnit
	return BreakEvenPoint{
		Units:         units,
		FixedCosts:    fixedCosts,
		ProfitPerUnit: profitPerUnit,
		Message:       fmt.Sprintf("break-even point: %.0f units", units),
	}
}
