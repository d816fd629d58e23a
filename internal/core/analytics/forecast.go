package analytics

import (
	"fmt"
	"time"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"

	minForecastDays   = 7
	maxForecastWindow = 30
	maxConfidence     = 90
)

// Forecast projects revenue and profit over a number of days.
type Forecast struct {
	Days            int     `json:"days"`
	ForecastRevenue float64 `json:"forecast_revenue"`
	ForecastProfit  float64 `json:"forecast_profit"`
	Confidence      float64 `json:"confidence"`
	Trend           string  `json:"trend"`
	AvgDailyProfit  float64 `json:"avg_daily_profit"`
	AvgDailyRevenue float64 `json:"avg_daily_revenue"`
	DaysAnalyzed    int     `json:"days_analyzed"`
	Message         string  `json:"message"`
}

// SalesForecast looks back over min(30, 2*days) days, compares the mean net
// profit of the last 7 days with the 7 before, and scales the all-time daily
// averages by days and a trend factor. Confidence grows linearly with the
// number of days analysed and is capped at 90.
func SalesForecast(snap *domain.Snapshot, now time.Time, days int) Forecast {
	window := min(maxForecastWindow, days*2)
	stats := DailyStatistics(snap, now, window)

	if len(stats) < minForecastDays {
		return Forecast{
			Days:         days,
			Trend:        TrendStable,
			DaysAnalyzed: len(stats),
			Message:      fmt.Sprintf("not enough data for a forecast (need at least %d days)", minForecastDays),
		}
	}

	recent := meanProfit(stats[:minForecastDays])
	older := recent
	if len(stats) > minForecastDays {
		older = meanProfit(stats[minForecastDays:min(len(stats), 2*minForecastDays)])
	}

	trend, factor := TrendStable, 1.0
	switch {
	case recent > older*1.2:
		trend, factor = TrendUp, 1.1
	case recent < older*0.8:
		trend, factor = TrendDown, 0.9
	}

	var profit, revenue float64
	for _, s := range stats {
		profit += s.NetProfit
		revenue += s.TotalSales
	}
	avgProfit := profit / float64(len(stats))
	avgRevenue := revenue / float64(len(stats))
	forecastProfit := avgProfit * float64(days) * factor

	return Forecast{
		Days:            days,
		ForecastRevenue: avgRevenue * float64(days) * factor,
		ForecastProfit:  forecastProfit,
		Confidence:      float64(min(maxConfidence, len(stats)*3)),
		Trend:           trend,
		AvgDailyProfit:  avgProfit,
		AvgDailyRevenue: avgRevenue,
		DaysAnalyzed:    len(stats),
		Message:         fmt.Sprintf("forecast for %d days: %.0f profit (%s)", days, forecastProfit, trend),
	}
}

func meanProfit(stats []DailyStat) float64 {
	if len(stats) == 0 {
		return 0
	}
	var sum float64
	for _, s := range stats {
		sum += s.NetProfit
	}
	return sum / float64(len(stats))
}
