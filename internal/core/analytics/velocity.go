package analytics

import (
	"fmt"
	"sort"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

// velocityWindow is how many of the most recent sales feed the velocity figure.
const velocityWindow = 50

// Velocity describes how often sales happen.
type Velocity struct {
	AvgHoursBetweenSales float64 `json:"avg_time_between_sales"`
	SalesPerDay          float64 `json:"sales_per_day"`
	Score                int     `json:"velocity_score"`
	SalesAnalyzed        int     `json:"total_sales_analyzed"`
	Message              string  `json:"message"`
}

// SalesVelocity averages the gaps between consecutive recent sales and maps the
// resulting sales-per-day rate to a 1..10 score. Fewer than two sales, or no
// positive gap at all, yields a zero result.
func SalesVelocity(snap *domain.Snapshot) Velocity {
	sales := newestFirst(snap.Sales())
	if len(sales) > velocityWindow {
		sales = sales[:velocityWindow]
	}
	if len(sales) < 2 {
		return Velocity{SalesAnalyzed: len(sales), Message: "not enough data for analysis"}
	}

	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].CreatedAt.Before(sales[j].CreatedAt)
	})

	var total float64
	var gaps int
	for i := 1; i < len(sales); i++ {
		hours := sales[i].CreatedAt.Sub(sales[i-1].CreatedAt).Hours()
		if hours > 0 {
			total += hours
			gaps++
		}
	}
	if gaps == 0 {
		return Velocity{SalesAnalyzed: len(sales), Message: "could not compute sales velocity"}
	}

	avg := total / float64(gaps)
	perDay := 24 / avg

	return Velocity{
		AvgHoursBetweenSales: avg,
		SalesPerDay:          perDay,
		Score:                velocityScore(perDay),
		SalesAnalyzed:        len(sales),
		Message:              fmt.Sprintf("average time between sales: %.1f hours", avg),
	}
}

func velocityScore(perDay float64) int {
	switch {
	case perDay >= 10:
		return 10
	case perDay >= 5:
		return 8
	case perDay >= 2:
		return 6
	case perDay >= 1:
		return 4
	case perDay >= 0.5:
		return 2
	default:
		return 1
	}
}

// newestFirst returns a copy of txs ordered by creation time descending,
// ties broken by id descending.
func newestFirst(txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}
