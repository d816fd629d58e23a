// Package analytics derives business metrics from a ledger snapshot.
//
// Every function here is pure: given the same snapshot (and the same "now"
// where one is taken) it returns the same result. Not having enough data is
// never an error; results are zero-filled and carry a Message instead.
package analytics

import (
	"time"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

// DailyStat aggregates one calendar day of a session.
type DailyStat struct {
	Date          string  `json:"date"`
	DayName       string  `json:"day_name"`
	SalesCount    int     `json:"sales_count"`
	ExpensesCount int     `json:"expenses_count"`
	TotalSales    float64 `json:"total_sales"`
	TotalExpenses float64 `json:"total_expenses"`
	NetProfit     float64 `json:"net_profit"`
}

// DailyStatistics returns one entry per calendar day over [today-days+1, today],
// newest first. Days are cut in now's location; days without activity are
// zero-filled.
func DailyStatistics(snap *domain.Snapshot, now time.Time, days int) []DailyStat {
	if days <= 0 {
		return []DailyStat{}
	}

	loc := now.Location()
	today := startOfDay(now)
	stats := make([]DailyStat, 0, days)

	for i := 0; i < days; i++ {
		dayStart := today.AddDate(0, 0, -i)
		dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Nanosecond)

		stat := DailyStat{
			Date:    dayStart.Format(time.DateOnly),
			DayName: dayStart.Weekday().String(),
		}
		for _, t := range snap.Transactions {
			created := t.CreatedAt.In(loc)
			if created.Before(dayStart) || created.After(dayEnd) {
				continue
			}
			switch t.Type {
			case domain.TransactionSale:
				stat.SalesCount++
				stat.TotalSales += t.Amount
				stat.TotalExpenses += t.ExpenseAmount
			case domain.TransactionExpense:
				stat.ExpensesCount++
				stat.TotalExpenses += t.Amount
			}
		}
		stat.NetProfit = stat.TotalSales - stat.TotalExpenses
		stats = append(stats, stat)
	}
	return stats
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
