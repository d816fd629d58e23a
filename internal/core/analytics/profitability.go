package analytics

import (
	"sort"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

const topSalesLimit = 5

// Profitability summarises how many sales made money and by how much.
type Profitability struct {
	TotalProfitable   int                  `json:"total_profitable"`
	TotalUnprofitable int                  `json:"total_unprofitable"`
	ProfitablePercent float64              `json:"profitability_percentage"`
	AvgProfitMargin   float64              `json:"avg_profit_margin"`
	SalesAnalyzed     int                  `json:"total_sales_analyzed"`
	MostProfitable    []domain.Transaction `json:"most_profitable"`
	LeastProfitable   []domain.Transaction `json:"least_profitable"`
}

// ProfitabilityAnalysis partitions sales by the sign of their profit
// (zero-profit sales count in neither group), averages the margin over sales
// with a positive amount and picks the five best and worst sales.
func ProfitabilityAnalysis(snap *domain.Snapshot) Profitability {
	sales := newestFirst(snap.Sales())
	res := Profitability{
		SalesAnalyzed:   len(sales),
		MostProfitable:  []domain.Transaction{},
		LeastProfitable: []domain.Transaction{},
	}
	if len(sales) == 0 {
		return res
	}

	var marginSum float64
	var margins int
	for _, s := range sales {
		switch p := s.Profit(); {
		case p > 0:
			res.TotalProfitable++
		case p < 0:
			res.TotalUnprofitable++
		}
		if s.Amount > 0 {
			marginSum += (s.Amount - s.ExpenseAmount) / s.Amount * 100
			margins++
		}
	}

	res.ProfitablePercent = float64(res.TotalProfitable) / float64(len(sales)) * 100
	if margins > 0 {
		res.AvgProfitMargin = marginSum / float64(margins)
	}

	most := make([]domain.Transaction, len(sales))
	copy(most, sales)
	sort.SliceStable(most, func(i, j int) bool { return most[i].Profit() > most[j].Profit() })
	res.MostProfitable = most[:min(topSalesLimit, len(most))]

	least := make([]domain.Transaction, len(sales))
	copy(least, sales)
	sort.SliceStable(least, func(i, j int) bool { return least[i].Profit() < least[j].Profit() })
	res.LeastProfitable = least[:min(topSalesLimit, len(least))]

	return res
}
