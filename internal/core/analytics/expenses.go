package analytics

import (
	"sort"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

// CategoryTotal is the spend attributed to one expense category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percentage"`
}

// ExpenseBreakdown classifies every expense transaction and sums amounts per
// category, largest first (ties by name). Sale costs are not included.
func ExpenseBreakdown(snap *domain.Snapshot, c Classifier) []CategoryTotal {
	totals := make(map[string]*CategoryTotal)
	var grand float64

	for _, e := range snap.Expenses() {
		category := c.Classify(e.Description)
		ct, ok := totals[category]
		if !ok {
			ct = &CategoryTotal{Category: category}
			totals[category] = ct
		}
		ct.Amount += e.Amount
		ct.Count++
		grand += e.Amount
	}

	out := make([]CategoryTotal, 0, len(totals))
	for _, ct := range totals {
		if grand > 0 {
			ct.Percent = ct.Amount / grand * 100
		}
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	return out
}
