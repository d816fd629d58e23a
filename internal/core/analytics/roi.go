package analytics

import (
	"fmt"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

// DefaultLTVMultiplier is the assumed number of purchases per customer used to
// approximate lifetime value. It is a placeholder, not a derived figure.
const DefaultLTVMultiplier = 3.0

// ROI holds return-on-investment figures for a session.
type ROI struct {
	ROIPercent     float64 `json:"roi_percentage"`
	ROMI           float64 `json:"romi"`
	AdSpend        float64 `json:"ad_spend"`
	Revenue        float64 `json:"revenue"`
	RevenueFromAds float64 `json:"revenue_from_ads"`
	TotalExpenses  float64 `json:"total_expenses"`
	CAC            float64 `json:"cac"`
	LTV            float64 `json:"ltv"`
	LTVCACRatio    float64 `json:"ltv_cac_ratio"`
	Message        string  `json:"message"`
}

// ROIAnalysis computes ROI, ROMI, CAC and LTV. Ad spend is the sum of expenses
// whose description the matcher recognises. Every ratio with a zero
// denominator is reported as 0.
func ROIAnalysis(snap *domain.Snapshot, ads Matcher, ltvMultiplier float64) ROI {
	if ltvMultiplier <= 0 {
		ltvMultiplier = DefaultLTVMultiplier
	}

	sales := snap.Sales()
	var revenue, expenses, adSpend float64
	for _, s := range sales {
		revenue += s.Amount
	}
	for _, e := range snap.Expenses() {
		expenses += e.Amount
		if ads.Match(e.Description) {
			adSpend += e.Amount
		}
	}

	if adSpend == 0 {
		return ROI{
			Revenue:        revenue,
			RevenueFromAds: revenue,
			TotalExpenses:  expenses,
			Message:        "no advertising spend found",
		}
	}

	res := ROI{
		AdSpend:        adSpend,
		Revenue:        revenue,
		RevenueFromAds: revenue,
		TotalExpenses:  expenses,
		ROIPercent:     ratio(revenue-expenses, expenses) * 100,
		ROMI:           ratio(revenue-adSpend, adSpend) * 100,
		CAC:            ratio(adSpend, float64(len(sales))),
	}
	res.LTV = ratio(revenue, float64(len(sales))) * ltvMultiplier
	res.LTVCACRatio = ratio(res.LTV, res.CAC)
	res.Message = fmt.Sprintf("ROI: %.1f%%, ROMI: %.1f%%", res.ROIPercent, res.ROMI)
	return res
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
