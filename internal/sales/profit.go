package sales

import (
	"sort"
	"strings"
)

// SummarizeProfit expands every bill into its cart items, groups them by
// category and applies the margin table. The summed bill adjustments are folded
// into adjustmentCategory's gross sales only; no other category is touched.
func SummarizeProfit(bills []Bill, window MonthWindow, margins MarginTable, adjustmentCategory string) ProfitBreakdown {
	gross := make(map[string]float64)
	var order []string
	var adjustment float64
	add := func(category string, amount float64) {
		if _, ok := gross[category]; !ok {
			order = append(order, category)
		}
		gross[category] += amount
	}

	for _, bill := range bills {
		if !window.Contains(bill.Date) {
			continue
		}
		adjustment += bill.Adjustment
		for _, item := range bill.CartItems {
			add(strings.TrimSpace(item.Category), item.Price*item.Quantity)
		}
	}
	if adjustment != 0 && adjustmentCategory != "" {
		add(adjustmentCategory, adjustment)
	}

	breakdown := ProfitBreakdown{
		Categories: make([]CategoryProfit, 0, len(order)),
		Adjustment: adjustment,
	}
	for _, category := range order {
		rate := margins.Rate(category)
		row := CategoryProfit{
			Category:      category,
			GrossSales:    gross[category],
			ProfitPercent: rate,
			Profit:        gross[category] * rate,
		}
		breakdown.Categories = append(breakdown.Categories, row)
		breakdown.GrossSales += row.GrossSales
		breakdown.GrossProfit += row.Profit
	}
	sort.SliceStable(breakdown.Categories, func(i, j int) bool {
		return breakdown.Categories[i].GrossSales > breakdown.Categories[j].GrossSales
	})
	return breakdown
}

// SumReturns totals the deducted amounts of returns inside the window.
func SumReturns(returns []Return, window MonthWindow) float64 {
	var total float64
	for _, r := range returns {
		if !window.Contains(r.ReturnDate) {
			continue
		}
		total += r.DeductedAmount
	}
	return total
}
