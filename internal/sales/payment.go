package sales

import (
	"sort"
	"strings"
)

const unknownPaymentMode = "Unknown"

// SummarizePaymentModes sums bill totals per payment mode, largest first.
// Modes without transactions are absent from the result.
func SummarizePaymentModes(bills []Bill, window MonthWindow) []PaymentModeTotal {
	index := make(map[string]int)
	var totals []PaymentModeTotal
	for _, bill := range bills {
		if !window.Contains(bill.Date) {
			continue
		}
		mode := strings.TrimSpace(bill.PaymentMode)
		if mode == "" {
			mode = unknownPaymentMode
		}
		i, ok := index[mode]
		if !ok {
			i = len(totals)
			index[mode] = i
			totals = append(totals, PaymentModeTotal{Mode: mode})
		}
		totals[i].Amount += bill.TotalAmount
		totals[i].Count++
	}
	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].Amount == totals[j].Amount {
			return totals[i].Mode < totals[j].Mode
		}
		return totals[i].Amount > totals[j].Amount
	})
	return totals
}

// PaymentModeComparison lines up one payment mode across sites.
type PaymentModeComparison struct {
	Mode   string    `json:"mode"`
	BySite []float64 `json:"bySite"`
	Total  float64   `json:"total"`
}

// ComparePaymentModes merges per-site payment totals. A mode missing from a
// site counts as zero for that site.
func ComparePaymentModes(perSite ...[]PaymentModeTotal) []PaymentModeComparison {
	index := make(map[string]int)
	var rows []PaymentModeComparison
	for site, totals := range perSite {
		for _, t := range totals {
			i, ok := index[t.Mode]
			if !ok {
				i = len(rows)
				index[t.Mode] = i
				rows = append(rows, PaymentModeComparison{Mode: t.Mode, BySite: make([]float64, len(perSite))})
			}
			rows[i].BySite[site] += t.Amount
			rows[i].Total += t.Amount
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Total == rows[j].Total {
			return rows[i].Mode < rows[j].Mode
		}
		return rows[i].Total > rows[j].Total
	})
	return rows
}
