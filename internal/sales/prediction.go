package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// Projection statuses.
const (
	StatusOnTrack     = "on_track"
	StatusBehind      = "behind"
	StatusUnavailable = "unavailable"
)

// MergedDay is one position of the unified per-day series.
type MergedDay struct {
	Day    int       `json:"day"`
	BySite []float64 `json:"bySite"`
	Total  float64   `json:"total"`
}

// MergeDaily builds a series with exactly one entry for every day
// 1..daysInMonth. Days a store has no data for count as zero.
func MergeDaily(daysInMonth int, perSite ...[]DaySummary) []MergedDay {
	if daysInMonth < 0 {
		daysInMonth = 0
	}
	series := make([]MergedDay, daysInMonth)
	for i := range series {
		series[i] = MergedDay{Day: i + 1, BySite: make([]float64, len(perSite))}
	}
	for site, days := range perSite {
		for _, d := range days {
			if d.Day < 1 || d.Day > daysInMonth {
				continue
			}
			series[d.Day-1].BySite[site] += d.TotalSales
			series[d.Day-1].Total += d.TotalSales
		}
	}
	return series
}

// DaysPassed counts the elapsed days of window as seen from now: zero for a
// future month, today's day number for the current month and every day for a
// past month. now is converted into the window's location first.
func DaysPassed(window MonthWindow, now time.Time) int {
	now = now.In(window.Location())
	current := now.Year()*12 + int(now.Month()) - 1
	viewed := window.Year*12 + window.Month - 1
	switch {
	case viewed > current:
		return 0
	case viewed == current:
		return now.Day()
	default:
		return window.DaysInMonth
	}
}

// Projection is the run-rate forecast for a month total.
type Projection struct {
	MonthTotal  float64 `json:"monthTotal"`
	DaysPassed  int     `json:"daysPassed"`
	DaysInMonth int     `json:"daysInMonth"`
	Available   bool    `json:"available"`
	Average     float64 `json:"average"`
	Predicted   float64 `json:"predicted"`
	Target      float64 `json:"target"`
	Status      string  `json:"status"`
}

// OnTrack reports whether the projection meets its target.
func (p Projection) OnTrack() bool {
	return p.Status == StatusOnTrack
}

// Project derives the average per elapsed day and the month-end projection.
// With no elapsed days the projection is marked unavailable and its numeric
// fields stay zero.
func Project(monthTotal float64, daysPassed, daysInMonth int, target float64) Projection {
	p := Projection{
		MonthTotal:  monthTotal,
		DaysPassed:  daysPassed,
		DaysInMonth: daysInMonth,
		Target:      target,
		Status:      StatusUnavailable,
	}
	if daysPassed <= 0 {
		return p
	}
	p.Available = true
	p.Average = monthTotal / float64(daysPassed)
	if daysPassed == daysInMonth {
		p.Predicted = monthTotal
	} else {
		p.Predicted = p.Average * float64(daysInMonth)
	}
	if p.Predicted >= target {
		p.Status = StatusOnTrack
	} else {
		p.Status = StatusBehind
	}
	return p
}

// ComputeNetProfit subtracts the fixed expense and returns from gross profit.
// NetPercent is rounded to two places and is zero when gross profit is zero.
func ComputeNetProfit(grossProfit, fixedExpense, returns float64) NetProfit {
	n := NetProfit{
		GrossProfit:  grossProfit,
		FixedExpense: fixedExpense,
		Returns:      returns,
		Net:          grossProfit - fixedExpense - returns,
	}
	if grossProfit != 0 {
		pct := decimal.NewFromFloat(n.Net).
			Div(decimal.NewFromFloat(grossProfit)).
			Mul(decimal.NewFromInt(100)).
			Round(2)
		n.NetPercent = pct.InexactFloat64()
	}
	return n
}
