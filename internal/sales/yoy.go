package sales

// SummarizeYearOverYear buckets prior-year records by day of month. window is
// the current month; the records are matched against its PriorYear shift.
func SummarizeYearOverYear(records []PastSalesRecord, window MonthWindow) YearOverYear {
	prior := window.PriorYear()
	loc := prior.Location()
	out := YearOverYear{Window: prior, ByDay: make(map[int]float64)}
	for _, rec := range records {
		if !prior.Contains(rec.Date) {
			continue
		}
		out.ByDay[rec.Date.In(loc).Day()] += rec.Sales
		out.Total += rec.Sales
	}
	return out
}

// YearOverYearPoint compares one day of the current month with the same day a year earlier.
type YearOverYearPoint struct {
	Day      int     `json:"day"`
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
}

// AlignYearOverYear lays current and prior-year totals on days 1..DaysInMonth,
// filling days without data with zero.
func AlignYearOverYear(window MonthWindow, current []MergedDay, previous ...YearOverYear) []YearOverYearPoint {
	points := make([]YearOverYearPoint, window.DaysInMonth)
	for i := range points {
		points[i].Day = i + 1
	}
	for _, d := range current {
		if d.Day >= 1 && d.Day <= window.DaysInMonth {
			points[d.Day-1].Current = d.Total
		}
	}
	for _, yoy := range previous {
		for day, amount := range yoy.ByDay {
			if day >= 1 && day <= window.DaysInMonth {
				points[day-1].Previous += amount
			}
		}
	}
	return points
}
