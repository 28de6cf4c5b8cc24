package sales

import (
	"sort"
	"time"
)

// SummarizeSales buckets one store's bills by day of month and, independently,
// sums the bills falling on now's calendar day. Bills outside the window are
// ignored. The month total is always the sum of the daily buckets.
func SummarizeSales(bills []Bill, window MonthWindow, now time.Time) SalesSummary {
	loc := window.Location()
	buckets := make(map[int]float64)
	for _, bill := range bills {
		if !window.Contains(bill.Date) {
			continue
		}
		buckets[bill.Date.In(loc).Day()] += bill.TotalAmount
	}

	daily := make([]DaySummary, 0, len(buckets))
	var monthTotal float64
	for day, total := range buckets {
		daily = append(daily, DaySummary{Day: day, TotalSales: total})
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Day < daily[j].Day })
	for _, d := range daily {
		monthTotal += d.TotalSales
	}

	return SalesSummary{
		TodaySales: todaySales(bills, window, now.In(loc)),
		MonthTotal: monthTotal,
		DailySales: daily,
	}
}

func todaySales(bills []Bill, window MonthWindow, now time.Time) float64 {
	start, end := TodayBounds(now)
	var total float64
	for _, bill := range bills {
		if !window.Contains(bill.Date) {
			continue
		}
		if bill.Date.Before(start) || bill.Date.After(end) {
			continue
		}
		total += bill.TotalAmount
	}
	return total
}
