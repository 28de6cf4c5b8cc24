package sales

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day, hour int) time.Time {
	return time.Date(2025, 8, day, hour, 0, 0, 0, ist)
}

func bill(ts time.Time, amount float64, mode string, items ...CartItem) Bill {
	return Bill{Date: ts, TotalAmount: amount, PaymentMode: mode, CartItems: items}
}

func TestSummarizeSalesBucketsByDay(t *testing.T) {
	window := NewMonthWindow(2025, 8, ist)
	now := at(12, 18)
	bills := []Bill{
		bill(at(3, 9), 120, "Cash"),
		bill(at(3, 20), 80, "UPI"),
		bill(at(12, 10), 300, "Card"),
		bill(at(12, 17), 50, "Cash"),
		bill(at(1, 0), 10, "Cash"),
		bill(time.Date(2025, 9, 1, 0, 0, 0, 0, ist), 999, "Cash"),
	}

	summary := SummarizeSales(bills, window, now)

	require.Len(t, summary.DailySales, 3)
	assert.Equal(t, []DaySummary{{Day: 1, TotalSales: 10}, {Day: 3, TotalSales: 200}, {Day: 12, TotalSales: 350}}, summary.DailySales)
	assert.Equal(t, 350.0, summary.TodaySales)
	assert.Equal(t, 560.0, summary.MonthTotal)

	var sum float64
	for _, d := range summary.DailySales {
		sum += d.TotalSales
	}
	assert.Equal(t, sum, summary.MonthTotal)
}

func TestSummarizeSalesTodayOutsideWindow(t *testing.T) {
	window := NewMonthWindow(2025, 7, ist)
	bills := []Bill{bill(time.Date(2025, 7, 30, 12, 0, 0, 0, ist), 400, "Cash")}
	summary := SummarizeSales(bills, window, at(12, 9))
	assert.Zero(t, summary.TodaySales)
	assert.Equal(t, 400.0, summary.MonthTotal)
}

func TestSummarizeSalesEmptyStore(t *testing.T) {
	summary := SummarizeSales(nil, NewMonthWindow(2025, 8, ist), at(5, 9))
	assert.Zero(t, summary.TodaySales)
	assert.Zero(t, summary.MonthTotal)
	assert.NotNil(t, summary.DailySales)
	assert.Empty(t, summary.DailySales)
}

func TestSummarizeSalesUsesWindowLocationForDay(t *testing.T) {
	window := NewMonthWindow(2025, 8, ist)
	// 20:00 UTC on the 4th is already the 5th in IST.
	bills := []Bill{bill(time.Date(2025, 8, 4, 20, 0, 0, 0, time.UTC), 75, "Cash")}
	summary := SummarizeSales(bills, window, at(20, 9))
	require.Len(t, summary.DailySales, 1)
	assert.Equal(t, 5, summary.DailySales[0].Day)
}

func TestSummarizePaymentModesSortedDescending(t *testing.T) {
	window := NewMonthWindow(2025, 8, ist)
	bills := []Bill{
		bill(at(1, 9), 100, "Cash"),
		bill(at(2, 9), 500, "UPI"),
		bill(at(3, 9), 150, "Cash"),
		bill(at(4, 9), 40, " "),
	}
	modes := SummarizePaymentModes(bills, window)
	require.Len(t, modes, 3)
	assert.Equal(t, PaymentModeTotal{Mode: "UPI", Amount: 500, Count: 1}, modes[0])
	assert.Equal(t, PaymentModeTotal{Mode: "Cash", Amount: 250, Count: 2}, modes[1])
	assert.Equal(t, "Unknown", modes[2].Mode)

	assert.Empty(t, SummarizePaymentModes(nil, window))
}

func TestComparePaymentModesFillsMissingSite(t *testing.T) {
	a := []PaymentModeTotal{{Mode: "Cash", Amount: 300}, {Mode: "Card", Amount: 100}}
	b := []PaymentModeTotal{{Mode: "UPI", Amount: 250}, {Mode: "Cash", Amount: 50}}

	rows := ComparePaymentModes(a, b)
	require.Len(t, rows, 3)
	assert.Equal(t, PaymentModeComparison{Mode: "Cash", BySite: []float64{300, 50}, Total: 350}, rows[0])
	assert.Equal(t, PaymentModeComparison{Mode: "UPI", BySite: []float64{0, 250}, Total: 250}, rows[1])
	assert.Equal(t, PaymentModeComparison{Mode: "Card", BySite: []float64{100, 0}, Total: 100}, rows[2])
}

func TestMarginTableRates(t *testing.T) {
	table := DefaultMarginTable()
	assert.Equal(t, 0.6, table.Rate("Other"))
	assert.Equal(t, table.Rate("Other"), table.Rate("Others"))
	assert.Equal(t, 0.3, table.Rate("Unlisted"))

	custom := MarginTable{Rates: map[string]float64{"Others": 0.25}, Default: 0.3}
	assert.Equal(t, 0.25, custom.Rate("Other"))

	overridden := table.With(map[string]float64{"Other": 0.5, "Candles": 0.7})
	assert.Equal(t, 0.5, overridden.Rate("Others"))
	assert.Equal(t, 0.7, overridden.Rate("Candles"))
	assert.Equal(t, 0.6, table.Rate("Others"), "original table must not change")
}

func TestSummarizeProfitExpandsItems(t *testing.T) {
	window := NewMonthWindow(2025, 8, ist)
	margins := MarginTable{Rates: map[string]float64{"Cake": 0.5, "Other": 0.6, "Others": 0.6}, Default: 0.3}
	bills := []Bill{
		bill(at(1, 9), 0, "Cash",
			CartItem{Name: "Black Forest", Category: "Cake", Price: 400, Quantity: 2},
			CartItem{Name: "Candle", Category: "Others", Price: 20, Quantity: 5},
			CartItem{Name: "Mystery", Category: "Seasonal", Price: 100, Quantity: 1},
		),
		bill(at(2, 9), 0, "UPI",
			CartItem{Name: "Truffle", Category: "Cake", Price: 500, Quantity: 1},
		),
	}

	breakdown := SummarizeProfit(bills, window, margins, "Cake")
	require.Len(t, breakdown.Categories, 3)
	assert.Equal(t, CategoryProfit{Category: "Cake", GrossSales: 1300, ProfitPercent: 0.5, Profit: 650}, breakdown.Categories[0])
	assert.Equal(t, CategoryProfit{Category: "Others", GrossSales: 100, ProfitPercent: 0.6, Profit: 60}, breakdown.Categories[1])
	assert.Equal(t, "Seasonal", breakdown.Categories[2].Category)
	assert.Equal(t, 0.3, breakdown.Categories[2].ProfitPercent)
	assert.InDelta(t, 740.0, breakdown.GrossProfit, 1e-9)
	assert.Equal(t, 1500.0, breakdown.GrossSales)
}

func TestSummarizeProfitFoldsAdjustmentIntoCake(t *testing.T) {
	window := NewMonthWindow(2025, 8, ist)
	margins := DefaultMarginTable()
	first := bill(at(1, 9), 0, "Cash",
		CartItem{Category: "Cake", Price: 1000, Quantity: 1},
		CartItem{Category: "Bread", Price: 100, Quantity: 1},
	)
	first.Adjustment = -200
	second := bill(at(2, 9), 0, "Cash")
	second.Adjustment = 50

	breakdown := SummarizeProfit([]Bill{first, second}, window, margins, "Cake")
	assert.Equal(t, -150.0, breakdown.Adjustment)
	require.Len(t, breakdown.Categories, 2)
	assert.Equal(t, "Cake", breakdown.Categories[0].Category)
	assert.Equal(t, 850.0, breakdown.Categories[0].GrossSales)
	assert.InDelta(t, 850*0.45, breakdown.Categories[0].Profit, 1e-9)
	assert.Equal(t, 100.0, breakdown.Categories[1].GrossSales, "other categories stay untouched")
}

func TestSummarizeProfitAdjustmentWithoutCakeSales(t *testing.T) {
	window := NewMonthWindow(2025, 8, ist)
	b := bill(at(1, 9), 0, "Cash", CartItem{Category: "Bread", Price: 100, Quantity: 1})
	b.Adjustment = 30
	breakdown := SummarizeProfit([]Bill{b}, window, DefaultMarginTable(), "Cake")
	require.Len(t, breakdown.Categories, 2)
	assert.Equal(t, "Bread", breakdown.Categories[0].Category)
	assert.Equal(t, CategoryProfit{Category: "Cake", GrossSales: 30, ProfitPercent: 0.45, Profit: 30 * 0.45}, breakdown.Categories[1])
}

func TestSumReturnsIgnoresOutsideWindow(t *testing.T) {
	window := NewMonthWindow(2025, 8, ist)
	returns := []Return{
		{ReturnDate: at(2, 9), DeductedAmount: 40},
		{ReturnDate: at(20, 9), DeductedAmount: 10},
		{ReturnDate: time.Date(2025, 7, 31, 23, 0, 0, 0, ist), DeductedAmount: 500},
	}
	assert.Equal(t, 50.0, SumReturns(returns, window))
}

func TestSummarizeYearOverYear(t *testing.T) {
	window := NewMonthWindow(2025, 3, ist)
	records := []PastSalesRecord{
		{Date: time.Date(2024, 3, 1, 10, 0, 0, 0, ist), Sales: 100},
		{Date: time.Date(2024, 3, 1, 18, 0, 0, 0, ist), Sales: 50},
		{Date: time.Date(2024, 3, 31, 18, 0, 0, 0, ist), Sales: 70},
		{Date: time.Date(2024, 2, 29, 18, 0, 0, 0, ist), Sales: 999},
	}
	yoy := SummarizeYearOverYear(records, window)
	assert.Equal(t, map[int]float64{1: 150, 31: 70}, yoy.ByDay)
	assert.Equal(t, 220.0, yoy.Total)
	assert.Equal(t, 2024, yoy.Window.Year)

	current := MergeDaily(window.DaysInMonth, []DaySummary{{Day: 2, TotalSales: 30}})
	points := AlignYearOverYear(window, current, yoy)
	require.Len(t, points, 31)
	assert.Equal(t, YearOverYearPoint{Day: 1, Current: 0, Previous: 150}, points[0])
	assert.Equal(t, YearOverYearPoint{Day: 2, Current: 30, Previous: 0}, points[1])
	assert.Equal(t, 70.0, points[30].Previous)
}

func TestSummarizeYearOverYearKeepsLeapDay(t *testing.T) {
	window := NewMonthWindow(2025, 2, ist)
	records := []PastSalesRecord{
		{Date: time.Date(2024, 2, 28, 18, 0, 0, 0, ist), Sales: 40},
		{Date: time.Date(2024, 2, 29, 18, 0, 0, 0, ist), Sales: 60},
	}
	yoy := SummarizeYearOverYear(records, window)
	assert.Equal(t, map[int]float64{28: 40, 29: 60}, yoy.ByDay)
	assert.Equal(t, 100.0, yoy.Total)
	assert.Equal(t, 29, yoy.Window.DaysInMonth)
}

func TestMergeDailyCoversEveryDay(t *testing.T) {
	for _, days := range []int{28, 29, 30, 31} {
		series := MergeDaily(days, []DaySummary{{Day: 3, TotalSales: 5}}, nil)
		if len(series) != days {
			t.Fatalf("expected %d entries, got %d", days, len(series))
		}
		for i, d := range series {
			if d.Day != i+1 {
				t.Fatalf("expected day %d at position %d, got %d", i+1, i, d.Day)
			}
			if len(d.BySite) != 2 {
				t.Fatalf("expected two sites per day, got %d", len(d.BySite))
			}
		}
	}
}

func TestProjectionScenario(t *testing.T) {
	series := MergeDaily(4,
		[]DaySummary{{Day: 1, TotalSales: 100}, {Day: 2, TotalSales: 200}},
		[]DaySummary{{Day: 1, TotalSales: 50}, {Day: 2, TotalSales: 0}},
	)
	totals := make([]float64, 0, len(series))
	var monthTotal float64
	for _, d := range series {
		totals = append(totals, d.Total)
		monthTotal += d.Total
	}
	assert.Equal(t, []float64{150, 200, 0, 0}, totals)
	assert.Equal(t, 350.0, monthTotal)

	p := Project(monthTotal, 2, 4, 600)
	assert.True(t, p.Available)
	assert.Equal(t, 175.0, p.Average)
	assert.Equal(t, 700.0, p.Predicted)
	assert.True(t, p.OnTrack())

	behind := Project(monthTotal, 2, 4, 701)
	assert.Equal(t, StatusBehind, behind.Status)
}

func TestProjectionFullMonthEqualsTotal(t *testing.T) {
	p := Project(1234.57, 31, 31, 0)
	assert.Equal(t, 1234.57, p.Predicted)
}

func TestProjectionWithoutElapsedDays(t *testing.T) {
	p := Project(0, 0, 30, 1000)
	assert.False(t, p.Available)
	assert.Equal(t, StatusUnavailable, p.Status)
	assert.False(t, math.IsNaN(p.Average))
	assert.False(t, math.IsNaN(p.Predicted))
	assert.False(t, p.OnTrack())
}

func TestDaysPassed(t *testing.T) {
	now := time.Date(2025, 8, 12, 15, 0, 0, 0, ist)
	assert.Equal(t, 12, DaysPassed(NewMonthWindow(2025, 8, ist), now))
	assert.Equal(t, 31, DaysPassed(NewMonthWindow(2025, 7, ist), now))
	assert.Equal(t, 0, DaysPassed(NewMonthWindow(2025, 9, ist), now))
	assert.Equal(t, 0, DaysPassed(NewMonthWindow(2026, 1, ist), now))
	assert.Equal(t, 29, DaysPassed(NewMonthWindow(2024, 2, ist), now))

	// 20:00 UTC on 31 July is already 1 August in IST.
	utcNow := time.Date(2025, 7, 31, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysPassed(NewMonthWindow(2025, 8, ist), utcNow))
}

func TestComputeNetProfit(t *testing.T) {
	n := ComputeNetProfit(1000, 200, 50)
	assert.Equal(t, 750.0, n.Net)
	assert.Equal(t, 75.0, n.NetPercent)

	zero := ComputeNetProfit(0, 200, 0)
	assert.Equal(t, -200.0, zero.Net)
	assert.Equal(t, 0.0, zero.NetPercent)
	assert.False(t, math.IsNaN(zero.NetPercent))

	rounded := ComputeNetProfit(300, 100, 0)
	assert.Equal(t, 66.67, rounded.NetPercent)
}
