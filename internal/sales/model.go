package sales

import (
	"context"
	"time"
)

// CartItem is a single line of a bill.
type CartItem struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// Bill is one sales transaction recorded by the point of sale.
type Bill struct {
	Date        time.Time  `json:"date"`
	TotalAmount float64    `json:"totalAmount"`
	CartItems   []CartItem `json:"cartItems"`
	PaymentMode string     `json:"paymentMode"`
	Adjustment  float64    `json:"adjustment"`
}

// Return is an amount deducted after a sale was reversed.
type Return struct {
	ReturnDate     time.Time `json:"returnDate"`
	DeductedAmount float64   `json:"deductedAmount"`
}

// PastSalesRecord holds prior-year sales used for year-over-year comparison.
type PastSalesRecord struct {
	Date  time.Time `json:"date"`
	Sales float64   `json:"sales"`
}

// Store is the query surface one site's data store exposes. Both bounds are inclusive.
type Store interface {
	QueryBills(ctx context.Context, from, to time.Time) ([]Bill, error)
	QueryReturns(ctx context.Context, from, to time.Time) ([]Return, error)
	QueryPastSales(ctx context.Context, from, to time.Time) ([]PastSalesRecord, error)
}

// DaySummary is the total sold on one day of the month.
type DaySummary struct {
	Day        int     `json:"day"`
	TotalSales float64 `json:"totalSales"`
}

// SalesSummary is the per-store output of SummarizeSales.
type SalesSummary struct {
	TodaySales float64      `json:"todaySales"`
	MonthTotal float64      `json:"monthTotal"`
	DailySales []DaySummary `json:"dailySales"`
}

// PaymentModeTotal sums bill totals for one payment channel.
type PaymentModeTotal struct {
	Mode   string  `json:"mode"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// CategoryProfit is one row of the profit breakdown table.
type CategoryProfit struct {
	Category      string  `json:"category"`
	GrossSales    float64 `json:"grossSales"`
	ProfitPercent float64 `json:"profitPercent"`
	Profit        float64 `json:"profit"`
}

// ProfitBreakdown is the category table for one store and window.
type ProfitBreakdown struct {
	Categories  []CategoryProfit `json:"categories"`
	GrossSales  float64          `json:"grossSales"`
	GrossProfit float64          `json:"grossProfit"`
	Adjustment  float64          `json:"adjustment"`
}

// YearOverYear holds prior-year totals keyed by day of month.
type YearOverYear struct {
	Window MonthWindow     `json:"window"`
	ByDay  map[int]float64 `json:"byDay"`
	Total  float64         `json:"total"`
}

// NetProfit is gross profit less fixed expenses and returns.
type NetProfit struct {
	GrossProfit  float64 `json:"grossProfit"`
	FixedExpense float64 `json:"fixedExpense"`
	Returns      float64 `json:"returns"`
	Net          float64 `json:"net"`
	NetPercent   float64 `json:"netPercent"`
}
