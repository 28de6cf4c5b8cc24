package memory

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/odyssey-erp/salesboard/internal/sales"
)

var demoCatalog = []sales.CartItem{
	{Name: "Black Forest", Category: "Cake", Price: 650},
	{Name: "Red Velvet Slice", Category: "Pastry", Price: 140},
	{Name: "Pineapple Pastry", Category: "Pastry", Price: 90},
	{Name: "Brown Bread", Category: "Bread", Price: 55},
	{Name: "Butter Cookies", Category: "Cookies", Price: 180},
	{Name: "Veg Puff", Category: "Snacks", Price: 35},
	{Name: "Cold Coffee", Category: "Beverages", Price: 120},
	{Name: "Birthday Candles", Category: "Others", Price: 40},
}

var demoPaymentModes = []string{"Cash", "UPI", "Card"}

// DemoProfile scales generated traffic for one site.
type DemoProfile struct {
	BillsPerDay int
	Seed        uint64
}

// SeedDemo fills the store with bills from the first of now's month up to now,
// the same month one year earlier as past sales, and a few returns.
func SeedDemo(s *Store, now time.Time, profile DemoProfile) {
	rng := rand.New(rand.NewPCG(profile.Seed, profile.Seed^0x9e3779b97f4a7c15))
	perDay := profile.BillsPerDay
	if perDay <= 0 {
		perDay = 20
	}
	loc := now.Location()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	for day := start; !day.After(now); day = day.AddDate(0, 0, 1) {
		for i := 0; i < perDay; i++ {
			ts := day.Add(time.Duration(9*3600+rng.IntN(12*3600)) * time.Second)
			if ts.After(now) {
				continue
			}
			s.AddBills(RandomBill(rng, ts))
		}
		if rng.IntN(4) == 0 {
			s.AddReturns(sales.Return{
				ReturnDate:     day.Add(18 * time.Hour),
				DeductedAmount: float64(50 + rng.IntN(400)),
			})
		}
	}

	lastYear := start.AddDate(-1, 0, 0)
	for day := lastYear; day.Month() == lastYear.Month(); day = day.AddDate(0, 0, 1) {
		s.AddPastSales(sales.PastSalesRecord{
			Date:  day.Add(20 * time.Hour),
			Sales: float64(perDay) * (300 + float64(rng.IntN(250))),
		})
	}
}

// RandomBill builds a plausible bill at ts.
func RandomBill(rng *rand.Rand, ts time.Time) sales.Bill {
	n := 1 + rng.IntN(3)
	items := make([]sales.CartItem, 0, n)
	var total float64
	for i := 0; i < n; i++ {
		item := demoCatalog[rng.IntN(len(demoCatalog))]
		item.Quantity = float64(1 + rng.IntN(3))
		total += item.Price * item.Quantity
		items = append(items, item)
	}
	b := sales.Bill{
		Date:        ts,
		TotalAmount: math.Round(total),
		CartItems:   items,
		PaymentMode: demoPaymentModes[rng.IntN(len(demoPaymentModes))],
	}
	if rng.IntN(40) == 0 {
		b.Adjustment = -float64(10 * (1 + rng.IntN(5)))
	}
	return b
}

// Simulate appends a random bill every interval until ctx is done, so the
// live alerts have something to announce in demo mode.
func Simulate(ctx context.Context, s *Store, interval time.Duration, now func() time.Time, seed uint64) {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.AddBills(RandomBill(rng, now()))
		}
	}
}
