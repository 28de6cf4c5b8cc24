// Package live detects bills that appeared since the previous poll and turns
// them into alerts.
package live

import (
	"sort"
	"strconv"
	"time"

	"github.com/odyssey-erp/salesboard/internal/sales"
)

// TimeLayout is how a row's time is displayed and compared.
const TimeLayout = "15:04"

// Row is the reduced view of one bill shown in the today table.
type Row struct {
	Time        string   `json:"time"`
	Items       []string `json:"items"`
	Amount      float64  `json:"amount"`
	PaymentMode string   `json:"paymentMode"`
}

// Snapshot is the ordered row set of one site at one poll.
type Snapshot []Row

type rowKey struct {
	time   string
	amount float64
}

func (r Row) key() rowKey {
	return rowKey{time: r.Time, amount: r.Amount}
}

// RowsFromBills converts bills into rows, latest first, with times rendered in loc.
func RowsFromBills(bills []sales.Bill, loc *time.Location) Snapshot {
	if loc == nil {
		loc = time.UTC
	}
	ordered := make([]sales.Bill, len(bills))
	copy(ordered, bills)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.After(ordered[j].Date)
	})

	rows := make(Snapshot, 0, len(ordered))
	for _, b := range ordered {
		rows = append(rows, Row{
			Time:        b.Date.In(loc).Format(TimeLayout),
			Items:       itemLabels(b.CartItems),
			Amount:      b.TotalAmount,
			PaymentMode: b.PaymentMode,
		})
	}
	return rows
}

func itemLabels(items []sales.CartItem) []string {
	labels := make([]string, 0, len(items))
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = item.Category
		}
		if item.Quantity > 1 {
			name += " x" + strconv.FormatFloat(item.Quantity, 'f', -1, 64)
		}
		labels = append(labels, name)
	}
	return labels
}
