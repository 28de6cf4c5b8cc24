package live

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Alert announces one newly seen bill.
type Alert struct {
	Seq         uint64    `json:"seq"`
	ID          string    `json:"id"`
	Site        string    `json:"site"`
	Time        string    `json:"time"`
	Items       []string  `json:"items"`
	Amount      float64   `json:"amount"`
	PaymentMode string    `json:"paymentMode"`
	DetectedAt  time.Time `json:"detectedAt"`
	Message     string    `json:"message"`
}

// Announcer renders the text the dashboard speaks for an alert.
type Announcer struct {
	printer *message.Printer
}

// NewAnnouncer builds an announcer for tag. An undetermined tag falls back to
// Indian English.
func NewAnnouncer(tag language.Tag) *Announcer {
	if tag == language.Und {
		tag = language.MustParse("en-IN")
	}
	return &Announcer{printer: message.NewPrinter(tag)}
}

// Announce formats the spoken message for a new row at site.
func (a *Announcer) Announce(site string, row Row) string {
	amount := int64(math.Round(row.Amount))
	if len(row.Items) == 0 {
		return a.printer.Sprintf("New sale at %s: %d rupees", site, amount)
	}
	return a.printer.Sprintf("New sale at %s: %d rupees for %s", site, amount, strings.Join(row.Items, ", "))
}

// NewAlert builds an alert for row with a fresh ID.
func (a *Announcer) NewAlert(site string, row Row, detectedAt time.Time) Alert {
	return Alert{
		ID:          uuid.NewString(),
		Site:        site,
		Time:        row.Time,
		Items:       append([]string(nil), row.Items...),
		Amount:      row.Amount,
		PaymentMode: row.PaymentMode,
		DetectedAt:  detectedAt,
		Message:     a.Announce(site, row),
	}
}
