package sales

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MonthWindow bounds one calendar month. Start and End are both inclusive.
type MonthWindow struct {
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	DaysInMonth int       `json:"daysInMonth"`
}

// Period formats the window as YYYY-MM.
func (w MonthWindow) Period() string {
	return fmt.Sprintf("%04d-%02d", w.Year, w.Month)
}

// Contains reports whether t falls inside the window.
func (w MonthWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Location returns the zone the window was resolved in.
func (w MonthWindow) Location() *time.Location {
	if w.Start.IsZero() {
		return time.UTC
	}
	return w.Start.Location()
}

// ResolveMonth turns an optional "YYYY-MM" selector into a MonthWindow in now's
// location. An empty selector selects the month containing now.
func ResolveMonth(selector string, now time.Time) (MonthWindow, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return NewMonthWindow(now.Year(), int(now.Month()), now.Location()), nil
	}
	parts := strings.Split(selector, "-")
	if len(parts) != 2 {
		return MonthWindow{}, fmt.Errorf("%w: %q", ErrInvalidMonthSelector, selector)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year <= 0 {
		return MonthWindow{}, fmt.Errorf("%w: %q", ErrInvalidMonthSelector, selector)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return MonthWindow{}, fmt.Errorf("%w: %q", ErrInvalidMonthSelector, selector)
	}
	return NewMonthWindow(year, month, now.Location()), nil
}

// NewMonthWindow builds the window for year/month in loc.
func NewMonthWindow(year, month int, loc *time.Location) MonthWindow {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	next := start.AddDate(0, 1, 0)
	return MonthWindow{
		Year:        year,
		Month:       month,
		Start:       start,
		End:         next.Add(-time.Nanosecond),
		DaysInMonth: daysIn(year, time.Month(month)),
	}
}

// PriorYear returns the same calendar month one year earlier, covering that
// month's own day count, so February follows the earlier year's leap rule.
func (w MonthWindow) PriorYear() MonthWindow {
	return NewMonthWindow(w.Year-1, w.Month, w.Location())
}

// TodayBounds returns the first and last instant of now's calendar day.
func TodayBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
