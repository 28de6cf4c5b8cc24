package sales

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+30*60)

func TestResolveMonthExplicitSelector(t *testing.T) {
	now := time.Date(2025, 9, 12, 10, 0, 0, 0, ist)
	window, err := ResolveMonth("2025-08", now)
	require.NoError(t, err)

	assert.Equal(t, 2025, window.Year)
	assert.Equal(t, 8, window.Month)
	assert.Equal(t, 31, window.DaysInMonth)
	assert.True(t, window.Start.Equal(time.Date(2025, 8, 1, 0, 0, 0, 0, ist)))
	assert.True(t, window.End.Equal(time.Date(2025, 8, 31, 23, 59, 59, 999999999, ist)))
	assert.Equal(t, "2025-08", window.Period())
}

func TestResolveMonthDefaultsToNow(t *testing.T) {
	now := time.Date(2024, 2, 10, 8, 30, 0, 0, ist)
	window, err := ResolveMonth("  ", now)
	require.NoError(t, err)
	assert.Equal(t, 2024, window.Year)
	assert.Equal(t, 2, window.Month)
	assert.Equal(t, 29, window.DaysInMonth)
	assert.Equal(t, ist, window.Location())
}

func TestResolveMonthRejectsBadSelectors(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, selector := range []string{"2025", "abc-de", "2025-13", "2025-00", "2025-01-02", "-05", "2025-x1"} {
		_, err := ResolveMonth(selector, now)
		if !errors.Is(err, ErrInvalidMonthSelector) {
			t.Fatalf("selector %q: expected ErrInvalidMonthSelector, got %v", selector, err)
		}
	}
}

func TestResolveMonthIsPure(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	first, err := ResolveMonth("2025-03", now)
	require.NoError(t, err)
	second, err := ResolveMonth("2025-03", now)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPriorYearShiftsCalendarYear(t *testing.T) {
	cases := []struct {
		name      string
		year      int
		month     int
		wantStart time.Time
		wantEnd   time.Time
		wantDays  int
	}{
		{
			name:      "august",
			year:      2025,
			month:     8,
			wantStart: time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 8, 31, 23, 59, 59, 999999999, time.UTC),
			wantDays:  31,
		},
		{
			name:      "march across leap year",
			year:      2025,
			month:     3,
			wantStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC),
			wantDays:  31,
		},
		{
			name:      "non-leap to leap february",
			year:      2025,
			month:     2,
			wantStart: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 2, 29, 23, 59, 59, 999999999, time.UTC),
			wantDays:  29,
		},
		{
			name:      "leap to non-leap february",
			year:      2024,
			month:     2,
			wantStart: time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2023, 2, 28, 23, 59, 59, 999999999, time.UTC),
			wantDays:  28,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prior := NewMonthWindow(tc.year, tc.month, time.UTC).PriorYear()
			assert.True(t, prior.Start.Equal(tc.wantStart), "start %s", prior.Start)
			assert.True(t, prior.End.Equal(tc.wantEnd), "end %s", prior.End)
			assert.Equal(t, tc.wantDays, prior.DaysInMonth)
			assert.Equal(t, tc.year-1, prior.Year)
		})
	}
}
