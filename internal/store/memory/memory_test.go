package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/salesboard/internal/sales"
)

func TestQueryBillsInclusiveRange(t *testing.T) {
	s := New()
	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 8, 31, 23, 59, 59, 999999999, time.UTC)
	s.AddBills(
		sales.Bill{Date: to, TotalAmount: 3},
		sales.Bill{Date: from, TotalAmount: 1},
		sales.Bill{Date: from.Add(-time.Nanosecond), TotalAmount: 99},
		sales.Bill{Date: to.Add(time.Nanosecond), TotalAmount: 99},
	)

	bills, err := s.QueryBills(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, 1.0, bills[0].TotalAmount)
	assert.Equal(t, 3.0, bills[1].TotalAmount)
}

func TestFailInjectsErrors(t *testing.T) {
	s := New()
	boom := errors.New("down")
	s.Fail(boom)
	ctx := context.Background()
	_, err := s.QueryBills(ctx, time.Time{}, time.Now())
	assert.ErrorIs(t, err, boom)
	_, err = s.QueryReturns(ctx, time.Time{}, time.Now())
	assert.ErrorIs(t, err, boom)
	_, err = s.QueryPastSales(ctx, time.Time{}, time.Now())
	assert.ErrorIs(t, err, boom)

	s.Fail(nil)
	bills, err := s.QueryBills(ctx, time.Time{}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, bills)
}

func TestSeedDemoFillsCurrentAndPriorYear(t *testing.T) {
	s := New()
	now := time.Date(2025, 8, 5, 14, 0, 0, 0, time.UTC)
	SeedDemo(s, now, DemoProfile{BillsPerDay: 5, Seed: 7})

	ctx := context.Background()
	window := sales.NewMonthWindow(2025, 8, time.UTC)
	bills, err := s.QueryBills(ctx, window.Start, window.End)
	require.NoError(t, err)
	assert.NotEmpty(t, bills)
	for _, b := range bills {
		assert.False(t, b.Date.After(now))
		assert.NotEmpty(t, b.CartItems)
	}

	prior := window.PriorYear()
	past, err := s.QueryPastSales(ctx, prior.Start, prior.End)
	require.NoError(t, err)
	assert.Len(t, past, 31)
}
