package live

import (
	"context"
	"fmt"
	"time"

	"github.com/odyssey-erp/salesboard/internal/sales"
)

// Snapshotter fetches the current row set of one site.
type Snapshotter interface {
	Snapshot(ctx context.Context, site string) (Snapshot, error)
}

// StoreSnapshotter reads today's bills straight from each site's store.
type StoreSnapshotter struct {
	stores map[string]sales.Store
	loc    *time.Location
	now    func() time.Time
}

// NewStoreSnapshotter indexes sites by name. Today is computed in loc.
func NewStoreSnapshotter(sites []sales.Site, loc *time.Location) *StoreSnapshotter {
	if loc == nil {
		loc = time.UTC
	}
	stores := make(map[string]sales.Store, len(sites))
	for _, site := range sites {
		stores[site.Name] = site.Store
	}
	return &StoreSnapshotter{stores: stores, loc: loc, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *StoreSnapshotter) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Snapshot implements Snapshotter.
func (s *StoreSnapshotter) Snapshot(ctx context.Context, site string) (Snapshot, error) {
	store, ok := s.stores[site]
	if !ok {
		return nil, fmt.Errorf("live: unknown site %q", site)
	}
	from, to := sales.TodayBounds(s.now().In(s.loc))
	bills, err := store.QueryBills(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("live: snapshot %s: %w", site, err)
	}
	return RowsFromBills(bills, s.loc), nil
}
