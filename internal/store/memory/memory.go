// Package memory keeps one site's records in process. It backs tests and the
// STORE_DRIVER=memory demo mode.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/odyssey-erp/salesboard/internal/sales"
)

// Store is a concurrency-safe in-memory sales.Store.
type Store struct {
	mu      sync.RWMutex
	bills   []sales.Bill
	returns []sales.Return
	past    []sales.PastSalesRecord
	err     error
}

var _ sales.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// AddBills records bills.
func (s *Store) AddBills(bills ...sales.Bill) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bills = append(s.bills, bills...)
}

// AddReturns records returns.
func (s *Store) AddReturns(returns ...sales.Return) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.returns = append(s.returns, returns...)
}

// AddPastSales records prior-year sales.
func (s *Store) AddPastSales(records ...sales.PastSalesRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.past = append(s.past, records...)
}

// Fail makes every query return err until called again with nil.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// QueryBills returns bills dated within [from, to], oldest first.
func (s *Store) QueryBills(ctx context.Context, from, to time.Time) ([]sales.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	out := make([]sales.Bill, 0)
	for _, b := range s.bills {
		if inRange(b.Date, from, to) {
			b.CartItems = append([]sales.CartItem(nil), b.CartItems...)
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// QueryReturns returns returns dated within [from, to].
func (s *Store) QueryReturns(ctx context.Context, from, to time.Time) ([]sales.Return, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	out := make([]sales.Return, 0)
	for _, r := range s.returns {
		if inRange(r.ReturnDate, from, to) {
			out = append(out, r)
		}
	}
	return out, nil
}

// QueryPastSales returns prior-year records dated within [from, to].
func (s *Store) QueryPastSales(ctx context.Context, from, to time.Time) ([]sales.PastSalesRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	out := make([]sales.PastSalesRecord, 0)
	for _, p := range s.past {
		if inRange(p.Date, from, to) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Ping reports the injected failure, if any.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.check(ctx)
}

func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.err
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}
