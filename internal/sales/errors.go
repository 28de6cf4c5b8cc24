package sales

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMonthSelector is returned when a month selector is not YYYY-MM.
	ErrInvalidMonthSelector = errors.New("sales: invalid month selector")
	// ErrStoreUnavailable marks a failed store query.
	ErrStoreUnavailable = errors.New("sales: store unavailable")
)

// StoreError records which site and query failed.
type StoreError struct {
	Site string
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("sales: %s %s: %v", e.Site, e.Op, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *StoreError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.Err}
}
