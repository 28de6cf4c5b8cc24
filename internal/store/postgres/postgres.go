// Package postgres implements sales.Store on top of one site's PostgreSQL database.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/salesboard/internal/platform/db"
	"github.com/odyssey-erp/salesboard/internal/sales"
)

// Schema creates the tables read by the store.
const Schema = `
CREATE TABLE IF NOT EXISTS bills (
	id           BIGSERIAL PRIMARY KEY,
	billed_at    TIMESTAMPTZ NOT NULL,
	total_amount NUMERIC(14,2) NOT NULL CHECK (total_amount >= 0),
	payment_mode TEXT NOT NULL DEFAULT '',
	adjustment   NUMERIC(14,2),
	cart_items   JSONB NOT NULL DEFAULT '[]'::jsonb
);
CREATE INDEX IF NOT EXISTS bills_billed_at_idx ON bills (billed_at);

CREATE TABLE IF NOT EXISTS bill_returns (
	id              BIGSERIAL PRIMARY KEY,
	return_date     TIMESTAMPTZ NOT NULL,
	deducted_amount NUMERIC(14,2) NOT NULL CHECK (deducted_amount >= 0)
);
CREATE INDEX IF NOT EXISTS bill_returns_return_date_idx ON bill_returns (return_date);

CREATE TABLE IF NOT EXISTS past_sales (
	id        BIGSERIAL PRIMARY KEY,
	sale_date TIMESTAMPTZ NOT NULL,
	sales     NUMERIC(14,2) NOT NULL CHECK (sales >= 0)
);
CREATE INDEX IF NOT EXISTS past_sales_sale_date_idx ON past_sales (sale_date);
`

const (
	queryBills = `SELECT billed_at, total_amount::float8, payment_mode, COALESCE(adjustment, 0)::float8, cart_items
FROM bills
WHERE billed_at >= $1 AND billed_at <= $2
ORDER BY billed_at`

	queryReturns = `SELECT return_date, deducted_amount::float8
FROM bill_returns
WHERE return_date >= $1 AND return_date <= $2
ORDER BY return_date`

	queryPastSales = `SELECT sale_date, sales::float8
FROM past_sales
WHERE sale_date >= $1 AND sale_date <= $2
ORDER BY sale_date`

	insertBill     = `INSERT INTO bills (billed_at, total_amount, payment_mode, adjustment, cart_items) VALUES ($1, $2, $3, $4, $5)`
	insertReturn   = `INSERT INTO bill_returns (return_date, deducted_amount) VALUES ($1, $2)`
	insertPastSale = `INSERT INTO past_sales (sale_date, sales) VALUES ($1, $2)`
)

// Store reads one site's records through a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ sales.Store = (*Store)(nil)

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates missing tables and indexes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("store/postgres: ensure schema: %w", err)
	}
	return nil
}

// Ping checks the site database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return wrap("ping", err)
	}
	return nil
}

// QueryBills returns bills dated within [from, to].
func (s *Store) QueryBills(ctx context.Context, from, to time.Time) ([]sales.Bill, error) {
	rows, err := s.pool.Query(ctx, queryBills, from, to)
	if err != nil {
		return nil, wrap("query bills", err)
	}
	bills, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (sales.Bill, error) {
		var b sales.Bill
		err := row.Scan(&b.Date, &b.TotalAmount, &b.PaymentMode, &b.Adjustment, &b.CartItems)
		return b, err
	})
	if err != nil {
		return nil, wrap("scan bills", err)
	}
	return bills, nil
}

// QueryReturns returns returns dated within [from, to].
func (s *Store) QueryReturns(ctx context.Context, from, to time.Time) ([]sales.Return, error) {
	rows, err := s.pool.Query(ctx, queryReturns, from, to)
	if err != nil {
		return nil, wrap("query returns", err)
	}
	returns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (sales.Return, error) {
		var r sales.Return
		err := row.Scan(&r.ReturnDate, &r.DeductedAmount)
		return r, err
	})
	if err != nil {
		return nil, wrap("scan returns", err)
	}
	return returns, nil
}

// QueryPastSales returns prior-year sales dated within [from, to].
func (s *Store) QueryPastSales(ctx context.Context, from, to time.Time) ([]sales.PastSalesRecord, error) {
	rows, err := s.pool.Query(ctx, queryPastSales, from, to)
	if err != nil {
		return nil, wrap("query past sales", err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (sales.PastSalesRecord, error) {
		var p sales.PastSalesRecord
		err := row.Scan(&p.Date, &p.Sales)
		return p, err
	})
	if err != nil {
		return nil, wrap("scan past sales", err)
	}
	return records, nil
}

// Dataset is a set of records loaded together.
type Dataset struct {
	Bills     []sales.Bill
	Returns   []sales.Return
	PastSales []sales.PastSalesRecord
}

// Load inserts data in a single transaction.
func (s *Store) Load(ctx context.Context, data Dataset) error {
	batch := &pgx.Batch{}
	for _, b := range data.Bills {
		items := b.CartItems
		if items == nil {
			items = []sales.CartItem{}
		}
		var adjustment *float64
		if b.Adjustment != 0 {
			v := b.Adjustment
			adjustment = &v
		}
		batch.Queue(insertBill, b.Date, b.TotalAmount, b.PaymentMode, adjustment, items)
	}
	for _, r := range data.Returns {
		batch.Queue(insertReturn, r.ReturnDate, r.DeductedAmount)
	}
	for _, p := range data.PastSales {
		batch.Queue(insertPastSale, p.Date, p.Sales)
	}
	if batch.Len() == 0 {
		return nil
	}
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return wrap("load", err)
		}
		return nil
	})
}

// Truncate removes every record. Used by the seeder before reloading.
func (s *Store) Truncate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE bills, bill_returns, past_sales`); err != nil {
		return wrap("truncate", err)
	}
	return nil
}

func wrap(op string, err error) error {
	if pgconn.Timeout(err) {
		return fmt.Errorf("store/postgres: %s: timeout: %w", op, err)
	}
	return fmt.Errorf("store/postgres: %s: %w", op, err)
}
