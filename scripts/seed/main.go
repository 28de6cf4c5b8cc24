package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/odyssey-erp/salesboard/internal/app"
	"github.com/odyssey-erp/salesboard/internal/platform/db"
	"github.com/odyssey-erp/salesboard/internal/store/memory"
	"github.com/odyssey-erp/salesboard/internal/store/postgres"
)

// Seeds both site databases with generated demo data for the current month
// and the same month one year earlier. Existing rows are removed.
func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.StoreDriver != app.StoreDriverPostgres {
		log.Fatalf("seed requires STORE_DRIVER=%s", app.StoreDriverPostgres)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("load timezone: %v", err)
	}

	ctx := context.Background()
	now := time.Now().In(loc)

	for i, site := range cfg.Sites() {
		fmt.Printf("→ Seeding %s...\n", site.Name)
		if err := seedSite(ctx, site.DSN, cfg.PGMaxConns, now, uint64(i+1)); err != nil {
			log.Fatalf("seed %s: %v", site.Name, err)
		}
	}
	fmt.Println("✓ Seed complete")
}

func seedSite(ctx context.Context, dsn string, maxConns int32, now time.Time, seed uint64) error {
	pool, err := db.New(ctx, dsn, db.PoolOptions{MaxConns: maxConns})
	if err != nil {
		return err
	}
	defer pool.Close()

	store := postgres.New(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := store.Truncate(ctx); err != nil {
		return err
	}

	data, err := generate(ctx, now, seed)
	if err != nil {
		return err
	}
	if err := store.Load(ctx, data); err != nil {
		return err
	}
	fmt.Printf("  %d bills, %d returns, %d past sales\n", len(data.Bills), len(data.Returns), len(data.PastSales))
	return nil
}

func generate(ctx context.Context, now time.Time, seed uint64) (postgres.Dataset, error) {
	demo := memory.New()
	memory.SeedDemo(demo, now, memory.DemoProfile{BillsPerDay: 30, Seed: seed})

	from := now.AddDate(-2, 0, 0)
	var data postgres.Dataset
	var err error
	if data.Bills, err = demo.QueryBills(ctx, from, now); err != nil {
		return data, err
	}
	if data.Returns, err = demo.QueryReturns(ctx, from, now); err != nil {
		return data, err
	}
	if data.PastSales, err = demo.QueryPastSales(ctx, from, now); err != nil {
		return data, err
	}
	return data, nil
}
