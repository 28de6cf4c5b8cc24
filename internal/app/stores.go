package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/salesboard/internal/platform/db"
	"github.com/odyssey-erp/salesboard/internal/sales"
	"github.com/odyssey-erp/salesboard/internal/store/memory"
	"github.com/odyssey-erp/salesboard/internal/store/postgres"
)

// SiteStores holds one open store per configured site, in config order.
type SiteStores struct {
	Stores []sales.Store
	// Memory is populated only for the memory driver.
	Memory []*memory.Store
	Health map[string]HealthChecker
	pools  []*pgxpool.Pool
}

// Close releases database pools.
func (s *SiteStores) Close() {
	for _, pool := range s.pools {
		pool.Close()
	}
}

// OpenStores opens the store for each site according to STORE_DRIVER. The
// memory driver is seeded with demo data up to now.
func OpenStores(ctx context.Context, cfg *Config, logger *slog.Logger, now time.Time) (*SiteStores, error) {
	out := &SiteStores{Health: make(map[string]HealthChecker)}
	for i, site := range cfg.Sites() {
		switch cfg.StoreDriver {
		case StoreDriverMemory:
			store := memory.New()
			memory.SeedDemo(store, now, memory.DemoProfile{BillsPerDay: 25, Seed: uint64(i + 1)})
			out.Stores = append(out.Stores, store)
			out.Memory = append(out.Memory, store)
			out.Health["store:"+site.Name] = HealthFunc(store.Ping)
		default:
			pool, err := db.New(ctx, site.DSN, db.PoolOptions{MaxConns: cfg.PGMaxConns})
			if err != nil {
				out.Close()
				return nil, fmt.Errorf("open store for %s: %w", site.Name, err)
			}
			out.pools = append(out.pools, pool)
			store := postgres.New(pool)
			out.Stores = append(out.Stores, store)
			out.Health["store:"+site.Name] = HealthFunc(store.Ping)
		}
		logger.Info("site store ready", slog.String("site", site.Name), slog.String("driver", cfg.StoreDriver))
	}
	return out, nil
}
