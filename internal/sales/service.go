package sales

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Site pairs a site's business constants with its store.
type Site struct {
	SiteConfig
	Store Store
}

// SiteReport is everything computed for one site over one window.
type SiteReport struct {
	Name         string             `json:"name"`
	Summary      SalesSummary       `json:"summary"`
	PaymentModes []PaymentModeTotal `json:"paymentModes"`
	Profit       ProfitBreakdown    `json:"profit"`
	Returns      float64            `json:"returns"`
	NetProfit    NetProfit          `json:"netProfit"`
	Projection   Projection         `json:"projection"`
	YearOverYear YearOverYear       `json:"yearOverYear"`
}

// Dashboard is the self-contained result handed to the rendering layer.
type Dashboard struct {
	Window         MonthWindow             `json:"window"`
	GeneratedAt    time.Time               `json:"generatedAt"`
	Sites          []SiteReport            `json:"sites"`
	Daily          []MergedDay             `json:"daily"`
	TodayTotal     float64                 `json:"todayTotal"`
	MonthTotal     float64                 `json:"monthTotal"`
	Combined       Projection              `json:"combined"`
	PaymentModes   []PaymentModeComparison `json:"paymentModes"`
	YearOverYear   []YearOverYearPoint     `json:"yearOverYear"`
	PriorYearTotal float64                 `json:"priorYearTotal"`
}

// Service computes dashboards across the configured sites.
type Service struct {
	sites              []Site
	margins            MarginTable
	adjustmentCategory string
	cache              *Cache
	loc                *time.Location
	now                func() time.Time
	logger             *slog.Logger
}

// NewService wires the business configuration with one store per site, in
// the same order as cfg.Sites. cache may be nil.
func NewService(cfg BusinessConfig, stores []Store, cache *Cache, loc *time.Location) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(stores) != len(cfg.Sites) {
		return nil, fmt.Errorf("sales: %d stores for %d sites", len(stores), len(cfg.Sites))
	}
	if loc == nil {
		loc = time.UTC
	}
	sites := make([]Site, len(cfg.Sites))
	for i, sc := range cfg.Sites {
		if stores[i] == nil {
			return nil, fmt.Errorf("sales: store for %s not configured", sc.Name)
		}
		sites[i] = Site{SiteConfig: sc, Store: stores[i]}
	}
	return &Service{
		sites:              sites,
		margins:            cfg.Margins,
		adjustmentCategory: cfg.AdjustmentCategory,
		cache:              cache,
		loc:                loc,
		now:                time.Now,
		logger:             slog.Default(),
	}, nil
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// WithLogger sets the logger used for cache diagnostics.
func (s *Service) WithLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Sites returns the configured sites in display order.
func (s *Service) Sites() []Site {
	out := make([]Site, len(s.sites))
	copy(out, s.sites)
	return out
}

// Location returns the zone month windows are resolved in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Now returns the service clock in the service location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// Dashboard resolves selector into a month window and computes the dashboard
// for it. Results are served from the cache when one is configured; a cache
// failure is logged and the dashboard is computed from the stores.
func (s *Service) Dashboard(ctx context.Context, selector string) (Dashboard, error) {
	now := s.Now()
	window, err := ResolveMonth(selector, now)
	if err != nil {
		return Dashboard{}, err
	}
	if s.cache == nil {
		return s.build(ctx, window, now)
	}

	key, err := s.cache.DashboardKey(ctx, window, now)
	if err != nil {
		s.logger.Warn("dashboard cache unavailable", slog.String("period", window.Period()), slog.Any("error", err))
		return s.build(ctx, window, now)
	}
	cached, ok, err := s.cache.GetDashboard(ctx, key)
	if err != nil {
		s.logger.Warn("dashboard cache read", slog.String("key", key), slog.Any("error", err))
	}
	if ok {
		return cached, nil
	}

	dashboard, err := s.build(ctx, window, now)
	if err != nil {
		return Dashboard{}, err
	}
	if err := s.cache.PutDashboard(ctx, key, dashboard); err != nil {
		s.logger.Warn("dashboard cache write", slog.String("key", key), slog.Any("error", err))
	}
	return dashboard, nil
}

type siteRecords struct {
	bills   []Bill
	returns []Return
	past    []PastSalesRecord
}

// fetch queries every store for every record kind concurrently. Any failure
// fails the whole fetch.
func (s *Service) fetch(ctx context.Context, window MonthWindow) ([]siteRecords, error) {
	records := make([]siteRecords, len(s.sites))
	prior := window.PriorYear()
	g, ctx := errgroup.WithContext(ctx)
	for i, site := range s.sites {
		g.Go(func() error {
			bills, err := site.Store.QueryBills(ctx, window.Start, window.End)
			if err != nil {
				return &StoreError{Site: site.Name, Op: "query bills", Err: err}
			}
			records[i].bills = bills
			return nil
		})
		g.Go(func() error {
			returns, err := site.Store.QueryReturns(ctx, window.Start, window.End)
			if err != nil {
				return &StoreError{Site: site.Name, Op: "query returns", Err: err}
			}
			records[i].returns = returns
			return nil
		})
		g.Go(func() error {
			past, err := site.Store.QueryPastSales(ctx, prior.Start, prior.End)
			if err != nil {
				return &StoreError{Site: site.Name, Op: "query past sales", Err: err}
			}
			records[i].past = past
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var storeErr *StoreError
		if !errors.As(err, &storeErr) {
			err = fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return nil, err
	}
	return records, nil
}

func (s *Service) build(ctx context.Context, window MonthWindow, now time.Time) (Dashboard, error) {
	records, err := s.fetch(ctx, window)
	if err != nil {
		return Dashboard{}, err
	}

	daysPassed := DaysPassed(window, now)
	dashboard := Dashboard{
		Window:      window,
		GeneratedAt: now,
		Sites:       make([]SiteReport, len(s.sites)),
	}
	daily := make([][]DaySummary, len(s.sites))
	payments := make([][]PaymentModeTotal, len(s.sites))
	yoys := make([]YearOverYear, len(s.sites))
	var combinedTarget float64

	for i, site := range s.sites {
		rec := records[i]
		summary := SummarizeSales(rec.bills, window, now)
		profit := SummarizeProfit(rec.bills, window, s.margins, s.adjustmentCategory)
		returns := SumReturns(rec.returns, window)
		report := SiteReport{
			Name:         site.Name,
			Summary:      summary,
			PaymentModes: SummarizePaymentModes(rec.bills, window),
			Profit:       profit,
			Returns:      returns,
			NetProfit:    ComputeNetProfit(profit.GrossProfit, site.FixedExpense, returns),
			Projection:   Project(summary.MonthTotal, daysPassed, window.DaysInMonth, site.Target),
			YearOverYear: SummarizeYearOverYear(rec.past, window),
		}
		dashboard.Sites[i] = report
		dashboard.TodayTotal += summary.TodaySales
		dashboard.MonthTotal += summary.MonthTotal
		dashboard.PriorYearTotal += report.YearOverYear.Total
		combinedTarget += site.Target
		daily[i] = summary.DailySales
		payments[i] = report.PaymentModes
		yoys[i] = report.YearOverYear
	}

	dashboard.Daily = MergeDaily(window.DaysInMonth, daily...)
	dashboard.Combined = Project(dashboard.MonthTotal, daysPassed, window.DaysInMonth, combinedTarget)
	dashboard.PaymentModes = ComparePaymentModes(payments...)
	dashboard.YearOverYear = AlignYearOverYear(window, dashboard.Daily, yoys...)
	return dashboard, nil
}
