package live

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/text/language"

	jobmetrics "github.com/odyssey-erp/salesboard/internal/jobs"
)

// DefaultPollInterval matches the dashboard refresh cadence.
const DefaultPollInterval = 10 * time.Second

const pollJob = "live.poll"

// PollerConfig tunes the poll loop.
type PollerConfig struct {
	Sites    []string
	Interval time.Duration
	Timeout  time.Duration
}

// Poller periodically snapshots every site, diffs the result and forwards new
// rows as alerts. At most one fetch per site is in flight at any time.
type Poller struct {
	cfg       PollerConfig
	source    Snapshotter
	detector  *Detector
	announcer *Announcer
	sink      Sink
	metrics   *jobmetrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
	inflight  map[string]*atomic.Bool
}

// NewPoller wires a poller. announcer, sink and metrics may be nil.
func NewPoller(cfg PollerConfig, source Snapshotter, detector *Detector, announcer *Announcer, sink Sink, metrics *jobmetrics.Metrics, logger *slog.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.Timeout <= 0 || cfg.Timeout > cfg.Interval {
		cfg.Timeout = cfg.Interval
	}
	if detector == nil {
		detector = NewDetector()
	}
	if announcer == nil {
		announcer = NewAnnouncer(language.Und)
	}
	if logger == nil {
		logger = slog.Default()
	}
	inflight := make(map[string]*atomic.Bool, len(cfg.Sites))
	for _, site := range cfg.Sites {
		inflight[site] = new(atomic.Bool)
	}
	return &Poller{
		cfg:       cfg,
		source:    source,
		detector:  detector,
		announcer: announcer,
		sink:      sink,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
		inflight:  inflight,
	}
}

// WithNow overrides the clock stamped on alerts.
func (p *Poller) WithNow(fn func() time.Time) {
	if fn != nil {
		p.now = fn
	}
}

// Run polls immediately and then on every interval until ctx is cancelled.
// Sites are polled independently so a slow store does not hold back the other.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()
	tick := func() {
		for _, site := range p.cfg.Sites {
			wg.Add(1)
			go func() {
				defer wg.Done()
				p.PollSite(ctx, site)
			}()
		}
	}

	p.logger.Info("live poller started", slog.Duration("interval", p.cfg.Interval), slog.Int("sites", len(p.cfg.Sites)))
	tick()
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("live poller stopped")
			return
		case <-ticker.C:
			tick()
		}
	}
}

// PollOnce polls every site in order and returns the alerts raised.
func (p *Poller) PollOnce(ctx context.Context) []Alert {
	var out []Alert
	for _, site := range p.cfg.Sites {
		out = append(out, p.PollSite(ctx, site)...)
	}
	return out
}

// PollSite runs one fetch, diff and replace cycle for site. It returns nil
// without fetching when the previous cycle for site has not finished.
func (p *Poller) PollSite(ctx context.Context, site string) []Alert {
	flag, ok := p.inflight[site]
	if !ok {
		p.logger.Warn("live poll for unknown site", slog.String("site", site))
		return nil
	}
	if !flag.CompareAndSwap(false, true) {
		p.metrics.SkipPoll(site)
		return nil
	}
	defer flag.Store(false)

	tracker := p.metrics.Track(pollJob)
	fetchCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	snap, err := p.source.Snapshot(fetchCtx, site)
	cancel()
	if err != nil {
		p.logger.Warn("live snapshot failed", slog.String("site", site), slog.Any("error", err))
		snap = nil
	}
	_ = tracker.End(err)

	if !p.detector.Primed(site) {
		if err == nil {
			p.detector.Prime(site, snap)
			p.logger.Debug("live baseline primed", slog.String("site", site), slog.Int("rows", len(snap)))
		}
		return nil
	}

	rows := p.detector.Observe(site, snap)
	if len(rows) == 0 {
		return nil
	}
	detectedAt := p.now()
	alerts := make([]Alert, 0, len(rows))
	for _, row := range rows {
		alerts = append(alerts, p.announcer.NewAlert(site, row, detectedAt))
	}
	p.metrics.AddAlerts(site, len(alerts))
	p.logger.Info("new sales detected", slog.String("site", site), slog.Int("count", len(alerts)))

	if p.sink != nil {
		if err := p.sink.Publish(ctx, alerts); err != nil {
			p.logger.Warn("publish alerts failed", slog.String("site", site), slog.Any("error", err))
		}
	}
	return alerts
}
