package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/salesboard/internal/jobs"
	"github.com/odyssey-erp/salesboard/internal/sales"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

const warmupMonthTimeout = 20 * time.Second

// DashboardLoader computes one month's dashboard, filling the cache on the way.
type DashboardLoader interface {
	Dashboard(ctx context.Context, selector string) (sales.Dashboard, error)
	Now() time.Time
}

// DashboardWarmupJob pre-populates the dashboard cache for recent months.
type DashboardWarmupJob struct {
	Dashboards DashboardLoader
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(loader DashboardLoader, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{Dashboards: loader, Logger: logger, Metrics: metrics}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Dashboards == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	tracker := j.metrics().Track(TaskDashboardWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	start := time.Now()
	months := warmupMonths(payload, j.Dashboards.Now())
	for _, month := range months {
		if err := j.warmMonth(ctx, month); err != nil {
			if errors.Is(err, sales.ErrInvalidMonthSelector) {
				logger.Warn("skip invalid warmup month", slog.String("month", month))
				continue
			}
			resultErr = err
			logger.Error("warm month", slog.String("month", month), slog.Any("error", err))
			return resultErr
		}
	}

	logger.Info("completed dashboard warmup", slog.Int("months", len(months)), slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *DashboardWarmupJob) warmMonth(ctx context.Context, month string) error {
	monthCtx, cancel := context.WithTimeout(ctx, warmupMonthTimeout)
	defer cancel()
	_, err := j.Dashboards.Dashboard(monthCtx, month)
	return err
}

func warmupMonths(payload DashboardWarmupPayload, now time.Time) []string {
	if len(payload.Months) > 0 {
		return payload.Months
	}
	n := payload.Trailing
	if n <= 0 {
		n = 1
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	months := make([]string, 0, n)
	for i := 0; i < n; i++ {
		months = append(months, first.AddDate(0, -i, 0).Format("2006-01"))
	}
	return months
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}

func (j *DashboardWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
