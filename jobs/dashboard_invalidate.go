package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/salesboard/internal/jobs"
)

// CacheBumper drops every cached dashboard at once.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// DashboardInvalidateJob bumps the dashboard cache version, for example after
// a late import into one of the site databases.
type DashboardInvalidateJob struct {
	Cache   CacheBumper
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// Handle processes invalidate tasks.
func (j *DashboardInvalidateJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Cache == nil {
		return errors.New("dashboard invalidate: cache not configured")
	}
	var payload DashboardInvalidatePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	metrics := j.Metrics
	if metrics == nil {
		metrics = defaultJobMetrics
	}
	tracker := metrics.Track(TaskDashboardInvalidate)
	err := j.Cache.Bump(ctx)
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err != nil {
		logger.Error("bump dashboard cache", slog.String("reason", payload.Reason), slog.Any("error", err))
	} else {
		logger.Info("dashboard cache invalidated", slog.String("reason", payload.Reason))
	}
	return tracker.End(err)
}
