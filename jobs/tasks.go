package jobs

import (
	"encoding/json"
	"strings"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup recomputes and caches recent dashboards.
	TaskDashboardWarmup = "salesboard:dashboard:warmup"
	// TaskDashboardInvalidate bumps the dashboard cache version.
	TaskDashboardInvalidate = "salesboard:dashboard:invalidate"
)

// DashboardWarmupPayload selects which months are warmed. Explicit Months win
// over Trailing, which counts back from the current month.
type DashboardWarmupPayload struct {
	Months   []string `json:"months,omitempty"`
	Trailing int      `json:"trailing,omitempty"`
}

// NewDashboardWarmupTask constructs an Asynq task.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}

// DashboardInvalidatePayload records why the cache was dropped.
type DashboardInvalidatePayload struct {
	Reason string `json:"reason"`
}

// NewDashboardInvalidateTask constructs an Asynq task.
func NewDashboardInvalidateTask(reason string) (*asynq.Task, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "manual"
	}
	data, err := json.Marshal(DashboardInvalidatePayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardInvalidate, data), nil
}
