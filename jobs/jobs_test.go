package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/odyssey-erp/salesboard/internal/jobs"
	"github.com/odyssey-erp/salesboard/internal/sales"
)

type stubLoader struct {
	now      time.Time
	selected []string
	failOn   string
}

func (s *stubLoader) Dashboard(ctx context.Context, selector string) (sales.Dashboard, error) {
	s.selected = append(s.selected, selector)
	if selector == s.failOn {
		return sales.Dashboard{}, sales.ErrStoreUnavailable
	}
	if selector == "bad" {
		return sales.Dashboard{}, sales.ErrInvalidMonthSelector
	}
	return sales.Dashboard{}, nil
}

func (s *stubLoader) Now() time.Time { return s.now }

func testMetrics() *jobmetrics.Metrics {
	return jobmetrics.NewMetrics(prometheus.NewRegistry())
}

func TestDashboardWarmupTrailingMonths(t *testing.T) {
	loader := &stubLoader{now: time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)}
	job := NewDashboardWarmupJob(loader, nil, testMetrics())
	task, err := NewDashboardWarmupTask(DashboardWarmupPayload{Trailing: 3})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, []string{"2025-01", "2024-12", "2024-11"}, loader.selected)
}

func TestDashboardWarmupExplicitMonthsSkipsInvalid(t *testing.T) {
	loader := &stubLoader{now: time.Now()}
	job := NewDashboardWarmupJob(loader, nil, testMetrics())
	task, err := NewDashboardWarmupTask(DashboardWarmupPayload{Months: []string{"bad", "2024-08"}})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, []string{"bad", "2024-08"}, loader.selected)
}

func TestDashboardWarmupPropagatesStoreFailure(t *testing.T) {
	loader := &stubLoader{now: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), failOn: "2025-08"}
	job := NewDashboardWarmupJob(loader, nil, testMetrics())
	err := job.Handle(context.Background(), asynq.NewTask(TaskDashboardWarmup, nil))
	assert.ErrorIs(t, err, sales.ErrStoreUnavailable)
}

func TestDashboardWarmupRejectsBadPayload(t *testing.T) {
	job := NewDashboardWarmupJob(&stubLoader{}, nil, testMetrics())
	err := job.Handle(context.Background(), asynq.NewTask(TaskDashboardWarmup, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

type stubBumper struct {
	calls int
	err   error
}

func (s *stubBumper) Bump(ctx context.Context) error {
	s.calls++
	return s.err
}

func TestDashboardInvalidateBumpsCache(t *testing.T) {
	bumper := &stubBumper{}
	job := &DashboardInvalidateJob{Cache: bumper, Metrics: testMetrics()}
	task, err := NewDashboardInvalidateTask("  ")
	require.NoError(t, err)

	var payload DashboardInvalidatePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "manual", payload.Reason)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, bumper.calls)

	bumper.err = errors.New("redis down")
	assert.Error(t, job.Handle(context.Background(), task))
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func TestJobsHealth(t *testing.T) {
	cases := []struct {
		name      string
		inspector QueueInspector
		status    int
		pending   int
	}{
		{"no inspector", nil, http.StatusOK, 0},
		{"queue info", stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 4}}, http.StatusOK, 4},
		{"redis down", stubInspector{err: errors.New("dial tcp")}, http.StatusServiceUnavailable, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := chi.NewRouter()
			NewHandler(tc.inspector, nil).MountRoutes(r)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, tc.status, rr.Code)
			if tc.status != http.StatusOK {
				return
			}
			var body QueueHealth
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, QueueDefault, body.Queue)
			assert.Equal(t, tc.pending, body.Pending)
		})
	}
}
