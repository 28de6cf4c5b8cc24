package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/salesboard/internal/live"
	livehttp "github.com/odyssey-erp/salesboard/internal/live/http"
	"github.com/odyssey-erp/salesboard/internal/observability"
	"github.com/odyssey-erp/salesboard/internal/sales"
	saleshttp "github.com/odyssey-erp/salesboard/internal/sales/http"
	"github.com/odyssey-erp/salesboard/internal/store/memory"
	"github.com/odyssey-erp/salesboard/jobs"
)

func newTestRouter(t *testing.T, health map[string]HealthChecker) http.Handler {
	t.Helper()
	loc := time.FixedZone("IST", 19800)
	a, b := memory.New(), memory.New()
	a.AddBills(sales.Bill{Date: time.Date(2025, 8, 2, 11, 0, 0, 0, loc), TotalAmount: 500, PaymentMode: "Cash"})

	svc, err := sales.NewService(sales.DefaultBusinessConfig(), []sales.Store{a, b}, nil, loc)
	require.NoError(t, err)
	svc.WithNow(func() time.Time { return time.Date(2025, 8, 10, 12, 0, 0, 0, loc) })

	cfg := &Config{AppEnv: "development", AppRequestTimeout: 5 * time.Second}
	return NewRouter(RouterParams{
		Logger:       NewLogger(cfg),
		Config:       cfg,
		SalesHandler: saleshttp.NewHandler(nil, svc, live.NewStoreSnapshotter(svc.Sites(), loc), []string{"Bangur Nagar", "Vikhroli"}),
		LiveHandler:  livehttp.NewHandler(nil, live.NewFeed(8)),
		JobHandler:   jobs.NewHandler(nil, nil),
		Health:       health,
		Metrics:      observability.NewMetrics(),
	})
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestRouterServesDashboard(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := get(router, "/sales?month=2025-08")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	var body struct {
		MonthTotal float64 `json:"monthTotal"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, 500.0, body.MonthTotal)

	assert.Equal(t, http.StatusBadRequest, get(router, "/sales?month=2025-13").Code)
	assert.Equal(t, http.StatusFound, get(router, "/").Code)
	assert.Equal(t, http.StatusOK, get(router, "/live/alerts").Code)
	assert.Equal(t, http.StatusOK, get(router, "/jobs/health").Code)
	assert.Equal(t, http.StatusNotFound, get(router, "/nope").Code)

	metrics := get(router, "/metrics")
	require.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), `route="/sales"`)
}

func TestHealthz(t *testing.T) {
	ok := newTestRouter(t, map[string]HealthChecker{
		"redis": HealthFunc(func(context.Context) error { return nil }),
	})
	rr := get(ok, "/healthz")
	require.Equal(t, http.StatusOK, rr.Code)
	var report healthReport
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&report))
	assert.Equal(t, "ok", report.Status)
	assert.Equal(t, "ok", report.Checks["redis"])

	down := newTestRouter(t, map[string]HealthChecker{
		"Vikhroli": HealthFunc(func(context.Context) error { return errors.New("refused") }),
	})
	rr = get(down, "/healthz")
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&report))
	assert.Equal(t, "degraded", report.Status)
	assert.Equal(t, "down", report.Checks["Vikhroli"])
}

func TestInTestModeFollowsEnv(t *testing.T) {
	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
	assert.True(t, InTestMode())
	t.Setenv(testModeEnv, "0")
	RefreshTestMode()
	assert.False(t, InTestMode())
}
