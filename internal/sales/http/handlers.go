package saleshttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/odyssey-erp/salesboard/internal/live"
	"github.com/odyssey-erp/salesboard/internal/platform/httpx"
	"github.com/odyssey-erp/salesboard/internal/sales"
	"github.com/odyssey-erp/salesboard/internal/sales/export"
)

// BackgroundRefreshHeader marks the polling request that wants rows only.
const BackgroundRefreshHeader = "X-Background-Refresh"

const requestTimeout = 5 * time.Second

// DashboardService defines the dashboard data contract used by the handler.
type DashboardService interface {
	Dashboard(ctx context.Context, selector string) (sales.Dashboard, error)
}

// Handler serves the sales dashboard.
type Handler struct {
	logger  *slog.Logger
	service DashboardService
	rows    live.Snapshotter
	sites   []string
	csvPool sync.Pool
}

// NewHandler constructs the dashboard handler. rows serves the background
// refresh payload for sites, in display order.
func NewHandler(logger *slog.Logger, service DashboardService, rows live.Snapshotter, sites []string) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		logger:  logger,
		service: service,
		rows:    rows,
		sites:   append([]string(nil), sites...),
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// SiteRows is one site's entry in the background refresh payload.
type SiteRows struct {
	Name string        `json:"name"`
	Rows live.Snapshot `json:"rows"`
}

// RefreshPayload is the reduced response for background refresh requests.
type RefreshPayload struct {
	Sites []SiteRows `json:"sites"`
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if isBackgroundRefresh(r) {
		httpx.JSON(w, http.StatusOK, h.loadRows(ctx))
		return
	}

	dashboard, err := h.service.Dashboard(ctx, monthSelector(r))
	if err != nil {
		h.respondError(w, "load dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, dashboard)
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	dashboard, err := h.service.Dashboard(ctx, monthSelector(r))
	if err != nil {
		h.respondError(w, "load dashboard", err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteDashboardCSV(buf, dashboard); err != nil {
		h.respondError(w, "write csv", err)
		return
	}

	filename := fmt.Sprintf("sales-%s.csv", dashboard.Window.Period())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

// loadRows never fails: a site whose fetch fails is reported with no rows.
func (h *Handler) loadRows(ctx context.Context) RefreshPayload {
	payload := RefreshPayload{Sites: make([]SiteRows, 0, len(h.sites))}
	for _, site := range h.sites {
		entry := SiteRows{Name: site, Rows: live.Snapshot{}}
		if h.rows != nil {
			snap, err := h.rows.Snapshot(ctx, site)
			if err != nil {
				h.logger.Warn("background refresh failed", slog.String("site", site), slog.Any("error", err))
			} else if snap != nil {
				entry.Rows = snap
			}
		}
		payload.Sites = append(payload.Sites, entry)
	}
	return payload
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, sales.ErrInvalidMonthSelector):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
	case errors.Is(err, sales.ErrStoreUnavailable), errors.Is(err, context.DeadlineExceeded):
		h.logError(op, err)
		httpx.RespondError(w, fmt.Errorf("%w: sales data temporarily unavailable", httpx.ErrUnavailable))
	default:
		h.logError(op, err)
		httpx.RespondError(w, err)
	}
}

func (h *Handler) logError(op string, err error) {
	h.logger.Error("sales handler error", slog.String("op", op), slog.Any("error", err))
}

func monthSelector(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("month"))
}

func isBackgroundRefresh(r *http.Request) bool {
	if r.Header.Get(BackgroundRefreshHeader) == "1" {
		return true
	}
	return r.URL.Query().Get("bg") == "1"
}
