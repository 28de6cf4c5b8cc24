package livehttp

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/salesboard/internal/live"
	"github.com/odyssey-erp/salesboard/internal/platform/httpx"
)

// AlertFeed is the read side of the in-memory alert history.
type AlertFeed interface {
	Since(after uint64) []live.Alert
	Seq() uint64
}

// Handler serves alert events to the dashboard page.
type Handler struct {
	logger *slog.Logger
	feed   AlertFeed
}

// NewHandler constructs the alerts handler.
func NewHandler(logger *slog.Logger, feed AlertFeed) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, feed: feed}
}

// AlertsResponse lists alerts newer than the requested sequence. Clients pass
// Seq back as after on the next request.
type AlertsResponse struct {
	Seq    uint64       `json:"seq"`
	Alerts []live.Alert `json:"alerts"`
}

// MountRoutes registers the alert feed onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil || h.feed == nil {
		return
	}
	r.Get("/live/alerts", h.handleAlerts)
}

func (h *Handler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	after := uint64(0)
	if raw := strings.TrimSpace(r.URL.Query().Get("after")); raw != "" {
		value, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: after must be a non-negative integer", httpx.ErrValidation))
			return
		}
		after = value
	}
	seq := h.feed.Seq()
	alerts := h.feed.Since(after)
	if len(alerts) > 0 {
		seq = alerts[len(alerts)-1].Seq
	}
	httpx.JSON(w, http.StatusOK, AlertsResponse{Seq: seq, Alerts: alerts})
}
