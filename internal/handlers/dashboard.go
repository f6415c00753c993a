package handlers

import (
	"log/slog"
	"net/http"

	"github.com/diewo77/erp-reports/httpx"
	"github.com/diewo77/erp-reports/internal/services"
)

// recentRunLimit is how many run log entries the dashboard shows.
const recentRunLimit = 15

type DashboardHandler struct {
	svc *services.ReportService
	log *slog.Logger
}

func NewDashboardHandler(svc *services.ReportService, log *slog.Logger) *DashboardHandler {
	if log == nil {
		log = slog.Default()
	}
	return &DashboardHandler{svc: svc, log: log}
}

// Show lists the catalog with run counts and the latest runs. A broken run
// log only hides those numbers.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.svc.Stats(ctx)
	if err != nil {
		h.log.Warn("run stats", "err", err)
		stats = map[string]services.ReportStats{}
	}
	runs, err := h.svc.RecentRuns(ctx, recentRunLimit)
	if err != nil {
		h.log.Warn("recent runs", "err", err)
		runs = nil
	}
	reports := h.svc.Catalog().All()

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"reports": reports,
			"stats":   stats,
			"runs":    runs,
		})
		return
	}
	render(w, r, http.StatusOK, "dashboard.html", map[string]any{
		"Reports": reports,
		"Stats":   stats,
		"Runs":    runs,
	})
}
