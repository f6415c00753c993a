package handlers

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/erp-reports/httpx"
	"github.com/diewo77/erp-reports/internal/db"
)

// Pinger checks that the backend API answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db  *gorm.DB
	api Pinger
}

func NewHealthHandler(d *gorm.DB, p Pinger) *HealthHandler {
	return &HealthHandler{db: d, api: p}
}

// Health is the liveness probe.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready checks the run log database and the backend API.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true
	if h.db != nil {
		checks["database"] = "ok"
		if err := db.Ping(ctx, h.db); err != nil {
			checks["database"], healthy = "down", false
		}
	}
	if h.api != nil {
		checks["api"] = "ok"
		if err := h.api.Ping(ctx); err != nil {
			checks["api"], healthy = "down", false
		}
	}
	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	httpx.JSON(w, code, map[string]any{"status": status, "checks": checks})
}
