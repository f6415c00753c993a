package handlers

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/diewo77/erp-reports/format"
	"github.com/diewo77/erp-reports/internal/api"
	"github.com/diewo77/erp-reports/internal/services"
)

// RouterConfig holds the configured handlers of the portal.
type RouterConfig struct {
	AuthHandler      *AuthHandler
	ReportHandler    *ReportHandler
	DashboardHandler *DashboardHandler
	HealthHandler    *HealthHandler

	ReportService *services.ReportService
}

// NewRouterConfig wires every handler around one report service.
//
//	cfg := handlers.NewRouterConfig(client, svc, db, formatter, logger)
//	mux.Handle("GET /reports/{name}", auth.RequireAuth(http.HandlerFunc(cfg.ReportHandler.Show)))
func NewRouterConfig(client *api.Client, svc *services.ReportService, db *gorm.DB, f *format.Formatter, log *slog.Logger) *RouterConfig {
	return &RouterConfig{
		AuthHandler:      NewAuthHandler(client, log),
		ReportHandler:    NewReportHandler(svc, f, log),
		DashboardHandler: NewDashboardHandler(svc, log),
		HealthHandler:    NewHealthHandler(db, client),
		ReportService:    svc,
	}
}
