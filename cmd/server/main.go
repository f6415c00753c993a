package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/diewo77/erp-reports/auth"
	"github.com/diewo77/erp-reports/format"
	"github.com/diewo77/erp-reports/httpx"
	"github.com/diewo77/erp-reports/internal/api"
	"github.com/diewo77/erp-reports/internal/catalog"
	"github.com/diewo77/erp-reports/internal/config"
	"github.com/diewo77/erp-reports/internal/db"
	"github.com/diewo77/erp-reports/internal/handlers"
	"github.com/diewo77/erp-reports/internal/query"
	"github.com/diewo77/erp-reports/internal/services"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	assetsFlag      = flag.String("assets", "", "Serve templates/ and static/ from this directory instead of the embedded copies")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	logger := newLogger(cfg.App.Dev)
	slog.SetDefault(logger)

	dbConn, err := db.Open(cfg.Database.DSN, cfg.App.Dev)
	if err != nil {
		fatal(logger, "connect to database", err)
	}
	logger.Info("database connected", "dsn", db.Mask(cfg.Database.DSN))

	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn); err != nil {
			fatal(logger, "migration failed", err)
		}
		logger.Info("migrations completed successfully")
		return
	}
	if cfg.App.Migrations {
		if err := db.Migrate(dbConn); err != nil {
			fatal(logger, "migration failed", err)
		}
		logger.Info("migrations completed")
	}

	if cfg.App.SessionSecret == "" && !cfg.App.Dev {
		fatal(logger, "configuration", fmt.Errorf("SESSION_SECRET is required outside dev mode"))
	}
	auth.SetSecret(cfg.App.SessionSecret)

	cat, err := catalog.Default()
	if err != nil {
		fatal(logger, "load report catalog", err)
	}

	loc := cfg.Locale.Location()
	formatter := format.New(cfg.Locale.Lang, cfg.Locale.Currency, cfg.Locale.CurrencySymbol).WithLocation(loc)
	client := api.New(cfg.API.BaseURL, cfg.API.Timeout, logger)
	svc := services.NewReportService(client, cat, query.NewCache(cfg.Cache.TTL), dbConn, logger, services.Options{
		TTL:      cfg.Cache.TTL,
		Location: loc,
	})
	routerCfg := handlers.NewRouterConfig(client, svc, dbConn, formatter, logger)

	appHandler := NewApp(routerCfg, formatter, cfg.Locale.Lang, *assetsFlag)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      withRecover(logger, withLogging(logger, appHandler)),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port, "dev", cfg.App.Dev, "api", cfg.API.BaseURL, "reports", len(cat.All()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal(logger, "server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("error during shutdown", "err", err)
	}
	logger.Info("server stopped gracefully")
}

func newLogger(dev bool) *slog.Logger {
	if dev {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "err", err)
	os.Exit(1)
}

// statusRecorder captures the status code for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging middleware and an X-Request-ID header.
func withLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status,
			"duration", time.Since(start), "request_id", reqID)
	})
}

// withRecover turns a handler panic into a 500 instead of a dropped connection.
func withRecover(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				logger.Error("panic", "path", r.URL.Path, "panic", v, "stack", string(debug.Stack()))
				if httpx.WantsJSON(r) {
					httpx.JSONError(w, http.StatusInternalServerError, "internal error", nil)
					return
				}
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
