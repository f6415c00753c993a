package main

import (
	"net/http"

	"github.com/diewo77/erp-reports/auth"
	"github.com/diewo77/erp-reports/format"
	"github.com/diewo77/erp-reports/i18n"
	"github.com/diewo77/erp-reports/internal/handlers"
	"github.com/diewo77/erp-reports/view"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux         *http.ServeMux
	routerCfg   *handlers.RouterConfig
	defaultLang string
	handler     http.Handler
}

// NewApp creates a new application with all routes configured. assetDir, when
// set, serves templates and static files from disk.
func NewApp(routerCfg *handlers.RouterConfig, f *format.Formatter, defaultLang, assetDir string) *App {
	app := &App{
		mux:         http.NewServeMux(),
		routerCfg:   routerCfg,
		defaultLang: i18n.Normalize(defaultLang),
	}
	if assetDir != "" {
		view.SetBaseDir(assetDir)
	}
	view.SetFormatterResolver(func(*http.Request) *format.Formatter { return f })
	app.setupRoutes()
	// auth context + preferences (language)
	app.handler = auth.Middleware(app.withPreferences(app.mux))
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	ah := a.routerCfg.AuthHandler
	rh := a.routerCfg.ReportHandler
	dh := a.routerCfg.DashboardHandler
	hh := a.routerCfg.HealthHandler

	// Public routes
	a.mux.HandleFunc("GET /{$}", a.landingPage)
	a.mux.HandleFunc("GET /", handlers.NotFound)
	a.mux.HandleFunc("GET /login", ah.Login)
	a.mux.HandleFunc("POST /login", ah.Login)
	a.mux.HandleFunc("GET /logout", ah.Logout)
	a.mux.HandleFunc("POST /logout", ah.Logout)
	a.mux.HandleFunc("GET /health", hh.Health)
	a.mux.HandleFunc("GET /healthz", hh.Ready)

	// Authenticated routes
	a.mux.Handle("GET /dashboard", auth.RequireAuth(http.HandlerFunc(dh.Show)))
	a.mux.Handle("GET /reports/{name}", auth.RequireAuth(http.HandlerFunc(rh.Show)))
	a.mux.Handle("POST /reports/{name}/refresh", auth.RequireAuth(http.HandlerFunc(rh.Refresh)))
	a.mux.Handle("GET /reports/{name}/export.csv", auth.RequireAuth(http.HandlerFunc(rh.ExportCSV)))
	a.mux.Handle("GET /reports/{name}/export.pdf", auth.RequireAuth(http.HandlerFunc(rh.ExportPDF)))
	a.mux.Handle("GET /solar-proposals/{id}/payback", auth.RequireAuth(http.HandlerFunc(rh.Payback)))

	// Static files
	a.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(view.Static())))
}

// withPreferences picks the language from the query (remembered in a cookie),
// the cookie, then Accept-Language.
func (a *App) withPreferences(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := ""
		if c, err := r.Cookie("lang"); err == nil {
			lang = i18n.Normalize(c.Value)
		}
		if q := i18n.Normalize(r.URL.Query().Get("lang")); q != "" {
			lang = q
			http.SetCookie(w, &http.Cookie{
				Name:     "lang",
				Value:    lang,
				Path:     "/",
				MaxAge:   86400 * 365,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		if lang == "" && r.Header.Get("Accept-Language") != "" {
			lang = i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		}
		if lang == "" {
			lang = a.defaultLang
		}
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}

func (a *App) landingPage(w http.ResponseWriter, r *http.Request) {
	if _, loggedIn := auth.SessionFromContext(r.Context()); loggedIn {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	if err := view.Render(w, r, "index.html", nil); err != nil {
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}
