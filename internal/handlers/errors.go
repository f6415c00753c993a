package handlers

import (
	"log/slog"
	"net/http"

	"github.com/diewo77/erp-reports/httpx"
	"github.com/diewo77/erp-reports/i18n"
	"github.com/diewo77/erp-reports/view"
)

// renderError answers with an error page or a JSON error, depending on what
// the client accepts. code is an i18n message code.
func renderError(w http.ResponseWriter, r *http.Request, status int, code string) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, status, i18n.T(i18n.LangFromContext(r.Context()), code), nil)
		return
	}
	render(w, r, status, "error.html", map[string]any{"Status": status, "Message": code})
}

// NotFound is the catch-all for unknown pages.
func NotFound(w http.ResponseWriter, r *http.Request) {
	renderError(w, r, http.StatusNotFound, "not_found")
}

func render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if err := view.RenderStatus(w, r, status, name, data); err != nil {
		slog.Error("render", "template", name, "err", err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}
