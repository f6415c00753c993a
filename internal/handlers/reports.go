package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/diewo77/erp-reports/auth"
	"github.com/diewo77/erp-reports/format"
	"github.com/diewo77/erp-reports/httpx"
	"github.com/diewo77/erp-reports/i18n"
	"github.com/diewo77/erp-reports/internal/catalog"
	"github.com/diewo77/erp-reports/internal/daterange"
	"github.com/diewo77/erp-reports/internal/export"
	"github.com/diewo77/erp-reports/internal/query"
	"github.com/diewo77/erp-reports/internal/services"
)

// ReportHandler serves report pages, their JSON form and their exports.
type ReportHandler struct {
	svc *services.ReportService
	f   *format.Formatter
	log *slog.Logger
}

func NewReportHandler(svc *services.ReportService, f *format.Formatter, log *slog.Logger) *ReportHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ReportHandler{svc: svc, f: f, log: log}
}

// reportPayload is the JSON form of a report page. Errors are always the
// generic message; details stay in the server log.
type reportPayload struct {
	Report     string            `json:"report"`
	Title      string            `json:"title"`
	Status     query.Status      `json:"status"`
	Empty      bool              `json:"empty"`
	Message    string            `json:"message,omitempty"`
	Filters    map[string]string `json:"filters,omitempty"`
	Violations map[string]string `json:"violations,omitempty"`
	FetchedAt  *time.Time        `json:"fetched_at,omitempty"`
	Cached     bool              `json:"cached"`
	Data       any               `json:"data,omitempty"`
	Table      *export.Table     `json:"table,omitempty"`
}

// load runs the report named in the path. It writes the response itself and
// returns false when the page cannot be shown at all.
func (h *ReportHandler) load(w http.ResponseWriter, r *http.Request) (services.Result, bool) {
	res, err := h.svc.Load(r.Context(), r.PathValue("name"), r.URL.Query())
	switch {
	case errors.Is(err, catalog.ErrUnknownReport):
		renderError(w, r, http.StatusNotFound, "unknown_report")
		return res, false
	case err != nil:
		h.log.Error("load report", "report", r.PathValue("name"), "err", err)
		renderError(w, r, http.StatusInternalServerError, "server_error")
		return res, false
	case res.Unauthorized():
		auth.Unauthorized(w, r)
		return res, false
	}
	return res, true
}

func statusCode(res services.Result) int {
	switch {
	case errors.Is(res.Err, services.ErrInvalidFilters):
		return http.StatusUnprocessableEntity
	case res.Status == query.StatusError:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}

func (h *ReportHandler) payload(res services.Result, lang string) reportPayload {
	p := reportPayload{
		Report:     res.Report.Name,
		Title:      i18n.T(lang, "report."+res.Report.Name),
		Status:     res.Status,
		Empty:      res.Empty,
		Message:    res.Message,
		Filters:    res.Filters.Values,
		Violations: res.Violations,
		Cached:     res.Cached,
	}
	if !res.FetchedAt.IsZero() {
		t := res.FetchedAt
		p.FetchedAt = &t
	}
	if res.View != nil {
		tbl := res.View.Table(h.f, lang)
		p.Data, p.Table = res.View, &tbl
	}
	return p
}

// Show renders a report as HTML or JSON.
func (h *ReportHandler) Show(w http.ResponseWriter, r *http.Request) {
	res, ok := h.load(w, r)
	if !ok {
		return
	}
	lang := i18n.LangFromContext(r.Context())
	if httpx.WantsJSON(r) {
		httpx.JSON(w, statusCode(res), h.payload(res, lang))
		return
	}

	data := map[string]any{
		"Report":     res.Report,
		"Filters":    res.Filters,
		"Violations": res.Violations,
		"RangeKeys":  daterange.Keys,
		"Status":     res.Status,
		"Empty":      res.Empty,
		"FetchedAt":  res.FetchedAt,
		"Cached":     res.Cached,
		"Query":      template.URL(exportQuery(r.URL.Query())),
	}
	if res.View != nil {
		tbl := res.View.Table(h.f, lang)
		data["Table"] = &tbl
	}
	status := http.StatusOK
	if errors.Is(res.Err, services.ErrInvalidFilters) {
		status = http.StatusUnprocessableEntity
	}
	render(w, r, status, "report.html", data)
}

// exportQuery carries the page's filters over to the export links.
func exportQuery(q url.Values) string {
	c := url.Values{}
	for k, v := range q {
		if k == "format" || k == "lang" {
			continue
		}
		c[k] = v
	}
	return c.Encode()
}

// Refresh drops the report's cached payloads and reloads the page.
func (h *ReportHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := h.svc.Invalidate(name); err != nil {
		renderError(w, r, http.StatusNotFound, "unknown_report")
		return
	}
	target := "/reports/" + url.PathEscape(name)
	if q := exportQuery(r.URL.Query()); q != "" {
		target += "?" + q
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// ExportCSV downloads the report table as CSV in the request language.
func (h *ReportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	res, ok := h.exportable(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, res.View.Table(h.f, i18n.LangFromContext(r.Context()))); err != nil {
		h.log.Error("export csv", "report", res.Report.Name, "err", err)
		renderError(w, r, http.StatusInternalServerError, "server_error")
		return
	}
	attach(w, "text/csv; charset=utf-8", export.Filename(res.Report.Name, filenameParts(res.Filters), "csv"), buf.Bytes())
}

// ExportPDF downloads the report table as PDF. PDF core fonts only cover
// Latin-1, so the document is always in English with an ASCII currency code.
func (h *ReportHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	res, ok := h.exportable(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WritePDF(&buf, res.View.Table(h.f.ASCII(), "en"), h.svc.Now()); err != nil {
		h.log.Error("export pdf", "report", res.Report.Name, "err", err)
		renderError(w, r, http.StatusInternalServerError, "server_error")
		return
	}
	attach(w, "application/pdf", export.Filename(res.Report.Name, filenameParts(res.Filters), "pdf"), buf.Bytes())
}

func (h *ReportHandler) exportable(w http.ResponseWriter, r *http.Request) (services.Result, bool) {
	res, ok := h.load(w, r)
	if !ok {
		return res, false
	}
	if !res.OK() || res.View == nil {
		status := statusCode(res)
		if status == http.StatusOK {
			status = http.StatusBadGateway
		}
		renderError(w, r, status, "failed_to_load")
		return res, false
	}
	return res, true
}

func filenameParts(f services.Filters) []string {
	switch {
	case !f.Range.IsZero():
		return []string{f.Range.StartISO(), f.Range.EndISO()}
	case f.Year != 0:
		return []string{strconv.Itoa(f.Year)}
	case !f.AsOf.IsZero():
		return []string{f.AsOf.Format("2006-01-02")}
	}
	return nil
}

func attach(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	_, _ = w.Write(body)
}

// Payback renders the cumulative cash flow of one solar proposal.
func (h *ReportHandler) Payback(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		renderError(w, r, http.StatusNotFound, "not_found")
		return
	}
	res := h.svc.LoadPayback(r.Context(), id)
	if res.Unauthorized() {
		auth.Unauthorized(w, r)
		return
	}
	lang := i18n.LangFromContext(r.Context())
	if httpx.WantsJSON(r) {
		httpx.JSON(w, statusCode(res.Result), h.payload(res.Result, lang))
		return
	}
	data := map[string]any{
		"Status":  res.Status,
		"Empty":   res.Empty,
		"Payback": res.Payback,
	}
	if res.Payback != nil {
		tbl := res.Payback.Table(h.f, lang)
		data["Table"] = &tbl
	}
	render(w, r, http.StatusOK, "payback.html", data)
}
