// Package services loads report payloads through the query cache, derives
// their views and records each load in the run log.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/diewo77/erp-reports/auth"
	"github.com/diewo77/erp-reports/internal/api"
	"github.com/diewo77/erp-reports/internal/catalog"
	"github.com/diewo77/erp-reports/internal/models"
	"github.com/diewo77/erp-reports/internal/query"
	"github.com/diewo77/erp-reports/internal/reports"
	"github.com/diewo77/erp-reports/validation"
)

// ErrInvalidFilters is set on a Result whose filters failed validation.
var ErrInvalidFilters = errors.New("invalid filters")

// Getter is the part of api.Client the service needs.
type Getter interface {
	Get(ctx context.Context, path string, params api.Params, out any) error
}

// Options tune a ReportService.
type Options struct {
	TTL      time.Duration
	Location *time.Location
	Now      func() time.Time
}

// ReportService fetches and derives reports.
type ReportService struct {
	api     Getter
	catalog *catalog.Catalog
	cache   *query.Cache
	db      *gorm.DB
	log     *slog.Logger
	ttl     time.Duration
	loc     *time.Location
	now     func() time.Time
}

// NewReportService wires the service. db may be nil to disable the run log.
func NewReportService(g Getter, cat *catalog.Catalog, cache *query.Cache, db *gorm.DB, log *slog.Logger, opts Options) *ReportService {
	if log == nil {
		log = slog.Default()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ReportService{api: g, catalog: cat, cache: cache, db: db, log: log, ttl: opts.TTL, loc: opts.Location, now: opts.Now}
}

// Catalog returns the report catalog.
func (s *ReportService) Catalog() *catalog.Catalog { return s.catalog }

// Now returns the current time in the configured location.
func (s *ReportService) Now() time.Time { return s.now().In(s.loc) }

// Result is one load of a report page.
type Result struct {
	Report     catalog.Report
	Filters    Filters
	Violations validation.Violations
	Status     query.Status
	Empty      bool
	Message    string
	Err        error
	FetchedAt  time.Time
	Cached     bool
	View       View
}

// OK reports a successful load, empty or not.
func (r Result) OK() bool { return r.Status == query.StatusSuccess }

// Unauthorized reports whether the backend rejected the token.
func (r Result) Unauthorized() bool { return errors.Is(r.Err, api.ErrUnauthorized) }

// Load fetches the named report with filters taken from q. The only error
// returned is catalog.ErrUnknownReport; every other failure is carried in
// the Result so the page can render it.
func (s *ReportService) Load(ctx context.Context, name string, q url.Values) (Result, error) {
	rep, err := s.catalog.Lookup(name)
	if err != nil {
		return Result{}, err
	}
	now := s.Now()
	params, filters, violations := ParseFilters(rep, q, now)
	res := Result{Report: rep, Filters: filters, Violations: violations}
	if !violations.Empty() {
		res.Status, res.Err, res.Message = query.StatusError, ErrInvalidFilters, query.MessageFailed
		return res, nil
	}

	start := time.Now()
	switch rep.Kind {
	case catalog.KindVAT:
		st := fetch(ctx, s, rep, params, func(r reports.VATReport) bool { return len(r.Months) == 0 })
		settle(&res, st, start, func(r reports.VATReport) View { return NewVATView(r) })
	case catalog.KindAging:
		st := fetch(ctx, s, rep, params, func(r reports.AgingReport) bool { return len(r.Items) == 0 })
		asOf := filters.AsOf
		if asOf.IsZero() {
			asOf = now
		}
		settle(&res, st, start, func(r reports.AgingReport) View { return NewAgingView(rep.Name, r, asOf) })
	case catalog.KindVariance:
		st := fetch(ctx, s, rep, params, func(r reports.WorkOrderCostReport) bool { return len(r.WorkOrders) == 0 })
		settle(&res, st, start, func(r reports.WorkOrderCostReport) View { return NewVarianceView(r) })
	case catalog.KindInventory:
		st := fetch(ctx, s, rep, params, func(r reports.InventoryReport) bool { return len(r.Items) == 0 })
		settle(&res, st, start, func(r reports.InventoryReport) View { return NewInventoryView(r) })
	case catalog.KindCOGS:
		st := fetch(ctx, s, rep, params, cogsEmpty)
		settle(&res, st, start, func(r reports.COGSReport) View { return NewCOGSView(r) })
	case catalog.KindTrialBalance:
		st := fetch(ctx, s, rep, params, func(r reports.TrialBalance) bool { return len(r.Accounts) == 0 })
		settle(&res, st, start, func(r reports.TrialBalance) View { return &TrialBalanceView{TrialBalance: r} })
	default:
		return Result{}, fmt.Errorf("%w: kind %s", catalog.ErrUnknownReport, rep.Kind)
	}
	s.record(ctx, rep.Name, params.Encode(), res, time.Since(start))
	return res, nil
}

func cogsEmpty(r reports.COGSReport) bool {
	return r.Revenue.IsZero() && r.OpeningInventory.IsZero() && r.Purchases.IsZero() &&
		r.ClosingInventory.IsZero() && r.COGS.IsZero()
}

// PaybackResult is one load of a solar proposal's payback page.
type PaybackResult struct {
	Result
	Payback *PaybackView
}

// paybackReport is the pseudo catalog entry used for caching and the run log.
var paybackReport = catalog.Report{Name: "solar-payback", Title: "Solar payback"}

// LoadPayback fetches a solar proposal and runs its cumulative cash flow.
func (s *ReportService) LoadPayback(ctx context.Context, proposalID int64) PaybackResult {
	rep := paybackReport
	rep.Endpoint = fmt.Sprintf("solar-proposals/%d/payback", proposalID)
	params := api.Params{}
	res := PaybackResult{Result: Result{Report: rep}}
	start := time.Now()
	st := fetch(ctx, s, rep, params, func(p reports.SolarProposal) bool {
		return p.Investment.IsZero() && p.AnnualSavings.IsZero() && len(p.YearlySavings) == 0
	})
	settle(&res.Result, st, start, func(p reports.SolarProposal) View { return NewPaybackView(p) })
	if v, ok := res.View.(*PaybackView); ok {
		res.Payback = v
	}
	s.record(ctx, rep.Name, fmt.Sprintf("id=%d", proposalID), res.Result, time.Since(start))
	return res
}

// fetch loads one payload through the cache. The key includes a digest of
// the caller's token so users never share cached payloads.
func fetch[T any](ctx context.Context, s *ReportService, rep catalog.Report, params api.Params, isEmpty func(T) bool) query.State[T] {
	tok, _ := auth.TokenFromContext(ctx)
	key := query.Key(rep.Endpoint, params.Encode(), query.Fingerprint(tok))
	return query.Load(ctx, s.cache, key, rep.TTL(s.ttl), isEmpty, func(ctx context.Context) (T, error) {
		var out T
		err := s.api.Get(ctx, rep.Endpoint, params, &out)
		return out, err
	})
}

func settle[T any](res *Result, st query.State[T], start time.Time, view func(T) View) {
	res.Status, res.Empty, res.Err, res.FetchedAt = st.Status, st.Empty, st.Err, st.FetchedAt
	res.Message = st.Message()
	res.Cached = st.Status == query.StatusSuccess && st.FetchedAt.Before(start)
	if st.Status == query.StatusSuccess {
		res.View = view(st.Data)
	}
}

// Invalidate drops every cached payload of a report.
func (s *ReportService) Invalidate(name string) error {
	rep, err := s.catalog.Lookup(name)
	if err != nil {
		return err
	}
	s.cache.InvalidatePrefix(query.Key(rep.Endpoint, ""))
	return nil
}

func (s *ReportService) record(ctx context.Context, report, params string, res Result, d time.Duration) {
	status := models.RunSuccess
	switch {
	case res.Status == query.StatusError:
		status = models.RunError
	case res.Empty:
		status = models.RunEmpty
	}
	attrs := []any{"report", report, "params", params, "status", status, "cached", res.Cached, "duration", d}
	if res.Err != nil {
		attrs = append(attrs, "err", res.Err)
		s.log.Warn("report load failed", attrs...)
	} else {
		s.log.Info("report loaded", attrs...)
	}
	if s.db == nil {
		return
	}
	run := models.ReportRun{
		Report:     report,
		Params:     truncate(params, 1000),
		Status:     status,
		Cached:     res.Cached,
		DurationMS: d.Milliseconds(),
	}
	if sess, ok := auth.SessionFromContext(ctx); ok {
		run.User = truncate(sess.Name, 255)
	}
	if res.View != nil {
		run.Rows = res.View.Rows()
	}
	if res.Err != nil {
		run.Error = truncate(res.Err.Error(), 1000)
	}
	if err := s.db.WithContext(context.WithoutCancel(ctx)).Create(&run).Error; err != nil {
		s.log.Error("record report run", "report", report, "err", err)
	}
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
