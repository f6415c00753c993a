package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/diewo77/erp-reports/format"
	"github.com/diewo77/erp-reports/i18n"
	"github.com/diewo77/erp-reports/internal/export"
	"github.com/diewo77/erp-reports/internal/reports"
)

// View is the derived, render-ready form of a report payload.
type View interface {
	// Rows is the number of detail lines, used by the run log.
	Rows() int
	// Table flattens the view for CSV, PDF and terminal output.
	Table(f *format.Formatter, lang string) export.Table
}

func period(f *format.Formatter, p reports.Period) string {
	if p.Start.IsZero() && p.End.IsZero() {
		return ""
	}
	return f.Date(p.Start) + " - " + f.Date(p.End)
}

// VATView is the monthly VAT report with its quarterly rollup.
type VATView struct {
	Report    reports.VATReport
	Months    []reports.MonthlyVAT
	Quarterly reports.QuarterlyVAT
}

// NewVATView sorts months and derives the quarters.
func NewVATView(r reports.VATReport) *VATView {
	months := append([]reports.MonthlyVAT(nil), r.Months...)
	sort.SliceStable(months, func(i, j int) bool { return months[i].Month < months[j].Month })
	return &VATView{Report: r, Months: months, Quarterly: reports.RollupQuarters(r.Months)}
}

func (v *VATView) Rows() int { return len(v.Months) }

func (v *VATView) Table(f *format.Formatter, lang string) export.Table {
	t := export.Table{
		Title:    i18n.T(lang, "report.vat-monthly"),
		Subtitle: fmt.Sprintf("%s %d", i18n.T(lang, "year"), v.Report.Year),
		Headers:  []string{i18n.T(lang, "month"), i18n.T(lang, "output_vat"), i18n.T(lang, "input_vat"), i18n.T(lang, "net_vat")},
		Align:    []export.Align{export.Left, export.Right, export.Right, export.Right},
	}
	for _, m := range v.Months {
		t.Rows = append(t.Rows, []string{monthName(m.Month), f.Currency(m.Output), f.Currency(m.Input), f.Currency(m.Net)})
	}
	for _, q := range v.Quarterly.Quarters {
		label := fmt.Sprintf("Q%d (%s-%s)", q.Quarter, monthName(q.Months[0]), monthName(q.Months[2]))
		t.Rows = append(t.Rows, []string{label, f.Currency(q.Output), f.Currency(q.Input), f.Currency(q.Net)})
	}
	a := v.Quarterly.Annual
	t.Footer = []string{i18n.T(lang, "total"), f.Currency(a.Output), f.Currency(a.Input), f.Currency(a.Net)}
	return t
}

func monthName(m int) string {
	if m < 1 || m > 12 {
		return format.Placeholder
	}
	return time.Month(m).String()[:3]
}

// AgingView is an AR or AP aging report bucketed per contact.
type AgingView struct {
	Report  reports.AgingReport
	Summary reports.AgingSummary
	Title   string
}

// NewAgingView buckets the open items as of the payload date, or asOf when
// the payload has none.
func NewAgingView(name string, r reports.AgingReport, asOf time.Time) *AgingView {
	if !r.AsOf.IsZero() {
		asOf = r.AsOf.Time
	}
	return &AgingView{Report: r, Summary: reports.AgeItems(asOf, r.Items), Title: "report." + name}
}

func (v *AgingView) Rows() int { return len(v.Report.Items) }

func (v *AgingView) Table(f *format.Formatter, lang string) export.Table {
	t := export.Table{
		Title:    i18n.T(lang, v.Title),
		Subtitle: i18n.T(lang, "as_of") + " " + f.Date(v.Summary.AsOf),
		Headers:  []string{i18n.T(lang, "contact"), i18n.T(lang, "current"), "1-30", "31-60", "61-90", "90+", i18n.T(lang, "total")},
		Align:    []export.Align{export.Left, export.Right, export.Right, export.Right, export.Right, export.Right, export.Right},
	}
	row := func(label string, b reports.AgingBuckets) []string {
		out := []string{label}
		for _, bucket := range reports.Buckets {
			out = append(out, f.Currency(b.Get(bucket)))
		}
		return append(out, f.Currency(b.Total))
	}
	for _, r := range v.Summary.Rows {
		t.Rows = append(t.Rows, row(r.ContactName, r.AgingBuckets))
	}
	t.Footer = row(i18n.T(lang, "total"), v.Summary.Totals)
	return t
}

// VarianceView is the work order cost variance report.
type VarianceView struct {
	Report  reports.WorkOrderCostReport
	Lines   []reports.WorkOrderVariance
	Summary reports.VarianceSummary
}

// NewVarianceView derives per-order and total variance.
func NewVarianceView(r reports.WorkOrderCostReport) *VarianceView {
	rows, sum := reports.DeriveWorkOrderVariances(r.WorkOrders)
	return &VarianceView{Report: r, Lines: rows, Summary: sum}
}

func (v *VarianceView) Rows() int { return len(v.Lines) }

func (v *VarianceView) Table(f *format.Formatter, lang string) export.Table {
	t := export.Table{
		Title:    i18n.T(lang, "report.work-order-costs"),
		Subtitle: period(f, v.Report.Period),
		Headers: []string{i18n.T(lang, "work_order"), i18n.T(lang, "product"), i18n.T(lang, "estimated"),
			i18n.T(lang, "actual"), i18n.T(lang, "variance"), "%", i18n.T(lang, "status")},
		Align: []export.Align{export.Left, export.Left, export.Right, export.Right, export.Right, export.Right, export.Left},
	}
	for _, r := range v.Lines {
		t.Rows = append(t.Rows, []string{r.Number, r.Product, f.Currency(r.EstimatedCost), f.Currency(r.ActualCost),
			f.Currency(r.Variance.Variance), f.Percent(r.Variance.Percent), i18n.T(lang, string(r.Variance.Status))})
	}
	s := v.Summary
	t.Footer = []string{i18n.T(lang, "total"), "", f.Currency(s.Estimated), f.Currency(s.Actual),
		f.Currency(s.Variance), f.Percent(s.Percent), i18n.T(lang, string(s.Status))}
	t.Notes = []string{fmt.Sprintf("%s: %d  %s: %d  %s: %d",
		i18n.T(lang, "over"), s.Over, i18n.T(lang, "under"), s.Under, i18n.T(lang, "on"), s.On)}
	return t
}

// InventoryView is the inventory valuation with average costs.
type InventoryView struct {
	Report    reports.InventoryReport
	Valuation reports.InventoryValuation
}

// NewInventoryView derives average unit costs.
func NewInventoryView(r reports.InventoryReport) *InventoryView {
	return &InventoryView{Report: r, Valuation: reports.ValueInventory(r.Items)}
}

func (v *InventoryView) Rows() int { return len(v.Valuation.Lines) }

func (v *InventoryView) Table(f *format.Formatter, lang string) export.Table {
	t := export.Table{
		Title: i18n.T(lang, "report.inventory-valuation"),
		Headers: []string{"SKU", i18n.T(lang, "item"), i18n.T(lang, "warehouse"), i18n.T(lang, "quantity"),
			i18n.T(lang, "value"), i18n.T(lang, "average_cost")},
		Align: []export.Align{export.Left, export.Left, export.Left, export.Right, export.Right, export.Right},
	}
	if !v.Report.AsOf.IsZero() {
		t.Subtitle = i18n.T(lang, "as_of") + " " + f.Date(v.Report.AsOf)
	}
	for _, l := range v.Valuation.Lines {
		t.Rows = append(t.Rows, []string{l.SKU, l.Name, l.Warehouse, f.Number(l.Quantity, 2),
			f.Currency(l.TotalValue), f.Currency(l.AverageCost)})
	}
	t.Footer = []string{i18n.T(lang, "total"), "", "", f.Number(v.Valuation.TotalQuantity, 2),
		f.Currency(v.Valuation.TotalValue), f.Currency(v.Valuation.AverageCost)}
	return t
}

// COGSView is the cost of goods sold statement.
type COGSView struct {
	Analysis reports.COGSAnalysis
}

// NewCOGSView cross-checks the server figure.
func NewCOGSView(r reports.COGSReport) *COGSView {
	return &COGSView{Analysis: reports.DeriveCOGS(r)}
}

func (v *COGSView) Rows() int { return 1 }

func (v *COGSView) Table(f *format.Formatter, lang string) export.Table {
	a := v.Analysis
	t := export.Table{
		Title:    i18n.T(lang, "report.cogs"),
		Subtitle: period(f, a.Period),
		Headers:  []string{"", i18n.T(lang, "value")},
		Align:    []export.Align{export.Left, export.Right},
		Rows: [][]string{
			{i18n.T(lang, "revenue"), f.Currency(a.Revenue)},
			{i18n.T(lang, "opening_inventory"), f.Currency(a.OpeningInventory)},
			{i18n.T(lang, "purchases"), f.Currency(a.Purchases)},
			{i18n.T(lang, "closing_inventory"), f.Currency(a.ClosingInventory)},
			{i18n.T(lang, "cogs"), f.Currency(a.COGS)},
			{i18n.T(lang, "computed_cogs"), f.Currency(a.ComputedCOGS)},
			{i18n.T(lang, "gross_profit"), f.Currency(a.GrossProfit)},
			{i18n.T(lang, "gross_margin"), f.Percent(a.GrossMarginPercent)},
		},
	}
	if !a.Matches {
		t.Notes = []string{i18n.T(lang, "cogs_mismatch") + ": " + f.Currency(a.Difference)}
	}
	return t
}

// TrialBalanceView displays the trial balance as supplied.
type TrialBalanceView struct {
	reports.TrialBalance
}

func (v *TrialBalanceView) Rows() int { return len(v.Accounts) }

func (v *TrialBalanceView) Table(f *format.Formatter, lang string) export.Table {
	t := export.Table{
		Title:    i18n.T(lang, "report.trial-balance"),
		Subtitle: period(f, v.Period),
		Headers:  []string{i18n.T(lang, "code"), i18n.T(lang, "account"), i18n.T(lang, "debit"), i18n.T(lang, "credit")},
		Align:    []export.Align{export.Left, export.Left, export.Right, export.Right},
	}
	for _, a := range v.Accounts {
		t.Rows = append(t.Rows, []string{a.Code, a.Name, amountOrBlank(f, a.Debit.IsZero(), a.Debit), amountOrBlank(f, a.Credit.IsZero(), a.Credit)})
	}
	t.Footer = []string{i18n.T(lang, "total"), "", f.Currency(v.TotalDebit), f.Currency(v.TotalCredit)}
	if v.IsBalanced {
		t.Notes = []string{i18n.T(lang, "balanced")}
	} else {
		t.Notes = []string{i18n.T(lang, "not_balanced")}
	}
	return t
}

func amountOrBlank(f *format.Formatter, zero bool, v any) string {
	if zero {
		return ""
	}
	return f.Currency(v)
}

// PaybackView is the cumulative cash flow of a solar proposal.
type PaybackView struct {
	Proposal reports.SolarProposal
	Series   reports.PaybackSeries
}

// NewPaybackView projects savings when needed and runs the cash flow.
func NewPaybackView(p reports.SolarProposal) *PaybackView {
	return &PaybackView{Proposal: p, Series: reports.Payback(p.Investment, p.SavingsSeries())}
}

func (v *PaybackView) Rows() int { return len(v.Series.Cumulative) }

func (v *PaybackView) Table(f *format.Formatter, lang string) export.Table {
	t := export.Table{
		Title:    i18n.T(lang, "report.solar-payback") + " " + v.Proposal.ProposalNo,
		Subtitle: v.Proposal.CustomerName,
		Headers:  []string{i18n.T(lang, "year"), i18n.T(lang, "savings"), i18n.T(lang, "cumulative")},
		Align:    []export.Align{export.Left, export.Right, export.Right},
	}
	t.Rows = append(t.Rows, []string{"0", f.Currency(v.Series.Investment.Neg()), f.Currency(v.Series.Investment.Neg())})
	for i, c := range v.Series.Cumulative {
		t.Rows = append(t.Rows, []string{fmt.Sprint(i + 1), f.Currency(v.Series.Savings[i]), f.Currency(c)})
	}
	if year, ok := v.Series.BreakEvenPeriod(); ok {
		t.Notes = []string{fmt.Sprintf("%s: %d", i18n.T(lang, "break_even"), year)}
	} else {
		t.Notes = []string{i18n.T(lang, "no_break_even")}
	}
	return t
}
