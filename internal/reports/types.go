// Package reports holds the payload shapes returned by the ERP report API and
// the pure derivations computed from them before rendering.
//
// The backend owns every business rule. Nothing here validates or rebalances
// a payload: missing fields decode to zero and derivations substitute safe
// defaults instead of failing, so a sparse report still renders.
package reports

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Period is the date window echoed back by the API.
type Period struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Date decodes the API's date fields, which arrive as "YYYY-MM-DD", RFC 3339
// timestamps, empty strings or null.
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ISO returns YYYY-MM-DD, or "" for the zero date.
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format("2006-01-02"))
}

// MonthlyVAT is one month of the VAT report.
type MonthlyVAT struct {
	Month  int             `json:"month"`
	Output decimal.Decimal `json:"output_vat"`
	Input  decimal.Decimal `json:"input_vat"`
	Net    decimal.Decimal `json:"net_vat"`
}

// VATReport is the payload of vat-monthly.
type VATReport struct {
	ReportName string       `json:"report_name"`
	Year       int          `json:"year"`
	Months     []MonthlyVAT `json:"months"`
}

// OpenItem is an outstanding receivable or payable document.
type OpenItem struct {
	ContactID    int64           `json:"contact_id"`
	ContactName  string          `json:"contact_name"`
	DocumentNo   string          `json:"document_no"`
	DocumentDate Date            `json:"document_date"`
	DueDate      Date            `json:"due_date"`
	Outstanding  decimal.Decimal `json:"outstanding"`
}

// AgingReport is the payload of ar-aging and ap-aging.
type AgingReport struct {
	ReportName string     `json:"report_name"`
	AsOf       Date       `json:"as_of"`
	Items      []OpenItem `json:"items"`
}

// WorkOrderCost pairs the estimated and actual cost of a manufacturing work order.
type WorkOrderCost struct {
	ID            int64           `json:"id"`
	Number        string          `json:"number"`
	Product       string          `json:"product"`
	Status        string          `json:"status"`
	Quantity      decimal.Decimal `json:"quantity"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
	ActualCost    decimal.Decimal `json:"actual_cost"`
}

// WorkOrderCostReport is the payload of work-order-costs.
type WorkOrderCostReport struct {
	ReportName string          `json:"report_name"`
	Period     Period          `json:"period"`
	WorkOrders []WorkOrderCost `json:"work_orders"`
}

// StockLine is one item/warehouse position of the inventory valuation.
type StockLine struct {
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Warehouse  string          `json:"warehouse"`
	Unit       string          `json:"unit"`
	Quantity   decimal.Decimal `json:"quantity"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// InventoryReport is the payload of inventory-valuation.
type InventoryReport struct {
	ReportName string      `json:"report_name"`
	AsOf       Date        `json:"as_of"`
	Items      []StockLine `json:"items"`
}

// COGSReport is the payload of cogs. COGS is the figure computed server side.
type COGSReport struct {
	ReportName       string          `json:"report_name"`
	Period           Period          `json:"period"`
	Revenue          decimal.Decimal `json:"revenue"`
	OpeningInventory decimal.Decimal `json:"opening_inventory"`
	Purchases        decimal.Decimal `json:"purchases"`
	ClosingInventory decimal.Decimal `json:"closing_inventory"`
	COGS             decimal.Decimal `json:"cogs"`
}

// Account is one line of the trial balance.
type Account struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
}

// TrialBalance is the payload of trial-balance. IsBalanced is decided by the
// backend and only displayed here.
type TrialBalance struct {
	ReportName  string          `json:"report_name"`
	Period      Period          `json:"period"`
	Accounts    []Account       `json:"accounts"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	IsBalanced  bool            `json:"is_balanced"`
}

// SolarProposal carries the financial inputs of a solar sales proposal.
// DegradationRate is in percent per year.
type SolarProposal struct {
	ID              int64             `json:"id"`
	ProposalNo      string            `json:"proposal_no"`
	CustomerName    string            `json:"customer_name"`
	SystemSizeKW    decimal.Decimal   `json:"system_size_kw"`
	Investment      decimal.Decimal   `json:"total_investment"`
	AnnualSavings   decimal.Decimal   `json:"annual_savings"`
	DegradationRate decimal.Decimal   `json:"degradation_rate"`
	Years           int               `json:"analysis_years"`
	YearlySavings   []decimal.Decimal `json:"yearly_savings"`
}

// DefaultAnalysisYears is used when a proposal does not say how far to project.
const DefaultAnalysisYears = 25

// SavingsSeries returns the per-year savings, projecting them from the annual
// figure when the backend did not send an explicit series.
func (p SolarProposal) SavingsSeries() []decimal.Decimal {
	if len(p.YearlySavings) > 0 {
		return p.YearlySavings
	}
	years := p.Years
	if years <= 0 {
		years = DefaultAnalysisYears
	}
	return ProjectSavings(p.AnnualSavings, p.DegradationRate, years)
}

var hundred = decimal.NewFromInt(100)

// safeDiv returns a/b, or zero when b is zero.
func safeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

// PercentOf returns part/whole expressed in percent, or zero when whole is zero.
func PercentOf(part, whole decimal.Decimal) decimal.Decimal {
	return safeDiv(part.Mul(hundred), whole)
}
