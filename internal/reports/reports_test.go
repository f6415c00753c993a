package reports

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decs(vals ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vals))
	for i, v := range vals {
		out[i] = d(v)
	}
	return out
}

func TestRollupQuarters(t *testing.T) {
	var months []MonthlyVAT
	// reverse order to show input order does not matter
	for m := 12; m >= 1; m-- {
		months = append(months, MonthlyVAT{Month: m, Output: d("100"), Input: d("40"), Net: d("60")})
	}
	q := RollupQuarters(months)
	for i, qt := range q.Quarters {
		if qt.Quarter != i+1 {
			t.Fatalf("quarter %d numbered %d", i, qt.Quarter)
		}
		if !qt.Output.Equal(d("300")) || !qt.Input.Equal(d("120")) || !qt.Net.Equal(d("180")) {
			t.Errorf("Q%d = %s/%s/%s", qt.Quarter, qt.Output, qt.Input, qt.Net)
		}
	}
	if !q.Annual.Output.Equal(d("1200")) || !q.Annual.Net.Equal(d("720")) {
		t.Errorf("annual = %+v", q.Annual)
	}
}

func TestRollupQuartersSparseAndInvalid(t *testing.T) {
	q := RollupQuarters([]MonthlyVAT{
		{Month: 2, Output: d("10.5"), Input: d("3"), Net: d("7.5")},
		{Month: 11, Output: d("1"), Input: d("2"), Net: d("-1")},
		{Month: 13, Output: d("999")},
		{Month: 0, Output: d("999")},
	})
	if !q.Quarters[0].Output.Equal(d("10.5")) {
		t.Errorf("Q1 output = %s", q.Quarters[0].Output)
	}
	if !q.Quarters[1].Output.IsZero() || !q.Quarters[2].Output.IsZero() {
		t.Errorf("empty quarters should be zero: %+v", q.Quarters)
	}
	if !q.Quarters[3].Net.Equal(d("-1")) {
		t.Errorf("Q4 net = %s", q.Quarters[3].Net)
	}
	sum := decimal.Zero
	for _, qt := range q.Quarters {
		sum = sum.Add(qt.Output)
	}
	if !q.Annual.Output.Equal(sum) || !sum.Equal(d("11.5")) {
		t.Errorf("annual %s, sum of quarters %s", q.Annual.Output, sum)
	}
}

func TestQuarterOf(t *testing.T) {
	cases := map[int]int{1: 1, 3: 1, 4: 2, 6: 2, 7: 3, 9: 3, 10: 4, 12: 4, 0: 0, 13: 0, -1: 0}
	for m, want := range cases {
		if got := QuarterOf(m); got != want {
			t.Errorf("QuarterOf(%d) = %d, want %d", m, got, want)
		}
	}
}

func TestPayback(t *testing.T) {
	tests := []struct {
		name       string
		investment string
		savings    []string
		cumulative []string
		breakEven  int
		ok         bool
	}{
		{"reaches break-even", "1000", []string{"300", "300", "300", "300"}, []string{"-700", "-400", "-100", "200"}, 4, true},
		{"never recovers", "1000", []string{"100", "100"}, []string{"-900", "-800"}, 0, false},
		{"exact zero counts", "600", []string{"300", "300", "300"}, []string{"-300", "0", "300"}, 2, true},
		{"no investment", "0", []string{"50"}, []string{"50"}, 1, true},
		{"negative investment treated as outlay", "-100", []string{"60", "60"}, []string{"-40", "20"}, 2, true},
		{"empty series", "1000", nil, nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Payback(d(tt.investment), decs(tt.savings...))
			if len(p.Cumulative) != len(tt.cumulative) {
				t.Fatalf("len = %d, want %d", len(p.Cumulative), len(tt.cumulative))
			}
			for i, want := range tt.cumulative {
				if !p.Cumulative[i].Equal(d(want)) {
					t.Errorf("cumulative[%d] = %s, want %s", i, p.Cumulative[i], want)
				}
			}
			period, ok := p.BreakEvenPeriod()
			if ok != tt.ok || period != tt.breakEven {
				t.Errorf("break-even = (%d, %v), want (%d, %v)", period, ok, tt.breakEven, tt.ok)
			}
		})
	}
}

func TestPaybackFirstNonNegativeOnly(t *testing.T) {
	// dips negative again after break-even; the first crossing wins
	p := Payback(d("100"), decs("150", "-200", "300"))
	if p.BreakEven != 1 {
		t.Fatalf("break-even = %d, want 1", p.BreakEven)
	}
	if !p.Cumulative[1].Equal(d("-150")) {
		t.Errorf("cumulative[1] = %s", p.Cumulative[1])
	}
}

func TestProjectSavings(t *testing.T) {
	got := ProjectSavings(d("1000"), d("10"), 3)
	want := decs("1000", "900", "810")
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("year %d = %s, want %s", i+1, got[i], want[i])
		}
	}
	if ProjectSavings(d("1000"), d("0"), 0) != nil {
		t.Error("zero years should be nil")
	}
	flat := ProjectSavings(d("500"), decimal.Zero, 2)
	if !flat[1].Equal(d("500")) {
		t.Errorf("no degradation year 2 = %s", flat[1])
	}
	over := ProjectSavings(d("500"), d("150"), 2)
	if !over[1].IsZero() {
		t.Errorf("degradation over 100%% year 2 = %s", over[1])
	}
}

func TestSolarProposalSavingsSeries(t *testing.T) {
	explicit := SolarProposal{YearlySavings: decs("1", "2")}
	if len(explicit.SavingsSeries()) != 2 {
		t.Fatal("explicit series should be returned as-is")
	}
	projected := SolarProposal{AnnualSavings: d("100")}
	if n := len(projected.SavingsSeries()); n != DefaultAnalysisYears {
		t.Fatalf("projected years = %d", n)
	}
}

func TestVariance(t *testing.T) {
	tests := []struct {
		actual, estimated string
		variance, percent string
		status            VarianceStatus
	}{
		{"120", "100", "20", "20", StatusOver},
		{"80", "100", "-20", "-20", StatusUnder},
		{"100", "100", "0", "0", StatusOn},
		{"50", "0", "50", "0", StatusOver},
		{"0", "0", "0", "0", StatusOn},
		{"1", "3", "-2", "-66.6667", StatusUnder},
	}
	for _, tt := range tests {
		v := Variance(d(tt.actual), d(tt.estimated))
		if !v.Variance.Equal(d(tt.variance)) {
			t.Errorf("Variance(%s,%s).Variance = %s, want %s", tt.actual, tt.estimated, v.Variance, tt.variance)
		}
		if !v.Percent.Equal(d(tt.percent)) {
			t.Errorf("Variance(%s,%s).Percent = %s, want %s", tt.actual, tt.estimated, v.Percent, tt.percent)
		}
		if v.Status != tt.status {
			t.Errorf("Variance(%s,%s).Status = %s, want %s", tt.actual, tt.estimated, v.Status, tt.status)
		}
	}
}

func TestDeriveWorkOrderVariances(t *testing.T) {
	rows, sum := DeriveWorkOrderVariances([]WorkOrderCost{
		{Number: "WO-1", EstimatedCost: d("100"), ActualCost: d("120")},
		{Number: "WO-2", EstimatedCost: d("200"), ActualCost: d("150")},
		{Number: "WO-3", EstimatedCost: d("50"), ActualCost: d("50")},
	})
	if len(rows) != 3 || rows[0].Variance.Status != StatusOver || rows[1].Variance.Status != StatusUnder {
		t.Fatalf("rows = %+v", rows)
	}
	if sum.Count != 3 || sum.Over != 1 || sum.Under != 1 || sum.On != 1 {
		t.Errorf("counts = %+v", sum)
	}
	if !sum.Variance.Equal(d("-30")) || sum.Status != StatusUnder {
		t.Errorf("summary variance = %s (%s)", sum.Variance, sum.Status)
	}
	if !sum.Percent.Equal(d("-8.5714")) {
		t.Errorf("summary percent = %s", sum.Percent)
	}

	_, empty := DeriveWorkOrderVariances(nil)
	if empty.Count != 0 || empty.Status != StatusOn || !empty.Percent.IsZero() {
		t.Errorf("empty summary = %+v", empty)
	}
}

func TestAverageCost(t *testing.T) {
	if got := AverageCost(d("1000"), d("10")); !got.Equal(d("100")) {
		t.Errorf("AverageCost = %s", got)
	}
	if got := AverageCost(d("1000"), decimal.Zero); !got.IsZero() {
		t.Errorf("zero quantity = %s", got)
	}
	if got := AverageCost(d("10"), d("3")); !got.Equal(d("3.3333")) {
		t.Errorf("AverageCost(10,3) = %s", got)
	}
}

func TestValueInventory(t *testing.T) {
	v := ValueInventory([]StockLine{
		{SKU: "A", Quantity: d("10"), TotalValue: d("1000")},
		{SKU: "B", Quantity: d("0"), TotalValue: d("0")},
		{SKU: "C", Quantity: d("30"), TotalValue: d("600")},
	})
	if !v.Lines[0].AverageCost.Equal(d("100")) || !v.Lines[1].AverageCost.IsZero() || !v.Lines[2].AverageCost.Equal(d("20")) {
		t.Errorf("line costs = %s %s %s", v.Lines[0].AverageCost, v.Lines[1].AverageCost, v.Lines[2].AverageCost)
	}
	if !v.TotalQuantity.Equal(d("40")) || !v.TotalValue.Equal(d("1600")) || !v.AverageCost.Equal(d("40")) {
		t.Errorf("totals = %s / %s / %s", v.TotalQuantity, v.TotalValue, v.AverageCost)
	}
}

func TestDeriveCOGS(t *testing.T) {
	a := DeriveCOGS(COGSReport{
		Revenue:          d("10000"),
		OpeningInventory: d("2000"),
		Purchases:        d("5000"),
		ClosingInventory: d("1500"),
		COGS:             d("5500"),
	})
	if !a.ComputedCOGS.Equal(d("5500")) || !a.Matches {
		t.Errorf("computed = %s matches = %v", a.ComputedCOGS, a.Matches)
	}
	if !a.GrossProfit.Equal(d("4500")) || !a.GrossMarginPercent.Equal(d("45")) {
		t.Errorf("profit = %s margin = %s", a.GrossProfit, a.GrossMarginPercent)
	}

	off := DeriveCOGS(COGSReport{OpeningInventory: d("100"), COGS: d("90")})
	if off.Matches || !off.Difference.Equal(d("-10")) {
		t.Errorf("mismatch not flagged: %+v", off)
	}
	if !off.GrossMarginPercent.IsZero() {
		t.Errorf("zero revenue margin = %s", off.GrossMarginPercent)
	}
}

func TestBucketFor(t *testing.T) {
	cases := []struct {
		days int
		want Bucket
	}{
		{-5, BucketCurrent}, {0, BucketCurrent}, {1, Bucket1To30}, {30, Bucket1To30},
		{31, Bucket31To60}, {60, Bucket31To60}, {61, Bucket61To90}, {90, Bucket61To90}, {91, BucketOver90},
	}
	for _, c := range cases {
		if got := BucketFor(c.days); got != c.want {
			t.Errorf("BucketFor(%d) = %s, want %s", c.days, got, c.want)
		}
	}
}

func TestAgeItems(t *testing.T) {
	asOf := time.Date(2024, 6, 30, 15, 0, 0, 0, time.UTC)
	items := []OpenItem{
		{ContactID: 2, ContactName: "Zeta", DueDate: NewDate(2024, 7, 15), Outstanding: d("100")},
		{ContactID: 1, ContactName: "Acme", DueDate: NewDate(2024, 6, 20), Outstanding: d("50")},
		{ContactID: 1, ContactName: "Acme", DueDate: NewDate(2024, 3, 1), Outstanding: d("25")},
		{ContactID: 2, ContactName: "Zeta", DueDate: NewDate(2024, 5, 1), Outstanding: d("10")},
		{ContactID: 3, ContactName: "Beta", Outstanding: d("5")},
	}
	s := AgeItems(asOf, items)
	if len(s.Rows) != 3 || s.Rows[0].ContactName != "Acme" || s.Rows[1].ContactName != "Beta" || s.Rows[2].ContactName != "Zeta" {
		t.Fatalf("rows = %+v", s.Rows)
	}
	acme := s.Rows[0]
	if acme.Documents != 2 || !acme.Days1To30.Equal(d("50")) || !acme.Over90.Equal(d("25")) || !acme.Total.Equal(d("75")) {
		t.Errorf("acme = %+v", acme)
	}
	if !s.Rows[1].Current.Equal(d("5")) {
		t.Errorf("missing due date should be current: %+v", s.Rows[1])
	}
	zeta := s.Rows[2]
	if !zeta.Current.Equal(d("100")) || !zeta.Days31To60.Equal(d("10")) {
		t.Errorf("zeta = %+v", zeta)
	}
	if !s.Totals.Total.Equal(d("190")) {
		t.Errorf("grand total = %s", s.Totals.Total)
	}
	sum := decimal.Zero
	for _, b := range Buckets {
		sum = sum.Add(s.Totals.Get(b))
	}
	if !sum.Equal(s.Totals.Total) {
		t.Errorf("buckets sum %s != total %s", sum, s.Totals.Total)
	}
}

func TestDateJSON(t *testing.T) {
	var p Period
	if err := json.Unmarshal([]byte(`{"start":"2024-01-01","end":"2024-01-31T00:00:00Z"}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.Start.Format("2006-01-02") != "2024-01-01" || p.End.Day() != 31 {
		t.Errorf("period = %+v", p)
	}
	var empty Period
	if err := json.Unmarshal([]byte(`{"start":null,"end":""}`), &empty); err != nil {
		t.Fatal(err)
	}
	if !empty.Start.IsZero() || !empty.End.IsZero() {
		t.Errorf("empty = %+v", empty)
	}
	if err := json.Unmarshal([]byte(`{"start":"31/01/2024"}`), &empty); err == nil {
		t.Error("expected error for unknown layout")
	}
	b, _ := json.Marshal(Period{Start: NewDate(2024, 2, 3)})
	if string(b) != `{"start":"2024-02-03","end":null}` {
		t.Errorf("marshal = %s", b)
	}
}

func TestTrialBalanceDecode(t *testing.T) {
	raw := `{"report_name":"Trial Balance","period":{"start":"2024-01-01","end":"2024-12-31"},
	"accounts":[{"code":"1000","name":"Cash","debit":"500.00","credit":0}],
	"total_debit":500,"total_credit":"500.00","is_balanced":true}`
	var tb TrialBalance
	if err := json.Unmarshal([]byte(raw), &tb); err != nil {
		t.Fatal(err)
	}
	if !tb.IsBalanced || !tb.TotalDebit.Equal(tb.TotalCredit) || len(tb.Accounts) != 1 {
		t.Errorf("tb = %+v", tb)
	}
}
