package reports

import "github.com/shopspring/decimal"

// PaybackSeries is the cumulative cash-flow projection behind payback charts.
type PaybackSeries struct {
	Investment decimal.Decimal   `json:"investment"`
	Savings    []decimal.Decimal `json:"savings"`
	Cumulative []decimal.Decimal `json:"cumulative"`
	// BreakEven is the 1-based period of the first non-negative running
	// total. It is meaningful only when HasBreakEven is true.
	BreakEven    int  `json:"break_even_period,omitempty"`
	HasBreakEven bool `json:"has_break_even"`
}

// BreakEvenPeriod returns the payback period and whether it occurs within the series.
func (p PaybackSeries) BreakEvenPeriod() (int, bool) {
	return p.BreakEven, p.HasBreakEven
}

// Payback runs the cumulative cash flow starting at -investment and adds each
// period's savings. The sign of investment is ignored: it is always an outlay.
func Payback(investment decimal.Decimal, savings []decimal.Decimal) PaybackSeries {
	out := PaybackSeries{
		Investment: investment.Abs(),
		Savings:    savings,
		Cumulative: make([]decimal.Decimal, len(savings)),
	}
	running := investment.Abs().Neg()
	for i, s := range savings {
		running = running.Add(s)
		out.Cumulative[i] = running
		if !out.HasBreakEven && !running.IsNegative() {
			out.BreakEven = i + 1
			out.HasBreakEven = true
		}
	}
	return out
}

// ProjectSavings builds a per-year savings series from a first-year figure
// that shrinks by degradationPct percent each following year. Amounts are
// rounded to two decimals per year.
func ProjectSavings(annual, degradationPct decimal.Decimal, years int) []decimal.Decimal {
	if years <= 0 {
		return nil
	}
	factor := decimal.NewFromInt(1).Sub(degradationPct.Div(hundred))
	if factor.IsNegative() {
		factor = decimal.Zero
	}
	out := make([]decimal.Decimal, years)
	current := annual
	for y := 0; y < years; y++ {
		out[y] = current.Round(2)
		current = current.Mul(factor).Round(6)
	}
	return out
}
