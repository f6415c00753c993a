package reports

import "github.com/shopspring/decimal"

// quarterMonths fixes quarter membership by calendar month number.
var quarterMonths = [4][3]int{
	{1, 2, 3},
	{4, 5, 6},
	{7, 8, 9},
	{10, 11, 12},
}

// QuarterOf returns the quarter (1-4) of a month number, or 0 when the month
// is outside 1-12.
func QuarterOf(month int) int {
	for q, months := range quarterMonths {
		for _, m := range months {
			if m == month {
				return q + 1
			}
		}
	}
	return 0
}

// VATTotals sums the three VAT metrics.
type VATTotals struct {
	Output decimal.Decimal `json:"output_vat"`
	Input  decimal.Decimal `json:"input_vat"`
	Net    decimal.Decimal `json:"net_vat"`
}

func (t *VATTotals) add(m MonthlyVAT) {
	t.Output = t.Output.Add(m.Output)
	t.Input = t.Input.Add(m.Input)
	t.Net = t.Net.Add(m.Net)
}

// QuarterVAT is the rollup of one quarter.
type QuarterVAT struct {
	Quarter int    `json:"quarter"`
	Months  [3]int `json:"months"`
	VATTotals
}

// QuarterlyVAT is the four-quarter view of a VAT year.
type QuarterlyVAT struct {
	Quarters [4]QuarterVAT `json:"quarters"`
	Annual   VATTotals     `json:"annual"`
}

// RollupQuarters partitions monthly VAT records into the four fixed quarters
// and sums each metric. Input order does not matter; records with a month
// outside 1-12 are ignored, so Annual always equals the sum of the quarters.
func RollupQuarters(months []MonthlyVAT) QuarterlyVAT {
	var out QuarterlyVAT
	for i := range out.Quarters {
		out.Quarters[i].Quarter = i + 1
		out.Quarters[i].Months = quarterMonths[i]
	}
	for _, m := range months {
		q := QuarterOf(m.Month)
		if q == 0 {
			continue
		}
		out.Quarters[q-1].add(m)
	}
	for _, q := range out.Quarters {
		out.Annual.Output = out.Annual.Output.Add(q.Output)
		out.Annual.Input = out.Annual.Input.Add(q.Input)
		out.Annual.Net = out.Annual.Net.Add(q.Net)
	}
	return out
}
