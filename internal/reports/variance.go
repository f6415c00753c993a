package reports

import "github.com/shopspring/decimal"

// VarianceStatus classifies actual cost against the estimate.
type VarianceStatus string

const (
	StatusOver  VarianceStatus = "over"
	StatusUnder VarianceStatus = "under"
	StatusOn    VarianceStatus = "on"
)

// CostVariance compares an actual cost with its estimate. Percent is the
// variance relative to the estimate, in percent units.
type CostVariance struct {
	Actual    decimal.Decimal `json:"actual"`
	Estimated decimal.Decimal `json:"estimated"`
	Variance  decimal.Decimal `json:"variance"`
	Percent   decimal.Decimal `json:"variance_percent"`
	Status    VarianceStatus  `json:"status"`
}

// Variance computes actual - estimated and classifies it by sign. The percent
// is taken against |estimated| and is zero when nothing was estimated.
func Variance(actual, estimated decimal.Decimal) CostVariance {
	v := actual.Sub(estimated)
	return CostVariance{
		Actual:    actual,
		Estimated: estimated,
		Variance:  v,
		Percent:   PercentOf(v, estimated.Abs()).Round(4),
		Status:    classify(v),
	}
}

func classify(v decimal.Decimal) VarianceStatus {
	switch v.Sign() {
	case 1:
		return StatusOver
	case -1:
		return StatusUnder
	default:
		return StatusOn
	}
}

// WorkOrderVariance is a work order with its cost variance.
type WorkOrderVariance struct {
	WorkOrderCost
	Variance CostVariance `json:"variance"`
}

// VarianceSummary aggregates the variances of a set of work orders.
type VarianceSummary struct {
	Count int `json:"count"`
	Over  int `json:"over"`
	Under int `json:"under"`
	On    int `json:"on"`
	CostVariance
}

// DeriveWorkOrderVariances computes each work order's variance and the summary
// over all of them.
func DeriveWorkOrderVariances(orders []WorkOrderCost) ([]WorkOrderVariance, VarianceSummary) {
	rows := make([]WorkOrderVariance, 0, len(orders))
	for _, wo := range orders {
		rows = append(rows, WorkOrderVariance{
			WorkOrderCost: wo,
			Variance:      Variance(wo.ActualCost, wo.EstimatedCost),
		})
	}
	return rows, SummarizeVariances(rows)
}

// SummarizeVariances counts statuses and computes the variance of the totals.
func SummarizeVariances(rows []WorkOrderVariance) VarianceSummary {
	var s VarianceSummary
	actual, estimated := decimal.Zero, decimal.Zero
	for _, r := range rows {
		s.Count++
		switch r.Variance.Status {
		case StatusOver:
			s.Over++
		case StatusUnder:
			s.Under++
		default:
			s.On++
		}
		actual = actual.Add(r.ActualCost)
		estimated = estimated.Add(r.EstimatedCost)
	}
	s.CostVariance = Variance(actual, estimated)
	return s
}
