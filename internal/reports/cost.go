package reports

import "github.com/shopspring/decimal"

// AverageCost returns totalValue / quantity, or zero when quantity is zero.
func AverageCost(totalValue, quantity decimal.Decimal) decimal.Decimal {
	return safeDiv(totalValue, quantity).Round(4)
}

// ValuedStockLine is a stock position with its average unit cost.
type ValuedStockLine struct {
	StockLine
	AverageCost decimal.Decimal `json:"average_cost"`
}

// InventoryValuation is the derived view of an inventory valuation report.
type InventoryValuation struct {
	Lines         []ValuedStockLine `json:"lines"`
	TotalQuantity decimal.Decimal   `json:"total_quantity"`
	TotalValue    decimal.Decimal   `json:"total_value"`
	AverageCost   decimal.Decimal   `json:"average_cost"`
}

// ValueInventory derives the average cost of each line and of the whole stock.
func ValueInventory(lines []StockLine) InventoryValuation {
	out := InventoryValuation{Lines: make([]ValuedStockLine, 0, len(lines))}
	for _, l := range lines {
		out.Lines = append(out.Lines, ValuedStockLine{
			StockLine:   l,
			AverageCost: AverageCost(l.TotalValue, l.Quantity),
		})
		out.TotalQuantity = out.TotalQuantity.Add(l.Quantity)
		out.TotalValue = out.TotalValue.Add(l.TotalValue)
	}
	out.AverageCost = AverageCost(out.TotalValue, out.TotalQuantity)
	return out
}

// COGSAnalysis cross-checks the server's cost of goods sold against the
// inventory equation and derives gross margin from the server figure.
type COGSAnalysis struct {
	COGSReport
	ComputedCOGS       decimal.Decimal `json:"computed_cogs"`
	Difference         decimal.Decimal `json:"difference"`
	Matches            bool            `json:"matches"`
	GrossProfit        decimal.Decimal `json:"gross_profit"`
	GrossMarginPercent decimal.Decimal `json:"gross_margin_percent"`
}

// DeriveCOGS computes opening + purchases - closing and the gross margin.
func DeriveCOGS(r COGSReport) COGSAnalysis {
	computed := r.OpeningInventory.Add(r.Purchases).Sub(r.ClosingInventory)
	diff := r.COGS.Sub(computed)
	profit := r.Revenue.Sub(r.COGS)
	return COGSAnalysis{
		COGSReport:         r,
		ComputedCOGS:       computed,
		Difference:         diff,
		Matches:            diff.Round(2).IsZero(),
		GrossProfit:        profit,
		GrossMarginPercent: PercentOf(profit, r.Revenue).Round(4),
	}
}
