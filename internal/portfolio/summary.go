// internal/portfolio/summary.go
package portfolio

import (
	"property-intel/internal/analysis"

	"github.com/shopspring/decimal"
)

type Summary struct {
	TotalProperties  int     `json:"totalProperties"`
	TotalValue       float64 `json:"totalValue"`
	TotalMonthlyRent float64 `json:"totalMonthlyRent"`
	TotalAnnualRent  float64 `json:"totalAnnualRent"`
	TotalCashFlow    float64 `json:"totalCashFlow"`
	AvgCapRatePct    float64 `json:"avgCapRatePct"`
	AvgPropertyValue float64 `json:"avgPropertyValue"`
	PortfolioYield   float64 `json:"portfolioYieldPct"`
}

// Summarize aggregates saved properties. Only properties with a known price
// contribute value, rent and cash flow; only those with rent contribute a
// cap rate. The average value divides by all properties.
func Summarize(properties []SavedProperty) Summary {
	var (
		totalValue    = decimal.Zero
		totalRent     = decimal.Zero
		totalCashFlow = decimal.Zero
		capRateSum    = decimal.Zero
		capRates      int64
		expenseRatio  = decimal.NewFromFloat(analysis.MonthlyExpenseRatio)
		hundred       = decimal.NewFromInt(100)
		twelve        = decimal.NewFromInt(12)
	)

	for _, p := range properties {
		if p.Record == nil {
			continue
		}
		price := p.Record.EffectivePrice()
		if price == nil || *price <= 0 {
			continue
		}
		priceDec := decimal.NewFromFloat(*price)
		rentDec := decimal.Zero
		if rent := p.Record.MonthlyRent(); rent != nil && *rent > 0 {
			rentDec = decimal.NewFromFloat(*rent)
		}

		totalValue = totalValue.Add(priceDec)
		totalRent = totalRent.Add(rentDec)
		totalCashFlow = totalCashFlow.Add(rentDec.Sub(priceDec.Mul(expenseRatio)))

		if rentDec.IsPositive() {
			capRateSum = capRateSum.Add(rentDec.Mul(twelve).Div(priceDec).Mul(hundred))
			capRates++
		}
	}

	summary := Summary{
		TotalProperties:  len(properties),
		TotalValue:       round2(totalValue),
		TotalMonthlyRent: round2(totalRent),
		TotalAnnualRent:  round2(totalRent.Mul(twelve)),
		TotalCashFlow:    round2(totalCashFlow),
	}
	if capRates > 0 {
		summary.AvgCapRatePct = round2(capRateSum.Div(decimal.NewFromInt(capRates)))
	}
	if len(properties) > 0 {
		summary.AvgPropertyValue = round2(totalValue.Div(decimal.NewFromInt(int64(len(properties)))))
	}
	if totalValue.IsPositive() {
		summary.PortfolioYield = round2(totalRent.Mul(twelve).Div(totalValue).Mul(hundred))
	}
	return summary
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
