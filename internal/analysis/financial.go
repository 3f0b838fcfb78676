// internal/analysis/financial.go
package analysis

import "github.com/shopspring/decimal"

const (
	// MonthlyExpenseRatio is the share of price assumed spent on ownership each month.
	MonthlyExpenseRatio = 0.004
	// DownPaymentRatio is the share of price assumed paid up front.
	DownPaymentRatio = 0.20
)

var hundred = decimal.NewFromInt(100)

// FinancialMetrics are derived from price and rent on every request.
// When Computable is false every ratio is zero and means "unknown".
type FinancialMetrics struct {
	Price                    float64 `json:"price"`
	MonthlyRent              float64 `json:"monthlyRent"`
	AnnualRent               float64 `json:"annualRent"`
	CapRatePct               float64 `json:"capRatePct"`
	PriceToRentRatio         float64 `json:"priceToRentRatio"`
	EstimatedMonthlyExpenses float64 `json:"estimatedMonthlyExpenses"`
	EstimatedCashFlow        float64 `json:"estimatedCashFlow"`
	ROIPct                   float64 `json:"roiPct"`
	Computable               bool    `json:"computable"`
}

// CalculateFinancialMetrics derives investment ratios. A missing or
// non-positive price or rent yields zero ratios and Computable=false.
func CalculateFinancialMetrics(price, monthlyRent *float64) FinancialMetrics {
	p := valueOrZero(price)
	r := valueOrZero(monthlyRent)

	priceDec := decimal.NewFromFloat(p)
	rentDec := decimal.NewFromFloat(r)
	annualDec := rentDec.Mul(decimal.NewFromInt(12))

	metrics := FinancialMetrics{
		Price:       round2(priceDec),
		MonthlyRent: round2(rentDec),
		AnnualRent:  round2(annualDec),
	}
	if p <= 0 || r <= 0 {
		return metrics
	}

	expenses := priceDec.Mul(decimal.NewFromFloat(MonthlyExpenseRatio))
	cashFlow := rentDec.Sub(expenses)
	downPayment := priceDec.Mul(decimal.NewFromFloat(DownPaymentRatio))

	metrics.Computable = true
	metrics.CapRatePct = round2(annualDec.Div(priceDec).Mul(hundred))
	metrics.PriceToRentRatio = round2(priceDec.Div(annualDec))
	metrics.EstimatedMonthlyExpenses = round2(expenses)
	metrics.EstimatedCashFlow = round2(cashFlow)
	metrics.ROIPct = round2(cashFlow.Mul(decimal.NewFromInt(12)).Div(downPayment).Mul(hundred))
	return metrics
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
