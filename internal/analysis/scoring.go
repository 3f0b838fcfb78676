// internal/analysis/scoring.go
package analysis

type InvestmentScore struct {
	Score           int      `json:"score"`
	Grade           string   `json:"grade"`
	Recommendation  string   `json:"recommendation"`
	PositiveFactors []string `json:"positiveFactors"`
}

type tier struct {
	above  float64
	points int
	label  string
}

var (
	capRateTiers = []tier{
		{8, 25, "Excellent cap rate"},
		{6, 15, "Good cap rate"},
		{4, 10, "Fair cap rate"},
	}
	cashFlowTiers = []tier{
		{300, 25, "Strong cash flow"},
		{100, 15, "Positive cash flow"},
		{0, 10, "Break-even cash flow"},
	}
)

type grade struct {
	min            int
	grade          string
	recommendation string
}

var grades = []grade{
	{80, "A+", "Excellent investment opportunity"},
	{70, "A", "Strong investment potential"},
	{60, "B+", "Good investment with some caution"},
	{50, "B", "Fair investment opportunity"},
	{40, "C", "Marginal investment - proceed carefully"},
	{0, "D", "Poor investment - not recommended"},
}

// Score adds points per factor in a fixed order: cap rate, cash flow,
// market, appreciation, age. PositiveFactors keeps that order.
func Score(fin FinancialMetrics, market MarketAnalysis) InvestmentScore {
	s := &scorer{factors: []string{}}

	s.tiered(fin.CapRatePct, capRateTiers)
	s.tiered(fin.EstimatedCashFlow, cashFlowTiers)

	switch market.MarketStatus {
	case MarketBuyers:
		s.add(20, "Favorable market conditions")
	case MarketBalanced:
		s.add(15, "Stable market conditions")
	}

	switch market.AppreciationPotential {
	case AppreciationHigh:
		s.add(15, "High appreciation potential")
	case AppreciationModerate:
		s.add(10, "Moderate appreciation potential")
	}

	switch {
	case market.PropertyAge < 10:
		s.add(15, "New property")
	case market.PropertyAge < 30:
		s.add(10, "Well-maintained age")
	}

	g, rec := Grade(s.score)
	return InvestmentScore{
		Score:           s.score,
		Grade:           g,
		Recommendation:  rec,
		PositiveFactors: s.factors,
	}
}

// Grade maps a score to its letter grade and fixed recommendation.
func Grade(score int) (string, string) {
	for _, g := range grades {
		if score >= g.min {
			return g.grade, g.recommendation
		}
	}
	last := grades[len(grades)-1]
	return last.grade, last.recommendation
}

type scorer struct {
	score   int
	factors []string
}

func (s *scorer) add(points int, label string) {
	s.score += points
	s.factors = append(s.factors, label)
}

func (s *scorer) tiered(value float64, tiers []tier) {
	for _, t := range tiers {
		if value > t.above {
			s.add(t.points, t.label)
			return
		}
	}
}
