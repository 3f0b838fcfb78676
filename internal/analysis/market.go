// internal/analysis/market.go
package analysis

import (
	"time"

	"github.com/shopspring/decimal"
)

type MarketStatus string

const (
	MarketHot      MarketStatus = "Hot Market"
	MarketBalanced MarketStatus = "Balanced Market"
	MarketBuyers   MarketStatus = "Buyer's Market"
)

type Appreciation string

const (
	AppreciationHigh     Appreciation = "High"
	AppreciationModerate Appreciation = "Moderate"
	AppreciationLow      Appreciation = "Low"
)

const (
	hotMarketPricePerSqft      = 200
	balancedMarketPricePerSqft = 100

	// defaultPropertyAge applies when the build year is unknown.
	defaultPropertyAge = 20
)

type MarketAnalysis struct {
	Neighborhood          string       `json:"neighborhood,omitempty"`
	PricePerSqft          float64      `json:"pricePerSqft"`
	MarketStatus          MarketStatus `json:"marketStatus"`
	PropertyAge           int          `json:"propertyAge"`
	AppreciationPotential Appreciation `json:"appreciationPotential"`
}

// AnalyzeMarket derives market labels. Thresholds are fixed placeholders
// until comparable-sales data is available.
func AnalyzeMarket(price, squareFootage *float64, yearBuilt *int, neighborhood string, now time.Time) MarketAnalysis {
	ppsf := PricePerSqft(price, squareFootage)
	age := PropertyAge(yearBuilt, now)

	return MarketAnalysis{
		Neighborhood:          neighborhood,
		PricePerSqft:          ppsf,
		MarketStatus:          ClassifyMarket(ppsf),
		PropertyAge:           age,
		AppreciationPotential: ClassifyAppreciation(age),
	}
}

// PricePerSqft is zero when square footage is missing or non-positive.
func PricePerSqft(price, squareFootage *float64) float64 {
	sqft := valueOrZero(squareFootage)
	if sqft <= 0 {
		return 0
	}
	return round2(decimal.NewFromFloat(valueOrZero(price)).Div(decimal.NewFromFloat(sqft)))
}

func ClassifyMarket(pricePerSqft float64) MarketStatus {
	switch {
	case pricePerSqft > hotMarketPricePerSqft:
		return MarketHot
	case pricePerSqft > balancedMarketPricePerSqft:
		return MarketBalanced
	default:
		return MarketBuyers
	}
}

func PropertyAge(yearBuilt *int, now time.Time) int {
	if yearBuilt == nil {
		return defaultPropertyAge
	}
	return now.Year() - *yearBuilt
}

func ClassifyAppreciation(age int) Appreciation {
	switch {
	case age < 10:
		return AppreciationHigh
	case age < 30:
		return AppreciationModerate
	default:
		return AppreciationLow
	}
}
