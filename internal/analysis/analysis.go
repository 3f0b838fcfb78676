// internal/analysis/analysis.go
package analysis

import (
	"time"

	"property-intel/internal/models"
)

type BasicInfo struct {
	Address       string   `json:"address"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	ZipCode       string   `json:"zipCode"`
	PropertyType  string   `json:"propertyType"`
	Bedrooms      *float64 `json:"bedrooms,omitempty"`
	Bathrooms     *float64 `json:"bathrooms,omitempty"`
	SquareFootage *float64 `json:"squareFootage,omitempty"`
	LotSize       *float64 `json:"lotSize,omitempty"`
	YearBuilt     *int     `json:"yearBuilt,omitempty"`
}

// PropertyAnalysis is the composite view of one record.
type PropertyAnalysis struct {
	BasicInfo        BasicInfo        `json:"basicInfo"`
	FinancialMetrics FinancialMetrics `json:"financialMetrics"`
	MarketAnalysis   MarketAnalysis   `json:"marketAnalysis"`
	InvestmentScore  InvestmentScore  `json:"investmentScore"`
}

// Analyze is deterministic for a given record and now. Financial metrics fall
// back to the last sale price; market heuristics use the listed price only.
func Analyze(record *models.PropertyRecord, now time.Time) PropertyAnalysis {
	fin := CalculateFinancialMetrics(record.EffectivePrice(), record.MonthlyRent())
	market := AnalyzeMarket(record.Price, record.SquareFootage, record.YearBuilt, record.Neighborhood, now)

	return PropertyAnalysis{
		BasicInfo: BasicInfo{
			Address:       record.Address,
			City:          record.City,
			State:         record.State,
			ZipCode:       record.ZipCode,
			PropertyType:  record.PropertyType,
			Bedrooms:      record.Bedrooms,
			Bathrooms:     record.Bathrooms,
			SquareFootage: record.SquareFootage,
			LotSize:       record.LotSize,
			YearBuilt:     record.YearBuilt,
		},
		FinancialMetrics: fin,
		MarketAnalysis:   market,
		InvestmentScore:  Score(fin, market),
	}
}
