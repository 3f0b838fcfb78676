// internal/models/property.go
package models

import (
	"strings"
	"time"
)

// PropertyRecord holds normalized property facts as returned by the provider.
// Numeric facts are nil when the provider omitted them or sent a non-number.
type PropertyRecord struct {
	ID               string   `json:"id,omitempty"`
	Address          string   `json:"address"`
	FormattedAddress string   `json:"formattedAddress,omitempty"`
	City             string   `json:"city"`
	State            string   `json:"state"`
	ZipCode          string   `json:"zipCode,omitempty"`
	County           string   `json:"county,omitempty"`
	Neighborhood     string   `json:"neighborhood,omitempty"`
	PropertyType     string   `json:"propertyType,omitempty"`
	YearBuilt        *int     `json:"yearBuilt,omitempty"`
	Bedrooms         *float64 `json:"bedrooms,omitempty"`
	Bathrooms        *float64 `json:"bathrooms,omitempty"`
	SquareFootage    *float64 `json:"squareFootage,omitempty"`
	LotSize          *float64 `json:"lotSize,omitempty"`
	Price            *float64 `json:"price,omitempty"`
	LastSalePrice    *float64 `json:"lastSalePrice,omitempty"`
	LastSaleDate     string   `json:"lastSaleDate,omitempty"`
	RentEstimate     *float64 `json:"rentEstimate,omitempty"`
	TaxAssessment    *float64 `json:"taxAssessment,omitempty"`
	PropertyTaxes    *float64 `json:"propertyTaxes,omitempty"`
	HOAFee           *float64 `json:"hoaFee,omitempty"`
	OwnerOccupied    *bool    `json:"ownerOccupied,omitempty"`
	OwnerNames       []string `json:"ownerNames,omitempty"`

	Features map[string]bool `json:"features,omitempty"`

	FetchedAt    time.Time         `json:"fetchedAt"`
	SearchParams map[string]string `json:"searchParams,omitempty"`
	CacheKey     string            `json:"cacheKey"`

	// Raw is the provider's element, kept for export and persistence.
	Raw map[string]interface{} `json:"raw,omitempty"`
}

// EffectivePrice is the listed price, falling back to the last sale price.
// A zero price counts as missing.
func (p *PropertyRecord) EffectivePrice() *float64 {
	if p.Price != nil && *p.Price != 0 {
		return p.Price
	}
	if p.LastSalePrice != nil && *p.LastSalePrice != 0 {
		return p.LastSalePrice
	}
	return nil
}

// MonthlyRent is the provider's rent estimate, if any.
func (p *PropertyRecord) MonthlyRent() *float64 {
	return p.RentEstimate
}

// Clone returns a deep copy, so caches can hand out records without sharing
// state with their callers.
func (p *PropertyRecord) Clone() *PropertyRecord {
	if p == nil {
		return nil
	}
	c := *p
	c.YearBuilt = clonePtr(p.YearBuilt)
	c.Bedrooms = clonePtr(p.Bedrooms)
	c.Bathrooms = clonePtr(p.Bathrooms)
	c.SquareFootage = clonePtr(p.SquareFootage)
	c.LotSize = clonePtr(p.LotSize)
	c.Price = clonePtr(p.Price)
	c.LastSalePrice = clonePtr(p.LastSalePrice)
	c.RentEstimate = clonePtr(p.RentEstimate)
	c.TaxAssessment = clonePtr(p.TaxAssessment)
	c.PropertyTaxes = clonePtr(p.PropertyTaxes)
	c.HOAFee = clonePtr(p.HOAFee)
	c.OwnerOccupied = clonePtr(p.OwnerOccupied)
	if p.OwnerNames != nil {
		c.OwnerNames = append([]string(nil), p.OwnerNames...)
	}
	if p.Features != nil {
		c.Features = make(map[string]bool, len(p.Features))
		for k, v := range p.Features {
			c.Features[k] = v
		}
	}
	if p.SearchParams != nil {
		c.SearchParams = make(map[string]string, len(p.SearchParams))
		for k, v := range p.SearchParams {
			c.SearchParams[k] = v
		}
	}
	if p.Raw != nil {
		c.Raw = cloneJSON(p.Raw).(map[string]interface{})
	}
	return &c
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// cloneJSON copies decoded JSON values; scalars are immutable and shared.
func cloneJSON(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, e := range t {
			m[k] = cloneJSON(e)
		}
		return m
	case []interface{}:
		s := make([]interface{}, len(t))
		for i, e := range t {
			s[i] = cloneJSON(e)
		}
		return s
	default:
		return v
	}
}

// NormalizeKey builds the cache identity of an address: lowercased,
// whitespace-collapsed street|city|state.
func NormalizeKey(address, city, state string) string {
	return normalizePart(address) + "|" + normalizePart(city) + "|" + normalizePart(state)
}

func normalizePart(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
