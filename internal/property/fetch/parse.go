// internal/property/fetch/parse.go
package fetch

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"property-intel/internal/models"
)

// decodeFirst returns the authoritative element of a provider response:
// the first array element, or the object itself. A nil element means the
// provider found nothing.
func decodeFirst(body []byte) (map[string]interface{}, error) {
	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}

	switch v := payload.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		if len(v) == 0 {
			return nil, nil
		}
		first, ok := v[0].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("unexpected element type %T", v[0])
		}
		return first, nil
	case map[string]interface{}:
		if len(v) == 0 {
			return nil, nil
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unexpected payload type %T", payload)
	}
}

func parseRecord(data map[string]interface{}) *models.PropertyRecord {
	record := &models.PropertyRecord{
		ID:               stringField(data, "id"),
		Address:          firstString(data, "address", "addressLine1", "formattedAddress"),
		FormattedAddress: stringField(data, "formattedAddress"),
		City:             stringField(data, "city"),
		State:            stringField(data, "state"),
		ZipCode:          stringField(data, "zipCode"),
		County:           stringField(data, "county"),
		Neighborhood:     stringField(data, "neighborhood"),
		PropertyType:     stringField(data, "propertyType"),
		YearBuilt:        intField(data, "yearBuilt"),
		Bedrooms:         numberField(data, "bedrooms"),
		Bathrooms:        numberField(data, "bathrooms"),
		SquareFootage:    numberField(data, "squareFootage"),
		LotSize:          numberField(data, "lotSize"),
		Price:            numberField(data, "price"),
		LastSalePrice:    numberField(data, "lastSalePrice"),
		LastSaleDate:     stringField(data, "lastSaleDate"),
		RentEstimate:     rentField(data),
		TaxAssessment:    latestYearValue(data, "taxAssessments", "value"),
		PropertyTaxes:    latestYearValue(data, "propertyTaxes", "total"),
		HOAFee:           nestedNumber(data, "hoa", "fee"),
		OwnerOccupied:    boolField(data, "ownerOccupied"),
		OwnerNames:       ownerNames(data),
		Features:         boolFlags(data, "features"),
		Raw:              data,
	}
	return record
}

func stringField(data map[string]interface{}, key string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return ""
}

func firstString(data map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s := stringField(data, k); s != "" {
			return s
		}
	}
	return ""
}

func numberField(data map[string]interface{}, key string) *float64 {
	f, ok := data[key].(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// intField accepts only whole JSON numbers.
func intField(data map[string]interface{}, key string) *int {
	f := numberField(data, key)
	if f == nil || *f != math.Trunc(*f) {
		return nil
	}
	i := int(*f)
	return &i
}

func boolField(data map[string]interface{}, key string) *bool {
	b, ok := data[key].(bool)
	if !ok {
		return nil
	}
	return &b
}

func nestedNumber(data map[string]interface{}, outer, inner string) *float64 {
	obj, ok := data[outer].(map[string]interface{})
	if !ok {
		return nil
	}
	return numberField(obj, inner)
}

// rentField reads rentEstimate either as {"rent": n} or a bare number.
func rentField(data map[string]interface{}) *float64 {
	if rent := nestedNumber(data, "rentEstimate", "rent"); rent != nil {
		return rent
	}
	return numberField(data, "rentEstimate")
}

// latestYearValue reads year-keyed objects such as {"2023": {"value": n}}.
func latestYearValue(data map[string]interface{}, key, field string) *float64 {
	byYear, ok := data[key].(map[string]interface{})
	if !ok || len(byYear) == 0 {
		return nil
	}

	years := make([]string, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Strings(years)

	for i := len(years) - 1; i >= 0; i-- {
		if v := nestedNumber(byYear, years[i], field); v != nil {
			return v
		}
	}
	return nil
}

func ownerNames(data map[string]interface{}) []string {
	owner, ok := data["owner"].(map[string]interface{})
	if !ok {
		return nil
	}
	raw, ok := owner["names"].([]interface{})
	if !ok {
		return nil
	}

	names := make([]string, 0, len(raw))
	for _, n := range raw {
		if s, ok := n.(string); ok {
			names = append(names, s)
		}
	}
	return names
}

func boolFlags(data map[string]interface{}, key string) map[string]bool {
	obj, ok := data[key].(map[string]interface{})
	if !ok {
		return nil
	}

	flags := make(map[string]bool)
	for k, v := range obj {
		if b, ok := v.(bool); ok {
			flags[k] = b
		}
	}
	if len(flags) == 0 {
		return nil
	}
	return flags
}
