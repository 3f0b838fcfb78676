package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SearchRequestSchema describes the input accepted by a property search.
const SearchRequestSchema = `{
	"type": "object",
	"required": ["userId", "address", "city", "state"],
	"properties": {
		"userId":  {"type": "string", "minLength": 1},
		"address": {"type": "string", "minLength": 1, "maxLength": 200},
		"city":    {"type": "string", "minLength": 1, "maxLength": 100},
		"state":   {"type": "string", "pattern": "^[A-Za-z]{2}$"}
	}
}`

// SavePropertySchema describes a property submitted to the saved-property store.
const SavePropertySchema = `{
	"type": "object",
	"required": ["userId", "address", "city", "state"],
	"properties": {
		"userId":  {"type": "string", "minLength": 1},
		"address": {"type": "string", "minLength": 1},
		"city":    {"type": "string", "minLength": 1},
		"state":   {"type": "string", "minLength": 1}
	}
}`

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error joins the individual failures into one line.
func (r *ValidationResult) Error() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

// Validate checks document against a JSON schema given as a string.
// The returned error is only set when the schema itself cannot be used.
func Validate(schema string, document interface{}) (*ValidationResult, error) {
	schemaLoader := gojsonschema.NewStringLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out, nil
}
