// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypePropertySearch QueryType = "property_search"
	QueryTypeConnectionTest QueryType = "connection_test"
)

// Valid reports whether q is a known query type.
func (q QueryType) Valid() bool {
	switch q {
	case QueryTypePropertySearch, QueryTypeConnectionTest:
		return true
	}
	return false
}
