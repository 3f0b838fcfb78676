// internal/search/models.go
package search

import (
	"property-intel/internal/analysis"
	"property-intel/internal/models"
	"property-intel/internal/property/fetch"
)

type Request struct {
	UserID  string `json:"userId"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
}

// Query is the human-readable form stored with usage records.
func (r Request) Query() string {
	return r.Address + ", " + r.City + ", " + r.State
}

// Response is set for Found and NotFound outcomes. Record and Analysis are
// nil when nothing was found.
type Response struct {
	RequestID string                     `json:"requestId"`
	Outcome   fetch.Outcome              `json:"-"`
	Found     bool                       `json:"found"`
	CacheHit  bool                       `json:"cacheHit"`
	Record    *models.PropertyRecord     `json:"record,omitempty"`
	Analysis  *analysis.PropertyAnalysis `json:"analysis,omitempty"`
	Quota     *models.QuotaState         `json:"quota,omitempty"`
}
