// internal/property/fetch/models.go
package fetch

import "property-intel/internal/models"

// Outcome tags the result of a fetch so callers branch explicitly.
type Outcome int

const (
	OutcomeFound Outcome = iota
	OutcomeNotFound
	OutcomeTransientError
	OutcomeFatalError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeTransientError:
		return "transient_error"
	case OutcomeFatalError:
		return "fatal_error"
	default:
		return "unknown"
	}
}

// Result is what Fetch returns. Record is set only for OutcomeFound,
// Err only for the two error outcomes.
type Result struct {
	Outcome  Outcome
	Record   *models.PropertyRecord
	Err      error
	Attempts int
	CacheHit bool
}

func (r Result) Found() bool {
	return r.Outcome == OutcomeFound
}
