// internal/models/usage.go
package models

import "time"

// UsageRecord is one provider acquisition attempt. Records are append-only.
type UsageRecord struct {
	ID        string                 `json:"id" db:"id"`
	UserID    string                 `json:"userId" db:"user_id"`
	Query     string                 `json:"query" db:"query"`
	QueryType QueryType              `json:"queryType" db:"query_type"`
	CreatedAt time.Time              `json:"createdAt" db:"created_at"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
}

// QuotaState is derived on demand from a user's usage records.
type QuotaState struct {
	UserID            string            `json:"userId"`
	CurrentMonthCount int               `json:"currentMonth"`
	LifetimeCount     int               `json:"total"`
	Limit             int               `json:"limit"`
	ByType            map[QueryType]int `json:"byType"`
	DailyCounts       map[string]int    `json:"dailyUsage"`
	PeriodStart       time.Time         `json:"periodStart"`
}

// Remaining is the number of calls left this month, never negative.
func (q QuotaState) Remaining() int {
	if q.CurrentMonthCount >= q.Limit {
		return 0
	}
	return q.Limit - q.CurrentMonthCount
}

// Allowed reports whether another provider call may start.
func (q QuotaState) Allowed() bool {
	return q.CurrentMonthCount < q.Limit
}
