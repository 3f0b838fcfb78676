// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_attempts_total",
			Help: "Total number of property provider calls by result class",
		},
		[]string{"result"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Duration of a single property provider call in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "property_cache_lookups_total",
			Help: "Property cache lookups by backend and result",
		},
		[]string{"backend", "result"},
	)

	QuotaDenials = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quota_denials_total",
			Help: "Number of searches refused because the monthly quota was reached",
		},
	)

	UsageLogFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "usage_log_failures_total",
			Help: "Number of usage records that could not be written",
		},
	)
)

// StatusClass buckets an HTTP status code for the result label.
func StatusClass(status int) string {
	switch {
	case status == 0:
		return "network_error"
	case status == 429:
		return "rate_limited"
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 200 && status < 300:
		return "2xx"
	default:
		return "other"
	}
}
