package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStatusClass(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{0, "network_error"},
		{200, "2xx"},
		{401, "4xx"},
		{429, "rate_limited"},
		{503, "5xx"},
		{302, "other"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusClass(tt.status), "status %d", tt.status)
	}
}

func TestQuotaDenialsCounter(t *testing.T) {
	before := testutil.ToFloat64(QuotaDenials)
	QuotaDenials.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(QuotaDenials))
}
