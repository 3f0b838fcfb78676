package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"property-intel/internal/common/logger"
)

func TestObservability_RecordSearch(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	o := newWithMeter("test", provider.Meter("test"))

	ctx := context.Background()
	o.RecordSearch(ctx, "found")
	o.RecordSearch(ctx, "found")
	o.RecordSearchDuration(ctx, 120*time.Millisecond, "found")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := map[string]metricdata.Metrics{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names[m.Name] = m
	}

	counter, ok := names["searches.processed"]
	require.True(t, ok)
	sum := counter.Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)

	_, ok = names["searches.duration"]
	assert.True(t, ok)
}

func TestObservability_NoopAndSpan(t *testing.T) {
	o := NewNoop("test")

	ctx, span := o.StartSpan(context.Background(), "search")
	assert.NotNil(t, ctx)
	o.RecordSearch(ctx, "not_found")
	EndSpan(span, errors.New("boom"))
	o.Shutdown()
}

func TestNew_RegistersProvider(t *testing.T) {
	o := New("test", logger.NewNoOpLogger())
	defer o.Shutdown()

	o.RecordSearch(context.Background(), "found")
	assert.NotNil(t, o.meter)
}
