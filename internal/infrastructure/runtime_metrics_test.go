package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRuntimeMetricsCollector(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(ctx)

	collector, err := NewRuntimeMetricsCollector(mp.Meter("test"), 10*time.Millisecond)
	require.NoError(t, err)

	collector.Start(ctx)
	time.Sleep(30 * time.Millisecond)
	stats := collector.Stop(ctx)
	again := collector.Stop(ctx)

	require.NotNil(t, stats)
	assert.Greater(t, stats.HeapAlloc, uint64(0))
	assert.GreaterOrEqual(t, stats.HeapPeak, stats.HeapAlloc)
	assert.GreaterOrEqual(t, again.HeapPeak, stats.HeapPeak)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["runtime_heap_alloc_bytes"])
	assert.True(t, names["runtime_heap_peak_bytes"])
	assert.True(t, names["runtime_goroutines"])
}

func TestRuntimeMetricsCollector_StopsOnContext(t *testing.T) {
	mp := sdkmetric.NewMeterProvider()
	defer mp.Shutdown(context.Background())

	collector, err := NewRuntimeMetricsCollector(mp.Meter("test"), 0)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, collector.interval)

	ctx, cancel := context.WithCancel(context.Background())
	collector.Start(ctx)
	cancel()

	select {
	case <-collector.done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop after context cancellation")
	}
	assert.NotNil(t, collector.Stop(context.Background()))
}
