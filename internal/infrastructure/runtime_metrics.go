package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics records Go runtime memory figures. Sampled during a clean
// run they show whether memory stays flat as the panel streams through.
type RuntimeMetrics struct {
	goRoutines    metric.Int64Gauge
	heapInUse     metric.Int64Gauge
	heapPeak      metric.Int64Gauge
	totalAlloc    metric.Int64Gauge
	memorySystem  metric.Int64Gauge
	gcCount       metric.Int64Gauge
	processUptime metric.Float64Gauge

	mu   sync.Mutex
	peak uint64
}

// NewRuntimeMetrics creates the runtime instruments on meter
func NewRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	m := &RuntimeMetrics{}
	var err error

	if m.goRoutines, err = meter.Int64Gauge("runtime_goroutines",
		metric.WithDescription("Number of active goroutines")); err != nil {
		return nil, err
	}
	if m.heapInUse, err = meter.Int64Gauge("runtime_heap_alloc_bytes",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By")); err != nil {
		return nil, err
	}
	if m.heapPeak, err = meter.Int64Gauge("runtime_heap_peak_bytes",
		metric.WithDescription("Largest heap allocation seen by a sample"),
		metric.WithUnit("By")); err != nil {
		return nil, err
	}
	if m.totalAlloc, err = meter.Int64Gauge("runtime_total_alloc_bytes",
		metric.WithDescription("Cumulative bytes allocated"),
		metric.WithUnit("By")); err != nil {
		return nil, err
	}
	if m.memorySystem, err = meter.Int64Gauge("runtime_memory_system_bytes",
		metric.WithDescription("Memory obtained from the OS in bytes"),
		metric.WithUnit("By")); err != nil {
		return nil, err
	}
	if m.gcCount, err = meter.Int64Gauge("runtime_gc_count",
		metric.WithDescription("Completed garbage collection cycles")); err != nil {
		return nil, err
	}
	if m.processUptime, err = meter.Float64Gauge("runtime_process_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	return m, nil
}

// RuntimeStats holds one runtime sample
type RuntimeStats struct {
	GoRoutines    int64
	HeapAlloc     uint64
	HeapPeak      uint64
	TotalAlloc    uint64
	MemorySystem  uint64
	GCCount       uint32
	ProcessUptime time.Duration
	Timestamp     time.Time
}

// Collect samples the runtime and records the sample
func (m *RuntimeMetrics) Collect(ctx context.Context, startTime time.Time) *RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m.mu.Lock()
	if memStats.HeapAlloc > m.peak {
		m.peak = memStats.HeapAlloc
	}
	peak := m.peak
	m.mu.Unlock()

	stats := &RuntimeStats{
		GoRoutines:    int64(runtime.NumGoroutine()),
		HeapAlloc:     memStats.HeapAlloc,
		HeapPeak:      peak,
		TotalAlloc:    memStats.TotalAlloc,
		MemorySystem:  memStats.Sys,
		GCCount:       memStats.NumGC,
		ProcessUptime: time.Since(startTime),
		Timestamp:     time.Now(),
	}

	m.goRoutines.Record(ctx, stats.GoRoutines)
	m.heapInUse.Record(ctx, int64(stats.HeapAlloc))
	m.heapPeak.Record(ctx, int64(stats.HeapPeak))
	m.totalAlloc.Record(ctx, int64(stats.TotalAlloc))
	m.memorySystem.Record(ctx, int64(stats.MemorySystem))
	m.gcCount.Record(ctx, int64(stats.GCCount))
	m.processUptime.Record(ctx, stats.ProcessUptime.Seconds())

	return stats
}

// RuntimeMetricsCollector samples runtime metrics periodically
type RuntimeMetricsCollector struct {
	metrics   *RuntimeMetrics
	startTime time.Time
	interval  time.Duration
	stopCh    chan struct{}
	done      chan struct{}
	once      sync.Once
}

// NewRuntimeMetricsCollector creates a collector sampling every interval
func NewRuntimeMetricsCollector(meter metric.Meter, interval time.Duration) (*RuntimeMetricsCollector, error) {
	metrics, err := NewRuntimeMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime metrics: %w", err)
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}

	return &RuntimeMetricsCollector{
		metrics:   metrics,
		startTime: time.Now(),
		interval:  interval,
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}, nil
}

// Start samples once, then every interval in a goroutine until Stop or ctx
// ends
func (c *RuntimeMetricsCollector) Start(ctx context.Context) {
	c.metrics.Collect(ctx, c.startTime)

	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.metrics.Collect(ctx, c.startTime)
			case <-c.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends periodic sampling, takes a final sample and returns it
func (c *RuntimeMetricsCollector) Stop(ctx context.Context) *RuntimeStats {
	c.once.Do(func() {
		close(c.stopCh)
		<-c.done
	})
	return c.metrics.Collect(ctx, c.startTime)
}
