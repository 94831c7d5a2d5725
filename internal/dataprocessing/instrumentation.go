package dataprocessing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds the OTel instruments recorded by Pipeline.Run.
// A nil *PipelineMetrics records nothing.
type PipelineMetrics struct {
	batches       metric.Int64Counter
	rowsRead      metric.Int64Counter
	rowsFiltered  metric.Int64Counter
	rowsEmitted   metric.Int64Counter
	reappeared    metric.Int64Counter
	pendingRows   metric.Int64Gauge
	batchDuration metric.Float64Histogram
}

// NewPipelineMetrics creates the pipeline instruments on meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	m := &PipelineMetrics{}
	var err error

	if m.batches, err = meter.Int64Counter("panel_batches",
		metric.WithDescription("Batches processed"),
		metric.WithUnit("{batch}")); err != nil {
		return nil, fmt.Errorf("create batches counter: %w", err)
	}
	if m.rowsRead, err = meter.Int64Counter("panel_rows_read",
		metric.WithDescription("Rows read from the source"),
		metric.WithUnit("{row}")); err != nil {
		return nil, fmt.Errorf("create rows read counter: %w", err)
	}
	if m.rowsFiltered, err = meter.Int64Counter("panel_rows_filtered",
		metric.WithDescription("Placeholder rows dropped before the transform"),
		metric.WithUnit("{row}")); err != nil {
		return nil, fmt.Errorf("create rows filtered counter: %w", err)
	}
	if m.rowsEmitted, err = meter.Int64Counter("panel_rows_emitted",
		metric.WithDescription("Finalized rows written to the sink"),
		metric.WithUnit("{row}")); err != nil {
		return nil, fmt.Errorf("create rows emitted counter: %w", err)
	}
	if m.reappeared, err = meter.Int64Counter("panel_entities_reappeared",
		metric.WithDescription("Entities that resumed after other entities intervened"),
		metric.WithUnit("{entity}")); err != nil {
		return nil, fmt.Errorf("create reappeared counter: %w", err)
	}
	if m.pendingRows, err = meter.Int64Gauge("panel_pending_rows",
		metric.WithDescription("Rows waiting for their smoothing window"),
		metric.WithUnit("{row}")); err != nil {
		return nil, fmt.Errorf("create pending gauge: %w", err)
	}
	if m.batchDuration, err = meter.Float64Histogram("panel_batch_duration",
		metric.WithDescription("Time spent transforming and writing one batch"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("create batch duration histogram: %w", err)
	}
	return m, nil
}

func (m *PipelineMetrics) recordBatch(ctx context.Context, read int, result *BatchResult, emitted, pending int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.batches.Add(ctx, 1)
	m.rowsRead.Add(ctx, int64(read))
	m.rowsFiltered.Add(ctx, int64(result.Filtered))
	m.rowsEmitted.Add(ctx, int64(emitted))
	m.reappeared.Add(ctx, int64(len(result.Reappeared)))
	m.pendingRows.Record(ctx, int64(pending))
	m.batchDuration.Record(ctx, elapsed.Seconds())
}

func (m *PipelineMetrics) recordFlush(ctx context.Context, emitted int) {
	if m == nil {
		return
	}
	m.rowsEmitted.Add(ctx, int64(emitted))
	m.pendingRows.Record(ctx, 0)
}
