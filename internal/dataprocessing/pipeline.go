package dataprocessing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	apperrors "github.com/vinotumich/FIN427/internal/errors"
	"github.com/vinotumich/FIN427/pkg/contracts/domain"
)

// Pipeline drives one streaming pass from a BatchSource to a Sink
type Pipeline struct {
	opts    ProcessingOptions
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *PipelineMetrics
}

// PipelineOption configures a Pipeline
type PipelineOption func(*Pipeline)

// WithLogger sets the pipeline logger
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithTracer sets the tracer used for run and batch spans
func WithTracer(tracer trace.Tracer) PipelineOption {
	return func(p *Pipeline) {
		if tracer != nil {
			p.tracer = tracer
		}
	}
}

// WithMetrics sets the instruments recorded per batch
func WithMetrics(metrics *PipelineMetrics) PipelineOption {
	return func(p *Pipeline) {
		p.metrics = metrics
	}
}

// NewPipeline creates a pipeline with the given processing options
func NewPipeline(opts ProcessingOptions, options ...PipelineOption) *Pipeline {
	if opts.TailPolicy == "" {
		opts.TailPolicy = TailDegrade
	}
	p := &Pipeline{
		opts:   opts,
		logger: slog.Default(),
		tracer: noop.NewTracerProvider().Tracer("dataprocessing"),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// RunSummary reports the totals of a completed run
type RunSummary struct {
	Batches      int
	RowsRead     int
	RowsFiltered int
	RowsEmitted  int
	Entities     int
	Reappeared   int
	Duration     time.Duration
}

// Run streams every batch of source through the transform into sink. The
// header is written with the first non-empty append, or on its own at the
// end when no row survived. Cancellation is honoured between batches only.
func (p *Pipeline) Run(ctx context.Context, source BatchSource, sink Sink) (*RunSummary, error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "clean.run",
		trace.WithAttributes(attribute.String("tail_policy", string(p.opts.TailPolicy))))
	defer span.End()

	state := NewStreamState(p.opts)
	summary := &RunSummary{}
	headerWritten := false

	emit := func(rows []domain.DerivedRecord) error {
		if len(rows) == 0 {
			return nil
		}
		if err := sink.Append(rows, !headerWritten); err != nil {
			return apperrors.NewStorageError("failed to append rows", err)
		}
		headerWritten = true
		summary.RowsEmitted += len(rows)
		return nil
	}

	fail := func(err error) (*RunSummary, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.ErrorContext(ctx, "Panel cleaning failed",
			slog.Int("batch", summary.Batches+1),
			slog.String("error", err.Error()))
		return summary, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}

		batch, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(err)
		}

		batchStart := time.Now()
		result, err := p.processBatch(ctx, state, batch, summary.Batches+1)
		if err != nil {
			return fail(err)
		}
		if err := emit(result.Rows); err != nil {
			return fail(err)
		}

		summary.Batches++
		summary.RowsRead += len(batch)
		summary.RowsFiltered += result.Filtered
		summary.Reappeared += len(result.Reappeared)
		p.metrics.recordBatch(ctx, len(batch), result, len(result.Rows), state.Window.Len(), time.Since(batchStart))
	}

	tail := FinishStream(state)
	if err := emit(tail); err != nil {
		return fail(err)
	}
	p.metrics.recordFlush(ctx, len(tail))

	if !headerWritten {
		if err := sink.Append(nil, true); err != nil {
			return fail(apperrors.NewStorageError("failed to write header", err))
		}
	}

	summary.Entities = state.Carryover.Entities()
	summary.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("batches", summary.Batches),
		attribute.Int("rows_emitted", summary.RowsEmitted),
		attribute.Int("entities", summary.Entities),
	)

	p.logger.InfoContext(ctx, "Panel cleaning complete",
		slog.Int("batches", summary.Batches),
		slog.Int("rows_read", summary.RowsRead),
		slog.Int("rows_filtered", summary.RowsFiltered),
		slog.Int("rows_emitted", summary.RowsEmitted),
		slog.Int("entities", summary.Entities),
		slog.Duration("duration", summary.Duration))

	return summary, nil
}

// processBatch wraps ProcessBatch in a span and logs what it did
func (p *Pipeline) processBatch(ctx context.Context, state *StreamState, batch []domain.PanelRecord, n int) (*BatchResult, error) {
	ctx, span := p.tracer.Start(ctx, "clean.batch",
		trace.WithAttributes(
			attribute.Int("batch", n),
			attribute.Int("rows", len(batch)),
		))
	defer span.End()

	result, err := ProcessBatch(state, batch)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	for _, entity := range result.Reappeared {
		p.logger.WarnContext(ctx, "Entity resumed after other entities; earlier windows closed as tails",
			slog.String("entity", entity),
			slog.Int("batch", n))
	}

	span.SetAttributes(
		attribute.Int("filtered", result.Filtered),
		attribute.Int("emitted", len(result.Rows)),
		attribute.Int("pending", state.Window.Len()),
	)
	p.logger.DebugContext(ctx, "Batch processed",
		slog.Int("batch", n),
		slog.Int("rows", len(batch)),
		slog.Int("filtered", result.Filtered),
		slog.Int("emitted", len(result.Rows)),
		slog.Int("pending", state.Window.Len()))

	return result, nil
}
