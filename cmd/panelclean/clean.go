package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vinotumich/FIN427/internal/config"
	"github.com/vinotumich/FIN427/internal/dataprocessing"
	apperrors "github.com/vinotumich/FIN427/internal/errors"
	"github.com/vinotumich/FIN427/internal/exporter"
	"github.com/vinotumich/FIN427/internal/infrastructure"
	"github.com/vinotumich/FIN427/internal/validation"
)

type cleanFlags struct {
	input      string
	output     string
	chunkSize  int
	tailPolicy string
	sheet      string
	stats      bool
}

func newCleanCommand(configFile *string) *cobra.Command {
	var flags cleanFlags

	command := &cobra.Command{
		Use:   "clean",
		Short: "Derive lag, delta, smoothed delta and log growth columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, logger, err := setup(cmd.Context(), *configFile, func(cfg *config.Config) {
				f := cmd.Flags()
				if f.Changed("in") {
					cfg.Paths.Input = flags.input
				}
				if f.Changed("out") {
					cfg.Paths.Output = flags.output
				}
				if f.Changed("chunk-size") {
					cfg.Processing.ChunkSize = flags.chunkSize
				}
				if f.Changed("tail-policy") {
					cfg.Processing.TailPolicy = flags.tailPolicy
				}
				if f.Changed("sheet") {
					cfg.Processing.Sheet = flags.sheet
				}
			})
			if err != nil {
				return err
			}

			result, err := runClean(ctx, cfg, logger, flags.stats)
			if err != nil {
				logger.ErrorContext(ctx, "Clean run failed", slog.String("error", err.Error()))
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Read %d rows in %d batches, dropped %d placeholders\n",
				result.Summary.RowsRead, result.Summary.Batches, result.Summary.RowsFiltered)
			fmt.Fprintf(out, "Wrote %d rows for %d entities to %s\n",
				result.Summary.RowsEmitted, result.Summary.Entities, cfg.Paths.Output)
			if result.Summary.Reappeared > 0 {
				fmt.Fprintf(out, "Warning: %d entities reappeared after their series ended\n", result.Summary.Reappeared)
			}
			if result.StatsPath != "" {
				fmt.Fprintf(out, "Descriptive statistics: %s\n", result.StatsPath)
			}
			return nil
		},
	}

	command.Flags().StringVar(&flags.input, "in", "", "raw panel file (.csv or .xlsx)")
	command.Flags().StringVar(&flags.output, "out", "", "cleaned panel CSV; replaced if it exists")
	command.Flags().IntVar(&flags.chunkSize, "chunk-size", 0, "rows per batch")
	command.Flags().StringVar(&flags.tailPolicy, "tail-policy", "", "incomplete window handling: degrade or strict")
	command.Flags().StringVar(&flags.sheet, "sheet", "", "worksheet to read from an .xlsx input (default first)")
	command.Flags().BoolVar(&flags.stats, "stats", false, "write descriptive statistics of the log growth column")
	return command
}

type cleanResult struct {
	Summary   *dataprocessing.RunSummary
	StatsPath string
}

type panelSource interface {
	dataprocessing.BatchSource
	Close() error
}

// runClean performs one streaming pass from cfg.Paths.Input to
// cfg.Paths.Output
func runClean(ctx context.Context, cfg *config.Config, logger *slog.Logger, withStats bool) (*cleanResult, error) {
	validator := validation.NewFileValidator(logger)
	format, err := validator.ValidateInputFile(cfg.Paths.Input)
	if err != nil {
		return nil, err
	}
	if err := validator.ValidateOutputFile(cfg.Paths.Output, cfg.Paths.Input); err != nil {
		return nil, err
	}
	policy, err := dataprocessing.ParseTailPolicy(cfg.Processing.TailPolicy)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid tail policy", err)
	}

	obs, err := startObservability(ctx, cfg.Observability, logger)
	if err != nil {
		return nil, err
	}
	defer obs.close(ctx)

	runtimeMetrics, err := infrastructure.NewRuntimeMetricsCollector(obs.providers.Meter, 5*time.Second)
	if err != nil {
		return nil, err
	}
	runtimeMetrics.Start(ctx)
	defer runtimeMetrics.Stop(ctx)

	pipelineMetrics, err := dataprocessing.NewPipelineMetrics(obs.providers.Meter)
	if err != nil {
		return nil, err
	}

	cols := columnSpec(cfg.Processing)
	source, err := openSource(format, cfg, cols)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	layout := exporter.NewOutputLayout(cols.Entity, cols.Value, cols.Passthrough)
	sink, err := exporter.NewPanelSink(cfg.Paths.Output, layout, logger)
	if err != nil {
		return nil, err
	}
	defer sink.Close()

	var target dataprocessing.Sink = sink
	var collector *dataprocessing.StatsCollector
	if withStats {
		collector = dataprocessing.NewStatsCollector(sink)
		target = collector
	}

	logger.InfoContext(ctx, "Starting clean run",
		slog.String("input", cfg.Paths.Input),
		slog.String("output", cfg.Paths.Output),
		slog.String("format", string(format)),
		slog.Int("chunk_size", cfg.Processing.ChunkSize),
		slog.String("tail_policy", string(policy)))

	pipeline := dataprocessing.NewPipeline(
		dataprocessing.ProcessingOptions{TailPolicy: policy},
		dataprocessing.WithLogger(logger),
		dataprocessing.WithTracer(obs.providers.Tracer),
		dataprocessing.WithMetrics(pipelineMetrics),
	)
	summary, err := pipeline.Run(ctx, source, target)
	if err != nil {
		return nil, err
	}
	if err := sink.Close(); err != nil {
		return nil, apperrors.NewStorageError("failed to close output", err)
	}

	final := runtimeMetrics.Stop(ctx)
	logger.InfoContext(ctx, "Clean run memory",
		slog.Uint64("heap_peak_bytes", final.HeapPeak),
		slog.Uint64("total_alloc_bytes", final.TotalAlloc),
		slog.Any("gc_count", final.GCCount))

	result := &cleanResult{Summary: summary}
	if collector != nil {
		result.StatsPath, err = writeCleanStats(ctx, cfg, logger, layout.LogGrowthColumn(), collector.Values())
		if err != nil {
			return nil, err
		}
	}

	if err := obs.writeMetrics(); err != nil {
		return nil, err
	}
	return result, nil
}

func openSource(format validation.InputFormat, cfg *config.Config, cols dataprocessing.ColumnSpec) (panelSource, error) {
	switch format {
	case validation.FormatXLSX:
		return dataprocessing.OpenXLSXSource(cfg.Paths.Input, cfg.Processing.Sheet, cols, cfg.Processing.ChunkSize)
	default:
		return dataprocessing.OpenCSVSource(cfg.Paths.Input, cols, cfg.Processing.ChunkSize)
	}
}

// writeCleanStats describes the collected log growth values. Too few values
// is logged and skipped rather than failing a finished run.
func writeCleanStats(ctx context.Context, cfg *config.Config, logger *slog.Logger, column string, values []float64) (string, error) {
	if len(values) == 0 || len(values) < cfg.Report.MinObservations {
		logger.WarnContext(ctx, "Skipping descriptive statistics",
			slog.String("column", column),
			slog.Int("values", len(values)),
			slog.Int("min_observations", cfg.Report.MinObservations))
		return "", nil
	}

	summarizer := dataprocessing.NewSummarizer(logger, summarizerConfig(cfg.Report))
	stats, err := summarizer.Describe(column, values)
	if err != nil {
		return "", err
	}
	return exportDescriptive(ctx, cfg, logger, "descriptive_"+column, []dataprocessing.DescriptiveStats{*stats})
}

// exportDescriptive writes <name>.csv, plus <name>.xlsx when enabled, into
// the stats directory and returns the CSV path
func exportDescriptive(ctx context.Context, cfg *config.Config, logger *slog.Logger, name string, stats []dataprocessing.DescriptiveStats) (string, error) {
	dir := cfg.StatsDir()
	if err := validation.NewFileValidator(logger).ValidateOutputDirectory(dir); err != nil {
		return "", err
	}

	csvPath := filepath.Join(dir, name+".csv")
	xlsxPath := ""
	if cfg.Report.Excel {
		xlsxPath = filepath.Join(dir, name+".xlsx")
	}
	if err := exporter.NewReportExporter(logger).ExportDescriptive(ctx, csvPath, xlsxPath, stats); err != nil {
		return "", err
	}
	return csvPath, nil
}

// observability owns the telemetry providers of one run and the trace file
// they write to
type observability struct {
	providers   *infrastructure.OTelProviders
	traceFile   *os.File
	metricsPath string
	logger      *slog.Logger
}

func startObservability(ctx context.Context, cfg config.ObservabilityConfig, logger *slog.Logger) (*observability, error) {
	obs := &observability{metricsPath: cfg.MetricsFile, logger: logger}
	otelCfg := infrastructure.OTelConfig{EnableMetrics: cfg.MetricsFile != ""}

	if cfg.TraceFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
			return nil, apperrors.NewStorageError("failed to create trace directory", err)
		}
		f, err := os.Create(cfg.TraceFile)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to create trace file", err).
				WithContext("path", cfg.TraceFile)
		}
		obs.traceFile = f
		otelCfg.TraceWriter = f
	}

	providers, err := infrastructure.InitializeOTel(ctx, otelCfg, logger)
	if err != nil {
		if obs.traceFile != nil {
			obs.traceFile.Close()
		}
		return nil, err
	}
	obs.providers = providers
	return obs, nil
}

// writeMetrics dumps the metric registry when a metrics file is configured
func (o *observability) writeMetrics() error {
	if o.metricsPath == "" {
		return nil
	}
	if err := o.providers.WriteMetrics(o.metricsPath); err != nil {
		return apperrors.NewStorageError("failed to write metrics", err).
			WithContext("path", o.metricsPath)
	}
	return nil
}

func (o *observability) close(ctx context.Context) {
	if err := o.providers.Shutdown(ctx); err != nil {
		o.logger.WarnContext(ctx, "Telemetry shutdown failed", slog.String("error", err.Error()))
	}
	if o.traceFile != nil {
		o.traceFile.Close()
	}
}
