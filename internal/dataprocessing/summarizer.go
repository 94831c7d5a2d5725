package dataprocessing

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	apperrors "github.com/vinotumich/FIN427/internal/errors"
	"github.com/vinotumich/FIN427/pkg/contracts/domain"
)

// DefaultPercentiles are the cut points reported for every described column
var DefaultPercentiles = []float64{1, 5, 12.5, 25, 50, 87.5, 95, 99}

// Summarizer computes descriptive tables over panel columns
type Summarizer struct {
	logger *slog.Logger
	config SummarizerConfig
}

// SummarizerConfig holds configuration options for the Summarizer.
type SummarizerConfig struct {
	Percentiles     []float64 // Percentile cut points in (0, 100)
	MinObservations int       // Columns with fewer non-null values are skipped
	Columns         []string  // Restrict DescribeCSV to these columns; empty means all
}

// DefaultSummarizerConfig returns the default summarizer configuration
func DefaultSummarizerConfig() SummarizerConfig {
	return SummarizerConfig{
		Percentiles:     DefaultPercentiles,
		MinObservations: 100,
	}
}

// NewSummarizer creates a summarizer. A nil logger selects slog.Default().
func NewSummarizer(logger *slog.Logger, config SummarizerConfig) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	if len(config.Percentiles) == 0 {
		config.Percentiles = DefaultPercentiles
	}
	return &Summarizer{logger: logger, config: config}
}

// PercentileValue is one percentile of a column
type PercentileValue struct {
	Percent float64
	Value   float64
}

// Label renders the percent as a column label such as "12.5%"
func (p PercentileValue) Label() string {
	return strconv.FormatFloat(p.Percent, 'f', -1, 64) + "%"
}

// DescriptiveStats is the summary of one numeric column
type DescriptiveStats struct {
	Column      string
	N           int
	Mean        float64
	StdDev      float64 // sample standard deviation; NaN when N < 2
	Min         float64
	Max         float64
	Percentiles []PercentileValue
}

// SkippedColumn names a column left out of a descriptive table
type SkippedColumn struct {
	Column string
	Count  int
	Reason string
}

// Describe summarizes values. It fails only on an empty input.
func (s *Summarizer) Describe(column string, values []float64) (*DescriptiveStats, error) {
	if len(values) == 0 {
		return nil, apperrors.NewValidationError("no values to describe", apperrors.ErrEmptyInput).
			WithContext("column", column)
	}
	data := stats.Float64Data(values)

	result := &DescriptiveStats{Column: column, N: len(values), StdDev: math.NaN()}
	var err error
	if result.Mean, err = stats.Mean(data); err != nil {
		return nil, fmt.Errorf("mean of %s: %w", column, err)
	}
	if result.Min, err = stats.Min(data); err != nil {
		return nil, fmt.Errorf("min of %s: %w", column, err)
	}
	if result.Max, err = stats.Max(data); err != nil {
		return nil, fmt.Errorf("max of %s: %w", column, err)
	}
	if len(values) > 1 {
		if result.StdDev, err = stats.StandardDeviationSample(data); err != nil {
			return nil, fmt.Errorf("std dev of %s: %w", column, err)
		}
	}

	for _, p := range s.config.Percentiles {
		v, err := stats.Percentile(data, p)
		if err != nil {
			// too few values to rank that far into the tail
			v = result.Min
		}
		result.Percentiles = append(result.Percentiles, PercentileValue{Percent: p, Value: v})
	}
	return result, nil
}

// DescribeCSV reads a panel CSV and describes every numeric column, or only
// the configured ones. A column is numeric when every non-missing cell parses
// as a number. Columns below MinObservations non-null values are skipped.
func (s *Summarizer) DescribeCSV(ctx context.Context, r io.Reader) ([]DescriptiveStats, []SkippedColumn, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, apperrors.NewValidationError("input has no header row", apperrors.ErrEmptyInput)
	}
	if err != nil {
		return nil, nil, apperrors.NewParsingError("failed to read header", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], utf8BOM))
	}

	type column struct {
		index   int
		name    string
		numeric bool
		values  []float64
	}
	var columns []*column
	if len(s.config.Columns) == 0 {
		for i, name := range header {
			columns = append(columns, &column{index: i, name: name, numeric: true})
		}
	} else {
		for _, name := range s.config.Columns {
			i := indexOf(header, name)
			if i < 0 {
				return nil, nil, apperrors.NewValidationError("column not found in header", apperrors.ErrMissingColumn).
					WithContext("column", name)
			}
			columns = append(columns, &column{index: i, name: header[i], numeric: true})
		}
	}

	rows := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, apperrors.NewParsingError("malformed CSV row", err).WithContext("row", rows+2)
		}
		rows++
		if rows%100000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}

		for _, col := range columns {
			if !col.numeric || col.index >= len(row) || IsMissing(row[col.index]) {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[col.index]), 64)
			if err != nil {
				col.numeric, col.values = false, nil
				continue
			}
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				col.values = append(col.values, v)
			}
		}
	}

	var described []DescriptiveStats
	var skipped []SkippedColumn
	for _, col := range columns {
		switch {
		case !col.numeric:
			skipped = append(skipped, SkippedColumn{Column: col.name, Reason: "not numeric"})
		case len(col.values) < s.config.MinObservations || len(col.values) == 0:
			skipped = append(skipped, SkippedColumn{
				Column: col.name,
				Count:  len(col.values),
				Reason: fmt.Sprintf("only %d non-null values", len(col.values)),
			})
		default:
			d, err := s.Describe(col.name, col.values)
			if err != nil {
				return nil, nil, err
			}
			described = append(described, *d)
		}
	}

	s.logger.InfoContext(ctx, "Descriptive statistics computed",
		slog.Int("rows", rows),
		slog.Int("described", len(described)),
		slog.Int("skipped", len(skipped)))

	return described, skipped, nil
}

// indexOf finds name in header ignoring case
func indexOf(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(h, strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

// StatsCollector is a Sink that keeps every non-null log growth passing
// through it before handing the rows on
type StatsCollector struct {
	next   Sink
	values []float64
}

// NewStatsCollector wraps next
func NewStatsCollector(next Sink) *StatsCollector {
	return &StatsCollector{next: next}
}

// Append implements Sink
func (c *StatsCollector) Append(rows []domain.DerivedRecord, writeHeader bool) error {
	for _, row := range rows {
		if row.LogGrowth.Valid {
			c.values = append(c.values, row.LogGrowth.Float64)
		}
	}
	return c.next.Append(rows, writeHeader)
}

// Values returns the collected log growth values in emission order
func (c *StatsCollector) Values() []float64 {
	return c.values
}
