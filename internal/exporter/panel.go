package exporter

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	apperrors "github.com/vinotumich/FIN427/internal/errors"
	"github.com/vinotumich/FIN427/pkg/contracts/domain"
)

// OutputLayout fixes the column order of the cleaned panel
type OutputLayout struct {
	EntityColumn string
	ValueColumn  string
	Passthrough  []string
}

// NewOutputLayout creates a layout for the given entity, value and
// passthrough column names
func NewOutputLayout(entity, value string, passthrough []string) OutputLayout {
	return OutputLayout{EntityColumn: entity, ValueColumn: value, Passthrough: passthrough}
}

// Headers returns the output header. The derived columns are named after the
// value column: SHROUT gives d_shrout, smoothed_d_shrout and ln_shrout_change.
func (l OutputLayout) Headers() []string {
	value := strings.ToLower(l.ValueColumn)
	headers := make([]string, 0, len(l.Passthrough)+7)
	headers = append(headers, l.EntityColumn, "month", "next_month")
	headers = append(headers, l.Passthrough...)
	return append(headers,
		l.ValueColumn,
		"d_"+value,
		"smoothed_d_"+value,
		"ln_"+value+"_change",
	)
}

// LogGrowthColumn is the header of the log growth column
func (l OutputLayout) LogGrowthColumn() string {
	return "ln_" + strings.ToLower(l.ValueColumn) + "_change"
}

// recordToCSVRow converts a finalized row to CSV cells
func (l OutputLayout) recordToCSVRow(record domain.DerivedRecord) []string {
	row := make([]string, 0, len(l.Passthrough)+7)
	row = append(row,
		record.Entity,
		formatDate(record.Period),
		formatDate(record.NextPeriod),
	)
	for i := range l.Passthrough {
		cell := ""
		if i < len(record.Fields) {
			cell = record.Fields[i]
		}
		row = append(row, cell)
	}
	return append(row,
		formatNull(record.RawValue),
		formatNull(record.RawDelta),
		formatNull(record.SmoothedDelta),
		formatNull(record.LogGrowth),
	)
}

// PanelSink appends finalized rows to the cleaned panel file
type PanelSink struct {
	path   string
	layout OutputLayout
	writer *CSVWriter
	stream *StreamWriter
	logger *slog.Logger
	rows   int
}

// NewPanelSink prepares path for a fresh run. A file left by an earlier run is
// removed so rows never accumulate across runs.
func NewPanelSink(path string, layout OutputLayout, logger *slog.Logger) (*PanelSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.NewStorageError("failed to remove prior output", err).WithContext("path", path)
	} else if err == nil {
		logger.Info("Removed prior output", slog.String("path", path))
	}

	return &PanelSink{
		path:   path,
		layout: layout,
		writer: NewCSVWriter(logger),
		logger: logger,
	}, nil
}

// Append writes rows, preceded by the header when writeHeader is set. The
// file is created on the first call.
func (s *PanelSink) Append(rows []domain.DerivedRecord, writeHeader bool) error {
	if s.stream == nil {
		stream, err := s.writer.CreateStreamWriter(s.path, true)
		if err != nil {
			return apperrors.NewStorageError("failed to open output", err).WithContext("path", s.path)
		}
		s.stream = stream
	}

	if writeHeader {
		if err := s.stream.WriteRecord(s.layout.Headers()); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for _, record := range rows {
		if err := s.stream.WriteRecord(s.layout.recordToCSVRow(record)); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	s.rows += len(rows)
	return s.stream.Flush()
}

// Rows returns the number of data rows written
func (s *PanelSink) Rows() int {
	return s.rows
}

// Close flushes and closes the output file
func (s *PanelSink) Close() error {
	if s.stream == nil {
		return nil
	}
	err := s.stream.Close()
	s.stream = nil
	s.logger.Debug("Panel output closed", slog.String("path", s.path), slog.Int("rows", s.rows))
	return err
}
