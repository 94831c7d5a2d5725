package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/vinotumich/FIN427/internal/dataprocessing"
	apperrors "github.com/vinotumich/FIN427/internal/errors"
)

const descriptiveSheet = "Descriptive"

// ReportExporter writes the summary tables derived from a panel
type ReportExporter struct {
	writer *CSVWriter
	logger *slog.Logger
}

// NewReportExporter creates a report exporter
func NewReportExporter(logger *slog.Logger) *ReportExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportExporter{writer: NewCSVWriter(logger), logger: logger}
}

// statRow is one statistic across every described column
type statRow struct {
	label string
	value func(d dataprocessing.DescriptiveStats) float64
}

// descriptiveRows lists the statistics in table order: N, Mean, Std Dev,
// Min, each percentile, Max
func descriptiveRows(stats []dataprocessing.DescriptiveStats) []statRow {
	rows := []statRow{
		{"N", func(d dataprocessing.DescriptiveStats) float64 { return float64(d.N) }},
		{"Mean", func(d dataprocessing.DescriptiveStats) float64 { return d.Mean }},
		{"Std Dev", func(d dataprocessing.DescriptiveStats) float64 { return d.StdDev }},
		{"Min", func(d dataprocessing.DescriptiveStats) float64 { return d.Min }},
	}
	if len(stats) > 0 {
		for i, p := range stats[0].Percentiles {
			i := i
			rows = append(rows, statRow{p.Label(), func(d dataprocessing.DescriptiveStats) float64 {
				if i < len(d.Percentiles) {
					return d.Percentiles[i].Value
				}
				return math.NaN()
			}})
		}
	}
	return append(rows, statRow{"Max", func(d dataprocessing.DescriptiveStats) float64 { return d.Max }})
}

// DescriptiveTable lays the statistics out with one row per statistic and
// one column per variable
func DescriptiveTable(stats []dataprocessing.DescriptiveStats) ([]string, [][]string) {
	headers := make([]string, 0, len(stats)+1)
	headers = append(headers, "")
	for _, d := range stats {
		headers = append(headers, d.Column)
	}

	var records [][]string
	for _, row := range descriptiveRows(stats) {
		record := make([]string, 0, len(stats)+1)
		record = append(record, row.label)
		for _, d := range stats {
			record = append(record, formatFloat(row.value(d)))
		}
		records = append(records, record)
	}
	return headers, records
}

// WriteDescriptiveCSV writes the descriptive table to a CSV file
func (r *ReportExporter) WriteDescriptiveCSV(path string, stats []dataprocessing.DescriptiveStats) error {
	headers, records := DescriptiveTable(stats)
	if err := r.writer.WriteSimpleCSV(path, headers, records); err != nil {
		return apperrors.NewStorageError("failed to write descriptive statistics", err).WithContext("path", path)
	}
	return nil
}

// WriteDescriptiveXLSX writes the descriptive table to a workbook. Numbers
// are stored as numeric cells.
func (r *ReportExporter) WriteDescriptiveXLSX(path string, stats []dataprocessing.DescriptiveStats) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", descriptiveSheet); err != nil {
		return apperrors.NewStorageError("failed to name sheet", err)
	}

	header := []interface{}{"Statistic"}
	for _, d := range stats {
		header = append(header, d.Column)
	}
	if err := f.SetSheetRow(descriptiveSheet, "A1", &header); err != nil {
		return apperrors.NewStorageError("failed to write header row", err)
	}

	for i, row := range descriptiveRows(stats) {
		values := []interface{}{row.label}
		for _, d := range stats {
			v := row.value(d)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				values = append(values, "")
				continue
			}
			values = append(values, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperrors.NewStorageError("failed to address row", err)
		}
		if err := f.SetSheetRow(descriptiveSheet, cell, &values); err != nil {
			return apperrors.NewStorageError("failed to write row", err).WithContext("row", row.label)
		}
	}

	if err := f.SetColWidth(descriptiveSheet, "A", "A", 14); err != nil {
		return apperrors.NewStorageError("failed to size column", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err)
	}
	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError("failed to save workbook", err).WithContext("path", path)
	}
	return nil
}

// ExportDescriptive writes the CSV and, when xlsxPath is set, the workbook
// form of the table concurrently
func (r *ReportExporter) ExportDescriptive(ctx context.Context, csvPath, xlsxPath string, stats []dataprocessing.DescriptiveStats) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		return r.WriteDescriptiveCSV(csvPath, stats)
	})
	if xlsxPath != "" {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return r.WriteDescriptiveXLSX(xlsxPath, stats)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "Descriptive statistics exported",
		slog.String("csv", csvPath),
		slog.String("xlsx", xlsxPath),
		slog.Int("columns", len(stats)))
	return nil
}

// MissingTable lays out a missing-value report, one row per column
func MissingTable(report *dataprocessing.MissingReport) ([]string, [][]string) {
	headers := []string{
		"Column",
		"Missing Count",
		"Missing Percentage",
		"Non-Missing Count",
		"Non-Missing Percentage",
		"Empty Strings",
		"Zero Count",
	}

	records := make([][]string, 0, len(report.Columns))
	for _, c := range report.Columns {
		zeros := ""
		if c.Numeric {
			zeros = formatInt(c.Zeros)
		}
		records = append(records, []string{
			c.Column,
			formatInt(c.Missing),
			formatPercent(c.MissingPct),
			formatInt(c.NonMissing),
			formatPercent(c.NonMissingPct),
			formatInt(c.EmptyStrings),
			zeros,
		})
	}
	return headers, records
}

// WriteMissingCSV writes the missing-value table to a CSV file
func (r *ReportExporter) WriteMissingCSV(path string, report *dataprocessing.MissingReport) error {
	headers, records := MissingTable(report)
	if err := r.writer.WriteSimpleCSV(path, headers, records); err != nil {
		return apperrors.NewStorageError("failed to write missing value analysis", err).WithContext("path", path)
	}
	r.logger.Info("Missing value analysis exported",
		slog.String("path", path),
		slog.Int("rows", report.Rows),
		slog.String("overall_missing_pct", fmt.Sprintf("%.2f", report.OverallMissingPct)))
	return nil
}
