package exporter

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vinotumich/FIN427/internal/dataprocessing"
)

func sampleStats() []dataprocessing.DescriptiveStats {
	return []dataprocessing.DescriptiveStats{
		{
			Column: "ln_shrout_change",
			N:      3,
			Mean:   0.5,
			StdDev: 0.25,
			Min:    0.1,
			Max:    0.9,
			Percentiles: []dataprocessing.PercentileValue{
				{Percent: 12.5, Value: 0.1},
				{Percent: 50, Value: 0.5},
			},
		},
		{
			Column: "SHROUT",
			N:      1,
			Mean:   985,
			StdDev: math.NaN(),
			Min:    985,
			Max:    985,
			Percentiles: []dataprocessing.PercentileValue{
				{Percent: 12.5, Value: 985},
				{Percent: 50, Value: 985},
			},
		},
	}
}

func TestDescriptiveTable(t *testing.T) {
	headers, records := DescriptiveTable(sampleStats())

	assert.Equal(t, []string{"", "ln_shrout_change", "SHROUT"}, headers)
	assert.Equal(t, [][]string{
		{"N", "3", "1"},
		{"Mean", "0.5", "985"},
		{"Std Dev", "0.25", ""},
		{"Min", "0.1", "985"},
		{"12.5%", "0.1", "985"},
		{"50%", "0.5", "985"},
		{"Max", "0.9", "985"},
	}, records)
}

func TestReportExporter_ExportDescriptive(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "stats", "descriptive.csv")
	xlsxPath := filepath.Join(dir, "stats", "descriptive.xlsx")

	exp := NewReportExporter(quietLogger())
	require.NoError(t, exp.ExportDescriptive(context.Background(), csvPath, xlsxPath, sampleStats()))

	records := readCSV(t, csvPath)
	require.Len(t, records, 8)
	assert.Equal(t, []string{"Mean", "0.5", "985"}, records[2])

	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(descriptiveSheet)
	require.NoError(t, err)
	require.Len(t, rows, 8)
	assert.Equal(t, []string{"Statistic", "ln_shrout_change", "SHROUT"}, rows[0])
	assert.Equal(t, "N", rows[1][0])

	mean, err := f.GetCellValue(descriptiveSheet, "C3")
	require.NoError(t, err)
	assert.Equal(t, "985", mean)
}

func TestReportExporter_ExportDescriptiveCSVOnly(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "descriptive.csv")

	exp := NewReportExporter(nil)
	require.NoError(t, exp.ExportDescriptive(context.Background(), csvPath, "", sampleStats()))
	assert.Len(t, readCSV(t, csvPath), 8)
}

func TestReportExporter_ExportDescriptiveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exp := NewReportExporter(quietLogger())
	err := exp.ExportDescriptive(ctx, filepath.Join(t.TempDir(), "d.csv"), "", sampleStats())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReportExporter_WriteMissingCSV(t *testing.T) {
	report := &dataprocessing.MissingReport{
		Rows: 4,
		Columns: []dataprocessing.ColumnMissing{
			{Column: "TICKER", Missing: 2, MissingPct: 50, NonMissing: 2, NonMissingPct: 50, EmptyStrings: 1},
			{Column: "SHROUT", Missing: 1, MissingPct: 25, NonMissing: 3, NonMissingPct: 75, Zeros: 2, Numeric: true},
		},
	}
	path := filepath.Join(t.TempDir(), "missing_values_analysis.csv")

	require.NoError(t, NewReportExporter(quietLogger()).WriteMissingCSV(path, report))

	assert.Equal(t, [][]string{
		{"Column", "Missing Count", "Missing Percentage", "Non-Missing Count", "Non-Missing Percentage", "Empty Strings", "Zero Count"},
		{"TICKER", "2", "50.00", "2", "50.00", "1", ""},
		{"SHROUT", "1", "25.00", "3", "75.00", "0", "2"},
	}, readCSV(t, path))
}
