package dataprocessing

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/vinotumich/FIN427/internal/errors"
)

// ColumnMissing is the missing-value profile of one column
type ColumnMissing struct {
	Column        string
	Missing       int
	MissingPct    float64
	NonMissing    int
	NonMissingPct float64
	EmptyStrings  int // non-empty cells holding only whitespace
	Zeros         int // zero cells; counted for numeric columns only
	Numeric       bool
}

// MissingReport summarizes missing values across a panel file
type MissingReport struct {
	Rows              int
	Columns           []ColumnMissing // sorted by Missing, most first
	TotalMissing      int
	TotalCells        int
	OverallMissingPct float64
}

// AnalyzeMissing profiles every column of a panel CSV in one pass. A cell is
// missing when it is empty or an NA token; rows shorter than the header are
// missing their trailing cells.
func (s *Summarizer) AnalyzeMissing(ctx context.Context, r io.Reader) (*MissingReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.NewValidationError("input has no header row", apperrors.ErrEmptyInput)
	}
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read header", err)
	}

	columns := make([]ColumnMissing, len(header))
	for i, name := range header {
		columns[i] = ColumnMissing{Column: strings.TrimSpace(strings.TrimPrefix(name, utf8BOM)), Numeric: true}
	}

	rows := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("malformed CSV row", err).WithContext("row", rows+2)
		}
		rows++
		if rows%100000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		for i := range columns {
			col := &columns[i]
			if i >= len(row) {
				col.Missing++
				continue
			}
			cell := row[i]
			if IsMissing(cell) {
				col.Missing++
				if cell != "" && strings.TrimSpace(cell) == "" {
					col.EmptyStrings++
				}
				continue
			}
			if !col.Numeric {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				col.Numeric, col.Zeros = false, 0
				continue
			}
			if v == 0 {
				col.Zeros++
			}
		}
	}

	report := &MissingReport{Rows: rows, TotalCells: rows * len(columns)}
	for i := range columns {
		col := &columns[i]
		col.NonMissing = rows - col.Missing
		if rows > 0 {
			col.MissingPct = float64(col.Missing) / float64(rows) * 100
			col.NonMissingPct = 100 - col.MissingPct
		}
		report.TotalMissing += col.Missing
	}
	if report.TotalCells > 0 {
		report.OverallMissingPct = float64(report.TotalMissing) / float64(report.TotalCells) * 100
	}

	sort.SliceStable(columns, func(i, j int) bool {
		return columns[i].Missing > columns[j].Missing
	})
	report.Columns = columns

	s.logger.InfoContext(ctx, "Missing value analysis complete",
		slog.Int("rows", rows),
		slog.Int("columns", len(columns)),
		slog.Int("total_missing", report.TotalMissing))

	return report, nil
}
