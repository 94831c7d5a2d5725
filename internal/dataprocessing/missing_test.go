package dataprocessing

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vinotumich/FIN427/internal/errors"
)

func TestSummarizer_AnalyzeMissing(t *testing.T) {
	input := "PERMNO,TICKER,SHROUT,NWPERM\n" +
		"1,,100,\n" +
		"1,AAA,0,\n" +
		"2, ,NA,\n" +
		"2,BBB,0\n"

	s := NewSummarizer(quietLogger(), DefaultSummarizerConfig())
	report, err := s.AnalyzeMissing(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 4, report.Rows)
	assert.Equal(t, 16, report.TotalCells)
	assert.Equal(t, 7, report.TotalMissing)
	assert.InDelta(t, 43.75, report.OverallMissingPct, 1e-9)

	require.Len(t, report.Columns, 4)
	order := make([]string, len(report.Columns))
	byName := map[string]ColumnMissing{}
	for i, c := range report.Columns {
		order[i] = c.Column
		byName[c.Column] = c
	}
	assert.Equal(t, []string{"NWPERM", "TICKER", "SHROUT", "PERMNO"}, order)

	nwperm := byName["NWPERM"]
	assert.Equal(t, 4, nwperm.Missing)
	assert.InDelta(t, 100.0, nwperm.MissingPct, 1e-9)
	assert.Equal(t, 0, nwperm.NonMissing)

	ticker := byName["TICKER"]
	assert.Equal(t, 2, ticker.Missing)
	assert.Equal(t, 1, ticker.EmptyStrings)
	assert.False(t, ticker.Numeric)
	assert.InDelta(t, 50.0, ticker.NonMissingPct, 1e-9)

	shrout := byName["SHROUT"]
	assert.Equal(t, 1, shrout.Missing)
	assert.True(t, shrout.Numeric)
	assert.Equal(t, 2, shrout.Zeros)

	permno := byName["PERMNO"]
	assert.Zero(t, permno.Missing)
	assert.Zero(t, permno.Zeros)
}

func TestSummarizer_AnalyzeMissing_Empty(t *testing.T) {
	s := NewSummarizer(quietLogger(), DefaultSummarizerConfig())

	_, err := s.AnalyzeMissing(context.Background(), strings.NewReader(""))
	assert.ErrorIs(t, err, apperrors.ErrEmptyInput)

	report, err := s.AnalyzeMissing(context.Background(), strings.NewReader("A,B\n"))
	require.NoError(t, err)
	assert.Zero(t, report.Rows)
	assert.Zero(t, report.OverallMissingPct)
}
