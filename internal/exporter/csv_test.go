package exporter

import (
	"bytes"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestEnv returns a writer with a discarded log and a scratch directory
func setupTestEnv(t *testing.T) (*CSVWriter, string) {
	t.Helper()
	return NewCSVWriter(slog.New(slog.NewTextHandler(io.Discard, nil))), t.TempDir()
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})

	records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	writer, dir := setupTestEnv(t)
	path := filepath.Join(dir, "nested", "out.csv")

	err := writer.WriteCSV(path, WriteOptions{
		Headers:   []string{"a", "b"},
		Records:   [][]string{{"1", "x"}, {"2", "y, z"}},
		BOMPrefix: true,
	})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}))

	err = writer.WriteCSV(path, WriteOptions{
		Headers: []string{"ignored"},
		Records: [][]string{{"3", "w"}},
		Append:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"a", "b"}, {"1", "x"}, {"2", "y, z"}, {"3", "w"}}, readCSV(t, path))
}

func TestCSVWriter_WriteSimpleCSVTruncates(t *testing.T) {
	writer, dir := setupTestEnv(t)
	path := filepath.Join(dir, "out.csv")

	require.NoError(t, writer.WriteSimpleCSV(path, []string{"h"}, [][]string{{"1"}, {"2"}}))
	require.NoError(t, writer.WriteSimpleCSV(path, []string{"h"}, [][]string{{"3"}}))

	assert.Equal(t, [][]string{{"h"}, {"3"}}, readCSV(t, path))
}

func TestStreamWriter(t *testing.T) {
	writer, dir := setupTestEnv(t)
	path := filepath.Join(dir, "stream.csv")

	stream, err := writer.CreateStreamWriter(path, false)
	require.NoError(t, err)
	require.NoError(t, stream.WriteRecord([]string{"a"}))
	require.NoError(t, stream.Close())

	stream, err = writer.CreateStreamWriter(path, true)
	require.NoError(t, err)
	require.NoError(t, stream.WriteRecord([]string{"b"}))
	require.NoError(t, stream.Flush())
	require.NoError(t, stream.Close())

	assert.Equal(t, [][]string{{"a"}, {"b"}}, readCSV(t, path))
}
