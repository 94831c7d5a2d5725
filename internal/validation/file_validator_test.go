package validation

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vinotumich/FIN427/internal/errors"
)

func newTestValidator() *FileValidator {
	return NewFileValidator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFileValidator_ValidateFile(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantType  apperrors.ErrorType
	}{
		{
			name: "readable file",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "raw.csv")
				require.NoError(t, os.WriteFile(path, []byte("a\n"), 0644))
				return path
			},
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope.csv")
			},
			wantType: apperrors.ErrTypeNotFound,
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			wantType: apperrors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newTestValidator().ValidateFile(tt.setupFunc(t))
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.wantType), err.Error())
		})
	}
}

func TestFileValidator_ValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		return path
	}

	tests := []struct {
		name    string
		path    string
		want    InputFormat
		wantErr bool
	}{
		{"csv", write("raw.csv"), FormatCSV, false},
		{"upper case csv", write("RAW.CSV"), FormatCSV, false},
		{"txt", write("raw.txt"), FormatCSV, false},
		{"xlsx", write("raw.xlsx"), FormatXLSX, false},
		{"legacy xls", write("raw.xls"), "", true},
		{"excel lock file", write("~$raw.xlsx"), "", true},
		{"parquet", write("raw.parquet"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newTestValidator().ValidateInputFile(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, newTestValidator().ValidateOutputDirectory(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = os.Stat(filepath.Join(dir, ".write_test"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileValidator_ValidateOutputFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "raw.csv")
	require.NoError(t, os.WriteFile(input, []byte("x"), 0644))

	v := newTestValidator()

	assert.NoError(t, v.ValidateOutputFile(filepath.Join(dir, "out", "cleaned.csv"), input))

	err := v.ValidateOutputFile(input, input)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	err = v.ValidateOutputFile(filepath.Join(dir, ".", "raw.csv"), input)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	err = v.ValidateOutputFile(dir, input)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	err = v.ValidateOutputFile("", input)
	assert.Error(t, err)
}
