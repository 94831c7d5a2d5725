package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vinotumich/FIN427/internal/errors"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "panelclean.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 300_000, cfg.Processing.ChunkSize)
	assert.Equal(t, "degrade", cfg.Processing.TailPolicy)
	assert.Equal(t, "PERMNO", cfg.Processing.EntityCol)
	assert.Equal(t, "SHROUT", cfg.Processing.ValueCol)
	assert.Equal(t, []string{"TICKER", "COMNAM", "PERMCO", "CUSIP", "NWPERM"}, cfg.Processing.Passthrough)
	assert.Equal(t, []float64{1, 5, 12.5, 25, 50, 87.5, 95, 99}, cfg.Report.Percentiles)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfigFile(t, `
processing:
  chunk_size: 5000
  tail_policy: strict
paths:
  output: out/cleaned.csv
`)

	t.Run("file overrides defaults", func(t *testing.T) {
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 5000, cfg.Processing.ChunkSize)
		assert.Equal(t, "strict", cfg.Processing.TailPolicy)
		assert.Equal(t, "PERMNO", cfg.Processing.EntityCol, "keys absent from file keep defaults")
		assert.Equal(t, "out", cfg.StatsDir())
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("FIN427_PROCESSING_CHUNK_SIZE", "7")
		t.Setenv("FIN427_PROCESSING_PASSTHROUGH", "TICKER,COMNAM")

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 7, cfg.Processing.ChunkSize)
		assert.Equal(t, "strict", cfg.Processing.TailPolicy)
		assert.Equal(t, []string{"TICKER", "COMNAM"}, cfg.Processing.Passthrough)
	})

	t.Run("config path from env", func(t *testing.T) {
		t.Setenv("FIN427_CONFIG", path)

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 5000, cfg.Processing.ChunkSize)
	})
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero chunk size", "processing:\n  chunk_size: 0\n"},
		{"unknown tail policy", "processing:\n  tail_policy: drop\n"},
		{"percentile out of range", "report:\n  percentiles: [50, 100]\n"},
		{"bad log level", "logging:\n  level: verbose\n"},
		{"passthrough duplicates value", "processing:\n  passthrough: [TICKER, SHROUT]\n"},
		{"malformed yaml", "processing: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfigFile(t, tt.content))
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestStatsDir(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ".", cfg.StatsDir())

	cfg.Paths.Output = "/data/clean/panel.csv"
	assert.Equal(t, "/data/clean", cfg.StatsDir())

	cfg.Paths.StatsDir = "/data/stats"
	assert.Equal(t, "/data/stats", cfg.StatsDir())
}
