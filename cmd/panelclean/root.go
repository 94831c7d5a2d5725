package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vinotumich/FIN427/internal/config"
	"github.com/vinotumich/FIN427/internal/dataprocessing"
	"github.com/vinotumich/FIN427/internal/infrastructure"
)

func newRootCommand() *cobra.Command {
	var configFile string

	command := &cobra.Command{
		Use:           "panelclean",
		Short:         "Stream-clean monthly entity panels",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	command.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (defaults to FIN427_CONFIG or ./panelclean.yaml)")

	command.AddCommand(
		newCleanCommand(&configFile),
		newDescribeCommand(&configFile),
		newMissingCommand(&configFile),
	)
	return command
}

// setup loads the configuration, lets override adjust it from flags and
// prepares the run logger and context
func setup(ctx context.Context, configFile string, override func(*config.Config)) (context.Context, *config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return ctx, nil, nil, err
	}
	if override != nil {
		override(cfg)
		if err := cfg.Validate(); err != nil {
			return ctx, nil, nil, err
		}
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	ctx = infrastructure.EnsureRunID(ctx)
	return ctx, cfg, logger, nil
}

// columnSpec maps the configured column names onto the reader layout
func columnSpec(p config.ProcessingConfig) dataprocessing.ColumnSpec {
	return dataprocessing.ColumnSpec{
		Entity:      p.EntityCol,
		Date:        p.DateCol,
		Marker:      p.MarkerCol,
		Value:       p.ValueCol,
		Passthrough: p.Passthrough,
	}
}

func summarizerConfig(r config.ReportConfig) dataprocessing.SummarizerConfig {
	cfg := dataprocessing.SummarizerConfig{
		Percentiles:     r.Percentiles,
		MinObservations: r.MinObservations,
	}
	if r.Column != "" {
		cfg.Columns = []string{r.Column}
	}
	return cfg
}
