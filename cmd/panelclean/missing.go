package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vinotumich/FIN427/internal/config"
	"github.com/vinotumich/FIN427/internal/dataprocessing"
	"github.com/vinotumich/FIN427/internal/exporter"
	"github.com/vinotumich/FIN427/internal/validation"
)

const missingReportFile = "missing_values_analysis.csv"

func newMissingCommand(configFile *string) *cobra.Command {
	var input string

	command := &cobra.Command{
		Use:   "missing",
		Short: "Write a missing-value analysis of a panel CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, logger, err := setup(cmd.Context(), *configFile, nil)
			if err != nil {
				return err
			}
			if input == "" {
				input = cfg.Paths.Input
			}

			path, report, err := runMissing(ctx, cfg, logger, input)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Analyzed %d rows and %d columns of %s\n", report.Rows, len(report.Columns), input)
			fmt.Fprintf(out, "Overall missing: %.2f%% (%d of %d cells)\n",
				report.OverallMissingPct, report.TotalMissing, report.TotalCells)
			fmt.Fprintf(out, "Missing-value analysis: %s\n", path)
			return nil
		},
	}

	command.Flags().StringVar(&input, "in", "", "panel CSV to analyze (defaults to the configured input)")
	return command
}

func runMissing(ctx context.Context, cfg *config.Config, logger *slog.Logger, input string) (string, *dataprocessing.MissingReport, error) {
	f, err := openCSVInput(logger, input)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	summarizer := dataprocessing.NewSummarizer(logger, summarizerConfig(cfg.Report))
	report, err := summarizer.AnalyzeMissing(ctx, f)
	if err != nil {
		return "", nil, err
	}

	dir := cfg.StatsDir()
	if err := validation.NewFileValidator(logger).ValidateOutputDirectory(dir); err != nil {
		return "", nil, err
	}
	path := filepath.Join(dir, missingReportFile)
	if err := exporter.NewReportExporter(logger).WriteMissingCSV(path, report); err != nil {
		return "", nil, err
	}
	return path, report, nil
}
