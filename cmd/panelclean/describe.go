package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vinotumich/FIN427/internal/config"
	"github.com/vinotumich/FIN427/internal/dataprocessing"
	apperrors "github.com/vinotumich/FIN427/internal/errors"
	"github.com/vinotumich/FIN427/internal/validation"
)

func newDescribeCommand(configFile *string) *cobra.Command {
	var (
		input  string
		column string
	)

	command := &cobra.Command{
		Use:   "describe",
		Short: "Write descriptive statistics for the numeric columns of a panel CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, logger, err := setup(cmd.Context(), *configFile, func(cfg *config.Config) {
				if cmd.Flags().Changed("column") {
					cfg.Report.Column = column
				}
			})
			if err != nil {
				return err
			}
			if input == "" {
				input = cfg.Paths.Output
			}

			path, stats, skipped, err := runDescribe(ctx, cfg, logger, input)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Described %d columns of %s\n", len(stats), input)
			for _, s := range skipped {
				fmt.Fprintf(out, "Skipped %s: %s\n", s.Column, s.Reason)
			}
			fmt.Fprintf(out, "Descriptive statistics: %s\n", path)
			return nil
		},
	}

	command.Flags().StringVar(&input, "in", "", "panel CSV to describe (defaults to the configured output)")
	command.Flags().StringVar(&column, "column", "", "describe only this column")
	return command
}

func runDescribe(ctx context.Context, cfg *config.Config, logger *slog.Logger, input string) (string, []dataprocessing.DescriptiveStats, []dataprocessing.SkippedColumn, error) {
	f, err := openCSVInput(logger, input)
	if err != nil {
		return "", nil, nil, err
	}
	defer f.Close()

	summarizer := dataprocessing.NewSummarizer(logger, summarizerConfig(cfg.Report))
	stats, skipped, err := summarizer.DescribeCSV(ctx, f)
	if err != nil {
		return "", nil, nil, err
	}
	if len(stats) == 0 {
		return "", nil, skipped, apperrors.NewValidationError("no column had enough numeric values to describe", nil).
			WithContext("file", input)
	}

	name := "descriptive_statistics"
	if cfg.Report.Column != "" {
		name = "descriptive_" + cfg.Report.Column
	}
	path, err := exportDescriptive(ctx, cfg, logger, name, stats)
	if err != nil {
		return "", nil, nil, err
	}
	return path, stats, skipped, nil
}

// openCSVInput validates and opens a CSV report input
func openCSVInput(logger *slog.Logger, path string) (*os.File, error) {
	if path == "" {
		return nil, apperrors.NewValidationError("no input file given", nil)
	}
	format, err := validation.NewFileValidator(logger).ValidateInputFile(path)
	if err != nil {
		return nil, err
	}
	if format != validation.FormatCSV {
		return nil, apperrors.NewValidationError("reports read CSV input only", nil).
			WithContext("file", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open input", err).WithContext("file", path)
	}
	return f, nil
}
