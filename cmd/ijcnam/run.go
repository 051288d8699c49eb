package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/ijcnam/internal/config"
	"github.com/nao1215/ijcnam/internal/database"
	"github.com/nao1215/ijcnam/internal/model"
	"github.com/nao1215/ijcnam/internal/pipeline"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Crawl then clean",
		Long: `Run downloads the IJ spreadsheets and builds the tidy CSV files in one go.
It is equivalent to "ijcnam crawl" followed by "ijcnam clean", and stops at
the first failure.

Examples:
  ijcnam run
  ijcnam run --only naf --json -o reports/last-run.json`,
		Args: cobra.NoArgs,
		RunE: runRunCmd,
	}

	addCrawlFlags(cmd)
	addCleanFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, _ []string) error {
	return runCommand(cmd, model.RunKindFull, fullSteps)
}

// fullSteps returns the crawl step followed by the clean step.
func fullSteps(cfg *config.Config, catalog *database.Catalog, progress io.Writer, logger *slog.Logger) ([]pipeline.Step, error) {
	crawl, err := crawlSteps(cfg, catalog, progress, logger)
	if err != nil {
		return nil, err
	}
	clean, err := cleanSteps(cfg, catalog, progress, logger)
	if err != nil {
		return nil, err
	}
	return append(crawl, clean...), nil
}
