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

// NewCleanCmd creates the clean command.
func NewCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Reshape the downloaded spreadsheets into tidy CSV files",
		Long: `Clean reads the spreadsheets of data/ij_cnam/raw and writes one tidy CSV
file per dataset into data/ij_cnam/clean:

  age       ij_cnam_par_age.csv        by age bracket, three IJ categories
  age_sexe  ij_cnam_par_age_sexe.csv   by age bracket and sex, sickness only
  naf       ij_cnam_par_naf.csv        by employer NAF sector, four categories
  region    ij_cnam_par_region.csv     by region, sickness only

Values are converted to thousands of stoppages, millions of days and
billions of euros. Any missing sheet or column aborts the clean.

Examples:
  # Build every dataset
  ijcnam clean

  # Build two datasets and print a Markdown report
  ijcnam clean --only age,region --markdown`,
		Args: cobra.NoArgs,
		RunE: runCleanCmd,
	}

	addCleanFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// runCleanCmd executes the clean command.
func runCleanCmd(cmd *cobra.Command, _ []string) error {
	return runCommand(cmd, model.RunKindClean, cleanSteps)
}

// cleanSteps returns the single clean step.
func cleanSteps(cfg *config.Config, catalog *database.Catalog, progress io.Writer, logger *slog.Logger) ([]pipeline.Step, error) {
	c, err := newCleaner(cfg, catalog, progress, logger)
	if err != nil {
		return nil, err
	}
	return []pipeline.Step{pipeline.NewCleanStep(c)}, nil
}
