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

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Download the IJ spreadsheets",
		Long: `Crawl reads the index page, follows every IJ topic page it links to and
downloads the first spreadsheet linked from each page into data/ij_cnam/raw.

Spreadsheets already present are not downloaded again. Delete a file to
fetch its latest version.

Examples:
  # Download into ./data/ij_cnam/raw
  ijcnam crawl

  # Use another project root and a SOCKS5 proxy
  ijcnam crawl --root /srv/open-data --proxy 127.0.0.1:1080`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	addCrawlFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	return runCommand(cmd, model.RunKindCrawl, crawlSteps)
}

// crawlSteps returns the single crawl step.
func crawlSteps(cfg *config.Config, catalog *database.Catalog, progress io.Writer, logger *slog.Logger) ([]pipeline.Step, error) {
	c, err := newCrawler(cfg, catalog, progress, logger)
	if err != nil {
		return nil, err
	}
	return []pipeline.Step{pipeline.NewCrawlStep(c, cfg.SeedURL, cfg.RawDir())}, nil
}
