package pipeline

import (
	"context"

	"github.com/nao1215/ijcnam/internal/crawler"
	"github.com/nao1215/ijcnam/internal/model"
	"github.com/nao1215/ijcnam/internal/transform"
)

// Step names, as recorded in RunReport.Steps.
const (
	StepCrawl = "crawl"
	StepClean = "clean"
)

// CrawlStep discovers the topic pages of the seed and downloads their
// spreadsheets into the raw data directory.
type CrawlStep struct {
	crawler *crawler.Crawler
	seedURL string
	rawDir  string
}

// NewCrawlStep creates a crawl step.
func NewCrawlStep(c *crawler.Crawler, seedURL, rawDir string) *CrawlStep {
	return &CrawlStep{
		crawler: c,
		seedURL: seedURL,
		rawDir:  rawDir,
	}
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return StepCrawl
}

// Do executes the crawl. The partial summary is kept in the report on error.
func (s *CrawlStep) Do(ctx context.Context, report *model.RunReport) error {
	summary, err := s.crawler.Crawl(ctx, s.seedURL, s.rawDir)
	report.Crawl = summary
	return err
}

// CleanStep builds the clean CSV datasets from the raw spreadsheets.
type CleanStep struct {
	cleaner *transform.Cleaner
}

// NewCleanStep creates a clean step.
func NewCleanStep(c *transform.Cleaner) *CleanStep {
	return &CleanStep{cleaner: c}
}

// Name returns the step name.
func (s *CleanStep) Name() string {
	return StepClean
}

// Do executes the clean. The datasets written before a failure are kept in
// the report.
func (s *CleanStep) Do(ctx context.Context, report *model.RunReport) error {
	summary, err := s.cleaner.Run(ctx)
	report.Clean = summary
	return err
}
