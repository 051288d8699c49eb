package model

import "time"

// Run kinds recorded in reports and in the catalog.
const (
	RunKindCrawl = "crawl"
	RunKindClean = "clean"
	RunKindFull  = "run"
)

// Download describes a spreadsheet file in the raw data directory.
type Download struct {
	// Page is the topic page the spreadsheet link was found on.
	Page string `json:"page,omitempty"`

	// URL is the absolute spreadsheet URL.
	URL string `json:"url"`

	// FileName is the final path segment of URL without query string.
	FileName string `json:"file_name"`

	// Path is the on-disk location of the file.
	Path string `json:"path"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// SHA3 is the hex SHA3-256 digest of the body. Empty when the file was
	// already present and therefore not fetched.
	SHA3 string `json:"sha3_256,omitempty"`

	// AlreadyPresent is true when the file existed and no fetch happened.
	AlreadyPresent bool `json:"already_present"`
}

// CrawlSummary is the outcome of one crawl.
type CrawlSummary struct {
	// SeedURL is the index page the crawl started from.
	SeedURL string `json:"seed_url"`

	// TopicPages is the number of distinct topic pages visited.
	TopicPages int `json:"topic_pages"`

	// Downloaded lists files fetched during this crawl.
	Downloaded []Download `json:"downloaded"`

	// AlreadyPresent lists files skipped because they were on disk.
	AlreadyPresent []Download `json:"already_present"`

	// NoSpreadsheet lists topic pages without any spreadsheet link.
	NoSpreadsheet []string `json:"no_spreadsheet"`
}

// DatasetSummary describes one clean CSV output.
type DatasetSummary struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Rows   int    `json:"rows"`
	Sheets int    `json:"sheets"`
}

// CleanSummary is the outcome of one clean run.
type CleanSummary struct {
	Datasets []DatasetSummary `json:"datasets"`
}

// TotalRows returns the number of records written across all datasets.
func (s *CleanSummary) TotalRows() int {
	total := 0
	for _, d := range s.Datasets {
		total += d.Rows
	}
	return total
}

// RunReport gathers everything a CLI invocation produced.
// Steps fill in Crawl and Clean; the CLI fills in the remaining fields.
type RunReport struct {
	// ID is the catalog run identifier (empty when the catalog is disabled).
	ID string `json:"id,omitempty"`

	// Kind is one of RunKindCrawl, RunKindClean or RunKindFull.
	Kind string `json:"kind"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Steps lists the pipeline steps that completed, in order.
	Steps []string `json:"steps"`

	Crawl *CrawlSummary `json:"crawl,omitempty"`
	Clean *CleanSummary `json:"clean,omitempty"`

	// Error is the message of the error that stopped the run, if any.
	Error string `json:"error,omitempty"`
}

// NewRunReport creates a report for a run of the given kind starting now.
func NewRunReport(kind string) *RunReport {
	return &RunReport{
		Kind:      kind,
		StartedAt: time.Now(),
		Steps:     make([]string, 0),
	}
}

// Succeeded reports whether the run finished without error.
func (r *RunReport) Succeeded() bool {
	return r.Error == ""
}

// Duration returns the elapsed run time, or zero if the run is not finished.
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
