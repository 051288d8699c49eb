package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/ijcnam/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because the report is often redirected to a log file.
type SimpleWriter struct {
	baseWriter

	// verbose lists every file instead of counts only.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	if report.Crawl != nil {
		w.writeCrawl(&sb, report.Crawl)
	}
	if report.Clean != nil {
		w.writeClean(&sb, report.Clean)
	}
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

// writeHeader writes the run identification and status.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          IJ CNAM RUN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	if report.ID != "" {
		fmt.Fprintf(sb, "Run:       %s\n", report.ID)
	}
	fmt.Fprintf(sb, "Command:   %s\n", report.Kind)
	fmt.Fprintf(sb, "Started:   %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	if d := report.Duration(); d > 0 {
		fmt.Fprintf(sb, "Duration:  %s\n", d.Round(time.Millisecond))
	}
	if len(report.Steps) > 0 {
		fmt.Fprintf(sb, "Steps:     %s\n", strings.Join(report.Steps, ", "))
	}
	fmt.Fprintf(sb, "Status:    %s\n", statusText(report))
	sb.WriteString("\n")
}

// writeSection writes a section title between rules.
func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeCrawl writes the crawl section.
func (w *SimpleWriter) writeCrawl(sb *strings.Builder, crawl *model.CrawlSummary) {
	writeSection(sb, "CRAWL")

	fmt.Fprintf(sb, "  Seed:            %s\n", crawl.SeedURL)
	fmt.Fprintf(sb, "  Topic pages:     %d\n", crawl.TopicPages)
	fmt.Fprintf(sb, "  Downloaded:      %d\n", len(crawl.Downloaded))
	fmt.Fprintf(sb, "  Already present: %d\n", len(crawl.AlreadyPresent))
	fmt.Fprintf(sb, "  No spreadsheet:  %d\n", len(crawl.NoSpreadsheet))
	sb.WriteString("\n")

	if !w.verbose {
		return
	}

	for _, d := range crawl.Downloaded {
		fmt.Fprintf(sb, "  [+] %s (%d bytes, sha3 %s)\n", d.FileName, d.Size, shortDigest(d.SHA3))
	}
	for _, d := range crawl.AlreadyPresent {
		fmt.Fprintf(sb, "  [=] %s\n", d.FileName)
	}
	for _, page := range crawl.NoSpreadsheet {
		fmt.Fprintf(sb, "  [-] %s\n", page)
	}
	if len(crawl.Downloaded)+len(crawl.AlreadyPresent)+len(crawl.NoSpreadsheet) > 0 {
		sb.WriteString("\n")
	}
}

// writeClean writes the clean section.
func (w *SimpleWriter) writeClean(sb *strings.Builder, clean *model.CleanSummary) {
	writeSection(sb, "CLEAN")

	if len(clean.Datasets) == 0 {
		sb.WriteString("  No dataset written\n\n")
		return
	}

	for _, d := range clean.Datasets {
		fmt.Fprintf(sb, "  %-10s %8d rows from %2d sheets\n", d.Name, d.Rows, d.Sheets)
		if w.verbose {
			fmt.Fprintf(sb, "             %s\n", d.Path)
		}
	}
	fmt.Fprintf(sb, "\n  TOTAL:     %8d rows\n\n", clean.TotalRows())
}
