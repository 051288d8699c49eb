package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/ijcnam/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed to be committed next to the clean datasets.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	if report.Crawl != nil {
		w.writeCrawl(md, report.Crawl)
	}
	if report.Clean != nil {
		w.writeClean(md, report.Clean)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the run information table and status alert.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("IJ CNAM Run Report")
	md.PlainText("")

	rows := [][]string{
		{"Command", "`" + report.Kind + "`"},
		{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
	}
	if report.ID != "" {
		rows = append([][]string{{"Run", "`" + report.ID + "`"}}, rows...)
	}
	if d := report.Duration(); d > 0 {
		rows = append(rows, []string{"Duration", d.Round(time.Millisecond).String()})
	}
	rows = append(rows, []string{"Status", statusText(report)})

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if report.Error != "" {
		md.Cautionf("The run stopped: %s", report.Error)
	} else {
		md.Tip("The run completed without error.")
	}
	md.PlainText("")
}

// writeCrawl writes the crawl section.
func (w *MarkdownWriter) writeCrawl(md *markdown.Markdown, crawl *model.CrawlSummary) {
	md.H2("Crawl")
	md.PlainText("")
	md.PlainTextf("Seed: %s", crawl.SeedURL)
	md.PlainText("")

	rows := make([][]string, 0, len(crawl.Downloaded)+len(crawl.AlreadyPresent))
	for _, d := range crawl.Downloaded {
		rows = append(rows, []string{d.FileName, "downloaded", strconv.FormatInt(d.Size, 10), "`" + shortDigest(d.SHA3) + "`"})
	}
	for _, d := range crawl.AlreadyPresent {
		rows = append(rows, []string{d.FileName, "already present", strconv.FormatInt(d.Size, 10), "-"})
	}

	if len(rows) == 0 {
		md.PlainText("No spreadsheet found.")
		md.PlainText("")
	} else {
		md.Table(markdown.TableSet{
			Header: []string{"File", "Status", "Bytes", "SHA3-256"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(crawl.NoSpreadsheet) > 0 {
		md.Note(fmt.Sprintf("%d topic page(s) had no spreadsheet link.", len(crawl.NoSpreadsheet)))
		md.PlainText("")
		md.BulletList(crawl.NoSpreadsheet...)
		md.PlainText("")
	}
}

// writeClean writes the dataset table and a row distribution chart.
func (w *MarkdownWriter) writeClean(md *markdown.Markdown, clean *model.CleanSummary) {
	md.H2("Datasets")
	md.PlainText("")

	if len(clean.Datasets) == 0 {
		md.PlainText("No dataset written.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(clean.Datasets)+1)
	for _, d := range clean.Datasets {
		rows = append(rows, []string{d.Name, "`" + d.Path + "`", strconv.Itoa(d.Sheets), strconv.Itoa(d.Rows)})
	}
	rows = append(rows, []string{"**Total**", "", "", "**" + strconv.Itoa(clean.TotalRows()) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Dataset", "File", "Sheets", "Rows"},
		Rows:   rows,
	})
	md.PlainText("")

	if clean.TotalRows() > 0 {
		w.writePieChart(md, clean)
	}
}

// writePieChart writes a mermaid pie chart of rows per dataset.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, clean *model.CleanSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Rows per dataset"),
		piechart.WithShowData(true),
	)
	for _, d := range clean.Datasets {
		if d.Rows > 0 {
			chart.LabelAndIntValue(d.Name, uint64(d.Rows))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [ijcnam](https://github.com/nao1215/ijcnam)*")
}
