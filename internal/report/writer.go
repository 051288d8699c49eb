package report

import (
	"io"

	"github.com/nao1215/ijcnam/internal/model"
)

// Writer renders a run report. The CLI picks one implementation from
// the --json and --markdown flags and points it at stdout or --output.
type Writer interface {
	// Write renders report and returns the number of bytes written.
	Write(report *model.RunReport) (int, error)
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// statusText is the one-line status shared by every format.
func statusText(report *model.RunReport) string {
	if report.Error != "" {
		return "ERROR - " + report.Error
	}
	if report.FinishedAt.IsZero() {
		return "Running"
	}
	return "Complete"
}

// shortDigest keeps the first 12 hex characters of a SHA3-256 digest,
// enough to tell two downloads apart in a table.
func shortDigest(digest string) string {
	const width = 12
	if len(digest) <= width {
		return digest
	}
	return digest[:width]
}
