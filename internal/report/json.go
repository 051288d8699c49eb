package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/ijcnam/internal/model"
)

// JSONWriter prints a run report as a single JSON document, for scripts
// that chain ijcnam with other tools.
type JSONWriter struct {
	baseWriter
	version string
	pretty  bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint indents the document with two spaces.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.pretty = true
	}
}

// WithVersion stamps the ijcnam version on the document.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter returns a JSONWriter printing to output.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport is the document printed by JSONWriter. The run report is
// nested as stored in the catalog; version and status are output only.
type JSONReport struct {
	Version string           `json:"version,omitempty"`
	Status  string           `json:"status"`
	Report  *model.RunReport `json:"report"`
}

// Write implements Writer. Labels keep their "&" and accents unescaped.
func (w *JSONWriter) Write(report *model.RunReport) (int, error) {
	cw := &countingWriter{w: w.output}
	enc := json.NewEncoder(cw)
	enc.SetEscapeHTML(false)
	if w.pretty {
		enc.SetIndent("", "  ")
	}
	err := enc.Encode(&JSONReport{
		Version: w.version,
		Status:  statusText(report),
		Report:  report,
	})
	return cw.n, err
}

// countingWriter counts the bytes an encoder writes through it.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
