package transform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/ijcnam/internal/model"
)

// DatasetSink receives every dataset after its CSV has been written.
// The SQLite catalog implements it.
type DatasetSink interface {
	StoreDataset(ctx context.Context, d *model.Dataset) error
}

// Cleaner builds the clean datasets from the raw spreadsheets.
type Cleaner struct {
	rawDir   string
	cleanDir string

	datasets []DatasetSpec
	sinks    []DatasetSink

	// progress receives the human-readable progress lines.
	progress io.Writer

	logger *slog.Logger
}

// Option configures a Cleaner.
type Option func(*Cleaner)

// WithDatasets restricts the Cleaner to the given catalog entries.
func WithDatasets(specs []DatasetSpec) Option {
	return func(c *Cleaner) {
		c.datasets = specs
	}
}

// WithSink adds a dataset sink.
func WithSink(s DatasetSink) Option {
	return func(c *Cleaner) {
		if s != nil {
			c.sinks = append(c.sinks, s)
		}
	}
}

// WithProgressWriter sets where progress lines are printed.
func WithProgressWriter(w io.Writer) Option {
	return func(c *Cleaner) {
		if w != nil {
			c.progress = w
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cleaner) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCleaner creates a Cleaner reading from rawDir and writing to cleanDir.
// By default it builds the whole catalog.
func NewCleaner(rawDir, cleanDir string, opts ...Option) *Cleaner {
	c := &Cleaner{
		rawDir:   rawDir,
		cleanDir: cleanDir,
		datasets: Catalog(),
		progress: io.Discard,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Datasets returns the catalog entries the Cleaner builds.
func (c *Cleaner) Datasets() []DatasetSpec {
	return c.datasets
}

// Run builds every dataset in order. Each dataset is built completely,
// written, and handed to the sinks before the next one starts. The first
// error aborts the run; the summary lists the datasets written so far.
func (c *Cleaner) Run(ctx context.Context) (*model.CleanSummary, error) {
	summary := &model.CleanSummary{Datasets: make([]model.DatasetSummary, 0, len(c.datasets))}

	if err := os.MkdirAll(c.cleanDir, 0o750); err != nil {
		return summary, fmt.Errorf("failed to create directory %s: %w", c.cleanDir, err)
	}

	for _, spec := range c.datasets {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		d, sheets, err := c.Build(ctx, spec)
		if err != nil {
			return summary, fmt.Errorf("failed to build dataset %s: %w", spec.Name, err)
		}

		out := filepath.Join(c.cleanDir, spec.FileName)
		if err := WriteCSV(out, d); err != nil {
			return summary, err
		}
		c.printf("Wrote %d rows to %s\n", len(d.Records), out)
		c.logger.Info("dataset written", "dataset", spec.Name, "path", out, "rows", len(d.Records))

		for _, sink := range c.sinks {
			if err := sink.StoreDataset(ctx, d); err != nil {
				return summary, fmt.Errorf("failed to store dataset %s: %w", spec.Name, err)
			}
		}

		summary.Datasets = append(summary.Datasets, model.DatasetSummary{
			Name:   spec.Name,
			Path:   out,
			Rows:   len(d.Records),
			Sheets: sheets,
		})
	}

	return summary, nil
}

// Build reads every (source, sheet) pair of spec and concatenates the
// reshaped records in catalog order. It returns the number of sheets read.
func (c *Cleaner) Build(ctx context.Context, spec DatasetSpec) (*model.Dataset, int, error) {
	d := &model.Dataset{
		Name:              spec.Name,
		FileName:          spec.FileName,
		IdentifierColumns: spec.Columns(),
		Records:           make([]model.Record, 0),
	}

	sheets := 0
	for _, src := range spec.Sources {
		if err := ctx.Err(); err != nil {
			return nil, sheets, err
		}

		if src.Sex != "" {
			c.printf("Loading %s data by %s for %s: %s\n", spec.Name, src.Dimension, src.Sex, src.Category)
		} else {
			c.printf("Loading %s data: %s\n", spec.Name, src.Category)
		}

		n, err := c.readSource(spec, src, d)
		sheets += n
		if err != nil {
			return nil, sheets, err
		}
	}

	return d, sheets, nil
}

// readSource appends the records of every unit sheet of src to d.
func (c *Cleaner) readSource(spec DatasetSpec, src Source, d *model.Dataset) (int, error) {
	wb, err := OpenWorkbook(filepath.Join(c.rawDir, src.FileName()))
	if err != nil {
		return 0, err
	}
	defer wb.Close()

	ids := d.IdentifierColumns
	sheets := 0
	for _, us := range spec.Sheets {
		table, err := wb.Sheet(us.Sheet, HeaderRowsSkipped)
		if err != nil {
			return sheets, err
		}
		if src.Sex != "" {
			table = table.WithConstantColumn(model.ColumnSex, src.Sex)
		}

		records, err := ReshapeUnitSheet(table, ids, src.Category, us.Unit)
		if err != nil {
			component := ComponentValues
			if errors.Is(err, ErrMissingColumn) {
				component = ComponentHeader
			}
			return sheets, newSheetError(wb.Name(), us.Sheet, component, err)
		}
		sheets++

		c.logger.Debug("sheet reshaped", "file", wb.Name(), "sheet", us.Sheet, "records", len(records))
		d.Records = append(d.Records, records...)
	}
	return sheets, nil
}

func (c *Cleaner) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.progress, format, args...)
}
