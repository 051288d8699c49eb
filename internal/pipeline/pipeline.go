package pipeline

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/nao1215/ijcnam/internal/model"
)

// Step is one stage of a run: crawl or clean.
type Step interface {
	// Do runs the stage and fills its section of report. A returned
	// error stops the run.
	Do(ctx context.Context, report *model.RunReport) error

	// Name is the stage name recorded in report.Steps.
	Name() string
}

// Pipeline runs steps one after the other against a single RunReport.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New returns a pipeline running steps in order. The slice is copied.
func New(steps []Step, opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:  append([]Step(nil), steps...),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Execute runs the steps and stops at the first failure, whose message
// is stored in report.Error. The context is checked before each step;
// the crawler and the cleaner check it again between pages and datasets.
// Completed step names are appended to report.Steps, so a failed run
// still shows how far it went.
func (p *Pipeline) Execute(ctx context.Context, report *model.RunReport) error {
	logger := p.logger.With("run", report.ID, "kind", report.Kind)

	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			logger.Warn("run cancelled", "step", step.Name(), "reason", err)
			report.Error = err.Error()
			return err
		}

		logger.Info("starting step", "step", step.Name(), "position", i+1, "of", p.StepCount())
		start := time.Now()
		if err := step.Do(ctx, report); err != nil {
			logger.Error("step failed", "step", step.Name(), "error", err)
			report.Error = err.Error()
			return err
		}
		logger.Debug("step done", "step", step.Name(), "elapsed", time.Since(start))
		report.Steps = append(report.Steps, step.Name())
	}
	return nil
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames lists the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, 0, len(p.steps))
	for _, step := range p.steps {
		names = append(names, step.Name())
	}
	return names
}
