// Package pipeline runs the annotate flow: read a test report, extract its facts,
// classify the components of a table and write the annotated copy.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hargabyte/bomcov/internal/classify"
	"github.com/hargabyte/bomcov/internal/config"
	"github.com/hargabyte/bomcov/internal/coverage"
	"github.com/hargabyte/bomcov/internal/logging"
	"github.com/hargabyte/bomcov/internal/table"
)

// ErrInvalidJob is returned for jobs missing a table or a report.
var ErrInvalidJob = errors.New("invalid job")

// Job is one table to annotate from one report.
type Job struct {
	Table  string `yaml:"table"`
	Report string `yaml:"report"`
	Output string `yaml:"output,omitempty"` // defaults to <table>_updated.<ext>
}

// Validate checks that the job names a table and a report.
func (j Job) Validate() error {
	if j.Table == "" {
		return fmt.Errorf("%w: table is required", ErrInvalidJob)
	}
	if j.Report == "" {
		return fmt.Errorf("%w: report is required", ErrInvalidJob)
	}
	if _, err := table.KindOf(j.Table); err != nil {
		return err
	}
	if j.Output != "" {
		if _, err := table.KindOf(j.Output); err != nil {
			return err
		}
	}
	return nil
}

// OutputPath returns the path the annotated table is written to.
func (j Job) OutputPath() string {
	if j.Output != "" {
		return j.Output
	}
	return table.OutputPath(j.Table)
}

// Options carry the configuration shared by every job.
type Options struct {
	Columns  config.ColumnsConfig
	Encoding string // fallback charset for reports that are not UTF-8
	MaxBytes int64
	Style    table.Style
	Logger   *zap.Logger
}

// OptionsFromConfig builds Options from a loaded configuration.
func OptionsFromConfig(cfg *config.Config, logger *zap.Logger) Options {
	return Options{
		Columns:  cfg.Columns,
		Encoding: cfg.Report.Encoding,
		MaxBytes: cfg.Report.MaxBytes,
		Style:    table.StyleFromConfig(cfg.Style),
		Logger:   logger,
	}
}

// Outcome is the result of one job.
type Outcome struct {
	Job        Job
	Output     string
	Facts      *coverage.FactSet
	Result     *classify.Result
	Annotation *table.Annotation
	Duration   time.Duration
	Err        error
}

// LoadFacts reads a report file and extracts its facts.
func LoadFacts(path string, opts Options) (*coverage.FactSet, error) {
	text, err := coverage.ReadReport(path, opts.Encoding, opts.MaxBytes)
	if err != nil {
		return nil, err
	}
	return coverage.Extract(text), nil
}

// Run executes a single job. An empty fact set is not an error: every component
// ends up unclassified and a warning is logged.
func Run(ctx context.Context, job Job, opts Options) (*Outcome, error) {
	log := logging.OrNop(opts.Logger).With(zap.String("table", job.Table), zap.String("report", job.Report))
	start := time.Now()

	if err := job.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	facts, err := LoadFacts(job.Report, opts)
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	if facts.IsEmpty() {
		log.Warn("no coverage data found in report")
	} else {
		log.Debug("extracted facts",
			zap.Int("coverage", len(facts.Coverage)),
			zap.Int("untested", len(facts.Untested)),
			zap.Int("occurrences", len(facts.Occurrences)),
			zap.Int("pass_unique", len(facts.PassUnique)))
	}

	tbl, err := table.Read(job.Table)
	if err != nil {
		return nil, err
	}
	ids, err := table.ComponentIDs(tbl, opts.Columns)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", job.Table, err)
	}

	result := classify.Classify(ids, facts)

	ann, err := table.Annotate(tbl, result, opts.Columns)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", job.Table, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := job.OutputPath()
	if err := table.Write(tbl, out, ann, opts.Style); err != nil {
		return nil, fmt.Errorf("write %s: %w", out, err)
	}

	outcome := &Outcome{
		Job:        job,
		Output:     out,
		Facts:      facts,
		Result:     result,
		Annotation: ann,
		Duration:   time.Since(start),
	}
	log.Info("annotated table",
		zap.String("output", out),
		zap.Int("components", result.Total()),
		zap.Int("ok", result.Counts[classify.StatusOK]),
		zap.Int("sous_test", result.Counts[classify.StatusSousTest]),
		zap.Int("notest", result.Counts[classify.StatusNoTest]),
		zap.Int("unclassified", result.Counts[classify.StatusUnclassified]),
		zap.Duration("duration", outcome.Duration))

	return outcome, nil
}
