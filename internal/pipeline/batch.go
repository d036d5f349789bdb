package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/hargabyte/bomcov/internal/logging"
)

// Manifest lists the jobs of a batch run.
type Manifest struct {
	Jobs []Job `yaml:"jobs"`
}

// LoadManifest reads a YAML manifest. Relative paths are resolved against the
// manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if len(m.Jobs) == 0 {
		return nil, fmt.Errorf("%w: manifest %s has no jobs", ErrInvalidJob, path)
	}

	base := filepath.Dir(path)
	for i := range m.Jobs {
		job := &m.Jobs[i]
		job.Table = resolve(base, job.Table)
		job.Report = resolve(base, job.Report)
		job.Output = resolve(base, job.Output)
		if err := job.Validate(); err != nil {
			return nil, fmt.Errorf("job %d: %w", i+1, err)
		}
	}
	return &m, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// RunAll runs jobs with at most parallel of them at once. Jobs are independent:
// a failing job records its error in its Outcome and the others keep going.
// Outcomes are returned in job order. The returned error is only set when ctx
// is cancelled, whether or not a job was running at that moment.
func RunAll(ctx context.Context, jobs []Job, parallel int, opts Options) ([]Outcome, error) {
	log := logging.OrNop(opts.Logger)
	results := make([]Outcome, len(jobs))
	if len(jobs) == 0 {
		return results, nil
	}
	if parallel <= 0 {
		parallel = 1
	}

	var g errgroup.Group
	g.SetLimit(min(parallel, len(jobs)))

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Outcome{Job: job, Output: job.OutputPath(), Err: err}
				return nil
			}

			outcome, err := Run(ctx, job, opts)
			if err != nil {
				log.Error("job failed", zap.String("table", job.Table), zap.Error(err))
				results[i] = Outcome{Job: job, Output: job.OutputPath(), Err: err}
				return nil
			}
			results[i] = *outcome
			return nil
		})
	}

	// jobs never fail the group; cancellation is read from ctx itself
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// Failed counts the outcomes that carry an error.
func Failed(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}
