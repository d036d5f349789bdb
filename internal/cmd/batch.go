package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hargabyte/bomcov/internal/output"
	"github.com/hargabyte/bomcov/internal/pipeline"
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <manifest>",
	Short: "Annotate several tables concurrently from a YAML manifest",
	Long: `Run one annotate job per manifest entry, several at a time.

Manifest format (paths are relative to the manifest):

  jobs:
    - table: boards/psu.xlsx
      report: reports/psu.txt
    - table: boards/ctrl.csv
      report: reports/ctrl.txt
      output: out/ctrl.xlsx

A failing job does not stop the others. The command exits non-zero when any job
failed. Ctrl-C cancels the jobs that have not started yet.`,
	Example: `  bomcov batch jobs.yaml
  bomcov batch jobs.yaml --parallel 8 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

var batchParallel int

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().IntVarP(&batchParallel, "parallel", "p", 0, "Jobs to run at once (default from config batch.parallel)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	manifest, err := pipeline.LoadManifest(args[0])
	if err != nil {
		return err
	}

	cfg := currentConfig()
	parallel := batchParallel
	if parallel <= 0 {
		parallel = cfg.Batch.Parallel
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcomes, runErr := pipeline.RunAll(ctx, manifest.Jobs, parallel, pipeline.OptionsFromConfig(cfg, currentLogger()))

	result := batchOutput(outcomes)
	if err := writeOutput(cmd.OutOrStdout(), result); err != nil {
		return err
	}

	if runErr != nil {
		return runErr
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", result.Failed, len(outcomes))
	}
	return nil
}

func batchOutput(outcomes []pipeline.Outcome) *output.BatchOutput {
	out := &output.BatchOutput{Jobs: make([]output.JobOutput, 0, len(outcomes))}
	for _, o := range outcomes {
		job := output.JobOutput{
			Table:  o.Job.Table,
			Report: o.Job.Report,
			Output: o.Output,
		}
		if o.Err != nil {
			job.Error = o.Err.Error()
			out.Failed++
		} else {
			summary := output.NewSummaryOutput(o.Result, o.Facts)
			job.Summary = &summary
			out.Succeeded++
		}
		out.Jobs = append(out.Jobs, job)
	}
	return out
}
