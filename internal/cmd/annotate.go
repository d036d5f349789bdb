package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hargabyte/bomcov/internal/output"
	"github.com/hargabyte/bomcov/internal/pipeline"
)

// annotateCmd represents the annotate command
var annotateCmd = &cobra.Command{
	Use:   "annotate <table> <report>",
	Short: "Write coverage, PPVS status and remarks into a component table",
	Long: `Annotate a component table (.csv or .xlsx) from an electronic test report.

The table is read, every component in the COMP. column is classified against
the report and an annotated copy is written next to it as <name>_updated.<ext>
(or to --output). The source table is never modified.

Columns written (added when missing):
  COVERAGE %   "97.50%" from a Test Summary, "0%" when nothing is known
  PPVS         OK, SOUS-TEST or NOTEST
  REMARKS      the parallel-test remark of SOUS-TEST components (REMARQUE is reused)

XLSX output is filled green/yellow/red per status and the PPVS column gets a
drop-down. The status table is printed unless --format is given, in which case
the classification is written in that format.`,
	Example: `  bomcov annotate bom.xlsx report.txt
  bomcov annotate bom.csv report.txt -o annotated.xlsx
  bomcov annotate bom.xlsx report.txt --format json --density dense`,
	Args: cobra.ExactArgs(2),
	RunE: runAnnotate,
}

var annotateOutput string

func init() {
	rootCmd.AddCommand(annotateCmd)
	annotateCmd.Flags().StringVarP(&annotateOutput, "output", "o", "", "Output path (default: <table>_updated.<ext>)")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	job := pipeline.Job{
		Table:  args[0],
		Report: args[1],
		Output: annotateOutput,
	}

	outcome, err := pipeline.Run(commandContext(cmd), job, pipeline.OptionsFromConfig(currentConfig(), currentLogger()))
	if err != nil {
		return err
	}

	if outcome.Facts.IsEmpty() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: no coverage data found in %s; every component is unclassified\n", job.Report)
	}

	if cmd.Flags().Changed("format") {
		if err := writeOutput(cmd.OutOrStdout(), output.NewClassifyOutput(outcome.Result, outcome.Facts)); err != nil {
			return err
		}
	} else if err := output.NewStatusView(cmd.OutOrStdout(), colorMode()).Render(outcome.Result); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", outcome.Output)
	return nil
}
