package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hargabyte/bomcov/internal/coverage"
	"github.com/hargabyte/bomcov/internal/output"
	"github.com/hargabyte/bomcov/internal/pipeline"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <report>",
	Short: "Show the facts extracted from a test report",
	Long: `Extract the facts a test report states about components:

  coverage      "Test Summary for U10 ... Totals: ... 97.50%"
  untested      parallel-tested and PMSG-not-used devices between
                "Untested Devices" and "General Summary Report"
  pass_unique   components whose only test block passed

Use --density dense to include every test occurrence. Pass "-" to read the
report from stdin.`,
	Example: `  bomcov extract report.txt
  bomcov extract report.txt --density dense --format json
  cat report.txt | bomcov extract -`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	facts, err := loadFacts(cmd, args[0])
	if err != nil {
		return err
	}
	if facts.IsEmpty() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: no coverage data found in %s\n", args[0])
	}
	return writeOutput(cmd.OutOrStdout(), output.NewFactsOutput(facts))
}

// loadFacts reads a report from path, or from stdin when path is "-".
func loadFacts(cmd *cobra.Command, path string) (*coverage.FactSet, error) {
	opts := pipeline.OptionsFromConfig(currentConfig(), currentLogger())
	if path != "-" {
		return pipeline.LoadFacts(path, opts)
	}

	raw, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), opts.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	if int64(len(raw)) > opts.MaxBytes {
		return nil, fmt.Errorf("%w: stdin exceeds %d bytes", coverage.ErrReportTooLarge, opts.MaxBytes)
	}
	text, err := coverage.DecodeReport(raw, opts.Encoding)
	if err != nil {
		return nil, err
	}
	return coverage.Extract(text), nil
}
