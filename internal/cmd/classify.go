package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hargabyte/bomcov/internal/classify"
	"github.com/hargabyte/bomcov/internal/coverage"
	"github.com/hargabyte/bomcov/internal/output"
	"github.com/hargabyte/bomcov/internal/table"
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify <report> [ID...]",
	Short: "Classify components against a test report without writing a table",
	Long: `Classify the given component identifiers, or the COMP. column of --table,
against a test report. Nothing is written to disk.

Precedence, first match wins:
  1. coverage figure          -> OK
  2. tested in parallel       -> SOUS-TEST
  3. PMSG is not used         -> NOTEST
  4. single passing test      -> OK
  5. otherwise                -> UNCLASSIFIED

Use --view for the coloured status table instead of YAML/JSON output.`,
	Example: `  bomcov classify report.txt U10 R22 C5
  bomcov classify report.txt --table bom.xlsx --density dense
  bomcov classify report.txt --table bom.csv --view`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

var (
	classifyTable string
	classifyView  bool
)

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVar(&classifyTable, "table", "", "Read component identifiers from a .csv or .xlsx table")
	classifyCmd.Flags().BoolVar(&classifyView, "view", false, "Print the coloured status table")
}

func runClassify(cmd *cobra.Command, args []string) error {
	ids := make([]coverage.ComponentID, 0, len(args)-1)
	for _, id := range args[1:] {
		ids = append(ids, coverage.ComponentID(id))
	}

	if classifyTable != "" {
		tbl, err := table.Read(classifyTable)
		if err != nil {
			return err
		}
		fromTable, err := table.ComponentIDs(tbl, currentConfig().Columns)
		if err != nil {
			return fmt.Errorf("%s: %w", classifyTable, err)
		}
		ids = append(ids, fromTable...)
	}
	if len(ids) == 0 {
		return fmt.Errorf("no component identifiers: pass IDs or --table")
	}

	facts, err := loadFacts(cmd, args[0])
	if err != nil {
		return err
	}
	if facts.IsEmpty() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: no coverage data found in %s\n", args[0])
	}

	result := classify.Classify(ids, facts)

	if classifyView {
		return output.NewStatusView(cmd.OutOrStdout(), colorMode()).Render(result)
	}
	return writeOutput(cmd.OutOrStdout(), output.NewClassifyOutput(result, facts))
}
