package cmd

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/hargabyte/bomcov/internal/output"
)

// formatAndDensity parses the --format and --density flags.
func formatAndDensity() (output.Format, output.Density, error) {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return "", "", err
	}
	density, err := output.ParseDensity(outputDensity)
	if err != nil {
		return "", "", err
	}
	return format, density, nil
}

// writeOutput formats v with the global output flags. Binary formats are refused
// when w is a terminal.
func writeOutput(w io.Writer, v interface{}) error {
	format, density, err := formatAndDensity()
	if err != nil {
		return err
	}
	if format.IsBinary() && isTerminal(w) {
		return fmt.Errorf("refusing to write %s to a terminal; redirect stdout to a file", format)
	}

	formatter, err := output.GetFormatter(format)
	if err != nil {
		return err
	}
	return formatter.FormatToWriter(w, v, density)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// colorMode returns the effective --color value.
func colorMode() string {
	if colorFlag == "" {
		return currentConfig().Output.Color
	}
	return colorFlag
}
