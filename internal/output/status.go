package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/hargabyte/bomcov/internal/classify"
)

// Colour modes accepted by NewStatusView, matching the output.color setting.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// StatusView renders a classification result as an aligned, coloured terminal table.
type StatusView struct {
	w      io.Writer
	colors map[classify.Color]*color.Color
}

// NewStatusView creates a view writing to w. In auto mode colour follows the
// terminal detection of the color package (NO_COLOR and non-TTY stdout disable it).
func NewStatusView(w io.Writer, mode string) *StatusView {
	v := &StatusView{
		w: w,
		colors: map[classify.Color]*color.Color{
			classify.ColorGreen:  color.New(color.FgGreen, color.Bold),
			classify.ColorYellow: color.New(color.FgYellow, color.Bold),
			classify.ColorRed:    color.New(color.FgRed, color.Bold),
			classify.ColorNone:   color.New(color.Faint),
		},
	}
	for _, c := range v.colors {
		switch mode {
		case ColorAlways:
			c.EnableColor()
		case ColorNever:
			c.DisableColor()
		}
	}
	return v
}

// Render writes one line per component followed by a summary line.
func (v *StatusView) Render(result *classify.Result) error {
	idWidth := len("COMPONENT")
	for _, c := range result.Components {
		if len(c.ID) > idWidth {
			idWidth = len(c.ID)
		}
	}
	statusWidth := len(classify.StatusUnclassified)

	if _, err := fmt.Fprintf(v.w, "%-*s  %-*s  %-8s  %s\n",
		idWidth, "COMPONENT", statusWidth, "STATUS", "COVERAGE", "REMARK"); err != nil {
		return err
	}

	for _, c := range result.Components {
		label := c.Status.PPVS()
		if label == "" {
			label = c.Status.String()
		}
		status := v.colors[c.Status.Color()].Sprintf("%-*s", statusWidth, label)
		line := fmt.Sprintf("%-*s  %s  %-8s  %s", idWidth, c.ID, status, c.CoverageText(), c.Remark)
		if _, err := fmt.Fprintln(v.w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(v.w, v.Summary(result))
	return err
}

// Summary returns a one-line count of the result, e.g.
// "4 components: 2 OK, 1 SOUS-TEST, 1 NOTEST, 0 UNCLASSIFIED".
func (v *StatusView) Summary(result *classify.Result) string {
	parts := make([]string, 0, len(classify.AllStatuses))
	for _, s := range classify.AllStatuses {
		label := s.PPVS()
		if label == "" {
			label = s.String()
		}
		parts = append(parts, v.colors[s.Color()].Sprintf("%d %s", result.Counts[s], label))
	}

	line := fmt.Sprintf("%d components: %s", result.Total(), strings.Join(parts, ", "))
	if result.Skipped > 0 {
		line += fmt.Sprintf(" (%d blank skipped)", result.Skipped)
	}
	return line
}
