// Package classify assigns a PPVS status to every component of a bill of materials
// from the facts extracted out of a test report.
package classify

// Status is the classification outcome of a single component.
type Status string

const (
	// StatusOK means the component is covered: either a Test Summary gave a
	// coverage figure or its single test block passed.
	StatusOK Status = "OK"
	// StatusSousTest means the component is only tested in parallel with another one.
	StatusSousTest Status = "SOUS_TEST"
	// StatusNoTest means the component's message path is unused, so it cannot be tested.
	StatusNoTest Status = "NOTEST"
	// StatusUnclassified means no fact about the component was found.
	StatusUnclassified Status = "UNCLASSIFIED"
)

// AllStatuses lists every status in precedence-independent display order.
var AllStatuses = []Status{StatusOK, StatusSousTest, StatusNoTest, StatusUnclassified}

// PPVS returns the value written to the PPVS column of the component table.
// Unclassified components get no PPVS value.
func (s Status) PPVS() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusSousTest:
		return "SOUS-TEST"
	case StatusNoTest:
		return "NOTEST"
	default:
		return ""
	}
}

// Color returns the rendering intent of the status.
func (s Status) Color() Color {
	switch s {
	case StatusOK:
		return ColorGreen
	case StatusSousTest:
		return ColorYellow
	case StatusNoTest:
		return ColorRed
	default:
		return ColorNone
	}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Color is the colour intent consumed by the export and terminal rendering layers.
type Color string

const (
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
	ColorNone   Color = "none"
)

// PPVSValues are the values accepted in the PPVS column, in drop-down order.
var PPVSValues = []string{StatusOK.PPVS(), StatusSousTest.PPVS(), StatusNoTest.PPVS()}
