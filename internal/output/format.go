package output

import (
	"fmt"
	"strings"
)

// Format represents the output format type.
type Format string

const (
	// FormatYAML is the default self-documenting YAML output
	FormatYAML Format = "yaml"

	// FormatJSON is the JSON output format
	FormatJSON Format = "json"

	// FormatMsgPack is the binary MessagePack format, keyed like the JSON output
	FormatMsgPack Format = "msgpack"
)

// ParseFormat parses a format string into a Format value.
// Accepts: "yaml", "json", "msgpack" (case-insensitive)
// Returns an error for invalid format values.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "msgpack":
		return FormatMsgPack, nil
	default:
		return "", fmt.Errorf("invalid format: %q (expected yaml, json, or msgpack)", s)
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// IsBinary returns true for formats that should not be written to a terminal.
func (f Format) IsBinary() bool {
	return f == FormatMsgPack
}

// Density represents the level of detail in output.
//   - Sparse: counts only
//   - Medium: one row per component (default)
//   - Dense: rows plus the full fact set, test occurrences and matched rules
type Density string

const (
	// DensitySparse provides status counts only
	DensitySparse Density = "sparse"

	// DensityMedium provides per-component rows (default)
	DensityMedium Density = "medium"

	// DensityDense provides everything in medium plus the facts behind it
	DensityDense Density = "dense"
)

// ParseDensity parses a density string into a Density value.
// Accepts: "sparse", "medium", "dense" (case-insensitive)
// Returns an error for invalid density values.
func ParseDensity(s string) (Density, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sparse":
		return DensitySparse, nil
	case "medium":
		return DensityMedium, nil
	case "dense":
		return DensityDense, nil
	default:
		return "", fmt.Errorf("invalid density: %q (expected sparse, medium, or dense)", s)
	}
}

// String returns the string representation of the density.
func (d Density) String() string {
	return string(d)
}

// IncludesComponents returns true if this density level lists individual components.
func (d Density) IncludesComponents() bool {
	return d == DensityMedium || d == DensityDense
}

// IncludesFacts returns true if this density level includes the extracted fact set.
func (d Density) IncludesFacts() bool {
	return d == DensityDense
}

// IncludesOccurrences returns true if this density level includes test occurrences.
func (d Density) IncludesOccurrences() bool {
	return d == DensityDense
}

// IncludesRules returns true if this density level names the rule behind each status.
func (d Density) IncludesRules() bool {
	return d == DensityDense
}

// DefaultFormat is the default output format when none is specified.
const DefaultFormat = FormatYAML

// DefaultDensity is the default density level when none is specified.
const DefaultDensity = DensityMedium

// ValidateFormat checks if a format value is valid.
func ValidateFormat(f Format) bool {
	switch f {
	case FormatYAML, FormatJSON, FormatMsgPack:
		return true
	default:
		return false
	}
}

// ValidateDensity checks if a density value is valid.
func ValidateDensity(d Density) bool {
	switch d {
	case DensitySparse, DensityMedium, DensityDense:
		return true
	default:
		return false
	}
}
