package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Formatter is the interface for formatting output in different formats.
type Formatter interface {
	// Format formats a value according to the specified density level.
	// Returns the formatted string or an error.
	Format(v interface{}, density Density) (string, error)

	// FormatToWriter writes formatted output directly to a writer.
	FormatToWriter(w io.Writer, v interface{}, density Density) error
}

// densityFiltered is implemented by schema types that drop fields below a density.
type densityFiltered interface {
	AtDensity(density Density) interface{}
}

// YAMLFormatter formats values as YAML output.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Format formats a value as YAML.
func (f *YAMLFormatter) Format(v interface{}, density Density) (string, error) {
	return formatString(f, v, density)
}

// FormatToWriter writes YAML output to a writer.
func (f *YAMLFormatter) FormatToWriter(w io.Writer, v interface{}, density Density) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	return encoder.Encode(applyDensityFilter(v, density))
}

// JSONFormatter formats values as JSON output.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format formats a value as JSON.
func (f *JSONFormatter) Format(v interface{}, density Density) (string, error) {
	return formatString(f, v, density)
}

// FormatToWriter writes JSON output to a writer.
func (f *JSONFormatter) FormatToWriter(w io.Writer, v interface{}, density Density) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(applyDensityFilter(v, density))
}

// MsgPackFormatter formats values as MessagePack, using the JSON field names.
type MsgPackFormatter struct{}

// NewMsgPackFormatter creates a new MessagePack formatter.
func NewMsgPackFormatter() *MsgPackFormatter {
	return &MsgPackFormatter{}
}

// Format formats a value as MessagePack. The returned string holds raw bytes.
func (f *MsgPackFormatter) Format(v interface{}, density Density) (string, error) {
	return formatString(f, v, density)
}

// FormatToWriter writes MessagePack output to a writer.
func (f *MsgPackFormatter) FormatToWriter(w io.Writer, v interface{}, density Density) error {
	encoder := msgpack.NewEncoder(w)
	encoder.SetCustomStructTag("json")

	return encoder.Encode(applyDensityFilter(v, density))
}

func formatString(f Formatter, v interface{}, density Density) (string, error) {
	var buf bytes.Buffer
	if err := f.FormatToWriter(&buf, v, density); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// applyDensityFilter trims schema values to the fields the density level carries.
func applyDensityFilter(v interface{}, density Density) interface{} {
	if d, ok := v.(densityFiltered); ok {
		return d.AtDensity(density)
	}
	return v
}

// GetFormatter returns a formatter for the specified format.
func GetFormatter(format Format) (Formatter, error) {
	switch format {
	case FormatYAML:
		return NewYAMLFormatter(), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	case FormatMsgPack:
		return NewMsgPackFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
