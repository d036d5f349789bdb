package output

import (
	"fmt"
	"testing"
)

// TestGetFormatter tests that GetFormatter returns the formatter for each format
func TestGetFormatter(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatYAML, "*output.YAMLFormatter"},
		{FormatJSON, "*output.JSONFormatter"},
		{FormatMsgPack, "*output.MsgPackFormatter"},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			formatter, err := GetFormatter(tt.format)
			if err != nil {
				t.Fatalf("GetFormatter(%s) failed: %v", tt.format, err)
			}
			if got := fmt.Sprintf("%T", formatter); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

// TestGetFormatterInvalid tests that GetFormatter returns error for invalid format
func TestGetFormatterInvalid(t *testing.T) {
	_, err := GetFormatter(Format("cgf"))
	if err == nil {
		t.Error("GetFormatter should return error for invalid format")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"yaml", FormatYAML, false},
		{"YAML", FormatYAML, false},
		{" json ", FormatJSON, false},
		{"msgpack", FormatMsgPack, false},
		{"MsgPack", FormatMsgPack, false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseFormat(%q) = %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatIsBinary(t *testing.T) {
	if FormatYAML.IsBinary() || FormatJSON.IsBinary() {
		t.Error("text formats must not report IsBinary")
	}
	if !FormatMsgPack.IsBinary() {
		t.Error("msgpack should report IsBinary")
	}
}

func TestParseDensity(t *testing.T) {
	tests := []struct {
		input    string
		expected Density
		wantErr  bool
	}{
		{"sparse", DensitySparse, false},
		{"Medium", DensityMedium, false},
		{"DENSE", DensityDense, false},
		{"smart", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDensity(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDensity(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseDensity(%q) = %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDensityIncludes(t *testing.T) {
	tests := []struct {
		density     Density
		components  bool
		facts       bool
		occurrences bool
		rules       bool
	}{
		{DensitySparse, false, false, false, false},
		{DensityMedium, true, false, false, false},
		{DensityDense, true, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.density.String(), func(t *testing.T) {
			if got := tt.density.IncludesComponents(); got != tt.components {
				t.Errorf("IncludesComponents() = %v, want %v", got, tt.components)
			}
			if got := tt.density.IncludesFacts(); got != tt.facts {
				t.Errorf("IncludesFacts() = %v, want %v", got, tt.facts)
			}
			if got := tt.density.IncludesOccurrences(); got != tt.occurrences {
				t.Errorf("IncludesOccurrences() = %v, want %v", got, tt.occurrences)
			}
			if got := tt.density.IncludesRules(); got != tt.rules {
				t.Errorf("IncludesRules() = %v, want %v", got, tt.rules)
			}
		})
	}
}

func TestValidateFormatAndDensity(t *testing.T) {
	for _, f := range []Format{FormatYAML, FormatJSON, FormatMsgPack} {
		if !ValidateFormat(f) {
			t.Errorf("ValidateFormat(%s) = false, want true", f)
		}
	}
	if ValidateFormat("cgf") {
		t.Error("ValidateFormat(cgf) = true, want false")
	}

	for _, d := range []Density{DensitySparse, DensityMedium, DensityDense} {
		if !ValidateDensity(d) {
			t.Errorf("ValidateDensity(%s) = false, want true", d)
		}
	}
	if ValidateDensity("smart") {
		t.Error("ValidateDensity(smart) = true, want false")
	}
}

func TestDefaultConstants(t *testing.T) {
	if DefaultFormat != FormatYAML {
		t.Errorf("DefaultFormat = %s, want yaml", DefaultFormat)
	}
	if DefaultDensity != DensityMedium {
		t.Errorf("DefaultDensity = %s, want medium", DefaultDensity)
	}
}
