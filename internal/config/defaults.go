package config

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Columns: ColumnsConfig{
			Component:          "COMP.",
			Coverage:           "COVERAGE %",
			Status:             "PPVS",
			Remarks:            "REMARKS",
			RemarkAliases:      []string{"REMARQUE"},
			ClearStaleCoverage: false,
		},
		Report: ReportConfig{
			Encoding: "",
			MaxBytes: 64 << 20,
		},
		Output: OutputConfig{
			DefaultFormat:  "yaml",
			DefaultDensity: "medium",
			Color:          "auto",
		},
		Batch: BatchConfig{
			Parallel: 4,
		},
		Style: StyleConfig{
			Green:       "C6EFCE",
			Yellow:      "FFEB9C",
			Red:         "FFC7CE",
			ColumnWidth: float64Ptr(18),
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}

	result.Columns = mergeColumnsConfig(loaded.Columns, defaults.Columns)
	result.Report = mergeReportConfig(loaded.Report, defaults.Report)
	result.Output = mergeOutputConfig(loaded.Output, defaults.Output)
	result.Batch = mergeBatchConfig(loaded.Batch, defaults.Batch)
	result.Style = mergeStyleConfig(loaded.Style, defaults.Style)

	return result
}

func mergeColumnsConfig(loaded, defaults ColumnsConfig) ColumnsConfig {
	result := ColumnsConfig{
		Component: orDefault(loaded.Component, defaults.Component),
		Coverage:  orDefault(loaded.Coverage, defaults.Coverage),
		Status:    orDefault(loaded.Status, defaults.Status),
		Remarks:   orDefault(loaded.Remarks, defaults.Remarks),
	}

	if len(loaded.RemarkAliases) > 0 {
		result.RemarkAliases = loaded.RemarkAliases
	} else {
		result.RemarkAliases = defaults.RemarkAliases
	}

	// bool can't distinguish unset from false; the default is false anyway
	result.ClearStaleCoverage = loaded.ClearStaleCoverage

	return result
}

func mergeReportConfig(loaded, defaults ReportConfig) ReportConfig {
	result := ReportConfig{
		Encoding: orDefault(loaded.Encoding, defaults.Encoding),
	}

	if loaded.MaxBytes != 0 {
		result.MaxBytes = loaded.MaxBytes
	} else {
		result.MaxBytes = defaults.MaxBytes
	}

	return result
}

func mergeOutputConfig(loaded, defaults OutputConfig) OutputConfig {
	return OutputConfig{
		DefaultFormat:  orDefault(loaded.DefaultFormat, defaults.DefaultFormat),
		DefaultDensity: orDefault(loaded.DefaultDensity, defaults.DefaultDensity),
		Color:          orDefault(loaded.Color, defaults.Color),
	}
}

func mergeBatchConfig(loaded, defaults BatchConfig) BatchConfig {
	if loaded.Parallel != 0 {
		return BatchConfig{Parallel: loaded.Parallel}
	}
	return BatchConfig{Parallel: defaults.Parallel}
}

func mergeStyleConfig(loaded, defaults StyleConfig) StyleConfig {
	result := StyleConfig{
		Green:  orDefault(loaded.Green, defaults.Green),
		Yellow: orDefault(loaded.Yellow, defaults.Yellow),
		Red:    orDefault(loaded.Red, defaults.Red),
	}

	if loaded.ColumnWidth != nil {
		result.ColumnWidth = float64Ptr(*loaded.ColumnWidth)
	} else if defaults.ColumnWidth != nil {
		result.ColumnWidth = float64Ptr(*defaults.ColumnWidth)
	}

	return result
}

func float64Ptr(v float64) *float64 {
	return &v
}

func orDefault(loaded, def string) string {
	if loaded != "" {
		return loaded
	}
	return def
}

// ValidDensities lists the valid values for output density
var ValidDensities = []string{"sparse", "medium", "dense"}

// ValidFormats lists the valid values for output format
var ValidFormats = []string{"yaml", "json", "msgpack"}

// ValidColorModes lists the valid values for terminal colour
var ValidColorModes = []string{"auto", "always", "never"}

// IsValidDensity checks if the given density value is valid
func IsValidDensity(density string) bool {
	return contains(ValidDensities, density)
}

// IsValidFormat checks if the given format value is valid
func IsValidFormat(format string) bool {
	return contains(ValidFormats, format)
}

// IsValidColorMode checks if the given colour mode is valid
func IsValidColorMode(mode string) bool {
	return contains(ValidColorModes, mode)
}

func contains(values []string, v string) bool {
	for _, valid := range values {
		if v == valid {
			return true
		}
	}
	return false
}
