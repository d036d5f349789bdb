package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/hargabyte/bomcov/internal/coverage"
)

// ConfigFileName is the name of the bomcov configuration file
const ConfigFileName = "config.yaml"

// ConfigFileNameTOML is the alternative TOML configuration file name
const ConfigFileNameTOML = "config.toml"

// ConfigDirName is the name of the bomcov configuration directory
const ConfigDirName = ".bomcov"

// Config holds all bomcov configuration
type Config struct {
	Columns ColumnsConfig `yaml:"columns" toml:"columns"`
	Report  ReportConfig  `yaml:"report" toml:"report"`
	Output  OutputConfig  `yaml:"output" toml:"output"`
	Batch   BatchConfig   `yaml:"batch" toml:"batch"`
	Style   StyleConfig   `yaml:"style" toml:"style"`
}

// ColumnsConfig names the component table columns read and written by annotate
type ColumnsConfig struct {
	Component          string   `yaml:"component" toml:"component"`
	Coverage           string   `yaml:"coverage" toml:"coverage"`
	Status             string   `yaml:"status" toml:"status"`
	Remarks            string   `yaml:"remarks" toml:"remarks"`
	RemarkAliases      []string `yaml:"remark_aliases" toml:"remark_aliases"`
	ClearStaleCoverage bool     `yaml:"clear_stale_coverage" toml:"clear_stale_coverage"`
}

// ReportConfig holds configuration for reading test reports
type ReportConfig struct {
	Encoding string `yaml:"encoding" toml:"encoding"`
	MaxBytes int64  `yaml:"max_bytes" toml:"max_bytes"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	DefaultFormat  string `yaml:"default_format" toml:"default_format"`
	DefaultDensity string `yaml:"default_density" toml:"default_density"`
	Color          string `yaml:"color" toml:"color"`
}

// BatchConfig holds configuration for batch runs
type BatchConfig struct {
	Parallel int `yaml:"parallel" toml:"parallel"`
}

// StyleConfig holds the spreadsheet fill colours (RGB hex) per status colour.
// ColumnWidth is a pointer so an explicit 0 (keep the workbook widths) survives
// the merge with defaults.
type StyleConfig struct {
	Green       string   `yaml:"green" toml:"green"`
	Yellow      string   `yaml:"yellow" toml:"yellow"`
	Red         string   `yaml:"red" toml:"red"`
	ColumnWidth *float64 `yaml:"column_width" toml:"column_width"`
}

// Width returns the configured column width, 0 when unset.
func (s StyleConfig) Width() float64 {
	if s.ColumnWidth == nil {
		return 0
	}
	return *s.ColumnWidth
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .bomcov/config.yaml (or config.toml), falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}

	tomlPath := filepath.Join(configDir, ConfigFileNameTOML)
	yamlPath := filepath.Join(configDir, ConfigFileName)
	if _, err := os.Stat(yamlPath); os.IsNotExist(err) {
		if _, err := os.Stat(tomlPath); err == nil {
			return LoadFromPath(tomlPath)
		}
	}
	return LoadFromPath(yamlPath)
}

// LoadFromPath reads config from a specific path. Files ending in .toml are parsed
// as TOML, everything else as YAML.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, loaded); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())

	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// FindConfigDir locates the .bomcov directory by walking up from startDir.
// Returns the path to the .bomcov directory if found.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .bomcov directory if it doesn't exist.
// Returns the path to the .bomcov directory.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// Validate checks that config values are valid.
// Returns an error if validation fails.
func Validate(cfg *Config) error {
	if !IsValidFormat(cfg.Output.DefaultFormat) {
		return fmt.Errorf("%w: default_format must be one of %v, got %q",
			ErrInvalidConfig, ValidFormats, cfg.Output.DefaultFormat)
	}

	if !IsValidDensity(cfg.Output.DefaultDensity) {
		return fmt.Errorf("%w: default_density must be one of %v, got %q",
			ErrInvalidConfig, ValidDensities, cfg.Output.DefaultDensity)
	}

	if !IsValidColorMode(cfg.Output.Color) {
		return fmt.Errorf("%w: color must be one of %v, got %q",
			ErrInvalidConfig, ValidColorModes, cfg.Output.Color)
	}

	for name, col := range map[string]string{
		"component": cfg.Columns.Component,
		"coverage":  cfg.Columns.Coverage,
		"status":    cfg.Columns.Status,
		"remarks":   cfg.Columns.Remarks,
	} {
		if strings.TrimSpace(col) == "" {
			return fmt.Errorf("%w: columns.%s must not be empty", ErrInvalidConfig, name)
		}
	}

	if cfg.Report.MaxBytes <= 0 {
		return fmt.Errorf("%w: max_bytes must be positive, got %d",
			ErrInvalidConfig, cfg.Report.MaxBytes)
	}

	if _, err := coverage.LookupEncoding(cfg.Report.Encoding); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if cfg.Batch.Parallel <= 0 {
		return fmt.Errorf("%w: parallel must be positive, got %d",
			ErrInvalidConfig, cfg.Batch.Parallel)
	}

	for name, rgb := range map[string]string{
		"green":  cfg.Style.Green,
		"yellow": cfg.Style.Yellow,
		"red":    cfg.Style.Red,
	} {
		if !isHexColor(rgb) {
			return fmt.Errorf("%w: style.%s must be a 6-digit RGB hex value, got %q",
				ErrInvalidConfig, name, rgb)
		}
	}

	if cfg.Style.Width() < 0 {
		return fmt.Errorf("%w: column_width must be non-negative, got %f",
			ErrInvalidConfig, cfg.Style.Width())
	}

	return nil
}

// SaveDefault writes the default configuration to .bomcov/config.yaml (or
// config.toml when asTOML is set) in workDir.
// Creates the .bomcov directory if it doesn't exist.
func SaveDefault(workDir string, asTOML, force bool) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	name := ConfigFileName
	if asTOML {
		name = ConfigFileNameTOML
	}
	configPath := filepath.Join(configDir, name)

	if _, err := os.Stat(configPath); err == nil && !force {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	cfg := DefaultConfig()
	var buf bytes.Buffer
	if asTOML {
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return "", fmt.Errorf("marshaling config: %w", err)
		}
	} else {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return "", fmt.Errorf("marshaling config: %w", err)
		}
		buf.Write(data)
	}

	header := "# bomcov configuration\n# Column names, report decoding, output and spreadsheet styling\n\n"
	data := append([]byte(header), buf.Bytes()...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}

func isHexColor(s string) bool {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
