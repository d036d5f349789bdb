// Package cmd contains all CLI commands for bomcov.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/hargabyte/bomcov/internal/config"
	"github.com/hargabyte/bomcov/internal/logging"
)

var (
	// Version is the current version of bomcov
	Version = "0.1.0"

	// Global flags
	verbose       bool
	logJSON       bool
	configPath    string
	forAgents     bool
	outputFormat  string
	outputDensity string
	colorFlag     string

	// Set up by PersistentPreRunE
	logger    *zap.Logger
	appConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bomcov",
	Short: "Annotate bills of materials with in-circuit test coverage",
	Long: `bomcov reads an electronic test report, extracts what it says about each
component and writes a PPVS status into a component table.

For every component of the table (column "COMP." by default) it decides:
  OK            a Test Summary gave a coverage figure, or its single test block passed
  SOUS-TEST     the component is only tested in parallel with another one
  NOTEST        the component's message path is not used
  UNCLASSIFIED  the report says nothing about it (coverage "0%", no status)

Rows are coloured green, yellow and red in XLSX output.

Output Format:
  Commands output YAML by default. Use --format to switch to JSON or MessagePack
  and --density to control detail level (sparse|medium|dense).

Examples:
  bomcov annotate bom.xlsx report.txt          # Write bom_updated.xlsx
  bomcov extract report.txt                    # Show the facts found in a report
  bomcov classify report.txt U10 R22 C5        # Classify a few components
  bomcov batch jobs.yaml --parallel 8          # Annotate many tables at once
  bomcov serve --mcp                           # Expose the tools over MCP

See 'bomcov <command> --help' for command-specific options.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs to stderr as JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: .bomcov/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "yaml", "Output format (yaml|json|msgpack)")
	rootCmd.PersistentFlags().StringVar(&outputDensity, "density", "medium", "Output density (sparse|medium|dense)")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "", "Terminal colour (auto|always|never, default from config)")
	rootCmd.Flags().BoolVar(&forAgents, "for-agents", false, "Output machine-readable capability discovery JSON")

	// Set custom help function to intercept --for-agents flag
	originalHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if forAgents {
			outputAgentHelp(cmd)
			return
		}
		originalHelp(cmd, args)
	})
}

// setup builds the logger and loads the configuration. Output flags the user did
// not set fall back to the configured defaults.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	logger, err = logging.New(verbose, logJSON)
	if err != nil {
		return err
	}

	if configPath != "" {
		appConfig, err = config.LoadFromPath(configPath)
	} else {
		appConfig, err = config.Load(".")
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if !flags.Changed("format") {
		outputFormat = appConfig.Output.DefaultFormat
	}
	if !flags.Changed("density") {
		outputDensity = appConfig.Output.DefaultDensity
	}
	if colorFlag == "" {
		colorFlag = appConfig.Output.Color
	}
	if !config.IsValidColorMode(colorFlag) {
		return fmt.Errorf("invalid --color %q (expected auto, always, or never)", colorFlag)
	}

	logger.Debug("configuration loaded",
		zap.String("config", configPath),
		zap.String("format", outputFormat),
		zap.String("density", outputDensity))
	return nil
}

// currentConfig returns the loaded configuration, or the defaults when commands
// run without PersistentPreRunE (as in tests).
func currentConfig() *config.Config {
	if appConfig == nil {
		return config.DefaultConfig()
	}
	return appConfig
}

func currentLogger() *zap.Logger {
	return logging.OrNop(logger)
}

// commandContext returns the command's context, or Background when the command
// is run directly instead of through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// CommandInfo represents a command for agent discovery
type CommandInfo struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Usage       string        `json:"usage"`
	Flags       []FlagInfo    `json:"flags,omitempty"`
	Subcommands []CommandInfo `json:"subcommands,omitempty"`
	Examples    []string      `json:"examples,omitempty"`
}

// FlagInfo represents a command flag for agent discovery
type FlagInfo struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
}

// outputAgentHelp outputs machine-readable JSON describing all commands
func outputAgentHelp(cmd *cobra.Command) {
	root := buildCommandInfo(cmd.Root())

	discovery := map[string]interface{}{
		"version":      Version,
		"commands":     root.Subcommands,
		"global_flags": root.Flags,
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.Encode(discovery)
}

// buildCommandInfo recursively builds command information for agent discovery
func buildCommandInfo(cmd *cobra.Command) CommandInfo {
	info := CommandInfo{
		Name:        cmd.Name(),
		Description: cmd.Short,
		Usage:       cmd.UseLine(),
	}

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		info.Flags = append(info.Flags, FlagInfo{
			Name:        f.Name,
			Shorthand:   f.Shorthand,
			Description: f.Usage,
			Type:        f.Value.Type(),
			Default:     f.DefValue,
		})
	})

	for _, sub := range cmd.Commands() {
		if !sub.Hidden {
			info.Subcommands = append(info.Subcommands, buildCommandInfo(sub))
		}
	}

	if cmd.Example != "" {
		lines := strings.Split(cmd.Example, "\n")
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if trimmed != "" {
				info.Examples = append(info.Examples, trimmed)
			}
		}
	}

	return info
}
