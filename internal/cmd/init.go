package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hargabyte/bomcov/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .bomcov directory with the default configuration",
	Long: `Create .bomcov/config.yaml (or config.toml with --toml) in the current
directory, holding the default column names, report decoding, output and
spreadsheet styling settings.

bomcov finds this file by walking up from the working directory.`,
	Example: `  bomcov init          # Write .bomcov/config.yaml
  bomcov init --toml   # Write .bomcov/config.toml
  bomcov init --force  # Overwrite an existing config`,
	RunE: runInit,
}

var (
	initForce bool
	initTOML  bool
)

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	initCmd.Flags().BoolVar(&initTOML, "toml", false, "Write config.toml instead of config.yaml")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	name := config.ConfigFileName
	if initTOML {
		name = config.ConfigFileNameTOML
	}
	existing := filepath.Join(cwd, config.ConfigDirName, name)

	if _, err := os.Stat(existing); err == nil && !initForce {
		relPath, _ := filepath.Rel(cwd, existing)
		fmt.Fprintf(cmd.OutOrStdout(), "Already initialized at %s\n", relPath)
		return nil
	}

	path, err := config.SaveDefault(cwd, initTOML, initForce)
	if err != nil {
		return err
	}

	relPath, _ := filepath.Rel(cwd, path)
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized bomcov config at %s\n", relPath)
	return nil
}
