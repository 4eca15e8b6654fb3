package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/appstrap/appstrap/internal/config"
)

//go:embed templates/appstrap.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new appstrap profiles file",
		Long: `Init creates a new .appstrap.yaml profiles file in the current directory.

The generated file includes:
- Commented defaults for repository, branch, environment, and ports
- Commented examples for per-instance profiles
- Documentation for all available options

Examples:
  # Create .appstrap.yaml in current directory
  appstrap init

  # Create the profiles file at a specific path
  appstrap init -o myprofiles.yaml

  # Force overwrite existing file
  appstrap init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the profiles file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing profiles file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("profiles file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := configTemplate.ReadFile("templates/appstrap.yaml")
	if err != nil {
		return fmt.Errorf("failed to read profiles template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write profiles file
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write profiles file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created profiles file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit this file to configure per-instance settings such as:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Repository URL and branch to install")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Deployment environment and ports")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Setup command overrides")

	return nil
}
