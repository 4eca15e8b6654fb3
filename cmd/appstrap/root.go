// Package main provides the entry point for the appstrap CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes. Usage errors exit before the pipeline starts and are
// distinguished from step failures so wrapping scripts can tell a typo
// from a broken install.
const (
	exitFailure = 1
	exitUsage   = 2
)

// usageError marks argument and flag validation failures so Execute exits
// with the usage code instead of the failure code. No state has changed
// when a usageError surfaces: validation runs before the first step.
type usageError struct {
	err error
}

// Error returns the wrapped message.
func (e *usageError) Error() string {
	return e.err.Error()
}

// Unwrap exposes the wrapped error to errors.Is and errors.As.
func (e *usageError) Unwrap() error {
	return e.err
}

// NewRootCmd creates the root command for appstrap.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "appstrap",
		Short: "Installer for self-hosted Plexus platform instances",
		Long: `appstrap provisions a self-hosted instance of the Plexus collaboration
platform end to end: clone, package install, setup, ephemeral database
services, schema initialization, migrations, and administrator setup.

The default flow installs the current platform. Use --v1 for the
previous-generation platform or --offline to install from a pre-fetched
archive without network access.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	// Add subcommands
	cmd.AddCommand(NewInstallCmd())
	cmd.AddCommand(NewDoctorCmd())
	cmd.AddCommand(NewDownCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and maps errors to exit codes.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var uerr *usageError
		if errors.As(err, &uerr) {
			os.Exit(exitUsage)
		}
		os.Exit(exitFailure)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getNoColorFlag retrieves the no-color flag from the command or its parent.
func getNoColorFlag(cmd *cobra.Command) bool {
	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		noColor, err = cmd.Root().PersistentFlags().GetBool("no-color")
		if err != nil {
			return false
		}
	}
	return noColor
}
