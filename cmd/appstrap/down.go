package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/appstrap/appstrap/internal/command"
	"github.com/appstrap/appstrap/internal/config"
	applog "github.com/appstrap/appstrap/internal/log"
	"github.com/appstrap/appstrap/internal/model"
	"github.com/appstrap/appstrap/internal/services"
	"github.com/appstrap/appstrap/internal/steps"
)

// NewDownCmd creates the down command.
func NewDownCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down <instance>",
		Short: "Tear down an instance's leftover service set",
		Long: `Down stops the ephemeral service set of an instance.

The install pipeline normally tears its services down itself. A set is
left running when --keep-services was used or when the installer was
killed hard; down cleans it up using the service definition rendered into
the instance directory. Named volumes are kept, so the instance's data
survives.

Examples:
  # Tear down the services of an instance in the current directory
  appstrap down ABv2

  # Tear down an instance installed under another directory
  appstrap down -w /srv/plexus ABv2`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &usageError{err: config.ErrNoInstance}
			}
			return nil
		},
		RunE: runDownCmd,
	}

	cmd.Flags().StringP("workdir", "w", "",
		"Parent directory the instance was installed under (default: current directory)")

	return cmd
}

// runDownCmd executes the down command.
func runDownCmd(cmd *cobra.Command, args []string) error {
	instance, err := model.NewInstanceName(args[0])
	if err != nil {
		return &usageError{err: err}
	}

	workDir, err := cmd.Flags().GetString("workdir")
	if err != nil {
		return err
	}

	logger := applog.New(os.Stderr, applog.Options{
		Verbose: getVerboseFlag(cmd),
		NoColor: getNoColorFlag(cmd),
	})

	composeFile := filepath.Join(workDir, instance.String(), steps.ServicesFileName)
	if _, err := os.Stat(composeFile); err != nil {
		return fmt.Errorf("no service definition for instance %s (looked at %s): %w",
			instance.String(), composeFile, err)
	}

	project := strings.ToLower(instance.String())
	logger.Info("tearing down service set", "project", project, "definition", composeFile)

	runner := command.NewExecRunner()
	if err := services.Down(cmd.Context(), runner, composeFile, project); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Service set for %s stopped.\n", instance.String())
	return nil
}
