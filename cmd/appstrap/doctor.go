package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/appstrap/appstrap/internal/command"
	"github.com/appstrap/appstrap/internal/steps"
)

// NewDoctorCmd creates the doctor command.
func NewDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the required external tools are installed",
		Long: `Doctor probes the external tools the installer shells out to (git, node,
npm, docker) and reports which are missing. Run it before the first
install, or when an install fails at the tool check step.

Examples:
  # Check the default tool set
  appstrap doctor

  # Check additional tools a profile requires
  appstrap doctor --tools git,node,npm,docker,psql`,
		RunE: runDoctorCmd,
	}

	cmd.Flags().StringSlice("tools", steps.DefaultTools,
		"Comma-separated tool names to probe")

	return cmd
}

// runDoctorCmd executes the doctor command.
func runDoctorCmd(cmd *cobra.Command, _ []string) error {
	tools, err := cmd.Flags().GetStringSlice("tools")
	if err != nil {
		return err
	}

	noColor := getNoColorFlag(cmd)
	runner := command.NewExecRunner()
	out := cmd.OutOrStdout()

	// Sequential on purpose: doctor output is read line by line, and a
	// handful of PATH lookups gains nothing from concurrency here.
	var missing []string
	for _, tool := range tools {
		path, err := runner.LookPath(tool)
		if err != nil {
			missing = append(missing, tool)
			marker := "missing"
			if !noColor {
				marker = styleFailed.Render(marker)
			}
			fmt.Fprintf(out, "  %-10s %s\n", tool, marker)
			continue
		}
		marker := "ok"
		if !noColor {
			marker = styleOK.Render(marker)
		}
		fmt.Fprintf(out, "  %-10s %s (%s)\n", tool, marker, path)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%d of %d required tools missing", len(missing), len(tools))
	}

	fmt.Fprintf(out, "\nAll %d tools present.\n", len(tools))
	return nil
}
