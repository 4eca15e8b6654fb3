package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/appstrap/appstrap/internal/config"
	"github.com/appstrap/appstrap/internal/journal"
)

// NewHistoryCmd creates the history command.
// This command lists past installation runs recorded in the journal.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [instance]",
		Short: "List past installation runs",
		Long: `History lists the installation runs recorded in the journal, newest
first. With an instance name it filters to that instance.

Every install records its run and the steps it executed unless
--no-journal was used. A run with an empty outcome was interrupted before
it could finish.

Examples:
  # List recent runs across all instances
  appstrap history

  # List runs of one instance
  appstrap history ABv2

  # Show the steps of a specific run
  appstrap history --steps 5

  # Check a password against the administrator hash recorded for run 5
  appstrap history --verify-admin 5

  # Output run history as JSON
  appstrap history --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64P("steps", "s", 0,
		"Show the steps of the run with this ID")
	cmd.Flags().Int64("verify-admin", 0,
		"Check a password (read from stdin) against the administrator hash of the run with this ID")
	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of runs to list")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	stepsRunID, err := cmd.Flags().GetInt64("steps")
	if err != nil {
		return err
	}
	verifyRunID, err := cmd.Flags().GetInt64("verify-admin")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// Never create an empty journal just to report that there is no
	// history.
	jrnl, err := journal.Open(config.XDGDataDir(), journal.Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	})
	if err != nil {
		return fmt.Errorf("no install history yet (the first `appstrap install` creates it): %w", err)
	}
	defer jrnl.Close()

	out := cmd.OutOrStdout()

	if verifyRunID > 0 {
		return verifyAdminPassword(cmd, jrnl, verifyRunID, out)
	}

	if stepsRunID > 0 {
		return showRunSteps(cmd, jrnl, stepsRunID, asJSON, out)
	}

	instance := ""
	if len(args) == 1 {
		instance = args[0]
	}

	runs, err := jrnl.ListRuns(cmd.Context(), instance, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if asJSON {
		return writeJSON(out, runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No recorded runs.")
		return nil
	}

	fmt.Fprintf(out, "%-5s %-20s %-8s %-12s %-20s %-10s\n",
		"ID", "INSTANCE", "MODE", "ENV", "STARTED", "OUTCOME")
	for _, run := range runs {
		outcome := run.Outcome
		if outcome == "" {
			outcome = "interrupted"
		}
		fmt.Fprintf(out, "%-5d %-20s %-8s %-12s %-20s %-10s\n",
			run.ID,
			truncate(run.Instance, 20),
			run.Mode,
			run.Environment,
			run.Started.Format("2006-01-02 15:04:05"),
			outcome,
		)
		if run.Error != "" {
			fmt.Fprintf(out, "      error: %s\n", run.Error)
		}
	}
	return nil
}

// verifyAdminPassword reads a candidate password from stdin and checks it
// against the bcrypt hash recorded for the run. The password is read from
// stdin rather than a flag so it never ends up in shell history.
func verifyAdminPassword(cmd *cobra.Command, jrnl *journal.Journal, runID int64, out io.Writer) error {
	fmt.Fprint(out, "Password: ")

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")

	matches, err := jrnl.VerifyAdminPassword(cmd.Context(), runID, password)
	if err != nil {
		return err
	}
	if !matches {
		return fmt.Errorf("password does not match the administrator password recorded for run %d", runID)
	}

	fmt.Fprintln(out, "Password matches.")
	return nil
}

// showRunSteps prints the step records of one run.
func showRunSteps(cmd *cobra.Command, jrnl *journal.Journal, runID int64, asJSON bool, out io.Writer) error {
	run, err := jrnl.GetRun(cmd.Context(), runID)
	if err != nil {
		return fmt.Errorf("run %d not found: %w", runID, err)
	}

	records, err := jrnl.RunSteps(cmd.Context(), runID)
	if err != nil {
		return fmt.Errorf("failed to list steps of run %d: %w", runID, err)
	}

	if asJSON {
		return writeJSON(out, struct {
			Run   *journal.RunRecord   `json:"run"`
			Steps []journal.StepRecord `json:"steps"`
		}{Run: run, Steps: records})
	}

	fmt.Fprintf(out, "Run %d: %s (%s, %s), started %s\n\n",
		run.ID, run.Instance, run.Mode, run.Environment,
		run.Started.Format("2006-01-02 15:04:05"))

	if len(records) == 0 {
		fmt.Fprintln(out, "No steps recorded.")
		return nil
	}

	fmt.Fprintf(out, "%-4s %-20s %-10s %-10s\n", "SEQ", "STEP", "OUTCOME", "DURATION")
	for _, rec := range records {
		fmt.Fprintf(out, "%-4d %-20s %-10s %-10s\n",
			rec.Seq, rec.Name, rec.Outcome, rec.Duration.Round(time.Millisecond))
		if rec.Error != "" {
			fmt.Fprintf(out, "     error: %s\n", rec.Error)
		}
	}
	return nil
}

// writeJSON pretty-prints v to out.
func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// truncate shortens s to max characters with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
