package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/appstrap/appstrap/internal/journal"
	"github.com/appstrap/appstrap/internal/model"
	"github.com/appstrap/appstrap/internal/pipeline"
)

// Progress line styles. lipgloss degrades to plain text on its own when
// the terminal has no color support; --no-color forces that path.
var (
	styleStepName = lipgloss.NewStyle().Bold(true)
	styleOK       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleFailed   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleSkipped  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// runObserver receives pipeline step callbacks and fans them out to the
// terminal progress line, the install report, and the journal.
//
// Design decision: one observer for all three consumers rather than a
// chain because the pipeline runs the callbacks synchronously on its own
// goroutine; a single struct keeps the per-step bookkeeping (start time,
// sequence) in one place with no coordination.
type runObserver struct {
	out     io.Writer
	report  *model.InstallReport
	journal *journal.Journal
	runID   int64
	logger  *slog.Logger
	noColor bool

	// lastStart is the start time of the step currently running. The
	// pipeline is strictly sequential, so a single field suffices.
	lastStart time.Time

	// softSkipped records whether any step asked to skip the rest of
	// the run.
	softSkipped bool
}

// newRunObserver creates the observer. journal may be nil when the run is
// not being recorded; runID is ignored in that case.
func newRunObserver(out io.Writer, report *model.InstallReport, jrnl *journal.Journal, runID int64, logger *slog.Logger, noColor bool) *runObserver {
	return &runObserver{
		out:     out,
		report:  report,
		journal: jrnl,
		runID:   runID,
		logger:  logger,
		noColor: noColor,
	}
}

// SoftSkipped reports whether a step soft-skipped the remaining pipeline.
func (o *runObserver) SoftSkipped() bool {
	return o.softSkipped
}

// StepStarted implements pipeline.Observer.
func (o *runObserver) StepStarted(index, total int, name string) {
	o.lastStart = time.Now()
	fmt.Fprintf(o.out, "[%d/%d] %s\n", index, total, o.styled(styleStepName, name))
}

// StepFinished implements pipeline.Observer.
func (o *runObserver) StepFinished(index, total int, name string, outcome pipeline.Outcome, elapsed time.Duration) {
	status := o.stepStatus(outcome)
	result := model.NewStepResult(name, status, o.lastStart, elapsed)
	if err := outcome.Err(); err != nil {
		result.Error = err.Error()
	}
	o.report.AddStep(result)

	fmt.Fprintf(o.out, "[%d/%d] %s %s (%s)\n",
		index, total, o.styled(styleStepName, name), o.statusLine(outcome), elapsed.Round(time.Millisecond))

	if o.journal != nil {
		// Journal writes are advisory: a full disk must not fail an
		// install that already succeeded.
		if err := o.journal.RecordStep(context.Background(), o.runID, index, result); err != nil {
			o.logger.Warn("failed to record step in journal", "step", name, "error", err)
		}
	}
}

// stepStatus maps a pipeline outcome to the report's step status.
func (o *runObserver) stepStatus(outcome pipeline.Outcome) model.StepStatus {
	switch {
	case outcome.Failed():
		return model.StepFailed
	case outcome.Skipped():
		o.softSkipped = true
		return model.StepSkipped
	default:
		return model.StepCompleted
	}
}

// statusLine renders the outcome marker for the progress line.
func (o *runObserver) statusLine(outcome pipeline.Outcome) string {
	switch {
	case outcome.Failed():
		return o.styled(styleFailed, "failed")
	case outcome.Skipped():
		return o.styled(styleSkipped, "skipped rest")
	default:
		return o.styled(styleOK, "ok")
	}
}

// styled applies a style unless color is disabled.
func (o *runObserver) styled(style lipgloss.Style, s string) string {
	if o.noColor {
		return s
	}
	return style.Render(s)
}
