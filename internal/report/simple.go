package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/appstrap/appstrap/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. The install command adds color at the progress layer, not here
type SimpleWriter struct {
	baseWriter

	// verbose enables per-step timing detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.InstallReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSteps(&sb, report)
	w.writeServices(&sb, report)
	w.writeAdmin(&sb, report)
	w.writeFooter(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.InstallReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        INSTALLATION REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Instance:     %s\n", report.Instance))
	sb.WriteString(fmt.Sprintf("Mode:         %s\n", report.Mode))
	if report.Environment != "" {
		sb.WriteString(fmt.Sprintf("Environment:  %s\n", report.Environment))
	}
	if report.InstanceDir != "" {
		sb.WriteString(fmt.Sprintf("Directory:    %s\n", report.InstanceDir))
	}
	sb.WriteString(fmt.Sprintf("Started:      %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:     %s\n", report.Duration().Round(time.Millisecond)))

	switch report.Status {
	case model.RunFailed:
		sb.WriteString(fmt.Sprintf("Status:       FAILED - %s\n", report.ErrorMessage))
	case model.RunSkipped:
		sb.WriteString("Status:       Completed (alternate flow)\n")
	default:
		sb.WriteString("Status:       Completed\n")
	}

	sb.WriteString("\n")
}

// writeSteps writes the executed step list.
func (w *SimpleWriter) writeSteps(sb *strings.Builder, report *model.InstallReport) {
	if len(report.Steps) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("STEPS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	for i, step := range report.Steps {
		marker := "ok"
		switch step.Status {
		case model.StepFailed:
			marker = "FAILED"
		case model.StepSkipped:
			marker = "skipped"
		}

		if w.verbose {
			sb.WriteString(fmt.Sprintf("%2d. %-20s %-8s %s\n",
				i+1, step.Name, marker, step.Duration.Round(time.Millisecond)))
		} else {
			sb.WriteString(fmt.Sprintf("%2d. %-20s %s\n", i+1, step.Name, marker))
		}

		if step.Error != "" {
			sb.WriteString(fmt.Sprintf("    error: %s\n", step.Error))
		}
	}

	sb.WriteString("\n")
}

// writeServices writes the ephemeral service set section.
func (w *SimpleWriter) writeServices(sb *strings.Builder, report *model.InstallReport) {
	if len(report.Services) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SERVICES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	for _, svc := range report.Services {
		sb.WriteString(fmt.Sprintf("  - %s\n", svc))
	}
	if report.DatabaseAlreadyInitialized {
		sb.WriteString("  (database was already initialized; migration and admin setup skipped)\n")
	}

	sb.WriteString("\n")
}

// writeAdmin writes the administrator access section. The generated
// password appears here and nowhere else: the journal stores only a hash
// and the logs redact it.
func (w *SimpleWriter) writeAdmin(sb *strings.Builder, report *model.InstallReport) {
	if report.AdminEmail == "" {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("ADMINISTRATOR ACCESS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("  Email:    %s\n", report.AdminEmail))
	if report.AdminPasswordGenerated && report.AdminPassword != "" {
		sb.WriteString(fmt.Sprintf("  Password: %s\n", report.AdminPassword))
		sb.WriteString("  (generated for this install; store it now, it is not saved anywhere)\n")
	}

	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, report *model.InstallReport) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	if report.Failed() {
		if step, ok := report.FailedStep(); ok {
			sb.WriteString(fmt.Sprintf("Installation failed at step %q.\n", step.Name))
		} else {
			sb.WriteString("Installation failed.\n")
		}
	} else {
		sb.WriteString("Installation completed.\n")
	}
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
