package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/appstrap/appstrap/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.InstallReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeAlert(md, report)
	w.writeSteps(md, report)
	w.writeServices(md, report)
	w.writeAdmin(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.InstallReport) {
	md.H1("Installation Report")
	md.PlainText("")

	rows := [][]string{
		{"Instance", "`" + report.Instance + "`"},
		{"Mode", report.Mode},
	}
	if report.Environment != "" {
		rows = append(rows, []string{"Environment", report.Environment})
	}
	if report.InstanceDir != "" {
		rows = append(rows, []string{"Directory", "`" + report.InstanceDir + "`"})
	}
	rows = append(rows,
		[]string{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
		[]string{"Duration", report.Duration().Round(time.Millisecond).String()},
		[]string{"Status", w.statusText(report)},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// statusText returns the status cell based on report state.
func (w *MarkdownWriter) statusText(report *model.InstallReport) string {
	switch report.Status {
	case model.RunFailed:
		return "❌ Failed"
	case model.RunSkipped:
		return "✅ Completed (alternate flow)"
	default:
		return "✅ Completed"
	}
}

// writeAlert writes an alert matching the run outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.InstallReport) {
	switch {
	case report.Failed():
		if step, ok := report.FailedStep(); ok {
			md.Cautionf("Installation failed at step `%s`: %s", step.Name, report.ErrorMessage)
		} else {
			md.Cautionf("Installation failed: %s", report.ErrorMessage)
		}
	case report.DatabaseAlreadyInitialized:
		md.Note("The database was already initialized; migration and administrator setup were skipped.")
	case report.Status == model.RunSkipped:
		md.Note("An alternate installation flow handled this run; the default pipeline was skipped.")
	default:
		md.Tip("Installation completed without issues.")
	}
	md.PlainText("")
}

// writeSteps writes the executed step table.
func (w *MarkdownWriter) writeSteps(md *markdown.Markdown, report *model.InstallReport) {
	md.H2("Steps")
	md.PlainText("")

	if len(report.Steps) == 0 {
		md.PlainText("No steps executed.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Steps))
	for i, step := range report.Steps {
		errText := step.Error
		if errText == "" {
			errText = "-"
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			"`" + step.Name + "`",
			step.StatusLabel,
			step.Duration.Round(time.Millisecond).String(),
			truncateString(errText, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"#", "Step", "Status", "Duration", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeServices writes the ephemeral service set section.
func (w *MarkdownWriter) writeServices(md *markdown.Markdown, report *model.InstallReport) {
	md.H2("Services")
	md.PlainText("")

	if len(report.Services) == 0 {
		md.PlainText("No service set was started.")
		md.PlainText("")
		return
	}

	md.BulletList(report.Services...)
	md.PlainText("")
}

// writeAdmin writes the administrator access section. The password is
// never written to markdown: the report may be committed or shared, and
// the terminal summary already showed it once.
func (w *MarkdownWriter) writeAdmin(md *markdown.Markdown, report *model.InstallReport) {
	if report.AdminEmail == "" {
		return
	}

	md.H2("Administrator Access")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Email", "`" + report.AdminEmail + "`"},
			{"Password", w.passwordText(report)},
		},
	})
	md.PlainText("")
}

// passwordText describes the password without revealing it.
func (w *MarkdownWriter) passwordText(report *model.InstallReport) string {
	if report.AdminPasswordGenerated {
		return "generated; shown once in the terminal summary"
	}
	return "as supplied"
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by appstrap*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
