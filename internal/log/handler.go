package log

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Format names for Options.Format.
const (
	// FormatAuto picks tint when the writer is an interactive terminal,
	// text otherwise.
	FormatAuto = "auto"

	// FormatTint selects colored, human-oriented output.
	FormatTint = "tint"

	// FormatText selects plain slog text output.
	FormatText = "text"

	// FormatJSON selects JSON output for log aggregation.
	FormatJSON = "json"
)

// Options configures the logger built by New.
type Options struct {
	// Verbose lowers the level from Warn to Debug.
	Verbose bool

	// Format selects the output handler. Empty means FormatAuto.
	Format string

	// NoColor forces plain text even on an interactive terminal.
	NoColor bool
}

// New creates the installer's logger: a format-appropriate handler wrapped
// in the redaction layer. All appstrap logging goes through this so no code
// path can emit an unredacted credential.
func New(w io.Writer, opts Options) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}

	format := opts.Format
	if format == "" || format == FormatAuto {
		if !opts.NoColor && isTerminal(w) {
			format = FormatTint
		} else {
			format = FormatText
		}
	}
	if opts.NoColor && format == FormatTint {
		format = FormatText
	}

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case FormatTint:
		handler = tint.NewHandler(w, &tint.Options{Level: level})
	default:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}

	return slog.New(NewSecureHandler(handler))
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
