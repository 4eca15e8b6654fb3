package steps

import (
	"context"
	"log/slog"

	"github.com/appstrap/appstrap/internal/command"
	"github.com/appstrap/appstrap/internal/pipeline"
)

// DefaultUIBuildCommand builds the developer UI bundle.
const DefaultUIBuildCommand = "npm run build:ui"

// BuildUI builds the UI bundle in dev mode. It is independently bypassable
// with the skip-ui option, separate from the asset step, because backend
// iterations rarely need a UI rebuild and it is the slowest dev-mode step.
type BuildUI struct {
	runner      command.Runner
	commandLine string
	logger      *slog.Logger
}

// NewBuildUI creates the UI build step. An empty commandLine selects
// DefaultUIBuildCommand.
func NewBuildUI(runner command.Runner, commandLine string) *BuildUI {
	if commandLine == "" {
		commandLine = DefaultUIBuildCommand
	}
	return &BuildUI{
		runner:      runner,
		commandLine: commandLine,
		logger:      slog.Default(),
	}
}

// Name returns the step name.
func (s *BuildUI) Name() string {
	return "build_ui"
}

// Do builds the UI when dev mode asks for it.
func (s *BuildUI) Do(ctx context.Context, opts *pipeline.RunOptions) pipeline.Outcome {
	if !opts.Bool(OptDevMode) {
		s.logger.Debug("dev mode off, skipping UI build")
		return pipeline.Continue()
	}
	if opts.Bool(OptSkipUI) {
		s.logger.Info("UI build bypassed")
		return pipeline.Continue()
	}

	spec, err := command.SplitSpec(s.commandLine, "")
	if err != nil {
		return pipeline.Fail(err)
	}

	s.logger.Info("building UI", "command", spec.CommandLine())
	if err := s.runner.Run(ctx, spec); err != nil {
		return pipeline.Fail(err)
	}
	return pipeline.Continue()
}
