package steps

import (
	"context"
	"log/slog"

	"github.com/appstrap/appstrap/internal/command"
	"github.com/appstrap/appstrap/internal/pipeline"
)

// DefaultMigrateCommand applies pending schema migrations.
const DefaultMigrateCommand = "npm run db:migrate"

// Migrate runs the checkout's migration runner. When the skip flag is
// raised the step is a pure no-op: it returns Continue without touching the
// runner, because migrations against an already-initialized schema would
// re-apply work the first install already did.
type Migrate struct {
	runner      command.Runner
	commandLine string
	logger      *slog.Logger
}

// NewMigrate creates the migration step. An empty commandLine selects
// DefaultMigrateCommand.
func NewMigrate(runner command.Runner, commandLine string) *Migrate {
	if commandLine == "" {
		commandLine = DefaultMigrateCommand
	}
	return &Migrate{
		runner:      runner,
		commandLine: commandLine,
		logger:      slog.Default(),
	}
}

// Name returns the step name.
func (s *Migrate) Name() string {
	return "migrate"
}

// Do applies migrations unless the skip flag is raised.
func (s *Migrate) Do(ctx context.Context, opts *pipeline.RunOptions) pipeline.Outcome {
	if opts.Bool(OptDBInitialized) {
		s.logger.Info("database already initialized, skipping migrations")
		return pipeline.Continue()
	}

	spec, err := command.SplitSpec(s.commandLine, "")
	if err != nil {
		return pipeline.Fail(err)
	}

	s.logger.Info("running migrations", "command", spec.CommandLine())
	if err := s.runner.Run(ctx, spec); err != nil {
		return pipeline.Fail(err)
	}
	return pipeline.Continue()
}
