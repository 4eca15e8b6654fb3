package steps

import (
	"context"
	"log/slog"
	"strings"

	"github.com/appstrap/appstrap/internal/command"
	"github.com/appstrap/appstrap/internal/pipeline"
)

// DefaultInitCommand creates the instance schema. The script exits zero
// both when it initialized the database and when the schema already
// existed; the marker in its output distinguishes the two.
const DefaultInitCommand = "npm run db:init"

// initializedMarker is the output fragment the initializer prints when the
// schema already exists. Matching is case-insensitive.
const initializedMarker = "already initialized"

// InitDatabase runs the schema initializer inside the checkout.
//
// An already-initialized database is a normal condition, not a failure:
// the step raises the skip flag and continues, and the dependent steps
// (migrate, create_admin) no-op on it. Only a non-zero exit from the
// initializer fails the run.
type InitDatabase struct {
	// runner executes the initializer.
	runner command.Runner

	// commandLine is the shell-style initializer invocation.
	commandLine string

	// logger for structured logging.
	logger *slog.Logger
}

// InitDatabaseOption configures an InitDatabase step.
type InitDatabaseOption func(*InitDatabase)

// WithInitLogger sets a custom logger for the initializer step.
func WithInitLogger(logger *slog.Logger) InitDatabaseOption {
	return func(s *InitDatabase) {
		s.logger = logger
	}
}

// NewInitDatabase creates the schema initializer step. An empty
// commandLine selects DefaultInitCommand.
func NewInitDatabase(runner command.Runner, commandLine string, opts ...InitDatabaseOption) *InitDatabase {
	s := &InitDatabase{
		runner:      runner,
		commandLine: commandLine,
		logger:      slog.Default(),
	}
	if s.commandLine == "" {
		s.commandLine = DefaultInitCommand
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *InitDatabase) Name() string {
	return "init_database"
}

// Do runs the initializer and interprets its output.
func (s *InitDatabase) Do(ctx context.Context, opts *pipeline.RunOptions) pipeline.Outcome {
	if opts.Bool(OptDBInitialized) {
		s.logger.Info("database already initialized, skipping initializer")
		return pipeline.Continue()
	}

	spec, err := command.SplitSpec(s.commandLine, "")
	if err != nil {
		return pipeline.Fail(err)
	}

	s.logger.Info("initializing database", "command", spec.CommandLine())
	out, err := s.runner.Output(ctx, spec)
	if err != nil {
		return pipeline.Fail(err)
	}

	if strings.Contains(strings.ToLower(out), initializedMarker) {
		s.logger.Info("initializer found existing schema, raising skip flag")
		opts.Set(OptDBInitialized, true)
	}
	return pipeline.Continue()
}
