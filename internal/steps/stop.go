package steps

import (
	"context"
	"log/slog"

	"github.com/appstrap/appstrap/internal/pipeline"
)

// StopServices releases the ephemeral service set.
//
// Design decision: teardown is a declared terminal step in the pipeline
// rather than a hidden defer in the command layer because:
//  1. it must run on the success path too, and its position after the last
//     database consumer is part of the pipeline's meaning
//  2. the step list shown to the user should include everything the run
//     does, teardown included
//  3. its failure policy differs from every other step: best-effort,
//     logged, never escalated, since the installation outcome is already
//     decided by the time teardown runs
//
// The keep-services option turns the step into a logged no-op so a
// developer can inspect the database after the install.
type StopServices struct {
	// guard owns the service set lifecycle.
	guard ServiceGuard

	// logger for structured logging.
	logger *slog.Logger
}

// StopServicesOption configures a StopServices step.
type StopServicesOption func(*StopServices)

// WithStopLogger sets a custom logger for the stop step.
func WithStopLogger(logger *slog.Logger) StopServicesOption {
	return func(s *StopServices) {
		s.logger = logger
	}
}

// NewStopServices creates the service teardown step. The guard must be the
// same instance the start step acquired through.
func NewStopServices(guard ServiceGuard, opts ...StopServicesOption) *StopServices {
	s := &StopServices{
		guard:  guard,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *StopServices) Name() string {
	return "stop_services"
}

// Do releases the service set. Never fails the run.
func (s *StopServices) Do(ctx context.Context, opts *pipeline.RunOptions) pipeline.Outcome {
	if opts.Bool(OptKeepServices) {
		s.logger.Info("leaving service set running",
			"project", opts.String(OptProject),
		)
		return pipeline.Continue()
	}

	if err := s.guard.Release(ctx); err != nil {
		s.logger.Warn("service teardown failed", "error", err)
	}
	return pipeline.Continue()
}
