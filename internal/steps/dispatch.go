package steps

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/appstrap/appstrap/internal/pipeline"
)

// FlowFunc is the run contract of an alternate installation flow. The flow
// receives the shared run options with the instance name already present
// and reports plain success or failure; outcome translation is the
// dispatcher's job.
type FlowFunc func(ctx context.Context, opts *pipeline.RunOptions) error

// DispatchMode hands the run over to an alternate installation flow when
// one of the mutually exclusive mode flags is set.
//
// Precedence is fixed: legacy wins over offline when both flags are set.
// Exactly one flow runs on a match, never both. Flow success becomes a
// soft-skip so the remaining default steps never run but the run still
// reports success; flow failure propagates unchanged.
//
// Design decision: the flows are injected as function values rather than
// imported because:
//  1. the flows build their own pipelines from these same steps, and a
//     package cycle would follow from importing them here
//  2. tests can observe dispatch decisions with a two-line closure
//  3. the dispatcher only needs the run contract, nothing else
type DispatchMode struct {
	// legacy installs the previous-generation application.
	legacy FlowFunc

	// offline installs from a release archive without network access.
	offline FlowFunc

	// logger for structured logging.
	logger *slog.Logger
}

// DispatchModeOption configures a DispatchMode step.
type DispatchModeOption func(*DispatchMode)

// WithDispatchLogger sets a custom logger for the mode dispatch.
func WithDispatchLogger(logger *slog.Logger) DispatchModeOption {
	return func(s *DispatchMode) {
		s.logger = logger
	}
}

// NewDispatchMode creates the mode dispatch step. Either flow may be nil
// when the corresponding mode is not offered; setting that mode's flag then
// fails the run instead of silently falling through to the default flow.
func NewDispatchMode(legacy, offline FlowFunc, opts ...DispatchModeOption) *DispatchMode {
	s := &DispatchMode{
		legacy:  legacy,
		offline: offline,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *DispatchMode) Name() string {
	return "dispatch_mode"
}

// Do checks the mode flags in precedence order and delegates on a match.
func (s *DispatchMode) Do(ctx context.Context, opts *pipeline.RunOptions) pipeline.Outcome {
	switch {
	case opts.Bool(OptLegacy):
		if opts.Bool(OptOffline) {
			s.logger.Warn("both mode flags set, legacy takes precedence",
				"ignored", "offline",
			)
		}
		return s.delegate(ctx, opts, "legacy", s.legacy)
	case opts.Bool(OptOffline):
		return s.delegate(ctx, opts, "offline", s.offline)
	default:
		return pipeline.Continue()
	}
}

// delegate runs one alternate flow and translates its result.
func (s *DispatchMode) delegate(ctx context.Context, opts *pipeline.RunOptions, mode string, flow FlowFunc) pipeline.Outcome {
	if flow == nil {
		return pipeline.Fail(fmt.Errorf("%w: %s", ErrFlowUnavailable, mode))
	}

	s.logger.Info("dispatching to alternate flow",
		"mode", mode,
		"instance", opts.String(OptInstance),
	)

	if err := flow(ctx, opts); err != nil {
		return pipeline.Fail(err)
	}

	s.logger.Info("alternate flow completed, skipping default flow", "mode", mode)
	return pipeline.SoftSkip()
}
