package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in declared order, each receiving the shared run
// options populated by the caller and by earlier steps.
//
// Design decision: an interface rather than function values because:
//  1. steps carry collaborators (command runner, service guard) injected
//     at construction
//  2. Name is needed for logging, journaling, and progress output
//  3. the install, legacy, and offline flows can share step implementations
type Step interface {
	// Do executes the step. The context carries cancellation; opts is the
	// shared run state. Do reports one of three outcomes: continue, fail,
	// or soft-skip the remaining steps.
	Do(ctx context.Context, opts *RunOptions) Outcome

	// Name returns the step's name for logging and journaling.
	Name() string
}

// Observer receives lifecycle callbacks around each step. Callbacks run on
// the pipeline goroutine; implementations must not block for long.
type Observer interface {
	// StepStarted fires before a step runs. index is 1-based.
	StepStarted(index, total int, name string)

	// StepFinished fires after a step returns, with its outcome and
	// elapsed wall time.
	StepFinished(index, total int, name string, outcome Outcome, elapsed time.Duration)
}

// Pipeline executes steps strictly in order, stopping at the first failure
// or soft-skip, and always running the directory-stack unwind phase before
// returning.
type Pipeline struct {
	steps    []Step
	logger   *slog.Logger
	stack    *DirStack
	observer Observer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithDirStack sets the directory stack the pipeline unwinds when it ends.
// Steps that change directories must share this stack instance. When no
// stack is supplied, Execute creates an os-backed one.
func WithDirStack(stack *DirStack) Option {
	return func(p *Pipeline) {
		p.stack = stack
	}
}

// WithObserver sets an observer notified around every step.
func WithObserver(obs Observer) Option {
	return func(p *Pipeline) {
		p.observer = obs
	}
}

// New creates a Pipeline with the given options. Steps are added with
// AddStep or AddSteps and run in insertion order.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps in order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// Execute runs the steps in order and returns the first failure, if any.
//
// Behavior after each step:
//   - continue: advance to the next step
//   - fail: stop, run the unwind phase, return the step's original error
//   - soft-skip: stop, run the unwind phase, return nil
//
// Context cancellation is checked before each step; a cancelled run unwinds
// like any other exit and returns the context error. The unwind phase runs
// exactly once per Execute call, on every exit path. An unwind failure is
// logged and never overrides the pipeline outcome.
func (p *Pipeline) Execute(ctx context.Context, opts *RunOptions) error {
	if p.stack == nil {
		stack, err := NewDirStack()
		if err != nil {
			return err
		}
		p.stack = stack
	}

	failure := p.run(ctx, opts)
	p.unwind()
	return failure
}

// run executes the step loop and returns the failure to surface, if any.
func (p *Pipeline) run(ctx context.Context, opts *RunOptions) error {
	p.logger.Debug("run options", "options", opts.Describe())

	total := len(p.steps)
	for i, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		p.logger.Info("running step", "step", step.Name(), "index", i+1, "total", total)
		if p.observer != nil {
			p.observer.StepStarted(i+1, total, step.Name())
		}

		start := time.Now()
		outcome := step.Do(ctx, opts)
		elapsed := time.Since(start)

		if p.observer != nil {
			p.observer.StepFinished(i+1, total, step.Name(), outcome, elapsed)
		}

		switch {
		case outcome.Failed():
			p.logger.Error("step failed",
				"step", step.Name(),
				"error", outcome.Err(),
				"elapsed", elapsed,
			)
			return outcome.Err()
		case outcome.Skipped():
			p.logger.Info("remaining steps skipped",
				"step", step.Name(),
				"remaining", total-i-1,
			)
			return nil
		default:
			p.logger.Debug("step completed", "step", step.Name(), "elapsed", elapsed)
		}
	}
	return nil
}

// unwind restores the original working directory. It runs on every exit
// path. An error here indicates a bug in stack discipline, not a runtime
// condition to surface, so it is logged and swallowed.
func (p *Pipeline) unwind() {
	depth := p.stack.Depth()
	if depth > 1 {
		p.logger.Debug("unwinding directory stack", "depth", depth)
	}
	if err := p.stack.Unwind(); err != nil {
		p.logger.Error("directory stack unwind failed", "error", err)
	}
}
