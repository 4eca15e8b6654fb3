package steps

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/appstrap/appstrap/internal/command"
	"github.com/appstrap/appstrap/internal/pipeline"
)

// Clone fetches the platform repository into the instance directory and
// pushes that directory onto the stack, so every later step runs inside
// the checkout until the unwind phase restores the original directory.
//
// An existing checkout at the destination is reused rather than treated as
// an error, which lets a failed install be rerun without deleting the
// directory first.
type Clone struct {
	// runner executes git.
	runner command.Runner

	// stack is the shared directory stack the pipeline unwinds.
	stack *pipeline.DirStack

	// logger for structured logging.
	logger *slog.Logger
}

// CloneOption configures a Clone step.
type CloneOption func(*Clone)

// WithCloneLogger sets a custom logger for the clone step.
func WithCloneLogger(logger *slog.Logger) CloneOption {
	return func(s *Clone) {
		s.logger = logger
	}
}

// NewClone creates the clone step. The stack must be the same instance the
// pipeline was built with, otherwise the unwind phase cannot restore the
// directory this step changes into.
func NewClone(runner command.Runner, stack *pipeline.DirStack, opts ...CloneOption) *Clone {
	s := &Clone{
		runner: runner,
		stack:  stack,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *Clone) Name() string {
	return "clone"
}

// Do clones the repository and enters the checkout.
func (s *Clone) Do(ctx context.Context, opts *pipeline.RunOptions) pipeline.Outcome {
	repo := opts.String(OptRepoURL)
	if repo == "" {
		return pipeline.Fail(ErrNoRepoURL)
	}

	dest := opts.String(OptInstanceDir)
	if dest == "" {
		dest = filepath.Join(opts.String(OptWorkDir), opts.String(OptInstance))
	}

	if hasCheckout(dest) {
		s.logger.Info("reusing existing checkout", "dir", dest)
	} else {
		args := []string{"clone"}
		if ref := opts.String(OptRef); ref != "" {
			args = append(args, "--branch", ref)
		}
		args = append(args, repo, dest)

		s.logger.Info("cloning repository", "repo", repo, "dir", dest)
		if err := s.runner.Run(ctx, command.Spec{Name: "git", Args: args}); err != nil {
			return pipeline.Fail(err)
		}
	}

	if err := s.stack.Push(dest); err != nil {
		return pipeline.Fail(err)
	}

	opts.SetDefault(OptInstanceDir, dest)
	return pipeline.Continue()
}

// hasCheckout reports whether dir already holds a git checkout.
func hasCheckout(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil && info.IsDir()
}
