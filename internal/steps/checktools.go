package steps

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/appstrap/appstrap/internal/command"
	"github.com/appstrap/appstrap/internal/pipeline"
)

// DefaultTools lists the external commands the default flow shells out to.
// The check runs before any mutating step so a missing tool fails the run
// while the filesystem is still untouched.
var DefaultTools = []string{"git", "node", "npm", "docker"}

// defaultToolConcurrency bounds the parallel PATH lookups. Lookups are
// cheap; the limit only keeps the goroutine count sane for long tool lists
// from profiles.
const defaultToolConcurrency = 4

// CheckTools verifies the required external tools are installed.
//
// Design decision: probing is concurrent with a bounded errgroup rather
// than a sequential loop because profile-configured tool lists can be long
// and each lookup is independent. All tools are probed even after the
// first miss so the failure message names every missing tool at once
// instead of one per run.
type CheckTools struct {
	// runner resolves tool names; only LookPath is used.
	runner command.Runner

	// tools are the command names that must resolve.
	tools []string

	// concurrency limits parallel lookups.
	concurrency int

	// logger for structured logging.
	logger *slog.Logger
}

// CheckToolsOption configures a CheckTools step.
type CheckToolsOption func(*CheckTools)

// WithTools overrides the probed tool list.
func WithTools(tools []string) CheckToolsOption {
	return func(s *CheckTools) {
		if len(tools) > 0 {
			s.tools = tools
		}
	}
}

// WithCheckToolsLogger sets a custom logger for the tool check.
func WithCheckToolsLogger(logger *slog.Logger) CheckToolsOption {
	return func(s *CheckTools) {
		s.logger = logger
	}
}

// NewCheckTools creates the tool check step. By default it probes
// DefaultTools.
func NewCheckTools(runner command.Runner, opts ...CheckToolsOption) *CheckTools {
	s := &CheckTools{
		runner:      runner,
		tools:       DefaultTools,
		concurrency: defaultToolConcurrency,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CheckTools) Name() string {
	return "check_tools"
}

// Do probes every tool and fails when any is missing.
func (s *CheckTools) Do(ctx context.Context, _ *pipeline.RunOptions) pipeline.Outcome {
	// Pre-allocate so each goroutine writes its own slot; no mutex needed.
	missing := make([]string, len(s.tools))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, tool := range s.tools {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			path, err := s.runner.LookPath(tool)
			if err != nil {
				missing[i] = tool
				return nil
			}
			s.logger.Debug("tool present", "tool", tool, "path", path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return pipeline.Fail(err)
	}

	var names []string
	for _, tool := range missing {
		if tool != "" {
			names = append(names, tool)
		}
	}
	if len(names) > 0 {
		return pipeline.Fail(fmt.Errorf("%w: %s", ErrMissingTools, strings.Join(names, ", ")))
	}

	s.logger.Info("all required tools present", "tools", len(s.tools))
	return pipeline.Continue()
}
