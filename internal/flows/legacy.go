package flows

import (
	"context"
	"log/slog"

	"github.com/appstrap/appstrap/internal/command"
	"github.com/appstrap/appstrap/internal/config"
	"github.com/appstrap/appstrap/internal/pipeline"
	"github.com/appstrap/appstrap/internal/steps"
)

// Default command lines of the legacy flow. The previous-generation
// platform predates lockfile discipline and ships its own bootstrap script
// instead of the setup hook.
const (
	DefaultLegacyInstallCommand   = "npm install"
	DefaultLegacyBootstrapCommand = "npm run bootstrap"
)

// Legacy installs the previous-generation (v1) platform: clone the legacy
// repository, install packages, run the legacy bootstrap. No services are
// provisioned; the v1 platform manages its own database.
//
// Design decision: the flow builds a fresh option set for its inner
// pipeline instead of reusing the caller's because:
//  1. the legacy repository URL must not displace the repo_url the caller
//     supplied for the default flow
//  2. values the inner pipeline derives stay scoped to the flow
//  3. the dispatch contract only promises the instance name is re-injected,
//     so the flow spells out exactly which outer values it consumes
type Legacy struct {
	// runner executes git and npm.
	runner command.Runner

	// stack is the shared directory stack. The dispatch step runs before
	// anything pushes onto it, so the inner pipeline's unwind restores
	// exactly what the flow entered.
	stack *pipeline.DirStack

	// logger for structured logging.
	logger *slog.Logger

	// repoURL is the legacy platform repository.
	repoURL string

	// ref is the branch or tag to check out. Empty means the repository
	// default branch.
	ref string

	// installCommand and bootstrapCommand are the flow's command lines.
	installCommand   string
	bootstrapCommand string
}

// LegacyOption configures a Legacy flow.
type LegacyOption func(*Legacy)

// WithLegacyRef sets the branch or tag the legacy clone checks out.
func WithLegacyRef(ref string) LegacyOption {
	return func(f *Legacy) {
		f.ref = ref
	}
}

// WithLegacyCommands overrides the install and bootstrap command lines.
// Empty strings keep the defaults.
func WithLegacyCommands(install, bootstrap string) LegacyOption {
	return func(f *Legacy) {
		if install != "" {
			f.installCommand = install
		}
		if bootstrap != "" {
			f.bootstrapCommand = bootstrap
		}
	}
}

// WithLegacyLogger sets a custom logger for the legacy flow.
func WithLegacyLogger(logger *slog.Logger) LegacyOption {
	return func(f *Legacy) {
		f.logger = logger
	}
}

// NewLegacy creates the legacy flow. An empty repoURL selects the built-in
// legacy repository. The stack must be the one the outer pipeline unwinds.
func NewLegacy(runner command.Runner, stack *pipeline.DirStack, repoURL string, opts ...LegacyOption) *Legacy {
	f := &Legacy{
		runner:           runner,
		stack:            stack,
		logger:           slog.Default(),
		repoURL:          repoURL,
		installCommand:   DefaultLegacyInstallCommand,
		bootstrapCommand: DefaultLegacyBootstrapCommand,
	}
	if f.repoURL == "" {
		f.repoURL = config.DefaultLegacyRepoURL
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Run satisfies the dispatch step's flow contract.
func (f *Legacy) Run(ctx context.Context, opts *pipeline.RunOptions) error {
	inner := pipeline.NewRunOptions()
	inner.Set(steps.OptInstance, opts.String(steps.OptInstance))
	inner.Set(steps.OptWorkDir, opts.String(steps.OptWorkDir))
	inner.Set(steps.OptEnvironment, opts.String(steps.OptEnvironment))
	inner.Set(steps.OptRepoURL, f.repoURL)
	if f.ref != "" {
		inner.Set(steps.OptRef, f.ref)
	}

	f.logger.Info("running legacy installation",
		"instance", inner.String(steps.OptInstance),
		"repo", f.repoURL,
	)

	p := pipeline.New(
		pipeline.WithLogger(f.logger),
		pipeline.WithDirStack(f.stack),
	)
	p.AddSteps(
		steps.NewClone(f.runner, f.stack, steps.WithCloneLogger(f.logger)),
		steps.NewInstallPackages(f.runner, f.installCommand),
		&bootstrap{runner: f.runner, commandLine: f.bootstrapCommand, logger: f.logger},
	)
	return p.Execute(ctx, inner)
}

// bootstrap runs the legacy platform's bootstrap script inside the
// checkout. It is private to the flow: no other pipeline uses it.
type bootstrap struct {
	runner      command.Runner
	commandLine string
	logger      *slog.Logger
}

// Name returns the step name.
func (s *bootstrap) Name() string {
	return "legacy_bootstrap"
}

// Do runs the bootstrap command.
func (s *bootstrap) Do(ctx context.Context, opts *pipeline.RunOptions) pipeline.Outcome {
	spec, err := command.SplitSpec(s.commandLine, "")
	if err != nil {
		return pipeline.Fail(err)
	}
	spec.Env = []string{
		"PLEXUS_INSTANCE=" + opts.String(steps.OptInstance),
		"PLEXUS_ENVIRONMENT=" + opts.String(steps.OptEnvironment),
	}

	s.logger.Info("bootstrapping legacy platform", "command", spec.CommandLine())
	if err := s.runner.Run(ctx, spec); err != nil {
		return pipeline.Fail(err)
	}
	return pipeline.Continue()
}
