package flows

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/appstrap/appstrap/internal/command"
	"github.com/appstrap/appstrap/internal/pipeline"
	"github.com/appstrap/appstrap/internal/steps"
)

// DefaultOfflineInstallCommand installs packages from the local cache the
// release archive ships, without hitting the registry.
const DefaultOfflineInstallCommand = "npm ci --offline"

// Offline installs the platform from a pre-fetched release archive on hosts
// without network access: verify the archive, extract it into the instance
// directory, install packages offline, run setup. Nothing in the flow
// touches the network.
type Offline struct {
	// runner executes tar and npm.
	runner command.Runner

	// stack is the shared directory stack; see Legacy for the sharing
	// contract.
	stack *pipeline.DirStack

	// logger for structured logging.
	logger *slog.Logger

	// installCommand and setupCommand are the flow's command lines.
	installCommand string
	setupCommand   string
}

// OfflineOption configures an Offline flow.
type OfflineOption func(*Offline)

// WithOfflineCommands overrides the install and setup command lines. Empty
// strings keep the defaults.
func WithOfflineCommands(install, setup string) OfflineOption {
	return func(f *Offline) {
		if install != "" {
			f.installCommand = install
		}
		if setup != "" {
			f.setupCommand = setup
		}
	}
}

// WithOfflineLogger sets a custom logger for the offline flow.
func WithOfflineLogger(logger *slog.Logger) OfflineOption {
	return func(f *Offline) {
		f.logger = logger
	}
}

// NewOffline creates the offline flow. The stack must be the one the outer
// pipeline unwinds.
func NewOffline(runner command.Runner, stack *pipeline.DirStack, opts ...OfflineOption) *Offline {
	f := &Offline{
		runner:         runner,
		stack:          stack,
		logger:         slog.Default(),
		installCommand: DefaultOfflineInstallCommand,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Run satisfies the dispatch step's flow contract.
func (f *Offline) Run(ctx context.Context, opts *pipeline.RunOptions) error {
	inner := pipeline.NewRunOptions()
	inner.Set(steps.OptInstance, opts.String(steps.OptInstance))
	inner.Set(steps.OptWorkDir, opts.String(steps.OptWorkDir))
	inner.Set(steps.OptEnvironment, opts.String(steps.OptEnvironment))
	inner.Set(steps.OptArchive, opts.String(steps.OptArchive))

	f.logger.Info("running offline installation",
		"instance", inner.String(steps.OptInstance),
		"archive", inner.String(steps.OptArchive),
	)

	p := pipeline.New(
		pipeline.WithLogger(f.logger),
		pipeline.WithDirStack(f.stack),
	)
	p.AddSteps(
		&verifyArchive{runner: f.runner, logger: f.logger},
		&extractArchive{runner: f.runner, stack: f.stack, logger: f.logger},
		steps.NewInstallPackages(f.runner, f.installCommand),
		steps.NewSetup(f.runner, f.setupCommand, steps.WithSetupLogger(f.logger)),
	)
	return p.Execute(ctx, inner)
}

// verifyArchive checks the release archive and the extractor before
// anything mutates: a bad path fails here, not halfway through extraction.
// tar is probed here rather than in the shared tool check because only this
// flow needs it.
type verifyArchive struct {
	runner command.Runner
	logger *slog.Logger
}

// Name returns the step name.
func (s *verifyArchive) Name() string {
	return "verify_archive"
}

// Do validates the archive path and the extractor.
func (s *verifyArchive) Do(_ context.Context, opts *pipeline.RunOptions) pipeline.Outcome {
	path := opts.String(steps.OptArchive)
	if path == "" {
		return pipeline.Fail(ErrNoArchive)
	}

	info, err := os.Stat(path)
	if err != nil {
		return pipeline.Fail(fmt.Errorf("offline archive: %w", err))
	}
	if info.IsDir() {
		return pipeline.Fail(fmt.Errorf("offline archive %s is a directory", path))
	}

	if _, err := s.runner.LookPath("tar"); err != nil {
		return pipeline.Fail(fmt.Errorf("%w: %v", ErrNoExtractor, err))
	}

	s.logger.Info("archive verified", "archive", path, "bytes", info.Size())
	return pipeline.Continue()
}

// extractArchive unpacks the archive into the instance directory and enters
// it, so the remaining flow steps run inside the extracted checkout.
type extractArchive struct {
	runner command.Runner
	stack  *pipeline.DirStack
	logger *slog.Logger
}

// Name returns the step name.
func (s *extractArchive) Name() string {
	return "extract_archive"
}

// Do extracts the archive and pushes the instance directory.
func (s *extractArchive) Do(ctx context.Context, opts *pipeline.RunOptions) pipeline.Outcome {
	dest := opts.String(steps.OptInstanceDir)
	if dest == "" {
		dest = filepath.Join(opts.String(steps.OptWorkDir), opts.String(steps.OptInstance))
	}
	if err := os.MkdirAll(dest, 0750); err != nil {
		return pipeline.Fail(fmt.Errorf("create instance directory: %w", err))
	}

	// Release archives wrap a single top-level directory; stripping it
	// puts the checkout directly into the instance directory.
	spec := command.Spec{
		Name: "tar",
		Args: []string{
			"--extract", "--gzip",
			"--file", opts.String(steps.OptArchive),
			"--directory", dest,
			"--strip-components", "1",
		},
	}

	s.logger.Info("extracting archive", "dir", dest)
	if err := s.runner.Run(ctx, spec); err != nil {
		return pipeline.Fail(err)
	}

	if err := s.stack.Push(dest); err != nil {
		return pipeline.Fail(err)
	}
	opts.SetDefault(steps.OptInstanceDir, dest)
	return pipeline.Continue()
}
