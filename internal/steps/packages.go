package steps

import (
	"context"
	"log/slog"

	"github.com/appstrap/appstrap/internal/command"
	"github.com/appstrap/appstrap/internal/pipeline"
)

// DefaultPackagesCommand installs the checkout's package dependencies.
// npm ci rather than npm install: the lockfile in the checkout is
// authoritative for an installer.
const DefaultPackagesCommand = "npm ci"

// InstallPackages runs the package installation inside the checkout. It
// relies on the clone step having pushed the instance directory, so the
// command runs in the process working directory.
type InstallPackages struct {
	runner      command.Runner
	commandLine string
	logger      *slog.Logger
}

// NewInstallPackages creates the package installation step. An empty
// commandLine selects DefaultPackagesCommand; profiles override it for
// checkouts using a different package manager.
func NewInstallPackages(runner command.Runner, commandLine string) *InstallPackages {
	if commandLine == "" {
		commandLine = DefaultPackagesCommand
	}
	return &InstallPackages{
		runner:      runner,
		commandLine: commandLine,
		logger:      slog.Default(),
	}
}

// Name returns the step name.
func (s *InstallPackages) Name() string {
	return "install_packages"
}

// Do runs the package installation command.
func (s *InstallPackages) Do(ctx context.Context, opts *pipeline.RunOptions) pipeline.Outcome {
	spec, err := command.SplitSpec(s.commandLine, "")
	if err != nil {
		return pipeline.Fail(err)
	}

	s.logger.Info("installing packages", "command", spec.CommandLine())
	if err := s.runner.Run(ctx, spec); err != nil {
		return pipeline.Fail(err)
	}
	return pipeline.Continue()
}
