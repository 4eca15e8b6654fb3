package steps

import (
	"log/slog"

	"github.com/appstrap/appstrap/internal/command"
	"github.com/appstrap/appstrap/internal/config"
	"github.com/appstrap/appstrap/internal/pipeline"
)

// Deps carries the collaborators and profile overrides the install
// pipeline steps share. Runner, Guard, and Stack are required; the Stack
// must be the same instance handed to the pipeline so the clone step and
// the unwind phase agree on it. Empty command strings select the step
// defaults.
type Deps struct {
	// Runner executes external tools.
	Runner command.Runner

	// Guard owns the ephemeral service set.
	Guard ServiceGuard

	// Stack is the shared directory stack.
	Stack *pipeline.DirStack

	// Logger is handed to every step. Nil means slog.Default.
	Logger *slog.Logger

	// Legacy and Offline are the alternate flow run contracts. A nil
	// flow fails the run if its mode flag is set.
	Legacy  FlowFunc
	Offline FlowFunc

	// Tools overrides the probed tool list.
	Tools []string

	// Command overrides from the instance profile.
	PackagesCommand string
	SetupCommand    string
	InitCommand     string
	MigrateCommand  string
	AdminCommand    string
	UIBuildCommand  string

	// Asset selection patterns for the developer asset step.
	AssetInclude []string
	AssetExclude []string
}

// InstallPipeline assembles the default installation pipeline.
//
// Design decision: a factory rather than assembly in the command layer
// because:
//  1. the step order is the contract (tool check before anything
//     mutates, teardown terminal) and it should live in one place
//  2. the legacy and offline flows reuse individual steps but never this
//     order, so the order is install-specific
//  3. tests can assemble the real pipeline against fake collaborators
//
// Step order: check_tools, dispatch_mode, clone, install_packages, setup,
// render_services, start_services, init_database, migrate, create_admin,
// install_assets, build_ui, stop_services.
func InstallPipeline(deps Deps, pipelineOpts ...pipeline.Option) *pipeline.Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithDirStack(deps.Stack),
	}
	opts = append(opts, pipelineOpts...)
	p := pipeline.New(opts...)

	p.AddSteps(
		NewCheckTools(deps.Runner, WithTools(deps.Tools), WithCheckToolsLogger(logger)),
		NewDispatchMode(deps.Legacy, deps.Offline, WithDispatchLogger(logger)),
		NewClone(deps.Runner, deps.Stack, WithCloneLogger(logger)),
		NewInstallPackages(deps.Runner, deps.PackagesCommand),
		NewSetup(deps.Runner, deps.SetupCommand, WithSetupLogger(logger)),
		NewRenderServices(WithRenderLogger(logger)),
		NewStartServices(deps.Guard, WithStartLogger(logger)),
		NewInitDatabase(deps.Runner, deps.InitCommand, WithInitLogger(logger)),
		NewMigrate(deps.Runner, deps.MigrateCommand),
		NewCreateAdmin(deps.Runner, deps.AdminCommand, WithAdminLogger(logger)),
		NewInstallAssets(WithAssetPatterns(deps.AssetInclude, deps.AssetExclude), WithAssetsLogger(logger)),
		NewBuildUI(deps.Runner, deps.UIBuildCommand),
		NewStopServices(deps.Guard, WithStopLogger(logger)),
	)

	return p
}

// SeedOptions converts the validated configuration into the initial run
// options. Everything here counts as caller-supplied: later steps add
// derived values with merge-if-absent semantics and must not displace
// these.
func SeedOptions(cfg *config.Config) *pipeline.RunOptions {
	opts := pipeline.NewRunOptions()
	opts.Set(OptInstance, cfg.Instance)
	opts.Set(OptWorkDir, cfg.WorkDir)
	opts.Set(OptRepoURL, cfg.RepoURL)
	opts.Set(OptRef, cfg.Branch)
	opts.Set(OptEnvironment, cfg.Environment)
	opts.Set(OptDevMode, cfg.DevMode)
	opts.Set(OptSkipUI, cfg.SkipUI)
	opts.Set(OptLegacy, cfg.Legacy)
	opts.Set(OptOffline, cfg.Offline)
	opts.Set(OptDatabasePort, cfg.DatabasePort)
	opts.Set(OptCachePort, cfg.CachePort)
	opts.Set(OptAdminEmail, cfg.AdminEmail)
	opts.Set(OptKeepServices, cfg.KeepServices)
	if cfg.OfflineArchive != "" {
		opts.Set(OptArchive, cfg.OfflineArchive)
	}
	if cfg.AdminPassword != "" {
		opts.Set(OptAdminPassword, cfg.AdminPassword)
	}
	return opts
}
