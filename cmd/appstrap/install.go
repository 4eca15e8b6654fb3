package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/appstrap/appstrap/internal/command"
	"github.com/appstrap/appstrap/internal/config"
	"github.com/appstrap/appstrap/internal/flows"
	"github.com/appstrap/appstrap/internal/journal"
	applog "github.com/appstrap/appstrap/internal/log"
	"github.com/appstrap/appstrap/internal/model"
	"github.com/appstrap/appstrap/internal/pipeline"
	"github.com/appstrap/appstrap/internal/report"
	"github.com/appstrap/appstrap/internal/services"
	"github.com/appstrap/appstrap/internal/steps"
)

// NewInstallCmd creates the install command.
func NewInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <instance>",
		Short: "Provision a platform instance",
		Long: `Install provisions a named instance of the platform.

The default flow runs these steps in order: tool check, mode dispatch,
clone, package install, setup, service definition render, service start,
database initialization, migrations, administrator setup, optional
developer steps, service teardown. The working directory is restored and
the ephemeral services are torn down no matter where the run stops.

Examples:
  # Install an instance with defaults
  appstrap install ABv2

  # Install the previous-generation (v1) platform
  appstrap install --v1 sails

  # Install from a pre-fetched archive, without network access
  appstrap install --offline --archive plexus-2.4.tar.gz ABv2

  # Developer install with seed assets and UI build
  appstrap install --dev --env development ABv2

  # Keep the database stack running for inspection afterwards
  appstrap install --keep-services ABv2

Profiles file (.appstrap.yaml) example:
  defaults:
    environment: staging
  profiles:
    abv2:
      branch: release-2.4
      database_port: 15432`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &usageError{err: config.ErrNoInstance}
			}
			return nil
		},
		RunE: runInstallCmd,
	}

	// Source flags
	cmd.Flags().StringP("workdir", "w", "",
		"Parent directory the instance is installed under (default: current directory)")
	cmd.Flags().String("repo", "",
		"Platform repository URL to clone")
	cmd.Flags().String("legacy-repo", "",
		"Previous-generation repository URL for the --v1 flow")
	cmd.Flags().StringP("ref", "r", "",
		"Branch or tag to check out")

	// Mode flags (mutually exclusive; --v1 wins when both are set)
	cmd.Flags().Bool("v1", false,
		"Install the previous-generation (v1) platform instead of the default flow")
	cmd.Flags().Bool("offline", false,
		"Install from a pre-fetched archive without network access (requires --archive)")
	cmd.Flags().String("archive", "",
		"Platform release archive (tar.gz) consumed by --offline")

	// Behavior flags
	cmd.Flags().StringP("env", "e", config.DefaultEnvironment,
		"Deployment target: development, staging, or production")
	cmd.Flags().Bool("dev", false,
		"Enable developer steps: seed asset install and UI build")
	cmd.Flags().Bool("skip-ui", false,
		"Skip the UI build even in dev mode")
	cmd.Flags().Bool("keep-services", false,
		"Leave the ephemeral service set running after the install")

	// Service flags
	cmd.Flags().Int("db-port", config.DefaultDatabasePort,
		"Host port the ephemeral database publishes")
	cmd.Flags().Int("cache-port", config.DefaultCachePort,
		"Host port the cache publishes")
	cmd.Flags().Duration("ready-timeout", config.DefaultReadyTimeout,
		"How long to wait for the database to accept connections")

	// Administrator flags
	cmd.Flags().String("admin-email", config.DefaultAdminEmail,
		"Administrator account to configure")
	cmd.Flags().String("admin-password", "",
		"Administrator password (default: generated and shown once)")

	// Command overrides
	cmd.Flags().String("setup-command", "",
		"Override the setup hook command line")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Profiles file path (default: .appstrap.yaml in current or XDG config directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to the specified file path (creates directories if needed)")

	// Journal flags
	cmd.Flags().Bool("no-journal", false,
		"Do not record this run in the install journal")

	return cmd
}

// runInstallCmd executes the install command.
func runInstallCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildInstallConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration; nothing has run yet, so these exit as
	// usage errors.
	if err := cfg.Validate(); err != nil {
		return &usageError{err: err}
	}

	// Set up structured logging with redaction
	logger := applog.New(os.Stderr, applog.Options{
		Verbose: getVerboseFlag(cmd),
		NoColor: getNoColorFlag(cmd),
	})
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runInstall(ctx, cfg, logger, cmd.OutOrStdout(), getNoColorFlag(cmd))
}

// buildInstallConfig creates a Config from cobra command flags, overlaying
// the instance's profile where flags kept their defaults.
func buildInstallConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Instance = args[0]

	var err error

	if cfg.WorkDir, err = cmd.Flags().GetString("workdir"); err != nil {
		return nil, err
	}
	if repo, err := cmd.Flags().GetString("repo"); err != nil {
		return nil, err
	} else if repo != "" {
		cfg.RepoURL = repo
	}
	if legacyRepo, err := cmd.Flags().GetString("legacy-repo"); err != nil {
		return nil, err
	} else if legacyRepo != "" {
		cfg.LegacyRepoURL = legacyRepo
	}
	if ref, err := cmd.Flags().GetString("ref"); err != nil {
		return nil, err
	} else if ref != "" {
		cfg.Branch = ref
	}

	if cfg.Legacy, err = cmd.Flags().GetBool("v1"); err != nil {
		return nil, err
	}
	if cfg.Offline, err = cmd.Flags().GetBool("offline"); err != nil {
		return nil, err
	}
	if cfg.OfflineArchive, err = cmd.Flags().GetString("archive"); err != nil {
		return nil, err
	}

	if cfg.Environment, err = cmd.Flags().GetString("env"); err != nil {
		return nil, err
	}
	if cfg.DevMode, err = cmd.Flags().GetBool("dev"); err != nil {
		return nil, err
	}
	if cfg.SkipUI, err = cmd.Flags().GetBool("skip-ui"); err != nil {
		return nil, err
	}
	if cfg.KeepServices, err = cmd.Flags().GetBool("keep-services"); err != nil {
		return nil, err
	}

	if cfg.DatabasePort, err = cmd.Flags().GetInt("db-port"); err != nil {
		return nil, err
	}
	if cfg.CachePort, err = cmd.Flags().GetInt("cache-port"); err != nil {
		return nil, err
	}
	if cfg.ReadyTimeout, err = cmd.Flags().GetDuration("ready-timeout"); err != nil {
		return nil, err
	}

	if cfg.AdminEmail, err = cmd.Flags().GetString("admin-email"); err != nil {
		return nil, err
	}
	if cfg.AdminPassword, err = cmd.Flags().GetString("admin-password"); err != nil {
		return nil, err
	}

	if setupCommand, err := cmd.Flags().GetString("setup-command"); err != nil {
		return nil, err
	} else if setupCommand != "" {
		cfg.SetupCommand = setupCommand
	}

	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}

	noJournal, err := cmd.Flags().GetBool("no-journal")
	if err != nil {
		return nil, err
	}
	cfg.SaveToJournal = !noJournal
	cfg.JournalDir = config.XDGDataDir()
	cfg.Verbose = getVerboseFlag(cmd)

	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}

	// Load the .env of the working directory before anything reads the
	// environment, so setup hooks and service templates see what a
	// developer shell would.
	if err := config.LoadDotEnv(cfg.WorkDir); err != nil {
		return nil, err
	}

	// Load instance profiles. An explicit --config path that does not
	// exist is an error; the default search failing is not.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Profiles, err = config.LoadProfiles(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load profiles %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, &usageError{err: fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)}
	}

	if cfg.Profiles != nil {
		profile, _ := cfg.Profiles.Lookup(cfg.Instance)
		profile.ApplyTo(cfg)
	}

	return cfg, nil
}

// runInstall wires the collaborators together and executes the pipeline.
func runInstall(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer, noColor bool) error {
	instance, err := model.NewInstanceName(cfg.Instance)
	if err != nil {
		return &usageError{err: err}
	}

	// Open the journal if recording is enabled
	var jrnl *journal.Journal
	if cfg.SaveToJournal {
		jrnl, err = journal.Open(cfg.JournalDir, journal.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer func() {
			if err := jrnl.Close(); err != nil {
				logger.Warn("failed to close journal", "error", err)
			}
		}()
		logger.Debug("journal opened", "dir", cfg.JournalDir)
	}

	// Shared collaborators. The directory stack is shared between the
	// clone step, the alternate flows, and the pipeline's unwind phase.
	stack, err := pipeline.NewDirStack()
	if err != nil {
		return err
	}
	runner := command.NewExecRunner()
	guard := services.NewGuard(runner,
		services.WithReadyTimeout(cfg.ReadyTimeout),
		services.WithGuardLogger(logger),
	)

	legacy := flows.NewLegacy(runner, stack, cfg.LegacyRepoURL,
		flows.WithLegacyRef(cfg.Branch),
		flows.WithLegacyLogger(logger),
	)
	offline := flows.NewOffline(runner, stack,
		flows.WithOfflineLogger(logger),
	)

	installReport := model.NewInstallReport(instance, cfg.Mode())
	installReport.Environment = cfg.Environment

	var runID int64
	if jrnl != nil {
		runID, err = jrnl.BeginRun(ctx, instance.String(), cfg.Mode(), cfg.Environment)
		if err != nil {
			return fmt.Errorf("failed to begin journal run: %w", err)
		}
	}

	observer := newRunObserver(out, installReport, jrnl, runID, logger, noColor)

	p := steps.InstallPipeline(steps.Deps{
		Runner:          runner,
		Guard:           guard,
		Stack:           stack,
		Logger:          logger,
		Legacy:          legacy.Run,
		Offline:         offline.Run,
		Tools:           cfg.Tools,
		PackagesCommand: cfg.PackagesCommand,
		SetupCommand:    cfg.SetupCommand,
		InitCommand:     cfg.InitCommand,
		MigrateCommand:  cfg.MigrateCommand,
		AdminCommand:    cfg.AdminCommand,
		UIBuildCommand:  cfg.UIBuildCommand,
		AssetInclude:    cfg.AssetInclude,
		AssetExclude:    cfg.AssetExclude,
	}, pipeline.WithObserver(observer))

	opts := steps.SeedOptions(cfg)

	logger.Info("starting installation",
		"instance", instance.String(),
		"mode", cfg.Mode().String(),
		"environment", cfg.Environment,
		"steps", p.StepCount(),
	)

	execErr := p.Execute(ctx, opts)

	finishReport(installReport, opts, execErr, observer.SoftSkipped())

	if jrnl != nil {
		if err := jrnl.FinishRun(ctx, runID, installReport); err != nil {
			logger.Warn("failed to finish journal run", "error", err)
		}
	}

	if err := outputReport(cfg, installReport, out); err != nil {
		logger.Error("failed to write report", "error", err)
	}

	return execErr
}

// finishReport folds the run options the steps derived into the report.
func finishReport(r *model.InstallReport, opts *pipeline.RunOptions, execErr error, softSkipped bool) {
	r.Finish(execErr, softSkipped)

	r.InstanceDir = opts.String(steps.OptInstanceDir)
	r.AdminEmail = opts.String(steps.OptAdminEmail)
	r.AdminPassword = opts.String(steps.OptAdminPassword)
	r.AdminPasswordGenerated = opts.Bool(steps.OptAdminGenerated)
	r.DatabaseAlreadyInitialized = opts.Bool(steps.OptDBInitialized)

	if names, ok := opts.Snapshot()[steps.OptServiceNames].([]string); ok {
		r.Services = names
	}
}

// outputReport writes the report in the configured format. With --output,
// the formatted report goes to the file and a simple summary still goes to
// the terminal; otherwise everything goes to the terminal.
func outputReport(cfg *config.Config, installReport *model.InstallReport, out io.Writer) error {
	dest := out
	var file *os.File
	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}
		var err error
		file, err = os.Create(cfg.ReportFile)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer file.Close()
		dest = file
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(dest, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(dest)
	default:
		writer = report.NewSimpleWriter(dest, report.WithVerbose(cfg.Verbose))
	}

	// Writing a formatted report to a file still leaves the terminal
	// summary, which carries the one-time generated password.
	if file != nil {
		writer = report.NewMultiWriter(writer, report.NewSimpleWriter(out))
	}

	if _, err := writer.Write(installReport); err != nil {
		return err
	}
	return nil
}
