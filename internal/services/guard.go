package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/appstrap/appstrap/internal/command"
)

// Guard errors.
var (
	// ErrNoComposeFile is returned when Acquire is called without a
	// service definition path.
	ErrNoComposeFile = errors.New("services: no service definition file")
	// ErrNoProject is returned when Acquire is called without a compose
	// project name.
	ErrNoProject = errors.New("services: no project name")
)

// Handle represents a started ephemeral service set. It is owned by the
// Guard that created it and released through Guard.Release.
type Handle struct {
	// Project is the compose project name the set runs under.
	Project string

	// ComposeFile is the rendered service definition the set was started
	// from.
	ComposeFile string

	// AlreadyProvisioned is true when Acquire found the set already
	// running from an earlier Acquire on the same Guard. Dependent steps
	// use it to decide whether initialization work can be skipped.
	AlreadyProvisioned bool

	// startedAt is when the set was first brought up.
	startedAt time.Time
}

// Uptime returns how long the service set has been up.
func (h *Handle) Uptime() time.Duration {
	return time.Since(h.startedAt)
}

// AcquireConfig describes the service set to bring up.
type AcquireConfig struct {
	// ComposeFile is the path of the rendered service definition.
	ComposeFile string

	// Project is the compose project name, normally the instance slug.
	Project string

	// ProbeAddr, when set, is a host:port the Guard waits on before
	// declaring the set ready. Typically the published database port.
	ProbeAddr string
}

// Guard manages the ephemeral service set needed during database
// initialization and migration. It brings the set up once, hands out a
// Handle, and guarantees teardown through Release.
//
// Design decision: the Guard keeps the handle internally rather than
// making steps thread it through RunOptions because:
//  1. the acquiring step and the releasing step are far apart in the
//     pipeline and share the Guard by construction anyway
//  2. Release must be safe to run unconditionally as a terminal step,
//     including when acquisition never happened
//  3. idempotent Acquire needs to know whether it already provisioned
type Guard struct {
	runner       command.Runner
	prober       Prober
	logger       *slog.Logger
	readyTimeout time.Duration

	handle *Handle
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithProber sets the readiness prober. Defaults to a TCP prober.
func WithProber(p Prober) GuardOption {
	return func(g *Guard) {
		g.prober = p
	}
}

// WithReadyTimeout sets how long Acquire waits for the probe address to
// accept connections.
func WithReadyTimeout(d time.Duration) GuardOption {
	return func(g *Guard) {
		g.readyTimeout = d
	}
}

// WithGuardLogger sets a custom logger. Defaults to slog.Default.
func WithGuardLogger(logger *slog.Logger) GuardOption {
	return func(g *Guard) {
		g.logger = logger
	}
}

// NewGuard creates a Guard that starts and stops services through runner.
func NewGuard(runner command.Runner, opts ...GuardOption) *Guard {
	g := &Guard{
		runner:       runner,
		readyTimeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.prober == nil {
		g.prober = NewTCPProber()
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Acquire brings the service set up and returns its handle.
//
// Acquire is idempotent: when the Guard already holds a live handle, the
// same handle is returned with AlreadyProvisioned set and nothing is
// started twice. A failed readiness probe tears the set back down before
// returning, so a failed Acquire never leaks running services.
func (g *Guard) Acquire(ctx context.Context, cfg AcquireConfig) (*Handle, error) {
	if g.handle != nil {
		g.logger.Debug("service set already provisioned", "project", g.handle.Project)
		g.handle.AlreadyProvisioned = true
		return g.handle, nil
	}

	if cfg.ComposeFile == "" {
		return nil, ErrNoComposeFile
	}
	if cfg.Project == "" {
		return nil, ErrNoProject
	}

	g.logger.Info("starting service set", "project", cfg.Project, "definition", cfg.ComposeFile)
	up := command.Spec{
		Name: "docker",
		Args: []string{"compose", "-f", cfg.ComposeFile, "-p", cfg.Project, "up", "-d"},
	}
	if err := g.runner.Run(ctx, up); err != nil {
		return nil, fmt.Errorf("start service set: %w", err)
	}

	if cfg.ProbeAddr != "" {
		if err := g.prober.WaitReady(ctx, cfg.ProbeAddr, g.readyTimeout); err != nil {
			g.teardown(ctx, cfg.ComposeFile, cfg.Project)
			return nil, fmt.Errorf("service set not ready: %w", err)
		}
	}

	g.handle = &Handle{
		Project:     cfg.Project,
		ComposeFile: cfg.ComposeFile,
		startedAt:   time.Now(),
	}
	return g.handle, nil
}

// Release tears the service set down.
//
// It is safe to call Release on an unstarted Guard or to call it twice;
// only the first call after a successful Acquire does work. The returned
// error is informational: callers log it and move on, because by the time
// teardown runs the installation outcome is already decided.
func (g *Guard) Release(ctx context.Context) error {
	if g.handle == nil {
		return nil
	}

	handle := g.handle
	g.handle = nil

	g.logger.Info("stopping service set",
		"project", handle.Project,
		"uptime", handle.Uptime().Round(time.Second),
	)
	return g.teardown(ctx, handle.ComposeFile, handle.Project)
}

// IsActive reports whether the Guard currently holds a live handle.
func (g *Guard) IsActive() bool {
	return g.handle != nil
}

// teardown runs compose down. Containers are removed, named volumes are
// kept: the database volume carries the installed instance's data.
func (g *Guard) teardown(ctx context.Context, composeFile, project string) error {
	return Down(ctx, g.runner, composeFile, project)
}

// Down stops a service set outside the guard's lifecycle. The down command
// uses it to clean up a set left running by --keep-services or a crashed
// install.
func Down(ctx context.Context, runner command.Runner, composeFile, project string) error {
	down := command.Spec{
		Name: "docker",
		Args: []string{"compose", "-f", composeFile, "-p", project, "down"},
	}
	if err := runner.Run(ctx, down); err != nil {
		return fmt.Errorf("stop service set: %w", err)
	}
	return nil
}
