package steps

import (
	"context"
	"log/slog"
	"net"
	"strconv"

	"github.com/appstrap/appstrap/internal/pipeline"
	"github.com/appstrap/appstrap/internal/services"
)

// ServiceGuard is the subset of the lifecycle guard the steps drive. The
// concrete guard lives in the services package; the interface exists so
// step tests can observe acquire/release calls without a container engine.
type ServiceGuard interface {
	// Acquire brings the service set up, idempotently.
	Acquire(ctx context.Context, cfg services.AcquireConfig) (*services.Handle, error)

	// Release tears the service set down, exactly once.
	Release(ctx context.Context) error
}

// StartServices brings the ephemeral service set up through the lifecycle
// guard and waits for the database to accept connections.
//
// When the guard reports the set was already provisioned, the environment
// was initialized by an earlier acquisition in this process, so the step
// raises the skip flag: migration and administrator configuration are
// redundant and must no-op rather than re-run.
type StartServices struct {
	// guard owns the service set lifecycle.
	guard ServiceGuard

	// logger for structured logging.
	logger *slog.Logger
}

// StartServicesOption configures a StartServices step.
type StartServicesOption func(*StartServices)

// WithStartLogger sets a custom logger for the start step.
func WithStartLogger(logger *slog.Logger) StartServicesOption {
	return func(s *StartServices) {
		s.logger = logger
	}
}

// NewStartServices creates the service start step.
func NewStartServices(guard ServiceGuard, opts ...StartServicesOption) *StartServices {
	s := &StartServices{
		guard:  guard,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *StartServices) Name() string {
	return "start_services"
}

// Do acquires the service set. Acquisition failure is a hard failure: no
// later consumer can proceed without the database.
func (s *StartServices) Do(ctx context.Context, opts *pipeline.RunOptions) pipeline.Outcome {
	cfg := services.AcquireConfig{
		ComposeFile: opts.String(OptServicesFile),
		Project:     opts.String(OptProject),
	}
	if port := opts.Int(OptDatabasePort); port > 0 {
		cfg.ProbeAddr = net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	}

	handle, err := s.guard.Acquire(ctx, cfg)
	if err != nil {
		return pipeline.Fail(err)
	}

	if handle.AlreadyProvisioned {
		s.logger.Info("service set already provisioned, raising skip flag",
			"project", handle.Project,
		)
		opts.Set(OptDBInitialized, true)
	}
	return pipeline.Continue()
}
