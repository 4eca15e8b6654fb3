package steps

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/appstrap/appstrap/internal/command"
	"github.com/appstrap/appstrap/internal/config"
	"github.com/appstrap/appstrap/internal/pipeline"
)

// DefaultAdminCommand configures the instance administrator account.
const DefaultAdminCommand = "npm run admin:create"

// generatedPasswordBytes is the entropy of a generated admin password.
// 18 bytes encode to a 24-character URL-safe string.
const generatedPasswordBytes = 18

// CreateAdmin configures the administrator account of the freshly
// initialized instance. Like the migration step it is a pure no-op when
// the skip flag is raised: an initialized environment already has its
// administrator.
//
// When the caller supplied no password the step generates one. The
// generated value travels to the final report for a one-time display;
// credentials reach the configurator through the environment, never argv,
// so they cannot show up in a process listing.
type CreateAdmin struct {
	// runner executes the configurator.
	runner command.Runner

	// commandLine is the shell-style configurator invocation.
	commandLine string

	// logger for structured logging. Password values are never logged;
	// the secure handler additionally redacts any that slip through
	// attributes.
	logger *slog.Logger
}

// CreateAdminOption configures a CreateAdmin step.
type CreateAdminOption func(*CreateAdmin)

// WithAdminLogger sets a custom logger for the administrator step.
func WithAdminLogger(logger *slog.Logger) CreateAdminOption {
	return func(s *CreateAdmin) {
		s.logger = logger
	}
}

// NewCreateAdmin creates the administrator configuration step. An empty
// commandLine selects DefaultAdminCommand.
func NewCreateAdmin(runner command.Runner, commandLine string, opts ...CreateAdminOption) *CreateAdmin {
	s := &CreateAdmin{
		runner:      runner,
		commandLine: commandLine,
		logger:      slog.Default(),
	}
	if s.commandLine == "" {
		s.commandLine = DefaultAdminCommand
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CreateAdmin) Name() string {
	return "create_admin"
}

// Do configures the administrator unless the skip flag is raised.
func (s *CreateAdmin) Do(ctx context.Context, opts *pipeline.RunOptions) pipeline.Outcome {
	if opts.Bool(OptDBInitialized) {
		s.logger.Info("database already initialized, skipping administrator setup")
		return pipeline.Continue()
	}

	email := opts.String(OptAdminEmail)
	if email == "" {
		email = config.DefaultAdminEmail
		opts.SetDefault(OptAdminEmail, email)
	}

	password := opts.String(OptAdminPassword)
	if password == "" {
		generated, err := generatePassword()
		if err != nil {
			return pipeline.Fail(err)
		}
		password = generated
		opts.Set(OptAdminPassword, password)
		opts.Set(OptAdminGenerated, true)
	}

	spec, err := command.SplitSpec(s.commandLine, "")
	if err != nil {
		return pipeline.Fail(err)
	}
	spec.Env = []string{
		"PLEXUS_ADMIN_EMAIL=" + email,
		"PLEXUS_ADMIN_PASSWORD=" + password,
	}

	s.logger.Info("configuring administrator", "email", email)
	if err := s.runner.Run(ctx, spec); err != nil {
		return pipeline.Fail(err)
	}
	return pipeline.Continue()
}

// generatePassword returns a random URL-safe password.
func generatePassword() (string, error) {
	buf := make([]byte, generatedPasswordBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate admin password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
