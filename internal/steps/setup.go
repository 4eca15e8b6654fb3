package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/appstrap/appstrap/internal/command"
	"github.com/appstrap/appstrap/internal/config"
	"github.com/appstrap/appstrap/internal/model"
	"github.com/appstrap/appstrap/internal/pipeline"
)

// Setup runs the application's own setup script inside the checkout and
// folds the options it derives back into the shared run options.
//
// Contract with the script: it may print anything it likes, and when it has
// derived options to hand back it prints them as a single-line JSON object.
// The last such line wins. Scripts with nothing to report print no JSON at
// all, which is not an error.
//
// Design decision: derived options merge with merge-if-absent semantics so
// flags and profile values the user chose are never silently replaced by
// script defaults. The one exception is the environment: when dev mode is
// on, the environment is recomputed to development and written with an
// overriding Set, because a dev-mode install against production settings is
// never what the user meant.
type Setup struct {
	// runner executes the setup script.
	runner command.Runner

	// commandLine is the shell-style setup invocation.
	commandLine string

	// logger for structured logging.
	logger *slog.Logger
}

// SetupOption configures a Setup step.
type SetupOption func(*Setup)

// WithSetupLogger sets a custom logger for the setup step.
func WithSetupLogger(logger *slog.Logger) SetupOption {
	return func(s *Setup) {
		s.logger = logger
	}
}

// NewSetup creates the setup step. An empty commandLine selects the
// built-in default; profiles override it per instance.
func NewSetup(runner command.Runner, commandLine string, opts ...SetupOption) *Setup {
	s := &Setup{
		runner:      runner,
		commandLine: commandLine,
		logger:      slog.Default(),
	}
	if s.commandLine == "" {
		s.commandLine = config.DefaultSetupCommand
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *Setup) Name() string {
	return "setup"
}

// Do runs the setup script and merges the options it emits.
func (s *Setup) Do(ctx context.Context, opts *pipeline.RunOptions) pipeline.Outcome {
	spec, err := command.SplitSpec(s.commandLine, "")
	if err != nil {
		return pipeline.Fail(err)
	}
	spec.Env = []string{
		"PLEXUS_INSTANCE=" + opts.String(OptInstance),
		"PLEXUS_ENVIRONMENT=" + opts.String(OptEnvironment),
	}

	s.logger.Info("running setup", "command", spec.CommandLine())
	out, err := s.runner.Output(ctx, spec)
	if err != nil {
		return pipeline.Fail(err)
	}

	derived, err := parseDerivedOptions(out)
	if err != nil {
		return pipeline.Fail(err)
	}
	if len(derived) > 0 {
		opts.Merge(derived)
		s.logger.Debug("merged derived options", "count", len(derived))
	}

	// Intentional override: dev mode recomputes the environment. Every
	// other key keeps merge-if-absent semantics.
	if opts.Bool(OptDevMode) {
		env := opts.String(OptEnvironment)
		if env != model.EnvDevelopment.String() {
			s.logger.Info("dev mode recomputed environment",
				"from", env,
				"to", model.EnvDevelopment.String(),
			)
			opts.Set(OptEnvironment, model.EnvDevelopment.String())
		}
	}

	return pipeline.Continue()
}

// parseDerivedOptions extracts the last JSON object line from the script
// output. A line that looks like JSON but does not parse is a broken
// contract and fails the step; output with no JSON lines yields nil.
func parseDerivedOptions(out string) (map[string]any, error) {
	lines := strings.Split(out, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var derived map[string]any
		if err := json.Unmarshal([]byte(line), &derived); err != nil {
			return nil, fmt.Errorf("setup emitted malformed options: %w", err)
		}
		return normalizeNumbers(derived), nil
	}
	return nil, nil
}

// normalizeNumbers converts integral float64 values (the default JSON
// number decoding) to int so later steps can read ports with Int.
func normalizeNumbers(m map[string]any) map[string]any {
	for k, v := range m {
		f, ok := v.(float64)
		if !ok {
			continue
		}
		if n := int(f); float64(n) == f {
			m[k] = n
		}
	}
	return m
}
