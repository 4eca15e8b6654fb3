package steps

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/appstrap/appstrap/internal/pipeline"
	"github.com/appstrap/appstrap/internal/services"
)

// ServicesFileName is the rendered service definition inside the checkout.
const ServicesFileName = "services.compose.yaml"

// databaseService is the service name the initializer and migrations need.
// It must match the embedded definition template.
const databaseService = "database"

// RenderServices renders the service definition from the run options and
// validates it with the compose loader before anything is started. A bad
// template fails here, not in the container engine.
type RenderServices struct {
	// logger for structured logging.
	logger *slog.Logger
}

// RenderServicesOption configures a RenderServices step.
type RenderServicesOption func(*RenderServices)

// WithRenderLogger sets a custom logger for the render step.
func WithRenderLogger(logger *slog.Logger) RenderServicesOption {
	return func(s *RenderServices) {
		s.logger = logger
	}
}

// NewRenderServices creates the service definition render step.
func NewRenderServices(opts ...RenderServicesOption) *RenderServices {
	s := &RenderServices{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *RenderServices) Name() string {
	return "render_services"
}

// Do renders and validates the service definition.
func (s *RenderServices) Do(_ context.Context, opts *pipeline.RunOptions) pipeline.Outcome {
	dir := opts.String(OptInstanceDir)
	if dir == "" {
		return pipeline.Fail(ErrNoInstanceDir)
	}

	// Compose project names are lowercase; the template lowers its copy
	// and the loader must agree with it.
	project := strings.ToLower(opts.String(OptProject))
	if project == "" {
		project = strings.ToLower(opts.String(OptInstance))
	}

	input := services.RenderInput{
		Project:      project,
		Environment:  opts.String(OptEnvironment),
		DatabaseName: opts.String(OptDatabaseName),
		DatabasePort: opts.Int(OptDatabasePort),
		CachePort:    opts.Int(OptCachePort),
	}

	path := filepath.Join(dir, ServicesFileName)
	if err := services.RenderToFile(input, path); err != nil {
		return pipeline.Fail(err)
	}

	loaded, err := services.LoadProject(path, project)
	if err != nil {
		return pipeline.Fail(err)
	}

	names := services.ServiceNames(loaded)
	if !slices.Contains(names, databaseService) {
		return pipeline.Fail(ErrNoDatabaseService)
	}
	s.logger.Info("service definition rendered",
		"file", path,
		"services", strings.Join(names, ", "),
	)

	opts.SetDefault(OptServicesFile, path)
	opts.SetDefault(OptProject, project)
	opts.Set(OptServiceNames, names)
	return pipeline.Continue()
}
