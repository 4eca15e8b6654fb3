package steps

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/appstrap/appstrap/internal/model"
	"github.com/appstrap/appstrap/internal/pipeline"
)

// Default asset locations, relative to the checkout.
const (
	// DefaultAssetSource holds the developer seed bundles shipped with
	// the platform repository.
	DefaultAssetSource = "assets/dev"

	// DefaultAssetDest is where the application serves assets from.
	DefaultAssetDest = "public/assets"
)

// InstallAssets copies developer seed assets into the served asset
// directory. The step is dev-mode gated twice: it no-ops unless dev mode
// is on, and it refuses to run in environments that disallow developer
// assets even when the flag is set, so a mistyped --env cannot seed
// production with fixtures.
//
// File selection uses include/exclude glob patterns with ** support,
// matched against the source tree.
type InstallAssets struct {
	// source is the asset directory inside the checkout.
	source string

	// dest is the target directory, also relative to the checkout.
	dest string

	// include and exclude are doublestar patterns applied to the source
	// tree. An empty include list means everything.
	include []string
	exclude []string

	// logger for structured logging.
	logger *slog.Logger
}

// InstallAssetsOption configures an InstallAssets step.
type InstallAssetsOption func(*InstallAssets)

// WithAssetDirs overrides the source and destination directories.
func WithAssetDirs(source, dest string) InstallAssetsOption {
	return func(s *InstallAssets) {
		if source != "" {
			s.source = source
		}
		if dest != "" {
			s.dest = dest
		}
	}
}

// WithAssetPatterns sets the include/exclude glob patterns.
func WithAssetPatterns(include, exclude []string) InstallAssetsOption {
	return func(s *InstallAssets) {
		s.include = include
		s.exclude = exclude
	}
}

// WithAssetsLogger sets a custom logger for the asset step.
func WithAssetsLogger(logger *slog.Logger) InstallAssetsOption {
	return func(s *InstallAssets) {
		s.logger = logger
	}
}

// NewInstallAssets creates the developer asset step.
func NewInstallAssets(opts ...InstallAssetsOption) *InstallAssets {
	s := &InstallAssets{
		source: DefaultAssetSource,
		dest:   DefaultAssetDest,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *InstallAssets) Name() string {
	return "install_assets"
}

// Do copies the selected assets when dev mode allows it.
func (s *InstallAssets) Do(_ context.Context, opts *pipeline.RunOptions) pipeline.Outcome {
	if !opts.Bool(OptDevMode) {
		s.logger.Debug("dev mode off, skipping asset install")
		return pipeline.Continue()
	}

	env := model.Environment(opts.String(OptEnvironment))
	if !env.AllowsDeveloperAssets() {
		s.logger.Warn("environment disallows developer assets, skipping",
			"environment", env.String(),
		)
		return pipeline.Continue()
	}

	// The clone step left the process inside the checkout.
	if _, err := os.Stat(s.source); os.IsNotExist(err) {
		s.logger.Info("checkout ships no developer assets", "dir", s.source)
		return pipeline.Continue()
	}

	files, err := selectAssets(os.DirFS(s.source), s.include, s.exclude)
	if err != nil {
		return pipeline.Fail(err)
	}

	for _, file := range files {
		if err := copyAsset(filepath.Join(s.source, file), filepath.Join(s.dest, file)); err != nil {
			return pipeline.Fail(err)
		}
	}

	s.logger.Info("developer assets installed", "count", len(files), "dest", s.dest)
	return pipeline.Continue()
}

// selectAssets globs the include patterns, drops directories and excluded
// matches, and returns a sorted deduplicated file list.
func selectAssets(fsys fs.FS, include, exclude []string) ([]string, error) {
	if len(include) == 0 {
		include = []string{"**/*"}
	}

	included, err := globAll(fsys, include)
	if err != nil {
		return nil, fmt.Errorf("include patterns: %w", err)
	}
	excluded, err := globAll(fsys, exclude)
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}

	var files []string
	for _, f := range included {
		info, err := fs.Stat(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", f, err)
		}
		if info.IsDir() {
			continue
		}
		if slices.Contains(excluded, f) {
			continue
		}
		files = append(files, f)
	}
	return files, nil
}

// globAll matches every pattern and returns the union, sorted and
// deduplicated.
func globAll(fsys fs.FS, patterns []string) ([]string, error) {
	var result []string
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		result = append(result, matches...)
	}
	slices.Sort(result)
	return slices.Compact(result), nil
}

// copyAsset copies one file, creating the destination directory tree.
func copyAsset(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return fmt.Errorf("create asset directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open asset %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create asset %s: %w", dst, err)
	}

	_, copyErr := io.Copy(out, in)
	if closeErr := out.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		return fmt.Errorf("copy asset %s: %w", dst, copyErr)
	}
	return nil
}
