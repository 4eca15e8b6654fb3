package steps

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/appstrap/appstrap/internal/command"
	"github.com/appstrap/appstrap/internal/services"
)

// fakeRunner is a scripted command.Runner. Run and Output record every
// spec; failOn makes any invocation whose command line contains it fail,
// and outputs maps command line fragments to canned stdout.
//
// The mutex matters: the tool check probes concurrently.
type fakeRunner struct {
	mu      sync.Mutex
	run     []command.Spec
	output  []command.Spec
	lookups []string
	failOn  string
	outputs map[string]string
	missing map[string]bool
}

func (f *fakeRunner) Run(_ context.Context, spec command.Spec) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.run = append(f.run, spec)
	if f.failOn != "" && strings.Contains(spec.CommandLine(), f.failOn) {
		return errors.New("command failed: " + spec.CommandLine())
	}
	return nil
}

func (f *fakeRunner) Output(_ context.Context, spec command.Spec) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.output = append(f.output, spec)
	if f.failOn != "" && strings.Contains(spec.CommandLine(), f.failOn) {
		return "", errors.New("command failed: " + spec.CommandLine())
	}
	for fragment, out := range f.outputs {
		if strings.Contains(spec.CommandLine(), fragment) {
			return out, nil
		}
	}
	return "", nil
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, name)
	if f.missing[name] {
		return "", errors.New("not found: " + name)
	}
	return "/usr/bin/" + name, nil
}

// runLines returns the command lines of every Run invocation, in order.
func (f *fakeRunner) runLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, len(f.run))
	for i, spec := range f.run {
		lines[i] = spec.CommandLine()
	}
	return lines
}

// outputLines returns the command lines of every Output invocation.
func (f *fakeRunner) outputLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, len(f.output))
	for i, spec := range f.output {
		lines[i] = spec.CommandLine()
	}
	return lines
}

// fakeGuard is a scripted ServiceGuard.
type fakeGuard struct {
	acquires   int
	releases   int
	lastCfg    services.AcquireConfig
	handle     *services.Handle
	acquireErr error
	releaseErr error
}

func (g *fakeGuard) Acquire(_ context.Context, cfg services.AcquireConfig) (*services.Handle, error) {
	g.acquires++
	g.lastCfg = cfg
	if g.acquireErr != nil {
		return nil, g.acquireErr
	}
	if g.handle == nil {
		g.handle = &services.Handle{Project: cfg.Project, ComposeFile: cfg.ComposeFile}
	}
	return g.handle, nil
}

func (g *fakeGuard) Release(_ context.Context) error {
	g.releases++
	return g.releaseErr
}

// fakeWd implements the directory-change collaborator without touching the
// filesystem.
type fakeWd struct {
	cwd    string
	chdirs []string
	failOn string
}

func (w *fakeWd) Getwd() (string, error) {
	return w.cwd, nil
}

func (w *fakeWd) Chdir(dir string) error {
	if w.failOn != "" && strings.Contains(dir, w.failOn) {
		return errors.New("chdir failed: " + dir)
	}
	w.cwd = dir
	w.chdirs = append(w.chdirs, dir)
	return nil
}

// discardLogger silences step logging in tests.
func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
