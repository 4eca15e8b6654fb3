package flows

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/appstrap/appstrap/internal/command"
	"github.com/appstrap/appstrap/internal/pipeline"
)

// fakeRunner is a scripted command.Runner. failOn makes any invocation
// whose command line contains it fail; missing marks tools LookPath cannot
// resolve.
type fakeRunner struct {
	run     []command.Spec
	output  []command.Spec
	lookups []string
	failOn  string
	outputs map[string]string
	missing map[string]bool
}

func (f *fakeRunner) Run(_ context.Context, spec command.Spec) error {
	f.run = append(f.run, spec)
	if f.failOn != "" && strings.Contains(spec.CommandLine(), f.failOn) {
		return errors.New("command failed: " + spec.CommandLine())
	}
	return nil
}

func (f *fakeRunner) Output(_ context.Context, spec command.Spec) (string, error) {
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
	f.lookups = append(f.lookups, name)
	if f.missing[name] {
		return "", errors.New("not found: " + name)
	}
	return "/usr/bin/" + name, nil
}

func (f *fakeRunner) runLines() []string {
	lines := make([]string, len(f.run))
	for i, spec := range f.run {
		lines[i] = spec.CommandLine()
	}
	return lines
}

// fakeWd implements the directory-change collaborator without touching the
// filesystem.
type fakeWd struct {
	cwd    string
	chdirs []string
}

func (w *fakeWd) Getwd() (string, error) {
	return w.cwd, nil
}

func (w *fakeWd) Chdir(dir string) error {
	w.cwd = dir
	w.chdirs = append(w.chdirs, dir)
	return nil
}

func newTestStack(t *testing.T, wd *fakeWd) *pipeline.DirStack {
	t.Helper()

	stack, err := pipeline.NewDirStack(pipeline.WithWd(wd))
	if err != nil {
		t.Fatalf("failed to create stack: %v", err)
	}
	return stack
}

// discardLogger silences flow logging in tests.
func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
