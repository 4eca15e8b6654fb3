package steps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/appstrap/appstrap/internal/pipeline"
)

// newTestStack builds a directory stack over a fake working directory.
func newTestStack(t *testing.T, wd *fakeWd) *pipeline.DirStack {
	t.Helper()

	stack, err := pipeline.NewDirStack(pipeline.WithWd(wd))
	if err != nil {
		t.Fatalf("failed to create stack: %v", err)
	}
	return stack
}

// TestCloneDo tests repository cloning and stack discipline.
func TestCloneDo(t *testing.T) {
	t.Parallel()

	t.Run("clones and enters the checkout", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{}
		wd := &fakeWd{cwd: "/origin"}
		step := NewClone(runner, newTestStack(t, wd), WithCloneLogger(discardLogger()))

		opts := pipeline.NewRunOptions()
		opts.Set(OptInstance, "ABv2")
		opts.Set(OptWorkDir, "/srv/plexus")
		opts.Set(OptRepoURL, "https://git.plexus.dev/plexus/platform.git")

		outcome := step.Do(context.Background(), opts)
		if outcome.Failed() {
			t.Fatalf("expected success, got %v", outcome.Err())
		}

		dest := filepath.Join("/srv/plexus", "ABv2")
		lines := runner.runLines()
		if len(lines) != 1 || lines[0] != "git clone https://git.plexus.dev/plexus/platform.git "+dest {
			t.Errorf("unexpected git invocation: %v", lines)
		}
		if wd.cwd != dest {
			t.Errorf("expected to be inside checkout %s, got %s", dest, wd.cwd)
		}
		if got := opts.String(OptInstanceDir); got != dest {
			t.Errorf("expected instance dir %s recorded, got %s", dest, got)
		}
	})

	t.Run("ref adds branch flag", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{}
		step := NewClone(runner, newTestStack(t, &fakeWd{cwd: "/origin"}), WithCloneLogger(discardLogger()))

		opts := pipeline.NewRunOptions()
		opts.Set(OptInstance, "ABv2")
		opts.Set(OptRepoURL, "https://git.plexus.dev/plexus/platform.git")
		opts.Set(OptRef, "v2.3.0")

		if outcome := step.Do(context.Background(), opts); outcome.Failed() {
			t.Fatalf("expected success, got %v", outcome.Err())
		}

		lines := runner.runLines()
		want := "git clone --branch v2.3.0 https://git.plexus.dev/plexus/platform.git ABv2"
		if len(lines) != 1 || lines[0] != want {
			t.Errorf("expected %q, got %v", want, lines)
		}
	})

	t.Run("missing repository URL fails before running git", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{}
		step := NewClone(runner, newTestStack(t, &fakeWd{cwd: "/origin"}), WithCloneLogger(discardLogger()))

		outcome := step.Do(context.Background(), pipeline.NewRunOptions())
		if !errors.Is(outcome.Err(), ErrNoRepoURL) {
			t.Errorf("expected ErrNoRepoURL, got %v", outcome.Err())
		}
		if len(runner.run) != 0 {
			t.Errorf("expected no git invocation, got %v", runner.runLines())
		}
	})

	t.Run("reuses existing checkout without cloning", func(t *testing.T) {
		t.Parallel()

		dest := t.TempDir()
		if err := os.Mkdir(filepath.Join(dest, ".git"), 0750); err != nil {
			t.Fatalf("failed to fake checkout: %v", err)
		}

		runner := &fakeRunner{}
		wd := &fakeWd{cwd: "/origin"}
		stack := newTestStack(t, wd)
		step := NewClone(runner, stack, WithCloneLogger(discardLogger()))

		opts := pipeline.NewRunOptions()
		opts.Set(OptInstance, "ABv2")
		opts.Set(OptRepoURL, "https://git.plexus.dev/plexus/platform.git")
		opts.Set(OptInstanceDir, dest)

		outcome := step.Do(context.Background(), opts)
		if outcome.Failed() {
			t.Fatalf("expected success, got %v", outcome.Err())
		}
		if len(runner.run) != 0 {
			t.Errorf("expected no git invocation for existing checkout, got %v", runner.runLines())
		}
		if stack.Depth() != 2 {
			t.Errorf("expected checkout pushed onto stack, depth %d", stack.Depth())
		}
	})

	t.Run("clone failure surfaces without pushing", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{failOn: "git clone"}
		stack := newTestStack(t, &fakeWd{cwd: "/origin"})
		step := NewClone(runner, stack, WithCloneLogger(discardLogger()))

		opts := pipeline.NewRunOptions()
		opts.Set(OptInstance, "ABv2")
		opts.Set(OptRepoURL, "https://git.plexus.dev/plexus/platform.git")

		if outcome := step.Do(context.Background(), opts); !outcome.Failed() {
			t.Fatal("expected failure from git")
		}
		if stack.Depth() != 1 {
			t.Errorf("expected nothing pushed after failed clone, depth %d", stack.Depth())
		}
	})

	t.Run("push failure fails the step", func(t *testing.T) {
		t.Parallel()

		wd := &fakeWd{cwd: "/origin", failOn: "ABv2"}
		step := NewClone(&fakeRunner{}, newTestStack(t, wd), WithCloneLogger(discardLogger()))

		opts := pipeline.NewRunOptions()
		opts.Set(OptInstance, "ABv2")
		opts.Set(OptRepoURL, "https://git.plexus.dev/plexus/platform.git")

		if outcome := step.Do(context.Background(), opts); !outcome.Failed() {
			t.Fatal("expected failure from push")
		}
	})
}
