package flows

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/appstrap/appstrap/internal/config"
	"github.com/appstrap/appstrap/internal/pipeline"
	"github.com/appstrap/appstrap/internal/steps"
)

// writeArchive creates a stand-in release archive. Extraction is scripted
// through the fake runner, so the content never matters.
func writeArchive(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "plexus-2.4.0.tar.gz")
	if err := os.WriteFile(path, []byte("stand-in"), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOfflineRun(t *testing.T) {
	t.Parallel()

	t.Run("verifies, extracts, installs, and sets up in order", func(t *testing.T) {
		t.Parallel()

		work := t.TempDir()
		dest := filepath.Join(work, "ABv2")
		archive := writeArchive(t)
		runner := &fakeRunner{}
		wd := &fakeWd{cwd: "/home/op"}
		f := NewOffline(runner, newTestStack(t, wd), WithOfflineLogger(discardLogger()))

		outer := pipeline.NewRunOptions()
		outer.Set(steps.OptInstance, "ABv2")
		outer.Set(steps.OptWorkDir, work)
		outer.Set(steps.OptEnvironment, "production")
		outer.Set(steps.OptArchive, archive)

		if err := f.Run(context.Background(), outer); err != nil {
			t.Fatalf("offline run failed: %v", err)
		}

		wantRun := []string{
			"tar --extract --gzip --file " + archive + " --directory " + dest + " --strip-components 1",
			DefaultOfflineInstallCommand,
		}
		if got := runner.runLines(); !slices.Equal(got, wantRun) {
			t.Errorf("commands = %v, want %v", got, wantRun)
		}
		if len(runner.output) != 1 || runner.output[0].CommandLine() != config.DefaultSetupCommand {
			t.Errorf("expected setup invocation, got %v", runner.output)
		}
		if !slices.Contains(runner.lookups, "tar") {
			t.Errorf("expected tar probe, got %v", runner.lookups)
		}

		// The extract step created the instance directory for real.
		if info, err := os.Stat(dest); err != nil || !info.IsDir() {
			t.Errorf("expected instance directory on disk: %v", err)
		}
		if wd.cwd != "/home/op" {
			t.Errorf("cwd = %q, want restored origin", wd.cwd)
		}
		if outer.Has(steps.OptInstanceDir) {
			t.Error("inner-derived options must not leak into the caller's")
		}
	})

	t.Run("missing archive path fails before anything runs", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{}
		f := NewOffline(runner, newTestStack(t, &fakeWd{cwd: "/home/op"}), WithOfflineLogger(discardLogger()))

		outer := pipeline.NewRunOptions()
		outer.Set(steps.OptInstance, "ABv2")
		outer.Set(steps.OptWorkDir, t.TempDir())

		err := f.Run(context.Background(), outer)
		if !errors.Is(err, ErrNoArchive) {
			t.Fatalf("err = %v, want ErrNoArchive", err)
		}
		if len(runner.run) != 0 {
			t.Errorf("expected no commands, got %v", runner.runLines())
		}
	})

	t.Run("nonexistent archive fails verification", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{}
		f := NewOffline(runner, newTestStack(t, &fakeWd{cwd: "/home/op"}), WithOfflineLogger(discardLogger()))

		outer := pipeline.NewRunOptions()
		outer.Set(steps.OptInstance, "ABv2")
		outer.Set(steps.OptWorkDir, t.TempDir())
		outer.Set(steps.OptArchive, filepath.Join(t.TempDir(), "absent.tar.gz"))

		if err := f.Run(context.Background(), outer); err == nil {
			t.Fatal("expected verification failure")
		}
		if len(runner.run) != 0 {
			t.Errorf("expected no commands, got %v", runner.runLines())
		}
	})

	t.Run("directory instead of archive fails verification", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{}
		f := NewOffline(runner, newTestStack(t, &fakeWd{cwd: "/home/op"}), WithOfflineLogger(discardLogger()))

		outer := pipeline.NewRunOptions()
		outer.Set(steps.OptInstance, "ABv2")
		outer.Set(steps.OptWorkDir, t.TempDir())
		outer.Set(steps.OptArchive, t.TempDir())

		if err := f.Run(context.Background(), outer); err == nil {
			t.Fatal("expected verification failure for a directory")
		}
	})

	t.Run("missing tar fails verification", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{missing: map[string]bool{"tar": true}}
		f := NewOffline(runner, newTestStack(t, &fakeWd{cwd: "/home/op"}), WithOfflineLogger(discardLogger()))

		outer := pipeline.NewRunOptions()
		outer.Set(steps.OptInstance, "ABv2")
		outer.Set(steps.OptWorkDir, t.TempDir())
		outer.Set(steps.OptArchive, writeArchive(t))

		err := f.Run(context.Background(), outer)
		if !errors.Is(err, ErrNoExtractor) {
			t.Fatalf("err = %v, want ErrNoExtractor", err)
		}
	})

	t.Run("extraction failure surfaces and still unwinds", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{failOn: "tar "}
		wd := &fakeWd{cwd: "/home/op"}
		f := NewOffline(runner, newTestStack(t, wd), WithOfflineLogger(discardLogger()))

		outer := pipeline.NewRunOptions()
		outer.Set(steps.OptInstance, "ABv2")
		outer.Set(steps.OptWorkDir, t.TempDir())
		outer.Set(steps.OptArchive, writeArchive(t))

		if err := f.Run(context.Background(), outer); err == nil {
			t.Fatal("expected extraction failure to surface")
		}
		if wd.cwd != "/home/op" {
			t.Errorf("cwd = %q, want restored origin", wd.cwd)
		}
	})
}
