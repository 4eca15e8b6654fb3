package steps

import (
	"context"
	"testing"

	"github.com/appstrap/appstrap/internal/pipeline"
)

func TestNewMigrate(t *testing.T) {
	t.Parallel()

	t.Run("empty command selects the default", func(t *testing.T) {
		t.Parallel()

		step := NewMigrate(&fakeRunner{}, "")
		if step.commandLine != DefaultMigrateCommand {
			t.Errorf("commandLine = %q, want %q", step.commandLine, DefaultMigrateCommand)
		}
		if got := step.Name(); got != "migrate" {
			t.Errorf("Name() = %q, want %q", got, "migrate")
		}
	})
}

func TestMigrateDo(t *testing.T) {
	t.Parallel()

	t.Run("applies migrations", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{}
		step := NewMigrate(runner, "")

		if outcome := step.Do(context.Background(), pipeline.NewRunOptions()); outcome.Failed() {
			t.Fatalf("expected success, got %v", outcome.Err())
		}
		lines := runner.runLines()
		if len(lines) != 1 || lines[0] != DefaultMigrateCommand {
			t.Errorf("expected default migration invocation, got %v", lines)
		}
	})

	t.Run("skip flag set means no invocation", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{}
		step := NewMigrate(runner, "")

		opts := pipeline.NewRunOptions()
		opts.Set(OptDBInitialized, true)

		if outcome := step.Do(context.Background(), opts); outcome.Failed() {
			t.Fatalf("expected success, got %v", outcome.Err())
		}
		if len(runner.run) != 0 {
			t.Errorf("expected no invocation, got %v", runner.runLines())
		}
	})

	t.Run("migration failure surfaces", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{failOn: "db:migrate"}
		step := NewMigrate(runner, "")

		if outcome := step.Do(context.Background(), pipeline.NewRunOptions()); !outcome.Failed() {
			t.Fatal("expected failure from migration runner")
		}
	})
}
