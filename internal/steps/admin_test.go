package steps

import (
	"context"
	"slices"
	"testing"

	"github.com/appstrap/appstrap/internal/config"
	"github.com/appstrap/appstrap/internal/pipeline"
)

func TestCreateAdminDo(t *testing.T) {
	t.Parallel()

	t.Run("supplied credentials travel via the environment", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{}
		step := NewCreateAdmin(runner, "", WithAdminLogger(discardLogger()))

		opts := pipeline.NewRunOptions()
		opts.Set(OptAdminEmail, "ops@example.com")
		opts.Set(OptAdminPassword, "hunter2hunter2")

		if outcome := step.Do(context.Background(), opts); outcome.Failed() {
			t.Fatalf("expected success, got %v", outcome.Err())
		}

		runner.mu.Lock()
		specs := slices.Clone(runner.run)
		runner.mu.Unlock()
		if len(specs) != 1 {
			t.Fatalf("expected one configurator invocation, got %d", len(specs))
		}
		if got := specs[0].CommandLine(); got != DefaultAdminCommand {
			t.Errorf("command = %q, want %q", got, DefaultAdminCommand)
		}
		if !slices.Contains(specs[0].Env, "PLEXUS_ADMIN_EMAIL=ops@example.com") {
			t.Errorf("missing admin email in env: %v", specs[0].Env)
		}
		if !slices.Contains(specs[0].Env, "PLEXUS_ADMIN_PASSWORD=hunter2hunter2") {
			t.Errorf("missing admin password in env: %v", specs[0].Env)
		}
		if slices.Contains(specs[0].Args, "hunter2hunter2") {
			t.Error("password must never appear in argv")
		}
		if opts.Bool(OptAdminGenerated) {
			t.Error("supplied password must not be marked generated")
		}
	})

	t.Run("empty password is generated and recorded", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{}
		step := NewCreateAdmin(runner, "", WithAdminLogger(discardLogger()))

		opts := pipeline.NewRunOptions()
		if outcome := step.Do(context.Background(), opts); outcome.Failed() {
			t.Fatalf("expected success, got %v", outcome.Err())
		}

		password := opts.String(OptAdminPassword)
		if password == "" {
			t.Fatal("expected a generated password in run options")
		}
		if !opts.Bool(OptAdminGenerated) {
			t.Error("expected generated flag raised")
		}
		if got := opts.String(OptAdminEmail); got != config.DefaultAdminEmail {
			t.Errorf("admin email = %q, want default %q", got, config.DefaultAdminEmail)
		}

		runner.mu.Lock()
		env := slices.Clone(runner.run[0].Env)
		runner.mu.Unlock()
		if !slices.Contains(env, "PLEXUS_ADMIN_PASSWORD="+password) {
			t.Errorf("generated password missing from env: %v", env)
		}
	})

	t.Run("skip flag set means no invocation", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{}
		step := NewCreateAdmin(runner, "", WithAdminLogger(discardLogger()))

		opts := pipeline.NewRunOptions()
		opts.Set(OptDBInitialized, true)

		if outcome := step.Do(context.Background(), opts); outcome.Failed() {
			t.Fatalf("expected success, got %v", outcome.Err())
		}
		if len(runner.run) != 0 {
			t.Errorf("expected no invocation, got %v", runner.runLines())
		}
		if opts.Has(OptAdminPassword) {
			t.Error("skipped step must not generate a password")
		}
	})

	t.Run("configurator failure surfaces", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{failOn: "admin:create"}
		step := NewCreateAdmin(runner, "", WithAdminLogger(discardLogger()))

		if outcome := step.Do(context.Background(), pipeline.NewRunOptions()); !outcome.Failed() {
			t.Fatal("expected failure from configurator")
		}
	})
}
