package pipeline

import (
	"slices"
	"testing"
)

// TestRunOptionsSetAndGet tests basic storage and typed accessors.
func TestRunOptionsSetAndGet(t *testing.T) {
	t.Parallel()

	t.Run("string values", func(t *testing.T) {
		t.Parallel()

		opts := NewRunOptions()
		opts.Set("instance", "ABv2")

		if !opts.Has("instance") {
			t.Fatal("expected key to be present")
		}
		if got := opts.String("instance"); got != "ABv2" {
			t.Errorf("String() = %q, want %q", got, "ABv2")
		}
	})

	t.Run("bool values", func(t *testing.T) {
		t.Parallel()

		opts := NewRunOptions()
		opts.Set("legacy", true)

		if !opts.Has("legacy") {
			t.Fatal("expected key to be present")
		}
		if !opts.Bool("legacy") {
			t.Error("expected true")
		}
	})

	t.Run("bool accessor on absent key", func(t *testing.T) {
		t.Parallel()

		opts := NewRunOptions()

		if opts.Has("legacy") {
			t.Error("expected absent key to report not present")
		}
		if opts.Bool("legacy") {
			t.Error("expected false for absent key")
		}
	})

	t.Run("int values", func(t *testing.T) {
		t.Parallel()

		opts := NewRunOptions()
		opts.Set("port", 5432)

		if !opts.Has("port") {
			t.Fatal("expected key to be present")
		}
		if got := opts.Int("port"); got != 5432 {
			t.Errorf("Int() = %d, want %d", got, 5432)
		}
	})

	t.Run("typed accessor on mismatched type", func(t *testing.T) {
		t.Parallel()

		opts := NewRunOptions()
		opts.Set("port", "not-a-number")

		if got := opts.Int("port"); got != 0 {
			t.Errorf("expected zero value for mismatched type, got %d", got)
		}
	})
}

// TestRunOptionsSetDefault tests merge-if-absent semantics.
func TestRunOptionsSetDefault(t *testing.T) {
	t.Parallel()

	t.Run("stores when absent", func(t *testing.T) {
		t.Parallel()

		opts := NewRunOptions()

		if stored := opts.SetDefault("env", "production"); !stored {
			t.Error("expected SetDefault to store into empty options")
		}
		if got := opts.String("env"); got != "production" {
			t.Errorf("String() = %q, want %q", got, "production")
		}
	})

	t.Run("preserves existing value", func(t *testing.T) {
		t.Parallel()

		opts := NewRunOptions()
		opts.Set("env", "staging")

		if stored := opts.SetDefault("env", "production"); stored {
			t.Error("expected SetDefault to leave existing value alone")
		}
		if got := opts.String("env"); got != "staging" {
			t.Errorf("String() = %q, want %q", got, "staging")
		}
	})

	t.Run("Set overrides unconditionally", func(t *testing.T) {
		t.Parallel()

		opts := NewRunOptions()
		opts.Set("env", "staging")
		opts.Set("env", "production")

		if got := opts.String("env"); got != "production" {
			t.Errorf("String() = %q, want %q", got, "production")
		}
	})
}

// TestRunOptionsMerge tests bulk merge-if-absent.
func TestRunOptionsMerge(t *testing.T) {
	t.Parallel()

	opts := NewRunOptions()
	opts.Set("instance", "sails")

	opts.Merge(map[string]any{
		"instance": "overwritten",
		"branch":   "main",
	})

	if got := opts.String("instance"); got != "sails" {
		t.Errorf("existing key changed: got %q, want %q", got, "sails")
	}
	if got := opts.String("branch"); got != "main" {
		t.Errorf("new key not merged: got %q, want %q", got, "main")
	}
	if opts.Len() != 2 {
		t.Errorf("Len() = %d, want 2", opts.Len())
	}
}

// TestRunOptionsSharedReference tests that options mutate in place for all
// holders of the same instance, which is how steps hand state to later steps.
func TestRunOptionsSharedReference(t *testing.T) {
	t.Parallel()

	opts := NewRunOptions()
	same := opts

	opts.Set("db_initialized", true)

	if !same.Bool("db_initialized") {
		t.Error("expected mutation to be visible through the shared reference")
	}
}

// TestRunOptionsDelete tests key removal.
func TestRunOptionsDelete(t *testing.T) {
	t.Parallel()

	opts := NewRunOptions()
	opts.Set("tmp", "value")
	opts.Delete("tmp")

	if opts.Has("tmp") {
		t.Error("expected deleted key to be absent")
	}
}

// TestRunOptionsSnapshot tests that snapshots are detached copies.
func TestRunOptionsSnapshot(t *testing.T) {
	t.Parallel()

	opts := NewRunOptions()
	opts.Set("instance", "ABv2")

	snap := opts.Snapshot()
	snap["instance"] = "mutated"

	if got := opts.String("instance"); got != "ABv2" {
		t.Errorf("snapshot mutation leaked: got %q, want %q", got, "ABv2")
	}
}

// TestRunOptionsKeys tests that keys come back sorted.
func TestRunOptionsKeys(t *testing.T) {
	t.Parallel()

	opts := NewRunOptions()
	opts.Set("zeta", 1)
	opts.Set("alpha", 2)
	opts.Set("mid", 3)

	got := opts.Keys()
	want := []string{"alpha", "mid", "zeta"}
	if !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

// TestRunOptionsDescribe tests the debug listing format, ordering, and
// credential masking.
func TestRunOptionsDescribe(t *testing.T) {
	t.Parallel()

	opts := NewRunOptions()
	opts.Set("instance", "ABv2")
	opts.Set("db_port", 5432)
	opts.Set("admin_password", "hunter2")

	got := opts.Describe()
	want := []string{
		"admin_password=***REDACTED***",
		"db_port=5432",
		"instance=ABv2",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Describe() = %v, want %v", got, want)
	}
}
