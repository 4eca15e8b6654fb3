package services

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// TestLoadProject tests compose validation of rendered definitions.
func TestLoadProject(t *testing.T) {
	t.Parallel()

	t.Run("accepts a rendered definition", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "services.yaml")
		input := RenderInput{Project: "abv2", Environment: "development"}
		if err := RenderToFile(input, path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		project, err := LoadProject(path, "abv2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if project.Name != "abv2" {
			t.Errorf("project name = %q, want %q", project.Name, "abv2")
		}

		names := ServiceNames(project)
		for _, want := range []string{"database", "cache", "mailcatcher"} {
			if !slices.Contains(names, want) {
				t.Errorf("services = %v, missing %q", names, want)
			}
		}
	})

	t.Run("production definition has no mailcatcher", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "services.yaml")
		input := RenderInput{Project: "abv2", Environment: "production"}
		if err := RenderToFile(input, path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		project, err := LoadProject(path, "abv2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if slices.Contains(ServiceNames(project), "mailcatcher") {
			t.Error("expected production definition to omit mailcatcher")
		}
	})

	t.Run("rejects malformed definitions", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "services.yaml")
		bad := []byte("services:\n  database:\n    image: [this is not an image]\n")
		if err := os.WriteFile(path, bad, 0o644); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := LoadProject(path, "abv2"); err == nil {
			t.Error("expected validation error for malformed definition")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadProject(filepath.Join(t.TempDir(), "nope.yaml"), "abv2"); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
