package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeProfiles writes a profiles file into a temp dir and returns its path.
func writeProfiles(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return path
}

// TestLoadProfiles tests profile file loading.
func TestLoadProfiles(t *testing.T) {
	t.Parallel()

	t.Run("loads defaults and profiles", func(t *testing.T) {
		t.Parallel()

		path := writeProfiles(t, `
defaults:
  repo_url: https://git.example.com/fork/platform.git
  environment: staging
profiles:
  abv2:
    branch: release-2.4
    database_port: 15432
  sails:
    environment: production
`)

		f, err := LoadProfiles(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if f.Defaults.RepoURL != "https://git.example.com/fork/platform.git" {
			t.Errorf("Defaults.RepoURL = %q", f.Defaults.RepoURL)
		}
		if got := f.Profiles["abv2"].Branch; got != "release-2.4" {
			t.Errorf("abv2 branch = %q, want %q", got, "release-2.4")
		}
		if got := f.Profiles["abv2"].DatabasePort; got != 15432 {
			t.Errorf("abv2 database_port = %d, want %d", got, 15432)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if _, err := LoadProfiles(path); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("malformed yaml returns an error", func(t *testing.T) {
		t.Parallel()

		path := writeProfiles(t, "profiles: [not a map\n")
		if _, err := LoadProfiles(path); err == nil {
			t.Error("expected error for malformed yaml")
		}
	})

	t.Run("empty file yields usable zero value", func(t *testing.T) {
		t.Parallel()

		path := writeProfiles(t, "")
		f, err := LoadProfiles(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Profiles == nil {
			t.Error("expected initialized Profiles map")
		}
	})
}

// TestFileLookup tests default/profile merging.
func TestFileLookup(t *testing.T) {
	t.Parallel()

	f := &File{
		Defaults: Profile{Environment: "staging", Branch: "main"},
		Profiles: map[string]Profile{
			"abv2": {Branch: "release-2.4"},
		},
	}

	t.Run("profile overlays defaults", func(t *testing.T) {
		t.Parallel()

		p, ok := f.Lookup("abv2")
		if !ok {
			t.Fatal("expected an explicit profile")
		}
		if p.Branch != "release-2.4" {
			t.Errorf("Branch = %q, want %q", p.Branch, "release-2.4")
		}
		if p.Environment != "staging" {
			t.Errorf("Environment = %q, want inherited %q", p.Environment, "staging")
		}
	})

	t.Run("unknown instance gets defaults only", func(t *testing.T) {
		t.Parallel()

		p, ok := f.Lookup("nope")
		if ok {
			t.Error("expected no explicit profile")
		}
		if p.Environment != "staging" {
			t.Errorf("Environment = %q, want %q", p.Environment, "staging")
		}
	})
}

// TestProfileApplyTo tests that profiles never override explicit flags.
func TestProfileApplyTo(t *testing.T) {
	t.Parallel()

	t.Run("fills defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		p := Profile{Branch: "release-2.4", DatabasePort: 15432}
		p.ApplyTo(cfg)

		if cfg.Branch != "release-2.4" {
			t.Errorf("Branch = %q, want %q", cfg.Branch, "release-2.4")
		}
		if cfg.DatabasePort != 15432 {
			t.Errorf("DatabasePort = %d, want %d", cfg.DatabasePort, 15432)
		}
	})

	t.Run("leaves flag-set values alone", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Branch = "hotfix-7"
		p := Profile{Branch: "release-2.4"}
		p.ApplyTo(cfg)

		if cfg.Branch != "hotfix-7" {
			t.Errorf("Branch = %q, want flag value %q", cfg.Branch, "hotfix-7")
		}
	})

	t.Run("fills step overrides", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		p := Profile{
			Tools:           []string{"git", "node", "npm", "docker", "psql"},
			PackagesCommand: "npm ci --prefer-offline",
			InitCommand:     "npm run db:init -- --force",
			MigrateCommand:  "npm run db:migrate -- --env production",
			AdminCommand:    "npm run admin:create -- --role owner",
			UIBuildCommand:  "npm run build:ui -- --minify",
			AssetInclude:    []string{"seed/**"},
			AssetExclude:    []string{"seed/fixtures/**"},
		}
		p.ApplyTo(cfg)

		if len(cfg.Tools) != 5 || cfg.Tools[4] != "psql" {
			t.Errorf("Tools = %v, want profile tool list", cfg.Tools)
		}
		if cfg.PackagesCommand != "npm ci --prefer-offline" {
			t.Errorf("PackagesCommand = %q", cfg.PackagesCommand)
		}
		if cfg.InitCommand != "npm run db:init -- --force" {
			t.Errorf("InitCommand = %q", cfg.InitCommand)
		}
		if cfg.MigrateCommand != "npm run db:migrate -- --env production" {
			t.Errorf("MigrateCommand = %q", cfg.MigrateCommand)
		}
		if cfg.AdminCommand != "npm run admin:create -- --role owner" {
			t.Errorf("AdminCommand = %q", cfg.AdminCommand)
		}
		if cfg.UIBuildCommand != "npm run build:ui -- --minify" {
			t.Errorf("UIBuildCommand = %q", cfg.UIBuildCommand)
		}
		if len(cfg.AssetInclude) != 1 || cfg.AssetInclude[0] != "seed/**" {
			t.Errorf("AssetInclude = %v", cfg.AssetInclude)
		}
		if len(cfg.AssetExclude) != 1 || cfg.AssetExclude[0] != "seed/fixtures/**" {
			t.Errorf("AssetExclude = %v", cfg.AssetExclude)
		}
	})

	t.Run("step overrides overlay in Lookup", func(t *testing.T) {
		t.Parallel()

		f := &File{
			Defaults: Profile{MigrateCommand: "npm run db:migrate"},
			Profiles: map[string]Profile{
				"abv2": {
					MigrateCommand: "npm run db:migrate -- --env staging",
					Tools:          []string{"git", "docker"},
				},
			},
		}

		p, ok := f.Lookup("abv2")
		if !ok {
			t.Fatal("expected an explicit profile")
		}
		if p.MigrateCommand != "npm run db:migrate -- --env staging" {
			t.Errorf("MigrateCommand = %q", p.MigrateCommand)
		}
		if len(p.Tools) != 2 {
			t.Errorf("Tools = %v, want instance tool list", p.Tools)
		}
	})
}

// TestLoadDotEnv tests .env loading into the environment.
func TestLoadDotEnv(t *testing.T) {
	// Mutates the process environment; not parallel.

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("PLEXUS_SMTP_HOST=mail.internal\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("PLEXUS_SMTP_HOST") })

	if err := LoadDotEnv(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("PLEXUS_SMTP_HOST"); got != "mail.internal" {
		t.Errorf("PLEXUS_SMTP_HOST = %q, want %q", got, "mail.internal")
	}

	if err := LoadDotEnv(t.TempDir()); err != nil {
		t.Errorf("missing .env should not error, got %v", err)
	}
}
