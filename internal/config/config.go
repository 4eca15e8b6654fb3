package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/appstrap/appstrap/internal/model"
)

// Default configuration values. These match what the Plexus platform's own
// setup scripts assume, so a bare `appstrap install <name>` produces the
// same instance a manual walkthrough would.
const (
	// DefaultRepoURL is the platform repository cloned for new instances.
	DefaultRepoURL = "https://git.plexus.dev/plexus/platform.git"

	// DefaultLegacyRepoURL is the previous-generation platform repository,
	// cloned by the legacy flow instead of DefaultRepoURL.
	DefaultLegacyRepoURL = "https://git.plexus.dev/plexus/platform-v1.git"

	// DefaultBranch is the branch checked out when no ref is given.
	DefaultBranch = "main"

	// DefaultEnvironment is the deployment target when --env is omitted.
	// Development is the safe default: it never runs against hardened
	// production settings by accident.
	DefaultEnvironment = "development"

	// DefaultDatabasePort is the host port the ephemeral database is
	// published on. 5432 matches the platform's development defaults.
	DefaultDatabasePort = 5432

	// DefaultCachePort is the host port the cache is published on.
	DefaultCachePort = 6379

	// DefaultReadyTimeout is how long the installer waits for the
	// database container to accept connections. Two minutes covers a
	// cold image pull on a slow connection; a faster failure here would
	// produce false negatives on first installs.
	DefaultReadyTimeout = 2 * time.Minute

	// DefaultSetupCommand is the platform's own setup hook, run inside
	// the checkout after packages are installed.
	DefaultSetupCommand = "./scripts/setup.sh --no-prompt"

	// DefaultAdminEmail is the administrator account created during
	// initialization when none is supplied.
	DefaultAdminEmail = "admin@plexus.local"

	// AppName is the application name used for XDG directory paths.
	AppName = "appstrap"
)

// Config holds all configuration options for one installer invocation.
// This struct is populated from CLI flags and passed through the
// application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., SourceConfig, ServiceConfig) for simplicity. The number of
// options is manageable, and nesting would add complexity without
// significant benefit.
type Config struct {
	// Instance is the name of the installation, supplied as the one
	// required positional argument. It becomes the checkout directory,
	// the compose project name, and the journal key.
	Instance string

	// WorkDir is where the instance directory is created. Empty means
	// the current working directory.
	WorkDir string

	// RepoURL is the platform repository to clone.
	RepoURL string

	// LegacyRepoURL is the previous-generation repository the legacy flow
	// clones instead of RepoURL.
	LegacyRepoURL string

	// Branch is the branch or tag to check out.
	Branch string

	// Environment is the deployment target label (development, staging,
	// production). Validated against model.ParseEnvironment.
	Environment string

	// Legacy selects the previous-generation (v1) installation flow.
	// Mutually exclusive with the default pipeline; takes precedence
	// over Offline when both are set.
	Legacy bool

	// Offline selects the archive-based installation flow for hosts
	// without network access. Requires OfflineArchive.
	Offline bool

	// OfflineArchive is the path of the pre-fetched platform archive
	// consumed by the offline flow.
	OfflineArchive string

	// DevMode enables the developer-only steps: seed asset install and
	// UI build. Independent of Environment, but only honored where the
	// environment allows developer assets.
	DevMode bool

	// SkipUI suppresses the UI build step even in dev mode. Useful when
	// iterating on backend-only changes.
	SkipUI bool

	// KeepServices leaves the ephemeral service set running after the
	// installation finishes, skipping the terminal stop step. The set can
	// be torn down later with the down command.
	KeepServices bool

	// AdminEmail is the administrator account created during
	// initialization.
	AdminEmail string

	// AdminPassword is the administrator password. Empty means the
	// create-admin step generates one and prints it once.
	AdminPassword string

	// DatabasePort is the host port the ephemeral database publishes.
	DatabasePort int

	// CachePort is the host port the cache publishes.
	CachePort int

	// ReadyTimeout bounds the wait for the database to accept
	// connections after the service set starts.
	ReadyTimeout time.Duration

	// SetupCommand is the shell-style command line run inside the
	// checkout during the setup step.
	SetupCommand string

	// Tools overrides the external tools probed by the tool check.
	// Empty means the built-in list (git, node, npm, docker).
	Tools []string

	// Per-step command overrides, sourced from the instance profile.
	// Empty means the step's built-in command. All are shellwords-parsed
	// at invocation.
	PackagesCommand string
	InitCommand     string
	MigrateCommand  string
	AdminCommand    string
	UIBuildCommand  string

	// AssetInclude and AssetExclude select developer asset bundles by
	// doublestar glob, sourced from the instance profile.
	AssetInclude []string
	AssetExclude []string

	// JSONReport enables JSON report output instead of the
	// human-readable summary. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of the
	// human-readable summary. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report. When set, the
	// report is written to this file instead of stdout.
	ReportFile string

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// JournalDir is the directory holding the run journal database.
	// Defaults to the XDG data directory.
	JournalDir string

	// SaveToJournal records the run in the journal database. On by
	// default; disabled for throwaway installs.
	SaveToJournal bool

	// ConfigFilePath is the path to the profiles file. If empty, the
	// tool searches for .appstrap.yaml in the current directory, the
	// XDG config directory, and the user's home directory.
	ConfigFilePath string

	// Profiles holds per-instance settings loaded from the profiles
	// file. Populated by LoadProfiles; nil when no file was found.
	Profiles *File
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (ports, timeouts).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		RepoURL:       DefaultRepoURL,
		LegacyRepoURL: DefaultLegacyRepoURL,
		Branch:        DefaultBranch,
		Environment:   DefaultEnvironment,
		AdminEmail:    DefaultAdminEmail,
		DatabasePort:  DefaultDatabasePort,
		CachePort:     DefaultCachePort,
		ReadyTimeout:  DefaultReadyTimeout,
		SetupCommand:  DefaultSetupCommand,
		SaveToJournal: true,
	}
}

// XDGDataDir returns the XDG data directory for appstrap.
// On Linux: ~/.local/share/appstrap
// On macOS: ~/Library/Application Support/appstrap
// On Windows: %LOCALAPPDATA%\appstrap
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for appstrap.
// On Linux: ~/.config/appstrap
// On macOS: ~/Library/Application Support/appstrap
// On Windows: %APPDATA%\appstrap
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before the pipeline is built.
// We return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.Instance == "" {
		return ErrNoInstance
	}

	// Instance names double as directory and project names.
	if _, err := model.NewInstanceName(c.Instance); err != nil {
		return err
	}

	if _, err := model.ParseEnvironment(c.Environment); err != nil {
		return ErrUnknownEnvironment
	}

	if c.DatabasePort < 1 || c.DatabasePort > 65535 {
		return ErrInvalidDatabasePort
	}
	if c.CachePort < 1 || c.CachePort > 65535 {
		return ErrInvalidCachePort
	}

	if c.ReadyTimeout <= 0 {
		return ErrInvalidReadyTimeout
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.Offline && c.OfflineArchive == "" {
		return ErrMissingArchive
	}

	return nil
}

// Mode returns the installation mode the flags select, applying the fixed
// precedence: legacy wins over offline when both are set.
func (c *Config) Mode() model.Mode {
	switch {
	case c.Legacy:
		return model.ModeLegacy
	case c.Offline:
		return model.ModeOffline
	default:
		return model.ModeDefault
	}
}
