package config

// File is the root of the profiles file (.appstrap.yaml). It carries
// shared defaults plus per-instance profiles, so teams can pin a branch or
// environment per instance without repeating flags on every install.
//
// Example:
//
//	defaults:
//	  repo_url: https://git.example.com/fork/platform.git
//	  environment: staging
//	profiles:
//	  abv2:
//	    branch: release-2.4
//	    database_port: 15432
//	  sails:
//	    environment: production
type File struct {
	// Defaults apply to every instance unless its profile overrides them.
	Defaults Profile `yaml:"defaults" mapstructure:"defaults"`

	// Profiles maps instance names to their settings.
	Profiles map[string]Profile `yaml:"profiles" mapstructure:"profiles"`
}

// Profile holds per-instance overrides. Zero values mean "not set"; only
// set fields are applied, so profiles merge cleanly under flag values.
type Profile struct {
	// RepoURL overrides the platform repository.
	RepoURL string `yaml:"repo_url" mapstructure:"repo_url"`

	// LegacyRepoURL overrides the previous-generation repository used by
	// the legacy flow.
	LegacyRepoURL string `yaml:"legacy_repo_url" mapstructure:"legacy_repo_url"`

	// Branch overrides the branch or tag to check out.
	Branch string `yaml:"branch" mapstructure:"branch"`

	// Environment overrides the deployment target.
	Environment string `yaml:"environment" mapstructure:"environment"`

	// DatabasePort overrides the published database port.
	DatabasePort int `yaml:"database_port" mapstructure:"database_port"`

	// CachePort overrides the published cache port.
	CachePort int `yaml:"cache_port" mapstructure:"cache_port"`

	// SetupCommand overrides the setup hook command line.
	SetupCommand string `yaml:"setup_command" mapstructure:"setup_command"`

	// AdminEmail overrides the administrator account email.
	AdminEmail string `yaml:"admin_email" mapstructure:"admin_email"`

	// Tools overrides the external tools probed before the first
	// mutating step.
	Tools []string `yaml:"tools" mapstructure:"tools"`

	// Command overrides for individual pipeline steps. Each command line
	// is shellwords-parsed at invocation; empty means the step default.
	PackagesCommand string `yaml:"packages_command" mapstructure:"packages_command"`
	InitCommand     string `yaml:"init_command" mapstructure:"init_command"`
	MigrateCommand  string `yaml:"migrate_command" mapstructure:"migrate_command"`
	AdminCommand    string `yaml:"admin_command" mapstructure:"admin_command"`
	UIBuildCommand  string `yaml:"ui_build_command" mapstructure:"ui_build_command"`

	// AssetInclude and AssetExclude select the developer asset bundles
	// copied in dev mode, as doublestar glob patterns.
	AssetInclude []string `yaml:"asset_include" mapstructure:"asset_include"`
	AssetExclude []string `yaml:"asset_exclude" mapstructure:"asset_exclude"`
}

// Lookup resolves the effective profile for an instance: the file defaults
// overlaid with the instance's own profile. The second return reports
// whether the instance has an explicit profile entry.
func (f *File) Lookup(instance string) (Profile, bool) {
	merged := f.Defaults
	p, ok := f.Profiles[instance]
	if !ok {
		return merged, false
	}
	merged.overlay(p)
	return merged, true
}

// overlay copies set fields of p over the receiver.
func (p *Profile) overlay(other Profile) {
	if other.RepoURL != "" {
		p.RepoURL = other.RepoURL
	}
	if other.LegacyRepoURL != "" {
		p.LegacyRepoURL = other.LegacyRepoURL
	}
	if other.Branch != "" {
		p.Branch = other.Branch
	}
	if other.Environment != "" {
		p.Environment = other.Environment
	}
	if other.DatabasePort != 0 {
		p.DatabasePort = other.DatabasePort
	}
	if other.CachePort != 0 {
		p.CachePort = other.CachePort
	}
	if other.SetupCommand != "" {
		p.SetupCommand = other.SetupCommand
	}
	if other.AdminEmail != "" {
		p.AdminEmail = other.AdminEmail
	}
	if len(other.Tools) > 0 {
		p.Tools = other.Tools
	}
	if other.PackagesCommand != "" {
		p.PackagesCommand = other.PackagesCommand
	}
	if other.InitCommand != "" {
		p.InitCommand = other.InitCommand
	}
	if other.MigrateCommand != "" {
		p.MigrateCommand = other.MigrateCommand
	}
	if other.AdminCommand != "" {
		p.AdminCommand = other.AdminCommand
	}
	if other.UIBuildCommand != "" {
		p.UIBuildCommand = other.UIBuildCommand
	}
	if len(other.AssetInclude) > 0 {
		p.AssetInclude = other.AssetInclude
	}
	if len(other.AssetExclude) > 0 {
		p.AssetExclude = other.AssetExclude
	}
}

// ApplyTo fills unset-by-flag fields of cfg from the profile. Flags win:
// a field is only taken from the profile when the config still carries the
// built-in default, so explicit CLI values are never overwritten.
func (p Profile) ApplyTo(cfg *Config) {
	if p.RepoURL != "" && cfg.RepoURL == DefaultRepoURL {
		cfg.RepoURL = p.RepoURL
	}
	if p.LegacyRepoURL != "" && cfg.LegacyRepoURL == DefaultLegacyRepoURL {
		cfg.LegacyRepoURL = p.LegacyRepoURL
	}
	if p.Branch != "" && cfg.Branch == DefaultBranch {
		cfg.Branch = p.Branch
	}
	if p.Environment != "" && cfg.Environment == DefaultEnvironment {
		cfg.Environment = p.Environment
	}
	if p.DatabasePort != 0 && cfg.DatabasePort == DefaultDatabasePort {
		cfg.DatabasePort = p.DatabasePort
	}
	if p.CachePort != 0 && cfg.CachePort == DefaultCachePort {
		cfg.CachePort = p.CachePort
	}
	if p.SetupCommand != "" && cfg.SetupCommand == DefaultSetupCommand {
		cfg.SetupCommand = p.SetupCommand
	}
	if p.AdminEmail != "" && cfg.AdminEmail == DefaultAdminEmail {
		cfg.AdminEmail = p.AdminEmail
	}

	// The step overrides have no CLI flags; the profile is their only
	// source, so an empty config field always yields to the profile.
	if len(p.Tools) > 0 && len(cfg.Tools) == 0 {
		cfg.Tools = p.Tools
	}
	if p.PackagesCommand != "" && cfg.PackagesCommand == "" {
		cfg.PackagesCommand = p.PackagesCommand
	}
	if p.InitCommand != "" && cfg.InitCommand == "" {
		cfg.InitCommand = p.InitCommand
	}
	if p.MigrateCommand != "" && cfg.MigrateCommand == "" {
		cfg.MigrateCommand = p.MigrateCommand
	}
	if p.AdminCommand != "" && cfg.AdminCommand == "" {
		cfg.AdminCommand = p.AdminCommand
	}
	if p.UIBuildCommand != "" && cfg.UIBuildCommand == "" {
		cfg.UIBuildCommand = p.UIBuildCommand
	}
	if len(p.AssetInclude) > 0 && len(cfg.AssetInclude) == 0 {
		cfg.AssetInclude = p.AssetInclude
	}
	if len(p.AssetExclude) > 0 && len(cfg.AssetExclude) == 0 {
		cfg.AssetExclude = p.AssetExclude
	}
}
