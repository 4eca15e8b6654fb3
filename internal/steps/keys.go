package steps

// Well-known run option keys.
//
// The run options are an open map because the setup phase of the installed
// application emits derived options the installer cannot enumerate ahead of
// time. The keys below are the ones the installer itself reads or writes;
// anything else flows through untouched for later steps and the report.
const (
	// OptInstance is the validated instance name (string). Required.
	OptInstance = "instance"

	// OptWorkDir is the parent directory instances are installed under
	// (string). Empty means the current working directory.
	OptWorkDir = "work_dir"

	// OptInstanceDir is the checkout directory of the instance (string).
	// Written by the clone step, read by everything after it.
	OptInstanceDir = "instance_dir"

	// OptRepoURL is the platform repository to clone (string).
	OptRepoURL = "repo_url"

	// OptRef is the branch or tag to check out (string). Empty means the
	// repository default branch.
	OptRef = "ref"

	// OptEnvironment is the deployment target (string). Recomputed by the
	// setup step when dev mode is on; that write is an intentional
	// override, not merge-if-absent.
	OptEnvironment = "environment"

	// OptDevMode gates the developer-only steps (bool).
	OptDevMode = "dev_mode"

	// OptSkipUI bypasses the UI build even in dev mode (bool).
	OptSkipUI = "skip_ui"

	// OptLegacy selects the previous-generation installation flow (bool).
	OptLegacy = "legacy"

	// OptOffline selects the archive-based installation flow (bool).
	OptOffline = "offline"

	// OptArchive is the release archive path for offline installs
	// (string).
	OptArchive = "archive"

	// OptServicesFile is the rendered service definition path (string).
	// Written by the render step, read by the lifecycle guard steps.
	OptServicesFile = "services_file"

	// OptProject is the compose project name the service set runs under
	// (string). Defaults to the lowercased instance name.
	OptProject = "services_project"

	// OptServiceNames lists the services of the rendered definition
	// ([]string). Informational, consumed by the report.
	OptServiceNames = "service_names"

	// OptDatabaseName is the database created for the instance (string).
	OptDatabaseName = "database_name"

	// OptDatabasePort is the host port the database publishes (int).
	OptDatabasePort = "database_port"

	// OptCachePort is the host port the cache publishes (int).
	OptCachePort = "cache_port"

	// OptAdminEmail is the administrator account to configure (string).
	OptAdminEmail = "admin_email"

	// OptAdminPassword is the administrator password (string). When the
	// caller leaves it empty the admin step generates one.
	OptAdminPassword = "admin_password"

	// OptAdminGenerated records that the password was generated by the
	// run rather than supplied (bool).
	OptAdminGenerated = "admin_password_generated"

	// OptKeepServices leaves the ephemeral service set running after the
	// run instead of tearing it down (bool).
	OptKeepServices = "keep_services"

	// OptDBInitialized is the skip flag: set when the environment turns
	// out to be already initialized, so the migration and administrator
	// steps no-op instead of re-running setup work (bool).
	OptDBInitialized = "database_initialized"
)
