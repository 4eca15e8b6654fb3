package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoInstance is returned when no instance name is supplied.
	// The instance name is the one required positional argument.
	ErrNoInstance = errors.New("no instance specified: provide an instance name")

	// ErrInvalidDatabasePort is returned when the database host port is
	// outside the valid TCP port range.
	ErrInvalidDatabasePort = errors.New("invalid database port: must be between 1 and 65535")

	// ErrInvalidCachePort is returned when the cache host port is outside
	// the valid TCP port range.
	ErrInvalidCachePort = errors.New("invalid cache port: must be between 1 and 65535")

	// ErrInvalidReadyTimeout is returned when the service readiness
	// timeout is not positive. A zero timeout would fail every install
	// before the database container can accept connections.
	ErrInvalidReadyTimeout = errors.New("invalid ready timeout: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrMissingArchive is returned when --offline is set without an
	// archive path. Offline installs have no network to fetch from.
	ErrMissingArchive = errors.New("offline mode requires --archive with a pre-fetched platform archive")

	// ErrUnknownEnvironment is returned when --env is not one of
	// development, staging, or production.
	ErrUnknownEnvironment = errors.New("unknown environment: must be development, staging, or production")

	// ErrConfigNotFound is returned when the profiles file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
