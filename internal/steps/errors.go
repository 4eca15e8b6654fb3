package steps

import "errors"

// Step errors.
//
// Design decision: package-level sentinel errors rather than ad-hoc
// fmt.Errorf values so the command layer and the tests can classify
// failures with errors.Is while the wrapped message still names the
// offending tool or file.
var (
	// ErrMissingTools is returned by the tool check when one or more
	// required external commands are not installed. The wrapped message
	// lists the missing tools.
	ErrMissingTools = errors.New("required tools are not installed")

	// ErrNoRepoURL is returned by the clone step when the run options
	// carry no repository URL.
	ErrNoRepoURL = errors.New("no repository URL configured")

	// ErrNoInstanceDir is returned by steps that must run inside the
	// checkout when no instance directory has been recorded yet, which
	// means the clone step did not run.
	ErrNoInstanceDir = errors.New("no instance directory recorded")

	// ErrNoDatabaseService is returned when the rendered service
	// definition does not declare the database service the initializer
	// and the migrations depend on.
	ErrNoDatabaseService = errors.New("service definition lacks the database service")

	// ErrFlowUnavailable is returned by the mode dispatch when a mode
	// flag is set but no flow was wired for it. This is a wiring bug in
	// the command layer, not a user error.
	ErrFlowUnavailable = errors.New("no flow wired for requested mode")
)
