package model

// Mode represents the installation flow selected for a run.
//
// Design decision: iota-based constants rather than string constants so
// precedence comparisons and switch dispatch stay cheap; String provides
// the human-readable form for logs and journals.
type Mode int

const (
	// ModeDefault is the standard installation pipeline: clone, install
	// packages, set up, bring services up, initialize, migrate, tear down.
	ModeDefault Mode = iota

	// ModeLegacy installs the previous-generation (v1) platform layout.
	// Selected by the --v1 flag and dispatched before any mutating step.
	ModeLegacy

	// ModeOffline installs from a pre-fetched archive without network
	// access. Selected by the --offline flag.
	ModeOffline
)

// String returns a human-readable representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeLegacy:
		return "legacy"
	case ModeOffline:
		return "offline"
	default:
		return "default"
	}
}

// ParseMode maps a stored mode label back to its Mode. Unknown labels map
// to ModeDefault, mirroring how String renders unknown values.
func ParseMode(label string) Mode {
	switch label {
	case "legacy":
		return ModeLegacy
	case "offline":
		return ModeOffline
	default:
		return ModeDefault
	}
}
