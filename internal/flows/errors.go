package flows

import "errors"

var (
	// ErrNoArchive is returned when the offline flow starts without an
	// archive path. The config layer validates this before the pipeline
	// runs, so hitting it here means the flow was invoked directly with
	// incomplete options.
	ErrNoArchive = errors.New("offline flow requires an archive path")

	// ErrNoExtractor is returned when tar is not available to unpack the
	// release archive. tar is probed by the flow itself rather than the
	// shared tool check because only the offline flow needs it.
	ErrNoExtractor = errors.New("tar not found, cannot unpack release archive")
)
