package pipeline

import "fmt"

// outcomeKind distinguishes the three ways a step can finish.
type outcomeKind int

const (
	// kindContinue advances the pipeline to the next step.
	kindContinue outcomeKind = iota

	// kindFail aborts the pipeline; the unwind phase still runs.
	kindFail

	// kindSoftSkip stops the pipeline without error; the remaining steps
	// are treated as intentionally skipped and the run reports success.
	kindSoftSkip
)

// Outcome is the result of a single step execution.
//
// An Outcome is one of three kinds: continue, fail, or soft-skip. Use the
// Continue, Fail, Failf, and SoftSkip constructors; the zero value is a
// continue outcome.
type Outcome struct {
	kind outcomeKind
	err  error
}

// Continue returns an outcome that advances the pipeline to the next step.
func Continue() Outcome {
	return Outcome{kind: kindContinue}
}

// Fail returns an outcome that aborts the pipeline with err.
// The error reaches the pipeline caller unchanged.
func Fail(err error) Outcome {
	return Outcome{kind: kindFail, err: err}
}

// Failf is shorthand for Fail with a formatted error.
func Failf(format string, args ...any) Outcome {
	return Outcome{kind: kindFail, err: fmt.Errorf(format, args...)}
}

// SoftSkip returns an outcome that stops the pipeline without error.
// Steps after the current one do not run; the pipeline reports success.
func SoftSkip() Outcome {
	return Outcome{kind: kindSoftSkip}
}

// Failed reports whether the outcome aborts the pipeline.
func (o Outcome) Failed() bool {
	return o.kind == kindFail
}

// Skipped reports whether the outcome soft-skips the remaining steps.
func (o Outcome) Skipped() bool {
	return o.kind == kindSoftSkip
}

// Err returns the failure error, or nil for continue and soft-skip outcomes.
func (o Outcome) Err() error {
	return o.err
}

// String returns a short label for logging.
func (o Outcome) String() string {
	switch o.kind {
	case kindFail:
		return "fail"
	case kindSoftSkip:
		return "soft-skip"
	default:
		return "continue"
	}
}
