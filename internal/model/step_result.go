package model

import "time"

// StepStatus represents how a single pipeline step ended.
type StepStatus int

const (
	// StepCompleted means the step ran and returned continue.
	StepCompleted StepStatus = iota

	// StepFailed means the step ran and returned a failure.
	StepFailed

	// StepSkipped means the step asked the pipeline to skip the rest of
	// the run, or was itself suppressed by the already-initialized flag.
	StepSkipped
)

// String returns a human-readable representation of the step status.
func (s StepStatus) String() string {
	switch s {
	case StepFailed:
		return "failed"
	case StepSkipped:
		return "skipped"
	default:
		return "completed"
	}
}

// StepResult records the outcome of one executed step for reports and the
// run journal. Steps that never ran (after a failure or soft-skip) do not
// appear at all.
type StepResult struct {
	// Name is the step name as declared in the pipeline.
	Name string `json:"name"`

	// Status is how the step ended.
	Status StepStatus `json:"-"`

	// StatusLabel is the string form of Status for serialization.
	StatusLabel string `json:"status"`

	// Error is the failure message. Empty unless Status is StepFailed.
	Error string `json:"error,omitempty"`

	// StartedAt is when the step began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the step's wall time.
	Duration time.Duration `json:"duration_ns"`
}

// NewStepResult builds a StepResult with a consistent label.
func NewStepResult(name string, status StepStatus, startedAt time.Time, duration time.Duration) StepResult {
	return StepResult{
		Name:        name,
		Status:      status,
		StatusLabel: status.String(),
		StartedAt:   startedAt,
		Duration:    duration,
	}
}
