package model

import "time"

// RunStatus represents the overall outcome of one installation run.
type RunStatus int

const (
	// RunSucceeded means every step that was supposed to run completed.
	RunSucceeded RunStatus = iota

	// RunFailed means a step failed and the pipeline stopped early.
	RunFailed

	// RunSkipped means an alternate flow handled the installation and the
	// default pipeline was intentionally abandoned without error.
	RunSkipped
)

// String returns a human-readable representation of the run status.
func (s RunStatus) String() string {
	switch s {
	case RunFailed:
		return "failed"
	case RunSkipped:
		return "skipped"
	default:
		return "succeeded"
	}
}

// InstallReport is the main result structure for one installation run.
// It accumulates step results while the pipeline executes and is handed
// to the report writers and the run journal afterwards.
//
// Design decision: a single flat struct rather than per-phase sub-reports
// because every consumer (text summary, JSON, markdown, journal) wants the
// same step list and header fields; splitting would only add plumbing.
type InstallReport struct {
	// Instance is the installation being provisioned.
	Instance string `json:"instance"`

	// Mode is the flow that handled the run (default, legacy, offline).
	Mode string `json:"mode"`

	// Environment is the deployment target the run configured.
	Environment string `json:"environment,omitempty"`

	// StartedAt is when the pipeline began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the pipeline ended, unwind included.
	FinishedAt time.Time `json:"finished_at"`

	// Status is the overall outcome.
	Status RunStatus `json:"-"`

	// StatusLabel is the string form of Status for serialization.
	StatusLabel string `json:"status"`

	// Steps lists every step that actually ran, in execution order.
	Steps []StepResult `json:"steps"`

	// InstanceDir is the directory the instance was installed into.
	InstanceDir string `json:"instance_dir,omitempty"`

	// Services lists the service names of the ephemeral set the run used.
	Services []string `json:"services,omitempty"`

	// AdminEmail is the administrator account the run configured.
	AdminEmail string `json:"admin_email,omitempty"`

	// AdminPassword is shown once in the terminal summary when the run
	// generated it. Never serialized; the journal stores only a hash.
	AdminPassword string `json:"-"`

	// AdminPasswordGenerated reports whether the password was generated by
	// the run rather than supplied by the caller.
	AdminPasswordGenerated bool `json:"admin_password_generated,omitempty"`

	// Error is the original failure for the caller to inspect.
	Error error `json:"-"` // Excluded from JSON

	// ErrorMessage is the string representation of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`

	// DatabaseAlreadyInitialized reports whether the run found an existing
	// schema and skipped migration and admin configuration.
	DatabaseAlreadyInitialized bool `json:"database_already_initialized"`
}

// NewInstallReport creates a report for the given instance with the clock
// already started.
func NewInstallReport(instance InstanceName, mode Mode) *InstallReport {
	return &InstallReport{
		Instance:    instance.String(),
		Mode:        mode.String(),
		StartedAt:   time.Now(),
		Status:      RunSucceeded,
		StatusLabel: RunSucceeded.String(),
		Steps:       make([]StepResult, 0, 16),
	}
}

// AddStep appends one executed step's result.
func (r *InstallReport) AddStep(result StepResult) {
	r.Steps = append(r.Steps, result)
}

// Finish stamps the end time and final status. A non-nil err marks the run
// failed and records the message; skipped marks an intentional early stop.
func (r *InstallReport) Finish(err error, skipped bool) {
	r.FinishedAt = time.Now()
	switch {
	case err != nil:
		r.Status = RunFailed
		r.Error = err
		r.ErrorMessage = err.Error()
	case skipped:
		r.Status = RunSkipped
	default:
		r.Status = RunSucceeded
	}
	r.StatusLabel = r.Status.String()
}

// Duration returns the total wall time of the run, zero until Finish.
func (r *InstallReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Failed reports whether the run ended in failure.
func (r *InstallReport) Failed() bool {
	return r.Status == RunFailed
}

// FailedStep returns the result of the step that failed, if any.
func (r *InstallReport) FailedStep() (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Status == StepFailed {
			return s, true
		}
	}
	return StepResult{}, false
}
