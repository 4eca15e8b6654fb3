package model

import (
	"errors"
	"testing"
	"time"
)

// TestNewInstallReport tests report construction.
func TestNewInstallReport(t *testing.T) {
	t.Parallel()

	r := NewInstallReport(MustNewInstanceName("ABv2"), ModeDefault)

	if r.Instance != "ABv2" {
		t.Errorf("Instance = %q, want %q", r.Instance, "ABv2")
	}
	if r.Mode != "default" {
		t.Errorf("Mode = %q, want %q", r.Mode, "default")
	}
	if r.StartedAt.IsZero() {
		t.Error("expected StartedAt to be stamped")
	}
	if len(r.Steps) != 0 {
		t.Errorf("expected no steps, got %d", len(r.Steps))
	}
}

// TestInstallReportFinish tests terminal status stamping.
func TestInstallReportFinish(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		r := NewInstallReport(MustNewInstanceName("sails"), ModeDefault)
		r.Finish(nil, false)

		if r.Status != RunSucceeded {
			t.Errorf("Status = %v, want RunSucceeded", r.Status)
		}
		if r.StatusLabel != "succeeded" {
			t.Errorf("StatusLabel = %q, want %q", r.StatusLabel, "succeeded")
		}
		if r.Failed() {
			t.Error("expected Failed() to be false")
		}
		if r.Duration() < 0 {
			t.Errorf("Duration() = %v, want >= 0", r.Duration())
		}
	})

	t.Run("failure records the original error", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("migration 4 failed")
		r := NewInstallReport(MustNewInstanceName("sails"), ModeDefault)
		r.Finish(cause, false)

		if !r.Failed() {
			t.Error("expected Failed() to be true")
		}
		if !errors.Is(r.Error, cause) {
			t.Errorf("Error = %v, want %v", r.Error, cause)
		}
		if r.ErrorMessage != "migration 4 failed" {
			t.Errorf("ErrorMessage = %q", r.ErrorMessage)
		}
	})

	t.Run("skipped run reports skipped, not failed", func(t *testing.T) {
		t.Parallel()

		r := NewInstallReport(MustNewInstanceName("sails"), ModeLegacy)
		r.Finish(nil, true)

		if r.Status != RunSkipped {
			t.Errorf("Status = %v, want RunSkipped", r.Status)
		}
		if r.Failed() {
			t.Error("expected Failed() to be false for a skipped run")
		}
	})
}

// TestInstallReportFailedStep tests locating the failing step.
func TestInstallReportFailedStep(t *testing.T) {
	t.Parallel()

	r := NewInstallReport(MustNewInstanceName("ABv2"), ModeDefault)
	now := time.Now()
	r.AddStep(NewStepResult("clone", StepCompleted, now, time.Second))
	failed := NewStepResult("install-packages", StepFailed, now, 2*time.Second)
	failed.Error = "npm install exited with status 1"
	r.AddStep(failed)

	got, ok := r.FailedStep()
	if !ok {
		t.Fatal("expected a failed step")
	}
	if got.Name != "install-packages" {
		t.Errorf("FailedStep().Name = %q, want %q", got.Name, "install-packages")
	}

	clean := NewInstallReport(MustNewInstanceName("ABv2"), ModeDefault)
	if _, ok := clean.FailedStep(); ok {
		t.Error("expected no failed step in a clean report")
	}
}

// TestStepStatusString tests step status labels.
func TestStepStatusString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status StepStatus
		want   string
	}{
		{StepCompleted, "completed"},
		{StepFailed, "failed"},
		{StepSkipped, "skipped"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("StepStatus(%d).String() = %q, want %q", int(tt.status), got, tt.want)
		}
	}
}
