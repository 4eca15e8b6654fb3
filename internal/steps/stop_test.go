package steps

import (
	"context"
	"errors"
	"testing"

	"github.com/appstrap/appstrap/internal/pipeline"
)

func TestStopServicesDo(t *testing.T) {
	t.Parallel()

	t.Run("releases the service set", func(t *testing.T) {
		t.Parallel()

		guard := &fakeGuard{}
		step := NewStopServices(guard, WithStopLogger(discardLogger()))

		if outcome := step.Do(context.Background(), pipeline.NewRunOptions()); outcome.Failed() {
			t.Fatalf("expected success, got %v", outcome.Err())
		}
		if guard.releases != 1 {
			t.Errorf("releases = %d, want 1", guard.releases)
		}
	})

	t.Run("keep-services leaves the set running", func(t *testing.T) {
		t.Parallel()

		guard := &fakeGuard{}
		step := NewStopServices(guard, WithStopLogger(discardLogger()))

		opts := pipeline.NewRunOptions()
		opts.Set(OptKeepServices, true)

		if outcome := step.Do(context.Background(), opts); outcome.Failed() {
			t.Fatalf("expected success, got %v", outcome.Err())
		}
		if guard.releases != 0 {
			t.Errorf("releases = %d, want 0", guard.releases)
		}
	})

	t.Run("teardown failure never fails the run", func(t *testing.T) {
		t.Parallel()

		guard := &fakeGuard{releaseErr: errors.New("compose down: exit status 1")}
		step := NewStopServices(guard, WithStopLogger(discardLogger()))

		outcome := step.Do(context.Background(), pipeline.NewRunOptions())
		if outcome.Failed() {
			t.Fatalf("teardown failure must not escalate, got %v", outcome.Err())
		}
		if guard.releases != 1 {
			t.Errorf("releases = %d, want 1", guard.releases)
		}
	})
}
