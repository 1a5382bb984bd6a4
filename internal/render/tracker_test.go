package render_test

import (
	"context"
	"testing"

	"reelctl/internal/render"
)

func TestTrackerPhases(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{}
	tr := render.NewTracker("reel", n, nil)
	if tr.Phase() != render.PhaseIdle {
		t.Fatalf("expected idle, got %s", tr.Phase())
	}
	tr.Begin()
	if tr.Phase() != render.PhaseDispatching {
		t.Fatalf("expected dispatching, got %s", tr.Phase())
	}
	tr.Dispatched(ctx, render.Job{ID: "12", Mode: render.ModeWorkflow, Status: render.StatusQueued})
	if tr.Phase() != render.PhaseJobKnown {
		t.Fatalf("expected job-id-known, got %s", tr.Phase())
	}
	tr.Observe(ctx, render.Job{ID: "12", Mode: render.ModeWorkflow, Status: render.StatusInProgress})
	if tr.Phase() != render.PhaseJobKnown {
		t.Fatalf("in-progress snapshot should not change phase, got %s", tr.Phase())
	}
	tr.Observe(ctx, render.Job{ID: "12", Status: render.StatusFailure, Progress: "step failed"})
	tr.Observe(ctx, render.Job{ID: "12", Status: render.StatusCompleted})
	if tr.Phase() != render.PhaseFailed {
		t.Fatalf("terminal phase must stick, got %s", tr.Phase())
	}
	if len(n.failed) != 1 || n.failed[0] != "reel|step failed" || len(n.completed) != 0 {
		t.Fatalf("expected exactly one failure notification, got %+v %+v", n.failed, n.completed)
	}
}

func TestTrackerNotFoundReason(t *testing.T) {
	n := &recordingNotifier{}
	tr := render.NewTracker("reel", n, nil)
	tr.Begin()
	tr.Observe(context.Background(), render.Job{Status: render.StatusNotFound})
	if tr.Phase() != render.PhaseNotFound {
		t.Fatalf("expected not-found, got %s", tr.Phase())
	}
	if len(n.failed) != 1 || n.failed[0] != "reel|not_found" {
		t.Fatalf("unexpected notifications %+v", n.failed)
	}
}
