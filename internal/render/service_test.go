package render_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"reelctl/internal/render"
	"reelctl/internal/services"
)

type failingDispatcher struct {
	err error
}

func (f failingDispatcher) Mode() render.Mode { return render.ModeWorkflow }

func (f failingDispatcher) Dispatch(context.Context, render.Request) (render.Job, error) {
	return render.Job{}, f.err
}

func (f failingDispatcher) Status(context.Context, string) (render.Job, error) {
	return render.Job{}, f.err
}

func TestServiceDispatchErrorPhases(t *testing.T) {
	transport := services.Wrap(services.ErrTransport, "hosting", "dispatch", "HTTP 500", nil)
	cases := []struct {
		name      string
		err       error
		wantPhase render.Phase
	}{
		{"transport failure", transport, render.PhaseFailed},
		{"rejected", services.Wrap(services.ErrSemantic, "backend", "generate", "refused", nil), render.PhaseFailed},
		{"run lookup failed", render.ErrRunNotFound, render.PhaseNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := &recordingNotifier{}
			svc := render.NewService(failingDispatcher{err: tc.err}, render.WithNotifier(n))
			tracker, err := svc.Dispatch(context.Background(), sampleScript(), "")
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
			if tracker == nil {
				t.Fatal("expected a tracker")
			}
			if tracker.Phase() != tc.wantPhase {
				t.Fatalf("expected %s, got %s", tc.wantPhase, tracker.Phase())
			}
			if len(n.failed) != 1 || !strings.Contains(n.failed[0], tc.err.Error()) {
				t.Fatalf("expected one failure notification carrying the error, got %+v", n.failed)
			}
		})
	}
}
