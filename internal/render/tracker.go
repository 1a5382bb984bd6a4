package render

import (
	"context"
	"log/slog"
	"sync"

	"reelctl/internal/logging"
)

// Phase is where a render stands from the caller's point of view.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseDispatching Phase = "dispatching"
	PhasePolling     Phase = "polling"
	PhaseJobKnown    Phase = "job-id-known"
	PhaseSucceeded   Phase = "completed-success"
	PhaseFailed      Phase = "completed-failure"
	PhaseCancelled   Phase = "cancelled"
	PhaseNotFound    Phase = "not-found"
)

// Notifier receives terminal render outcomes.
type Notifier interface {
	NotifyRenderCompleted(ctx context.Context, name, artifactURL string) error
	NotifyRenderFailed(ctx context.Context, name, reason string) error
}

// Tracker follows one render through its phases. Once a terminal phase is
// reached later snapshots are ignored and the notifier fires exactly once.
type Tracker struct {
	mu       sync.Mutex
	name     string
	phase    Phase
	job      Job
	notifier Notifier
	logger   *slog.Logger
}

// NewTracker returns an idle tracker for the script called name.
func NewTracker(name string, notifier Notifier, logger *slog.Logger) *Tracker {
	return &Tracker{
		name:     name,
		phase:    PhaseIdle,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "render"),
	}
}

func (t *Tracker) Phase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

func (t *Tracker) Job() Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.job
}

// Begin marks the dispatch as in flight.
func (t *Tracker) Begin() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase == PhaseIdle {
		t.phase = PhaseDispatching
	}
}

// Dispatched records the job a dispatch produced.
func (t *Tracker) Dispatched(ctx context.Context, job Job) {
	t.mu.Lock()
	if t.terminalLocked() {
		t.mu.Unlock()
		return
	}
	t.job = job
	switch {
	case job.Terminal():
		t.mu.Unlock()
		t.Observe(ctx, job)
		return
	case job.Mode == ModeWorkflow:
		t.phase = PhaseJobKnown
	default:
		t.phase = PhasePolling
	}
	t.mu.Unlock()
}

// Observe applies a polled snapshot.
func (t *Tracker) Observe(ctx context.Context, job Job) {
	t.mu.Lock()
	if t.terminalLocked() {
		t.mu.Unlock()
		return
	}
	t.job = job
	next := phaseFor(job)
	if next == "" {
		if t.phase == PhaseIdle || t.phase == PhaseDispatching {
			t.phase = PhasePolling
		}
		t.mu.Unlock()
		return
	}
	t.phase = next
	name := t.name
	notifier := t.notifier
	t.mu.Unlock()

	t.logger.Info("render finished",
		logging.String("job_id", job.ID),
		logging.String("status", string(job.Status)),
		logging.String("phase", string(next)),
	)
	if notifier == nil {
		return
	}
	var err error
	if next == PhaseSucceeded {
		err = notifier.NotifyRenderCompleted(ctx, name, job.ArtifactURL)
	} else {
		reason := job.Progress
		if reason == "" {
			reason = string(job.Status)
		}
		err = notifier.NotifyRenderFailed(ctx, name, reason)
	}
	if err != nil {
		t.logger.Warn("render notification failed", logging.Error(err))
	}
}

// Done reports whether a terminal phase has been reached.
func (t *Tracker) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.terminalLocked()
}

func (t *Tracker) terminalLocked() bool {
	switch t.phase {
	case PhaseSucceeded, PhaseFailed, PhaseCancelled, PhaseNotFound:
		return true
	}
	return false
}

func phaseFor(job Job) Phase {
	switch job.Status {
	case StatusCompleted:
		return PhaseSucceeded
	case StatusFailure:
		return PhaseFailed
	case StatusCancelled:
		return PhaseCancelled
	case StatusNotFound:
		return PhaseNotFound
	}
	return ""
}
