package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"reelctl/internal/hosting"
	"reelctl/internal/logging"
	"reelctl/internal/services"
)

// DefaultLookupDelay is the pause before the second filtered run lookup.
const DefaultLookupDelay = 3 * time.Second

// WorkflowConfig names the dispatch target.
type WorkflowConfig struct {
	Repo         string
	Workflow     string
	EventType    string
	ArtifactName string
	LookupDelay  time.Duration
}

// Workflow renders through a repository dispatch and a workflow run.
type Workflow struct {
	client *hosting.Client
	cfg    WorkflowConfig
	logger *slog.Logger
	now    func() time.Time
	sleep  func(context.Context, time.Duration) error
}

// WorkflowOption configures a Workflow.
type WorkflowOption func(*Workflow)

// WithClock overrides the dispatch timestamp source.
func WithClock(now func() time.Time) WorkflowOption {
	return func(w *Workflow) {
		if now != nil {
			w.now = now
		}
	}
}

// WithSleep overrides the wait between run lookups.
func WithSleep(sleep func(context.Context, time.Duration) error) WorkflowOption {
	return func(w *Workflow) {
		if sleep != nil {
			w.sleep = sleep
		}
	}
}

// WithWorkflowLogger sets the dispatcher logger.
func WithWorkflowLogger(logger *slog.Logger) WorkflowOption {
	return func(w *Workflow) {
		w.logger = logging.NewComponentLogger(logger, "render")
	}
}

// NewWorkflow builds a workflow-mode dispatcher.
func NewWorkflow(client *hosting.Client, cfg WorkflowConfig, opts ...WorkflowOption) *Workflow {
	if cfg.LookupDelay <= 0 {
		cfg.LookupDelay = DefaultLookupDelay
	}
	w := &Workflow{
		client: client,
		cfg:    cfg,
		logger: logging.NewComponentLogger(nil, "render"),
		now:    time.Now,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workflow) Mode() Mode { return ModeWorkflow }

// Dispatch fires the render event and resolves the run it started. The
// lookup lists runs created at or after the dispatch instant, retries that
// once after LookupDelay, then falls back to the most recent run regardless
// of age. When all three come back empty ErrRunNotFound is returned.
func (w *Workflow) Dispatch(ctx context.Context, req Request) (Job, error) {
	since := w.now().UTC().Truncate(time.Second)
	if err := w.client.Dispatch(ctx, w.cfg.Repo, w.cfg.EventType, req); err != nil {
		return Job{}, err
	}

	run, ok := w.lookup(ctx, hosting.RunFilter{CreatedSince: since, PerPage: 1})
	if !ok {
		if err := w.sleep(ctx, w.cfg.LookupDelay); err != nil {
			return Job{}, err
		}
		run, ok = w.lookup(ctx, hosting.RunFilter{CreatedSince: since, PerPage: 1})
	}
	if !ok {
		run, ok = w.lookup(ctx, hosting.RunFilter{PerPage: 1})
		if ok {
			logging.WarnWithContext(w.logger, "using most recent run after filtered lookups came back empty",
				"render_run_fallback", "the reported run may belong to another dispatch",
				logging.Int64("run_id", run.ID),
			)
		}
	}
	if !ok {
		return Job{ID: "", Mode: ModeWorkflow, Status: StatusNotFound, UpdatedAt: w.now().UTC()}, ErrRunNotFound
	}
	return w.snapshot(run), nil
}

func (w *Workflow) lookup(ctx context.Context, filter hosting.RunFilter) (hosting.WorkflowRun, bool) {
	runs, err := w.client.ListRuns(ctx, w.cfg.Repo, w.cfg.Workflow, filter)
	if err != nil {
		w.logger.Debug("run lookup failed", logging.Error(err))
		return hosting.WorkflowRun{}, false
	}
	if len(runs) == 0 {
		return hosting.WorkflowRun{}, false
	}
	return runs[0], true
}

// Status fetches a run. A non-2xx answer yields a not_found snapshot rather
// than an error. Successful runs carry the artifact download URL.
func (w *Workflow) Status(ctx context.Context, id string) (Job, error) {
	runID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return Job{}, services.Wrap(services.ErrValidation, "render", "status", fmt.Sprintf("invalid run id %q", id), nil)
	}
	run, err := w.client.GetRun(ctx, w.cfg.Repo, runID)
	if err != nil {
		var apiErr *hosting.APIError
		if errors.As(err, &apiErr) {
			return Job{ID: id, Mode: ModeWorkflow, Status: StatusNotFound, UpdatedAt: w.now().UTC()}, nil
		}
		return Job{}, err
	}
	job := w.snapshot(run)
	if job.Status == StatusCompleted {
		job.ArtifactURL = w.artifactURL(ctx, runID)
	}
	return job, nil
}

func (w *Workflow) artifactURL(ctx context.Context, runID int64) string {
	artifacts, err := w.client.RunArtifacts(ctx, w.cfg.Repo, runID)
	if err != nil {
		w.logger.Warn("artifact listing failed", logging.Int64("run_id", runID), logging.Error(err))
		return ""
	}
	for _, a := range artifacts {
		if a.Name == w.cfg.ArtifactName {
			return w.client.ArtifactDownloadURL(w.cfg.Repo, a.ID)
		}
	}
	return ""
}

func (w *Workflow) snapshot(run hosting.WorkflowRun) Job {
	job := Job{
		ID:         strconv.FormatInt(run.ID, 10),
		Mode:       ModeWorkflow,
		Conclusion: run.Conclusion,
		Progress:   run.Status,
		HTMLURL:    run.HTMLURL,
		UpdatedAt:  w.now().UTC(),
	}
	switch run.Status {
	case "completed":
		switch run.Conclusion {
		case "success":
			job.Status = StatusCompleted
		case "cancelled":
			job.Status = StatusCancelled
		default:
			job.Status = StatusFailure
		}
	case "in_progress":
		job.Status = StatusInProgress
	default:
		job.Status = StatusQueued
	}
	return job
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
