package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"reelctl/internal/backend"
	"reelctl/internal/config"
	"reelctl/internal/hosting"
	"reelctl/internal/logging"
	"reelctl/internal/reel"
	"reelctl/internal/services"
)

// Dispatcher starts renders and reports on them.
type Dispatcher interface {
	Mode() Mode
	Dispatch(ctx context.Context, req Request) (Job, error)
	Status(ctx context.Context, id string) (Job, error)
}

// NewDispatcher picks the dispatcher configured by cfg.Render.Mode.
func NewDispatcher(cfg *config.Config, hostingClient *hosting.Client, backendClient *backend.Client, logger *slog.Logger) (Dispatcher, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "render", "dispatcher", "configuration unavailable", nil)
	}
	switch cfg.Render.Mode {
	case config.RenderModeWorkflow:
		if hostingClient == nil || !hostingClient.Configured() {
			return nil, services.Wrap(services.ErrConfiguration, "render", "dispatcher", "workflow mode requires a hosting token", nil)
		}
		if cfg.Hosting.RenderRepo == "" {
			return nil, services.Wrap(services.ErrConfiguration, "render", "dispatcher", "hosting.render_repo is not set", nil)
		}
		return NewWorkflow(hostingClient, WorkflowConfig{
			Repo:         cfg.Hosting.RenderRepo,
			Workflow:     cfg.Hosting.Workflow,
			EventType:    cfg.Hosting.EventType,
			ArtifactName: cfg.Hosting.ArtifactName,
			LookupDelay:  cfg.LookupDelay(),
		}, WithWorkflowLogger(logger)), nil
	case config.RenderModeDirect, "":
		if backendClient == nil || !backendClient.Configured() {
			return nil, services.Wrap(services.ErrConfiguration, "render", "dispatcher", "render.api_url is not set", nil)
		}
		return NewDirect(backendClient), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "render", "dispatcher", fmt.Sprintf("unknown render mode %q", cfg.Render.Mode), nil)
	}
}

// Service ties a dispatcher to polling and terminal notifications.
type Service struct {
	dispatcher Dispatcher
	interval   time.Duration
	notifier   Notifier
	logger     *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) { s.notifier = n }
}

func WithInterval(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logging.NewComponentLogger(logger, "render") }
}

// NewService wraps dispatcher. The default interval follows the mode.
func NewService(dispatcher Dispatcher, opts ...ServiceOption) *Service {
	s := &Service{
		dispatcher: dispatcher,
		interval:   DirectPollInterval,
		logger:     logging.NewComponentLogger(nil, "render"),
	}
	if dispatcher != nil && dispatcher.Mode() == ModeWorkflow {
		s.interval = WorkflowPollInterval
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Mode() Mode { return s.dispatcher.Mode() }

// Dispatch validates script, starts the render, and returns a tracker
// positioned after the dispatch.
func (s *Service) Dispatch(ctx context.Context, script reel.Script, background string) (*Tracker, error) {
	req, err := NewRequest(script, background)
	if err != nil {
		return nil, err
	}
	tracker := NewTracker(req.Name, s.notifier, s.logger)
	tracker.Begin()
	job, err := s.dispatcher.Dispatch(ctx, req)
	if err != nil {
		status := StatusFailure
		if errors.Is(err, ErrRunNotFound) {
			status = StatusNotFound
		}
		tracker.Observe(ctx, Job{Mode: s.dispatcher.Mode(), Status: status, Progress: err.Error(), UpdatedAt: time.Now().UTC()})
		return tracker, err
	}
	s.logger.Info("render dispatched",
		logging.String("mode", string(job.Mode)),
		logging.String("job_id", job.ID),
		logging.String("script_name", req.Name),
	)
	tracker.Dispatched(ctx, job)
	return tracker, nil
}

// Status returns one snapshot for id.
func (s *Service) Status(ctx context.Context, id string) (Job, error) {
	return s.dispatcher.Status(ctx, id)
}

// Watch polls id and feeds each snapshot to tracker when it is non-nil.
func (s *Service) Watch(ctx context.Context, id string, tracker *Tracker) *Task {
	return Poll(ctx, s.interval, func(ctx context.Context) (Job, error) {
		job, err := s.dispatcher.Status(ctx, id)
		if err != nil {
			return Job{}, err
		}
		if tracker != nil {
			tracker.Observe(ctx, job)
		}
		return job, nil
	})
}
