package render

import (
	"context"
	"strings"
	"time"

	"reelctl/internal/backend"
	"reelctl/internal/services"
)

// Direct renders on the render backend.
type Direct struct {
	client *backend.Client
	now    func() time.Time
}

// NewDirect builds a direct-mode dispatcher.
func NewDirect(client *backend.Client) *Direct {
	return &Direct{client: client, now: time.Now}
}

func (d *Direct) Mode() Mode { return ModeDirect }

// Dispatch starts a render and returns the backend's project id.
func (d *Direct) Dispatch(ctx context.Context, req Request) (Job, error) {
	resp, err := d.client.GenerateV2(ctx, backend.GenerateRequest{
		Name:       req.Name,
		Preset:     req.Preset,
		Background: req.Background,
		Scenes:     req.Scenes,
		CTA:        req.CTA,
	})
	if err != nil {
		return Job{}, err
	}
	if !resp.OK {
		return Job{}, services.Wrap(services.ErrSemantic, "render", "dispatch", "backend refused the render", nil)
	}
	return Job{
		ID:        resp.ProjectID,
		Mode:      ModeDirect,
		Status:    StatusInProgress,
		UpdatedAt: d.now().UTC(),
	}, nil
}

// Status maps the backend's current render onto a job snapshot.
func (d *Direct) Status(ctx context.Context, id string) (Job, error) {
	st, err := d.client.Status(ctx)
	if err != nil {
		return Job{}, err
	}
	job := Job{
		ID:        id,
		Mode:      ModeDirect,
		Progress:  st.Progress,
		UpdatedAt: d.now().UTC(),
	}
	if job.ID == "" {
		job.ID = st.ProjectID
	}
	switch {
	case st.Running:
		job.Status = StatusInProgress
	case strings.TrimSpace(st.Error) != "":
		job.Status = StatusFailure
		job.Conclusion = "failure"
		job.Progress = st.Error
	default:
		job.Status = StatusCompleted
		job.Conclusion = "success"
	}
	return job, nil
}
