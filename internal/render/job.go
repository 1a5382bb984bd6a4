package render

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"reelctl/internal/reel"
	"reelctl/internal/services"
)

// Mode selects the dispatcher.
type Mode string

const (
	ModeDirect   Mode = "direct"
	ModeWorkflow Mode = "workflow"
)

// Status is the lifecycle state of a render job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailure    Status = "failure"
	StatusCancelled  Status = "cancelled"
	StatusNotFound   Status = "not_found"
)

// Terminal reports whether no further transitions are expected.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailure, StatusCancelled, StatusNotFound:
		return true
	}
	return false
}

// ErrRunNotFound reports that the run started by a dispatch could not be
// located.
var ErrRunNotFound = fmt.Errorf("%w: workflow run not found", services.ErrNotFound)

// Job is a point-in-time view of a render.
type Job struct {
	ID          string    `json:"id"`
	Mode        Mode      `json:"mode"`
	Status      Status    `json:"status"`
	Conclusion  string    `json:"conclusion,omitempty"`
	Progress    string    `json:"progress,omitempty"`
	ArtifactURL string    `json:"artifactUrl,omitempty"`
	HTMLURL     string    `json:"htmlUrl,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Terminal reports whether the job has finished.
func (j Job) Terminal() bool {
	return j.Status.Terminal()
}

// Request is the render payload sent to either dispatcher.
type Request struct {
	Name       string             `json:"name"`
	Preset     string             `json:"preset"`
	Background string             `json:"background,omitempty"`
	Scenes     []reel.Scene       `json:"scenes"`
	CTA        *reel.CallToAction `json:"cta,omitempty"`
}

// NewRequest builds a request from script. Scripts without scenes or with
// unknown poses are rejected.
func NewRequest(script reel.Script, background string) (Request, error) {
	script = script.Clone()
	script.Normalize()
	if err := script.Validate(); err != nil {
		if errors.Is(err, reel.ErrNoScenes) {
			return Request{}, services.Wrap(services.ErrValidation, "render", "request", "script has no scenes", err)
		}
		return Request{}, services.Wrap(services.ErrValidation, "render", "request", "invalid script", err)
	}
	return Request{
		Name:       script.Name,
		Preset:     script.Preset,
		Background: strings.TrimSpace(background),
		Scenes:     script.Scenes,
		CTA:        script.CTA,
	}, nil
}
