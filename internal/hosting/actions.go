package hosting

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"reelctl/internal/services"
)

// WorkflowRun is a single workflow execution.
type WorkflowRun struct {
	ID         int64     `json:"id"`
	Status     string    `json:"status"`
	Conclusion string    `json:"conclusion"`
	HTMLURL    string    `json:"html_url"`
	CreatedAt  time.Time `json:"created_at"`
}

// Artifact is a file bundle produced by a run.
type Artifact struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	SizeInBytes        int64  `json:"size_in_bytes"`
	ArchiveDownloadURL string `json:"archive_download_url"`
	Expired            bool   `json:"expired"`
}

// RunFilter narrows a run listing.
type RunFilter struct {
	// CreatedSince limits results to runs created at or after this instant.
	CreatedSince time.Time
	PerPage      int
}

// Dispatch fires a repository_dispatch event.
func (c *Client) Dispatch(ctx context.Context, repo, eventType string, payload any) error {
	body := map[string]any{
		"event_type":     eventType,
		"client_payload": payload,
	}
	return c.doJSON(ctx, http.MethodPost, repoPath(repo, "dispatches"), "dispatch", body, nil)
}

// ListRuns lists runs of workflow, newest first.
func (c *Client) ListRuns(ctx context.Context, repo, workflow string, filter RunFilter) ([]WorkflowRun, error) {
	query := url.Values{}
	if filter.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(filter.PerPage))
	}
	if !filter.CreatedSince.IsZero() {
		query.Set("created", ">="+filter.CreatedSince.UTC().Truncate(time.Second).Format("2006-01-02T15:04:05Z"))
	}
	target := repoPath(repo, "actions", "workflows", url.PathEscape(workflow), "runs")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	var out struct {
		WorkflowRuns []WorkflowRun `json:"workflow_runs"`
	}
	if err := c.doJSON(ctx, http.MethodGet, target, "list runs", nil, &out); err != nil {
		return nil, err
	}
	return out.WorkflowRuns, nil
}

// GetRun fetches one run.
func (c *Client) GetRun(ctx context.Context, repo string, id int64) (WorkflowRun, error) {
	var out WorkflowRun
	err := c.doJSON(ctx, http.MethodGet, repoPath(repo, "actions", "runs", strconv.FormatInt(id, 10)), "get run", nil, &out)
	return out, err
}

// RunArtifacts lists artifacts produced by a run.
func (c *Client) RunArtifacts(ctx context.Context, repo string, id int64) ([]Artifact, error) {
	var out struct {
		Artifacts []Artifact `json:"artifacts"`
	}
	if err := c.doJSON(ctx, http.MethodGet, repoPath(repo, "actions", "runs", strconv.FormatInt(id, 10), "artifacts"), "list artifacts", nil, &out); err != nil {
		return nil, err
	}
	return out.Artifacts, nil
}

// ArtifactDownloadURL returns the zip endpoint of an artifact.
func (c *Client) ArtifactDownloadURL(repo string, id int64) string {
	return c.endpoint(repoPath(repo, "actions", "artifacts", strconv.FormatInt(id, 10), "zip"))
}

// Download streams rawURL into w. Redirects are followed; the bearer token is
// dropped when a redirect leaves the API host.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	if err := c.ensureToken("download"); err != nil {
		return 0, err
	}
	req, err := c.newRequest(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build download request: %w", err)
	}
	resp, err := c.send(req, "download")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, services.Wrap(services.ErrTransport, "hosting", "download", "read body", err)
	}
	return n, nil
}

func decodeJSON(r io.Reader, out any) error {
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return services.Wrap(services.ErrTransport, "hosting", "", "decode response", err)
	}
	return nil
}
