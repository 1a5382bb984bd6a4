package hosting

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
)

// PutContentRequest creates or replaces one file.
type PutContentRequest struct {
	Message string
	Content []byte
	// SHA of the existing blob; required to overwrite.
	SHA    string
	Branch string
}

// ContentSHA returns the blob sha of path on branch. found is false when the
// file does not exist.
func (c *Client) ContentSHA(ctx context.Context, repo, path, branch string) (sha string, found bool, err error) {
	target := repoPath(repo, "contents", escapePath(path))
	if branch != "" {
		target += "?ref=" + url.QueryEscape(branch)
	}
	var out struct {
		SHA string `json:"sha"`
	}
	if err := c.doJSON(ctx, http.MethodGet, target, "get contents", nil, &out); err != nil {
		if IsNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return out.SHA, true, nil
}

// PutContent writes a file through the contents endpoint and returns the new
// blob sha.
func (c *Client) PutContent(ctx context.Context, repo, path string, req PutContentRequest) (string, error) {
	body := map[string]string{
		"message": req.Message,
		"content": base64.StdEncoding.EncodeToString(req.Content),
	}
	if req.SHA != "" {
		body["sha"] = req.SHA
	}
	if req.Branch != "" {
		body["branch"] = req.Branch
	}
	var out struct {
		Content struct {
			SHA string `json:"sha"`
		} `json:"content"`
	}
	if err := c.doJSON(ctx, http.MethodPut, repoPath(repo, "contents", escapePath(path)), "put contents", body, &out); err != nil {
		return "", err
	}
	return out.Content.SHA, nil
}
