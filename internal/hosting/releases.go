package hosting

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Asset is a file attached to a release.
type Asset struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Size               int64  `json:"size"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Release is a tagged release with its assets.
type Release struct {
	ID        int64   `json:"id"`
	TagName   string  `json:"tag_name"`
	UploadURL string  `json:"upload_url"`
	Assets    []Asset `json:"assets"`
}

// FindAsset returns the asset called name, if any.
func (r Release) FindAsset(name string) (Asset, bool) {
	for _, a := range r.Assets {
		if a.Name == name {
			return a, true
		}
	}
	return Asset{}, false
}

// ReleaseByTag returns the release for tag. found is false on 404.
func (c *Client) ReleaseByTag(ctx context.Context, repo, tag string) (release Release, found bool, err error) {
	err = c.doJSON(ctx, http.MethodGet, repoPath(repo, "releases", "tags", url.PathEscape(tag)), "get release", nil, &release)
	if err != nil {
		if IsNotFound(err) {
			return Release{}, false, nil
		}
		return Release{}, false, err
	}
	return release, true, nil
}

// CreateRelease creates a release for tag.
func (c *Client) CreateRelease(ctx context.Context, repo, tag, name string) (Release, error) {
	body := map[string]any{
		"tag_name": tag,
		"name":     name,
	}
	var out Release
	err := c.doJSON(ctx, http.MethodPost, repoPath(repo, "releases"), "create release", body, &out)
	return out, err
}

// DeleteAsset removes a release asset.
func (c *Client) DeleteAsset(ctx context.Context, repo string, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, repoPath(repo, "releases", "assets", strconv.FormatInt(id, 10)), "delete asset", nil, nil)
}

// UploadAsset streams size bytes from body to the release's upload endpoint.
func (c *Client) UploadAsset(ctx context.Context, release Release, name, contentType string, body io.Reader, size int64) (Asset, error) {
	if err := c.ensureToken("upload asset"); err != nil {
		return Asset{}, err
	}
	target := release.UploadURL
	// The upload URL carries an RFC 6570 suffix like {?name,label}.
	if i := strings.IndexByte(target, '{'); i >= 0 {
		target = target[:i]
	}
	if target == "" {
		return Asset{}, fmt.Errorf("release %d has no upload url", release.ID)
	}
	target += "?name=" + url.QueryEscape(name)

	req, err := c.newRequest(ctx, http.MethodPost, target, body)
	if err != nil {
		return Asset{}, fmt.Errorf("build upload asset request: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = size

	resp, err := c.send(req, "upload asset")
	if err != nil {
		return Asset{}, err
	}
	defer resp.Body.Close()
	var out Asset
	if err := decodeJSON(resp.Body, &out); err != nil {
		return Asset{}, err
	}
	return out, nil
}
