package hosting

import (
	"context"
	"encoding/base64"
	"net/http"
)

// Commit is the subset of a git commit object the upload path needs.
type Commit struct {
	SHA  string `json:"sha"`
	Tree struct {
		SHA string `json:"sha"`
	} `json:"tree"`
}

// TreeEntry is one path in a new tree.
type TreeEntry struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
}

// BlobEntry returns a regular-file tree entry pointing at sha.
func BlobEntry(path, sha string) TreeEntry {
	return TreeEntry{Path: path, Mode: "100644", Type: "blob", SHA: sha}
}

type shaResponse struct {
	SHA string `json:"sha"`
}

// CreateBlob stores content as a blob.
func (c *Client) CreateBlob(ctx context.Context, repo string, content []byte) (string, error) {
	body := map[string]string{
		"content":  base64.StdEncoding.EncodeToString(content),
		"encoding": "base64",
	}
	var out shaResponse
	err := c.doJSON(ctx, http.MethodPost, repoPath(repo, "git", "blobs"), "create blob", body, &out)
	return out.SHA, err
}

// RefSHA resolves heads/<branch> to a commit sha.
func (c *Client) RefSHA(ctx context.Context, repo, branch string) (string, error) {
	var out struct {
		Object shaResponse `json:"object"`
	}
	err := c.doJSON(ctx, http.MethodGet, repoPath(repo, "git", "ref", "heads", escapePath(branch)), "get ref", nil, &out)
	return out.Object.SHA, err
}

// GetCommit fetches a commit object.
func (c *Client) GetCommit(ctx context.Context, repo, sha string) (Commit, error) {
	var out Commit
	err := c.doJSON(ctx, http.MethodGet, repoPath(repo, "git", "commits", sha), "get commit", nil, &out)
	return out, err
}

// CreateTree writes a tree on top of baseTree.
func (c *Client) CreateTree(ctx context.Context, repo, baseTree string, entries []TreeEntry) (string, error) {
	body := map[string]any{
		"base_tree": baseTree,
		"tree":      entries,
	}
	var out shaResponse
	err := c.doJSON(ctx, http.MethodPost, repoPath(repo, "git", "trees"), "create tree", body, &out)
	return out.SHA, err
}

// CreateCommit writes a commit object.
func (c *Client) CreateCommit(ctx context.Context, repo, message, tree string, parents []string) (string, error) {
	body := map[string]any{
		"message": message,
		"tree":    tree,
		"parents": parents,
	}
	var out shaResponse
	err := c.doJSON(ctx, http.MethodPost, repoPath(repo, "git", "commits"), "create commit", body, &out)
	return out.SHA, err
}

// UpdateRef fast-forwards heads/<branch> to sha.
func (c *Client) UpdateRef(ctx context.Context, repo, branch, sha string) error {
	body := map[string]string{"sha": sha}
	return c.doJSON(ctx, http.MethodPatch, repoPath(repo, "git", "refs", "heads", escapePath(branch)), "update ref", body, nil)
}
