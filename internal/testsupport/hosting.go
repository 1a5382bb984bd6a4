package testsupport

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"reelctl/internal/hosting"
)

// FakeHosting is an in-memory source-hosting API served over httptest. It
// covers the endpoints reelctl uses and records every request.
type FakeHosting struct {
	Server *httptest.Server
	Token  string

	mu         sync.Mutex
	requests   []string
	files      map[string][]byte
	blobs      map[string][]byte
	refs       map[string]string
	commits    map[string]fakeCommit
	trees      map[string][]hosting.TreeEntry
	releases   map[string]*hosting.Release
	uploads    map[int64][]byte
	dispatches []Dispatch
	runs       map[int64]hosting.WorkflowRun
	artifacts  map[int64][]hosting.Artifact
	archives   map[int64][]byte
	nextID     int64

	// ListRuns overrides the run listing. created is the raw filter value,
	// empty for an unfiltered listing.
	ListRuns func(created string) []hosting.WorkflowRun
	// Fail forces a status for requests whose "METHOD path" has the key as
	// prefix.
	Fail map[string]int
}

type fakeCommit struct {
	Tree    string
	Parents []string
	Message string
}

// Dispatch records a repository dispatch.
type Dispatch struct {
	Repo      string
	EventType string
	Payload   json.RawMessage
}

// NewFakeHosting starts a fake API accepting token.
func NewFakeHosting(t testing.TB, token string) *FakeHosting {
	t.Helper()
	f := &FakeHosting{
		Token:     token,
		files:     map[string][]byte{},
		blobs:     map[string][]byte{},
		refs:      map[string]string{},
		commits:   map[string]fakeCommit{},
		trees:     map[string][]hosting.TreeEntry{},
		releases:  map[string]*hosting.Release{},
		uploads:   map[int64][]byte{},
		runs:      map[int64]hosting.WorkflowRun{},
		artifacts: map[int64][]hosting.Artifact{},
		archives:  map[int64][]byte{},
		Fail:      map[string]int{},
		nextID:    100,
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the API base.
func (f *FakeHosting) URL() string { return f.Server.URL }

// SeedBranch creates repo@branch with an empty root commit.
func (f *FakeHosting) SeedBranch(repo, branch string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	tree := f.id("tree")
	f.trees[tree] = nil
	sha := f.id("commit")
	f.commits[sha] = fakeCommit{Tree: tree, Message: "init"}
	f.refs[repo+"@"+branch] = sha
	return sha
}

// SeedFile stores a file for the contents API.
func (f *FakeHosting) SeedFile(repo, path string, content []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[repo+":"+path] = content
}

// File returns the stored contents of path.
func (f *FakeHosting) File(repo, path string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.files[repo+":"+path]
	return b, ok
}

// Head returns the commit repo@branch points to.
func (f *FakeHosting) Head(repo, branch string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refs[repo+"@"+branch]
}

// CommitTree returns the tree entries and message of commit sha.
func (f *FakeHosting) CommitTree(sha string) ([]hosting.TreeEntry, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.commits[sha]
	return f.trees[c.Tree], c.Message
}

// Blob returns stored blob content.
func (f *FakeHosting) Blob(sha string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blobs[sha]
}

// SeedRelease creates a release for tag.
func (f *FakeHosting) SeedRelease(repo, tag string, assets ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rel := f.newRelease(repo, tag)
	for _, name := range assets {
		f.nextID++
		rel.Assets = append(rel.Assets, hosting.Asset{ID: f.nextID, Name: name})
	}
}

// Release returns the release for tag.
func (f *FakeHosting) Release(repo, tag string) (hosting.Release, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rel, ok := f.releases[repo+"#"+tag]
	if !ok {
		return hosting.Release{}, false
	}
	return *rel, true
}

// Uploaded returns the bytes uploaded as asset id.
func (f *FakeHosting) Uploaded(id int64) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploads[id]
}

// Dispatches returns the recorded repository dispatches.
func (f *FakeHosting) Dispatches() []Dispatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Dispatch(nil), f.dispatches...)
}

// AddRun registers a run for GetRun and the default listing.
func (f *FakeHosting) AddRun(run hosting.WorkflowRun) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs[run.ID] = run
}

// AddArtifact attaches an artifact with zip contents to run.
func (f *FakeHosting) AddArtifact(runID int64, name string, archive []byte) hosting.Artifact {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	a := hosting.Artifact{ID: f.nextID, Name: name, SizeInBytes: int64(len(archive))}
	f.artifacts[runID] = append(f.artifacts[runID], a)
	f.archives[a.ID] = archive
	return a
}

// Requests returns "METHOD path" for every request received.
func (f *FakeHosting) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// CountRequests counts requests starting with prefix.
func (f *FakeHosting) CountRequests(prefix string) int {
	n := 0
	for _, r := range f.Requests() {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

func (f *FakeHosting) id(kind string) string {
	f.nextID++
	sum := sha1.Sum([]byte(kind + strconv.FormatInt(f.nextID, 10)))
	return hex.EncodeToString(sum[:])
}

func (f *FakeHosting) newRelease(repo, tag string) *hosting.Release {
	f.nextID++
	rel := &hosting.Release{
		ID:        f.nextID,
		TagName:   tag,
		UploadURL: fmt.Sprintf("%s/uploads/%s/releases/%d/assets{?name,label}", f.Server.URL, repo, f.nextID),
	}
	f.releases[repo+"#"+tag] = rel
	return rel
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
}

func (f *FakeHosting) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	f.mu.Lock()
	f.requests = append(f.requests, key)
	for prefix, status := range f.Fail {
		if strings.HasPrefix(key, prefix) {
			f.mu.Unlock()
			writeJSON(w, status, map[string]string{"message": "forced failure"})
			return
		}
	}
	f.mu.Unlock()

	if f.Token != "" && r.Header.Get("Authorization") != "Bearer "+f.Token {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
		return
	}

	body, _ := io.ReadAll(r.Body)
	if strings.HasPrefix(r.URL.Path, "/uploads/") {
		f.serveUpload(w, r, body)
		return
	}
	if strings.HasPrefix(r.URL.Path, "/download/") {
		id, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/download/"), 10, 64)
		f.mu.Lock()
		archive, ok := f.archives[id]
		f.mu.Unlock()
		if !ok {
			notFound(w)
			return
		}
		_, _ = w.Write(archive)
		return
	}

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/repos/"), "/")
	if len(parts) < 3 {
		notFound(w)
		return
	}
	repo := parts[0] + "/" + parts[1]
	rest := parts[2:]

	f.mu.Lock()
	defer f.mu.Unlock()
	switch rest[0] {
	case "contents":
		f.serveContents(w, r, repo, strings.Join(rest[1:], "/"), body)
	case "git":
		f.serveGit(w, r, repo, rest[1:], body)
	case "releases":
		f.serveReleases(w, r, repo, rest[1:], body)
	case "dispatches":
		var req struct {
			EventType     string          `json:"event_type"`
			ClientPayload json.RawMessage `json:"client_payload"`
		}
		_ = json.Unmarshal(body, &req)
		f.dispatches = append(f.dispatches, Dispatch{Repo: repo, EventType: req.EventType, Payload: req.ClientPayload})
		w.WriteHeader(http.StatusNoContent)
	case "actions":
		f.serveActions(w, r, repo, rest[1:])
	default:
		notFound(w)
	}
}

func (f *FakeHosting) serveContents(w http.ResponseWriter, r *http.Request, repo, path string, body []byte) {
	key := repo + ":" + path
	switch r.Method {
	case http.MethodGet:
		content, ok := f.files[key]
		if !ok {
			notFound(w)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"sha": blobSHA(content)})
	case http.MethodPut:
		var req struct {
			Content string `json:"content"`
			SHA     string `json:"sha"`
		}
		_ = json.Unmarshal(body, &req)
		if existing, ok := f.files[key]; ok && req.SHA != blobSHA(existing) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "sha wasn't supplied"})
			return
		}
		decoded, err := base64.StdEncoding.DecodeString(req.Content)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad content"})
			return
		}
		f.files[key] = decoded
		writeJSON(w, http.StatusCreated, map[string]any{"content": map[string]string{"sha": blobSHA(decoded)}})
	default:
		notFound(w)
	}
}

func (f *FakeHosting) serveGit(w http.ResponseWriter, r *http.Request, repo string, rest []string, body []byte) {
	if len(rest) == 0 {
		notFound(w)
		return
	}
	switch {
	case rest[0] == "blobs" && r.Method == http.MethodPost:
		var req struct {
			Content  string `json:"content"`
			Encoding string `json:"encoding"`
		}
		_ = json.Unmarshal(body, &req)
		decoded, err := base64.StdEncoding.DecodeString(req.Content)
		if err != nil || req.Encoding != "base64" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad blob"})
			return
		}
		sha := blobSHA(decoded)
		f.blobs[sha] = decoded
		writeJSON(w, http.StatusCreated, map[string]string{"sha": sha})
	case rest[0] == "ref" && r.Method == http.MethodGet && len(rest) >= 3:
		sha, ok := f.refs[repo+"@"+strings.Join(rest[2:], "/")]
		if !ok {
			notFound(w)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"object": map[string]string{"sha": sha}})
	case rest[0] == "refs" && r.Method == http.MethodPatch && len(rest) >= 3:
		var req struct {
			SHA string `json:"sha"`
		}
		_ = json.Unmarshal(body, &req)
		if _, ok := f.commits[req.SHA]; !ok {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "unknown commit"})
			return
		}
		f.refs[repo+"@"+strings.Join(rest[2:], "/")] = req.SHA
		writeJSON(w, http.StatusOK, map[string]any{"object": map[string]string{"sha": req.SHA}})
	case rest[0] == "commits" && r.Method == http.MethodGet && len(rest) == 2:
		c, ok := f.commits[rest[1]]
		if !ok {
			notFound(w)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"sha": rest[1], "tree": map[string]string{"sha": c.Tree}})
	case rest[0] == "commits" && r.Method == http.MethodPost:
		var req struct {
			Message string   `json:"message"`
			Tree    string   `json:"tree"`
			Parents []string `json:"parents"`
		}
		_ = json.Unmarshal(body, &req)
		sha := f.id("commit")
		f.commits[sha] = fakeCommit{Tree: req.Tree, Parents: req.Parents, Message: req.Message}
		writeJSON(w, http.StatusCreated, map[string]string{"sha": sha})
	case rest[0] == "trees" && r.Method == http.MethodPost:
		var req struct {
			BaseTree string              `json:"base_tree"`
			Tree     []hosting.TreeEntry `json:"tree"`
		}
		_ = json.Unmarshal(body, &req)
		entries := append(append([]hosting.TreeEntry(nil), f.trees[req.BaseTree]...), req.Tree...)
		sha := f.id("tree")
		f.trees[sha] = entries
		writeJSON(w, http.StatusCreated, map[string]string{"sha": sha})
	default:
		notFound(w)
	}
}

func (f *FakeHosting) serveReleases(w http.ResponseWriter, r *http.Request, repo string, rest []string, body []byte) {
	switch {
	case len(rest) == 2 && rest[0] == "tags" && r.Method == http.MethodGet:
		rel, ok := f.releases[repo+"#"+rest[1]]
		if !ok {
			notFound(w)
			return
		}
		writeJSON(w, http.StatusOK, rel)
	case len(rest) == 0 && r.Method == http.MethodPost:
		var req struct {
			TagName string `json:"tag_name"`
		}
		_ = json.Unmarshal(body, &req)
		if _, exists := f.releases[repo+"#"+req.TagName]; exists || req.TagName == "" {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Validation Failed"})
			return
		}
		writeJSON(w, http.StatusCreated, f.newRelease(repo, req.TagName))
	case len(rest) == 2 && rest[0] == "assets" && r.Method == http.MethodDelete:
		id, _ := strconv.ParseInt(rest[1], 10, 64)
		for _, rel := range f.releases {
			for i, a := range rel.Assets {
				if a.ID == id {
					rel.Assets = append(rel.Assets[:i], rel.Assets[i+1:]...)
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}
		}
		notFound(w)
	default:
		notFound(w)
	}
}

func (f *FakeHosting) serveUpload(w http.ResponseWriter, r *http.Request, body []byte) {
	name := r.URL.Query().Get("name")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rel := range f.releases {
		if !strings.HasPrefix(rel.UploadURL, f.Server.URL+r.URL.Path) {
			continue
		}
		if _, dup := rel.FindAsset(name); dup {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "already_exists"})
			return
		}
		f.nextID++
		asset := hosting.Asset{ID: f.nextID, Name: name, Size: int64(len(body))}
		rel.Assets = append(rel.Assets, asset)
		f.uploads[asset.ID] = body
		writeJSON(w, http.StatusCreated, asset)
		return
	}
	notFound(w)
}

func (f *FakeHosting) serveActions(w http.ResponseWriter, r *http.Request, repo string, rest []string) {
	switch {
	case len(rest) == 3 && rest[0] == "workflows" && rest[2] == "runs":
		created := r.URL.Query().Get("created")
		var runs []hosting.WorkflowRun
		if f.ListRuns != nil {
			runs = f.ListRuns(created)
		} else {
			runs = f.defaultRuns(created)
		}
		if n, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && n > 0 && len(runs) > n {
			runs = runs[:n]
		}
		writeJSON(w, http.StatusOK, map[string]any{"total_count": len(runs), "workflow_runs": runs})
	case len(rest) == 2 && rest[0] == "runs":
		id, _ := strconv.ParseInt(rest[1], 10, 64)
		run, ok := f.runs[id]
		if !ok {
			notFound(w)
			return
		}
		writeJSON(w, http.StatusOK, run)
	case len(rest) == 3 && rest[0] == "runs" && rest[2] == "artifacts":
		id, _ := strconv.ParseInt(rest[1], 10, 64)
		writeJSON(w, http.StatusOK, map[string]any{"artifacts": f.artifacts[id]})
	case len(rest) == 3 && rest[0] == "artifacts" && rest[2] == "zip":
		http.Redirect(w, r, f.Server.URL+"/download/"+rest[1], http.StatusFound)
	default:
		notFound(w)
	}
}

func (f *FakeHosting) defaultRuns(created string) []hosting.WorkflowRun {
	var since time.Time
	if v := strings.TrimPrefix(created, ">="); v != "" {
		since, _ = time.Parse(time.RFC3339, v)
	}
	var out []hosting.WorkflowRun
	for _, run := range f.runs {
		if !since.IsZero() && run.CreatedAt.Before(since) {
			continue
		}
		out = append(out, run)
	}
	// newest first
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].CreatedAt.After(out[j-1].CreatedAt); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func blobSHA(content []byte) string {
	sum := sha1.Sum(append([]byte(fmt.Sprintf("blob %d\x00", len(content))), content...))
	return hex.EncodeToString(sum[:])
}
