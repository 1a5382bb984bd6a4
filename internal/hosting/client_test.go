package hosting_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reelctl/internal/hosting"
	"reelctl/internal/services"
	"reelctl/internal/testsupport"
)

const repo = "acme/assets"

func newClient(f *testsupport.FakeHosting) *hosting.Client {
	return hosting.New(f.URL(), f.Token, hosting.WithRateLimit(0, 0))
}

func TestContentsRoundTrip(t *testing.T) {
	fake := testsupport.NewFakeHosting(t, "tok")
	client := newClient(fake)
	ctx := context.Background()

	_, found, err := client.ContentSHA(ctx, repo, "notes/a.md", "main")
	if err != nil || found {
		t.Fatalf("expected missing file, found=%v err=%v", found, err)
	}
	if _, err := client.PutContent(ctx, repo, "notes/a.md", hosting.PutContentRequest{Message: "add", Content: []byte("one")}); err != nil {
		t.Fatalf("PutContent: %v", err)
	}
	sha, found, err := client.ContentSHA(ctx, repo, "notes/a.md", "main")
	if err != nil || !found || sha == "" {
		t.Fatalf("ContentSHA after put: %q %v %v", sha, found, err)
	}

	_, err = client.PutContent(ctx, repo, "notes/a.md", hosting.PutContentRequest{Message: "update", Content: []byte("two")})
	var apiErr *hosting.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 without sha, got %v", err)
	}
	if _, err := client.PutContent(ctx, repo, "notes/a.md", hosting.PutContentRequest{Message: "update", Content: []byte("two"), SHA: sha}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got, _ := fake.File(repo, "notes/a.md"); string(got) != "two" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestGitDataCommitSequence(t *testing.T) {
	fake := testsupport.NewFakeHosting(t, "tok")
	head := fake.SeedBranch(repo, "main")
	client := newClient(fake)
	ctx := context.Background()

	blob, err := client.CreateBlob(ctx, repo, []byte("video"))
	if err != nil {
		t.Fatalf("CreateBlob: %v", err)
	}
	ref, err := client.RefSHA(ctx, repo, "main")
	if err != nil || ref != head {
		t.Fatalf("RefSHA: %q %v", ref, err)
	}
	commit, err := client.GetCommit(ctx, repo, ref)
	if err != nil || commit.Tree.SHA == "" {
		t.Fatalf("GetCommit: %+v %v", commit, err)
	}
	tree, err := client.CreateTree(ctx, repo, commit.Tree.SHA, []hosting.TreeEntry{hosting.BlobEntry("public/bg/a.mp4", blob)})
	if err != nil {
		t.Fatalf("CreateTree: %v", err)
	}
	next, err := client.CreateCommit(ctx, repo, "add: background a.mp4", tree, []string{ref})
	if err != nil {
		t.Fatalf("CreateCommit: %v", err)
	}
	if err := client.UpdateRef(ctx, repo, "main", next); err != nil {
		t.Fatalf("UpdateRef: %v", err)
	}
	if fake.Head(repo, "main") != next {
		t.Fatal("ref not advanced")
	}
	entries, msg := fake.CommitTree(next)
	if len(entries) != 1 || entries[0].Path != "public/bg/a.mp4" || entries[0].Mode != "100644" || msg != "add: background a.mp4" {
		t.Fatalf("unexpected commit %v %q", entries, msg)
	}
}

func TestReleaseAssets(t *testing.T) {
	fake := testsupport.NewFakeHosting(t, "tok")
	client := newClient(fake)
	ctx := context.Background()

	_, found, err := client.ReleaseByTag(ctx, repo, "backgrounds")
	if err != nil || found {
		t.Fatalf("expected no release, found=%v err=%v", found, err)
	}
	rel, err := client.CreateRelease(ctx, repo, "backgrounds", "backgrounds")
	if err != nil {
		t.Fatalf("CreateRelease: %v", err)
	}
	asset, err := client.UploadAsset(ctx, rel, "a.mp4", "video/mp4", strings.NewReader("data"), 4)
	if err != nil {
		t.Fatalf("UploadAsset: %v", err)
	}
	if string(fake.Uploaded(asset.ID)) != "data" {
		t.Fatal("asset body not stored")
	}
	rel, found, err = client.ReleaseByTag(ctx, repo, "backgrounds")
	if err != nil || !found {
		t.Fatalf("ReleaseByTag: %v", err)
	}
	if _, ok := rel.FindAsset("a.mp4"); !ok {
		t.Fatal("expected asset on release")
	}
	if err := client.DeleteAsset(ctx, repo, asset.ID); err != nil {
		t.Fatalf("DeleteAsset: %v", err)
	}
}

func TestDispatchAndRuns(t *testing.T) {
	fake := testsupport.NewFakeHosting(t, "tok")
	client := newClient(fake)
	ctx := context.Background()

	if err := client.Dispatch(ctx, repo, "render-reel", map[string]string{"name": "x"}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if d := fake.Dispatches(); len(d) != 1 || d[0].EventType != "render-reel" || !bytes.Contains(d[0].Payload, []byte(`"name":"x"`)) {
		t.Fatalf("unexpected dispatches %+v", d)
	}

	since := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	fake.AddRun(hosting.WorkflowRun{ID: 1, Status: "completed", CreatedAt: since.Add(-time.Hour)})
	fake.AddRun(hosting.WorkflowRun{ID: 2, Status: "queued", CreatedAt: since.Add(time.Second)})

	runs, err := client.ListRuns(ctx, repo, "render-reel.yml", hosting.RunFilter{CreatedSince: since.Add(500 * time.Millisecond), PerPage: 1})
	if err != nil || len(runs) != 1 || runs[0].ID != 2 {
		t.Fatalf("filtered ListRuns: %+v %v", runs, err)
	}
	artifact := fake.AddArtifact(2, "reel-video", []byte("zip"))
	artifacts, err := client.RunArtifacts(ctx, repo, 2)
	if err != nil || len(artifacts) != 1 || artifacts[0].Name != "reel-video" {
		t.Fatalf("RunArtifacts: %+v %v", artifacts, err)
	}

	var buf bytes.Buffer
	if _, err := client.Download(ctx, client.ArtifactDownloadURL(repo, artifact.ID), &buf); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if buf.String() != "zip" {
		t.Fatalf("unexpected archive %q", buf.String())
	}

	_, err = client.GetRun(ctx, repo, 99)
	if !errors.Is(err, services.ErrNotFound) || !hosting.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMissingTokenIsConfigurationError(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()

	err := hosting.New(srv.URL, "").Dispatch(context.Background(), repo, "e", nil)
	if !errors.Is(err, services.ErrConfiguration) || called {
		t.Fatalf("expected configuration error without request, got %v called=%v", err, called)
	}
}

func TestRateLimitHonoursContext(t *testing.T) {
	fake := testsupport.NewFakeHosting(t, "tok")
	client := hosting.New(fake.URL(), "tok", hosting.WithRateLimit(0.001, 1))
	ctx := context.Background()
	if _, _, err := client.ContentSHA(ctx, repo, "a", ""); err != nil {
		t.Fatalf("first request: %v", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if _, _, err := client.ContentSHA(ctx, repo, "a", ""); err == nil {
		t.Fatal("expected limiter wait to fail on deadline")
	}
}
