package webhook_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"reelctl/internal/reel"
	"reelctl/internal/services"
	"reelctl/internal/webhook"
)

type recorded struct {
	contentType string
	body        map[string]any
}

func newServer(t *testing.T, handler func(w http.ResponseWriter, body map[string]any)) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.contentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		rec.body = map[string]any{}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &rec.body); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		handler(w, rec.body)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestGenerateSendsEnvelope(t *testing.T) {
	srv, rec := newServer(t, func(w http.ResponseWriter, _ map[string]any) {
		_, _ = io.WriteString(w, `{"ok":true,"script":{"title":"朝活","scenes":[{"text":"hi","expression":"idea","emphasis":["hi"]}]},"yaml":"title: 朝活"}`)
	})
	client := webhook.New(srv.URL)

	targets := reel.Targets{reel.PlatformReel, reel.PlatformTikTok}
	gen, err := client.Generate(context.Background(), "transcript", reel.TemplateStory, targets)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if rec.contentType != "text/plain" {
		t.Fatalf("expected text/plain content type, got %q", rec.contentType)
	}
	if rec.body["action"] != "generate" || rec.body["template"] != "story" || rec.body["transcript"] != "transcript" {
		t.Fatalf("unexpected envelope %v", rec.body)
	}
	if got := rec.body["targets"].([]any); len(got) != 2 || got[0] != "リール" {
		t.Fatalf("unexpected targets %v", got)
	}
	if gen.Script.Title != "朝活" || gen.Markup != "title: 朝活" || len(gen.Script.Scenes) != 1 {
		t.Fatalf("unexpected generation %+v", gen)
	}
}

func TestEnvelopeErrorSurfacesExactText(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, _ map[string]any) {
		_, _ = io.WriteString(w, `{"ok":false,"error":"quota exceeded"}`)
	})
	_, err := webhook.New(srv.URL).Generate(context.Background(), "t", reel.TemplatePREP, reel.DefaultTargets())
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "quota exceeded" {
		t.Fatalf("expected exact server text, got %q", err.Error())
	}
	var envErr *webhook.EnvelopeError
	if !errors.As(err, &envErr) || envErr.Action != "generate" {
		t.Fatalf("expected EnvelopeError, got %T", err)
	}
	if !errors.Is(err, services.ErrSemantic) {
		t.Fatal("expected semantic marker")
	}
}

func TestEnvelopeErrorFallbacks(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, _ map[string]any) {
		_, _ = io.WriteString(w, `{"ok":false}`)
	})
	client := webhook.New(srv.URL)
	ctx := context.Background()

	cases := []struct {
		name string
		call func() error
		want string
	}{
		{"generate", func() error {
			_, err := client.Generate(ctx, "t", reel.TemplatePREP, reel.DefaultTargets())
			return err
		}, "script generation failed"},
		{"questions", func() error {
			_, err := client.Questions(ctx, "t", reel.DefaultTargets())
			return err
		}, "question generation failed"},
		{"save", func() error { return client.SaveScripts(ctx, nil) }, "save failed"},
		{"load", func() error {
			_, err := client.LoadScripts(ctx)
			return err
		}, "load failed"},
		{"delete", func() error { return client.DeleteScript(ctx, "x") }, "delete failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			if err == nil || err.Error() != tc.want {
				t.Fatalf("expected %q, got %v", tc.want, err)
			}
		})
	}
}

func TestHTTPErrorMessage(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, _ map[string]any) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := webhook.New(srv.URL).LoadScripts(context.Background())
	if err == nil || err.Error() != "HTTP 500: Internal Server Error" {
		t.Fatalf("unexpected error %v", err)
	}
	if !errors.Is(err, services.ErrTransport) {
		t.Fatal("expected transport marker")
	}
}

func TestMissingURLFailsBeforeRequest(t *testing.T) {
	var calls atomic.Int32
	doer := doerFunc(func(*http.Request) (*http.Response, error) {
		calls.Add(1)
		return nil, errors.New("unexpected")
	})
	client := webhook.New("  ", webhook.WithHTTPClient(doer))
	if _, err := client.LoadHistory(context.Background()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatal("no request should be issued")
	}
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

func TestSyncActions(t *testing.T) {
	var saved []any
	srv, rec := newServer(t, func(w http.ResponseWriter, body map[string]any) {
		switch body["action"] {
		case "sync-load":
			_, _ = io.WriteString(w, `{"ok":true,"scripts":[{"id":"script-1","name":"a","preset":"coral","scenes":[],"createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-02T00:00:00Z"}]}`)
		case "sync-load-history":
			_, _ = io.WriteString(w, `{"ok":true}`)
		case "sync-save-history":
			saved = body["history"].([]any)
			_, _ = io.WriteString(w, `{"ok":true}`)
		default:
			_, _ = io.WriteString(w, `{"ok":true,"count":0}`)
		}
	})
	client := webhook.New(srv.URL)
	ctx := context.Background()

	scripts, err := client.LoadScripts(ctx)
	if err != nil || len(scripts) != 1 || scripts[0].ID != "script-1" {
		t.Fatalf("LoadScripts: %v %+v", err, scripts)
	}
	if !scripts[0].UpdatedAt.Equal(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected updatedAt %v", scripts[0].UpdatedAt)
	}

	history, err := client.LoadHistory(ctx)
	if err != nil || history == nil || len(history) != 0 {
		t.Fatalf("LoadHistory: %v %v", err, history)
	}

	if err := client.SaveHistory(ctx, nil); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}
	if saved == nil || len(saved) != 0 {
		t.Fatalf("expected empty history array on the wire, got %v", saved)
	}

	if err := client.DeleteScript(ctx, "script-9"); err != nil {
		t.Fatalf("DeleteScript: %v", err)
	}
	if rec.body["action"] != "sync-delete" || rec.body["id"] != "script-9" {
		t.Fatalf("unexpected delete envelope %v", rec.body)
	}
}

func TestTestConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		_, _ = io.WriteString(w, `{"ok":true,"message":"ready"}`)
	}))
	defer srv.Close()

	got := webhook.New(srv.URL).TestConnection(context.Background())
	if !got.OK || got.Message != "ready" {
		t.Fatalf("unexpected result %+v", got)
	}

	if got := webhook.New("").TestConnection(context.Background()); got.OK {
		t.Fatal("empty url must not report ok")
	}
}

func TestTestConnectionTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := webhook.New(srv.URL, webhook.WithConnectionTimeout(50*time.Millisecond))
	started := time.Now()
	got := client.TestConnection(context.Background())
	if got.OK {
		t.Fatal("expected failure on timeout")
	}
	if elapsed := time.Since(started); elapsed > 2*time.Second {
		t.Fatalf("timeout not enforced, took %v", elapsed)
	}
}
