package generate_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"reelctl/internal/backend"
	"reelctl/internal/generate"
	"reelctl/internal/localstore"
	"reelctl/internal/reel"
	"reelctl/internal/services"
	"reelctl/internal/testsupport"
	"reelctl/internal/webhook"
)

var fixedNow = time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

type fakeWebhook struct {
	mu      sync.Mutex
	actions []string
	bodies  []map[string]any
	failOn  string
}

func (f *fakeWebhook) handler(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	body := map[string]any{}
	_ = json.Unmarshal(raw, &body)
	action, _ := body["action"].(string)

	f.mu.Lock()
	f.actions = append(f.actions, action)
	f.bodies = append(f.bodies, body)
	failOn := f.failOn
	f.mu.Unlock()

	if action == failOn {
		_, _ = io.WriteString(w, `{"ok":false,"error":"remote unavailable"}`)
		return
	}
	switch action {
	case "generate", "generate-empathy":
		_, _ = io.WriteString(w, `{"ok":true,"script":{"title":"朝活のすすめ","scenes":[{"text":"早起き","expression":"idea","emphasis":["早起き"]}]},"yaml":"title: 朝活のすすめ"}`)
	case "generate-questions":
		_, _ = io.WriteString(w, `{"ok":true,"questions":[{"question":"誰に?","purpose":"target"},{"question":"なぜ?","purpose":"motive"}]}`)
	default:
		_, _ = io.WriteString(w, `{"ok":true}`)
	}
}

func (f *fakeWebhook) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.actions...)
}

func (f *fakeWebhook) last() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[len(f.bodies)-1]
}

func newService(t *testing.T, fw *fakeWebhook, opts ...generate.Option) (*generate.Service, *localstore.Store) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(fw.handler))
	t.Cleanup(srv.Close)
	cfg := testsupport.NewConfig(t, testsupport.WithWebhookURL(srv.URL))
	store := testsupport.MustOpenStore(t, cfg)
	client := webhook.NewFromConfig(cfg)
	opts = append([]generate.Option{
		generate.WithHistoryRemote(client),
		generate.WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	return generate.NewService(client, store, opts...), store
}

var targets = reel.Targets{reel.PlatformReel, reel.PlatformThreads}

func TestGenerateRecordsHistoryAndPushes(t *testing.T) {
	fw := &fakeWebhook{}
	svc, store := newService(t, fw)
	ctx := context.Background()

	res, err := svc.Generate(ctx, generate.Request{Transcript: "  毎朝5時に起きる  ", Template: reel.TemplateStory, Targets: targets})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Generation.Script.Title != "朝活のすすめ" || res.Item.Title != "朝活のすすめ" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Item.Transcript != "毎朝5時に起きる" || res.Item.Template != reel.TemplateStory || !res.Item.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected history item %+v", res.Item)
	}

	history, err := store.History(ctx)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].ID != res.Item.ID {
		t.Fatalf("expected the new item in history, got %+v", history)
	}
	actions := fw.seen()
	if len(actions) != 2 || actions[0] != "generate" || actions[1] != "sync-save-history" {
		t.Fatalf("unexpected webhook actions %v", actions)
	}
	pushed, _ := fw.last()["history"].([]any)
	if len(pushed) != 1 {
		t.Fatalf("expected pushed history of 1, got %v", fw.last()["history"])
	}
}

func TestGenerateSucceedsWhenHistoryPushFails(t *testing.T) {
	fw := &fakeWebhook{failOn: "sync-save-history"}
	svc, store := newService(t, fw)
	ctx := context.Background()

	if _, err := svc.Generate(ctx, generate.Request{Transcript: "t", Template: reel.TemplatePREP, Targets: targets}); err != nil {
		t.Fatalf("Generate should ignore push failure: %v", err)
	}
	history, _ := store.History(ctx)
	if len(history) != 1 {
		t.Fatalf("expected local history entry, got %d", len(history))
	}
}

func TestGenerateValidation(t *testing.T) {
	fw := &fakeWebhook{}
	svc, _ := newService(t, fw)
	ctx := context.Background()

	cases := []struct {
		name string
		req  generate.Request
	}{
		{"blank transcript", generate.Request{Transcript: "   ", Targets: targets}},
		{"no targets", generate.Request{Transcript: "t"}},
		{"empathy template", generate.Request{Transcript: "t", Template: reel.TemplateEmpathy, Targets: targets}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Generate(ctx, tc.req); !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if n := len(fw.seen()); n != 0 {
		t.Fatalf("expected no webhook calls, got %d", n)
	}
}

func TestGenerateSemanticErrorKeepsServerText(t *testing.T) {
	fw := &fakeWebhook{failOn: "generate"}
	svc, store := newService(t, fw)
	ctx := context.Background()

	_, err := svc.Generate(ctx, generate.Request{Transcript: "t", Targets: targets})
	var envErr *webhook.EnvelopeError
	if !errors.As(err, &envErr) || err.Error() != "remote unavailable" {
		t.Fatalf("expected envelope error with server text, got %v", err)
	}
	history, _ := store.History(ctx)
	if len(history) != 0 {
		t.Fatalf("failed generation must not record history")
	}
}

func TestEmpathyFlow(t *testing.T) {
	fw := &fakeWebhook{}
	svc, _ := newService(t, fw)
	ctx := context.Background()

	questions, err := svc.Questions(ctx, "transcript", targets)
	if err != nil || len(questions) != 2 {
		t.Fatalf("Questions: %v %+v", err, questions)
	}

	if _, err := svc.Answer(ctx, "transcript", targets, questions, []string{"会社員", "  "}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected blank answer rejection, got %v", err)
	}
	if _, err := svc.Answer(ctx, "transcript", targets, questions, []string{"会社員"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected count mismatch rejection, got %v", err)
	}
	if got := fw.seen(); len(got) != 1 {
		t.Fatalf("rejected answers must not reach the webhook, saw %v", got)
	}

	res, err := svc.Answer(ctx, "transcript", targets, questions, []string{" 会社員 ", "時間がない"})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if res.Item.Template != reel.TemplateEmpathy {
		t.Fatalf("expected empathy history entry, got %s", res.Item.Template)
	}
	actions := fw.seen()
	if actions[1] != "generate-empathy" {
		t.Fatalf("unexpected actions %v", actions)
	}
}

type fakeThemes struct {
	theme string
}

func (f *fakeThemes) GenerateAIScript(_ context.Context, theme string) (backend.AIScript, error) {
	f.theme = theme
	return backend.AIScript{
		Name:   "睡眠の質",
		Preset: "onyx",
		Scenes: []reel.Scene{{Text: "寝る前にスマホを置く"}},
		CTA:    &reel.CallToAction{Text: "保存してね"},
	}, nil
}

func TestFromThemeSavesScript(t *testing.T) {
	themes := &fakeThemes{}
	svc, _ := newService(t, &fakeWebhook{}, generate.WithThemeWriter(themes))

	script, err := svc.FromTheme(context.Background(), " 睡眠 ")
	if err != nil {
		t.Fatalf("FromTheme: %v", err)
	}
	if themes.theme != "睡眠" {
		t.Fatalf("expected trimmed theme, got %q", themes.theme)
	}
	if script.ID == "" || script.Name != "睡眠の質" || script.Preset != "onyx" {
		t.Fatalf("unexpected script %+v", script)
	}
	if script.Scenes[0].Expression != reel.ExpressionNormal || script.CTA.Expression != reel.ExpressionBow {
		t.Fatalf("expected normalized poses, got %+v", script)
	}
}

func TestFromThemeWithoutBackend(t *testing.T) {
	svc, _ := newService(t, &fakeWebhook{})
	if _, err := svc.FromTheme(context.Background(), "睡眠"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
