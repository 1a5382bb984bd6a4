package localstore_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"reelctl/internal/config"
	"reelctl/internal/localstore"
	"reelctl/internal/reel"
	"reelctl/internal/testsupport"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestScriptsRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	clock := &fakeClock{t: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}
	store := testsupport.MustOpenStore(t, cfg, localstore.WithClock(clock.now))
	ctx := context.Background()

	scripts, err := store.Scripts(ctx)
	if err != nil {
		t.Fatalf("Scripts: %v", err)
	}
	if len(scripts) != 0 {
		t.Fatalf("expected empty collection, got %d", len(scripts))
	}

	draft := reel.NewScript("first", "", clock.t)
	draft.Scenes = []reel.Scene{{Text: "hello"}}
	saved, err := store.SaveScript(ctx, draft)
	if err != nil {
		t.Fatalf("SaveScript: %v", err)
	}
	if saved.Scenes[0].Expression != reel.ExpressionNormal {
		t.Fatalf("expected normalized scene, got %+v", saved.Scenes[0])
	}

	clock.advance(time.Minute)
	saved.Name = "renamed"
	saved.CreatedAt = clock.t.Add(time.Hour)
	updated, err := store.SaveScript(ctx, saved)
	if err != nil {
		t.Fatalf("SaveScript update: %v", err)
	}
	if !updated.CreatedAt.Equal(draft.CreatedAt) {
		t.Fatalf("expected createdAt preserved, got %s", updated.CreatedAt)
	}
	if !updated.UpdatedAt.Equal(clock.t) {
		t.Fatalf("expected updatedAt stamped, got %s", updated.UpdatedAt)
	}

	fetched, err := store.GetScript(ctx, draft.ID)
	if err != nil {
		t.Fatalf("GetScript: %v", err)
	}
	if fetched == nil || fetched.Name != "renamed" {
		t.Fatalf("unexpected fetched script %+v", fetched)
	}

	missing, err := store.GetScript(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing script, got %+v %v", missing, err)
	}
}

func TestSaveScriptPrependsNewEntries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	now := time.Now()
	for _, name := range []string{"a", "b", "c"} {
		s := reel.NewScript(name, "", now)
		s.ID = "script-" + name
		if _, err := store.SaveScript(ctx, s); err != nil {
			t.Fatalf("SaveScript %s: %v", name, err)
		}
	}
	scripts, _ := store.Scripts(ctx)
	got := fmt.Sprint(scripts[0].ID, scripts[1].ID, scripts[2].ID)
	if got != fmt.Sprint("script-c", "script-b", "script-a") {
		t.Fatalf("unexpected order %s", got)
	}

	deleted, err := store.DeleteScript(ctx, "script-b")
	if err != nil || !deleted {
		t.Fatalf("DeleteScript: %v %v", deleted, err)
	}
	deleted, err = store.DeleteScript(ctx, "script-b")
	if err != nil || deleted {
		t.Fatalf("expected second delete to report absence, got %v %v", deleted, err)
	}
	scripts, _ = store.Scripts(ctx)
	if len(scripts) != 2 {
		t.Fatalf("expected 2 scripts, got %d", len(scripts))
	}
}

func TestHistoryInsertCapsAtTwenty(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 23 {
		item := reel.HistoryItem{ID: fmt.Sprintf("h%02d", i), Title: "t", CreatedAt: base.Add(time.Duration(i) * time.Second)}
		items, err := store.InsertHistory(ctx, item)
		if err != nil {
			t.Fatalf("InsertHistory: %v", err)
		}
		if len(items) > reel.HistoryLimit {
			t.Fatalf("history exceeded cap: %d", len(items))
		}
	}
	items, err := store.History(ctx)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(items) != reel.HistoryLimit || items[0].ID != "h22" || items[len(items)-1].ID != "h03" {
		t.Fatalf("unexpected history window: first=%s last=%s len=%d", items[0].ID, items[len(items)-1].ID, len(items))
	}

	remaining, existed, err := store.DeleteHistory(ctx, "h10")
	if err != nil || !existed || len(remaining) != reel.HistoryLimit-1 {
		t.Fatalf("DeleteHistory: existed=%v len=%d err=%v", existed, len(remaining), err)
	}
	if got, _ := store.GetHistory(ctx, "h10"); got != nil {
		t.Fatal("expected deleted entry to be gone")
	}
}

func TestMemo(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if memo, err := store.Memo(ctx); err != nil || memo != "" {
		t.Fatalf("expected empty memo, got %q %v", memo, err)
	}
	if err := store.SetMemo(ctx, "draft transcript"); err != nil {
		t.Fatalf("SetMemo: %v", err)
	}
	if memo, _ := store.Memo(ctx); memo != "draft transcript" {
		t.Fatalf("unexpected memo %q", memo)
	}
	if err := store.ClearMemo(ctx); err != nil {
		t.Fatalf("ClearMemo: %v", err)
	}
	if memo, _ := store.Memo(ctx); memo != "" {
		t.Fatalf("expected cleared memo, got %q", memo)
	}
}

func TestSettingsProvider(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := store.SaveSettings(ctx, config.Settings{WebhookURL: "https://hook.example.com"}); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	merged, err := store.SaveSettings(ctx, config.Settings{GitHubToken: "tok"})
	if err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if merged.WebhookURL != "https://hook.example.com" || merged.GitHubToken != "tok" {
		t.Fatalf("expected merge of successive patches, got %+v", merged)
	}

	eff, err := config.Effective(ctx, cfg, store)
	if err != nil {
		t.Fatalf("Effective: %v", err)
	}
	if eff.Webhook.URL != "https://hook.example.com" || eff.Hosting.Token != "tok" {
		t.Fatalf("unexpected effective config %+v %+v", eff.Webhook, eff.Hosting)
	}
}

func TestReopenKeepsData(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	first, err := localstore.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := first.SetMemo(ctx, "persisted"); err != nil {
		t.Fatalf("SetMemo: %v", err)
	}
	first.Close()

	second := testsupport.MustOpenStore(t, cfg)
	if memo, _ := second.Memo(ctx); memo != "persisted" {
		t.Fatalf("expected memo after reopen, got %q", memo)
	}
}
