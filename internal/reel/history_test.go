package reel_test

import (
	"fmt"
	"testing"
	"time"

	"reelctl/internal/reel"
)

func historyAt(id string, at time.Time) reel.HistoryItem {
	return reel.HistoryItem{ID: id, Title: id, CreatedAt: at}
}

func TestPrependHistoryCapsAtLimit(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var items []reel.HistoryItem
	for i := 0; i < 25; i++ {
		items = reel.PrependHistory(items, historyAt(fmt.Sprintf("h%02d", i), base.Add(time.Duration(i)*time.Minute)), reel.HistoryLimit)
		if len(items) > reel.HistoryLimit {
			t.Fatalf("history exceeded cap after insert %d: %d", i, len(items))
		}
	}
	if items[0].ID != "h24" {
		t.Fatalf("expected newest first, got %s", items[0].ID)
	}
	if items[len(items)-1].ID != "h05" {
		t.Fatalf("expected h00..h04 evicted, tail is %s", items[len(items)-1].ID)
	}
}

func TestCapHistoryEvictsOldestNotTail(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []reel.HistoryItem{
		historyAt("new", base.Add(3*time.Hour)),
		historyAt("oldest", base),
		historyAt("mid", base.Add(2*time.Hour)),
	}
	got := reel.CapHistory(items, 2)
	if len(got) != 2 || got[0].ID != "new" || got[1].ID != "mid" {
		t.Fatalf("unexpected survivors %+v", got)
	}
}

func TestPrependHistoryReplacesSameID(t *testing.T) {
	now := time.Now()
	items := []reel.HistoryItem{historyAt("a", now), historyAt("b", now)}
	got := reel.PrependHistory(items, historyAt("b", now.Add(time.Second)), reel.HistoryLimit)
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("unexpected order %+v", got)
	}
}

func TestGeneratedScriptToScript(t *testing.T) {
	gen := reel.GeneratedScript{
		Title:  "USJ tips",
		Scenes: []reel.Scene{{Text: "one"}, {Text: "two", Expression: reel.ExpressionIdea, Emphasis: []string{"two"}}},
		CTA:    &reel.CallToAction{Text: "save this"},
	}
	now := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	s := gen.ToScript("", now)
	if s.Name != "USJ tips" || s.Preset != reel.DefaultPreset {
		t.Fatalf("unexpected script header %+v", s)
	}
	if s.Scenes[0].Expression != reel.ExpressionNormal || s.CTA.Expression != reel.ExpressionBow {
		t.Fatalf("expected default poses, got %+v", s)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	gen.Scenes[1].Emphasis[0] = "mutated"
	if s.Scenes[1].Emphasis[0] != "two" {
		t.Fatal("script shares emphasis with draft")
	}
}

func TestNewTargets(t *testing.T) {
	targets, err := reel.NewTargets("reel", "リール", "tiktok", "")
	if err != nil {
		t.Fatalf("NewTargets: %v", err)
	}
	if len(targets) != 2 || targets[0] != reel.PlatformReel || targets[1] != reel.PlatformTikTok {
		t.Fatalf("unexpected targets %v", targets)
	}
	if _, err := reel.NewTargets(); err == nil {
		t.Fatal("expected error for empty target set")
	}
	if _, err := reel.NewTargets("myspace"); err == nil {
		t.Fatal("expected error for unknown platform")
	}
}

func TestParseTemplate(t *testing.T) {
	tmpl, err := reel.ParseTemplate("EMPATHY")
	if err != nil || !tmpl.NeedsQuestions() {
		t.Fatalf("expected empathy needing questions, got %q %v", tmpl, err)
	}
	if tmpl, _ := reel.ParseTemplate(""); tmpl != reel.TemplatePREP {
		t.Fatalf("expected prep default, got %q", tmpl)
	}
	if _, err := reel.ParseTemplate("haiku"); err == nil {
		t.Fatal("expected error for unknown template")
	}
}
