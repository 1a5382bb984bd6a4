package main

import (
	"strings"
	"testing"
)

func TestScriptsLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"scripts", "new",
		"--name", "朝のルーティン",
		"--scene", "白湯を飲む|idea|白湯",
		"--scene", "ストレッチ",
		"--cta", "フォローしてね|",
	}, env.configPath)
	if err != nil {
		t.Fatalf("scripts new: %v", err)
	}
	id := createdID(t, out)
	if env.webhook.count("sync-save") == 0 {
		t.Fatal("expected the new script to be pushed")
	}

	out, _, err = runCLI(t, []string{"scripts", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("scripts list: %v", err)
	}
	requireContains(t, out, id)
	requireContains(t, out, "朝のルーティン")

	out, _, err = runCLI(t, []string{"scripts", "show", id}, env.configPath)
	if err != nil {
		t.Fatalf("scripts show: %v", err)
	}
	requireContains(t, out, "[ひらめき] 白湯を飲む")
	requireContains(t, out, "[通常] ストレッチ")
	requireContains(t, out, "CTA: [お辞儀] フォローしてね")

	if _, _, err := runCLI(t, []string{"scripts", "edit", id, "--name", "夜のルーティン"}, env.configPath); err != nil {
		t.Fatalf("scripts edit: %v", err)
	}
	out, _, err = runCLI(t, []string{"scripts", "show", id, "--yaml"}, env.configPath)
	if err != nil {
		t.Fatalf("scripts show --yaml: %v", err)
	}
	requireContains(t, out, "style: natural")
	requireContains(t, out, "白湯を飲む")

	out, _, err = runCLI(t, []string{"scripts", "export", id}, env.configPath)
	if err != nil {
		t.Fatalf("scripts export: %v", err)
	}
	if !strings.HasPrefix(out, "# 夜のルーティン") {
		t.Fatalf("unexpected note %q", out)
	}

	if _, _, err := runCLI(t, []string{"scripts", "delete", id}, env.configPath); err != nil {
		t.Fatalf("scripts delete: %v", err)
	}
	if env.webhook.count("sync-delete") != 1 {
		t.Fatal("expected a remote delete")
	}
	if _, _, err := runCLI(t, []string{"scripts", "show", id}, env.configPath); err == nil {
		t.Fatal("expected show to fail after delete")
	}
}

func TestScriptsNewRejectsUnknownExpression(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"scripts", "new", "--scene", "踊る|dancing"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "unknown expression") {
		t.Fatalf("expected unknown expression error, got %v", err)
	}
}

func TestParseScene(t *testing.T) {
	scene, err := parseScene(" 白湯 | surprised | a, b ,| fire.png ")
	if err != nil {
		t.Fatalf("parseScene: %v", err)
	}
	if scene.Text != "白湯" || scene.Expression != "surprised" || scene.Overlay != "fire.png" {
		t.Fatalf("unexpected scene %+v", scene)
	}
	if len(scene.Emphasis) != 2 || scene.Emphasis[0] != "a" || scene.Emphasis[1] != "b" {
		t.Fatalf("unexpected emphasis %v", scene.Emphasis)
	}
	if _, err := parseScene("|idea"); err == nil {
		t.Fatal("expected empty text to fail")
	}
}

func TestSyncScriptsPullsRemote(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"scripts", "new", "--name", "local"}, env.configPath)
	if err != nil {
		t.Fatalf("scripts new: %v", err)
	}
	createdID(t, out)

	out, _, err = runCLI(t, []string{"sync", "scripts"}, env.configPath)
	if err != nil {
		t.Fatalf("sync scripts: %v", err)
	}
	requireContains(t, out, "Synced scripts: 1 merged")
}
