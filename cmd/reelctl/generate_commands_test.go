package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateTranscriptRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t)

	out, stderr, err := runCLI(t, []string{"generate", "transcript", "--text", "雨の日は家で映画", "--target", "tiktok", "--save"}, env.configPath)
	if err != nil {
		t.Fatalf("generate transcript: %v", err)
	}
	requireContains(t, out, "title: 雨の日の過ごし方")
	requireContains(t, stderr, "Saved history entry")
	requireContains(t, stderr, "Saved script")
	if env.webhook.count("sync-save-history") != 1 {
		t.Fatal("expected history to be pushed once")
	}

	out, _, err = runCLI(t, []string{"history", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, "雨の日の過ごし方")
	requireContains(t, out, "TikTok")

	out, _, err = runCLI(t, []string{"scripts", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("scripts list: %v", err)
	}
	requireContains(t, out, "雨の日の過ごし方")
}

func TestGenerateRejectionKeepsServerText(t *testing.T) {
	env := setupCLITestEnv(t)
	env.webhook.fail["generate"] = "APIキーが無効です"

	_, _, err := runCLI(t, []string{"generate", "transcript", "--text", "x"}, env.configPath)
	if err == nil || err.Error() != "APIキーが無効です" {
		t.Fatalf("expected server text as error, got %v", err)
	}
}

func TestGenerateEmpathyFlow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"generate", "questions", "--text", "失敗談", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("generate questions: %v", err)
	}
	questionsPath := filepath.Join(t.TempDir(), "questions.json")
	if err := os.WriteFile(questionsPath, []byte(out), 0o644); err != nil {
		t.Fatalf("write questions: %v", err)
	}

	if _, _, err := runCLI(t, []string{"generate", "answer", "--text", "失敗談", "--questions", questionsPath}, env.configPath); err == nil {
		t.Fatal("expected missing answers to be rejected")
	}
	if env.webhook.count("generate-empathy") != 0 {
		t.Fatal("webhook must not be called with missing answers")
	}

	out, _, err = runCLI(t, []string{"generate", "answer", "--text", "失敗談", "--questions", questionsPath, "--answer", "初日の朝"}, env.configPath)
	if err != nil {
		t.Fatalf("generate answer: %v", err)
	}
	if env.webhook.count("generate-empathy") != 1 {
		t.Fatal("expected one empathy generation")
	}
}

func TestMemoCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"memo", "set", "撮影は", "土曜"}, env.configPath); err != nil {
		t.Fatalf("memo set: %v", err)
	}
	out, _, err := runCLI(t, []string{"memo", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("memo show: %v", err)
	}
	requireContains(t, out, "撮影は 土曜")
	if _, _, err := runCLI(t, []string{"memo", "clear"}, env.configPath); err != nil {
		t.Fatalf("memo clear: %v", err)
	}
	out, _, _ = runCLI(t, []string{"memo", "show"}, env.configPath)
	if out != "\n" {
		t.Fatalf("expected empty memo, got %q", out)
	}
}
