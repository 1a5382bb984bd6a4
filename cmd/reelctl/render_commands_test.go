package main

import (
	"strings"
	"testing"
)

func TestRenderDispatchWatchesToCompletion(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"scripts", "new", "--name", "render me", "--scene", "hello"}, env.configPath)
	if err != nil {
		t.Fatalf("scripts new: %v", err)
	}
	id := createdID(t, out)

	out, _, err = runCLI(t, []string{"render", "dispatch", id, "--watch"}, env.configPath)
	if err != nil {
		t.Fatalf("render dispatch: %v", err)
	}
	requireContains(t, out, "Dispatched render me as job proj-42 (polling)")
	requireContains(t, out, "proj-42  completed")
}

func TestRenderDispatchRejectsEmptyScript(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"scripts", "new", "--name", "empty"}, env.configPath)
	if err != nil {
		t.Fatalf("scripts new: %v", err)
	}
	id := createdID(t, out)

	_, _, err = runCLI(t, []string{"render", "dispatch", id}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "no scenes") {
		t.Fatalf("expected no-scenes error, got %v", err)
	}
	if env.backend.statusCalls.Load() != 0 {
		t.Fatal("backend must not be polled")
	}
}

func TestBackendPresetsTable(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"backend", "presets"}, env.configPath)
	if err != nil {
		t.Fatalf("backend presets: %v", err)
	}
	requireContains(t, out, "coral")
	requireContains(t, out, "ja-JP-Nanami")
}

func TestDoctorReportsMissingToken(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err == nil {
		t.Fatal("expected doctor to fail without a hosting token")
	}
	requireContains(t, out, "Hosting token")
	requireContains(t, out, "[FAIL] missing (needed for markdown export)")
	requireContains(t, out, "[OK] connected")

	if _, _, err := runCLI(t, []string{"config", "set", "--github-token", "ghp_1234567890abcd"}, env.configPath); err != nil {
		t.Fatalf("config set: %v", err)
	}
	out, _, err = runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor after token: %v\n%s", err, out)
	}
	requireContains(t, out, "[OK] set for markdown export")
}
