package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
}

func TestConfigSetOverridesAndRedacts(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "set", "--github-token", "ghp_1234567890abcd", "--github-repo", "me/notes"}, env.configPath)
	if err != nil {
		t.Fatalf("config set: %v", err)
	}
	requireContains(t, out, `"githubToken": "ghp_****abcd"`)

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "ghp_****abcd")
	requireContains(t, out, "me/notes")

	if _, _, err := runCLI(t, []string{"config", "set", "--github-repo", "not-a-repo"}, env.configPath); err == nil {
		t.Fatal("expected invalid repo to be rejected")
	}
	if _, _, err := runCLI(t, []string{"config", "set"}, env.configPath); err == nil {
		t.Fatal("expected an error when no flags are given")
	}
}
