package config_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"reelctl/internal/config"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	for _, key := range []string{"REELCTL_API_URL", "REELCTL_GITHUB_TOKEN", "GITHUB_TOKEN", "REELCTL_WEBHOOK_URL", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY"} {
		t.Setenv(key, "")
	}
	return home
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	home := isolate(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(home, ".config", "reelctl", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.Paths.DataDir != filepath.Join(home, ".local", "share", "reelctl") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Render.APIURL != "http://localhost:3002" {
		t.Fatalf("unexpected api url %q", cfg.Render.APIURL)
	}
	if cfg.PollInterval().Milliseconds() != 1500 {
		t.Fatalf("unexpected poll interval %s", cfg.PollInterval())
	}
	if cfg.LookupDelay().Seconds() != 3 {
		t.Fatalf("unexpected lookup delay %s", cfg.LookupDelay())
	}
	if cfg.Upload.MaxWidth != 720 || cfg.Upload.BitrateBPS != 2_000_000 {
		t.Fatalf("unexpected transcode bounds: %+v", cfg.Upload)
	}
	if cfg.StorePath() != filepath.Join(cfg.Paths.DataDir, "reelctl.db") {
		t.Fatalf("unexpected store path %q", cfg.StorePath())
	}
}

func TestLoadEnvFallbacks(t *testing.T) {
	isolate(t)
	t.Setenv("GITHUB_TOKEN", "ghp_env")
	t.Setenv("REELCTL_WEBHOOK_URL", "https://script.example.com/exec")
	t.Setenv("REELCTL_API_URL", "http://render.local:3002/")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Hosting.Token != "ghp_env" {
		t.Fatalf("expected token from env, got %q", cfg.Hosting.Token)
	}
	if cfg.Webhook.URL != "https://script.example.com/exec" {
		t.Fatalf("expected webhook from env, got %q", cfg.Webhook.URL)
	}
	if cfg.Render.APIURL != "http://render.local:3002" {
		t.Fatalf("expected trimmed api url, got %q", cfg.Render.APIURL)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	isolate(t)
	os.Unsetenv("REELCTL_WEBHOOK_URL")
	if err := os.WriteFile(".env", []byte("REELCTL_WEBHOOK_URL=https://dotenv.example.com/exec\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("REELCTL_WEBHOOK_URL") })

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Webhook.URL != "https://dotenv.example.com/exec" {
		t.Fatalf("expected webhook from .env, got %q", cfg.Webhook.URL)
	}
}

func TestLoadCustomPath(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "reelctl.toml")

	cfg := config.Default()
	cfg.Render.Mode = config.RenderModeWorkflow
	cfg.Upload.Strategy = config.StrategyRelease
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution %q exists=%v", resolved, exists)
	}
	if loaded.Render.Mode != config.RenderModeWorkflow || loaded.Upload.Strategy != config.StrategyRelease {
		t.Fatalf("unexpected loaded values: %+v %+v", loaded.Render, loaded.Upload)
	}
	if err := loaded.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if _, err := os.Stat(loaded.Paths.DataDir); err != nil {
		t.Fatalf("expected data dir: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"render.mode":       func(c *config.Config) { c.Render.Mode = "batch" },
		"upload.strategy":   func(c *config.Config) { c.Upload.Strategy = "ftp" },
		"object_store":      func(c *config.Config) { c.Upload.Strategy = config.StrategyObjectStore },
		"upload.transcoder": func(c *config.Config) { c.Upload.Transcoder = "handbrake" },
		"export.repo":       func(c *config.Config) { c.Export.Repo = "no-slash" },
		"webhook.url":       func(c *config.Config) { c.Webhook.URL = "ftp://x" },
		"logging.format":    func(c *config.Config) { c.Logging.Format = "xml" },
	}
	for want, mutate := range cases {
		cfg := config.Default()
		mutate(&cfg)
		err := cfg.Validate()
		if err == nil {
			t.Fatalf("expected validation error for %s", want)
		}
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %q", want, err.Error())
		}
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample should load: exists=%v err=%v", exists, err)
	}
}

func TestEffectiveAppliesSettings(t *testing.T) {
	cfg := config.Default()
	cfg.Webhook.URL = "https://file.example.com"

	eff, err := config.Effective(context.Background(), &cfg, config.StaticSettings{
		APIURL:      "http://10.0.0.2:3002/",
		GitHubToken: "tok",
		WebhookURL:  "https://record.example.com",
	})
	if err != nil {
		t.Fatalf("Effective: %v", err)
	}
	if eff.Webhook.URL != "https://record.example.com" {
		t.Fatalf("expected record webhook, got %q", eff.Webhook.URL)
	}
	if eff.Render.APIURL != "http://10.0.0.2:3002" {
		t.Fatalf("unexpected api url %q", eff.Render.APIURL)
	}
	if eff.Export.Repo != cfg.Export.Repo {
		t.Fatalf("empty record field should keep file value, got %q", eff.Export.Repo)
	}
	if cfg.Hosting.Token != "" {
		t.Fatal("Effective must not mutate the input config")
	}
}

func TestSettingsMergeAndRedact(t *testing.T) {
	base := config.Settings{APIURL: "http://a", GitHubToken: "ghp_1234567890"}
	merged := base.Merge(config.Settings{GitHubRepo: "/me/notes/"})
	if merged.APIURL != "http://a" || merged.GitHubRepo != "me/notes" {
		t.Fatalf("unexpected merge: %+v", merged)
	}
	if red := merged.Redacted().GitHubToken; red != "ghp_****7890" {
		t.Fatalf("unexpected redaction %q", red)
	}
}
