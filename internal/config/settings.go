package config

import (
	"context"
	"strings"
)

// Settings is the persisted configuration record edited through
// `reelctl config set` or the local API. Non-empty fields override the values
// loaded from the TOML file.
type Settings struct {
	APIURL      string `json:"apiUrl"`
	GitHubToken string `json:"githubToken"`
	GitHubRepo  string `json:"githubRepo"`
	WebhookURL  string `json:"gasUrl"`
}

// SettingsProvider supplies the persisted configuration record.
type SettingsProvider interface {
	Settings(ctx context.Context) (Settings, error)
}

// StaticSettings is a SettingsProvider that always returns the same record.
type StaticSettings Settings

// Settings implements SettingsProvider.
func (s StaticSettings) Settings(context.Context) (Settings, error) {
	return Settings(s), nil
}

// Merge returns s with every non-empty field of patch applied.
func (s Settings) Merge(patch Settings) Settings {
	if v := strings.TrimSpace(patch.APIURL); v != "" {
		s.APIURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(patch.GitHubToken); v != "" {
		s.GitHubToken = v
	}
	if v := strings.TrimSpace(patch.GitHubRepo); v != "" {
		s.GitHubRepo = strings.Trim(v, "/")
	}
	if v := strings.TrimSpace(patch.WebhookURL); v != "" {
		s.WebhookURL = v
	}
	return s
}

// Redacted masks the access token for display.
func (s Settings) Redacted() Settings {
	if s.GitHubToken != "" {
		s.GitHubToken = redact(s.GitHubToken)
	}
	return s
}

// Apply returns a copy of c with the persisted record layered on top.
func (c Config) Apply(s Settings) *Config {
	if v := strings.TrimSpace(s.APIURL); v != "" {
		c.Render.APIURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(s.GitHubToken); v != "" {
		c.Hosting.Token = v
	}
	if v := strings.TrimSpace(s.GitHubRepo); v != "" {
		c.Export.Repo = strings.Trim(v, "/")
	}
	if v := strings.TrimSpace(s.WebhookURL); v != "" {
		c.Webhook.URL = v
	}
	return &c
}

// Effective reads the persisted record and applies it over cfg.
func Effective(ctx context.Context, cfg *Config, provider SettingsProvider) (*Config, error) {
	if cfg == nil {
		d := Default()
		cfg = &d
	}
	if provider == nil {
		clone := *cfg
		return &clone, nil
	}
	settings, err := provider.Settings(ctx)
	if err != nil {
		return nil, err
	}
	return cfg.Apply(settings), nil
}

// SettingsFromConfig reports the effective values in record form.
func SettingsFromConfig(cfg *Config) Settings {
	if cfg == nil {
		return Settings{}
	}
	return Settings{
		APIURL:      cfg.Render.APIURL,
		GitHubToken: cfg.Hosting.Token,
		GitHubRepo:  cfg.Export.Repo,
		WebhookURL:  cfg.Webhook.URL,
	}
}

func redact(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "****" + value[len(value)-4:]
}
