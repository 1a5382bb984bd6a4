package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable. Credentials are not required
// here; each operation checks the settings it needs before any request.
func (c *Config) Validate() error {
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateUpload(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Hosting.RenderRepo != "" && !validRepo(c.Hosting.RenderRepo) {
		return fmt.Errorf("hosting.render_repo must look like owner/name, got %q", c.Hosting.RenderRepo)
	}
	if c.Export.Repo != "" && !validRepo(c.Export.Repo) {
		return fmt.Errorf("export.repo must look like owner/name, got %q", c.Export.Repo)
	}
	if c.Webhook.URL != "" {
		if err := validateHTTPURL(c.Webhook.URL); err != nil {
			return fmt.Errorf("webhook.url: %w", err)
		}
	}
	return nil
}

func (c *Config) validateRender() error {
	switch c.Render.Mode {
	case RenderModeDirect, RenderModeWorkflow:
	default:
		return fmt.Errorf("render.mode must be %q or %q, got %q", RenderModeDirect, RenderModeWorkflow, c.Render.Mode)
	}
	if c.Render.APIURL != "" {
		if err := validateHTTPURL(c.Render.APIURL); err != nil {
			return fmt.Errorf("render.api_url: %w", err)
		}
	}
	return nil
}

func (c *Config) validateUpload() error {
	switch c.Upload.Strategy {
	case StrategyContents, StrategyGitData, StrategyRelease:
		if c.Upload.Repo != "" && !validRepo(c.Upload.Repo) {
			return fmt.Errorf("upload.repo must look like owner/name, got %q", c.Upload.Repo)
		}
	case StrategyBackend:
	case StrategyObjectStore:
		if c.ObjectStore.Bucket == "" {
			return errors.New("object_store.bucket must be set when upload.strategy is objectstore")
		}
	default:
		return fmt.Errorf("upload.strategy: unsupported value %q", c.Upload.Strategy)
	}
	switch c.Upload.Transcoder {
	case TranscoderFFmpeg, TranscoderDrapto, TranscoderNone:
	default:
		return fmt.Errorf("upload.transcoder: unsupported value %q", c.Upload.Transcoder)
	}
	if c.Upload.MaxWidth < 16 {
		return errors.New("upload.max_width must be at least 16")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func validRepo(repo string) bool {
	owner, name, ok := strings.Cut(repo, "/")
	return ok && owner != "" && name != "" && !strings.Contains(name, "/")
}

func validateHTTPURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
