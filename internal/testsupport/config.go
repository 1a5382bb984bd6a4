package testsupport

import (
	"path/filepath"
	"testing"

	"reelctl/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Network endpoints point nowhere until an option sets them.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Upload.WorkDir = filepath.Join(base, "work")
	cfgVal.Render.APIURL = ""
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Upload.Transcoder = config.TranscoderNone

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithWebhookURL points the generation and sync client at url.
func WithWebhookURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Webhook.URL = url
	}
}

// WithRenderAPI points the render backend client at url.
func WithRenderAPI(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Render.APIURL = url
	}
}

// WithHosting points the hosting client at apiBase with token.
func WithHosting(apiBase, token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Hosting.APIBase = apiBase
		b.cfg.Hosting.Token = token
		b.cfg.Hosting.RequestsPerSecond = 1000
		b.cfg.Hosting.Burst = 1000
	}
}

// WithUploadStrategy selects the media upload strategy.
func WithUploadStrategy(strategy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Upload.Strategy = strategy
	}
}

// WithRenderMode selects direct or workflow dispatch.
func WithRenderMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Render.Mode = mode
	}
}

// BaseDir returns the temp root used by NewConfig's directories.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
