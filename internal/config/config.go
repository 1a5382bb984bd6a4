package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths groups filesystem locations used by the CLI and the local API.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Render configures the render backend and how jobs are dispatched.
type Render struct {
	APIURL               string `toml:"api_url"`
	Mode                 string `toml:"mode"` // direct or workflow
	PollIntervalMillis   int    `toml:"poll_interval_ms"`
	WatchIntervalSeconds int    `toml:"watch_interval_seconds"`
	LookupDelaySeconds   int    `toml:"lookup_delay_seconds"`
	Notify               bool   `toml:"notify"`
}

// Hosting describes the source-hosting REST API and the repository used for
// workflow-dispatch renders.
type Hosting struct {
	APIBase           string  `toml:"api_base"`
	Token             string  `toml:"token"`
	RenderRepo        string  `toml:"render_repo"`
	Workflow          string  `toml:"workflow"`
	EventType         string  `toml:"event_type"`
	ArtifactName      string  `toml:"artifact_name"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// Webhook holds the script generation and sync endpoint.
type Webhook struct {
	URL string `toml:"url"`
}

// Upload selects the media transport strategy and its target.
type Upload struct {
	Strategy   string `toml:"strategy"` // contents, gitdata, release, backend, objectstore
	Repo       string `toml:"repo"`
	Branch     string `toml:"branch"`
	Dir        string `toml:"dir"`
	Prefix     string `toml:"prefix"`
	ReleaseTag string `toml:"release_tag"`
	Transcoder string `toml:"transcoder"` // ffmpeg, drapto, none
	MaxWidth   int    `toml:"max_width"`
	BitrateBPS int    `toml:"bitrate_bps"`
	WorkDir    string `toml:"work_dir"`
}

// ObjectStore configures the S3-compatible upload target.
type ObjectStore struct {
	Endpoint  string `toml:"endpoint"`
	Region    string `toml:"region"`
	Bucket    string `toml:"bucket"`
	Prefix    string `toml:"prefix"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	PublicURL string `toml:"public_url"`
}

// Export configures publishing scripts as markdown notes.
type Export struct {
	Repo   string `toml:"repo"`
	Dir    string `toml:"dir"`
	Branch string `toml:"branch"`
}

type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Render         bool   `toml:"render"`
	Upload         bool   `toml:"upload"`
	Sync           bool   `toml:"sync"`
}

type Server struct {
	Bind  string `toml:"bind"`
	Token string `toml:"token"`
}

type Logging struct {
	Format     string `toml:"format"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// Config encapsulates all configuration values for reelctl.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Render        Render        `toml:"render"`
	Hosting       Hosting       `toml:"hosting"`
	Webhook       Webhook       `toml:"webhook"`
	Upload        Upload        `toml:"upload"`
	ObjectStore   ObjectStore   `toml:"object_store"`
	Export        Export        `toml:"export"`
	Notifications Notifications `toml:"notifications"`
	Server        Server        `toml:"server"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reelctl/config.toml")
}

// Load reads configuration from disk, applies defaults, and validates the result.
// A .env file in the working directory is loaded first so its values act as
// environment fallbacks.
func Load(path string) (*Config, string, bool, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, "", false, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelctl.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StorePath returns the SQLite database location.
func (c *Config) StorePath() string {
	return filepath.Join(c.Paths.DataDir, "reelctl.db")
}

// SyncLockPath returns the advisory lock file guarding sync cycles.
func (c *Config) SyncLockPath() string {
	return filepath.Join(c.Paths.DataDir, "sync.lock")
}

// PollInterval is the direct-mode render status interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Render.PollIntervalMillis) * time.Millisecond
}

// WatchInterval is the workflow-mode snapshot interval used by render watch.
func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.Render.WatchIntervalSeconds) * time.Second
}

// LookupDelay is the pause before the second filtered run lookup.
func (c *Config) LookupDelay() time.Duration {
	return time.Duration(c.Render.LookupDelaySeconds) * time.Second
}

// FFmpegBinary returns the ffmpeg executable name used for transcoding.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
