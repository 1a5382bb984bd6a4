package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRender()
	c.normalizeHosting()
	c.normalizeWebhook()
	if err := c.normalizeUpload(); err != nil {
		return err
	}
	c.normalizeObjectStore()
	c.normalizeExport()
	c.normalizeNotifications()
	c.normalizeServer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRender() {
	if value, ok := lookupEnv("REELCTL_API_URL"); ok {
		c.Render.APIURL = value
	}
	c.Render.APIURL = strings.TrimRight(strings.TrimSpace(c.Render.APIURL), "/")
	c.Render.Mode = strings.ToLower(strings.TrimSpace(c.Render.Mode))
	if c.Render.Mode == "" {
		c.Render.Mode = defaultRenderMode
	}
	if c.Render.PollIntervalMillis <= 0 {
		c.Render.PollIntervalMillis = defaultPollIntervalMillis
	}
	if c.Render.WatchIntervalSeconds <= 0 {
		c.Render.WatchIntervalSeconds = defaultWatchIntervalSeconds
	}
	if c.Render.LookupDelaySeconds <= 0 {
		c.Render.LookupDelaySeconds = defaultLookupDelaySeconds
	}
}

func (c *Config) normalizeHosting() {
	if c.Hosting.Token == "" {
		if value, ok := lookupEnv("REELCTL_GITHUB_TOKEN"); ok {
			c.Hosting.Token = value
		} else if value, ok := lookupEnv("GITHUB_TOKEN"); ok {
			c.Hosting.Token = value
		}
	}
	c.Hosting.Token = strings.TrimSpace(c.Hosting.Token)
	c.Hosting.APIBase = strings.TrimRight(strings.TrimSpace(c.Hosting.APIBase), "/")
	if c.Hosting.APIBase == "" {
		c.Hosting.APIBase = defaultHostingAPIBase
	}
	c.Hosting.RenderRepo = strings.Trim(strings.TrimSpace(c.Hosting.RenderRepo), "/")
	if c.Hosting.Workflow = strings.TrimSpace(c.Hosting.Workflow); c.Hosting.Workflow == "" {
		c.Hosting.Workflow = defaultWorkflow
	}
	if c.Hosting.EventType = strings.TrimSpace(c.Hosting.EventType); c.Hosting.EventType == "" {
		c.Hosting.EventType = defaultEventType
	}
	if c.Hosting.ArtifactName = strings.TrimSpace(c.Hosting.ArtifactName); c.Hosting.ArtifactName == "" {
		c.Hosting.ArtifactName = defaultArtifactName
	}
	if c.Hosting.RequestsPerSecond <= 0 {
		c.Hosting.RequestsPerSecond = defaultRequestsPerSecond
	}
	if c.Hosting.Burst <= 0 {
		c.Hosting.Burst = defaultBurst
	}
}

func (c *Config) normalizeWebhook() {
	if c.Webhook.URL == "" {
		if value, ok := lookupEnv("REELCTL_WEBHOOK_URL"); ok {
			c.Webhook.URL = value
		}
	}
	c.Webhook.URL = strings.TrimSpace(c.Webhook.URL)
}

func (c *Config) normalizeUpload() error {
	c.Upload.Strategy = strings.ToLower(strings.TrimSpace(c.Upload.Strategy))
	if c.Upload.Strategy == "" {
		c.Upload.Strategy = defaultUploadStrategy
	}
	c.Upload.Transcoder = strings.ToLower(strings.TrimSpace(c.Upload.Transcoder))
	if c.Upload.Transcoder == "" {
		c.Upload.Transcoder = defaultTranscoder
	}
	c.Upload.Repo = strings.Trim(strings.TrimSpace(c.Upload.Repo), "/")
	if c.Upload.Branch = strings.TrimSpace(c.Upload.Branch); c.Upload.Branch == "" {
		c.Upload.Branch = defaultUploadBranch
	}
	c.Upload.Dir = strings.Trim(strings.TrimSpace(c.Upload.Dir), "/")
	c.Upload.Prefix = strings.Trim(strings.TrimSpace(c.Upload.Prefix), "/")
	if c.Upload.ReleaseTag = strings.TrimSpace(c.Upload.ReleaseTag); c.Upload.ReleaseTag == "" {
		c.Upload.ReleaseTag = defaultReleaseTag
	}
	if c.Upload.MaxWidth <= 0 {
		c.Upload.MaxWidth = defaultMaxWidth
	}
	if c.Upload.BitrateBPS <= 0 {
		c.Upload.BitrateBPS = defaultBitrateBPS
	}
	if strings.TrimSpace(c.Upload.WorkDir) == "" {
		c.Upload.WorkDir = os.TempDir()
	}
	var err error
	if c.Upload.WorkDir, err = expandPath(c.Upload.WorkDir); err != nil {
		return fmt.Errorf("upload.work_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeObjectStore() {
	if c.ObjectStore.AccessKey == "" {
		if value, ok := lookupEnv("AWS_ACCESS_KEY_ID"); ok {
			c.ObjectStore.AccessKey = value
		}
	}
	if c.ObjectStore.SecretKey == "" {
		if value, ok := lookupEnv("AWS_SECRET_ACCESS_KEY"); ok {
			c.ObjectStore.SecretKey = value
		}
	}
	c.ObjectStore.Endpoint = strings.TrimSpace(c.ObjectStore.Endpoint)
	c.ObjectStore.Bucket = strings.TrimSpace(c.ObjectStore.Bucket)
	c.ObjectStore.Prefix = strings.Trim(strings.TrimSpace(c.ObjectStore.Prefix), "/")
	c.ObjectStore.PublicURL = strings.TrimRight(strings.TrimSpace(c.ObjectStore.PublicURL), "/")
	if strings.TrimSpace(c.ObjectStore.Region) == "" {
		c.ObjectStore.Region = defaultObjectStoreRegion
	}
}

func (c *Config) normalizeExport() {
	c.Export.Repo = strings.Trim(strings.TrimSpace(c.Export.Repo), "/")
	c.Export.Dir = strings.Trim(strings.TrimSpace(c.Export.Dir), "/")
	if c.Export.Dir == "" {
		c.Export.Dir = defaultExportDir
	}
	if c.Export.Branch = strings.TrimSpace(c.Export.Branch); c.Export.Branch == "" {
		c.Export.Branch = defaultExportBranch
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	c.Server.Token = strings.TrimSpace(c.Server.Token)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = defaultLogMaxBackups
	}
	if c.Logging.MaxAgeDays < 0 {
		c.Logging.MaxAgeDays = defaultLogMaxAgeDays
	}
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return strings.TrimSpace(value), true
}
