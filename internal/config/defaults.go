package config

const (
	defaultDataDir              = "~/.local/share/reelctl"
	defaultLogDir               = "~/.local/share/reelctl/logs"
	defaultRenderAPIURL         = "http://localhost:3002"
	defaultRenderMode           = RenderModeDirect
	defaultPollIntervalMillis   = 1500
	defaultWatchIntervalSeconds = 10
	defaultLookupDelaySeconds   = 3
	defaultHostingAPIBase       = "https://api.github.com"
	defaultRenderRepo           = "tamagoojiji/tamago-talk-reel"
	defaultWorkflow             = "render-reel.yml"
	defaultEventType            = "render-reel"
	defaultArtifactName         = "reel-video"
	defaultRequestsPerSecond    = 5
	defaultBurst                = 10
	defaultUploadStrategy       = StrategyGitData
	defaultUploadRepo           = "tamagoojiji/remotion"
	defaultUploadBranch         = "main"
	defaultUploadDir            = "public/bg"
	defaultUploadPrefix         = "bg"
	defaultReleaseTag           = "backgrounds"
	defaultTranscoder           = TranscoderFFmpeg
	defaultMaxWidth             = 720
	defaultBitrateBPS           = 2_000_000
	defaultObjectStoreRegion    = "us-east-1"
	defaultExportRepo           = "tamagoojiji/USJ-Knowledge"
	defaultExportDir            = "リール台本"
	defaultExportBranch         = "main"
	defaultNotifyTimeout        = 10
	defaultServerBind           = "127.0.0.1:7488"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogMaxSizeMB         = 10
	defaultLogMaxBackups        = 3
	defaultLogMaxAgeDays        = 28
)

// Render modes.
const (
	RenderModeDirect   = "direct"
	RenderModeWorkflow = "workflow"
)

// Upload strategies.
const (
	StrategyContents    = "contents"
	StrategyGitData     = "gitdata"
	StrategyRelease     = "release"
	StrategyBackend     = "backend"
	StrategyObjectStore = "objectstore"
)

// Transcoders.
const (
	TranscoderFFmpeg = "ffmpeg"
	TranscoderDrapto = "drapto"
	TranscoderNone   = "none"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Render: Render{
			APIURL:               defaultRenderAPIURL,
			Mode:                 defaultRenderMode,
			PollIntervalMillis:   defaultPollIntervalMillis,
			WatchIntervalSeconds: defaultWatchIntervalSeconds,
			LookupDelaySeconds:   defaultLookupDelaySeconds,
		},
		Hosting: Hosting{
			APIBase:           defaultHostingAPIBase,
			RenderRepo:        defaultRenderRepo,
			Workflow:          defaultWorkflow,
			EventType:         defaultEventType,
			ArtifactName:      defaultArtifactName,
			RequestsPerSecond: defaultRequestsPerSecond,
			Burst:             defaultBurst,
		},
		Upload: Upload{
			Strategy:   defaultUploadStrategy,
			Repo:       defaultUploadRepo,
			Branch:     defaultUploadBranch,
			Dir:        defaultUploadDir,
			Prefix:     defaultUploadPrefix,
			ReleaseTag: defaultReleaseTag,
			Transcoder: defaultTranscoder,
			MaxWidth:   defaultMaxWidth,
			BitrateBPS: defaultBitrateBPS,
		},
		ObjectStore: ObjectStore{
			Region: defaultObjectStoreRegion,
		},
		Export: Export{
			Repo:   defaultExportRepo,
			Dir:    defaultExportDir,
			Branch: defaultExportBranch,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Render:         true,
			Upload:         false,
			Sync:           true,
		},
		Server: Server{
			Bind: defaultServerBind,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
			Compress:   true,
		},
	}
}
