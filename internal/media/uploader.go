package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"reelctl/internal/backend"
	"reelctl/internal/config"
	"reelctl/internal/hosting"
	"reelctl/internal/logging"
	"reelctl/internal/services"
)

// Result describes a completed upload.
type Result struct {
	Token      string `json:"token"`
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	Strategy   string `json:"strategy"`
	Transcoded bool   `json:"transcoded"`
}

// Uploader runs the read, transcode, normalise, precheck, upload pipeline
// against one strategy.
type Uploader struct {
	strategy   Strategy
	transcoder Transcoder
	workDir    string
	logger     *slog.Logger
}

// UploaderOption configures an Uploader.
type UploaderOption func(*Uploader)

// WithTranscoder sets the video transcoder. Nil disables transcoding.
func WithTranscoder(t Transcoder) UploaderOption {
	return func(u *Uploader) {
		if t == nil {
			t = Noop{}
		}
		u.transcoder = t
	}
}

// WithWorkDir sets where transcoded renditions are written.
func WithWorkDir(dir string) UploaderOption {
	return func(u *Uploader) {
		u.workDir = dir
	}
}

// WithLogger sets the uploader logger.
func WithLogger(logger *slog.Logger) UploaderOption {
	return func(u *Uploader) {
		u.logger = logging.NewComponentLogger(logger, "media")
	}
}

// NewUploader builds an uploader for strategy.
func NewUploader(strategy Strategy, opts ...UploaderOption) *Uploader {
	u := &Uploader{
		strategy:   strategy,
		transcoder: Noop{},
		workDir:    os.TempDir(),
		logger:     logging.NewComponentLogger(nil, "media"),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Strategy returns the selected strategy.
func (u *Uploader) Strategy() Strategy {
	return u.strategy
}

// Upload sends the file at path. Videos pass through the transcoder first;
// the size ceiling is enforced before any network request.
func (u *Uploader) Upload(ctx context.Context, path string, kind Kind) (Result, error) {
	name := u.strategy.Name()
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, stageErr(name, StageRead, err)
	}
	if info.IsDir() {
		return Result{}, stageErr(name, StageRead, fmt.Errorf("%s is a directory", path))
	}

	source := path
	transcoded := false
	if IsVideo(path) {
		out, err := u.transcoder.Transcode(ctx, path, u.workDir)
		if err != nil {
			return Result{}, stageErr(name, StageTranscode,
				services.Wrap(services.ErrMedia, "media", "transcode", u.transcoder.Name(), err))
		}
		if out != path {
			source = out
			transcoded = true
			defer os.Remove(out)
			if info, err = os.Stat(out); err != nil {
				return Result{}, stageErr(name, StageTranscode, services.Wrap(services.ErrMedia, "media", "transcode", "missing output", err))
			}
		}
	}

	base := filepath.Base(path)
	if transcoded {
		base = strings.TrimSuffix(base, filepath.Ext(base)) + filepath.Ext(source)
	}
	file := File{
		Name:        NormalizeFileName(base),
		Path:        source,
		Size:        info.Size(),
		ContentType: DetectContentType(source),
		Kind:        kind,
	}
	if limit := u.strategy.MaxBytes(); limit > 0 && file.Size > limit {
		return Result{}, tooLarge(name, file.Size, limit)
	}

	u.logger.Info("uploading media",
		logging.String("strategy", name),
		logging.String("file", file.Name),
		logging.Int64("size_bytes", file.Size),
		logging.Bool("transcoded", transcoded),
	)
	token, err := u.strategy.Upload(ctx, file)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Token:      token,
		Name:       file.Name,
		Size:       file.Size,
		Strategy:   name,
		Transcoded: transcoded,
	}, nil
}

// NewStrategy selects the configured strategy.
func NewStrategy(ctx context.Context, cfg *config.Config, hostingClient *hosting.Client, backendClient *backend.Client) (Strategy, error) {
	target := Target{
		Repo:   cfg.Upload.Repo,
		Branch: cfg.Upload.Branch,
		Dir:    cfg.Upload.Dir,
		Prefix: cfg.Upload.Prefix,
	}
	needHosting := func() error {
		if !hostingClient.Configured() {
			return services.Wrap(services.ErrConfiguration, "media", cfg.Upload.Strategy, "hosting token is not configured", nil)
		}
		return nil
	}
	switch cfg.Upload.Strategy {
	case config.StrategyContents:
		if err := needHosting(); err != nil {
			return nil, err
		}
		return Contents{Client: hostingClient, Target: target}, nil
	case config.StrategyGitData:
		if err := needHosting(); err != nil {
			return nil, err
		}
		return GitData{Client: hostingClient, Target: target}, nil
	case config.StrategyRelease:
		if err := needHosting(); err != nil {
			return nil, err
		}
		return Release{Client: hostingClient, Repo: cfg.Upload.Repo, Tag: cfg.Upload.ReleaseTag}, nil
	case config.StrategyBackend:
		if !backendClient.Configured() {
			return nil, services.Wrap(services.ErrConfiguration, "media", "backend", "render api url is not configured", nil)
		}
		return Backend{Client: backendClient}, nil
	case config.StrategyObjectStore:
		client, err := NewS3Client(ctx, cfg.ObjectStore)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "media", "objectstore", "build client", err)
		}
		return ObjectStore{
			API:       client,
			Bucket:    cfg.ObjectStore.Bucket,
			Prefix:    cfg.ObjectStore.Prefix,
			PublicURL: cfg.ObjectStore.PublicURL,
		}, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "media", "strategy", fmt.Sprintf("unknown upload strategy %q", cfg.Upload.Strategy), nil)
	}
}

// NewTranscoder selects the configured transcoder.
func NewTranscoder(cfg *config.Config, logger *slog.Logger) Transcoder {
	switch cfg.Upload.Transcoder {
	case config.TranscoderFFmpeg:
		return FFmpeg{
			Binary:   cfg.FFmpegBinary(),
			MaxWidth: cfg.Upload.MaxWidth,
			BitRate:  cfg.Upload.BitrateBPS,
			Logger:   logger,
		}
	case config.TranscoderDrapto:
		return Drapto{Logger: logger}
	default:
		return Noop{}
	}
}

// NewFromConfig wires an Uploader from configuration.
func NewFromConfig(ctx context.Context, cfg *config.Config, hostingClient *hosting.Client, backendClient *backend.Client, logger *slog.Logger) (*Uploader, error) {
	strategy, err := NewStrategy(ctx, cfg, hostingClient, backendClient)
	if err != nil {
		return nil, err
	}
	return NewUploader(strategy,
		WithTranscoder(NewTranscoder(cfg, logger)),
		WithWorkDir(cfg.Upload.WorkDir),
		WithLogger(logger),
	), nil
}
