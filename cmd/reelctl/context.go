package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"reelctl/internal/backend"
	"reelctl/internal/config"
	"reelctl/internal/generate"
	"reelctl/internal/hosting"
	"reelctl/internal/localstore"
	"reelctl/internal/logging"
	"reelctl/internal/merge"
	"reelctl/internal/notifications"
	"reelctl/internal/render"
	"reelctl/internal/webhook"
)

type commandContext struct {
	configFlag *string
	stderr     io.Writer

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	storeOnce sync.Once
	store     *localstore.Store
	storeErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag, stderr: os.Stderr}
}

func (c *commandContext) setOutput(w io.Writer) {
	if w != nil {
		c.stderr = w
	}
}

// ensureConfig loads the file configuration once. Persisted settings are
// layered on later by effectiveConfig.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, _ := c.ensureConfig()
		opts := logging.Options{Level: "info", Format: "console", Console: c.stderr}
		if cfg != nil {
			opts.Level = cfg.Logging.Level
			opts.Format = cfg.Logging.Format
			opts.MaxSizeMB = cfg.Logging.MaxSizeMB
			opts.MaxBackups = cfg.Logging.MaxBackups
			opts.MaxAgeDays = cfg.Logging.MaxAgeDays
			opts.Compress = cfg.Logging.Compress
			if cfg.Paths.LogDir != "" {
				opts.FilePath = filepath.Join(cfg.Paths.LogDir, "reelctl.log")
			}
		}
		logger, err := logging.New(opts)
		if err != nil {
			fmt.Fprintf(c.stderr, "warn: logger unavailable: %v\n", err)
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) ensureStore() (*localstore.Store, error) {
	c.storeOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.storeErr = err
			return
		}
		c.store, c.storeErr = localstore.Open(cfg, localstore.WithLogger(c.log()))
	})
	return c.store, c.storeErr
}

// effectiveConfig returns the file configuration with the persisted settings
// record applied on top.
func (c *commandContext) effectiveConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := c.ensureStore()
	if err != nil {
		return nil, err
	}
	return config.Effective(ctx, cfg, store)
}

func (c *commandContext) close() error {
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	return err
}

// clients bundles the remote clients built from the effective configuration.
type clients struct {
	cfg     *config.Config
	store   *localstore.Store
	webhook *webhook.Client
	backend *backend.Client
	hosting *hosting.Client
	logger  *slog.Logger
}

func (c *commandContext) clients(ctx context.Context) (*clients, error) {
	cfg, err := c.effectiveConfig(ctx)
	if err != nil {
		return nil, err
	}
	store, err := c.ensureStore()
	if err != nil {
		return nil, err
	}
	logger := c.log()
	return &clients{
		cfg:     cfg,
		store:   store,
		webhook: webhook.NewFromConfig(cfg, webhook.WithLogger(logger)),
		backend: backend.NewFromConfig(cfg, backend.WithLogger(logger)),
		hosting: hosting.NewFromConfig(cfg, hosting.WithLogger(logger)),
		logger:  logger,
	}, nil
}

// syncEngine guards every cycle with the on-disk lock so a running server and
// the CLI never interleave read-merge-write.
func (cl *clients) syncEngine(opts ...merge.Option) *merge.Engine {
	base := []merge.Option{
		merge.WithLogger(cl.logger),
		merge.WithLockFile(cl.cfg.SyncLockPath()),
	}
	return merge.NewEngine(cl.store, cl.webhook, append(base, opts...)...)
}

func (cl *clients) notifier() notifications.Service {
	return notifications.NewService(cl.cfg)
}

func (cl *clients) notifySyncFailed(ctx context.Context, collection string, err error) {
	if nerr := cl.notifier().NotifySyncFailed(ctx, collection, err); nerr != nil {
		cl.logger.Warn("sync failure notification failed",
			logging.String("collection", collection),
			logging.Error(nerr),
		)
	}
}

func (cl *clients) generator() *generate.Service {
	return generate.NewService(cl.webhook, cl.store,
		generate.WithHistoryRemote(cl.webhook),
		generate.WithThemeWriter(cl.backend),
		generate.WithLogger(cl.logger),
	)
}

func (cl *clients) renderService() (*render.Service, error) {
	dispatcher, err := render.NewDispatcher(cl.cfg, cl.hosting, cl.backend, cl.logger)
	if err != nil {
		return nil, err
	}
	interval := cl.cfg.PollInterval()
	if dispatcher.Mode() == render.ModeWorkflow {
		interval = cl.cfg.WatchInterval()
	}
	return render.NewService(dispatcher,
		render.WithNotifier(cl.notifier()),
		render.WithInterval(interval),
		render.WithLogger(cl.logger),
	), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
