package export

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"time"

	"reelctl/internal/config"
	"reelctl/internal/hosting"
	"reelctl/internal/logging"
	"reelctl/internal/reel"
	"reelctl/internal/services"
)

// Publisher writes notes into the configured repository.
type Publisher struct {
	client *hosting.Client
	repo   string
	dir    string
	branch string
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Publisher.
type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logging.NewComponentLogger(logger, "export") }
}

// WithClock sets the source of the note date.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPublisher requires a hosting token and export.repo.
func NewPublisher(cfg *config.Config, client *hosting.Client, opts ...Option) (*Publisher, error) {
	if cfg == nil || client == nil || !client.Configured() {
		return nil, services.Wrap(services.ErrConfiguration, "export", "publish", "hosting token is not set", nil)
	}
	if strings.TrimSpace(cfg.Export.Repo) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "export", "publish", "export.repo is not set", nil)
	}
	p := &Publisher{
		client: client,
		repo:   cfg.Export.Repo,
		dir:    cfg.Export.Dir,
		branch: cfg.Export.Branch,
		logger: logging.NewComponentLogger(nil, "export"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Publish creates or overwrites the note for script and returns its path in
// the repository.
func (p *Publisher) Publish(ctx context.Context, script reel.Script) (string, error) {
	date := p.now()
	body, err := Render(script, date)
	if err != nil {
		return "", err
	}
	target := path.Join(p.dir, FileName(script, date))

	sha, _, err := p.client.ContentSHA(ctx, p.repo, target, p.branch)
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(script.Name)
	if name == "" {
		name = reel.DefaultName
	}
	if _, err := p.client.PutContent(ctx, p.repo, target, hosting.PutContentRequest{
		Message: "add: リール台本 - " + name,
		Content: []byte(body),
		SHA:     sha,
		Branch:  p.branch,
	}); err != nil {
		return "", err
	}
	p.logger.Info("note published",
		logging.String("script_id", script.ID),
		logging.String("repo", p.repo),
		logging.String("path", target),
		logging.Bool("overwrite", sha != ""),
	)
	return target, nil
}
