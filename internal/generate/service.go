// Package generate turns transcripts and themes into reel scripts and keeps
// the generation history.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"reelctl/internal/backend"
	"reelctl/internal/logging"
	"reelctl/internal/reel"
	"reelctl/internal/services"
	"reelctl/internal/webhook"
)

// Generator is the transcript generation endpoint.
type Generator interface {
	Generate(ctx context.Context, transcript string, template reel.TemplateKind, targets reel.Targets) (webhook.Generation, error)
	Questions(ctx context.Context, transcript string, targets reel.Targets) ([]reel.Question, error)
	GenerateEmpathy(ctx context.Context, transcript string, targets reel.Targets, answers []reel.Answer) (webhook.Generation, error)
}

// HistoryRemote receives the full history after each generation.
type HistoryRemote interface {
	SaveHistory(ctx context.Context, items []reel.HistoryItem) error
}

// ThemeWriter drafts a script from a theme.
type ThemeWriter interface {
	GenerateAIScript(ctx context.Context, theme string) (backend.AIScript, error)
}

// Store is the local persistence the service writes to.
type Store interface {
	InsertHistory(ctx context.Context, item reel.HistoryItem) ([]reel.HistoryItem, error)
	SaveScript(ctx context.Context, script reel.Script) (reel.Script, error)
}

// Request describes a one-shot generation.
type Request struct {
	Transcript string
	Template   reel.TemplateKind
	Targets    reel.Targets
}

// Service coordinates generation calls with history bookkeeping.
type Service struct {
	generator Generator
	store     Store
	remote    HistoryRemote
	themes    ThemeWriter
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithHistoryRemote pushes history after each generation.
func WithHistoryRemote(remote HistoryRemote) Option {
	return func(s *Service) { s.remote = remote }
}

// WithThemeWriter enables FromTheme.
func WithThemeWriter(w ThemeWriter) Option {
	return func(s *Service) { s.themes = w }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logging.NewComponentLogger(logger, "generate") }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService builds a Service around generator and store.
func NewService(generator Generator, store Store, opts ...Option) *Service {
	s := &Service{
		generator: generator,
		store:     store,
		logger:    logging.NewComponentLogger(nil, "generate"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is a finished generation and the history entry recorded for it.
type Result struct {
	Generation webhook.Generation
	Item       reel.HistoryItem
}

// Generate produces a draft for every template except empathy, which goes
// through Questions and Answer.
func (s *Service) Generate(ctx context.Context, req Request) (Result, error) {
	transcript, err := checkInput(req.Transcript, req.Targets)
	if err != nil {
		return Result{}, err
	}
	template := req.Template
	if template == "" {
		template = reel.TemplatePREP
	}
	if template.NeedsQuestions() {
		return Result{}, services.Wrap(services.ErrValidation, "generate", "generate",
			"the empathy template needs questions and answers", nil)
	}
	gen, err := s.generator.Generate(ctx, transcript, template, req.Targets)
	if err != nil {
		return Result{}, err
	}
	return s.record(ctx, gen, transcript, template, req.Targets)
}

// Questions asks for the clarifying questions of the empathy template.
func (s *Service) Questions(ctx context.Context, transcript string, targets reel.Targets) ([]reel.Question, error) {
	transcript, err := checkInput(transcript, targets)
	if err != nil {
		return nil, err
	}
	return s.generator.Questions(ctx, transcript, targets)
}

// Answer pairs questions with answers and generates the empathy draft. Every
// answer must be non-blank and there must be one per question.
func (s *Service) Answer(ctx context.Context, transcript string, targets reel.Targets, questions []reel.Question, answers []string) (Result, error) {
	transcript, err := checkInput(transcript, targets)
	if err != nil {
		return Result{}, err
	}
	if len(questions) == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "generate", "answer", "no questions to answer", nil)
	}
	if len(answers) != len(questions) {
		return Result{}, services.Wrap(services.ErrValidation, "generate", "answer",
			fmt.Sprintf("expected %d answers, got %d", len(questions), len(answers)), nil)
	}
	paired := make([]reel.Answer, len(questions))
	for i, q := range questions {
		a := strings.TrimSpace(answers[i])
		if a == "" {
			return Result{}, services.Wrap(services.ErrValidation, "generate", "answer",
				fmt.Sprintf("answer %d is empty", i+1), nil)
		}
		paired[i] = reel.Answer{Question: q.Question, Answer: a}
	}
	gen, err := s.generator.GenerateEmpathy(ctx, transcript, targets, paired)
	if err != nil {
		return Result{}, err
	}
	return s.record(ctx, gen, transcript, reel.TemplateEmpathy, targets)
}

// FromTheme asks the render backend for a script about theme and saves it.
func (s *Service) FromTheme(ctx context.Context, theme string) (reel.Script, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return reel.Script{}, services.Wrap(services.ErrValidation, "generate", "theme", "theme is empty", nil)
	}
	if s.themes == nil {
		return reel.Script{}, services.Wrap(services.ErrConfiguration, "generate", "theme", "render backend is not configured", nil)
	}
	draft, err := s.themes.GenerateAIScript(ctx, theme)
	if err != nil {
		return reel.Script{}, err
	}
	saved, err := s.store.SaveScript(ctx, draft.ToScript(s.now()))
	if err != nil {
		return reel.Script{}, fmt.Errorf("save generated script: %w", err)
	}
	s.logger.Info("script drafted from theme",
		logging.String("script_id", saved.ID),
		logging.Int("scenes", len(saved.Scenes)),
	)
	return saved, nil
}

func (s *Service) record(ctx context.Context, gen webhook.Generation, transcript string, template reel.TemplateKind, targets reel.Targets) (Result, error) {
	item := reel.NewHistoryItem(gen.Script, gen.Markup, transcript, template, targets, s.now())
	history, err := s.store.InsertHistory(ctx, item)
	if err != nil {
		return Result{}, fmt.Errorf("record history: %w", err)
	}
	s.logger.Info("script generated",
		logging.String("history_id", item.ID),
		logging.String("template", string(template)),
		logging.Int("scenes", len(gen.Script.Scenes)),
	)
	if s.remote != nil {
		if err := s.remote.SaveHistory(ctx, history); err != nil {
			logging.WarnWithContext(s.logger, "history push failed", "history_push_failed",
				"remote history is stale until the next sync",
				logging.Error(err),
			)
		}
	}
	return Result{Generation: gen, Item: item}, nil
}

func checkInput(transcript string, targets reel.Targets) (string, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", services.Wrap(services.ErrValidation, "generate", "input", "transcript is empty", nil)
	}
	if len(targets) == 0 {
		return "", services.Wrap(services.ErrValidation, "generate", "input", "select at least one target platform", nil)
	}
	return transcript, nil
}
