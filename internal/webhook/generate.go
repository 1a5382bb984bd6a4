package webhook

import (
	"context"

	"reelctl/internal/reel"
)

const (
	actionGenerate  = "generate"
	actionQuestions = "generate-questions"
	actionEmpathy   = "generate-empathy"
)

// Generation is a draft returned by the webhook together with its YAML
// rendering.
type Generation struct {
	Script reel.GeneratedScript `json:"script"`
	Markup string               `json:"yaml"`
}

// Generate requests a draft for transcript written in template for targets.
func (c *Client) Generate(ctx context.Context, transcript string, template reel.TemplateKind, targets reel.Targets) (Generation, error) {
	var out Generation
	err := c.call(ctx, actionGenerate, map[string]any{
		"transcript": transcript,
		"template":   template,
		"targets":    targets,
	}, &out)
	return out, err
}

// Questions requests the clarifying questions of the empathy flow.
func (c *Client) Questions(ctx context.Context, transcript string, targets reel.Targets) ([]reel.Question, error) {
	var out struct {
		Questions []reel.Question `json:"questions"`
	}
	if err := c.call(ctx, actionQuestions, map[string]any{
		"transcript": transcript,
		"targets":    targets,
	}, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

// GenerateEmpathy requests the empathy-template draft from the answered
// questions.
func (c *Client) GenerateEmpathy(ctx context.Context, transcript string, targets reel.Targets, answers []reel.Answer) (Generation, error) {
	var out Generation
	err := c.call(ctx, actionEmpathy, map[string]any{
		"transcript": transcript,
		"targets":    targets,
		"answers":    answers,
	}, &out)
	return out, err
}
