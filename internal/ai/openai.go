package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/robalyx/modreport/internal/setup/config"
)

const requestTimeout = 30 * time.Second

func newOpenAIClient(cfg *config.OpenAI) openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(requestTimeout),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return openai.NewClient(opts...)
}

// Moderation scores messages with the OpenAI moderation endpoint.
type Moderation struct {
	client openai.Client
	model  string
}

// NewModeration creates a moderation endpoint backend.
func NewModeration(cfg *config.OpenAI) *Moderation {
	model := cfg.ModerationModel
	if model == "" {
		model = "omni-moderation-latest"
	}

	return &Moderation{
		client: newOpenAIClient(cfg),
		model:  model,
	}
}

// Classify reports the harassment and hate categories with their scores.
func (m *Moderation) Classify(ctx context.Context, text string) (string, error) {
	resp, err := m.client.Moderations.New(ctx, openai.ModerationNewParams{
		Input: openai.ModerationNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.ModerationModel(m.model),
	})
	if err != nil {
		return "", fmt.Errorf("openai moderation: %w", err)
	}

	if len(resp.Results) == 0 {
		return "", ErrEmptyResponse
	}

	result := resp.Results[0]
	categories := []struct {
		name    string
		flagged bool
		score   float64
	}{
		{"harassment", result.Categories.Harassment, result.CategoryScores.Harassment},
		{"harassment_threatening", result.Categories.HarassmentThreatening, result.CategoryScores.HarassmentThreatening},
		{"hate", result.Categories.Hate, result.CategoryScores.Hate},
		{"hate_threatening", result.Categories.HateThreatening, result.CategoryScores.HateThreatening},
	}

	parts := make([]string, 0, len(categories))
	for _, c := range categories {
		parts = append(parts, fmt.Sprintf("%s: %t (%.2f)", c.name, c.flagged, c.score))
	}

	return strings.Join(parts, ", "), nil
}

// Policy asks a chat model whether a message violates the moderation policy.
type Policy struct {
	client openai.Client
	model  string
	prompt string
}

// NewPolicy creates a policy prompt backend.
func NewPolicy(cfg *config.OpenAI, policy string) *Policy {
	model := cfg.PolicyModel
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &Policy{
		client: newOpenAIClient(cfg),
		model:  model,
		prompt: systemPrompt(policy),
	}
}

// Classify returns the parsed verdict.
func (p *Policy) Classify(ctx context.Context, text string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.prompt),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(0),
		MaxTokens:   openai.Int(16),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	verdict, err := ParseVerdict(resp.Choices[0].Message.Content)
	if err != nil {
		return "", err
	}

	return verdict.String(), nil
}
