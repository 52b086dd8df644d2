package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/robalyx/modreport/internal/setup/config"
	"github.com/robalyx/modreport/pkg/utils"
	"google.golang.org/api/option"
)

// Gemini asks a Gemini model whether a message violates the moderation policy.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a Gemini backend with safety filters disabled so that
// abusive messages are classified instead of refused.
func NewGemini(ctx context.Context, cfg *config.Gemini, policy string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	name := cfg.Model
	if name == "" {
		name = "gemini-1.5-flash"
	}

	model := client.GenerativeModel(name)
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt(policy)))
	model.SetTemperature(0)
	model.SetMaxOutputTokens(16)
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
	}

	return &Gemini{client: client, model: model}, nil
}

// Classify returns the parsed verdict.
func (g *Gemini) Classify(ctx context.Context, text string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return "", fmt.Errorf("%w: %s", utils.ErrContentBlocked, blocked.Error())
		}

		return "", fmt.Errorf("gemini API error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var answer strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			answer.WriteString(string(t))
		}
	}

	verdict, err := ParseVerdict(answer.String())
	if err != nil {
		return "", err
	}

	return verdict.String(), nil
}
