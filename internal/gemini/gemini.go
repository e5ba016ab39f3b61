// Package gemini implements model.Provider on top of Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/mivora/geminibot/internal/model"
)

// SafetyConfig is the fixed per-category blocking configuration applied to
// every generation request. Fields are typed enums so a malformed category or
// threshold name cannot reach the provider at request time.
type SafetyConfig struct {
	Harassment       genai.HarmBlockThreshold
	HateSpeech       genai.HarmBlockThreshold
	SexuallyExplicit genai.HarmBlockThreshold
	DangerousContent genai.HarmBlockThreshold
}

// DefaultSafetyConfig blocks medium-and-above content in all four harm
// categories.
func DefaultSafetyConfig() SafetyConfig {
	return SafetyConfig{
		Harassment:       genai.HarmBlockThresholdBlockMediumAndAbove,
		HateSpeech:       genai.HarmBlockThresholdBlockMediumAndAbove,
		SexuallyExplicit: genai.HarmBlockThresholdBlockMediumAndAbove,
		DangerousContent: genai.HarmBlockThresholdBlockMediumAndAbove,
	}
}

// settings expands the config into the request form, rejecting unset
// thresholds so misconfiguration fails at startup rather than per request.
func (c SafetyConfig) settings() ([]*genai.SafetySetting, error) {
	pairs := []struct {
		category  genai.HarmCategory
		threshold genai.HarmBlockThreshold
	}{
		{genai.HarmCategoryHarassment, c.Harassment},
		{genai.HarmCategoryHateSpeech, c.HateSpeech},
		{genai.HarmCategorySexuallyExplicit, c.SexuallyExplicit},
		{genai.HarmCategoryDangerousContent, c.DangerousContent},
	}
	settings := make([]*genai.SafetySetting, 0, len(pairs))
	for _, p := range pairs {
		if p.threshold == "" {
			return nil, fmt.Errorf("safety threshold for %s is unset", p.category)
		}
		settings = append(settings, &genai.SafetySetting{
			Category:  p.category,
			Threshold: p.threshold,
		})
	}
	return settings, nil
}

// Client calls the Gemini API with a fixed safety configuration.
type Client struct {
	client *genai.Client
	model  string
	safety []*genai.SafetySetting
}

// NewClient creates a Gemini-backed provider for the given model name.
func NewClient(ctx context.Context, apiKey, modelName string, safety SafetyConfig) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("gemini model name is required")
	}

	settings, err := safety.settings()
	if err != nil {
		return nil, fmt.Errorf("invalid safety config: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{client: client, model: modelName, safety: settings}, nil
}

// Generate submits the prompt, with the image inlined as a second content
// part when present, and returns the trimmed generated text.
func (c *Client) Generate(ctx context.Context, prompt string, img *model.Image) (string, error) {
	var content *genai.Content
	if img != nil {
		content = genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(img.Data, img.MIMEType),
		}, genai.RoleUser)
	} else {
		content = genai.NewContentFromText(prompt, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, []*genai.Content{content}, &genai.GenerateContentConfig{
		SafetySettings: c.safety,
	})
	if err != nil {
		return "", classifyAPIError(err)
	}
	if blocked(resp) {
		return "", model.ErrSafetyBlocked
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty model response")
	}
	return text, nil
}

// classifyAPIError maps provider failures onto the dispatcher's taxonomy.
func classifyAPIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED" {
			return fmt.Errorf("%w: %s", model.ErrRateLimited, apiErr.Message)
		}
	}
	return fmt.Errorf("gemini generate failed: %w", err)
}

// blocked reports whether the response was withheld by safety filtering,
// either at the prompt or at the candidate level.
func blocked(resp *genai.GenerateContentResponse) bool {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason == genai.BlockedReasonSafety {
		return true
	}
	for _, cand := range resp.Candidates {
		if cand != nil && cand.FinishReason == genai.FinishReasonSafety {
			return true
		}
	}
	return false
}
