package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/AyUsHh66/Bajaj-Hackrx/internal/retry"
)

// GeminiConfig configures the Gemini generator.
type GeminiConfig struct {
	// APIKey authenticates against the Gemini API.
	APIKey string

	// Model is the model name (default: gemini-2.0-flash).
	Model string

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string
}

// GeminiGenerator implements Generator using Google's Gemini API.
type GeminiGenerator struct {
	cfg GeminiConfig
}

// NewGeminiGenerator creates a new Gemini generator.
func NewGeminiGenerator(cfg GeminiConfig) *GeminiGenerator {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	return &GeminiGenerator{cfg: cfg}
}

// Name returns the backend identifier.
func (g *GeminiGenerator) Name() string {
	return "gemini"
}

// Generate produces a completion using the Gemini API.
func (g *GeminiGenerator) Generate(ctx context.Context, params GenerateParams) (GenerateResult, error) {
	if strings.TrimSpace(g.cfg.APIKey) == "" {
		return GenerateResult{}, errors.New("Gemini API key is required")
	}

	model := g.cfg.Model
	if strings.TrimSpace(params.OverrideModel) != "" {
		model = params.OverrideModel
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  g.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if g.cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{
			BaseURL: g.cfg.BaseURL,
		}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("creating gemini client: %w", err)
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{genai.NewPartFromText(strings.TrimSpace(params.UserInput))},
	}}

	generateConfig := &genai.GenerateContentConfig{}
	if params.Instructions != "" {
		generateConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(params.Instructions)},
		}
	}
	if params.JSONMode {
		generateConfig.ResponseMIMEType = "application/json"
	}
	if params.Temperature != nil {
		temp := float32(*params.Temperature)
		generateConfig.Temperature = &temp
	}
	if params.MaxOutputTokens != nil {
		generateConfig.MaxOutputTokens = int32(*params.MaxOutputTokens)
	}

	var result GenerateResult
	err = retry.Do(ctx, retry.MaxAttempts, func() error {
		slog.Debug("gemini request", "model", model, "request_id", params.RequestID)

		reqCtx, reqCancel := retry.EnsureTimeout(ctx, retry.RequestTimeout)
		resp, err := client.Models.GenerateContent(reqCtx, model, contents, generateConfig)
		reqCancel()
		if err != nil {
			return fmt.Errorf("gemini error: %w", err)
		}

		text := extractGeminiText(resp)
		if text == "" {
			return errors.New("gemini returned empty response")
		}

		result = GenerateResult{
			Text:  text,
			Model: model,
			Usage: extractGeminiUsage(resp),
		}
		return nil
	})
	if err != nil {
		return GenerateResult{}, err
	}

	return result, nil
}

// extractGeminiText extracts text from the response.
func extractGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	var text strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				text.WriteString(part.Text)
			}
		}
	}

	return strings.TrimSpace(text.String())
}

// extractGeminiUsage extracts token usage from the response.
func extractGeminiUsage(resp *genai.GenerateContentResponse) *Usage {
	if resp == nil || resp.UsageMetadata == nil {
		return nil
	}

	return &Usage{
		InputTokens:  int64(resp.UsageMetadata.PromptTokenCount),
		OutputTokens: int64(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:  int64(resp.UsageMetadata.TotalTokenCount),
	}
}
