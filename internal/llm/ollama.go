package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AyUsHh66/Bajaj-Hackrx/internal/retry"
)

// OllamaConfig configures the Ollama generator.
type OllamaConfig struct {
	// BaseURL is the Ollama server URL (default: http://localhost:11434).
	BaseURL string

	// Model is the model name (default: llama3).
	Model string

	// Timeout is the HTTP request timeout (default: 2m, local models are slow).
	Timeout time.Duration
}

// OllamaGenerator implements Generator using a local Ollama server.
type OllamaGenerator struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaGenerator creates a new Ollama generator.
func NewOllamaGenerator(cfg OllamaConfig) *OllamaGenerator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}

	return &OllamaGenerator{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name returns the backend identifier.
func (g *OllamaGenerator) Name() string {
	return "ollama"
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Format  string         `json:"format,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response        string `json:"response"`
	PromptEvalCount int64  `json:"prompt_eval_count"`
	EvalCount       int64  `json:"eval_count"`
}

// Generate produces a completion using the Ollama generate API.
func (g *OllamaGenerator) Generate(ctx context.Context, params GenerateParams) (GenerateResult, error) {
	model := g.model
	if strings.TrimSpace(params.OverrideModel) != "" {
		model = params.OverrideModel
	}

	reqBody := ollamaGenerateRequest{
		Model:  model,
		Prompt: params.UserInput,
		System: params.Instructions,
		Stream: false,
	}
	if params.JSONMode {
		reqBody.Format = "json"
	}
	if params.Temperature != nil || params.MaxOutputTokens != nil {
		reqBody.Options = map[string]any{}
		if params.Temperature != nil {
			reqBody.Options["temperature"] = *params.Temperature
		}
		if params.MaxOutputTokens != nil {
			reqBody.Options["num_predict"] = *params.MaxOutputTokens
		}
	}

	var result GenerateResult
	err := retry.Do(ctx, retry.MaxAttempts, func() error {
		resp, err := g.generateOnce(ctx, reqBody)
		if err != nil {
			return err
		}
		result = GenerateResult{
			Text:  resp.Response,
			Model: model,
			Usage: &Usage{
				InputTokens:  resp.PromptEvalCount,
				OutputTokens: resp.EvalCount,
				TotalTokens:  resp.PromptEvalCount + resp.EvalCount,
			},
		}
		return nil
	})
	if err != nil {
		return GenerateResult{}, err
	}

	return result, nil
}

func (g *OllamaGenerator) generateOnce(ctx context.Context, reqBody ollamaGenerateRequest) (*ollamaGenerateResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(errBody))
	}

	var genResp ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &genResp, nil
}
