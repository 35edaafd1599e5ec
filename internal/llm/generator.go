// Package llm provides text generation clients for answer synthesis and
// graph extraction.
package llm

import (
	"context"
)

// Generator defines the interface for LLM backends.
type Generator interface {
	// Name returns the backend identifier (e.g., "gemini", "ollama").
	Name() string

	// Generate produces a completion for the given params (blocking/unary).
	Generate(ctx context.Context, params GenerateParams) (GenerateResult, error)
}

// GenerateParams contains all parameters for generating a completion.
type GenerateParams struct {
	// Instructions is the system prompt.
	Instructions string

	// UserInput is the user-facing prompt content.
	UserInput string

	// JSONMode constrains the output to a single JSON document.
	JSONMode bool

	// Temperature overrides the backend default when set.
	Temperature *float64

	// MaxOutputTokens caps the completion length when set.
	MaxOutputTokens *int

	// OverrideModel overrides the configured model.
	OverrideModel string

	// RequestID for tracing.
	RequestID string
}

// GenerateResult contains the generated completion.
type GenerateResult struct {
	// Text is the generated response.
	Text string

	// Model is the actual model used.
	Model string

	// Usage contains token usage metrics when the backend reports them.
	Usage *Usage
}

// Usage contains token usage metrics.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}
