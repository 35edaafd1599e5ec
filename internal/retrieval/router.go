// Package retrieval answers questions against the indexed documents: a
// router picks the retrieval strategy, the matching chunks become context,
// and an LLM synthesizes the final answer.
package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AyUsHh66/Bajaj-Hackrx/internal/llm"
)

// Strategy selects how context is gathered for a question.
type Strategy string

const (
	// StrategyVectorSearch retrieves chunks by semantic similarity.
	StrategyVectorSearch Strategy = "vector_search"

	// StrategyGraphQA answers from entity relationships in the graph.
	StrategyGraphQA Strategy = "graph_qa"

	// StrategyHybridSearch combines vector and graph retrieval.
	StrategyHybridSearch Strategy = "hybrid_search"
)

const routerInstructions = `You are an expert at routing a user's question to the appropriate retrieval strategy.
Your goal is to choose the best strategy to answer the user's question based on these strict definitions:

1. vector_search: Choose this for any question that asks for definitions, summaries, explanations, or general information about a topic.
   Examples:
   - "What is an Ayush Hospital?"
   - "Summarize the grace period."
   - "What are the exclusions under this policy?"

2. graph_qa: Choose this ONLY for questions that ask about the explicit relationships or connections between two or more specific entities.
   Examples:
   - "Who is the CEO of National Insurance?"
   - "What is the relationship between the Arogya Sanjeevani Policy and National Insurance?"

3. hybrid_search: Choose this for mixed questions that need both general information and entity relationships.

You must output a JSON object with the 'strategy' and 'question' keys.`

// Router decides the retrieval strategy for a question.
type Router struct {
	generator llm.Generator
}

// NewRouter creates a router backed by the given generator.
func NewRouter(generator llm.Generator) *Router {
	return &Router{generator: generator}
}

type routeDecision struct {
	Strategy string `json:"strategy"`
	Question string `json:"question"`
}

// Route asks the LLM which strategy fits the question. Routing failures
// fall back to vector search so a flaky model never blocks an answer.
func (r *Router) Route(ctx context.Context, question string) Strategy {
	result, err := r.generator.Generate(ctx, llm.GenerateParams{
		Instructions: routerInstructions,
		UserInput:    fmt.Sprintf("Question: %s", question),
		JSONMode:     true,
	})
	if err != nil {
		slog.Warn("query routing failed, falling back to vector search", "error", err)
		return StrategyVectorSearch
	}

	var decision routeDecision
	if err := json.Unmarshal([]byte(result.Text), &decision); err != nil {
		slog.Warn("undecodable routing decision, falling back to vector search",
			"response", result.Text, "error", err)
		return StrategyVectorSearch
	}

	strategy := Strategy(strings.TrimSpace(decision.Strategy))
	slog.Debug("routing decision", "strategy", strategy, "question", question)
	return strategy
}
