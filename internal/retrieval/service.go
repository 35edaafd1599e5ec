package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AyUsHh66/Bajaj-Hackrx/internal/llm"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/rag/vectorstore"
)

// NoAnswerPhrase is the exact response when the context does not cover the
// question. Clients match on it, so it must not change.
const NoAnswerPhrase = "The provided document does not contain information on this topic."

const graphQAPlaceholder = "Graph QA is not yet implemented. Please ask a broader question."

const unknownStrategyContext = "Could not determine a valid retrieval strategy."

const synthesisInstructions = `You are a specialized Q&A assistant for an insurance policy document.
Your knowledge is strictly limited to the information contained in the 'Context' provided below. You must not use any outside information.

Your task is to answer the user's 'Question' based ONLY on the 'Context'.

Instructions:
1. Read the 'Context' carefully.
2. Formulate a direct and concise answer to the 'Question' using only the facts and text from the 'Context'.
3. If the 'Context' contains the answer, provide it directly.
4. If the 'Context' does NOT contain the information needed to answer the 'Question', you must respond with the exact phrase: "` + NoAnswerPhrase + `"
5. Do not, under any circumstances, say "I have no context" or "I cannot answer."`

// Retriever finds chunks similar to a query. Satisfied by rag.Service.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]vectorstore.SearchResult, error)
}

// Service orchestrates routing, retrieval, and answer synthesis.
type Service struct {
	router    *Router
	retriever Retriever
	generator llm.Generator
	topK      int
}

// NewService creates a retrieval service. topK bounds how many chunks feed
// the synthesis prompt.
func NewService(router *Router, retriever Retriever, generator llm.Generator, topK int) *Service {
	if topK <= 0 {
		topK = 4
	}
	return &Service{
		router:    router,
		retriever: retriever,
		generator: generator,
		topK:      topK,
	}
}

// Answer is the result of answering a single question.
type Answer struct {
	// Answer is the synthesized response text.
	Answer string

	// Strategy is the routing decision that produced the context.
	Strategy Strategy

	// Sources are the retrieved chunks the answer was grounded on.
	Sources []vectorstore.SearchResult
}

// AnswerQuery routes the question, gathers context, and synthesizes an
// answer from it.
func (s *Service) AnswerQuery(ctx context.Context, question string) (*Answer, error) {
	strategy := s.router.Route(ctx, question)

	var (
		contextText string
		sources     []vectorstore.SearchResult
	)

	switch strategy {
	case StrategyVectorSearch, StrategyHybridSearch:
		results, err := s.retriever.Retrieve(ctx, question, s.topK)
		if err != nil {
			return nil, fmt.Errorf("retrieve context: %w", err)
		}
		sources = results

		parts := make([]string, len(results))
		for i, r := range results {
			parts[i] = r.Text
		}
		contextText = strings.Join(parts, "\n\n")
	case StrategyGraphQA:
		contextText = graphQAPlaceholder
	default:
		slog.Warn("unknown retrieval strategy", "strategy", strategy, "question", question)
		contextText = unknownStrategyContext
	}

	answer, err := s.synthesize(ctx, question, contextText)
	if err != nil {
		return nil, err
	}

	return &Answer{
		Answer:   answer,
		Strategy: strategy,
		Sources:  sources,
	}, nil
}

// AnswerAll answers each question in order.
func (s *Service) AnswerAll(ctx context.Context, questions []string) ([]string, error) {
	answers := make([]string, len(questions))
	for i, question := range questions {
		result, err := s.AnswerQuery(ctx, question)
		if err != nil {
			return nil, fmt.Errorf("answer question %d: %w", i, err)
		}
		answers[i] = result.Answer
	}
	return answers, nil
}

// synthesize generates the final answer from the gathered context.
func (s *Service) synthesize(ctx context.Context, question, contextText string) (string, error) {
	prompt := fmt.Sprintf("Context:\n%s\n\nQuestion:\n%s\n\nAnswer:", contextText, question)

	result, err := s.generator.Generate(ctx, llm.GenerateParams{
		Instructions: synthesisInstructions,
		UserInput:    prompt,
	})
	if err != nil {
		return "", fmt.Errorf("synthesize answer: %w", err)
	}

	return strings.TrimSpace(result.Text), nil
}
