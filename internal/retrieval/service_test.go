package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/AyUsHh66/Bajaj-Hackrx/internal/llm"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/rag/testutil"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/rag/vectorstore"
)

// fakeRetriever returns canned search results.
type fakeRetriever struct {
	results []vectorstore.SearchResult
	err     error
	queries []string
	topKs   []int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, topK int) ([]vectorstore.SearchResult, error) {
	f.queries = append(f.queries, query)
	f.topKs = append(f.topKs, topK)
	return f.results, f.err
}

// routeThenAnswer returns the routing decision on the first JSON-mode call
// and the answer on subsequent calls.
func routeThenAnswer(strategy, answer string) func(ctx context.Context, params llm.GenerateParams) (llm.GenerateResult, error) {
	return func(ctx context.Context, params llm.GenerateParams) (llm.GenerateResult, error) {
		if params.JSONMode {
			return llm.GenerateResult{Text: `{"strategy":"` + strategy + `","question":"q"}`}, nil
		}
		return llm.GenerateResult{Text: answer}, nil
	}
}

func TestRouter_Route(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		want     Strategy
	}{
		{"vector search", `{"strategy":"vector_search","question":"q"}`, nil, StrategyVectorSearch},
		{"graph qa", `{"strategy":"graph_qa","question":"q"}`, nil, StrategyGraphQA},
		{"hybrid", `{"strategy":"hybrid_search","question":"q"}`, nil, StrategyHybridSearch},
		{"whitespace trimmed", `{"strategy":" vector_search ","question":"q"}`, nil, StrategyVectorSearch},
		{"generator error falls back", "", errors.New("llm down"), StrategyVectorSearch},
		{"invalid json falls back", "not json", nil, StrategyVectorSearch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := testutil.NewMockGenerator()
			gen.GenerateFunc = func(ctx context.Context, params llm.GenerateParams) (llm.GenerateResult, error) {
				if !params.JSONMode {
					t.Error("routing should use JSON mode")
				}
				if tt.err != nil {
					return llm.GenerateResult{}, tt.err
				}
				return llm.GenerateResult{Text: tt.response}, nil
			}

			router := NewRouter(gen)
			got := router.Route(context.Background(), "What is the grace period?")
			if got != tt.want {
				t.Errorf("Route() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestService_AnswerQuery_VectorSearch(t *testing.T) {
	gen := testutil.NewMockGenerator()
	gen.GenerateFunc = routeThenAnswer("vector_search", "The grace period is thirty days.")

	retriever := &fakeRetriever{results: []vectorstore.SearchResult{
		{Text: "A grace period of thirty days is provided.", Score: 0.93},
		{Text: "Premiums are payable annually.", Score: 0.81},
	}}

	svc := NewService(NewRouter(gen), retriever, gen, 4)
	answer, err := svc.AnswerQuery(context.Background(), "What is the grace period?")
	if err != nil {
		t.Fatalf("AnswerQuery failed: %v", err)
	}

	if answer.Answer != "The grace period is thirty days." {
		t.Errorf("unexpected answer: %q", answer.Answer)
	}
	if answer.Strategy != StrategyVectorSearch {
		t.Errorf("expected vector_search strategy, got %s", answer.Strategy)
	}
	if len(answer.Sources) != 2 {
		t.Errorf("expected 2 sources, got %d", len(answer.Sources))
	}

	if len(retriever.queries) != 1 || retriever.queries[0] != "What is the grace period?" {
		t.Errorf("unexpected retriever queries: %v", retriever.queries)
	}
	if retriever.topKs[0] != 4 {
		t.Errorf("expected topK=4, got %d", retriever.topKs[0])
	}

	// The synthesis call receives the retrieved chunks as context
	var synthesis *llm.GenerateParams
	for i := range gen.GenerateCalls {
		if !gen.GenerateCalls[i].JSONMode {
			synthesis = &gen.GenerateCalls[i]
		}
	}
	if synthesis == nil {
		t.Fatal("expected a synthesis call")
	}
	if !strings.Contains(synthesis.UserInput, "A grace period of thirty days is provided.") {
		t.Errorf("context missing from synthesis prompt: %q", synthesis.UserInput)
	}
	if !strings.Contains(synthesis.Instructions, NoAnswerPhrase) {
		t.Error("synthesis instructions should pin the no-answer phrase")
	}
}

func TestService_AnswerQuery_HybridUsesVectorRetrieval(t *testing.T) {
	gen := testutil.NewMockGenerator()
	gen.GenerateFunc = routeThenAnswer("hybrid_search", "answer")

	retriever := &fakeRetriever{results: []vectorstore.SearchResult{{Text: "chunk", Score: 0.9}}}
	svc := NewService(NewRouter(gen), retriever, gen, 4)

	answer, err := svc.AnswerQuery(context.Background(), "mixed question")
	if err != nil {
		t.Fatalf("AnswerQuery failed: %v", err)
	}
	if len(retriever.queries) != 1 {
		t.Error("hybrid strategy should hit the retriever")
	}
	if answer.Strategy != StrategyHybridSearch {
		t.Errorf("expected hybrid_search, got %s", answer.Strategy)
	}
}

func TestService_AnswerQuery_GraphQAPlaceholder(t *testing.T) {
	gen := testutil.NewMockGenerator()
	gen.GenerateFunc = routeThenAnswer("graph_qa", NoAnswerPhrase)

	retriever := &fakeRetriever{}
	svc := NewService(NewRouter(gen), retriever, gen, 4)

	answer, err := svc.AnswerQuery(context.Background(), "Who is the CEO of National Insurance?")
	if err != nil {
		t.Fatalf("AnswerQuery failed: %v", err)
	}

	if len(retriever.queries) != 0 {
		t.Error("graph_qa should not hit the vector retriever")
	}
	if len(answer.Sources) != 0 {
		t.Errorf("graph_qa should return no sources, got %d", len(answer.Sources))
	}

	var synthesis *llm.GenerateParams
	for i := range gen.GenerateCalls {
		if !gen.GenerateCalls[i].JSONMode {
			synthesis = &gen.GenerateCalls[i]
		}
	}
	if synthesis == nil {
		t.Fatal("expected a synthesis call")
	}
	if !strings.Contains(synthesis.UserInput, "Graph QA is not yet implemented") {
		t.Errorf("graph_qa context missing placeholder: %q", synthesis.UserInput)
	}
}

func TestService_AnswerQuery_UnknownStrategy(t *testing.T) {
	gen := testutil.NewMockGenerator()
	gen.GenerateFunc = routeThenAnswer("keyword_search", NoAnswerPhrase)

	retriever := &fakeRetriever{}
	svc := NewService(NewRouter(gen), retriever, gen, 4)

	answer, err := svc.AnswerQuery(context.Background(), "question")
	if err != nil {
		t.Fatalf("AnswerQuery failed: %v", err)
	}

	if len(retriever.queries) != 0 {
		t.Error("unknown strategy should not hit the retriever")
	}
	if answer.Answer != NoAnswerPhrase {
		t.Errorf("unexpected answer: %q", answer.Answer)
	}
}

func TestService_AnswerQuery_RetrieverError(t *testing.T) {
	gen := testutil.NewMockGenerator()
	gen.GenerateFunc = routeThenAnswer("vector_search", "answer")

	retriever := &fakeRetriever{err: errors.New("neo4j unavailable")}
	svc := NewService(NewRouter(gen), retriever, gen, 4)

	if _, err := svc.AnswerQuery(context.Background(), "question"); err == nil {
		t.Fatal("expected error when retrieval fails")
	}
}

func TestService_AnswerQuery_SynthesisError(t *testing.T) {
	gen := testutil.NewMockGenerator()
	gen.GenerateFunc = func(ctx context.Context, params llm.GenerateParams) (llm.GenerateResult, error) {
		if params.JSONMode {
			return llm.GenerateResult{Text: `{"strategy":"vector_search","question":"q"}`}, nil
		}
		return llm.GenerateResult{}, errors.New("gemini overloaded")
	}

	retriever := &fakeRetriever{}
	svc := NewService(NewRouter(gen), retriever, gen, 4)

	if _, err := svc.AnswerQuery(context.Background(), "question"); err == nil {
		t.Fatal("expected error when synthesis fails")
	}
}

func TestService_AnswerAll(t *testing.T) {
	gen := testutil.NewMockGenerator()
	gen.GenerateFunc = routeThenAnswer("vector_search", "the answer")

	retriever := &fakeRetriever{results: []vectorstore.SearchResult{{Text: "chunk", Score: 0.9}}}
	svc := NewService(NewRouter(gen), retriever, gen, 4)

	answers, err := svc.AnswerAll(context.Background(), []string{"q1", "q2", "q3"})
	if err != nil {
		t.Fatalf("AnswerAll failed: %v", err)
	}

	if len(answers) != 3 {
		t.Fatalf("expected 3 answers, got %d", len(answers))
	}
	for i, a := range answers {
		if a != "the answer" {
			t.Errorf("answer %d: unexpected text %q", i, a)
		}
	}
	if len(retriever.queries) != 3 {
		t.Errorf("expected 3 retrievals, got %d", len(retriever.queries))
	}
}

func TestService_AnswerAll_Empty(t *testing.T) {
	gen := testutil.NewMockGenerator()
	svc := NewService(NewRouter(gen), &fakeRetriever{}, gen, 4)

	answers, err := svc.AnswerAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("AnswerAll failed: %v", err)
	}
	if len(answers) != 0 {
		t.Errorf("expected no answers, got %d", len(answers))
	}
	if len(gen.GenerateCalls) != 0 {
		t.Errorf("expected no LLM calls, got %d", len(gen.GenerateCalls))
	}
}
