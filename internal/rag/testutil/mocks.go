// Package testutil provides test utilities and mocks for the RAG packages.
package testutil

import (
	"context"
	"io"
	"math/rand"
	"sync"

	"github.com/AyUsHh66/Bajaj-Hackrx/internal/llm"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/rag/chunker"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/rag/extractor"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/rag/graphex"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/rag/vectorstore"
)

// MockEmbedder is a configurable mock for the Embedder interface.
type MockEmbedder struct {
	mu sync.Mutex

	// Function hooks for custom behavior
	EmbedFunc      func(ctx context.Context, text string) ([]float32, error)
	EmbedBatchFunc func(ctx context.Context, texts []string) ([][]float32, error)

	// Configuration
	Dims      int
	ModelName string

	// Call tracking
	EmbedCalls      []string
	EmbedBatchCalls [][]string
}

// NewMockEmbedder creates a new mock embedder with default behavior.
func NewMockEmbedder(dims int) *MockEmbedder {
	return &MockEmbedder{
		Dims:      dims,
		ModelName: "mock-embed",
	}
}

// Embed generates a mock embedding.
func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.EmbedCalls = append(m.EmbedCalls, text)
	m.mu.Unlock()

	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, text)
	}

	return RandomEmbedding(m.Dims), nil
}

// EmbedBatch generates mock embeddings for multiple texts.
func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.EmbedBatchCalls = append(m.EmbedBatchCalls, texts)
	m.mu.Unlock()

	if m.EmbedBatchFunc != nil {
		return m.EmbedBatchFunc(ctx, texts)
	}

	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = RandomEmbedding(m.Dims)
	}
	return embeddings, nil
}

// Dimensions returns the configured dimensions.
func (m *MockEmbedder) Dimensions() int {
	return m.Dims
}

// Model returns the mock model name.
func (m *MockEmbedder) Model() string {
	return m.ModelName
}

// Reset clears call tracking.
func (m *MockEmbedder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EmbedCalls = nil
	m.EmbedBatchCalls = nil
}

// MockStore is a configurable in-memory mock for the Store interface.
type MockStore struct {
	mu sync.Mutex

	// In-memory storage
	Parents  map[string]vectorstore.ParentPoint
	Children []vectorstore.ChildPoint
	Graph    graphex.Graph

	// Function hooks for custom behavior
	EnsureIndexFunc   func(ctx context.Context, dimensions int) error
	UpsertParentsFunc func(ctx context.Context, parents []vectorstore.ParentPoint) error
	AddChildrenFunc   func(ctx context.Context, children []vectorstore.ChildPoint) error
	AddGraphFunc      func(ctx context.Context, graph *graphex.Graph) error
	SearchFunc        func(ctx context.Context, vector []float32, limit int) ([]vectorstore.SearchResult, error)

	// Call tracking
	EnsureIndexCalls []int
	SearchCalls      []searchCall
}

type searchCall struct {
	Vector []float32
	Limit  int
}

// NewMockStore creates a new mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		Parents: make(map[string]vectorstore.ParentPoint),
	}
}

// EnsureIndex records the index creation.
func (m *MockStore) EnsureIndex(ctx context.Context, dimensions int) error {
	m.mu.Lock()
	m.EnsureIndexCalls = append(m.EnsureIndexCalls, dimensions)
	m.mu.Unlock()

	if m.EnsureIndexFunc != nil {
		return m.EnsureIndexFunc(ctx, dimensions)
	}
	return nil
}

// UpsertParents stores parent chunks in memory.
func (m *MockStore) UpsertParents(ctx context.Context, parents []vectorstore.ParentPoint) error {
	if m.UpsertParentsFunc != nil {
		return m.UpsertParentsFunc(ctx, parents)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range parents {
		m.Parents[p.ID] = p
	}
	return nil
}

// AddChildren stores child chunks in memory.
func (m *MockStore) AddChildren(ctx context.Context, children []vectorstore.ChildPoint) error {
	if m.AddChildrenFunc != nil {
		return m.AddChildrenFunc(ctx, children)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Children = append(m.Children, children...)
	return nil
}

// AddGraph accumulates graph entities in memory.
func (m *MockStore) AddGraph(ctx context.Context, graph *graphex.Graph) error {
	if m.AddGraphFunc != nil {
		return m.AddGraphFunc(ctx, graph)
	}

	if graph == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Graph.Nodes = append(m.Graph.Nodes, graph.Nodes...)
	m.Graph.Relationships = append(m.Graph.Relationships, graph.Relationships...)
	return nil
}

// Search returns stored parents with a fixed score.
func (m *MockStore) Search(ctx context.Context, vector []float32, limit int) ([]vectorstore.SearchResult, error) {
	m.mu.Lock()
	m.SearchCalls = append(m.SearchCalls, searchCall{vector, limit})
	m.mu.Unlock()

	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, vector, limit)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var results []vectorstore.SearchResult
	for _, p := range m.Parents {
		if len(results) >= limit {
			break
		}
		results = append(results, vectorstore.SearchResult{Text: p.Text, Score: 0.9})
	}
	return results, nil
}

// Reset clears all data and call tracking.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Parents = make(map[string]vectorstore.ParentPoint)
	m.Children = nil
	m.Graph = graphex.Graph{}
	m.EnsureIndexCalls = nil
	m.SearchCalls = nil
}

// MockExtractor is a configurable mock for the Extractor interface.
type MockExtractor struct {
	mu sync.Mutex

	// Function hook for custom behavior
	ExtractFunc func(ctx context.Context, file io.Reader, filename, mimeType string) (*extractor.ExtractionResult, error)

	// Default response
	DefaultText string

	// Call tracking
	ExtractCalls []extractCall
}

type extractCall struct {
	Filename string
	MIMEType string
	Content  []byte
}

// NewMockExtractor creates a new mock extractor.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{
		DefaultText: "This is extracted text from the document.",
	}
}

// Extract returns mock extraction results.
func (m *MockExtractor) Extract(ctx context.Context, file io.Reader, filename, mimeType string) (*extractor.ExtractionResult, error) {
	content, _ := io.ReadAll(file)

	m.mu.Lock()
	m.ExtractCalls = append(m.ExtractCalls, extractCall{filename, mimeType, content})
	m.mu.Unlock()

	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, nil, filename, mimeType)
	}

	return &extractor.ExtractionResult{
		Text:      m.DefaultText,
		PageCount: 1,
		Metadata:  map[string]any{"mock": true},
	}, nil
}

// IsSupported reports common document formats as supported.
func (m *MockExtractor) IsSupported(filename string) bool {
	return true
}

// Reset clears call tracking.
func (m *MockExtractor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExtractCalls = nil
}

// MockGenerator is a configurable mock for the llm.Generator interface.
type MockGenerator struct {
	mu sync.Mutex

	// Function hook for custom behavior
	GenerateFunc func(ctx context.Context, params llm.GenerateParams) (llm.GenerateResult, error)

	// Default response
	DefaultText string

	// Call tracking
	GenerateCalls []llm.GenerateParams
}

// NewMockGenerator creates a new mock generator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		DefaultText: "mock completion",
	}
}

// Name returns the mock backend identifier.
func (m *MockGenerator) Name() string {
	return "mock"
}

// Generate returns the configured completion.
func (m *MockGenerator) Generate(ctx context.Context, params llm.GenerateParams) (llm.GenerateResult, error) {
	m.mu.Lock()
	m.GenerateCalls = append(m.GenerateCalls, params)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, params)
	}

	return llm.GenerateResult{Text: m.DefaultText, Model: "mock"}, nil
}

// Reset clears call tracking.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateCalls = nil
}

// MockGraphExtractor is a configurable mock for graph extraction.
type MockGraphExtractor struct {
	mu sync.Mutex

	// Function hook for custom behavior
	ExtractFunc func(ctx context.Context, chunks []chunker.ChildChunk) (*graphex.Graph, error)

	// Default response
	DefaultGraph *graphex.Graph

	// Call tracking
	ExtractCallCount int
}

// NewMockGraphExtractor creates a new mock graph extractor.
func NewMockGraphExtractor() *MockGraphExtractor {
	return &MockGraphExtractor{
		DefaultGraph: &graphex.Graph{},
	}
}

// ExtractFromChunks returns the configured graph.
func (m *MockGraphExtractor) ExtractFromChunks(ctx context.Context, chunks []chunker.ChildChunk) (*graphex.Graph, error) {
	m.mu.Lock()
	m.ExtractCallCount++
	m.mu.Unlock()

	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, chunks)
	}
	return m.DefaultGraph, nil
}

// Helper functions

// RandomEmbedding generates a random embedding vector.
func RandomEmbedding(dims int) []float32 {
	embedding := make([]float32, dims)
	for i := range embedding {
		embedding[i] = rand.Float32()
	}
	return embedding
}

// SampleText generates sample text of approximately the given size.
func SampleText(size int) string {
	words := []string{"the", "quick", "brown", "fox", "jumps", "over", "lazy", "dog"}
	var result string
	for len(result) < size {
		for _, w := range words {
			result += w + " "
			if len(result) >= size {
				break
			}
		}
	}
	return result[:size]
}
