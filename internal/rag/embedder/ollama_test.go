package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewOllamaEmbedder_Defaults(t *testing.T) {
	emb := NewOllamaEmbedder(OllamaConfig{})

	if emb.baseURL != "http://localhost:11434" {
		t.Errorf("expected default baseURL, got %s", emb.baseURL)
	}
	if emb.model != "nomic-embed-text" {
		t.Errorf("expected default model, got %s", emb.model)
	}
	if emb.dimensions != 768 {
		t.Errorf("expected default dimensions=768, got %d", emb.dimensions)
	}
}

func TestOllamaEmbedder_Dimensions(t *testing.T) {
	tests := []struct {
		model string
		dims  int
	}{
		{"nomic-embed-text", 768},
		{"mxbai-embed-large", 1024},
		{"bge-m3", 1024},
		{"all-minilm", 384},
		{"unknown-model", 768}, // default
	}

	for _, tt := range tests {
		emb := NewOllamaEmbedder(OllamaConfig{Model: tt.model})
		if emb.Dimensions() != tt.dims {
			t.Errorf("model %s: expected dims=%d, got %d", tt.model, tt.dims, emb.Dimensions())
		}
	}
}

func TestOllamaEmbedder_Embed_Success(t *testing.T) {
	expectedDims := 384
	embedding := make([]float64, expectedDims)
	for i := range embedding {
		embedding[i] = float64(i) / float64(expectedDims)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("expected /api/embeddings, got %s", r.URL.Path)
		}

		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Model != "all-minilm" {
			t.Errorf("expected model=all-minilm, got %s", req.Model)
		}
		if req.Prompt != "test input" {
			t.Errorf("expected prompt='test input', got %s", req.Prompt)
		}

		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: embedding})
	}))
	defer server.Close()

	emb := NewOllamaEmbedder(OllamaConfig{BaseURL: server.URL, Model: "all-minilm"})
	result, err := emb.Embed(context.Background(), "test input")

	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(result) != expectedDims {
		t.Errorf("expected %d dimensions, got %d", expectedDims, len(result))
	}
	if result[0] != float32(0) {
		t.Errorf("expected first value=0, got %f", result[0])
	}
}

func TestOllamaEmbedder_Embed_RetriesServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: make([]float64, 768)})
	}))
	defer server.Close()

	emb := NewOllamaEmbedder(OllamaConfig{BaseURL: server.URL})
	result, err := emb.Embed(context.Background(), "test")

	if err != nil {
		t.Fatalf("Embed should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
	if len(result) != 768 {
		t.Errorf("expected 768 dimensions, got %d", len(result))
	}
}

func TestOllamaEmbedder_Embed_PermanentError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("model not found"))
	}))
	defer server.Close()

	emb := NewOllamaEmbedder(OllamaConfig{BaseURL: server.URL})
	_, err := emb.Embed(context.Background(), "test")

	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if calls != 1 {
		t.Errorf("404 should not be retried, got %d calls", calls)
	}
}

func TestOllamaEmbedder_Embed_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not valid json"))
	}))
	defer server.Close()

	emb := NewOllamaEmbedder(OllamaConfig{BaseURL: server.URL})
	_, err := emb.Embed(context.Background(), "test")

	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "decode") {
		t.Errorf("error should mention decoding: %v", err)
	}
}

func TestOllamaEmbedder_Embed_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float64{1.0}})
	}))
	defer server.Close()

	emb := NewOllamaEmbedder(OllamaConfig{BaseURL: server.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := emb.Embed(ctx, "test"); err == nil {
		t.Fatal("expected context canceled error")
	}
}

func TestOllamaEmbedder_EmbedBatch_Success(t *testing.T) {
	callCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		embedding := make([]float64, 384)
		for i := range embedding {
			embedding[i] = float64(callCount)
		}
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: embedding})
	}))
	defer server.Close()

	emb := NewOllamaEmbedder(OllamaConfig{BaseURL: server.URL, Model: "all-minilm"})
	results, err := emb.EmbedBatch(context.Background(), []string{"first", "second", "third"})

	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
	if callCount != 3 {
		t.Errorf("expected 3 API calls, got %d", callCount)
	}
	if results[0][0] == results[1][0] {
		t.Error("expected different embeddings for different inputs")
	}
}

func TestOllamaEmbedder_EmbedBatch_PartialFailure(t *testing.T) {
	callCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		if callCount == 2 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: make([]float64, 768)})
	}))
	defer server.Close()

	emb := NewOllamaEmbedder(OllamaConfig{BaseURL: server.URL})
	_, err := emb.EmbedBatch(context.Background(), []string{"first", "second", "third"})

	if err == nil {
		t.Fatal("expected error on partial failure")
	}
	if !strings.Contains(err.Error(), "text 1") {
		t.Errorf("error should indicate which text failed: %v", err)
	}
}

func TestOllamaEmbedder_EmbedBatch_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("should not call server for empty batch")
	}))
	defer server.Close()

	emb := NewOllamaEmbedder(OllamaConfig{BaseURL: server.URL})
	results, err := emb.EmbedBatch(context.Background(), []string{})

	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty results, got %d", len(results))
	}
}
