// Package rag orchestrates the document pipeline: extract text, build the
// parent/child chunk hierarchy, embed, extract the knowledge graph, and
// persist everything for retrieval.
package rag

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/AyUsHh66/Bajaj-Hackrx/internal/rag/chunker"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/rag/embedder"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/rag/extractor"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/rag/graphex"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/rag/vectorstore"
)

// GraphExtractor turns chunks into a knowledge graph. Satisfied by
// graphex.Extractor.
type GraphExtractor interface {
	ExtractFromChunks(ctx context.Context, chunks []chunker.ChildChunk) (*graphex.Graph, error)
}

// Service orchestrates document ingestion and chunk retrieval.
type Service struct {
	embedder  embedder.Embedder
	store     vectorstore.Store
	extractor extractor.Extractor
	graphex   GraphExtractor
	opts      ServiceOptions
}

// ServiceOptions configures the RAG service.
type ServiceOptions struct {
	// ParentChunkSize is the parent chunk target size in characters.
	ParentChunkSize int

	// ParentChunkOverlap is the overlap between parent chunks.
	ParentChunkOverlap int

	// ChildChunkSize is the child chunk target size in characters.
	ChildChunkSize int

	// ChildChunkOverlap is the overlap between child chunks.
	ChildChunkOverlap int

	// RetrievalTopK is the default number of chunks to retrieve.
	RetrievalTopK int
}

// DefaultServiceOptions returns the pipeline defaults.
func DefaultServiceOptions() ServiceOptions {
	return ServiceOptions{
		ParentChunkSize:    1024,
		ParentChunkOverlap: 128,
		ChildChunkSize:     400,
		ChildChunkOverlap:  100,
		RetrievalTopK:      4,
	}
}

// NewService creates a new RAG service. The graph extractor may be nil, in
// which case ingestion skips knowledge graph construction.
func NewService(
	emb embedder.Embedder,
	store vectorstore.Store,
	ext extractor.Extractor,
	gx GraphExtractor,
	opts ServiceOptions,
) *Service {
	defaults := DefaultServiceOptions()
	if opts.ParentChunkSize <= 0 {
		opts.ParentChunkSize = defaults.ParentChunkSize
	}
	if opts.ParentChunkOverlap <= 0 {
		opts.ParentChunkOverlap = defaults.ParentChunkOverlap
	}
	if opts.ChildChunkSize <= 0 {
		opts.ChildChunkSize = defaults.ChildChunkSize
	}
	if opts.ChildChunkOverlap <= 0 {
		opts.ChildChunkOverlap = defaults.ChildChunkOverlap
	}
	if opts.RetrievalTopK <= 0 {
		opts.RetrievalTopK = defaults.RetrievalTopK
	}

	return &Service{
		embedder:  emb,
		store:     store,
		extractor: ext,
		graphex:   gx,
		opts:      opts,
	}
}

// IngestParams contains parameters for document ingestion.
type IngestParams struct {
	// File is the document content to ingest.
	File io.Reader

	// Filename is the original filename.
	Filename string

	// MIMEType is the file's MIME type.
	MIMEType string
}

// IngestResult summarizes what a document contributed to the index.
type IngestResult struct {
	Filename           string `json:"filename"`
	ParentChunks       int    `json:"total_parent_chunks"`
	ChildChunks        int    `json:"total_child_chunks"`
	GraphNodes         int    `json:"total_graph_nodes"`
	GraphRelationships int    `json:"total_graph_relationships"`
}

// Ingest runs the full pipeline for one document.
func (s *Service) Ingest(ctx context.Context, params IngestParams) (*IngestResult, error) {
	if err := s.store.EnsureIndex(ctx, s.embedder.Dimensions()); err != nil {
		return nil, fmt.Errorf("ensure index: %w", err)
	}

	extracted, err := s.extractor.Extract(ctx, params.File, params.Filename, params.MIMEType)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	if len(extracted.Text) == 0 {
		return &IngestResult{Filename: params.Filename}, nil
	}

	parents, children := chunker.ChunkHierarchy(extracted.Text, chunker.HierarchyOptions{
		ParentSize:    s.opts.ParentChunkSize,
		ParentOverlap: s.opts.ParentChunkOverlap,
		ChildSize:     s.opts.ChildChunkSize,
		ChildOverlap:  s.opts.ChildChunkOverlap,
	})
	if len(parents) == 0 {
		return &IngestResult{Filename: params.Filename}, nil
	}

	texts := make([]string, len(parents))
	for i, p := range parents {
		texts[i] = p.Text
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("generate embeddings: %w", err)
	}
	if len(embeddings) != len(parents) {
		return nil, fmt.Errorf("embedding count %d does not match parent count %d", len(embeddings), len(parents))
	}

	points := make([]vectorstore.ParentPoint, len(parents))
	for i, p := range parents {
		points[i] = vectorstore.ParentPoint{
			ID:       p.ID,
			Text:     p.Text,
			Filename: params.Filename,
			Vector:   embeddings[i],
		}
	}
	if err := s.store.UpsertParents(ctx, points); err != nil {
		return nil, fmt.Errorf("store parent chunks: %w", err)
	}

	childPoints := make([]vectorstore.ChildPoint, len(children))
	for i, c := range children {
		childPoints[i] = vectorstore.ChildPoint{
			ParentID: c.ParentID,
			Index:    c.Index,
			Text:     c.Text,
		}
	}
	if err := s.store.AddChildren(ctx, childPoints); err != nil {
		return nil, fmt.Errorf("store child chunks: %w", err)
	}

	result := &IngestResult{
		Filename:     params.Filename,
		ParentChunks: len(parents),
		ChildChunks:  len(children),
	}

	if s.graphex != nil {
		graph, err := s.graphex.ExtractFromChunks(ctx, children)
		if err != nil {
			return nil, fmt.Errorf("extract graph: %w", err)
		}
		if err := s.store.AddGraph(ctx, graph); err != nil {
			return nil, fmt.Errorf("store graph: %w", err)
		}
		result.GraphNodes = len(graph.Nodes)
		result.GraphRelationships = len(graph.Relationships)
	}

	slog.Info("document ingested",
		"filename", params.Filename,
		"parent_chunks", result.ParentChunks,
		"child_chunks", result.ChildChunks,
		"graph_nodes", result.GraphNodes,
		"graph_relationships", result.GraphRelationships,
	)

	return result, nil
}

// Retrieve embeds the query and returns the most similar parent chunks.
func (s *Service) Retrieve(ctx context.Context, query string, topK int) ([]vectorstore.SearchResult, error) {
	if topK <= 0 {
		topK = s.opts.RetrievalTopK
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.store.Search(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	return results, nil
}
