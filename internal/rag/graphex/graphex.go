// Package graphex extracts a knowledge graph (entities and relationships)
// from document chunks using an LLM in JSON mode.
package graphex

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AyUsHh66/Bajaj-Hackrx/internal/llm"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/rag/chunker"
)

// Node is a single entity extracted from the text.
type Node struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Relationship connects two extracted entities.
type Relationship struct {
	SourceID string `json:"source"`
	TargetID string `json:"target"`
	Type     string `json:"type"`
}

// Graph is the combined extraction result for a document.
type Graph struct {
	Nodes         []Node
	Relationships []Relationship
}

// batchSize is the number of chunks combined into a single LLM call.
const batchSize = 5

const extractionInstructions = `You extract entities and relationships from text to build a knowledge graph.
Respond with a single JSON object of the form:
{"nodes": [{"id": "entity name", "type": "entity type"}], "relationships": [{"source": "entity name", "target": "entity name", "type": "RELATION_TYPE"}]}
Use concise entity names as ids. Relationship types are upper snake case verbs. Only include entities and relationships stated in the text. Respond with JSON only.`

// Extractor runs graph extraction over chunk batches.
type Extractor struct {
	generator llm.Generator
}

// NewExtractor creates a graph extractor backed by the given generator.
func NewExtractor(generator llm.Generator) *Extractor {
	return &Extractor{generator: generator}
}

// llmGraph is the wire shape of a single extraction response. Field types
// are deliberately loose: local models frequently omit fields or emit
// malformed entries, and a bad batch should degrade rather than fail the
// whole document.
type llmGraph struct {
	Nodes []struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	} `json:"nodes"`
	Relationships []struct {
		Source string `json:"source"`
		Target string `json:"target"`
		Type   string `json:"type"`
	} `json:"relationships"`
}

// ExtractFromChunks runs extraction over the chunks in batches and merges
// the results into a single deduplicated graph.
func (e *Extractor) ExtractFromChunks(ctx context.Context, chunks []chunker.ChildChunk) (*Graph, error) {
	graph := &Graph{}
	seenNodes := make(map[string]bool)
	seenRels := make(map[string]bool)

	for start := 0; start < len(chunks); start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		partial, err := e.extractBatch(ctx, chunks[start:end])
		if err != nil {
			// A failed batch loses its entities but not the document
			slog.Warn("graph extraction batch failed",
				"batch_start", start,
				"batch_end", end,
				"error", err,
			)
			continue
		}

		mergeGraph(graph, partial, seenNodes, seenRels)
	}

	return graph, nil
}

// extractBatch sends one batch of chunks to the LLM and decodes the result.
func (e *Extractor) extractBatch(ctx context.Context, chunks []chunker.ChildChunk) (*llmGraph, error) {
	var sb strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(chunk.Text)
	}

	result, err := e.generator.Generate(ctx, llm.GenerateParams{
		Instructions: extractionInstructions,
		UserInput:    sb.String(),
		JSONMode:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("generate graph: %w", err)
	}

	var g llmGraph
	if err := json.Unmarshal([]byte(result.Text), &g); err != nil {
		return nil, fmt.Errorf("decode graph response: %w", err)
	}

	return &g, nil
}

// mergeGraph folds a batch result into the accumulated graph, normalizing
// partial entries and dropping duplicates and malformed relationships.
func mergeGraph(graph *Graph, partial *llmGraph, seenNodes, seenRels map[string]bool) {
	for _, n := range partial.Nodes {
		id := strings.TrimSpace(n.ID)
		if id == "" {
			continue
		}
		nodeType := strings.TrimSpace(n.Type)
		if nodeType == "" {
			nodeType = "Unknown"
		}
		if seenNodes[id] {
			continue
		}
		seenNodes[id] = true
		graph.Nodes = append(graph.Nodes, Node{ID: id, Type: nodeType})
	}

	for _, r := range partial.Relationships {
		source := strings.TrimSpace(r.Source)
		target := strings.TrimSpace(r.Target)
		relType := strings.TrimSpace(r.Type)
		if source == "" || target == "" || relType == "" {
			continue
		}
		key := source + "\x00" + target + "\x00" + relType
		if seenRels[key] {
			continue
		}
		seenRels[key] = true
		graph.Relationships = append(graph.Relationships, Relationship{
			SourceID: source,
			TargetID: target,
			Type:     relType,
		})
	}
}
