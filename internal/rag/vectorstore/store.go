// Package vectorstore persists parent and child chunks, their embeddings,
// and the extracted knowledge graph in Neo4j.
package vectorstore

import (
	"context"

	"github.com/AyUsHh66/Bajaj-Hackrx/internal/rag/graphex"
)

// ParentPoint is a parent chunk with its embedding, stored as the unit of
// retrieval.
type ParentPoint struct {
	// ID is the stable parent identifier within a document.
	ID string

	// Text is the chunk content returned at query time.
	Text string

	// Filename is the source document name.
	Filename string

	// Vector is the embedding of the chunk text.
	Vector []float32
}

// ChildPoint is a smaller chunk linked to its parent for fine-grained
// graph anchoring.
type ChildPoint struct {
	// ParentID references the parent chunk.
	ParentID string

	// Index is the child's global position within the document.
	Index int

	// Text is the chunk content.
	Text string
}

// SearchResult is a single similarity search hit.
type SearchResult struct {
	// Text is the matched parent chunk content.
	Text string

	// Score is the cosine similarity score.
	Score float64
}

// Store defines the persistence operations for document indexing and
// retrieval.
type Store interface {
	// EnsureIndex creates the vector index if it does not exist.
	EnsureIndex(ctx context.Context, dimensions int) error

	// UpsertParents stores parent chunks with their embeddings.
	UpsertParents(ctx context.Context, parents []ParentPoint) error

	// AddChildren stores child chunks linked to their parents.
	AddChildren(ctx context.Context, children []ChildPoint) error

	// AddGraph merges extracted entities and relationships.
	AddGraph(ctx context.Context, graph *graphex.Graph) error

	// Search returns the parent chunks most similar to the query vector.
	Search(ctx context.Context, vector []float32, limit int) ([]SearchResult, error)
}
