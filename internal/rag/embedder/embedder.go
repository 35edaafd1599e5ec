// Package embedder generates vector embeddings for document chunks and
// queries.
package embedder

import "context"

// Embedder converts text into vector embeddings.
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimensionality.
	Dimensions() int

	// Model returns the embedding model name.
	Model() string
}
