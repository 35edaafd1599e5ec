package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository provides data access for the document registry and query log.
type Repository struct {
	client *Client
}

// NewRepository creates a new repository backed by the given client.
func NewRepository(client *Client) *Repository {
	return &Repository{client: client}
}

// InsertDocument stores a new registry entry.
func (r *Repository) InsertDocument(ctx context.Context, doc *Document) error {
	query := `
		INSERT INTO hackrx_documents (
			id, filename, source_url, status,
			parent_chunks, child_chunks, graph_nodes, graph_relationships,
			error, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	r.client.logQuery(query, doc.ID, doc.Filename, doc.Status)

	_, err := r.client.pool.Exec(ctx, query,
		doc.ID,
		doc.Filename,
		doc.SourceURL,
		doc.Status,
		doc.ParentChunks,
		doc.ChildChunks,
		doc.GraphNodes,
		doc.GraphRelationships,
		doc.Error,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// UpdateDocumentStatus transitions a document and records an error message
// for failed documents.
func (r *Repository) UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status, errMsg string) error {
	query := `
		UPDATE hackrx_documents
		SET status = $2, error = $3, updated_at = NOW()
		WHERE id = $1
	`
	r.client.logQuery(query, id, status)

	_, err := r.client.pool.Exec(ctx, query, id, status, errMsg)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}
	return nil
}

// UpdateDocumentStats records the pipeline output counts and marks the
// document indexed.
func (r *Repository) UpdateDocumentStats(ctx context.Context, id uuid.UUID, parents, children, nodes, rels int) error {
	query := `
		UPDATE hackrx_documents
		SET status = $2, parent_chunks = $3, child_chunks = $4,
		    graph_nodes = $5, graph_relationships = $6, updated_at = NOW()
		WHERE id = $1
	`
	r.client.logQuery(query, id, DocumentStatusIndexed)

	_, err := r.client.pool.Exec(ctx, query, id, DocumentStatusIndexed, parents, children, nodes, rels)
	if err != nil {
		return fmt.Errorf("failed to update document stats: %w", err)
	}
	return nil
}

// GetDocument retrieves a registry entry by ID. Returns nil when the
// document does not exist.
func (r *Repository) GetDocument(ctx context.Context, id uuid.UUID) (*Document, error) {
	query := `
		SELECT id, filename, source_url, status,
		       parent_chunks, child_chunks, graph_nodes, graph_relationships,
		       error, created_at, updated_at
		FROM hackrx_documents
		WHERE id = $1
	`
	r.client.logQuery(query, id)

	var doc Document
	err := r.client.pool.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.Filename,
		&doc.SourceURL,
		&doc.Status,
		&doc.ParentChunks,
		&doc.ChildChunks,
		&doc.GraphNodes,
		&doc.GraphRelationships,
		&doc.Error,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

// RecordQuery stores a query log entry.
func (r *Repository) RecordQuery(ctx context.Context, rec *QueryRecord) error {
	query := `
		INSERT INTO hackrx_queries (id, question, answer, strategy, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	r.client.logQuery(query, rec.ID, rec.Strategy)

	_, err := r.client.pool.Exec(ctx, query,
		rec.ID,
		rec.Question,
		rec.Answer,
		rec.Strategy,
		rec.DurationMs,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record query: %w", err)
	}
	return nil
}

// RecentQueries returns the latest query log entries, newest first.
func (r *Repository) RecentQueries(ctx context.Context, limit int) ([]QueryRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, question, answer, strategy, duration_ms, created_at
		FROM hackrx_queries
		ORDER BY created_at DESC
		LIMIT $1
	`
	r.client.logQuery(query, limit)

	rows, err := r.client.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent queries: %w", err)
	}
	defer rows.Close()

	var records []QueryRecord
	for rows.Next() {
		var rec QueryRecord
		err := rows.Scan(
			&rec.ID,
			&rec.Question,
			&rec.Answer,
			&rec.Strategy,
			&rec.DurationMs,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan query record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
