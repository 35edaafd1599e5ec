package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/AyUsHh66/Bajaj-Hackrx/internal/db"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/fetch"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/queue"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/rag"
)

// TaskProcessDocument downloads a document and runs the ingestion pipeline.
const TaskProcessDocument = "process_document"

// ProcessDocumentPayload is the payload for a process_document task.
type ProcessDocumentPayload struct {
	DocumentURL string `json:"document_url"`

	// DocumentID references the registry row for this document, when the
	// registry is enabled.
	DocumentID string `json:"document_id,omitempty"`
}

// Downloader fetches a remote document to local disk.
type Downloader interface {
	Download(ctx context.Context, rawURL string) (*fetch.Result, error)
}

// Ingestor runs the ingestion pipeline on a document.
type Ingestor interface {
	Ingest(ctx context.Context, params rag.IngestParams) (*rag.IngestResult, error)
}

// Registry records document lifecycle state. It is satisfied by
// db.Repository and is optional.
type Registry interface {
	UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status, errMsg string) error
	UpdateDocumentStats(ctx context.Context, id uuid.UUID, parents, children, nodes, rels int) error
}

// DocumentProcessor implements the process_document task.
type DocumentProcessor struct {
	downloader Downloader
	ingestor   Ingestor
	registry   Registry
}

// NewDocumentProcessor creates the handler. registry may be nil when no
// document registry is configured.
func NewDocumentProcessor(downloader Downloader, ingestor Ingestor, registry Registry) *DocumentProcessor {
	return &DocumentProcessor{
		downloader: downloader,
		ingestor:   ingestor,
		registry:   registry,
	}
}

// Handle downloads the document, ingests it, and cleans up the temporary
// file. It satisfies HandlerFunc.
func (p *DocumentProcessor) Handle(ctx context.Context, task *queue.Task) (any, error) {
	var payload ProcessDocumentPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode process_document payload: %w", err)
	}
	if payload.DocumentURL == "" {
		return nil, fmt.Errorf("process_document payload missing document_url")
	}

	result, err := p.processDocument(ctx, payload)
	p.recordOutcome(ctx, payload.DocumentID, result, err)
	return result, err
}

func (p *DocumentProcessor) processDocument(ctx context.Context, payload ProcessDocumentPayload) (*rag.IngestResult, error) {
	download, err := p.downloader.Download(ctx, payload.DocumentURL)
	if err != nil {
		return nil, fmt.Errorf("download document: %w", err)
	}
	// The temp file is removed whether or not ingestion succeeds.
	defer func() {
		if rerr := os.Remove(download.Path); rerr != nil && !os.IsNotExist(rerr) {
			slog.Warn("failed to remove temp file", "path", download.Path, "error", rerr)
		}
	}()

	file, err := os.Open(download.Path)
	if err != nil {
		return nil, fmt.Errorf("open downloaded file: %w", err)
	}
	defer file.Close()

	result, err := p.ingestor.Ingest(ctx, rag.IngestParams{
		File:     file,
		Filename: download.Filename,
		MIMEType: mime.TypeByExtension(filepath.Ext(download.Filename)),
	})
	if err != nil {
		return nil, fmt.Errorf("ingest document: %w", err)
	}
	return result, nil
}

// recordOutcome mirrors the task outcome into the document registry. Registry
// errors are logged, not propagated, so they cannot fail the task itself.
func (p *DocumentProcessor) recordOutcome(ctx context.Context, documentID string, result *rag.IngestResult, taskErr error) {
	if p.registry == nil || documentID == "" {
		return
	}
	id, err := uuid.Parse(documentID)
	if err != nil {
		slog.Warn("invalid document ID in payload", "document_id", documentID, "error", err)
		return
	}

	if taskErr != nil {
		if err := p.registry.UpdateDocumentStatus(ctx, id, db.DocumentStatusFailed, taskErr.Error()); err != nil {
			slog.Error("failed to record document failure", "document_id", documentID, "error", err)
		}
		return
	}

	err = p.registry.UpdateDocumentStats(ctx, id,
		result.ParentChunks, result.ChildChunks, result.GraphNodes, result.GraphRelationships)
	if err != nil {
		slog.Error("failed to record document stats", "document_id", documentID, "error", err)
	}
}
