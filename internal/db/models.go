package db

import (
	"time"

	"github.com/google/uuid"
)

// Document processing states recorded in the registry.
const (
	DocumentStatusQueued     = "queued"
	DocumentStatusProcessing = "processing"
	DocumentStatusIndexed    = "indexed"
	DocumentStatusFailed     = "failed"
)

// Document is a registry row for an ingested document.
type Document struct {
	ID                 uuid.UUID
	Filename           string
	SourceURL          string
	Status             string
	ParentChunks       int
	ChildChunks        int
	GraphNodes         int
	GraphRelationships int
	Error              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewDocument creates a registry entry in the queued state.
func NewDocument(filename, sourceURL string) *Document {
	now := time.Now().UTC()
	return &Document{
		ID:        uuid.New(),
		Filename:  filename,
		SourceURL: sourceURL,
		Status:    DocumentStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// QueryRecord is a log row for an answered question.
type QueryRecord struct {
	ID         uuid.UUID
	Question   string
	Answer     string
	Strategy   string
	DurationMs int
	CreatedAt  time.Time
}

// NewQueryRecord creates a query log entry.
func NewQueryRecord(question, answer, strategy string, durationMs int) *QueryRecord {
	return &QueryRecord{
		ID:         uuid.New(),
		Question:   question,
		Answer:     answer,
		Strategy:   strategy,
		DurationMs: durationMs,
		CreatedAt:  time.Now().UTC(),
	}
}
