package db

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewDocument(t *testing.T) {
	doc := NewDocument("policy.pdf", "https://example.com/policy.pdf")

	if doc.ID == uuid.Nil {
		t.Error("expected generated document ID")
	}
	if doc.Filename != "policy.pdf" {
		t.Errorf("expected filename=policy.pdf, got %s", doc.Filename)
	}
	if doc.Status != DocumentStatusQueued {
		t.Errorf("new documents start queued, got %s", doc.Status)
	}
	if doc.CreatedAt.IsZero() || doc.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
	if doc.ParentChunks != 0 || doc.ChildChunks != 0 {
		t.Error("new documents have no chunk counts yet")
	}
}

func TestNewQueryRecord(t *testing.T) {
	rec := NewQueryRecord("What is the grace period?", "Thirty days.", "vector_search", 420)

	if rec.ID == uuid.Nil {
		t.Error("expected generated record ID")
	}
	if rec.Strategy != "vector_search" {
		t.Errorf("unexpected strategy: %s", rec.Strategy)
	}
	if rec.DurationMs != 420 {
		t.Errorf("unexpected duration: %d", rec.DurationMs)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestNewDocument_UniqueIDs(t *testing.T) {
	a := NewDocument("a.pdf", "")
	b := NewDocument("b.pdf", "")
	if a.ID == b.ID {
		t.Error("documents should get unique IDs")
	}
}
