package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/AyUsHh66/Bajaj-Hackrx/internal/db"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/validation"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/worker"
)

// HackRxRequest is the request body for the main processing endpoint.
type HackRxRequest struct {
	// Documents is a URL to the document to be processed. Kept for
	// compatibility; answers come from already indexed data.
	Documents string   `json:"documents"`
	Questions []string `json:"questions"`
}

// HackRxResponse holds one answer per question, in request order.
type HackRxResponse struct {
	Answers []string `json:"answers"`
}

// UploadRequest is the request body for queuing a document for ingestion.
type UploadRequest struct {
	DocumentURL string `json:"document_url"`
}

// UploadResponse acknowledges a queued document.
type UploadResponse struct {
	TaskID   string `json:"task_id"`
	Filename string `json:"filename"`
	Message  string `json:"message"`
}

// TaskStatusResponse reports the state of a background task.
type TaskStatusResponse struct {
	TaskID string          `json:"task_id"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// handleRoot returns the welcome message.
// GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		jsonError(w, http.StatusNotFound, "Not found")
		return
	}
	if r.Method != http.MethodGet {
		jsonError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{
		"message": "Welcome to the HackRx Document Intelligence API",
	})
}

// handleRun answers a list of questions from the indexed corpus. Document
// ingestion is bypassed on this endpoint; use POST /documents to index new
// material.
// POST /hackrx/run
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req HackRxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.ValidateRunRequest(req.Documents, req.Questions); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	answers := make([]string, len(req.Questions))
	for i, question := range req.Questions {
		start := time.Now()
		answer, err := s.answerer.AnswerQuery(r.Context(), question)
		if err != nil {
			slog.Error("failed to answer question", "question", question, "error", err)
			jsonError(w, http.StatusInternalServerError,
				fmt.Sprintf("An unexpected error occurred: %v", err))
			return
		}
		answers[i] = answer.Answer
		s.recordQuery(r, question, answer.Answer, string(answer.Strategy), time.Since(start))
	}

	jsonResponse(w, http.StatusOK, HackRxResponse{Answers: answers})
}

// handleUpload validates a document URL and queues it for background
// ingestion.
// POST /documents
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.ValidateDocumentURL(req.DocumentURL); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	filename := filenameFromURL(req.DocumentURL)

	var documentID string
	if s.registry != nil {
		doc := db.NewDocument(filename, req.DocumentURL)
		if err := s.registry.InsertDocument(r.Context(), doc); err != nil {
			slog.Error("failed to register document", "filename", filename, "error", err)
		} else {
			documentID = doc.ID.String()
		}
	}

	taskID, err := s.tasks.Enqueue(r.Context(), worker.TaskProcessDocument, worker.ProcessDocumentPayload{
		DocumentURL: req.DocumentURL,
		DocumentID:  documentID,
	})
	if err != nil {
		slog.Error("failed to enqueue document", "filename", filename, "error", err)
		jsonError(w, http.StatusInternalServerError,
			fmt.Sprintf("An unexpected error occurred: %v", err))
		return
	}

	slog.Info("document queued for processing", "task_id", taskID, "filename", filename)
	jsonResponse(w, http.StatusAccepted, UploadResponse{
		TaskID:   taskID,
		Filename: filename,
		Message:  "Document queued for processing",
	})
}

// handleTaskStatus reports the state of a queued task.
// GET /tasks/{id}
func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	taskID := strings.TrimPrefix(r.URL.Path, "/tasks/")
	if taskID == "" || strings.Contains(taskID, "/") {
		jsonError(w, http.StatusNotFound, "Not found")
		return
	}

	status, err := s.tasks.Status(r.Context(), taskID)
	if err != nil {
		slog.Error("failed to fetch task status", "task_id", taskID, "error", err)
		jsonError(w, http.StatusInternalServerError,
			fmt.Sprintf("An unexpected error occurred: %v", err))
		return
	}

	jsonResponse(w, http.StatusOK, TaskStatusResponse{
		TaskID: status.TaskID,
		Status: status.State,
		Result: status.Result,
		Error:  status.Error,
	})
}

// handleHealth reports component health.
// GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	components := map[string]string{}

	check := func(name string, p Pinger) {
		if p == nil {
			components[name] = "not_configured"
			return
		}
		if err := p.Ping(ctx); err != nil {
			components[name] = "unhealthy"
			status = "degraded"
			return
		}
		components[name] = "healthy"
	}

	check("redis", s.tasks)
	check("neo4j", s.graph)
	check("postgres", s.database)

	jsonResponse(w, http.StatusOK, map[string]any{
		"status":     status,
		"components": components,
	})
}

// recordQuery mirrors an answered question into the registry. Failures are
// logged, never surfaced to the caller.
func (s *Server) recordQuery(r *http.Request, question, answer, strategy string, duration time.Duration) {
	if s.registry == nil {
		return
	}
	rec := db.NewQueryRecord(question, answer, strategy, int(duration.Milliseconds()))
	if err := s.registry.RecordQuery(r.Context(), rec); err != nil {
		slog.Error("failed to record query", "error", err)
	}
}

// filenameFromURL derives a display filename from a document URL.
func filenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "document"
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return "document"
	}
	return name
}
