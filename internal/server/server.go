// Package server provides the HTTP API for document processing and question
// answering.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/AyUsHh66/Bajaj-Hackrx/internal/config"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/db"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/queue"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/retrieval"
)

// Answerer answers a single question against the indexed corpus.
type Answerer interface {
	AnswerQuery(ctx context.Context, question string) (*retrieval.Answer, error)
}

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Enqueue(ctx context.Context, name string, payload any) (string, error)
	Status(ctx context.Context, taskID string) (*queue.Status, error)
	Ping(ctx context.Context) error
}

// Pinger reports whether a backing component is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Registry records documents and answered queries. Implemented by
// db.Repository; nil disables recording.
type Registry interface {
	InsertDocument(ctx context.Context, doc *db.Document) error
	RecordQuery(ctx context.Context, rec *db.QueryRecord) error
}

// Config holds HTTP server configuration and dependencies.
type Config struct {
	Host string
	Port int
	Auth config.AuthConfig

	Answerer Answerer
	Tasks    TaskQueue

	// Graph and Database are health-check probes. Database may be nil when
	// the registry is not configured.
	Graph    Pinger
	Database Pinger

	// Registry may be nil when no document registry is configured.
	Registry Registry
}

// Server is the HTTP API server.
type Server struct {
	server   *http.Server
	mux      *http.ServeMux
	auth     *Authenticator
	answerer Answerer
	tasks    TaskQueue
	graph    Pinger
	database Pinger
	registry Registry
	addr     string
}

// NewServer creates the API server and registers its routes.
func NewServer(cfg Config) *Server {
	s := &Server{
		auth:     NewAuthenticator(cfg.Auth),
		answerer: cfg.Answerer,
		tasks:    cfg.Tasks,
		graph:    cfg.Graph,
		database: cfg.Database,
		registry: cfg.Registry,
		addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}

	mux := http.NewServeMux()

	// CORS middleware wrapper
	corsHandler := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			h(w, r)
		}
	}

	mux.HandleFunc("/", corsHandler(s.handleRoot))
	mux.HandleFunc("/hackrx/run", corsHandler(s.requireAuth(s.handleRun)))
	mux.HandleFunc("/documents", corsHandler(s.requireAuth(s.handleUpload)))
	mux.HandleFunc("/tasks/", corsHandler(s.requireAuth(s.handleTaskStatus)))
	mux.HandleFunc("/healthz", corsHandler(s.handleHealth))

	s.mux = mux
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	slog.Info("starting HTTP API server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the route table. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// jsonResponse writes v as a JSON response body.
func jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// jsonError writes an error response in the {"detail": ...} shape the legacy
// API used.
func jsonError(w http.ResponseWriter, status int, detail string) {
	jsonResponse(w, status, map[string]string{"detail": detail})
}
