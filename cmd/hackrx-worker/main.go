package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/AyUsHh66/Bajaj-Hackrx/internal/config"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/db"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/fetch"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/llm"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/neo4j"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/queue"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/rag"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/rag/embedder"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/rag/extractor"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/rag/graphex"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/rag/vectorstore"
	"github.com/AyUsHh66/Bajaj-Hackrx/internal/worker"
)

// Build-time variables
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	configureLogger(cfg.Logging)

	slog.Info("starting HackRx worker",
		"version", Version,
		"commit", GitCommit,
		"build_time", BuildTime,
		"pool", cfg.Worker.Pool,
		"concurrency", cfg.Worker.Concurrency,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	graphClient, err := neo4j.NewClient(ctx, neo4j.Config{
		URI:      cfg.Neo4j.URI,
		Username: cfg.Neo4j.Username,
		Password: cfg.Neo4j.Password,
	})
	if err != nil {
		slog.Error("failed to connect to neo4j", "error", err)
		os.Exit(1)
	}
	defer graphClient.Close(context.Background())

	// Graph ingestion needs APOC procedures installed server side.
	if count, err := graphClient.CheckAPOC(ctx); err != nil {
		slog.Warn("could not verify APOC availability", "error", err)
	} else if count == 0 {
		slog.Warn("APOC procedures not installed, graph ingestion will fail")
	}

	tasks, err := queue.New(cfg.Redis, cfg.Worker.Queue)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer tasks.Close()

	downloader, err := fetch.New(fetch.Config{
		Dir:          cfg.Downloads.Dir,
		MaxFileBytes: cfg.Downloads.MaxFileBytes,
	})
	if err != nil {
		slog.Error("failed to create download directory", "error", err)
		os.Exit(1)
	}

	generator := newGenerator(cfg.LLM)
	store := vectorstore.NewNeo4jStore(graphClient)
	emb := embedder.NewOllamaEmbedder(embedder.OllamaConfig{
		BaseURL: cfg.LLM.OllamaBaseURL,
		Model:   cfg.RAG.EmbeddingModel,
	})
	parser := extractor.NewLlamaParseExtractor(extractor.LlamaParseConfig{
		APIKey:  cfg.Parser.APIKey,
		BaseURL: cfg.Parser.BaseURL,
	})

	ragService := rag.NewService(emb, store, parser, graphex.NewExtractor(generator), rag.ServiceOptions{
		ParentChunkSize:    cfg.RAG.ParentChunkSize,
		ParentChunkOverlap: cfg.RAG.ParentChunkOverlap,
		ChildChunkSize:     cfg.RAG.ChildChunkSize,
		ChildChunkOverlap:  cfg.RAG.ChildChunkOverlap,
		RetrievalTopK:      cfg.RAG.RetrievalTopK,
	})

	// The Postgres registry is optional.
	var registry worker.Registry
	if cfg.Database.URL != "" {
		dbClient, err := db.NewClient(ctx, db.Config{
			URL:            cfg.Database.URL,
			MaxConnections: cfg.Database.MaxConnections,
		})
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer dbClient.Close()
		registry = db.NewRepository(dbClient)
	}

	processor := worker.NewDocumentProcessor(downloader, ragService, registry)

	w := worker.New(tasks, cfg.Worker)
	w.Register(worker.TaskProcessDocument, processor.Handle)

	if err := w.Run(ctx); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}

// newGenerator picks the Gemini API when a key is configured and falls back
// to the local Ollama server otherwise.
func newGenerator(cfg config.LLMConfig) llm.Generator {
	if cfg.GoogleAPIKey != "" {
		return llm.NewGeminiGenerator(llm.GeminiConfig{
			APIKey: cfg.GoogleAPIKey,
			Model:  cfg.GeminiModel,
		})
	}
	slog.Warn("GOOGLE_API_KEY not set, using local Ollama for generation")
	return llm.NewOllamaGenerator(llm.OllamaConfig{
		BaseURL: cfg.OllamaBaseURL,
		Model:   cfg.OllamaModel,
	})
}

// configureLogger sets up the default slog logger based on config values
func configureLogger(cfg config.LoggingConfig) {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
