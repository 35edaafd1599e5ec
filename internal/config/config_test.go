package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultValues(t *testing.T) {
	// Point to non-existent config to use defaults
	dir := t.TempDir()
	t.Setenv("HACKRX_CONFIG", filepath.Join(dir, "nonexistent.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected default Host 0.0.0.0, got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected default Port 8000, got %d", cfg.Server.Port)
	}

	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("expected default Redis.Addr localhost:6379, got %s", cfg.Redis.Addr)
	}

	if cfg.Neo4j.URI != "bolt://localhost:7687" {
		t.Errorf("expected default Neo4j.URI bolt://localhost:7687, got %s", cfg.Neo4j.URI)
	}

	if cfg.LLM.GeminiModel != "gemini-2.0-flash" {
		t.Errorf("expected default GeminiModel gemini-2.0-flash, got %s", cfg.LLM.GeminiModel)
	}
	if cfg.LLM.OllamaBaseURL != "http://localhost:11434" {
		t.Errorf("expected default OllamaBaseURL, got %s", cfg.LLM.OllamaBaseURL)
	}

	if cfg.RAG.ParentChunkSize != 1024 || cfg.RAG.ParentChunkOverlap != 128 {
		t.Errorf("expected parent chunking 1024/128, got %d/%d",
			cfg.RAG.ParentChunkSize, cfg.RAG.ParentChunkOverlap)
	}
	if cfg.RAG.ChildChunkSize != 400 || cfg.RAG.ChildChunkOverlap != 100 {
		t.Errorf("expected child chunking 400/100, got %d/%d",
			cfg.RAG.ChildChunkSize, cfg.RAG.ChildChunkOverlap)
	}

	if cfg.Worker.Pool != "solo" {
		t.Errorf("expected default worker pool solo, got %s", cfg.Worker.Pool)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected default Logging.Level info, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected default Logging.Format json, got %s", cfg.Logging.Format)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "hackrx.yaml")

	content := `
server:
  host: 127.0.0.1
  port: 9000
neo4j:
  uri: bolt://db:7687
  username: app
worker:
  pool: prefork
  concurrency: 4
logging:
  level: debug
  format: text
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("HACKRX_CONFIG", configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("server config not loaded from file: %+v", cfg.Server)
	}
	if cfg.Neo4j.URI != "bolt://db:7687" || cfg.Neo4j.Username != "app" {
		t.Errorf("neo4j config not loaded from file: %+v", cfg.Neo4j)
	}
	if cfg.Worker.Pool != "prefork" || cfg.Worker.Concurrency != 4 {
		t.Errorf("worker config not loaded from file: %+v", cfg.Worker)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("logging config not loaded from file: %+v", cfg.Logging)
	}

	// Values absent from the file keep their defaults.
	if cfg.RAG.ParentChunkSize != 1024 {
		t.Errorf("expected default parent chunk size, got %d", cfg.RAG.ParentChunkSize)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HACKRX_CONFIG", filepath.Join(dir, "nonexistent.yaml"))

	t.Setenv("HACKRX_PORT", "8080")
	t.Setenv("NEO4J_URI", "neo4j+s://example.databases.neo4j.io")
	t.Setenv("NEO4J_USERNAME", "neo4j")
	t.Setenv("NEO4J_PASSWORD", "secret")
	t.Setenv("CELERY_BROKER_URL", "rediss://default:pw@redis.example:6380/0")
	t.Setenv("GOOGLE_API_KEY", "test-google-key")
	t.Setenv("LLAMA_CLOUD_API_KEY", "test-llama-key")
	t.Setenv("HACKRX_API_KEY", "supersecret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected port override 8080, got %d", cfg.Server.Port)
	}
	if cfg.Neo4j.URI != "neo4j+s://example.databases.neo4j.io" {
		t.Errorf("NEO4J_URI override not applied: %s", cfg.Neo4j.URI)
	}
	if cfg.Neo4j.Password != "secret" {
		t.Errorf("NEO4J_PASSWORD override not applied")
	}
	if cfg.Redis.URL != "rediss://default:pw@redis.example:6380/0" {
		t.Errorf("CELERY_BROKER_URL override not applied: %s", cfg.Redis.URL)
	}
	if cfg.LLM.GoogleAPIKey != "test-google-key" {
		t.Errorf("GOOGLE_API_KEY override not applied")
	}
	if cfg.Parser.APIKey != "test-llama-key" {
		t.Errorf("LLAMA_CLOUD_API_KEY override not applied")
	}
	if cfg.Auth.APIKey != "supersecret" {
		t.Errorf("HACKRX_API_KEY override not applied")
	}
}

func TestLoad_ExpandsSecretReferences(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "hackrx.yaml")

	content := `
neo4j:
  uri: bolt://localhost:7687
  password: ${TEST_NEO4J_SECRET}
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("HACKRX_CONFIG", configPath)
	t.Setenv("TEST_NEO4J_SECRET", "expanded-password")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Neo4j.Password != "expanded-password" {
		t.Errorf("expected ${VAR} expansion, got %q", cfg.Neo4j.Password)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, true},
		{"missing neo4j uri", func(c *Config) { c.Neo4j.URI = "" }, true},
		{"unknown pool", func(c *Config) { c.Worker.Pool = "gevent" }, true},
		{"prefork needs concurrency", func(c *Config) {
			c.Worker.Pool = "prefork"
			c.Worker.Concurrency = 0
		}, true},
		{"parent chunks must dominate", func(c *Config) {
			c.RAG.ParentChunkSize = 300
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
