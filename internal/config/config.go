// Package config loads service configuration from a YAML file and the
// process environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Redis     RedisConfig     `yaml:"redis"`
	Neo4j     Neo4jConfig     `yaml:"neo4j"`
	Auth      AuthConfig      `yaml:"auth"`
	LLM       LLMConfig       `yaml:"llm"`
	Parser    ParserConfig    `yaml:"parser"`
	RAG       RAGConfig       `yaml:"rag"`
	Worker    WorkerConfig    `yaml:"worker"`
	Database  DatabaseConfig  `yaml:"database"`
	Downloads DownloadsConfig `yaml:"downloads"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// RedisConfig holds task broker / result backend settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// URL, when set, takes precedence over Addr/Password/DB. It accepts the
	// redis:// and rediss:// forms the legacy CELERY_BROKER_URL used.
	URL string `yaml:"url"`
}

// Neo4jConfig holds graph database connection settings.
type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	// APIKey is the bearer token expected on authenticated endpoints.
	APIKey string `yaml:"api_key"`

	// APIKeyHash optionally holds a bcrypt hash of the token. When set it is
	// checked instead of APIKey.
	APIKeyHash string `yaml:"api_key_hash"`
}

// LLMConfig holds language model settings.
type LLMConfig struct {
	GoogleAPIKey string `yaml:"google_api_key"`
	GeminiModel  string `yaml:"gemini_model"`

	OllamaBaseURL string `yaml:"ollama_base_url"`
	OllamaModel   string `yaml:"ollama_model"`
}

// ParserConfig holds document parsing service settings.
type ParserConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// RAGConfig holds chunking and retrieval settings.
type RAGConfig struct {
	ParentChunkSize    int    `yaml:"parent_chunk_size"`
	ParentChunkOverlap int    `yaml:"parent_chunk_overlap"`
	ChildChunkSize     int    `yaml:"child_chunk_size"`
	ChildChunkOverlap  int    `yaml:"child_chunk_overlap"`
	EmbeddingModel     string `yaml:"embedding_model"`
	RetrievalTopK      int    `yaml:"retrieval_top_k"`
}

// WorkerConfig holds task worker settings.
type WorkerConfig struct {
	// Pool is the concurrency mode: "solo" runs tasks strictly one at a
	// time; "prefork" fans out to Concurrency goroutines.
	Pool        string `yaml:"pool"`
	Concurrency int    `yaml:"concurrency"`
	Queue       string `yaml:"queue"`
}

// DatabaseConfig holds the optional Postgres registry settings.
type DatabaseConfig struct {
	URL            string `yaml:"url"`
	MaxConnections int    `yaml:"max_connections"`
}

// DownloadsConfig holds temporary download settings.
type DownloadsConfig struct {
	Dir          string `yaml:"dir"`
	MaxFileBytes int64  `yaml:"max_file_bytes"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := os.Getenv("HACKRX_CONFIG")
	if configPath == "" {
		configPath = "configs/hackrx.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// File doesn't exist - continue with defaults
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.expandEnvVars()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns configuration with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			DB:   0,
		},
		Neo4j: Neo4jConfig{
			URI:      "bolt://localhost:7687",
			Username: "neo4j",
		},
		Auth: AuthConfig{
			// Legacy development token; deployments override it.
			APIKey: "Rachu",
		},
		LLM: LLMConfig{
			GeminiModel:   "gemini-2.0-flash",
			OllamaBaseURL: "http://localhost:11434",
			OllamaModel:   "llama3",
		},
		Parser: ParserConfig{
			BaseURL: "https://api.cloud.llamaindex.ai",
		},
		RAG: RAGConfig{
			ParentChunkSize:    1024,
			ParentChunkOverlap: 128,
			ChildChunkSize:     400,
			ChildChunkOverlap:  100,
			EmbeddingModel:     "all-minilm",
			RetrievalTopK:      4,
		},
		Worker: WorkerConfig{
			Pool:        "solo",
			Concurrency: 1,
			Queue:       "hackrx:tasks",
		},
		Database: DatabaseConfig{
			MaxConnections: 10,
		},
		Downloads: DownloadsConfig{
			Dir:          "temp_downloads",
			MaxFileBytes: 64 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if host := os.Getenv("HACKRX_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("HACKRX_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Redis.Addr = addr
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		c.Redis.Password = pass
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		if d, err := strconv.Atoi(db); err == nil {
			c.Redis.DB = d
		}
	}
	// The legacy deployment configured the broker as a redis:// URL.
	if url := os.Getenv("CELERY_BROKER_URL"); url != "" {
		c.Redis.URL = url
	}
	if url := os.Getenv("REDIS_URL"); url != "" {
		c.Redis.URL = url
	}

	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		c.Neo4j.URI = uri
	}
	if user := os.Getenv("NEO4J_USERNAME"); user != "" {
		c.Neo4j.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		c.Neo4j.Password = pass
	}

	if key := os.Getenv("HACKRX_API_KEY"); key != "" {
		c.Auth.APIKey = key
	}
	if hash := os.Getenv("HACKRX_API_KEY_HASH"); hash != "" {
		c.Auth.APIKeyHash = hash
	}

	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.LLM.GoogleAPIKey = key
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		c.LLM.GeminiModel = model
	}
	if url := os.Getenv("OLLAMA_BASE_URL"); url != "" {
		c.LLM.OllamaBaseURL = url
	}
	if model := os.Getenv("OLLAMA_MODEL"); model != "" {
		c.LLM.OllamaModel = model
	}

	if key := os.Getenv("LLAMA_CLOUD_API_KEY"); key != "" {
		c.Parser.APIKey = key
	}
	if url := os.Getenv("LLAMA_CLOUD_BASE_URL"); url != "" {
		c.Parser.BaseURL = url
	}

	if model := os.Getenv("RAG_EMBEDDING_MODEL"); model != "" {
		c.RAG.EmbeddingModel = model
	}
	if topK := os.Getenv("RAG_RETRIEVAL_TOP_K"); topK != "" {
		if k, err := strconv.Atoi(topK); err == nil {
			c.RAG.RetrievalTopK = k
		}
	}

	if pool := os.Getenv("WORKER_POOL"); pool != "" {
		c.Worker.Pool = pool
	}
	if n := os.Getenv("WORKER_CONCURRENCY"); n != "" {
		if v, err := strconv.Atoi(n); err == nil {
			c.Worker.Concurrency = v
		}
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.Database.URL = url
	}

	if dir := os.Getenv("DOWNLOAD_DIR"); dir != "" {
		c.Downloads.Dir = dir
	}

	if level := os.Getenv("HACKRX_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("HACKRX_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}
}

// expandEnvVars expands ${VAR} patterns in secret-bearing string fields.
func (c *Config) expandEnvVars() {
	c.Redis.Password = expandEnv(c.Redis.Password)
	c.Neo4j.Password = expandEnv(c.Neo4j.Password)
	c.Auth.APIKey = expandEnv(c.Auth.APIKey)
	c.Auth.APIKeyHash = expandEnv(c.Auth.APIKeyHash)
	c.LLM.GoogleAPIKey = expandEnv(c.LLM.GoogleAPIKey)
	c.Parser.APIKey = expandEnv(c.Parser.APIKey)
	c.Database.URL = expandEnv(c.Database.URL)
}

// expandEnv expands ${VAR} patterns in a string.
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		varName := s[2 : len(s)-1]
		return os.Getenv(varName)
	}
	return os.ExpandEnv(s)
}

// validate checks configuration validity.
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Neo4j.URI == "" {
		return fmt.Errorf("neo4j.uri is required")
	}

	switch c.Worker.Pool {
	case "solo", "prefork":
	default:
		return fmt.Errorf("invalid worker pool %q: must be solo or prefork", c.Worker.Pool)
	}
	if c.Worker.Pool == "prefork" && c.Worker.Concurrency < 1 {
		return fmt.Errorf("worker concurrency must be at least 1, got %d", c.Worker.Concurrency)
	}

	if c.RAG.ParentChunkSize <= c.RAG.ChildChunkSize {
		return fmt.Errorf("parent chunk size (%d) must exceed child chunk size (%d)",
			c.RAG.ParentChunkSize, c.RAG.ChildChunkSize)
	}

	return nil
}
