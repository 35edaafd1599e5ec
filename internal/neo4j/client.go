// Package neo4j provides the graph database connection used for document
// storage and retrieval.
package neo4j

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Config holds Neo4j connection settings.
type Config struct {
	URI      string
	Username string
	Password string
}

// Client wraps the Neo4j driver.
type Client struct {
	driver neo4j.DriverWithContext
}

// NewClient connects to Neo4j and verifies connectivity.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("neo4j URI is required")
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("connect to neo4j at %s: %w", cfg.URI, err)
	}

	slog.Info("neo4j connection established", "uri", cfg.URI, "user", cfg.Username)
	return &Client{driver: driver}, nil
}

// Close closes the underlying driver.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// Ping verifies the connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

// Run executes a Cypher query and returns the eager result records.
func (c *Client) Run(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	result, err := neo4j.ExecuteQuery(ctx, c.driver, cypher, params, neo4j.EagerResultTransformer)
	if err != nil {
		return nil, fmt.Errorf("cypher query failed: %w", err)
	}
	return result.Records, nil
}

// CheckAPOC returns the number of installed APOC procedures. The ingestion
// queries depend on APOC; zero means the plugin is missing.
func (c *Client) CheckAPOC(ctx context.Context) (int64, error) {
	records, err := c.Run(ctx,
		"SHOW PROCEDURES YIELD name WHERE name STARTS WITH 'apoc' RETURN count(*) AS apoc_count",
		nil)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("empty result from procedure listing")
	}

	count, ok := records[0].Get("apoc_count")
	if !ok {
		return 0, fmt.Errorf("missing apoc_count column")
	}
	n, ok := count.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected apoc_count type %T", count)
	}
	return n, nil
}
