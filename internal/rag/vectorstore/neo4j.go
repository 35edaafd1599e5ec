package vectorstore

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/AyUsHh66/Bajaj-Hackrx/internal/rag/graphex"
)

// IndexName is the Neo4j vector index the retrieval queries run against.
const IndexName = "parent_chunks"

// cypherRunner executes Cypher queries. Satisfied by the neo4j client.
type cypherRunner interface {
	Run(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error)
}

// Neo4jStore implements Store on a Neo4j database. Parent chunks carry the
// embeddings; children hang off their parents via CHILD_OF; graph entities
// are merged with APOC so repeated ingests stay idempotent.
type Neo4jStore struct {
	runner cypherRunner
}

// NewNeo4jStore creates a store backed by the given query runner.
func NewNeo4jStore(runner cypherRunner) *Neo4jStore {
	return &Neo4jStore{runner: runner}
}

const ensureIndexCypher = `CREATE VECTOR INDEX ` + IndexName + ` IF NOT EXISTS
FOR (p:ParentChunk) ON (p.embedding)
OPTIONS {indexConfig: {
  ` + "`vector.dimensions`" + `: $dimensions,
  ` + "`vector.similarity_function`" + `: 'cosine'
}}`

const upsertParentsCypher = `UNWIND $rows AS row
MERGE (p:ParentChunk {id: row.id})
SET p.text = row.text, p.filename = row.filename, p.embedding = row.embedding`

const addChildrenCypher = `UNWIND $rows AS row
MATCH (p:ParentChunk {id: row.parent_id})
CREATE (c:ChildChunk {id: apoc.create.uuid(), text: row.text, idx: row.index})
CREATE (c)-[:CHILD_OF]->(p)`

const mergeNodesCypher = `UNWIND $nodes AS node
CALL apoc.merge.node([node.type], {id: node.id}) YIELD node AS n
RETURN count(n) AS merged`

const mergeRelationshipsCypher = `UNWIND $rels AS rel
MATCH (a {id: rel.source})
MATCH (b {id: rel.target})
CALL apoc.merge.relationship(a, rel.type, {}, {}, b, {}) YIELD rel AS r
RETURN count(r) AS merged`

const searchCypher = `CALL db.index.vector.queryNodes('` + IndexName + `', $k, $embedding)
YIELD node, score
RETURN node.text AS text, score`

// EnsureIndex creates the parent chunk vector index if it does not exist.
func (s *Neo4jStore) EnsureIndex(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("invalid vector dimensions %d", dimensions)
	}
	if _, err := s.runner.Run(ctx, ensureIndexCypher, map[string]any{"dimensions": dimensions}); err != nil {
		return fmt.Errorf("ensure vector index: %w", err)
	}
	return nil
}

// UpsertParents stores parent chunks with their embeddings.
func (s *Neo4jStore) UpsertParents(ctx context.Context, parents []ParentPoint) error {
	if len(parents) == 0 {
		return nil
	}

	rows := make([]map[string]any, len(parents))
	for i, p := range parents {
		rows[i] = map[string]any{
			"id":        p.ID,
			"text":      p.Text,
			"filename":  p.Filename,
			"embedding": toFloat64(p.Vector),
		}
	}

	if _, err := s.runner.Run(ctx, upsertParentsCypher, map[string]any{"rows": rows}); err != nil {
		return fmt.Errorf("upsert parent chunks: %w", err)
	}
	return nil
}

// AddChildren stores child chunks linked to their parents via CHILD_OF.
func (s *Neo4jStore) AddChildren(ctx context.Context, children []ChildPoint) error {
	if len(children) == 0 {
		return nil
	}

	rows := make([]map[string]any, len(children))
	for i, c := range children {
		rows[i] = map[string]any{
			"parent_id": c.ParentID,
			"index":     c.Index,
			"text":      c.Text,
		}
	}

	if _, err := s.runner.Run(ctx, addChildrenCypher, map[string]any{"rows": rows}); err != nil {
		return fmt.Errorf("add child chunks: %w", err)
	}
	return nil
}

// AddGraph merges extracted entities and relationships.
func (s *Neo4jStore) AddGraph(ctx context.Context, graph *graphex.Graph) error {
	if graph == nil {
		return nil
	}

	if len(graph.Nodes) > 0 {
		nodes := make([]map[string]any, len(graph.Nodes))
		for i, n := range graph.Nodes {
			nodes[i] = map[string]any{"id": n.ID, "type": n.Type}
		}
		if _, err := s.runner.Run(ctx, mergeNodesCypher, map[string]any{"nodes": nodes}); err != nil {
			return fmt.Errorf("merge graph nodes: %w", err)
		}
	}

	if len(graph.Relationships) > 0 {
		rels := make([]map[string]any, len(graph.Relationships))
		for i, r := range graph.Relationships {
			rels[i] = map[string]any{"source": r.SourceID, "target": r.TargetID, "type": r.Type}
		}
		if _, err := s.runner.Run(ctx, mergeRelationshipsCypher, map[string]any{"rels": rels}); err != nil {
			return fmt.Errorf("merge graph relationships: %w", err)
		}
	}

	return nil
}

// Search returns the parent chunks most similar to the query vector.
func (s *Neo4jStore) Search(ctx context.Context, vector []float32, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 4
	}

	records, err := s.runner.Run(ctx, searchCypher, map[string]any{
		"k":         limit,
		"embedding": toFloat64(vector),
	})
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results := make([]SearchResult, 0, len(records))
	for _, record := range records {
		text, _ := record.Get("text")
		score, _ := record.Get("score")

		textStr, ok := text.(string)
		if !ok {
			continue
		}
		scoreF, _ := score.(float64)

		results = append(results, SearchResult{Text: textStr, Score: scoreF})
	}

	return results, nil
}

// toFloat64 converts an embedding for the driver, which does not accept
// []float32 parameters.
func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
