package graph

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/rcliao/gedcart/internal/gedcom"
	"github.com/rcliao/gedcart/internal/model"
)

// Neo4jConfig holds Neo4j connection configuration.
type Neo4jConfig struct {
	URI      string `yaml:"uri" validate:"required_with=Username"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// Neo4jGraph reads a tree stored as (:Record) nodes joined by [:LINK]
// relationships. Every node carries the tree name so several trees can
// share one database.
type Neo4jGraph struct {
	driver   neo4j.DriverWithContext
	database string
	tree     string
}

// NewNeo4j connects to Neo4j and ensures the record index exists.
func NewNeo4j(ctx context.Context, cfg Neo4jConfig, tree string) (*Neo4jGraph, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("connecting to neo4j: %w", err)
	}

	db := cfg.Database
	if db == "" {
		db = "neo4j"
	}
	g := &Neo4jGraph{driver: driver, database: db, tree: tree}
	if err := g.write(ctx, func(tx neo4j.ManagedTransaction) error {
		_, err := tx.Run(ctx, `CREATE INDEX record_tree_id IF NOT EXISTS FOR (r:Record) ON (r.tree, r.id)`, nil)
		return err
	}); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("creating index: %w", err)
	}
	return g, nil
}

func (g *Neo4jGraph) Close() error {
	return g.driver.Close(context.Background())
}

func (g *Neo4jGraph) read(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: g.database, AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	params["tree"] = g.tree
	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*neo4j.Record), nil
}

func (g *Neo4jGraph) write(ctx context.Context, fn func(tx neo4j.ManagedTransaction) error) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: g.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, fn(tx)
	})
	return err
}

func (g *Neo4jGraph) record(ctx context.Context, id string) (*model.Record, error) {
	rows, err := g.read(ctx, `
		MATCH (r:Record {tree: $tree, id: $id})
		WHERE r.kind IS NOT NULL
		RETURN r.kind AS kind, r.gedcom AS gedcom, r.sort_name AS sort_name,
		       r.restriction AS restriction, r.files AS files`,
		map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("query record: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	row := rows[0]
	rec := &model.Record{ID: id}
	kind, _ := row.Get("kind")
	text, _ := row.Get("gedcom")
	name, _ := row.Get("sort_name")
	restriction, _ := row.Get("restriction")
	files, _ := row.Get("files")

	rec.Kind = model.RecordKind(asString(kind))
	rec.Text = asString(text)
	rec.SortName = asString(name)
	rec.Restriction = model.TierHidden
	if n, ok := restriction.(int64); ok {
		rec.Restriction = model.AccessTier(n)
	}
	if s := asString(files); s != "" {
		if err := json.Unmarshal([]byte(s), &rec.Files); err != nil {
			return nil, fmt.Errorf("unmarshaling files: %w", err)
		}
	}
	return rec, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func (g *Neo4jGraph) KindOf(ctx context.Context, id string) (model.RecordKind, error) {
	rec, err := g.record(ctx, id)
	if err != nil {
		return "", err
	}
	return rec.Kind, nil
}

func (g *Neo4jGraph) Relatives(ctx context.Context, id string, rel model.Relation) ([]string, error) {
	if _, err := g.record(ctx, id); err != nil {
		return nil, err
	}

	var ids []string
	seen := make(map[string]bool)
	for _, r := range rel.Expand() {
		rows, err := g.read(ctx, `
			MATCH (r:Record {tree: $tree, id: $id})-[l:LINK {rel: $rel}]->(t:Record)
			WHERE t.kind IS NOT NULL
			RETURN t.id AS id
			ORDER BY l.seq`,
			map[string]any{"id": id, "rel": string(r)})
		if err != nil {
			return nil, fmt.Errorf("query relatives: %w", err)
		}
		for _, row := range rows {
			v, _ := row.Get("id")
			to := asString(v)
			if to != "" && !seen[to] {
				seen[to] = true
				ids = append(ids, to)
			}
		}
	}
	return ids, nil
}

func (g *Neo4jGraph) CanView(ctx context.Context, id string, tier model.AccessTier) (bool, error) {
	rec, err := g.record(ctx, id)
	if err != nil {
		return false, err
	}
	return tier <= rec.Restriction, nil
}

func (g *Neo4jGraph) PrivatizedText(ctx context.Context, id string, tier model.AccessTier) (string, error) {
	rec, err := g.record(ctx, id)
	if err != nil {
		return "", err
	}
	return gedcom.Privatize(rec.Text, tier), nil
}

func (g *Neo4jGraph) MediaFiles(ctx context.Context, id string) ([]model.MediaFile, error) {
	rec, err := g.record(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec.Files, nil
}

func (g *Neo4jGraph) SortName(ctx context.Context, id string) (string, error) {
	rec, err := g.record(ctx, id)
	if err != nil {
		return "", err
	}
	return rec.SortName, nil
}

func (g *Neo4jGraph) IDs(ctx context.Context, kind model.RecordKind) ([]string, error) {
	rows, err := g.read(ctx, `
		MATCH (r:Record {tree: $tree, kind: $kind})
		RETURN r.id AS id
		ORDER BY r.id`,
		map[string]any{"kind": string(kind)})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		v, _ := row.Get("id")
		ids = append(ids, asString(v))
	}
	return ids, nil
}

// Import stores records and replaces their outgoing links. Returns the
// number of records written.
func (g *Neo4jGraph) Import(ctx context.Context, records []model.Record) (int, error) {
	err := g.write(ctx, func(tx neo4j.ManagedTransaction) error {
		for _, rec := range records {
			files, err := json.Marshal(rec.Files)
			if err != nil {
				return fmt.Errorf("marshaling files: %w", err)
			}
			_, err = tx.Run(ctx, `
				MERGE (r:Record {tree: $tree, id: $id})
				SET r.kind = $kind, r.gedcom = $gedcom, r.sort_name = $sort_name,
				    r.restriction = $restriction, r.files = $files
				WITH r
				OPTIONAL MATCH (r)-[l:LINK]->()
				DELETE l`,
				map[string]any{
					"tree":        g.tree,
					"id":          rec.ID,
					"kind":        string(rec.Kind),
					"gedcom":      rec.Text,
					"sort_name":   rec.SortName,
					"restriction": int64(rec.Restriction),
					"files":       string(files),
				})
			if err != nil {
				return fmt.Errorf("merge record %s: %w", rec.ID, err)
			}
		}

		for _, rec := range records {
			links := make([]map[string]any, 0, len(rec.Links))
			for i, l := range rec.Links {
				links = append(links, map[string]any{"rel": string(l.Rel), "to": l.To, "seq": int64(i)})
			}
			if len(links) == 0 {
				continue
			}
			_, err := tx.Run(ctx, `
				MATCH (r:Record {tree: $tree, id: $id})
				UNWIND $links AS link
				MERGE (t:Record {tree: $tree, id: link.to})
				CREATE (r)-[:LINK {rel: link.rel, seq: link.seq}]->(t)`,
				map[string]any{"tree": g.tree, "id": rec.ID, "links": links})
			if err != nil {
				return fmt.Errorf("link record %s: %w", rec.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(records), nil
}
