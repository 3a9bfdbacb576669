package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rcliao/gedcart/internal/gedcom"
	"github.com/rcliao/gedcart/internal/graph"
	"github.com/rcliao/gedcart/internal/model"
)

// SQLiteGraph is the read-only graph view of one tree in a SQLiteStore.
type SQLiteGraph struct {
	s    *SQLiteStore
	tree string
}

// Graph returns the graph view of tree. Closing the view does not close the
// store.
func (s *SQLiteStore) Graph(tree string) *SQLiteGraph {
	return &SQLiteGraph{s: s, tree: tree}
}

type recordRow struct {
	kind        model.RecordKind
	text        string
	sortName    string
	restriction model.AccessTier
}

func (g *SQLiteGraph) record(ctx context.Context, id string) (*recordRow, error) {
	var r recordRow
	var kind string
	var restriction int
	err := g.s.db.QueryRowContext(ctx,
		`SELECT kind, gedcom, sort_name, restriction FROM records WHERE tree = ? AND id = ?`,
		g.tree, id).Scan(&kind, &r.text, &r.sortName, &restriction)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", graph.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query record: %w", err)
	}
	r.kind = model.RecordKind(kind)
	r.restriction = model.AccessTier(restriction)
	return &r, nil
}

func (g *SQLiteGraph) KindOf(ctx context.Context, id string) (model.RecordKind, error) {
	r, err := g.record(ctx, id)
	if err != nil {
		return "", err
	}
	return r.kind, nil
}

func (g *SQLiteGraph) Relatives(ctx context.Context, id string, rel model.Relation) ([]string, error) {
	if _, err := g.record(ctx, id); err != nil {
		return nil, err
	}

	var ids []string
	seen := make(map[string]bool)
	for _, r := range rel.Expand() {
		rows, err := g.s.db.QueryContext(ctx,
			`SELECT l.to_id FROM record_links l
			 INNER JOIN records t ON t.tree = l.tree AND t.id = l.to_id
			 WHERE l.tree = ? AND l.from_id = ? AND l.rel = ?
			 ORDER BY l.seq`, g.tree, id, string(r))
		if err != nil {
			return nil, fmt.Errorf("query relatives: %w", err)
		}
		for rows.Next() {
			var to string
			if err := rows.Scan(&to); err != nil {
				rows.Close()
				return nil, err
			}
			if !seen[to] {
				seen[to] = true
				ids = append(ids, to)
			}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (g *SQLiteGraph) CanView(ctx context.Context, id string, tier model.AccessTier) (bool, error) {
	r, err := g.record(ctx, id)
	if err != nil {
		return false, err
	}
	return tier <= r.restriction, nil
}

func (g *SQLiteGraph) PrivatizedText(ctx context.Context, id string, tier model.AccessTier) (string, error) {
	r, err := g.record(ctx, id)
	if err != nil {
		return "", err
	}
	return gedcom.Privatize(r.text, tier), nil
}

func (g *SQLiteGraph) MediaFiles(ctx context.Context, id string) ([]model.MediaFile, error) {
	if _, err := g.record(ctx, id); err != nil {
		return nil, err
	}
	rows, err := g.s.db.QueryContext(ctx,
		`SELECT path, external FROM media_files WHERE tree = ? AND record_id = ? ORDER BY seq`,
		g.tree, id)
	if err != nil {
		return nil, fmt.Errorf("query media files: %w", err)
	}
	defer rows.Close()

	var files []model.MediaFile
	for rows.Next() {
		var f model.MediaFile
		if err := rows.Scan(&f.Path, &f.External); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (g *SQLiteGraph) SortName(ctx context.Context, id string) (string, error) {
	r, err := g.record(ctx, id)
	if err != nil {
		return "", err
	}
	return r.sortName, nil
}

func (g *SQLiteGraph) IDs(ctx context.Context, kind model.RecordKind) ([]string, error) {
	rows, err := g.s.db.QueryContext(ctx,
		`SELECT id FROM records WHERE tree = ? AND kind = ? ORDER BY id`, g.tree, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close is a no-op; the store owns the connection.
func (g *SQLiteGraph) Close() error { return nil }
