package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string      `json:"db_path"`
	DBSizeBytes int64       `json:"db_size_bytes"`
	Sessions    int         `json:"sessions"`
	Trees       []TreeStats `json:"trees"`
}

// TreeStats holds per-tree counts.
type TreeStats struct {
	Tree    string         `json:"tree"`
	Records int            `json:"records"`
	Links   int            `json:"links"`
	Kinds   map[string]int `json:"kinds"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{DBPath: s.path}

	// DB file size
	if info, err := os.Stat(s.path); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT id) FROM sessions`).Scan(&st.Sessions)

	rows, err := s.db.QueryContext(ctx, `
		SELECT tree, kind, COUNT(*) FROM records
		GROUP BY tree, kind ORDER BY tree, kind`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	byTree := make(map[string]*TreeStats)
	var order []string
	for rows.Next() {
		var tree, kind string
		var n int
		if err := rows.Scan(&tree, &kind, &n); err != nil {
			return st, err
		}
		ts, ok := byTree[tree]
		if !ok {
			ts = &TreeStats{Tree: tree, Kinds: make(map[string]int)}
			byTree[tree] = ts
			order = append(order, tree)
		}
		ts.Kinds[kind] = n
		ts.Records += n
	}
	if err := rows.Err(); err != nil {
		return st, err
	}

	for _, tree := range order {
		ts := byTree[tree]
		s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM record_links WHERE tree = ?`, tree).Scan(&ts.Links)
		st.Trees = append(st.Trees, *ts)
	}
	return st, nil
}
