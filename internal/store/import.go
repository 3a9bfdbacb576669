package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rcliao/gedcart/internal/model"
)

// Import stores records for a tree, replacing records with the same id
// along with their links and media files. Returns the number imported.
func (s *SQLiteStore) Import(ctx context.Context, tree string, records []model.Record) (int, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	imported := 0
	for _, rec := range records {
		for _, q := range []string{
			`DELETE FROM record_links WHERE tree = ? AND from_id = ?`,
			`DELETE FROM media_files WHERE tree = ? AND record_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, tree, rec.ID); err != nil {
				return imported, fmt.Errorf("clear record %s: %w", rec.ID, err)
			}
		}

		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO records (tree, id, kind, gedcom, sort_name, restriction, imported_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			tree, rec.ID, string(rec.Kind), rec.Text, rec.SortName, int(rec.Restriction), now)
		if err != nil {
			return imported, fmt.Errorf("insert record %s: %w", rec.ID, err)
		}

		for i, l := range rec.Links {
			_, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO record_links (tree, from_id, to_id, rel, seq) VALUES (?, ?, ?, ?, ?)`,
				tree, rec.ID, l.To, string(l.Rel), i)
			if err != nil {
				return imported, fmt.Errorf("insert link: %w", err)
			}
		}
		for i, f := range rec.Files {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO media_files (tree, record_id, seq, path, external) VALUES (?, ?, ?, ?, ?)`,
				tree, rec.ID, i, f.Path, f.External)
			if err != nil {
				return imported, fmt.Errorf("insert media file: %w", err)
			}
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return imported, nil
}
