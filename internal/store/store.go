// Package store provides the SQLite-backed record graph and session storage.
package store

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// SQLiteStore holds the imported trees and the cart sessions in one SQLite
// database.
type SQLiteStore struct {
	db      *sql.DB
	path    string
	mu      sync.Mutex
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		path:    dbPath,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		tree        TEXT NOT NULL,
		id          TEXT NOT NULL,
		kind        TEXT NOT NULL,
		gedcom      TEXT NOT NULL,
		sort_name   TEXT NOT NULL DEFAULT '',
		restriction INTEGER NOT NULL DEFAULT 4,
		imported_at TEXT NOT NULL,
		PRIMARY KEY (tree, id)
	);
	CREATE INDEX IF NOT EXISTS idx_records_kind ON records(tree, kind);

	CREATE TABLE IF NOT EXISTS record_links (
		tree    TEXT NOT NULL,
		from_id TEXT NOT NULL,
		to_id   TEXT NOT NULL,
		rel     TEXT NOT NULL,
		seq     INTEGER NOT NULL,
		PRIMARY KEY (tree, from_id, rel, to_id)
	);
	CREATE INDEX IF NOT EXISTS idx_links_to ON record_links(tree, to_id);

	CREATE TABLE IF NOT EXISTS media_files (
		tree      TEXT NOT NULL,
		record_id TEXT NOT NULL,
		seq       INTEGER NOT NULL,
		path      TEXT NOT NULL,
		external  INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (tree, record_id, seq)
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      BLOB NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (id, key)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
