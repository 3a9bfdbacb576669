package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SQLiteSession is a key-value session persisted in the sessions table.
type SQLiteSession struct {
	s  *SQLiteStore
	id string
}

// NewSession starts a fresh session with a new id.
func (s *SQLiteStore) NewSession() *SQLiteSession {
	return &SQLiteSession{s: s, id: s.newID()}
}

// Session reopens an existing session by id. Unknown ids behave as empty
// sessions.
func (s *SQLiteStore) Session(id string) *SQLiteSession {
	return &SQLiteSession{s: s, id: id}
}

// ID returns the session id.
func (ss *SQLiteSession) ID() string {
	return ss.id
}

// Get returns the value stored under key and whether it was present.
func (ss *SQLiteSession) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := ss.s.db.QueryRowContext(ctx,
		`SELECT value FROM sessions WHERE id = ? AND key = ?`, ss.id, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read session %s: %w", ss.id, err)
	}
	return value, true, nil
}

// Put replaces the value stored under key.
func (ss *SQLiteSession) Put(ctx context.Context, key string, value []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := ss.s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		ss.id, key, value, now)
	if err != nil {
		return fmt.Errorf("write session %s: %w", ss.id, err)
	}
	return nil
}

// Discard deletes every key of the session.
func (ss *SQLiteSession) Discard(ctx context.Context) error {
	_, err := ss.s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, ss.id)
	return err
}

func (s *SQLiteStore) sessionFile() string {
	return filepath.Join(filepath.Dir(s.Path()), "session")
}

// LastSession returns the session whose id was saved beside the database,
// starting and saving a new one if there is none.
func (s *SQLiteStore) LastSession() (*SQLiteSession, error) {
	data, err := os.ReadFile(s.sessionFile())
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return s.Session(id), nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read session id: %w", err)
	}
	ss := s.NewSession()
	if err := os.WriteFile(s.sessionFile(), []byte(ss.ID()+"\n"), 0600); err != nil {
		return nil, fmt.Errorf("save session id: %w", err)
	}
	return ss, nil
}

// EndSession discards everything stored in ss, its cart included. When ss
// is the saved session the saved id is forgotten too, so the next
// LastSession starts afresh.
func (s *SQLiteStore) EndSession(ctx context.Context, ss *SQLiteSession) error {
	if err := ss.Discard(ctx); err != nil {
		return fmt.Errorf("discard session %s: %w", ss.id, err)
	}
	data, err := os.ReadFile(s.sessionFile())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read session id: %w", err)
	}
	if strings.TrimSpace(string(data)) != ss.id {
		return nil
	}
	if err := os.Remove(s.sessionFile()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("forget session id: %w", err)
	}
	return nil
}
