// Package cart keeps the per-tree set of record ids selected for export.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rcliao/gedcart/internal/graph"
	"github.com/rcliao/gedcart/internal/model"
)

// Key is the session key the cart is stored under.
const Key = "cart"

// Session is the host's key-value session storage.
type Session interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Classifier resolves the kind of a record id. It returns graph.ErrNotFound
// for ids that no longer name a record.
type Classifier func(ctx context.Context, id string) (model.RecordKind, error)

// contents is the persisted form: tree name -> id -> true.
type contents map[string]map[string]bool

// Cart reads and writes the cart through a Session. The whole mapping is
// read and written on every mutation.
type Cart struct {
	session Session
}

// New returns a Cart stored in session.
func New(session Session) *Cart {
	return &Cart{session: session}
}

func (c *Cart) load(ctx context.Context) (contents, error) {
	raw, ok, err := c.session.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	all := make(contents)
	if !ok || len(raw) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return all, nil
}

func (c *Cart) save(ctx context.Context, all contents) error {
	raw, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := c.session.Put(ctx, Key, raw); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Add inserts id into the tree's cart. Adding an id twice is a no-op.
// Reports whether the id was new.
func (c *Cart) Add(ctx context.Context, tree, id string) (bool, error) {
	all, err := c.load(ctx)
	if err != nil {
		return false, err
	}
	if all[tree][id] {
		return false, nil
	}
	if all[tree] == nil {
		all[tree] = make(map[string]bool)
	}
	all[tree][id] = true
	return true, c.save(ctx, all)
}

// Remove deletes id from the tree's cart.
func (c *Cart) Remove(ctx context.Context, tree, id string) error {
	all, err := c.load(ctx)
	if err != nil {
		return err
	}
	if !all[tree][id] {
		return nil
	}
	delete(all[tree], id)
	return c.save(ctx, all)
}

// Contains reports whether id is in the tree's cart.
func (c *Cart) Contains(ctx context.Context, tree, id string) (bool, error) {
	all, err := c.load(ctx)
	if err != nil {
		return false, err
	}
	return all[tree][id], nil
}

// Members returns the ids in the tree's cart, sorted.
func (c *Cart) Members(ctx context.Context, tree string) ([]string, error) {
	all, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(all[tree]))
	for id, in := range all[tree] {
		if in {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Clear empties the tree's cart.
func (c *Cart) Clear(ctx context.Context, tree string) error {
	all, err := c.load(ctx)
	if err != nil {
		return err
	}
	all[tree] = map[string]bool{}
	return c.save(ctx, all)
}

// RemoveKind deletes every member of the given kind. Members that no longer
// resolve are left in place. Returns the number removed.
func (c *Cart) RemoveKind(ctx context.Context, tree string, kind model.RecordKind, classify Classifier) (int, error) {
	all, err := c.load(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for id := range all[tree] {
		k, err := classify(ctx, id)
		if errors.Is(err, graph.ErrNotFound) {
			continue
		}
		if err != nil {
			return 0, err
		}
		if k != kind {
			continue
		}
		delete(all[tree], id)
		removed++
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, c.save(ctx, all)
}

// CountByKind counts the members of the tree's cart by kind. Members that
// no longer resolve are skipped.
func (c *Cart) CountByKind(ctx context.Context, tree string, classify Classifier) (map[model.RecordKind]int, error) {
	ids, err := c.Members(ctx, tree)
	if err != nil {
		return nil, err
	}
	counts := make(map[model.RecordKind]int)
	for _, id := range ids {
		k, err := classify(ctx, id)
		if errors.Is(err, graph.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		counts[k]++
	}
	return counts, nil
}

// MemorySession is a Session held in memory.
type MemorySession struct {
	mu     sync.Mutex
	values map[string][]byte
}

// NewMemorySession returns an empty in-memory session.
func NewMemorySession() *MemorySession {
	return &MemorySession{values: make(map[string][]byte)}
}

func (m *MemorySession) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemorySession) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}
