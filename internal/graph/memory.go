package graph

import (
	"context"
	"fmt"
	"io"

	"github.com/rcliao/gedcart/internal/gedcom"
	"github.com/rcliao/gedcart/internal/model"
)

// Memory is a Graph held entirely in process memory.
type Memory struct {
	records map[string]*model.Record
	order   []string
}

// NewMemory builds a graph from records. Later records with a duplicate id
// replace earlier ones.
func NewMemory(records []model.Record) *Memory {
	m := &Memory{records: make(map[string]*model.Record, len(records))}
	for i := range records {
		rec := records[i]
		if _, ok := m.records[rec.ID]; !ok {
			m.order = append(m.order, rec.ID)
		}
		m.records[rec.ID] = &rec
	}
	return m
}

// LoadMemory decodes a GEDCOM document into a Memory graph.
func LoadMemory(r io.Reader) (*Memory, error) {
	records, err := gedcom.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode gedcom: %w", err)
	}
	return NewMemory(records), nil
}

func (m *Memory) get(id string) (*model.Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, nil
}

func (m *Memory) KindOf(ctx context.Context, id string) (model.RecordKind, error) {
	rec, err := m.get(id)
	if err != nil {
		return "", err
	}
	return rec.Kind, nil
}

func (m *Memory) Relatives(ctx context.Context, id string, rel model.Relation) ([]string, error) {
	rec, err := m.get(id)
	if err != nil {
		return nil, err
	}
	var ids []string
	seen := make(map[string]bool)
	for _, r := range rel.Expand() {
		for _, l := range rec.Links {
			if l.Rel != r || seen[l.To] {
				continue
			}
			if _, ok := m.records[l.To]; !ok {
				continue
			}
			seen[l.To] = true
			ids = append(ids, l.To)
		}
	}
	return ids, nil
}

func (m *Memory) CanView(ctx context.Context, id string, tier model.AccessTier) (bool, error) {
	rec, err := m.get(id)
	if err != nil {
		return false, err
	}
	return tier <= rec.Restriction, nil
}

func (m *Memory) PrivatizedText(ctx context.Context, id string, tier model.AccessTier) (string, error) {
	rec, err := m.get(id)
	if err != nil {
		return "", err
	}
	return gedcom.Privatize(rec.Text, tier), nil
}

func (m *Memory) MediaFiles(ctx context.Context, id string) ([]model.MediaFile, error) {
	rec, err := m.get(id)
	if err != nil {
		return nil, err
	}
	return rec.Files, nil
}

func (m *Memory) SortName(ctx context.Context, id string) (string, error) {
	rec, err := m.get(id)
	if err != nil {
		return "", err
	}
	return rec.SortName, nil
}

func (m *Memory) IDs(ctx context.Context, kind model.RecordKind) ([]string, error) {
	var ids []string
	for _, id := range m.order {
		if m.records[id].Kind == kind {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *Memory) Close() error { return nil }
