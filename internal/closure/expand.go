package closure

import (
	"context"
	"fmt"

	"github.com/rcliao/gedcart/internal/model"
)

// AddRecord inserts any record with the records it naturally carries along:
// individuals and families their auxiliary records, sources their
// repositories and notes, media their notes.
func (e *Engine) AddRecord(ctx context.Context, id string) error {
	kind, err := e.graph.KindOf(ctx, id)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", id, err)
	}
	switch kind {
	case model.KindIndividual:
		return e.AddIndividual(ctx, id)
	case model.KindFamily:
		return e.AddFamily(ctx, id)
	}

	if err := e.insert(ctx, id); err != nil {
		return err
	}
	switch kind {
	case model.KindSource:
		return e.insertLinks(ctx, id, model.RelRepository, model.RelNote)
	case model.KindMedia:
		return e.insertLinks(ctx, id, model.RelNote)
	}
	return nil
}

// AddIndividual inserts an individual and its auxiliary records.
func (e *Engine) AddIndividual(ctx context.Context, id string) error {
	if err := e.insert(ctx, id); err != nil {
		return err
	}
	return e.insertLinks(ctx, id, model.AuxiliaryRelations...)
}

// AddFamily expands a family: its spouses, the family itself and the
// family's auxiliary records.
func (e *Engine) AddFamily(ctx context.Context, fam string) error {
	spouses, err := e.relatives(ctx, fam, model.RelSpouse)
	if err != nil {
		return err
	}
	for _, s := range spouses {
		if err := e.AddIndividual(ctx, s); err != nil {
			return err
		}
	}
	return e.AddFamilyWithoutSpouses(ctx, fam)
}

// AddFamilyWithoutSpouses inserts a family and its auxiliary records but not
// its spouses.
func (e *Engine) AddFamilyWithoutSpouses(ctx context.Context, fam string) error {
	if err := e.insert(ctx, fam); err != nil {
		return err
	}
	return e.insertLinks(ctx, fam, model.AuxiliaryRelations...)
}

// AddFamilyAndChildren expands a family and adds each of its children.
func (e *Engine) AddFamilyAndChildren(ctx context.Context, fam string) error {
	if err := e.AddFamily(ctx, fam); err != nil {
		return err
	}
	children, err := e.relatives(ctx, fam, model.RelChild)
	if err != nil {
		return err
	}
	for _, c := range children {
		if err := e.AddIndividual(ctx, c); err != nil {
			return err
		}
	}
	return nil
}
