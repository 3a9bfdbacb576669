package closure

import (
	"context"
	"errors"
	"sort"

	"github.com/rcliao/gedcart/internal/graph"
	"github.com/rcliao/gedcart/internal/model"
)

// CircleRelations are the links that can close a loop between individuals
// and families.
var CircleRelations = []model.Relation{model.RelSpouseFamily, model.RelParentFamily, model.RelAlias}

// RelationGraph is an undirected adjacency over individual and family ids.
type RelationGraph map[string]map[string]bool

// Connect adds the edge a-b. Self loops are ignored.
func (g RelationGraph) Connect(a, b string) {
	g.add(a)
	if a == b {
		return
	}
	g.add(b)
	g[a][b] = true
	g[b][a] = true
}

func (g RelationGraph) add(id string) {
	if g[id] == nil {
		g[id] = make(map[string]bool)
	}
}

// Peel strips g down to its 2-core and returns the surviving ids, sorted.
// Nodes of degree 0 or 1 are removed until none remain; whatever survives
// lies on at least one cycle. g is modified in place.
func Peel(g RelationGraph) []string {
	var queue []string
	for id, nb := range g {
		if len(nb) <= 1 {
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		nb, ok := g[id]
		if !ok {
			continue
		}
		delete(g, id)
		for n := range nb {
			delete(g[n], id)
			if len(g[n]) == 1 {
				queue = append(queue, n)
			}
		}
	}

	ids := make([]string, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// BuildRelationGraph connects every individual to the records it links to
// under rels.
func (e *Engine) BuildRelationGraph(ctx context.Context, rels []model.Relation) (RelationGraph, error) {
	indis, err := e.graph.IDs(ctx, model.KindIndividual)
	if err != nil {
		return nil, err
	}
	g := make(RelationGraph)
	for _, id := range indis {
		g.add(id)
		for _, rel := range rels {
			targets, err := e.graph.Relatives(ctx, id, rel)
			if err != nil {
				return nil, err
			}
			for _, t := range targets {
				g.Connect(id, t)
			}
		}
	}
	return g, nil
}

// Circles returns every individual and family that lies on a closed loop of
// family relations.
func (e *Engine) Circles(ctx context.Context) ([]string, error) {
	g, err := e.BuildRelationGraph(ctx, CircleRelations)
	if err != nil {
		return nil, err
	}
	return Peel(g), nil
}

// AddAllCircles inserts every visible record on a circle. Individuals are
// added with their auxiliary records; families without their spouses, who
// are on the circle themselves.
func (e *Engine) AddAllCircles(ctx context.Context) error {
	ids, err := e.Circles(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		kind, err := e.graph.KindOf(ctx, id)
		if errors.Is(err, graph.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		switch kind {
		case model.KindIndividual:
			err = e.AddIndividual(ctx, id)
		case model.KindFamily:
			err = e.AddFamilyWithoutSpouses(ctx, id)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
