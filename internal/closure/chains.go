package closure

import (
	"context"
	"sort"

	"github.com/rcliao/gedcart/internal/model"
)

// Visited is the set of individuals and families a partner-chain discovery
// has already used. A single Visited is shared by the whole recursion, so a
// node reached on one branch is never reached again on another.
type Visited struct {
	Individuals map[string]bool
	Families    map[string]bool
}

// NewVisited returns a Visited seeded with the root individual.
func NewVisited(root string) *Visited {
	return &Visited{
		Individuals: map[string]bool{root: true},
		Families:    make(map[string]bool),
	}
}

// DiscoverChains follows "this spouse also married into another family"
// edges from individual and returns one node per spouse reached.
//
// When a spouse in a family has already been visited, the remaining spouses
// of that family are not examined either.
func (e *Engine) DiscoverChains(ctx context.Context, individual string, v *Visited) ([]*model.ChainNode, error) {
	fams, err := e.relatives(ctx, individual, model.RelSpouseFamily)
	if err != nil {
		return nil, err
	}

	var nodes []*model.ChainNode
	for _, fam := range fams {
		if v.Families[fam] {
			continue
		}
		spouses, err := e.relatives(ctx, fam, model.RelSpouse)
		if err != nil {
			return nil, err
		}
		for _, s := range spouses {
			if s == individual {
				continue
			}
			if v.Individuals[s] {
				break
			}
			v.Individuals[s] = true
			v.Families[fam] = true
			children, err := e.DiscoverChains(ctx, s, v)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &model.ChainNode{Individual: s, Family: fam, Children: children})
		}
	}
	return nodes, nil
}

// Chain returns the partner chain rooted at individual, entered through fam.
func (e *Engine) Chain(ctx context.Context, individual, fam string) (*model.ChainNode, error) {
	children, err := e.DiscoverChains(ctx, individual, NewVisited(individual))
	if err != nil {
		return nil, err
	}
	return &model.ChainNode{Individual: individual, Family: fam, Children: children}, nil
}

// CountChainSize counts the individuals in a chain forest. A single couple
// is not a chain, so totals of two or less count as zero.
func CountChainSize(nodes []*model.ChainNode) int {
	n := countNodes(nodes)
	if n <= 2 {
		return 0
	}
	return n
}

func countNodes(nodes []*model.ChainNode) int {
	n := 0
	for _, node := range nodes {
		n += 1 + countNodes(node.Children)
	}
	return n
}

// AddPartnerChains inserts root and fam, and when root belongs to a chain of
// more than one couple, every individual and family of that chain.
func (e *Engine) AddPartnerChains(ctx context.Context, root, fam string) error {
	chain, err := e.Chain(ctx, root, fam)
	if err != nil {
		return err
	}
	if err := e.AddIndividual(ctx, root); err != nil {
		return err
	}
	if err := e.AddFamily(ctx, fam); err != nil {
		return err
	}
	if CountChainSize([]*model.ChainNode{chain}) == 0 {
		return nil
	}
	return e.addChainNodes(ctx, chain.Children)
}

func (e *Engine) addChainNodes(ctx context.Context, nodes []*model.ChainNode) error {
	for _, node := range nodes {
		if err := e.AddIndividual(ctx, node.Individual); err != nil {
			return err
		}
		if err := e.AddFamily(ctx, node.Family); err != nil {
			return err
		}
		if err := e.addChainNodes(ctx, node.Children); err != nil {
			return err
		}
	}
	return nil
}

// AddPartnerChainsForFamily enters the partner chain of fam through its
// husband, or its wife when there is no husband. A family with neither adds
// nothing.
func (e *Engine) AddPartnerChainsForFamily(ctx context.Context, fam string) error {
	for _, rel := range []model.Relation{model.RelHusband, model.RelWife} {
		spouses, err := e.relatives(ctx, fam, rel)
		if err != nil {
			return err
		}
		if len(spouses) > 0 {
			return e.AddPartnerChains(ctx, spouses[0], fam)
		}
	}
	return nil
}

// LinkCounts computes, for every family, how many spouse-family memberships
// its spouses have in total, plus one when the family has a single spouse.
// A plain couple whose members married only once scores exactly 2.
func LinkCounts(familySpouses map[string][]string) map[string]int {
	indiFams := make(map[string]map[string]bool)
	for fam, spouses := range familySpouses {
		for _, s := range spouses {
			if indiFams[s] == nil {
				indiFams[s] = make(map[string]bool)
			}
			indiFams[s][fam] = true
		}
	}

	counts := make(map[string]int, len(familySpouses))
	for fam, spouses := range familySpouses {
		unique := make(map[string]bool, len(spouses))
		for _, s := range spouses {
			unique[s] = true
		}
		n := 0
		if len(unique) == 1 {
			n = 1
		}
		for s := range unique {
			n += len(indiFams[s])
		}
		counts[fam] = n
	}
	return counts
}

// FamilyLinkCounts builds the spousal adjacency of the whole tree and
// returns LinkCounts for it.
func (e *Engine) FamilyLinkCounts(ctx context.Context) (map[string]int, error) {
	fams, err := e.graph.IDs(ctx, model.KindFamily)
	if err != nil {
		return nil, err
	}
	familySpouses := make(map[string][]string, len(fams))
	for _, fam := range fams {
		spouses, err := e.graph.Relatives(ctx, fam, model.RelSpouse)
		if err != nil {
			return nil, err
		}
		familySpouses[fam] = spouses
	}
	return LinkCounts(familySpouses), nil
}

// AddAllPartnerChains expands every visible family that is part of a
// marriage network larger than one couple.
func (e *Engine) AddAllPartnerChains(ctx context.Context) error {
	counts, err := e.FamilyLinkCounts(ctx)
	if err != nil {
		return err
	}
	fams := make([]string, 0, len(counts))
	for fam, n := range counts {
		if n > 2 {
			fams = append(fams, fam)
		}
	}
	sort.Strings(fams)

	for _, fam := range fams {
		ok, err := e.visible(ctx, fam)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := e.AddFamily(ctx, fam); err != nil {
			return err
		}
	}
	return nil
}
