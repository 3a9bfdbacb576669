// Package closure decides which records belong in a cart for a seed record
// and a rule, and inserts them.
//
// Every walk reads the graph through graph.Graph and writes through
// cart.Cart; neither is held beyond the call. Relatives the viewer may not
// see are neither inserted nor walked through.
package closure

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rcliao/gedcart/internal/cart"
	"github.com/rcliao/gedcart/internal/graph"
	"github.com/rcliao/gedcart/internal/model"
)

var (
	// ErrRecursionLimit is returned when an ancestor or descendant walk
	// goes deeper than the configured ceiling, which only happens when the
	// parent/child relation of the tree contains a cycle.
	ErrRecursionLimit = errors.New("recursion limit exceeded")

	// ErrUnknownRule is returned for a rule the engine has no walk for.
	ErrUnknownRule = errors.New("unknown closure rule")
	// ErrWrongKind is returned when a rule is run on a seed of a kind it
	// does not accept, such as ancestors of a source.
	ErrWrongKind = errors.New("rule does not apply to this record kind")
	// ErrNoSeed is returned when a per-record rule is given no seed id.
	ErrNoSeed = errors.New("rule needs a seed record")
	// ErrSeedHidden is returned when the viewer may not see the seed.
	ErrSeedHidden = errors.New("seed record not visible")
)

// DefaultMaxRecursion bounds ancestor and descendant recursion.
const DefaultMaxRecursion = 1000

// Options configures an Engine.
type Options struct {
	Tree         string
	Tier         model.AccessTier
	MaxRecursion int
	Logger       *zap.Logger
}

// Engine runs closure rules for one viewer on one tree.
type Engine struct {
	graph    graph.Graph
	cart     *cart.Cart
	tree     string
	tier     model.AccessTier
	maxDepth int
	logger   *zap.Logger
	added    int
}

// New returns an Engine reading g and inserting into c.
func New(g graph.Graph, c *cart.Cart, opts Options) *Engine {
	if opts.MaxRecursion <= 0 {
		opts.MaxRecursion = DefaultMaxRecursion
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{
		graph:    g,
		cart:     c,
		tree:     opts.Tree,
		tier:     opts.Tier,
		maxDepth: opts.MaxRecursion,
		logger:   opts.Logger,
	}
}

// visible reports whether the viewer may see id. Missing records are
// treated as invisible.
func (e *Engine) visible(ctx context.Context, id string) (bool, error) {
	ok, err := e.graph.CanView(ctx, id, e.tier)
	if errors.Is(err, graph.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check visibility of %s: %w", id, err)
	}
	return ok, nil
}

// relatives returns the visible relatives of id under rel.
func (e *Engine) relatives(ctx context.Context, id string, rel model.Relation) ([]string, error) {
	ids, err := e.graph.Relatives(ctx, id, rel)
	if errors.Is(err, graph.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("relatives %s of %s: %w", rel, id, err)
	}
	out := ids[:0:0]
	for _, r := range ids {
		ok, err := e.visible(ctx, r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// insert adds a single visible id to the cart.
func (e *Engine) insert(ctx context.Context, id string) error {
	ok, err := e.visible(ctx, id)
	if err != nil || !ok {
		return err
	}
	added, err := e.cart.Add(ctx, e.tree, id)
	if err != nil {
		return err
	}
	if added {
		e.added++
	}
	return nil
}

// insertLinks inserts the records id links to under each of rels.
func (e *Engine) insertLinks(ctx context.Context, id string, rels ...model.Relation) error {
	for _, rel := range rels {
		targets, err := e.relatives(ctx, id, rel)
		if err != nil {
			return err
		}
		for _, t := range targets {
			if err := e.insert(ctx, t); err != nil {
				return err
			}
		}
	}
	return nil
}

// Apply runs a closure request and returns the number of ids newly added to
// the cart.
func (e *Engine) Apply(ctx context.Context, req model.Request) (int, error) {
	if err := validate.Struct(req); err != nil {
		return 0, fmt.Errorf("invalid request: %w", err)
	}
	e.added = 0

	var err error
	if req.Rule.Global() {
		err = e.applyGlobal(ctx, req.Rule)
	} else {
		err = e.applySeed(ctx, req)
	}

	e.logger.Debug("closure applied",
		zap.String("rule", string(req.Rule)),
		zap.String("id", req.ID),
		zap.Int("added", e.added),
		zap.Error(err))
	return e.added, err
}

func (e *Engine) applyGlobal(ctx context.Context, rule model.Rule) error {
	switch rule {
	case model.RuleAllPartnerChains:
		return e.AddAllPartnerChains(ctx)
	case model.RuleAllCircles:
		return e.AddAllCircles(ctx)
	}
	return fmt.Errorf("%w: %s", ErrUnknownRule, rule)
}

func (e *Engine) applySeed(ctx context.Context, req model.Request) error {
	if req.ID == "" {
		return fmt.Errorf("%w: %s", ErrNoSeed, req.Rule)
	}
	kind, err := e.graph.KindOf(ctx, req.ID)
	if err != nil {
		return fmt.Errorf("resolve seed: %w", err)
	}
	ok, err := e.visible(ctx, req.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrSeedHidden, req.ID)
	}
	depth := req.Generations()

	switch kind {
	case model.KindIndividual:
		return e.applyIndividual(ctx, req.Rule, req.ID, depth)
	case model.KindFamily:
		return e.applyFamily(ctx, req.Rule, req.ID, depth)
	}
	if req.Rule != model.RuleRecordOnly {
		return fmt.Errorf("%w: %s on %s", ErrWrongKind, req.Rule, kind.Name())
	}
	return e.AddRecord(ctx, req.ID)
}

func (e *Engine) applyIndividual(ctx context.Context, rule model.Rule, id string, depth int) error {
	switch rule {
	case model.RuleRecordOnly:
		return e.AddIndividual(ctx, id)
	case model.RuleParentFamilies:
		return e.eachFamily(ctx, id, model.RelParentFamily, e.AddFamilyAndChildren)
	case model.RuleSpouseFamilies:
		return e.eachFamily(ctx, id, model.RelSpouseFamily, e.AddFamilyAndChildren)
	case model.RuleAncestors:
		return e.AddAncestors(ctx, id, depth)
	case model.RuleAncestorFamilies:
		return e.AddAncestorFamilies(ctx, id, depth)
	case model.RuleDescendants:
		return e.eachFamily(ctx, id, model.RelSpouseFamily, func(ctx context.Context, fam string) error {
			return e.AddDescendants(ctx, fam, depth)
		})
	case model.RulePartnerChains:
		fams, err := e.relatives(ctx, id, model.RelSpouseFamily)
		if err != nil || len(fams) == 0 {
			return err
		}
		return e.AddPartnerChains(ctx, id, fams[0])
	}
	return fmt.Errorf("%w: %s on Individual", ErrWrongKind, rule)
}

func (e *Engine) applyFamily(ctx context.Context, rule model.Rule, id string, depth int) error {
	switch rule {
	case model.RuleRecordOnly:
		return e.AddFamily(ctx, id)
	case model.RuleChildren:
		return e.AddFamilyAndChildren(ctx, id)
	case model.RuleDescendants:
		return e.AddDescendants(ctx, id, depth)
	case model.RulePartnerChains:
		return e.AddPartnerChainsForFamily(ctx, id)
	}
	return fmt.Errorf("%w: %s on Family", ErrWrongKind, rule)
}

func (e *Engine) eachFamily(ctx context.Context, id string, rel model.Relation, fn func(context.Context, string) error) error {
	fams, err := e.relatives(ctx, id, rel)
	if err != nil {
		return err
	}
	for _, f := range fams {
		if err := fn(ctx, f); err != nil {
			return err
		}
	}
	return nil
}
