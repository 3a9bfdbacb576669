package closure

import (
	"context"
	"fmt"

	"github.com/rcliao/gedcart/internal/model"
)

// The walks below assume the parent/child relation is acyclic. A tree that
// violates this trips the recursion ceiling instead of exhausting the stack.

func (e *Engine) checkLevel(level int, what, id string) error {
	if level > e.maxDepth {
		return fmt.Errorf("%w: %s of %s deeper than %d generations", ErrRecursionLimit, what, id, e.maxDepth)
	}
	return nil
}

// AddAncestors inserts root, expands each of its parent families, and walks
// up through the parents. depth bounds how many further generations are
// walked; the parent families of root are always expanded.
func (e *Engine) AddAncestors(ctx context.Context, root string, depth int) error {
	return e.addAncestors(ctx, root, depth, 0)
}

func (e *Engine) addAncestors(ctx context.Context, id string, depth, level int) error {
	if err := e.checkLevel(level, "ancestors", id); err != nil {
		return err
	}
	if err := e.AddIndividual(ctx, id); err != nil {
		return err
	}

	fams, err := e.relatives(ctx, id, model.RelParentFamily)
	if err != nil {
		return err
	}
	for _, fam := range fams {
		if err := e.AddFamily(ctx, fam); err != nil {
			return err
		}
		if depth <= 0 {
			continue
		}
		parents, err := e.relatives(ctx, fam, model.RelSpouse)
		if err != nil {
			return err
		}
		for _, p := range parents {
			if err := e.addAncestors(ctx, p, depth-1, level+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddAncestorFamilies expands every parent family of root together with its
// children, then walks up through the parents.
func (e *Engine) AddAncestorFamilies(ctx context.Context, root string, depth int) error {
	return e.addAncestorFamilies(ctx, root, depth, 0)
}

func (e *Engine) addAncestorFamilies(ctx context.Context, id string, depth, level int) error {
	if err := e.checkLevel(level, "ancestor families", id); err != nil {
		return err
	}

	fams, err := e.relatives(ctx, id, model.RelParentFamily)
	if err != nil {
		return err
	}
	for _, fam := range fams {
		if err := e.AddFamilyAndChildren(ctx, fam); err != nil {
			return err
		}
		if depth <= 0 {
			continue
		}
		parents, err := e.relatives(ctx, fam, model.RelSpouse)
		if err != nil {
			return err
		}
		for _, p := range parents {
			if err := e.addAncestorFamilies(ctx, p, depth-1, level+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddDescendants expands fam with its children and walks down through each
// child's own spouse families.
func (e *Engine) AddDescendants(ctx context.Context, fam string, depth int) error {
	return e.addDescendants(ctx, fam, depth, 0)
}

func (e *Engine) addDescendants(ctx context.Context, fam string, depth, level int) error {
	if err := e.checkLevel(level, "descendants", fam); err != nil {
		return err
	}
	if err := e.AddFamilyAndChildren(ctx, fam); err != nil {
		return err
	}
	if depth <= 0 {
		return nil
	}

	children, err := e.relatives(ctx, fam, model.RelChild)
	if err != nil {
		return err
	}
	for _, c := range children {
		fams, err := e.relatives(ctx, c, model.RelSpouseFamily)
		if err != nil {
			return err
		}
		for _, cf := range fams {
			if err := e.addDescendants(ctx, cf, depth-1, level+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// MaxAncestorGenerations returns the number of generations from id up to its
// most distant recorded ancestor, counting id itself. Shared ancestors are
// walked once per path.
func (e *Engine) MaxAncestorGenerations(ctx context.Context, id string) (int, error) {
	return e.generations(ctx, id, model.RelParentFamily, model.RelSpouse, 0)
}

// MaxDescendantGenerations returns the number of generations from id down to
// its most distant recorded descendant, counting id itself.
func (e *Engine) MaxDescendantGenerations(ctx context.Context, id string) (int, error) {
	return e.generations(ctx, id, model.RelSpouseFamily, model.RelChild, 0)
}

func (e *Engine) generations(ctx context.Context, id string, famRel, memberRel model.Relation, level int) (int, error) {
	if err := e.checkLevel(level, "generations", id); err != nil {
		return 0, err
	}

	best := 0
	fams, err := e.relatives(ctx, id, famRel)
	if err != nil {
		return 0, err
	}
	for _, fam := range fams {
		members, err := e.relatives(ctx, fam, memberRel)
		if err != nil {
			return 0, err
		}
		for _, m := range members {
			n, err := e.generations(ctx, m, famRel, memberRel, level+1)
			if err != nil {
				return 0, err
			}
			if n > best {
				best = n
			}
		}
	}
	return best + 1, nil
}
