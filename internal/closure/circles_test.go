package closure

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/gedcart/internal/model"
)

func replaceOnce(s, old, new string) string {
	return strings.Replace(s, old, new, 1)
}

func edges(pairs ...string) RelationGraph {
	g := make(RelationGraph)
	for _, p := range pairs {
		ab := strings.Split(p, "-")
		g.Connect(ab[0], ab[1])
	}
	return g
}

// naivePeel repeats full passes until the vertex count stops changing.
func naivePeel(g RelationGraph) []string {
	for {
		n := len(g)
		for id, nb := range g {
			if len(nb) <= 1 {
				for other := range nb {
					delete(g[other], id)
				}
				delete(g, id)
			}
		}
		if len(g) == n {
			break
		}
	}
	ids := make([]string, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func TestPeelPathIsEmpty(t *testing.T) {
	assert.Empty(t, Peel(edges("a-b", "b-c", "c-d", "d-e")))
}

func TestPeelCycleWithPendant(t *testing.T) {
	g := edges("a-b", "b-c", "c-d", "d-a", "d-p")
	assert.Equal(t, []string{"a", "b", "c", "d"}, Peel(g))
}

func TestPeelIgnoresSelfLoopsAndIsolated(t *testing.T) {
	g := edges("a-a", "b-c")
	g.Connect("z", "z")
	assert.Empty(t, Peel(g))
}

func TestPeelMatchesRepeatedPasses(t *testing.T) {
	graphs := []func() RelationGraph{
		func() RelationGraph { return edges("a-b", "b-c", "c-a", "c-d", "d-e", "e-f", "f-d", "f-g", "g-h") },
		func() RelationGraph { return edges("a-b", "b-c", "c-d", "d-e", "e-a", "a-c", "x-y", "y-z") },
		func() RelationGraph { return edges("a-b", "b-c", "c-a", "c-d", "d-e", "e-f", "f-g") },
		func() RelationGraph { return edges("r-a", "r-b", "r-c", "a-a1", "b-b1", "c-c1", "c1-c2") },
		func() RelationGraph { return edges("a-b", "b-c", "c-d", "d-a", "b-d", "d-e", "e-f", "f-d") },
	}
	for i, build := range graphs {
		want := naivePeel(build())
		assert.Equal(t, want, Peel(build()), "graph %d", i)
	}
}

// twice: I1 and I2 married twice, which closes a loop through F1 and F2.
// I3 hangs off F1; I4 and I5 only alias each other.
const twice = `0 @I1@ INDI
1 FAMS @F1@
1 FAMS @F2@
0 @I2@ INDI
1 FAMS @F1@
1 FAMS @F2@
0 @I3@ INDI
1 FAMC @F1@
0 @I4@ INDI
1 ALIA @I5@
0 @I5@ INDI
1 ALIA @I4@
0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I2@
1 CHIL @I3@
1 NOTE @N1@
0 @F2@ FAM
1 HUSB @I1@
1 WIFE @I2@
0 @N1@ NOTE First marriage
`

func TestCircles(t *testing.T) {
	e, _ := newTestEngine(t, twice, model.TierVisitor)

	ids, err := e.Circles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"F1", "F2", "I1", "I2"}, ids)
}

func TestAddAllCircles(t *testing.T) {
	e, c := newTestEngine(t, twice, model.TierVisitor)

	added, err := e.Apply(context.Background(), model.Request{Rule: model.RuleAllCircles})
	require.NoError(t, err)
	assert.Equal(t, []string{"F1", "F2", "I1", "I2", "N1"}, members(t, c))
	assert.Equal(t, 5, added)
}

func TestAddAllCirclesRespectsVisibility(t *testing.T) {
	ged := replaceOnce(twice, "0 @F2@ FAM\n", "0 @F2@ FAM\n1 RESN privacy\n")

	e, c := newTestEngine(t, ged, model.TierVisitor)
	_, err := e.Apply(context.Background(), model.Request{Rule: model.RuleAllCircles})
	require.NoError(t, err)
	assert.Equal(t, []string{"F1", "I1", "I2", "N1"}, members(t, c))
}

func TestNoCirclesInATree(t *testing.T) {
	e, c := newTestEngine(t, ancestry, model.TierVisitor)

	_, err := e.Apply(context.Background(), model.Request{Rule: model.RuleAllCircles})
	require.NoError(t, err)
	assert.Empty(t, members(t, c))
}
