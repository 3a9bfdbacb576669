package graph

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/gedcart/internal/model"
)

const tree = `0 @I1@ INDI
1 NAME Anna /Berg/
1 FAMS @F1@
0 @I2@ INDI
1 NAME Karl /Berg/
1 RESN confidential
1 FAMS @F1@
0 @F1@ FAM
1 WIFE @I1@
1 HUSB @I2@
1 CHIL @I7@
1 OBJE @M1@
0 @M1@ OBJE
1 FILE scan.png
`

func newTestGraph(t *testing.T) *Memory {
	t.Helper()
	g, err := LoadMemory(strings.NewReader(tree))
	require.NoError(t, err)
	return g
}

func TestMemoryRelatives(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)

	spouses, err := g.Relatives(ctx, "F1", model.RelSpouse)
	require.NoError(t, err)
	assert.Equal(t, []string{"I2", "I1"}, spouses, "husband first, then wife")

	children, err := g.Relatives(ctx, "F1", model.RelChild)
	require.NoError(t, err)
	assert.Empty(t, children)

	media, err := g.Relatives(ctx, "F1", model.RelMedia)
	require.NoError(t, err)
	assert.Equal(t, []string{"M1"}, media)
}

func TestMemoryNotFound(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)

	_, err := g.KindOf(ctx, "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = g.PrivatizedText(ctx, "nope", model.TierHidden)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryVisibility(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)

	ok, err := g.CanView(ctx, "I2", model.TierVisitor)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = g.CanView(ctx, "I2", model.TierFullAdmin)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryIDsInDocumentOrder(t *testing.T) {
	ids, err := newTestGraph(t).IDs(context.Background(), model.KindIndividual)
	require.NoError(t, err)
	assert.Equal(t, []string{"I1", "I2"}, ids)
}

func TestNewMemoryReplacesDuplicates(t *testing.T) {
	g := NewMemory([]model.Record{
		{ID: "I1", Kind: model.KindIndividual, SortName: "old"},
		{ID: "I2", Kind: model.KindIndividual},
		{ID: "I1", Kind: model.KindIndividual, SortName: "new"},
	})
	name, err := g.SortName(context.Background(), "I1")
	require.NoError(t, err)
	assert.Equal(t, "new", name)

	ids, _ := g.IDs(context.Background(), model.KindIndividual)
	assert.Equal(t, []string{"I1", "I2"}, ids)
}
