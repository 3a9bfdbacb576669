package cart

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/gedcart/internal/graph"
	"github.com/rcliao/gedcart/internal/model"
)

var kinds = map[string]model.RecordKind{
	"I1": model.KindIndividual,
	"I2": model.KindIndividual,
	"F1": model.KindFamily,
	"S1": model.KindSource,
}

func classify(ctx context.Context, id string) (model.RecordKind, error) {
	if k, ok := kinds[id]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: %s", graph.ErrNotFound, id)
}

func newTestCart(t *testing.T, ids ...string) *Cart {
	t.Helper()
	c := New(NewMemorySession())
	for _, id := range ids {
		_, err := c.Add(context.Background(), "main", id)
		require.NoError(t, err)
	}
	return c
}

func TestAddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(t)

	added, err := c.Add(ctx, "main", "I1")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = c.Add(ctx, "main", "I1")
	require.NoError(t, err)
	assert.False(t, added)

	members, err := c.Members(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"I1"}, members)
}

func TestTreesAreSeparate(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(t, "I1")

	ok, err := c.Contains(ctx, "other", "I1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.Contains(ctx, "main", "I1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(t, "I1", "I2", "F1")

	require.NoError(t, c.Remove(ctx, "main", "I2"))
	require.NoError(t, c.Remove(ctx, "main", "missing"))
	members, err := c.Members(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"F1", "I1"}, members)

	require.NoError(t, c.Clear(ctx, "main"))
	members, err = c.Members(ctx, "main")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestCountByKindSkipsMissing(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(t, "I1", "I2", "F1", "S1", "deleted")

	counts, err := c.CountByKind(ctx, "main", classify)
	require.NoError(t, err)
	assert.Equal(t, map[model.RecordKind]int{
		model.KindIndividual: 2,
		model.KindFamily:     1,
		model.KindSource:     1,
	}, counts)
}

func TestRemoveKind(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(t, "I1", "I2", "F1", "deleted")

	n, err := c.RemoveKind(ctx, "main", model.KindIndividual, classify)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	members, err := c.Members(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"F1", "deleted"}, members)
}

func TestClassifierErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(t, "I1")
	boom := errors.New("boom")

	_, err := c.CountByKind(ctx, "main", func(context.Context, string) (model.RecordKind, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestPersistedShape(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySession()
	c := New(s)
	_, err := c.Add(ctx, "main", "I1")
	require.NoError(t, err)

	raw, ok, err := s.Get(ctx, Key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"main":{"I1":true}}`, string(raw))
}
