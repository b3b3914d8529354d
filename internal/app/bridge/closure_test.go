package bridge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/lexibridge/internal/domain"
)

func TestClosure_Derive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newSpyStore()
	path := domain.BridgePath{Source: "de", Bridge: "en", Target: "fa"}

	de, _ := store.Store.InsertWord(ctx, "haus", "de")
	en, _ := store.Store.InsertWord(ctx, "house", "en")
	fa, _ := store.Store.InsertWord(ctx, "خانه", "fa")
	_, err := store.Store.InsertEdges(ctx, []domain.Edge{{SourceID: de, TargetID: en}, {SourceID: en, TargetID: fa}})
	require.NoError(t, err)

	c := NewClosure(testLogger(), store, path)

	created, err := c.Derive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.True(t, store.HasEdge(de, fa))

	created, err = c.Derive(ctx)
	require.NoError(t, err)
	assert.Zero(t, created, "second derive must not add edges")
}

func TestClosure_DeriveError(t *testing.T) {
	t.Parallel()
	store := newSpyStore()
	store.deriveErr = errStoreDown
	c := NewClosure(testLogger(), store, domain.BridgePath{Source: "de", Bridge: "en", Target: "fa"})

	created, err := c.Derive(context.Background())

	require.ErrorIs(t, err, errStoreDown)
	assert.Contains(t, err.Error(), "de->en->fa")
	assert.Zero(t, created)
}
