package bridge

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/lexibridge/internal/adapter/memory"
	"github.com/heartmarshall/lexibridge/internal/domain"
)

func newTestResolver(t *testing.T, store WordStore, cacheSize int) *Resolver {
	t.Helper()
	cache, err := NewCache(cacheSize)
	require.NoError(t, err)
	return NewResolver(testLogger(), store, cache)
}

func TestResolver_CreatesThenCaches(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newSpyStore()
	r := newTestResolver(t, store, 0)

	id, err := r.Resolve(ctx, "Haus", "de")
	require.NoError(t, err)

	finds, inserts := store.calls()
	assert.Equal(t, 1, finds)
	assert.Equal(t, 1, inserts)

	again, err := r.Resolve(ctx, "Haus", "de")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	finds, inserts = store.calls()
	assert.Equal(t, 1, finds, "cached identity must not query the store")
	assert.Equal(t, 1, inserts)

	st := r.Stats()
	assert.Equal(t, 1, st.Created)
	assert.Equal(t, 1, st.CacheHits)
	assert.Equal(t, 1, r.CacheLen())
}

func TestResolver_NormalizesBeforeLookup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestResolver(t, newSpyStore(), 0)

	a, err := r.Resolve(ctx, "  Haus ", "de")
	require.NoError(t, err)
	b, err := r.Resolve(ctx, "HAUS", "de")
	require.NoError(t, err)
	c, err := r.Resolve(ctx, "haus", "en")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c, "same text in another language is a different word")
}

func TestResolver_FindsExistingWord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newSpyStore()
	existing, err := store.Store.InsertWord(ctx, "house", "en")
	require.NoError(t, err)

	r := newTestResolver(t, store, 0)
	id, err := r.Resolve(ctx, "House", "en")
	require.NoError(t, err)

	assert.Equal(t, existing, id)
	_, inserts := store.calls()
	assert.Zero(t, inserts)
}

func TestResolver_EmptyText(t *testing.T) {
	t.Parallel()
	store := newSpyStore()
	r := newTestResolver(t, store, 0)

	_, err := r.Resolve(context.Background(), "   ", "de")

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.ErrorIs(t, err, domain.ErrValidation)
	finds, _ := store.calls()
	assert.Zero(t, finds)
}

func TestResolver_RecoversFromConflict(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &lateWriterStore{Store: memory.New()}
	r := newTestResolver(t, store, 0)

	id, err := r.Resolve(ctx, "Wasser", "de")
	require.NoError(t, err)

	stored, err := store.Store.FindWordID(ctx, "wasser", "de")
	require.NoError(t, err)
	assert.Equal(t, stored, id)
	assert.Equal(t, 1, r.Stats().Conflicts)
	assert.Equal(t, 0, r.Stats().Created)
}

func TestResolver_InconsistentStateAfterConflict(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t, phantomStore{}, 0)

	_, err := r.Resolve(context.Background(), "ghost", "en")

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.ErrorIs(t, err, domain.ErrInconsistentState)
	assert.Equal(t, "ghost", resErr.Text)
	assert.Zero(t, r.CacheLen())
}

func TestResolver_StoreErrorsAreNotCached(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newSpyStore()
	store.findErr = errStoreDown
	r := newTestResolver(t, store, 0)

	_, err := r.Resolve(ctx, "house", "en")
	require.ErrorIs(t, err, errStoreDown)
	assert.False(t, errors.Is(err, domain.ErrNotFound))

	store.findErr = nil
	store.insertErr = errStoreDown
	_, err = r.Resolve(ctx, "house", "en")
	require.ErrorIs(t, err, errStoreDown)
	assert.Zero(t, r.CacheLen())

	store.insertErr = nil
	_, err = r.Resolve(ctx, "house", "en")
	require.NoError(t, err)
}

func TestResolver_BoundedCacheKeepsIdentities(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newSpyStore()
	r := newTestResolver(t, store, 2)

	first := make(map[string]int64)
	for _, w := range []string{"a", "b", "c", "d"} {
		id, err := r.Resolve(ctx, w, "en")
		require.NoError(t, err)
		first[w] = id
	}
	assert.Equal(t, 2, r.CacheLen())

	for _, w := range []string{"a", "b", "c", "d"} {
		id, err := r.Resolve(ctx, w, "en")
		require.NoError(t, err)
		assert.Equal(t, first[w], id, "identity of %q changed after eviction", w)
	}
}

// Independent importers share only the store; the unique constraint decides
// which insert wins and every resolver converges on the same identity.
func TestResolver_ConcurrentImporters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.New()

	const workers = 8
	words := make([]string, 50)
	for i := range words {
		words[i] = fmt.Sprintf("word-%d", i)
	}

	resolvers := make([]*Resolver, workers)
	for w := range workers {
		resolvers[w] = newTestResolver(t, store, 0)
	}

	results := make([]map[string]int64, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := range workers {
		g.Go(func() error {
			r := resolvers[w]
			got := make(map[string]int64, len(words))
			for _, word := range words {
				id, err := r.Resolve(gctx, word, "en")
				if err != nil {
					return err
				}
				got[word] = id
			}
			results[w] = got
			return nil
		})
	}
	require.NoError(t, g.Wait())

	totals, err := store.Totals(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, len(words), totals.Words)

	for _, word := range words {
		want, err := store.FindWordID(ctx, word, "en")
		require.NoError(t, err)
		for w := range workers {
			assert.Equal(t, want, results[w][word])
		}
	}
}
