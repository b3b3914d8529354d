package sqlite

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/lexibridge/internal/app/bridge"
	"github.com/heartmarshall/lexibridge/internal/domain"
	"github.com/heartmarshall/lexibridge/migrations"
)

// setupTestDB migrates a fresh database file and reopens it the way the
// importer does.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "lexicon.db") + "?_foreign_keys=on"

	migrateDB, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	provider, err := goose.NewProvider(goose.DialectSQLite3, migrateDB, migrations.SQLite())
	require.NoError(t, err)
	_, err = provider.Up(ctx)
	require.NoError(t, err)
	require.NoError(t, migrateDB.Close())

	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedWord(t *testing.T, s *Store, text string, lang domain.LangCode) int64 {
	t.Helper()
	id, err := s.InsertWord(context.Background(), text, lang)
	require.NoError(t, err)
	return id
}

func TestStore_WordLifecycle(t *testing.T) {
	t.Parallel()
	s := New(setupTestDB(t))
	ctx := context.Background()

	_, err := s.FindWordID(ctx, "haus", "de")
	require.ErrorIs(t, err, domain.ErrNotFound)

	id := seedWord(t, s, "haus", "de")

	_, err = s.InsertWord(ctx, "haus", "de")
	require.ErrorIs(t, err, domain.ErrAlreadyExists)

	got, err := s.FindWordID(ctx, "haus", "de")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	other := seedWord(t, s, "haus", "en")
	assert.NotEqual(t, id, other)
}

func TestStore_InsertEdges(t *testing.T) {
	t.Parallel()
	s := New(setupTestDB(t))
	ctx := context.Background()

	a := seedWord(t, s, "house", "en")
	b := seedWord(t, s, "haus", "de")
	edges := []domain.Edge{{SourceID: b, TargetID: a}, {SourceID: b, TargetID: a}, {SourceID: a, TargetID: b}}

	n, err := s.InsertEdges(ctx, edges)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.InsertEdges(ctx, edges)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.InsertEdges(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_InsertEdges_AllOrNothing(t *testing.T) {
	t.Parallel()
	s := New(setupTestDB(t))
	ctx := context.Background()

	a := seedWord(t, s, "house", "en")
	b := seedWord(t, s, "haus", "de")

	_, err := s.InsertEdges(ctx, []domain.Edge{{SourceID: b, TargetID: a}, {SourceID: b, TargetID: 999}})
	require.ErrorIs(t, err, domain.ErrNotFound)

	totals, err := s.Totals(ctx)
	require.NoError(t, err)
	assert.Zero(t, totals.Edges, "failed batch must leave no edges")
}

func TestStore_DeriveBridgeEdges(t *testing.T) {
	t.Parallel()
	s := New(setupTestDB(t))
	ctx := context.Background()
	path := domain.BridgePath{Source: "de", Bridge: "en", Target: "fa"}

	de := seedWord(t, s, "haus", "de")
	en := seedWord(t, s, "house", "en")
	fa := seedWord(t, s, "خانه", "fa")
	home := seedWord(t, s, "home", "en")
	ru := seedWord(t, s, "дом", "ru")
	_, err := s.InsertEdges(ctx, []domain.Edge{
		{SourceID: de, TargetID: en},
		{SourceID: en, TargetID: fa},
		{SourceID: de, TargetID: home},
		{SourceID: home, TargetID: ru},
	})
	require.NoError(t, err)

	n, err := s.DeriveBridgeEdges(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.DeriveBridgeEdges(ctx, path)
	require.NoError(t, err)
	assert.Zero(t, n)

	totals, err := s.Totals(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, totals.Words)
	assert.EqualValues(t, 5, totals.Edges)
}

func TestSession_OnSQLite(t *testing.T) {
	t.Parallel()
	s := New(setupTestDB(t))
	ctx := context.Background()

	cfg := bridge.Config{SourceLang: "de", BridgeLang: "en", TargetLang: "fa", BatchSize: 1}
	session, err := bridge.NewSession(slog.New(slog.NewTextHandler(io.Discard, nil)), s, nil, cfg)
	require.NoError(t, err)

	input := strings.Join([]string{
		`{"word":"house","lang_code":"en","translations":[{"code":"de","word":"Haus"},{"code":"fa","word":"خانه"}]}`,
		`{"word":"House","lang_code":"en","translations":[{"code":"de","word":"HAUS"}]}`,
	}, "\n")
	stats, err := session.Run(ctx, bufio.NewScanner(strings.NewReader(input)))
	require.NoError(t, err)

	assert.Equal(t, 3, stats.EdgesBatched)
	assert.Equal(t, 2, stats.EdgesInserted)
	assert.Equal(t, 1, stats.DerivedEdges)
	require.NotNil(t, stats.Totals)
	assert.EqualValues(t, 3, stats.Totals.Words)
	assert.EqualValues(t, 3, stats.Totals.Edges)
}
