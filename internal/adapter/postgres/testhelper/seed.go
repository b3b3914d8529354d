package testhelper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/lexibridge/internal/domain"
)

// UniqueLang returns a language code no other test uses. Tests share one
// database, and every store query is scoped by language, so distinct codes
// keep parallel tests apart.
func UniqueLang(t *testing.T) domain.LangCode {
	t.Helper()
	return domain.LangCode("t" + uuid.New().String()[:8])
}

// SeedWord inserts a word and returns its ID.
func SeedWord(t *testing.T, pool *pgxpool.Pool, text string, lang domain.LangCode) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO words (word_text, lang_code) VALUES ($1, $2) RETURNING id`,
		text, string(lang),
	).Scan(&id)
	if err != nil {
		t.Fatalf("testhelper: SeedWord(%q, %s): %v", text, lang, err)
	}
	return id
}

// SeedEdge inserts the translation edge from -> to.
func SeedEdge(t *testing.T, pool *pgxpool.Pool, from, to int64) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO translations (source_id, target_id) VALUES ($1, $2)`, from, to)
	if err != nil {
		t.Fatalf("testhelper: SeedEdge(%d, %d): %v", from, to, err)
	}
}

// EdgeExists reports whether the edge from -> to is stored.
func EdgeExists(t *testing.T, pool *pgxpool.Pool, from, to int64) bool {
	t.Helper()

	var exists bool
	err := pool.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM translations WHERE source_id = $1 AND target_id = $2)`,
		from, to,
	).Scan(&exists)
	if err != nil {
		t.Fatalf("testhelper: EdgeExists: %v", err)
	}
	return exists
}
