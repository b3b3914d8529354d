// Package lexicon implements the word and translation store on PostgreSQL.
// Words are unique per (word_text, lang_code); translations are directed
// word pairs, unique per (source_id, target_id).
package lexicon

import (
	"context"
	"fmt"
	"slices"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/heartmarshall/lexibridge/internal/adapter/postgres"
	"github.com/heartmarshall/lexibridge/internal/domain"
)

// maxEdgesPerStatement keeps one INSERT under PostgreSQL's 65535 bind
// parameter limit.
const maxEdgesPerStatement = 10000

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repo provides word and translation persistence backed by PostgreSQL.
type Repo struct {
	db  postgres.DB
	txm *postgres.TxManager
}

// New creates a new lexicon repository.
func New(db postgres.DB, txm *postgres.TxManager) *Repo {
	return &Repo{db: db, txm: txm}
}

// FindWordID returns the ID of the word, or domain.ErrNotFound.
func (r *Repo) FindWordID(ctx context.Context, text string, lang domain.LangCode) (int64, error) {
	query, args, err := psql.Select("id").
		From("words").
		Where(squirrel.Eq{"word_text": text}).
		Where(squirrel.Eq{"lang_code": string(lang)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build find word query: %w", err)
	}

	var id int64
	if err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, postgres.MapError(err, "word", wordKey(text, lang))
	}
	return id, nil
}

// InsertWord creates the word and returns its ID. A concurrent creator
// surfaces as domain.ErrAlreadyExists.
func (r *Repo) InsertWord(ctx context.Context, text string, lang domain.LangCode) (int64, error) {
	query, args, err := psql.Insert("words").
		Columns("word_text", "lang_code").
		Values(text, string(lang)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert word query: %w", err)
	}

	var id int64
	if err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, postgres.MapError(err, "word", wordKey(text, lang))
	}
	return id, nil
}

// InsertEdges inserts all edges in one transaction, skipping pairs that
// already exist. Returns the number of actually inserted rows.
func (r *Repo) InsertEdges(ctx context.Context, edges []domain.Edge) (int, error) {
	if len(edges) == 0 {
		return 0, nil
	}

	var inserted int
	err := r.txm.RunInTx(ctx, func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, r.db)
		for chunk := range slices.Chunk(edges, maxEdgesPerStatement) {
			ins := psql.Insert("translations").
				Columns("source_id", "target_id").
				Suffix("ON CONFLICT (source_id, target_id) DO NOTHING")
			for _, e := range chunk {
				ins = ins.Values(e.SourceID, e.TargetID)
			}

			query, args, err := ins.ToSql()
			if err != nil {
				return fmt.Errorf("build insert translations query: %w", err)
			}

			tag, err := q.Exec(ctx, query, args...)
			if err != nil {
				return postgres.MapError(err, "translations", fmt.Sprintf("batch of %d", len(chunk)))
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}

// DeriveBridgeEdges inserts path.Source -> path.Target edges for every
// Source -> Bridge -> Target chain in a single statement and transaction.
func (r *Repo) DeriveBridgeEdges(ctx context.Context, path domain.BridgePath) (int, error) {
	chains := psql.Select("DISTINCT s.id", "t.id").
		From("translations se").
		Join("words s ON s.id = se.source_id").
		Join("words b ON b.id = se.target_id").
		Join("translations bt ON bt.source_id = b.id").
		Join("words t ON t.id = bt.target_id").
		Where(squirrel.Eq{"s.lang_code": string(path.Source)}).
		Where(squirrel.Eq{"b.lang_code": string(path.Bridge)}).
		Where(squirrel.Eq{"t.lang_code": string(path.Target)})

	query, args, err := psql.Insert("translations").
		Columns("source_id", "target_id").
		Select(chains).
		Suffix("ON CONFLICT (source_id, target_id) DO NOTHING").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build derive query: %w", err)
	}

	var created int
	err = r.txm.RunInTx(ctx, func(ctx context.Context) error {
		tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
		if err != nil {
			return postgres.MapError(err, "translations", path.String())
		}
		created = int(tag.RowsAffected())
		return nil
	})
	if err != nil {
		return 0, err
	}

	return created, nil
}

type totalsRow struct {
	Words int64 `db:"words"`
	Edges int64 `db:"edges"`
}

// Totals returns row counts of both relations.
func (r *Repo) Totals(ctx context.Context) (domain.StoreTotals, error) {
	query, args, err := psql.Select(
		"(SELECT count(*) FROM words) AS words",
		"(SELECT count(*) FROM translations) AS edges",
	).ToSql()
	if err != nil {
		return domain.StoreTotals{}, fmt.Errorf("build totals query: %w", err)
	}

	var row totalsRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, query, args...); err != nil {
		return domain.StoreTotals{}, fmt.Errorf("count rows: %w", err)
	}
	return domain.StoreTotals{Words: row.Words, Edges: row.Edges}, nil
}

func wordKey(text string, lang domain.LangCode) string {
	return domain.WordKey{Text: text, Lang: lang}.String()
}
