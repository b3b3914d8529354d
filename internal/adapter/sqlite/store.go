package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"github.com/heartmarshall/lexibridge/internal/domain"
)

// maxEdgesPerStatement keeps one INSERT under SQLite's bound variable limit.
const maxEdgesPerStatement = 10000

var sq = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// Store provides word and translation persistence backed by SQLite.
type Store struct {
	db *sql.DB
}

// New creates a Store on an open database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// FindWordID returns the ID of the word, or domain.ErrNotFound.
func (s *Store) FindWordID(ctx context.Context, text string, lang domain.LangCode) (int64, error) {
	query, args, err := sq.Select("id").
		From("words").
		Where(squirrel.Eq{"word_text": text}).
		Where(squirrel.Eq{"lang_code": string(lang)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build find word query: %w", err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, mapError(err, "word", wordKey(text, lang))
	}
	return id, nil
}

// InsertWord creates the word and returns its ID, or domain.ErrAlreadyExists.
func (s *Store) InsertWord(ctx context.Context, text string, lang domain.LangCode) (int64, error) {
	query, args, err := sq.Insert("words").
		Columns("word_text", "lang_code").
		Values(text, string(lang)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert word query: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err, "word", wordKey(text, lang))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("word %s: last insert id: %w", wordKey(text, lang), err)
	}
	return id, nil
}

// InsertEdges inserts all edges in one transaction, ignoring existing pairs.
// Returns the number of actually inserted rows.
func (s *Store) InsertEdges(ctx context.Context, edges []domain.Edge) (int, error) {
	if len(edges) == 0 {
		return 0, nil
	}

	var inserted int
	err := s.runInTx(ctx, func(tx *sql.Tx) error {
		for chunk := range slices.Chunk(edges, maxEdgesPerStatement) {
			ins := sq.Insert("translations").
				Options("OR IGNORE").
				Columns("source_id", "target_id")
			for _, e := range chunk {
				ins = ins.Values(e.SourceID, e.TargetID)
			}

			query, args, err := ins.ToSql()
			if err != nil {
				return fmt.Errorf("build insert translations query: %w", err)
			}

			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return mapError(err, "translations", fmt.Sprintf("batch of %d", len(chunk)))
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("translations: rows affected: %w", err)
			}
			inserted += int(n)
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
func (s *Store) DeriveBridgeEdges(ctx context.Context, path domain.BridgePath) (int, error) {
	chains := sq.Select("DISTINCT s.id", "t.id").
		From("translations se").
		Join("words s ON s.id = se.source_id").
		Join("words b ON b.id = se.target_id").
		Join("translations bt ON bt.source_id = b.id").
		Join("words t ON t.id = bt.target_id").
		Where(squirrel.Eq{"s.lang_code": string(path.Source)}).
		Where(squirrel.Eq{"b.lang_code": string(path.Bridge)}).
		Where(squirrel.Eq{"t.lang_code": string(path.Target)})

	query, args, err := sq.Insert("translations").
		Options("OR IGNORE").
		Columns("source_id", "target_id").
		Select(chains).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build derive query: %w", err)
	}

	var created int
	err = s.runInTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return mapError(err, "translations", path.String())
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("translations: rows affected: %w", err)
		}
		created = int(n)
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
func (s *Store) Totals(ctx context.Context) (domain.StoreTotals, error) {
	query, args, err := sq.Select(
		"(SELECT count(*) FROM words) AS words",
		"(SELECT count(*) FROM translations) AS edges",
	).ToSql()
	if err != nil {
		return domain.StoreTotals{}, fmt.Errorf("build totals query: %w", err)
	}

	var row totalsRow
	if err := sqlscan.Get(ctx, s.db, &row, query, args...); err != nil {
		return domain.StoreTotals{}, fmt.Errorf("count rows: %w", err)
	}
	return domain.StoreTotals{Words: row.Words, Edges: row.Edges}, nil
}

// runInTx commits when fn succeeds and rolls back on error or panic.
func (s *Store) runInTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func wordKey(text string, lang domain.LangCode) string {
	return domain.WordKey{Text: text, Lang: lang}.String()
}
