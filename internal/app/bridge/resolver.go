package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/lexibridge/internal/domain"
)

// ResolutionError reports a word that could not be mapped to an identity.
// The caller skips the word and continues the run.
type ResolutionError struct {
	Text string
	Lang domain.LangCode
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s:%q: %v", e.Lang, e.Text, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// ResolverStats counts store traffic caused by resolution.
type ResolverStats struct {
	CacheHits int
	Lookups   int
	Created   int
	Conflicts int
}

// Resolver assigns a stable identity to each (text, language) pair.
// It is not safe for concurrent use; run one Resolver per goroutine and let
// the store's unique constraint arbitrate between them.
type Resolver struct {
	store WordStore
	cache Cache
	log   *slog.Logger
	stats ResolverStats
}

// NewResolver creates a Resolver backed by store and cache.
func NewResolver(log *slog.Logger, store WordStore, cache Cache) *Resolver {
	return &Resolver{store: store, cache: cache, log: log}
}

// Stats returns resolution counters.
func (r *Resolver) Stats() ResolverStats { return r.stats }

// CacheLen returns the number of cached identities.
func (r *Resolver) CacheLen() int { return r.cache.Len() }

// Resolve returns the identity for text in lang, creating the word on first
// sight. Every error it returns is a *ResolutionError.
func (r *Resolver) Resolve(ctx context.Context, text string, lang domain.LangCode) (int64, error) {
	key := domain.NewWordKey(text, lang)
	if key.Text == "" {
		return 0, &ResolutionError{Text: text, Lang: lang, Err: fmt.Errorf("%w: empty word", domain.ErrValidation)}
	}

	if id, ok := r.cache.Get(key); ok {
		r.stats.CacheHits++
		return id, nil
	}

	r.stats.Lookups++
	id, err := r.store.FindWordID(ctx, key.Text, key.Lang)
	switch {
	case err == nil:
		r.cache.Add(key, id)
		return id, nil
	case !errors.Is(err, domain.ErrNotFound):
		return 0, &ResolutionError{Text: key.Text, Lang: lang, Err: err}
	}

	id, err = r.store.InsertWord(ctx, key.Text, key.Lang)
	switch {
	case err == nil:
		r.stats.Created++
		r.cache.Add(key, id)
		return id, nil
	case !errors.Is(err, domain.ErrAlreadyExists):
		return 0, &ResolutionError{Text: key.Text, Lang: lang, Err: err}
	}

	// Someone else created the pair between our lookup and insert.
	r.stats.Conflicts++
	r.log.Debug("word insert conflict, re-reading",
		slog.String("word", key.Text),
		slog.String("lang", string(lang)),
	)

	id, err = r.store.FindWordID(ctx, key.Text, key.Lang)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = fmt.Errorf("%w: unique violation but word is missing on re-read", domain.ErrInconsistentState)
		}
		resErr := &ResolutionError{Text: key.Text, Lang: lang, Err: err}
		r.log.Error("word resolution failed after conflict",
			slog.String("word", key.Text),
			slog.String("lang", string(lang)),
			slog.String("error", err.Error()),
		)
		return 0, resErr
	}

	r.cache.Add(key, id)
	return id, nil
}
