// Package bridge builds a bridged translation graph from wiktextract dumps:
// it resolves words to durable identities, batches directed translation
// edges, and derives source->target edges through the bridge language.
package bridge

import (
	"context"

	"github.com/heartmarshall/lexibridge/internal/domain"
)

// WordStore is the durable word registry consumed by Resolver.
// Text passed in is already normalized.
type WordStore interface {
	// FindWordID returns domain.ErrNotFound when no such word exists.
	FindWordID(ctx context.Context, text string, lang domain.LangCode) (int64, error)
	// InsertWord returns domain.ErrAlreadyExists when the (text, lang) pair
	// was created by someone else first.
	InsertWord(ctx context.Context, text string, lang domain.LangCode) (int64, error)
}

// EdgeStore is the durable edge relation consumed by Batcher and Closure.
// Both methods run in a single transaction and ignore duplicate edges.
type EdgeStore interface {
	// InsertEdges returns the number of rows actually created. It must not
	// retain edges after returning.
	InsertEdges(ctx context.Context, edges []domain.Edge) (int, error)
	// DeriveBridgeEdges inserts Source->Target edges for every matching
	// Source->Bridge, Bridge->Target chain and returns the number created.
	DeriveBridgeEdges(ctx context.Context, path domain.BridgePath) (int, error)
}

// Store is the full persistence contract of an import run.
// Implemented by postgres/lexicon.Repo, sqlite.Store and memory.Store.
type Store interface {
	WordStore
	EdgeStore
	Totals(ctx context.Context) (domain.StoreTotals, error)
}
