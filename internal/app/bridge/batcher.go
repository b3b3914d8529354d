package bridge

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/lexibridge/internal/domain"
)

// Batcher accumulates directed edges and writes them in bounded batches.
// A failed batch is logged and dropped, never retried.
type Batcher struct {
	store    EdgeStore
	log      *slog.Logger
	stats    *Stats
	capacity int
	pending  []domain.Edge
}

// NewBatcher creates a Batcher that flushes every capacity edges and
// records outcomes in stats.
func NewBatcher(log *slog.Logger, store EdgeStore, capacity int, stats *Stats) *Batcher {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Batcher{
		store:    store,
		log:      log,
		stats:    stats,
		capacity: capacity,
		pending:  make([]domain.Edge, 0, capacity),
	}
}

// Len returns the number of pending edges.
func (b *Batcher) Len() int { return len(b.pending) }

// Add queues the edge from -> to and flushes once the batch is full.
func (b *Batcher) Add(ctx context.Context, from, to int64) {
	b.pending = append(b.pending, domain.Edge{SourceID: from, TargetID: to})
	if len(b.pending) >= b.capacity {
		b.Flush(ctx)
	}
}

// Flush writes all pending edges in one transaction. The pending batch is
// empty afterwards whatever the outcome.
func (b *Batcher) Flush(ctx context.Context) {
	if len(b.pending) == 0 {
		return
	}
	defer func() { b.pending = b.pending[:0] }()

	n := len(b.pending)
	inserted, err := b.store.InsertEdges(ctx, b.pending)
	if err != nil {
		b.stats.FailedBatches++
		b.stats.DroppedEdges += n
		b.log.Error("batch insert failed",
			slog.Int("pairs", n),
			slog.String("error", err.Error()),
		)
		return
	}

	b.stats.EdgesBatched += n
	b.stats.EdgesInserted += inserted
	b.log.Debug("flushed batch", slog.Int("pairs", n), slog.Int("inserted", inserted))
}
