package bridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/lexibridge/internal/domain"
)

// Closure derives direct Source->Target edges through the bridge language.
// It must run after every direct edge of the input has been flushed.
type Closure struct {
	store EdgeStore
	path  domain.BridgePath
	log   *slog.Logger
}

// NewClosure creates a Closure for path.
func NewClosure(log *slog.Logger, store EdgeStore, path domain.BridgePath) *Closure {
	return &Closure{store: store, path: path, log: log}
}

// Derive runs the set-based derivation once and returns the number of new
// edges. On error nothing from this step is kept.
func (c *Closure) Derive(ctx context.Context) (int, error) {
	c.log.Info("creating direct links via bridge language", slog.String("path", c.path.String()))

	created, err := c.store.DeriveBridgeEdges(ctx, c.path)
	if err != nil {
		return 0, fmt.Errorf("derive %s links: %w", c.path, err)
	}

	c.log.Info("direct links created",
		slog.String("path", c.path.String()),
		slog.Int("created", created),
	)
	return created, nil
}
