package ctxutil

import (
	"context"
)

type ctxKey string

const runIDKey ctxKey = "run_id"

// WithRunID stores the import run ID in the context.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromCtx extracts the run ID from the context.
// Returns an empty string if absent.
func RunIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}
