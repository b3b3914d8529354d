package bridge

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/heartmarshall/lexibridge/internal/domain"
)

// Stats holds the counters of one import run.
type Stats struct {
	LinesRead               int
	EntriesMatched          int
	EntriesWithTranslations int
	// EdgesBatched counts edges handed to successful flushes. Duplicates
	// collapse in the store, so it may exceed EdgesInserted.
	EdgesBatched  int
	EdgesInserted int
	FailedBatches int
	DroppedEdges  int
	Errors        int

	ClosureRan    bool
	ClosureFailed bool
	DerivedEdges  int

	CacheSize int
	Resolver  ResolverStats
	Totals    *domain.StoreTotals
	Duration  time.Duration
}

// WriteSummary prints the end-of-run report.
func (s Stats) WriteSummary(w io.Writer, dryRun bool) error {
	var b strings.Builder

	b.WriteString("\n--- Processing Summary ---\n")
	fmt.Fprintf(&b, "Total lines read from file: %d\n", s.LinesRead)
	fmt.Fprintf(&b, "Bridge-language entries processed: %d\n", s.EntriesMatched)
	fmt.Fprintf(&b, "Entries with bridge translations: %d\n", s.EntriesWithTranslations)
	if dryRun {
		fmt.Fprintf(&b, "Translation pairs that would have been batched (DRY RUN): %d\n", s.EdgesBatched)
	} else {
		fmt.Fprintf(&b, "Translation pairs batched for DB (actual inserts may differ due to duplicates): %d\n", s.EdgesBatched)
		fmt.Fprintf(&b, "Translation rows created by batches: %d\n", s.EdgesInserted)
	}
	if s.FailedBatches > 0 {
		fmt.Fprintf(&b, "Failed batches: %d (%d pairs dropped)\n", s.FailedBatches, s.DroppedEdges)
	}
	switch {
	case !s.ClosureRan:
		b.WriteString("Direct links: skipped\n")
	case s.ClosureFailed:
		b.WriteString("Direct links: FAILED (see log)\n")
	case dryRun:
		fmt.Fprintf(&b, "Direct links that would have been created (DRY RUN): %d\n", s.DerivedEdges)
	default:
		fmt.Fprintf(&b, "Direct links created: %d\n", s.DerivedEdges)
	}
	fmt.Fprintf(&b, "Lines/items skipped or with errors: %d\n", s.Errors)
	fmt.Fprintf(&b, "Word cache size: %d\n", s.CacheSize)
	fmt.Fprintf(&b, "Words created: %d (store conflicts recovered: %d)\n", s.Resolver.Created, s.Resolver.Conflicts)
	if s.Totals != nil && !dryRun {
		fmt.Fprintf(&b, "Store totals: %d words, %d translations\n", s.Totals.Words, s.Totals.Edges)
	}
	fmt.Fprintf(&b, "Elapsed: %s\n", s.Duration.Round(time.Millisecond))
	b.WriteString("--------------------------\n")

	_, err := io.WriteString(w, b.String())
	return err
}
