package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/heartmarshall/lexibridge/internal/app/bridge/wiktextract"
	"github.com/heartmarshall/lexibridge/internal/domain"
)

// LineSource yields raw input lines. *bufio.Scanner satisfies it.
type LineSource interface {
	Scan() bool
	Bytes() []byte
	Err() error
}

// cutLines is implemented by line sources that cut lines over a size limit
// instead of failing. The current line is then a prefix and is skipped.
type cutLines interface {
	Oversized() bool
	Limit() int
}

// Session owns the resolution cache and pending batch of one import run.
// It processes records strictly one after another.
type Session struct {
	cfg      Config
	path     domain.BridgePath
	log      *slog.Logger
	store    Store
	errs     ErrorSink
	filter   wiktextract.Filter
	resolver *Resolver
	batcher  *Batcher
	closure  *Closure
	stats    Stats
}

// NewSession wires the pipeline stages around store.
func NewSession(log *slog.Logger, store Store, errs ErrorSink, cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("import config: %w", err)
	}
	cache, err := NewCache(cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	s := &Session{
		cfg:    cfg,
		path:   cfg.Path(),
		log:    log,
		store:  store,
		errs:   errs,
		filter: wiktextract.Filter{Lang: cfg.BridgeLang},
	}
	s.resolver = NewResolver(log, store, cache)
	s.batcher = NewBatcher(log, store, cfg.BatchSize, &s.stats)
	s.closure = NewClosure(log, store, s.path)
	return s, nil
}

// Stats returns a snapshot of the run counters.
func (s *Session) Stats() Stats {
	st := s.stats
	st.CacheSize = s.resolver.CacheLen()
	st.Resolver = s.resolver.Stats()
	return st
}

// Run processes every line, flushes the last batch, derives bridge edges and
// collects store totals. Per-record and per-batch faults only touch counters;
// the returned error is set only when the input itself cannot be read, in
// which case the closure step is skipped.
func (s *Session) Run(ctx context.Context, lines LineSource) (Stats, error) {
	start := time.Now()
	s.log.Info("import started",
		slog.String("path", s.path.String()),
		slog.Int("batch_size", s.cfg.BatchSize),
		slog.Bool("dry_run", s.cfg.DryRun),
	)

	cut, _ := lines.(cutLines)
	for lines.Scan() {
		if cut != nil && cut.Oversized() {
			s.skipOversized(lines.Bytes(), cut.Limit())
		} else {
			s.ProcessLine(ctx, lines.Bytes())
		}
		if s.cfg.ProgressEvery > 0 && s.stats.LinesRead%s.cfg.ProgressEvery == 0 {
			s.log.Info("progress",
				slog.Int("lines", s.stats.LinesRead),
				slog.Int("entries", s.stats.EntriesMatched),
				slog.Int("pairs_batched", s.stats.EdgesBatched),
				slog.Int("errors", s.stats.Errors),
			)
		}
	}
	readErr := lines.Err()

	s.batcher.Flush(ctx)

	if readErr != nil {
		s.stats.Duration = time.Since(start)
		s.log.Error("input read failed, skipping direct links",
			slog.Int("lines", s.stats.LinesRead),
			slog.String("error", readErr.Error()),
		)
		return s.Stats(), fmt.Errorf("read input after line %d: %w", s.stats.LinesRead, readErr)
	}

	if !s.cfg.SkipClosure {
		s.deriveClosure(ctx)
	}

	if totals, err := s.store.Totals(ctx); err != nil {
		s.log.Warn("could not read store totals", slog.String("error", err.Error()))
	} else {
		s.stats.Totals = &totals
	}

	s.stats.Duration = time.Since(start)
	s.log.Info("import finished",
		slog.Int("lines", s.stats.LinesRead),
		slog.Int("entries", s.stats.EntriesMatched),
		slog.Int("pairs_batched", s.stats.EdgesBatched),
		slog.Int("derived", s.stats.DerivedEdges),
		slog.Int("errors", s.stats.Errors),
		slog.Duration("duration", s.stats.Duration),
	)
	return s.Stats(), nil
}

// ProcessLine handles one input line. It never fails: problems are counted,
// logged and written to the error sink.
func (s *Session) ProcessLine(ctx context.Context, line []byte) {
	s.stats.LinesRead++
	n := s.stats.LinesRead

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("unexpected error processing line",
				slog.Int("line", n),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			s.fail(n, CodeUnexpected, fmt.Sprintf("unexpected error: %v", r), line)
		}
	}()

	s.processRecord(ctx, n, line)
}

func (s *Session) skipOversized(prefix []byte, limit int) {
	s.stats.LinesRead++
	n := s.stats.LinesRead
	s.log.Warn("skipping line over size limit",
		slog.Int("line", n),
		slog.Int("limit_bytes", limit),
	)
	s.fail(n, CodeLineTooLong, fmt.Sprintf("line longer than %d bytes", limit), prefix)
}

func (s *Session) processRecord(ctx context.Context, n int, line []byte) {
	rec, err := wiktextract.Decode(line)
	if err != nil {
		s.log.Warn("skipping line due to JSON parse error", slog.Int("line", n))
		s.fail(n, CodeJSONError, "JSON parse error", line)
		return
	}

	switch s.filter.Check(&rec) {
	case wiktextract.Skip:
		return
	case wiktextract.MissingHeadword:
		s.log.Warn("skipping bridge-language entry with no word", slog.Int("line", n))
		s.fail(n, CodeNoWord, "bridge-language entry with no 'word' field", line)
		return
	}
	s.stats.EntriesMatched++

	withSenses := !s.cfg.SkipSenseTranslations
	srcWords, srcAnomalies := wiktextract.Extract(&rec, string(s.path.Source), withSenses)
	tgtWords, tgtAnomalies := wiktextract.Extract(&rec, string(s.path.Target), withSenses)
	for _, a := range append(srcAnomalies, tgtAnomalies...) {
		s.log.Warn("unexpected translation word format",
			slog.Int("line", n),
			slog.String("lang", a.Lang),
			slog.String("headword", rec.Word),
		)
		s.fail(n, CodeTransFormat,
			fmt.Sprintf("unexpected 'word' format for %s translation of %q: %s", a.Lang, rec.Word, a.Payload), nil)
	}

	if len(srcWords) == 0 && len(tgtWords) == 0 {
		return
	}
	s.stats.EntriesWithTranslations++

	headID, err := s.resolver.Resolve(ctx, rec.Word, s.path.Bridge)
	if err != nil {
		s.log.Error("failed to resolve headword",
			slog.Int("line", n),
			slog.String("error", err.Error()),
		)
		s.fail(n, CodeGetID, fmt.Sprintf("failed to get/create ID for %q: %v", rec.Word, err), line)
		return
	}

	for _, w := range srcWords {
		if id, ok := s.resolve(ctx, n, w, s.path.Source); ok {
			s.batcher.Add(ctx, id, headID)
		}
	}
	for _, w := range tgtWords {
		if id, ok := s.resolve(ctx, n, w, s.path.Target); ok {
			s.batcher.Add(ctx, headID, id)
		}
	}
}

func (s *Session) resolve(ctx context.Context, n int, word string, lang domain.LangCode) (int64, bool) {
	id, err := s.resolver.Resolve(ctx, word, lang)
	if err != nil {
		s.log.Error("failed to resolve translation",
			slog.Int("line", n),
			slog.String("error", err.Error()),
		)
		s.fail(n, CodeResolve, err.Error(), nil)
		return 0, false
	}
	return id, true
}

func (s *Session) deriveClosure(ctx context.Context) {
	s.stats.ClosureRan = true
	created, err := s.closure.Derive(ctx)
	if err != nil {
		s.stats.ClosureFailed = true
		s.log.Error("direct links creation failed", slog.String("error", err.Error()))
		return
	}
	s.stats.DerivedEdges = created
}

func (s *Session) fail(n int, code, msg string, raw []byte) {
	s.stats.Errors++
	if s.errs != nil {
		s.errs.Record(n, code, msg, raw)
	}
}
