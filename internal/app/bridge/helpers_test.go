package bridge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/heartmarshall/lexibridge/internal/adapter/memory"
	"github.com/heartmarshall/lexibridge/internal/domain"
)

var errStoreDown = errors.New("store unavailable")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// spyStore wraps a memory store, counts calls and injects failures.
type spyStore struct {
	*memory.Store

	mu      sync.Mutex
	finds   int
	inserts int
	batches [][]domain.Edge
	derives int

	findErr   error
	insertErr error
	edgesErr  error
	deriveErr error
	totalsErr error
}

func newSpyStore() *spyStore {
	return &spyStore{Store: memory.New()}
}

func (s *spyStore) FindWordID(ctx context.Context, text string, lang domain.LangCode) (int64, error) {
	s.mu.Lock()
	s.finds++
	err := s.findErr
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return s.Store.FindWordID(ctx, text, lang)
}

func (s *spyStore) InsertWord(ctx context.Context, text string, lang domain.LangCode) (int64, error) {
	s.mu.Lock()
	s.inserts++
	err := s.insertErr
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return s.Store.InsertWord(ctx, text, lang)
}

func (s *spyStore) InsertEdges(ctx context.Context, edges []domain.Edge) (int, error) {
	s.mu.Lock()
	s.batches = append(s.batches, append([]domain.Edge(nil), edges...))
	err := s.edgesErr
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return s.Store.InsertEdges(ctx, edges)
}

func (s *spyStore) DeriveBridgeEdges(ctx context.Context, path domain.BridgePath) (int, error) {
	s.mu.Lock()
	s.derives++
	err := s.deriveErr
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return s.Store.DeriveBridgeEdges(ctx, path)
}

func (s *spyStore) Totals(ctx context.Context) (domain.StoreTotals, error) {
	if s.totalsErr != nil {
		return domain.StoreTotals{}, s.totalsErr
	}
	return s.Store.Totals(ctx)
}

func (s *spyStore) calls() (finds, inserts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finds, s.inserts
}

// lateWriterStore lets a concurrent writer win every first insert: the word
// is stored, but the caller sees a uniqueness conflict.
type lateWriterStore struct {
	*memory.Store
	conflicts int
}

func (s *lateWriterStore) InsertWord(ctx context.Context, text string, lang domain.LangCode) (int64, error) {
	if _, err := s.Store.InsertWord(ctx, text, lang); err != nil {
		return 0, err
	}
	s.conflicts++
	return 0, domain.ErrAlreadyExists
}

// phantomStore reports a conflict for a word it never returns.
type phantomStore struct{}

func (phantomStore) FindWordID(context.Context, string, domain.LangCode) (int64, error) {
	return 0, domain.ErrNotFound
}

func (phantomStore) InsertWord(context.Context, string, domain.LangCode) (int64, error) {
	return 0, domain.ErrAlreadyExists
}

type sinkEntry struct {
	line int
	code string
	msg  string
	raw  string
}

type recordingSink struct {
	entries []sinkEntry
}

func (r *recordingSink) Record(line int, code, msg string, raw []byte) {
	r.entries = append(r.entries, sinkEntry{line: line, code: code, msg: msg, raw: string(raw)})
}

func (r *recordingSink) codes() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.code)
	}
	return out
}
