// Package memory implements the import store in process memory. It backs
// dry runs, where identities are synthetic and nothing is persisted, and
// serves as the store double in tests.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/heartmarshall/lexibridge/internal/domain"
)

// Store keeps words and edges with the same uniqueness rules as the SQL
// stores: (text, lang) is unique and edges are idempotent. Safe for
// concurrent use.
type Store struct {
	mu     sync.Mutex
	nextID int64
	words  map[domain.WordKey]int64
	langs  map[int64]domain.LangCode
	edges  map[domain.Edge]struct{}
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		words: make(map[domain.WordKey]int64),
		langs: make(map[int64]domain.LangCode),
		edges: make(map[domain.Edge]struct{}),
	}
}

// FindWordID returns domain.ErrNotFound for unknown words.
func (s *Store) FindWordID(_ context.Context, text string, lang domain.LangCode) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.words[domain.WordKey{Text: text, Lang: lang}]
	if !ok {
		return 0, fmt.Errorf("word %s:%s: %w", lang, text, domain.ErrNotFound)
	}
	return id, nil
}

// InsertWord assigns the next synthetic ID. It returns domain.ErrAlreadyExists
// when the pair is already present.
func (s *Store) InsertWord(_ context.Context, text string, lang domain.LangCode) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.WordKey{Text: text, Lang: lang}
	if _, ok := s.words[key]; ok {
		return 0, fmt.Errorf("word %s:%s: %w", lang, text, domain.ErrAlreadyExists)
	}
	s.nextID++
	s.words[key] = s.nextID
	s.langs[s.nextID] = lang
	return s.nextID, nil
}

// InsertEdges adds edges, skipping duplicates. Edges that reference unknown
// words fail the whole call and nothing is added.
func (s *Store) InsertEdges(_ context.Context, edges []domain.Edge) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range edges {
		if _, ok := s.langs[e.SourceID]; !ok {
			return 0, fmt.Errorf("edge %d->%d: source word: %w", e.SourceID, e.TargetID, domain.ErrNotFound)
		}
		if _, ok := s.langs[e.TargetID]; !ok {
			return 0, fmt.Errorf("edge %d->%d: target word: %w", e.SourceID, e.TargetID, domain.ErrNotFound)
		}
	}
	return s.addEdgesLocked(edges), nil
}

// DeriveBridgeEdges adds Source->Target edges for every Source->Bridge,
// Bridge->Target chain sharing the bridge word.
func (s *Store) DeriveBridgeEdges(_ context.Context, path domain.BridgePath) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	toTarget := make(map[int64][]int64)
	for e := range s.edges {
		if s.langs[e.SourceID] == path.Bridge && s.langs[e.TargetID] == path.Target {
			toTarget[e.SourceID] = append(toTarget[e.SourceID], e.TargetID)
		}
	}

	var derived []domain.Edge
	for e := range s.edges {
		if s.langs[e.SourceID] != path.Source || s.langs[e.TargetID] != path.Bridge {
			continue
		}
		for _, target := range toTarget[e.TargetID] {
			derived = append(derived, domain.Edge{SourceID: e.SourceID, TargetID: target})
		}
	}
	return s.addEdgesLocked(derived), nil
}

// Totals returns the number of words and edges.
func (s *Store) Totals(_ context.Context) (domain.StoreTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.StoreTotals{Words: int64(len(s.words)), Edges: int64(len(s.edges))}, nil
}

// HasEdge reports whether the edge from -> to is stored.
func (s *Store) HasEdge(from, to int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.edges[domain.Edge{SourceID: from, TargetID: to}]
	return ok
}

// Edges returns all edges ordered by source then target.
func (s *Store) Edges() []domain.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Edge, 0, len(s.edges))
	for e := range s.edges {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b domain.Edge) int {
		if c := cmp.Compare(a.SourceID, b.SourceID); c != 0 {
			return c
		}
		return cmp.Compare(a.TargetID, b.TargetID)
	})
	return out
}

func (s *Store) addEdgesLocked(edges []domain.Edge) int {
	added := 0
	for _, e := range edges {
		if _, ok := s.edges[e]; ok {
			continue
		}
		s.edges[e] = struct{}{}
		added++
	}
	return added
}
