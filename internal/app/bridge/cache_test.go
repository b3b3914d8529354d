package bridge

import (
	"testing"

	"github.com/heartmarshall/lexibridge/internal/domain"
)

func TestNewCache(t *testing.T) {
	t.Parallel()

	if _, err := NewCache(-1); err == nil {
		t.Fatal("expected error for negative size")
	}

	unbounded, err := NewCache(0)
	if err != nil {
		t.Fatalf("NewCache(0): %v", err)
	}
	for i := range 100 {
		unbounded.Add(domain.WordKey{Text: string(rune('a' + i)), Lang: "en"}, int64(i))
	}
	if unbounded.Len() != 100 {
		t.Errorf("unbounded Len() = %d, want 100", unbounded.Len())
	}

	bounded, err := NewCache(3)
	if err != nil {
		t.Fatalf("NewCache(3): %v", err)
	}
	for i := range 5 {
		bounded.Add(domain.WordKey{Text: string(rune('a' + i)), Lang: "en"}, int64(i))
	}
	if bounded.Len() != 3 {
		t.Errorf("bounded Len() = %d, want 3", bounded.Len())
	}
	if _, ok := bounded.Get(domain.WordKey{Text: "a", Lang: "en"}); ok {
		t.Error("oldest key should have been evicted")
	}
	if id, ok := bounded.Get(domain.WordKey{Text: "e", Lang: "en"}); !ok || id != 4 {
		t.Errorf("Get(e) = %d, %v; want 4, true", id, ok)
	}
}
