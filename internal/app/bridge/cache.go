package bridge

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/heartmarshall/lexibridge/internal/domain"
)

// Cache maps word keys to identities for the duration of one run.
type Cache interface {
	Get(key domain.WordKey) (int64, bool)
	Add(key domain.WordKey, id int64)
	Len() int
}

// NewCache returns an unbounded cache for size 0 and an LRU cache holding at
// most size keys otherwise. An evicted key is re-read from the store on its
// next use, so bounding the cache never changes identities.
func NewCache(size int) (Cache, error) {
	if size < 0 {
		return nil, fmt.Errorf("cache size must be >= 0 (got %d)", size)
	}
	if size == 0 {
		return make(mapCache), nil
	}
	c, err := lru.New[domain.WordKey, int64](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &lruCache{c: c}, nil
}

type mapCache map[domain.WordKey]int64

func (m mapCache) Get(key domain.WordKey) (int64, bool) {
	id, ok := m[key]
	return id, ok
}

func (m mapCache) Add(key domain.WordKey, id int64) { m[key] = id }

func (m mapCache) Len() int { return len(m) }

type lruCache struct {
	c *lru.Cache[domain.WordKey, int64]
}

func (l *lruCache) Get(key domain.WordKey) (int64, bool) { return l.c.Get(key) }

func (l *lruCache) Add(key domain.WordKey, id int64) { l.c.Add(key, id) }

func (l *lruCache) Len() int { return l.c.Len() }
