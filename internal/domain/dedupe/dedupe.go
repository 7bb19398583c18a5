// Package dedupe tracks event ids so feedback and status events are applied
// at most once.
package dedupe

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMaxSize = 50_000

// Deduper records seen event IDs to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so a rejected submission can be retried.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// lruDeduper keeps the most recent ids in a bounded LRU cache. When maxSize
// is not positive it falls back to an unbounded set.
type lruDeduper struct {
	maxSize int

	cache *lru.Cache[string, struct{}]

	mu  sync.Mutex
	all map[string]struct{}
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &lruDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}

	if d.maxSize > 0 {
		// lru.New only fails for non-positive sizes.
		cache, err := lru.New[string, struct{}](d.maxSize)
		if err == nil {
			d.cache = cache
			return d
		}
	}
	d.all = make(map[string]struct{})
	return d
}

func (d *lruDeduper) SeenAndRecord(_ context.Context, id string) bool {
	if d.cache != nil {
		seen, _ := d.cache.ContainsOrAdd(id, struct{}{})
		return seen
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.all[id]; ok {
		return true
	}
	d.all[id] = struct{}{}
	return false
}

func (d *lruDeduper) Unrecord(_ context.Context, id string) {
	if d.cache != nil {
		d.cache.Remove(id)
		return
	}

	d.mu.Lock()
	delete(d.all, id)
	d.mu.Unlock()
}

func (d *lruDeduper) Size() int64 {
	if d.cache != nil {
		return int64(d.cache.Len())
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.all))
}
