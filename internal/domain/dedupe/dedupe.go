// Package dedupe drops events whose (run, lumi, event) id was already read.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/topskim/internal/domain/model"
)

// defaultMaxSize bounds the number of remembered ids.
const defaultMaxSize = 1 << 20

// Deduper records seen event ids.
type Deduper interface {
	// SeenAndRecord reports whether id was already seen and records it if not.
	SeenAndRecord(ctx context.Context, id model.EventID) bool

	// Size returns the number of ids currently remembered.
	Size() int64
}

// inMemoryDeduper keeps ids in a map. In bounded mode an insertion-ordered
// list evicts the oldest id once maxSize is reached.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[model.EventID]*list.Element
	order   *list.List // oldest at the front; nil in unbounded mode
	maxSize int        // 0 or negative means unbounded
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[model.EventID]*list.Element)
	if d.maxSize > 0 {
		d.order = list.New()
	}

	return d
}

// SeenAndRecord reports whether id was already seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, id model.EventID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}

	if d.order == nil {
		d.seen[id] = nil
		d.size.Add(1)
		return false
	}

	if d.order.Len() >= d.maxSize {
		d.evictOldest()
	}
	d.seen[id] = d.order.PushBack(id)
	d.size.Add(1)
	return false
}

// evictOldest drops the earliest recorded id. Must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	front := d.order.Front()
	if front == nil {
		return
	}
	id, _ := d.order.Remove(front).(model.EventID)
	delete(d.seen, id)
	d.size.Add(-1)
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
