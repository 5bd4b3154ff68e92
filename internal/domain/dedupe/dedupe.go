// Package dedupe tracks keys seen within a window so repeated conditions are
// reported once. The window is closed by Reset.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen keys.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Reset forgets every recorded key.
	Reset()

	Size() int64
}

// inMemoryDeduper keeps keys in a map and their insertion order in a ring.
// When bounded and full, the oldest key is evicted.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string // ring of keys in insertion order, bounded mode only
	next    int      // ring write position
	maxSize int      // 0 or negative = unbounded
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 1024,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.order = make([]string, 0, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}

	if d.maxSize > 0 {
		if len(d.order) < d.maxSize {
			d.order = append(d.order, key)
		} else {
			delete(d.seen, d.order[d.next])
			d.order[d.next] = key
			d.next = (d.next + 1) % d.maxSize
			d.size.Add(-1)
		}
	}

	d.seen[key] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	clear(d.seen)
	d.order = d.order[:0]
	d.next = 0
	d.size.Store(0)
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
