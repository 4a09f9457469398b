// Package dedupe tracks already-ingested catalog record IDs so resubmitted
// records are acknowledged as duplicates instead of reapplied.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen record IDs to keep catalog ingestion idempotent.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it
	// if not. Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen set. Used to roll back when a
	// record was marked seen but could not be enqueued.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

const defaultMaxSize = 50000

// Option applies a configuration option to the in-memory deduper.
type Option func(*ringDeduper)

// WithMaxSize bounds the number of IDs kept. When the bound is reached
// the oldest recorded ID is evicted. A non-positive size means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *ringDeduper) {
		d.maxSize = maxSize
	}
}

// ringDeduper keeps seen IDs in a map plus a FIFO list of insertion
// order for eviction in bounded mode.
type ringDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string
	head    int
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates an in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &ringDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.order = make([]string, 0, d.maxSize)
	}
	return d
}

func (d *ringDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if d.maxSize > 0 {
		if len(d.seen) >= d.maxSize {
			d.evictOldest()
		}
		d.order = append(d.order, id)
	}
	d.seen[id] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *ringDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; !ok {
		return
	}
	delete(d.seen, id)
	d.size.Add(-1)
	// The stale slot in d.order is skipped lazily during eviction.
}

func (d *ringDeduper) Size() int64 {
	return d.size.Load()
}

// evictOldest drops the oldest still-recorded ID. Must be called with
// d.mu held. Slots whose IDs were unrecorded in the meantime are skipped.
func (d *ringDeduper) evictOldest() {
	for d.head < len(d.order) {
		id := d.order[d.head]
		d.head++
		if _, ok := d.seen[id]; ok {
			delete(d.seen, id)
			d.size.Add(-1)
			break
		}
	}
	// Compact once the consumed prefix dominates the slice.
	if d.head > 0 && d.head*2 >= len(d.order) {
		d.order = append(d.order[:0], d.order[d.head:]...)
		d.head = 0
	}
}
