// Package dedupe tracks identifiers that have already been handled.
//
// The ingestion command uses it to merge fresh beatmaps into a mapper's
// stored list without duplicating beatmap ids, and to visit each candidate
// mapper at most once per run.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen identifiers.
type Deduper interface {
	// SeenAndRecord reports whether id was already recorded and records it
	// when it was not. The check and the insert happen under one lock.
	SeenAndRecord(ctx context.Context, id string) bool

	// Seen reports whether id is recorded without recording it.
	Seen(ctx context.Context, id string) bool

	// Unrecord forgets id so a later SeenAndRecord treats it as new.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryDeduper keeps identifiers in a map. In bounded mode an insertion
// ordered list backs FIFO eviction of the oldest entry once maxSize is hit.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates an in-memory deduper. Without options it is
// unbounded.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*list.Element)
	if d.maxSize > 0 {
		d.order = list.New()
	}
	return d
}

// FromIDs returns an unbounded deduper preloaded with ids.
func FromIDs(ids ...string) Deduper {
	d := NewInMemoryDeduper()
	for _, id := range ids {
		d.SeenAndRecord(context.Background(), id)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if d.order == nil {
		d.seen[id] = nil
		d.size.Add(1)
		return false
	}

	if len(d.seen) >= d.maxSize {
		d.evictOldest()
	}
	d.seen[id] = d.order.PushBack(id)
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Seen(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.seen[id]
	return ok
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	el, ok := d.seen[id]
	if !ok {
		return
	}
	delete(d.seen, id)
	if el != nil {
		d.order.Remove(el)
	}
	d.size.Add(-1)
}

// evictOldest drops the earliest recorded id. Caller holds d.mu.
func (d *inMemoryDeduper) evictOldest() {
	front := d.order.Front()
	if front == nil {
		return
	}
	d.order.Remove(front)
	delete(d.seen, front.Value.(string))
	d.size.Add(-1)
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
