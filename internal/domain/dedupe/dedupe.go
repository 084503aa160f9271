// Package dedupe tracks which records have already raised an alert so that a
// redelivered batch does not alert twice for the same record.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen keys.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key, e.g. after the alert it guarded failed to publish.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// ring is a bounded seen-set evicting the oldest key first.
type ring struct {
	mu    sync.Mutex
	seen  map[string]int // key -> slot
	slots []string
	next  int
	used  int
}

// noop never reports a key as seen.
type noop struct{}

func (noop) SeenAndRecord(context.Context, string) bool { return false }
func (noop) Unrecord(context.Context, string)           {}
func (noop) Size() int64                                { return 0 }

// NewInMemoryDeduper creates a deduper holding at most WithMaxSize keys.
// A non-positive size disables de-duplication.
func NewInMemoryDeduper(opts ...Option) Deduper {
	o := options{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxSize <= 0 {
		return noop{}
	}
	return &ring{
		seen:  make(map[string]int, o.maxSize),
		slots: make([]string, o.maxSize),
	}
}

func (r *ring) SeenAndRecord(_ context.Context, key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[key]; ok {
		return true
	}

	// Skip slots freed by Unrecord; evict the oldest occupant otherwise.
	if old := r.slots[r.next]; old != "" {
		if slot, ok := r.seen[old]; ok && slot == r.next {
			delete(r.seen, old)
			r.used--
		}
	}
	r.slots[r.next] = key
	r.seen[key] = r.next
	r.next = (r.next + 1) % len(r.slots)
	r.used++
	return false
}

func (r *ring) Unrecord(_ context.Context, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.seen[key]
	if !ok {
		return
	}
	delete(r.seen, key)
	r.slots[slot] = ""
	r.used--
}

func (r *ring) Size() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(r.used)
}
