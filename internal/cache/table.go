// Package cache provides a small timestamped per-user table with TTL reads.
// Tables are plain values owned by whichever service constructs them; there
// are no package-level singletons.
package cache

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type record[V any] struct {
	value V
	at    time.Time
}

// Table is a thread-safe map keyed by user ID. Reads through Get apply the
// table's TTL; a zero TTL means entries never go stale. Entries are created
// lazily and removed only through Delete (session teardown) — there is no
// background sweeper, matching the session-scoped lifetime of the data.
type Table[V any] struct {
	mu      sync.RWMutex
	entries map[int64]record[V]
	ttl     time.Duration
	now     func() time.Time

	hits   prometheus.Counter // optional
	misses prometheus.Counter // optional
}

// Option configures a Table.
type Option[V any] func(*Table[V])

// WithClock overrides the table's time source.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(t *Table[V]) { t.now = now }
}

// WithCounters wires hit/miss counters. Either may be nil.
func WithCounters[V any](hits, misses prometheus.Counter) Option[V] {
	return func(t *Table[V]) {
		t.hits = hits
		t.misses = misses
	}
}

// New creates a Table with the given TTL.
func New[V any](ttl time.Duration, opts ...Option[V]) *Table[V] {
	t := &Table[V]{
		entries: make(map[int64]record[V]),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Get returns the value for key if present and fresh.
func (t *Table[V]) Get(key int64) (V, bool) {
	t.mu.RLock()
	rec, ok := t.entries[key]
	t.mu.RUnlock()

	if !ok || (t.ttl > 0 && t.now().Sub(rec.at) >= t.ttl) {
		if t.misses != nil {
			t.misses.Inc()
		}
		var zero V
		return zero, false
	}
	if t.hits != nil {
		t.hits.Inc()
	}
	return rec.value, true
}

// Peek returns the value for key if present, ignoring freshness. Used by
// lookups that must never trigger a refresh.
func (t *Table[V]) Peek(key int64) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return rec.value, true
}

// Set stores value under key, stamping it with the current time.
func (t *Table[V]) Set(key int64, value V) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[key] = record[V]{value: value, at: t.now()}
}

// Delete removes key's entry, if any.
func (t *Table[V]) Delete(key int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, key)
}

// Len reports the number of entries.
func (t *Table[V]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
