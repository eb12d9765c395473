// Package state holds the normalized local copy of a user's tasks, days and
// day links. It mirrors the remote store and is replaced wholesale whenever a
// remote snapshot arrives; selectors read from it without touching the store.
package state

import (
	"sort"
	"sync"
	"time"
)

// Record is anything a Table can hold.
type Record interface {
	Key() string
	CreatedAt() time.Time
}

// Table is a normalized collection keyed by id. Every mutation bumps Version,
// which is what derived queries use to decide whether to recompute.
type Table[T Record] struct {
	mu      sync.RWMutex
	items   map[string]T
	version uint64
	changed func()
}

// NewTable returns an empty table. changed, when non-nil, is called after every
// mutation with no lock held.
func NewTable[T Record](changed func()) *Table[T] {
	return &Table[T]{items: make(map[string]T), changed: changed}
}

// UpsertOne inserts or replaces item.
func (t *Table[T]) UpsertOne(item T) {
	t.UpsertMany([]T{item})
}

// UpsertMany inserts or replaces every item, in order.
func (t *Table[T]) UpsertMany(items []T) {
	if len(items) == 0 {
		return
	}
	t.mu.Lock()
	for _, item := range items {
		t.items[item.Key()] = item
	}
	t.version++
	t.mu.Unlock()
	t.notify()
}

// RemoveOne deletes id. Unknown ids are ignored.
func (t *Table[T]) RemoveOne(id string) {
	t.RemoveMany([]string{id})
}

// RemoveMany deletes every id. Unknown ids are ignored.
func (t *Table[T]) RemoveMany(ids []string) {
	if len(ids) == 0 {
		return
	}
	t.mu.Lock()
	for _, id := range ids {
		delete(t.items, id)
	}
	t.version++
	t.mu.Unlock()
	t.notify()
}

// SetAll replaces the whole table with items. Nothing from the previous
// contents survives.
func (t *Table[T]) SetAll(items []T) {
	next := make(map[string]T, len(items))
	for _, item := range items {
		next[item.Key()] = item
	}
	t.mu.Lock()
	t.items = next
	t.version++
	t.mu.Unlock()
	t.notify()
}

// Get looks up id.
func (t *Table[T]) Get(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	item, ok := t.items[id]
	return item, ok
}

// All returns every item ordered by creation time, oldest first.
func (t *Table[T]) All() []T {
	items, _ := t.Snapshot()
	return items
}

// Len is the number of items.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}

// Version increases on every mutation.
func (t *Table[T]) Version() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}

// Snapshot returns the sorted items together with the version they belong to.
func (t *Table[T]) Snapshot() ([]T, uint64) {
	t.mu.RLock()
	out := make([]T, 0, len(t.items))
	for _, item := range t.items {
		out = append(out, item)
	}
	version := t.version
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].CreatedAt(), out[j].CreatedAt()
		if !a.Equal(b) {
			return a.Before(b)
		}
		return out[i].Key() < out[j].Key()
	})
	return out, version
}

func (t *Table[T]) notify() {
	if t.changed != nil {
		t.changed()
	}
}
