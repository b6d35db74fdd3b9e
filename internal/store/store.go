// Package store provides the finding store shared by the detectors of a
// scan session.
//
// A Store is append-only and partitioned by category. Items appended with
// AppendUnique are deduplicated on a key within their category: the first
// item wins and later items with the same key are dropped, never merged.
// All mutations are serialized by the store's own lock.
package store

import (
	"slices"
	"sync"
)

// KeyFunc extracts the uniqueness key of an item.
type KeyFunc[T any] func(T) string

// Entry is one item of a batch passed to Commit.
type Entry[T any] struct {
	// Category is the partition the item belongs to.
	Category string

	// Item is the value to store.
	Item T

	// Unique requests deduplication on the item's key within Category.
	Unique bool
}

// Store is an append-only, category-partitioned collection.
type Store[T any] struct {
	mu    sync.RWMutex
	key   KeyFunc[T]
	items map[string][]T
	seen  map[string]map[string]struct{}
	order []string
}

// New creates an empty store using key to extract uniqueness keys.
func New[T any](key KeyFunc[T]) *Store[T] {
	return &Store[T]{
		key:   key,
		items: make(map[string][]T),
		seen:  make(map[string]map[string]struct{}),
	}
}

// Append adds item to category without deduplication.
func (s *Store[T]) Append(category string, item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(category, item)
}

// AppendUnique adds item to category unless an item with the same key was
// appended uniquely before. It reports whether the item was added.
func (s *Store[T]) AppendUnique(category string, item T) bool {
	return s.AppendUniqueKey(category, s.key(item), item)
}

// AppendUniqueKey is AppendUnique with an explicit key.
func (s *Store[T]) AppendUniqueKey(category, key string, item T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendUniqueLocked(category, key, item)
}

// Commit applies a batch of entries as one step. No other mutation and no
// reader observes the store between entries of the batch. It returns the
// number of entries actually stored.
func (s *Store[T]) Commit(batch []Entry[T]) int {
	if len(batch) == 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, e := range batch {
		if !e.Unique {
			s.appendLocked(e.Category, e.Item)
			n++
			continue
		}
		if s.appendUniqueLocked(e.Category, s.key(e.Item), e.Item) {
			n++
		}
	}
	return n
}

// Has reports whether a unique item with key exists in category.
func (s *Store[T]) Has(category, key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[category][key]
	return ok
}

// Get returns a copy of the items in category, in insertion order.
func (s *Store[T]) Get(category string) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items[category])
}

// All returns a copy of every item, grouped by category in the order
// categories were first written.
func (s *Store[T]) All() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []T
	for _, c := range s.order {
		out = append(out, s.items[c]...)
	}
	return out
}

// Categories returns the categories holding at least one item, in the
// order they were first written.
func (s *Store[T]) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// Len returns the total number of items.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, items := range s.items {
		n += len(items)
	}
	return n
}

func (s *Store[T]) appendLocked(category string, item T) {
	if _, ok := s.items[category]; !ok {
		s.order = append(s.order, category)
	}
	s.items[category] = append(s.items[category], item)
}

func (s *Store[T]) appendUniqueLocked(category, key string, item T) bool {
	keys, ok := s.seen[category]
	if !ok {
		keys = make(map[string]struct{})
		s.seen[category] = keys
	}
	if _, dup := keys[key]; dup {
		return false
	}
	keys[key] = struct{}{}
	s.appendLocked(category, item)
	return true
}
