package forest

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

// Sorter sorts subsets of a forest's nodes by render order.
//
// A sorter works on a snapshot of the render order, taken by Reindex.
// Nodes added to the forest afterwards have no sort key until the next
// call to Reindex; nodes removed afterwards keep their former key.
type Sorter[T comparable] struct {
	forest *Forest[T]
	mu     sync.RWMutex
	keys   map[T]int
}

// NewSorter creates a sorter for f. The sorter starts without an index,
// clients have to call Reindex before sorting.
func NewSorter[T comparable](f *Forest[T]) *Sorter[T] {
	assertThat(f != nil, "sorter needs a forest")
	return &Sorter[T]{forest: f, keys: make(map[T]int)}
}

// Reindex assigns every node of the forest its position in render order
// as sort key. Keys from previous indexing runs are discarded.
func (s *Sorter[T]) Reindex() {
	nodes := s.forest.Nodes()
	keys := make(map[T]int, len(nodes))
	for i, n := range nodes {
		keys[n] = i
	}
	s.mu.Lock()
	s.keys = keys
	s.mu.Unlock()
	tracer().Debugf("sorter indexed %d nodes", len(nodes))
}

// Key returns the sort key of item, if it has been indexed.
func (s *Sorter[T]) Key(item T) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.keys[item]
	return k, ok
}

// Sort returns a copy of items, sorted by ascending sort key, or by
// descending key if reverse is set. Duplicates are kept. If an item has no
// key, ErrStaleKey is returned.
func (s *Sorter[T]) Sort(items []T, reverse bool) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range items {
		if _, ok := s.keys[item]; !ok {
			return nil, fmt.Errorf("%w: %v", ErrStaleKey, item)
		}
	}
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		if reverse {
			return cmp.Compare(s.keys[b], s.keys[a])
		}
		return cmp.Compare(s.keys[a], s.keys[b])
	})
	return sorted, nil
}
