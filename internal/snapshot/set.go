// Package snapshot provides the copy-on-write collections behind the alert store
// and the entity registry. A Set is never modified after construction; every
// mutation returns a new Set with the version bumped, so readers holding an older
// Set keep a consistent view.
package snapshot

// Set is an immutable, insertion-ordered collection keyed by string id
type Set[T any] struct {
	version uint64
	items   []T
	ids     []string
	index   map[string]int
}

// Empty returns a Set with no items at version 0
func Empty[T any]() *Set[T] {
	return &Set[T]{index: map[string]int{}}
}

// Version increases by one with every successful mutation
func (s *Set[T]) Version() uint64 {
	return s.version
}

// Len returns the number of items
func (s *Set[T]) Len() int {
	return len(s.items)
}

// Has reports whether id is present
func (s *Set[T]) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Get returns the item stored under id
func (s *Set[T]) Get(id string) (T, bool) {
	i, ok := s.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return s.items[i], true
}

// Items returns a copy of all items in insertion order
func (s *Set[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Select returns, in insertion order, the items for which keep returns true
func (s *Set[T]) Select(keep func(T) bool) []T {
	out := make([]T, 0, len(s.items))
	for _, it := range s.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// Count returns how many items satisfy match
func (s *Set[T]) Count(match func(T) bool) int {
	n := 0
	for _, it := range s.items {
		if match(it) {
			n++
		}
	}
	return n
}

// Put returns a new Set with v stored under id. An existing id keeps its position.
func (s *Set[T]) Put(id string, v T) *Set[T] {
	if i, ok := s.index[id]; ok {
		next := s.clone(len(s.items))
		next.items[i] = v
		return next
	}
	next := s.clone(len(s.items) + 1)
	next.index[id] = len(next.items)
	next.items = append(next.items, v)
	next.ids = append(next.ids, id)
	return next
}

// Remove returns a new Set without id, and false (with s unchanged) if id is absent
func (s *Set[T]) Remove(id string) (*Set[T], bool) {
	at, ok := s.index[id]
	if !ok {
		return s, false
	}
	next := &Set[T]{
		version: s.version + 1,
		items:   make([]T, 0, len(s.items)-1),
		ids:     make([]string, 0, len(s.ids)-1),
		index:   make(map[string]int, len(s.index)-1),
	}
	for i, it := range s.items {
		if i == at {
			continue
		}
		next.index[s.ids[i]] = len(next.items)
		next.items = append(next.items, it)
		next.ids = append(next.ids, s.ids[i])
	}
	return next, true
}

func (s *Set[T]) clone(capacity int) *Set[T] {
	next := &Set[T]{
		version: s.version + 1,
		items:   make([]T, len(s.items), capacity),
		ids:     make([]string, len(s.ids), capacity),
		index:   make(map[string]int, capacity),
	}
	copy(next.items, s.items)
	copy(next.ids, s.ids)
	for k, v := range s.index {
		next.index[k] = v
	}
	return next
}
