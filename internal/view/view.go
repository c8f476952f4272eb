// Package view holds the read-only sequence and map views that the song
// database is exported through.
//
// Every accessor returns a pointer that borrows from the owning container, or
// nil when there is nothing at that position. Borrowed pointers must not be
// written through; they stay valid for as long as the container is reachable.
package view

import "iter"

// Seq is an immutable sequence.
type Seq[T any] struct {
	items []T
}

// NewSeq adopts items. The caller must not modify the slice afterwards.
func NewSeq[T any](items []T) *Seq[T] {
	return &Seq[T]{items: items}
}

func (s *Seq[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Get borrows the element at index, or returns nil when index is out of range.
func (s *Seq[T]) Get(index int) *T {
	if s == nil || index < 0 || index >= len(s.items) {
		return nil
	}
	return &s.items[index]
}

func (s *Seq[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i := 0; i < s.Len(); i++ {
			if !yield(i, &s.items[i]) {
				return
			}
		}
	}
}

// Map is an immutable key/value map with a stable enumeration order. Keys keep
// the position of their first insertion.
type Map[K comparable, V any] struct {
	keys   []K
	values []V
	index  map[K]int
}

func (m *Map[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Get borrows the value stored under key, or returns nil when it is absent.
func (m *Map[K, V]) Get(key K) *V {
	if m == nil {
		return nil
	}
	i, ok := m.index[key]
	if !ok {
		return nil
	}
	return &m.values[i]
}

// KeyAt borrows the key at an enumeration position, or returns nil when index
// is out of range.
func (m *Map[K, V]) KeyAt(index int) *K {
	if m == nil || index < 0 || index >= len(m.keys) {
		return nil
	}
	return &m.keys[index]
}

// ValueAt borrows the value at an enumeration position, or returns nil when
// index is out of range.
func (m *Map[K, V]) ValueAt(index int) *V {
	if m == nil || index < 0 || index >= len(m.values) {
		return nil
	}
	return &m.values[index]
}

func (m *Map[K, V]) All() iter.Seq2[*K, *V] {
	return func(yield func(*K, *V) bool) {
		for i := 0; i < m.Len(); i++ {
			if !yield(&m.keys[i], &m.values[i]) {
				return
			}
		}
	}
}

// MapBuilder fills a Map. Once Build is called the builder must not be used
// again.
type MapBuilder[K comparable, V any] struct {
	m *Map[K, V]
}

func NewMapBuilder[K comparable, V any](sizeHint int) *MapBuilder[K, V] {
	return &MapBuilder[K, V]{
		m: &Map[K, V]{
			keys:   make([]K, 0, sizeHint),
			values: make([]V, 0, sizeHint),
			index:  make(map[K]int, sizeHint),
		},
	}
}

// Set stores value under key. An existing value is overwritten in place and
// replaced reports true.
func (b *MapBuilder[K, V]) Set(key K, value V) (replaced bool) {
	if b.m == nil {
		panic("view: MapBuilder used after Build")
	}
	if i, ok := b.m.index[key]; ok {
		b.m.values[i] = value
		return true
	}
	b.m.index[key] = len(b.m.keys)
	b.m.keys = append(b.m.keys, key)
	b.m.values = append(b.m.values, value)
	return false
}

// Lookup borrows a value set so far, letting callers fill nested containers.
func (b *MapBuilder[K, V]) Lookup(key K) *V {
	return b.m.Get(key)
}

func (b *MapBuilder[K, V]) Len() int {
	return b.m.Len()
}

func (b *MapBuilder[K, V]) Build() *Map[K, V] {
	m := b.m
	b.m = nil
	return m
}
