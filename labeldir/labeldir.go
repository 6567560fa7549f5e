// Package labeldir is a small int64 -> int64 hash map with open addressing
// and linear probing. The manager uses it to resolve caller labels (tier
// ids, usually) to slots in its context array.
package labeldir

import (
	"iter"
	"math/bits"
)

const (
	MinLoadFactor     = 0.25
	MaxLoadFactor     = 0.75
	DefaultLoadFactor = 0.5

	minCapacity = 8
)

type entry struct {
	key   int64
	value int64
	used  bool
}

// Map is not safe for concurrent mutation. Concurrent Get/Contains calls
// with no writer are fine.
type Map struct {
	entries    []entry
	sizeMask   uint64
	size       int
	loadFactor float64
}

// New returns an empty map able to hold at least capacity keys before its
// first resize. loadFactor is clamped to [MinLoadFactor, MaxLoadFactor].
func New(capacity int, loadFactor float64) *Map {
	loadFactor = min(max(loadFactor, MinLoadFactor), MaxLoadFactor)
	m := &Map{loadFactor: loadFactor}
	m.alloc(tableSizeFor(capacity, loadFactor))
	return m
}

// tableSizeFor returns the smallest power of two that keeps n keys at or
// under the load factor.
func tableSizeFor(n int, loadFactor float64) int {
	want := int(float64(n)/loadFactor) + 1
	if want < minCapacity {
		want = minCapacity
	}
	return 1 << bits.Len(uint(want-1))
}

func (m *Map) alloc(size int) {
	m.entries = make([]entry, size)
	m.sizeMask = uint64(size - 1)
	m.size = 0
}

// hashUint64 is the SplitMix64 finalizer.
func hashUint64(x uint64) uint64 {
	x = (x ^ (x >> 30)) * uint64(0xbf58476d1ce4e5b9)
	x = (x ^ (x >> 27)) * uint64(0x94d049bb133111eb)
	x = x ^ (x >> 31)
	return x
}

// find returns the slot holding key, or the empty slot where it would go.
// The table always has an empty slot, so probing terminates.
func (m *Map) find(key int64) uint64 {
	idx := hashUint64(uint64(key)) & m.sizeMask
	for m.entries[idx].used && m.entries[idx].key != key {
		idx = (idx + 1) & m.sizeMask
	}
	return idx
}

func (m *Map) grow() {
	old := m.entries
	m.alloc(len(old) * 2)
	for _, e := range old {
		if e.used {
			idx := m.find(e.key)
			m.entries[idx] = e
			m.size++
		}
	}
}

// Set inserts key or updates its value. Iterators obtained before a Set
// are invalidated.
func (m *Map) Set(key, value int64) {
	idx := m.find(key)
	if m.entries[idx].used {
		m.entries[idx].value = value
		return
	}
	if float64(m.size+1) > m.loadFactor*float64(len(m.entries)) {
		m.grow()
		idx = m.find(key)
	}
	m.entries[idx] = entry{key: key, value: value, used: true}
	m.size++
}

// Get returns an iterator positioned at key. It is not Valid if key is
// absent.
func (m *Map) Get(key int64) Iterator {
	idx := m.find(key)
	if !m.entries[idx].used {
		return Iterator{m: m, idx: len(m.entries)}
	}
	return Iterator{m: m, idx: int(idx)}
}

// Lookup is Get in comma-ok form.
func (m *Map) Lookup(key int64) (int64, bool) {
	it := m.Get(key)
	if !it.Valid() {
		return 0, false
	}
	return it.Value(), true
}

func (m *Map) Contains(key int64) bool {
	return m.entries[m.find(key)].used
}

func (m *Map) Len() int {
	return m.size
}

// Capacity returns the current table size, always a power of two.
func (m *Map) Capacity() int {
	return len(m.entries)
}

// Clear removes every key but keeps the table.
func (m *Map) Clear() {
	clear(m.entries)
	m.size = 0
}

// Begin returns an iterator at the first entry in table order.
func (m *Map) Begin() Iterator {
	it := Iterator{m: m, idx: -1}
	it.Next()
	return it
}

// All ranges over every key and value in table order.
func (m *Map) All() iter.Seq2[int64, int64] {
	return func(yield func(int64, int64) bool) {
		for it := m.Begin(); it.Valid(); it.Next() {
			if !yield(it.Key(), it.Value()) {
				return
			}
		}
	}
}

// Iterator points at one entry of a Map, or past the end.
type Iterator struct {
	m   *Map
	idx int
}

func (it Iterator) Valid() bool {
	return it.m != nil && it.idx >= 0 && it.idx < len(it.m.entries)
}

func (it Iterator) Key() int64 {
	return it.m.entries[it.idx].key
}

func (it Iterator) Value() int64 {
	return it.m.entries[it.idx].value
}

// Next advances to the following used slot.
func (it *Iterator) Next() {
	for it.idx++; it.idx < len(it.m.entries); it.idx++ {
		if it.m.entries[it.idx].used {
			return
		}
	}
}
