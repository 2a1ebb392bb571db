// Package visited provides a reusable membership set for graph traversals.
package visited

import "sync"

// Set tracks visited nodes with a bitset. Nodes marked since the last Reset
// are remembered in visit order, which makes Reset proportional to the
// traversal rather than to the graph.
type Set struct {
	bits  []uint64
	order []uint32
}

// New creates a set sized for capacity nodes.
func New(capacity int) *Set {
	return &Set{
		bits:  make([]uint64, (capacity+63)/64),
		order: make([]uint32, 0, 128),
	}
}

// Visit marks id and reports whether it was newly marked.
func (s *Set) Visit(id uint32) bool {
	word := int(id >> 6)
	mask := uint64(1) << (id & 63)

	if word >= len(s.bits) {
		s.grow(word + 1)
	}

	if s.bits[word]&mask != 0 {
		return false
	}

	s.bits[word] |= mask
	s.order = append(s.order, id)

	return true
}

// Visited reports whether id has been marked.
func (s *Set) Visited(id uint32) bool {
	word := int(id >> 6)
	if word >= len(s.bits) {
		return false
	}

	return s.bits[word]&(uint64(1)<<(id&63)) != 0
}

// Len returns the number of marked nodes.
func (s *Set) Len() int {
	return len(s.order)
}

// Order returns the marked nodes in the order they were first visited. The
// slice is owned by the set and valid until the next Reset.
func (s *Set) Order() []uint32 {
	return s.order
}

// Reset unmarks every node marked since the previous Reset.
func (s *Set) Reset() {
	for _, id := range s.order {
		s.bits[id>>6] &^= uint64(1) << (id & 63)
	}

	s.order = s.order[:0]
}

func (s *Set) grow(n int) {
	size := max(len(s.bits)*2, n)

	bits := make([]uint64, size)
	copy(bits, s.bits)
	s.bits = bits
}

var pool = sync.Pool{
	New: func() any { return New(0) },
}

// Get returns a cleared set able to hold capacity nodes without growing.
func Get(capacity int) *Set {
	s := pool.Get().(*Set)
	if words := (capacity + 63) / 64; words > len(s.bits) {
		s.grow(words)
	}

	return s
}

// Put resets s and returns it to the pool.
func Put(s *Set) {
	s.Reset()
	pool.Put(s)
}
