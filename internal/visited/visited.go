package visited

import "github.com/hupe1980/meshrecon/handle"

// Set tracks visited handles using a bitset and a dirty list for fast reset.
type Set[H handle.Index] struct {
	bits  []uint64
	dirty []H
}

// New creates a new visited set.
func New[H handle.Index](capacity int) *Set[H] {
	// capacity is number of handles.
	// bits needed = (capacity + 63) / 64
	return &Set[H]{
		bits:  make([]uint64, (capacity+63)/64),
		dirty: make([]H, 0, 128),
	}
}

// Visit marks h as visited. It returns false if h was already visited.
func (v *Set[H]) Visit(h H) bool {
	wordIdx := int(h >> 6)
	bitMask := uint64(1) << (uint32(h) & 63)

	if wordIdx >= len(v.bits) {
		v.grow(wordIdx + 1)
	}

	if v.bits[wordIdx]&bitMask != 0 {
		return false
	}
	v.bits[wordIdx] |= bitMask
	v.dirty = append(v.dirty, h)
	return true
}

// Visited returns true if h has been visited.
func (v *Set[H]) Visited(h H) bool {
	wordIdx := int(h >> 6)
	if wordIdx >= len(v.bits) {
		return false
	}
	return v.bits[wordIdx]&(uint64(1)<<(uint32(h)&63)) != 0
}

// Len returns the number of visited handles.
func (v *Set[H]) Len() int { return len(v.dirty) }

// Reset clears the visited status for all handles visited in the current session.
func (v *Set[H]) Reset() {
	for _, h := range v.dirty {
		v.bits[int(h>>6)] &^= uint64(1) << (uint32(h) & 63)
	}
	v.dirty = v.dirty[:0]
}

func (v *Set[H]) grow(newLen int) {
	newCap := len(v.bits) * 2
	if newCap < newLen {
		newCap = newLen
	}

	newBits := make([]uint64, newCap)
	copy(newBits, v.bits)
	v.bits = newBits
}
