package attrmap

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/meshrecon/handle"
)

// StableVector is a dense handle-indexed container with tombstones.
//
// Erasing an element only clears its slot in the live bitmap, so the handles
// of all other elements stay valid. Slots are never reused.
type StableVector[H handle.Index, V any] struct {
	elems []V
	used  *roaring.Bitmap
	count int
}

// NewStableVector creates an empty StableVector with room for capacity elements.
func NewStableVector[H handle.Index, V any](capacity int) *StableVector[H, V] {
	return &StableVector[H, V]{
		elems: make([]V, 0, capacity),
		used:  roaring.New(),
	}
}

// Push appends v and returns its handle.
func (sv *StableVector[H, V]) Push(v V) H {
	h := H(len(sv.elems))
	sv.elems = append(sv.elems, v)
	sv.used.Add(uint32(h))
	sv.count++
	return h
}

// Set stores v at h, growing the vector with tombstones if h is past the end.
func (sv *StableVector[H, V]) Set(h H, v V) {
	i := int(h)
	if i >= len(sv.elems) {
		var zero V
		for len(sv.elems) <= i {
			sv.elems = append(sv.elems, zero)
		}
	}
	sv.elems[i] = v
	if sv.used.CheckedAdd(uint32(h)) {
		sv.count++
	}
}

// Contains reports whether h refers to a live element.
func (sv *StableVector[H, V]) Contains(h H) bool {
	return int(h) < len(sv.elems) && sv.used.Contains(uint32(h))
}

// Get returns the element at h.
func (sv *StableVector[H, V]) Get(h H) (V, bool) {
	if !sv.Contains(h) {
		var zero V
		return zero, false
	}
	return sv.elems[h], true
}

// GetPtr returns a pointer to the element at h, or nil if h is not live.
// The pointer is invalidated by the next Push or Set.
func (sv *StableVector[H, V]) GetPtr(h H) *V {
	if !sv.Contains(h) {
		return nil
	}
	return &sv.elems[h]
}

// Ref returns a pointer to the slot at h without a liveness check. It panics
// if h was never allocated.
func (sv *StableVector[H, V]) Ref(h H) *V { return &sv.elems[h] }

// Erase tombstones the slot at h. It reports whether h was live.
func (sv *StableVector[H, V]) Erase(h H) bool {
	if !sv.Contains(h) {
		return false
	}
	var zero V
	sv.elems[h] = zero
	sv.used.Remove(uint32(h))
	sv.count--
	return true
}

// Clear drops all elements.
func (sv *StableVector[H, V]) Clear() {
	sv.elems = sv.elems[:0]
	sv.used.Clear()
	sv.count = 0
}

// NumUsed returns the number of live elements.
func (sv *StableVector[H, V]) NumUsed() int { return sv.count }

// NextHandle returns the handle the next Push will produce.
func (sv *StableVector[H, V]) NextHandle() H { return H(len(sv.elems)) }

// Handles yields live handles in ascending order. Elements erased while
// iterating are skipped; elements pushed while iterating are visited.
func (sv *StableVector[H, V]) Handles() iter.Seq[H] {
	return func(yield func(H) bool) {
		for i := 0; i < len(sv.elems); i++ {
			if !sv.used.Contains(uint32(i)) {
				continue
			}
			if !yield(H(i)) {
				return
			}
		}
	}
}

// All yields live handles with their values in ascending handle order.
func (sv *StableVector[H, V]) All() iter.Seq2[H, V] {
	return func(yield func(H, V) bool) {
		for h := range sv.Handles() {
			if !yield(h, sv.elems[h]) {
				return
			}
		}
	}
}
