// Package attrmap provides handle-keyed attribute storage.
//
// Two interchangeable implementations satisfy AttributeMap:
//
//   - VectorMap is backed by a StableVector and suits attributes present on
//     (nearly) every entity, such as per-face normals.
//   - HashMap is backed by a Go map and suits attributes present on few
//     entities.
//
// Mesh algorithms accept the interface so callers pick the storage per use site.
package attrmap

import (
	"cmp"
	"iter"

	"github.com/hupe1980/meshrecon/handle"
)

// AttributeMap maps handles to values.
type AttributeMap[H handle.Index, V any] interface {
	// ContainsKey reports whether a value is stored for h.
	ContainsKey(h H) bool

	// Insert stores v for h. If a value was already stored it is returned
	// together with true.
	Insert(h H, v V) (V, bool)

	// Remove deletes the value for h and returns it if it was present.
	Remove(h H) (V, bool)

	// Clear removes all values.
	Clear()

	// Get returns the value stored for h.
	Get(h H) (V, bool)

	// GetPtr returns a mutable pointer to the value for h, or nil.
	GetPtr(h H) *V

	// NumValues returns the number of stored values.
	NumValues() int

	// Handles yields every key exactly once, in ascending order.
	Handles() iter.Seq[H]
}

// FromFunc builds a dense map by evaluating fn for every handle in hs.
func FromFunc[H handle.Index, V any](hs iter.Seq[H], capacity int, fn func(H) V) *VectorMap[H, V] {
	m := NewVectorMap[H, V](capacity)
	for h := range hs {
		m.Insert(h, fn(h))
	}
	return m
}

// MapValues builds a dense map holding fn applied to every value of src.
func MapValues[H handle.Index, V, W any](src AttributeMap[H, V], fn func(V) W) *VectorMap[H, W] {
	dst := NewVectorMap[H, W](src.NumValues())
	for h := range src.Handles() {
		v, _ := src.Get(h)
		dst.Insert(h, fn(v))
	}
	return dst
}

// MinMax returns the smallest and largest value in m. ok is false if m is empty.
func MinMax[H handle.Index, V cmp.Ordered](m AttributeMap[H, V]) (lo, hi V, ok bool) {
	for h := range m.Handles() {
		v, _ := m.Get(h)
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi, ok
}
