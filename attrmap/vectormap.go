package attrmap

import (
	"iter"

	"github.com/hupe1980/meshrecon/handle"
)

// Compile time check to ensure VectorMap satisfies the AttributeMap interface.
var _ AttributeMap[handle.FaceHandle, float64] = (*VectorMap[handle.FaceHandle, float64])(nil)

// VectorMap is a dense AttributeMap.
type VectorMap[H handle.Index, V any] struct {
	values     *StableVector[H, V]
	def        V
	hasDefault bool
}

// NewVectorMap creates an empty dense map with room for capacity values.
func NewVectorMap[H handle.Index, V any](capacity int) *VectorMap[H, V] {
	return &VectorMap[H, V]{values: NewStableVector[H, V](capacity)}
}

// NewVectorMapWithDefault creates a dense map whose At returns def for
// missing keys.
func NewVectorMapWithDefault[H handle.Index, V any](capacity int, def V) *VectorMap[H, V] {
	m := NewVectorMap[H, V](capacity)
	m.def = def
	m.hasDefault = true
	return m
}

// ContainsKey reports whether h has a value.
func (m *VectorMap[H, V]) ContainsKey(h H) bool { return m.values.Contains(h) }

// Insert stores v for h and returns the previous value, if any.
func (m *VectorMap[H, V]) Insert(h H, v V) (V, bool) {
	prev, ok := m.values.Get(h)
	m.values.Set(h, v)
	return prev, ok
}

// Remove deletes the value of h and returns it, if any.
func (m *VectorMap[H, V]) Remove(h H) (V, bool) {
	prev, ok := m.values.Get(h)
	if ok {
		m.values.Erase(h)
	}
	return prev, ok
}

// Clear removes all values.
func (m *VectorMap[H, V]) Clear() { m.values.Clear() }

// Get returns the value of h.
func (m *VectorMap[H, V]) Get(h H) (V, bool) { return m.values.Get(h) }

// GetPtr returns a pointer to the value of h, or nil.
func (m *VectorMap[H, V]) GetPtr(h H) *V { return m.values.GetPtr(h) }

// NumValues returns the number of stored values.
func (m *VectorMap[H, V]) NumValues() int { return m.values.NumUsed() }

// Handles yields the keys in ascending order.
func (m *VectorMap[H, V]) Handles() iter.Seq[H] { return m.values.Handles() }

// At returns the value for h, falling back to the default value (or the
// zero value when the map has none).
func (m *VectorMap[H, V]) At(h H) V {
	if v, ok := m.values.Get(h); ok {
		return v
	}
	return m.def
}

// HasDefault reports whether the map was created with a default value.
func (m *VectorMap[H, V]) HasDefault() bool { return m.hasDefault }
