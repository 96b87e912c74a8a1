package attrmap

import (
	"iter"
	"maps"
	"slices"

	"github.com/hupe1980/meshrecon/handle"
)

// Compile time check to ensure HashMap satisfies the AttributeMap interface.
var _ AttributeMap[handle.EdgeHandle, float64] = (*HashMap[handle.EdgeHandle, float64])(nil)

// HashMap is a sparse AttributeMap.
//
// Values are boxed so GetPtr can hand out stable pointers.
type HashMap[H handle.Index, V any] struct {
	values map[H]*V
}

// NewHashMap creates an empty sparse map.
func NewHashMap[H handle.Index, V any]() *HashMap[H, V] {
	return &HashMap[H, V]{values: make(map[H]*V)}
}

// ContainsKey reports whether h has a value.
func (m *HashMap[H, V]) ContainsKey(h H) bool {
	_, ok := m.values[h]
	return ok
}

// Insert stores v for h and returns the previous value, if any.
func (m *HashMap[H, V]) Insert(h H, v V) (V, bool) {
	if p, ok := m.values[h]; ok {
		prev := *p
		*p = v
		return prev, true
	}
	m.values[h] = &v
	var zero V
	return zero, false
}

// Remove deletes the value of h and returns it, if any.
func (m *HashMap[H, V]) Remove(h H) (V, bool) {
	p, ok := m.values[h]
	if !ok {
		var zero V
		return zero, false
	}
	delete(m.values, h)
	return *p, true
}

// Clear removes all values.
func (m *HashMap[H, V]) Clear() { clear(m.values) }

// Get returns the value of h.
func (m *HashMap[H, V]) Get(h H) (V, bool) {
	p, ok := m.values[h]
	if !ok {
		var zero V
		return zero, false
	}
	return *p, true
}

// GetPtr returns a pointer to the value of h, or nil.
func (m *HashMap[H, V]) GetPtr(h H) *V { return m.values[h] }

// NumValues returns the number of stored values.
func (m *HashMap[H, V]) NumValues() int { return len(m.values) }

// Handles yields the keys in ascending order. The key set is snapshotted
// when iteration starts; keys removed meanwhile are skipped.
func (m *HashMap[H, V]) Handles() iter.Seq[H] {
	return func(yield func(H) bool) {
		for _, h := range slices.Sorted(maps.Keys(m.values)) {
			if _, ok := m.values[h]; !ok {
				continue
			}
			if !yield(h) {
				return
			}
		}
	}
}
