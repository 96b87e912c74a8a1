package halfedge

import (
	"fmt"

	"github.com/hupe1980/meshrecon/handle"
)

// IsFlippable reports whether e borders exactly two triangles whose opposite
// vertices are distinct and not yet connected.
func (m *Mesh) IsFlippable(e handle.EdgeHandle) bool {
	if !m.ContainsEdge(e) || m.IsBorderEdge(e) {
		return false
	}
	a0 := m.HalfEdgeOf(e)
	b0 := m.Twin(a0)
	if m.faceValence(m.FaceOf(a0)) != 3 || m.faceValence(m.FaceOf(b0)) != 3 {
		return false
	}

	ah := m.Target(m.Next(a0))
	bh := m.Target(m.Next(b0))
	if ah == bh {
		return false
	}
	return !m.findHalfEdge(ah, bh).IsValid()
}

// FlipEdge replaces e by the other diagonal of its two adjacent triangles.
// The edge keeps its handle.
func (m *Mesh) FlipEdge(e handle.EdgeHandle) error {
	if !m.IsFlippable(e) {
		return fmt.Errorf("%w: %s", ErrNotFlippable, e)
	}

	a0 := m.HalfEdgeOf(e)
	b0 := m.Twin(a0)
	a1 := m.Next(a0)
	a2 := m.Next(a1)
	b1 := m.Next(b0)
	b2 := m.Next(b1)

	va0, va1 := m.Target(a0), m.Target(a1)
	vb0, vb1 := m.Target(b0), m.Target(b1)
	fa, fb := m.FaceOf(a0), m.FaceOf(b0)

	set := func(h, next handle.HalfEdgeHandle) { m.halfEdges.Ref(h).next = next }

	m.halfEdges.Ref(a0).target = va1
	m.halfEdges.Ref(b0).target = vb1

	set(a0, a2)
	set(a2, b1)
	set(b1, a0)

	set(b0, b2)
	set(b2, a1)
	set(a1, b0)

	m.halfEdges.Ref(a1).face = fb
	m.halfEdges.Ref(b1).face = fa

	m.faces.Ref(fa).edge = a0
	m.faces.Ref(fb).edge = b0

	if m.OutgoingHalfEdge(va0) == b0 {
		m.vertices.Ref(va0).outgoing = a1
	}
	if m.OutgoingHalfEdge(vb0) == a0 {
		m.vertices.Ref(vb0).outgoing = b1
	}
	return nil
}
