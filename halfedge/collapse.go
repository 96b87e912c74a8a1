package halfedge

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/handle"
)

// CollapseResult describes what CollapseEdge changed.
type CollapseResult struct {
	Survivor     handle.VertexHandle
	Removed      handle.VertexHandle
	RemovedFaces []handle.FaceHandle
	RemovedEdges []handle.EdgeHandle
}

// IsCollapsable reports whether e can be collapsed without breaking the mesh.
//
// Both adjacent faces must be triangles and at least one must exist. The
// collapse is refused if it would pinch two boundaries together, leave a
// dangling triangle, or produce duplicate faces (the one-rings of both
// endpoints may only share the two opposite vertices).
func (m *Mesh) IsCollapsable(e handle.EdgeHandle) bool {
	if !m.ContainsEdge(e) {
		return false
	}
	return m.isCollapseOK(m.HalfEdgeOf(e))
}

func (m *Mesh) isCollapseOK(v0v1 handle.HalfEdgeHandle) bool {
	v1v0 := m.Twin(v0v1)
	v0 := m.Target(v1v0)
	v1 := m.Target(v0v1)

	f01, f10 := m.FaceOf(v0v1), m.FaceOf(v1v0)
	if !f01.IsValid() && !f10.IsValid() {
		return false
	}
	if f01.IsValid() && m.faceValence(f01) != 3 {
		return false
	}
	if f10.IsValid() && m.faceValence(f10) != 3 {
		return false
	}

	// The other two edges of an adjacent triangle must not both be boundary.
	vl, vr := handle.NoVertex, handle.NoVertex
	if f01.IsValid() {
		h1 := m.Next(v0v1)
		h2 := m.Next(h1)
		vl = m.Target(h1)
		if m.IsBoundaryHalfEdge(m.Twin(h1)) && m.IsBoundaryHalfEdge(m.Twin(h2)) {
			return false
		}
	}
	if f10.IsValid() {
		h1 := m.Next(v1v0)
		h2 := m.Next(h1)
		vr = m.Target(h1)
		if m.IsBoundaryHalfEdge(m.Twin(h1)) && m.IsBoundaryHalfEdge(m.Twin(h2)) {
			return false
		}
	}
	if vl == vr {
		return false
	}

	// An interior edge between two boundary vertices joins two boundaries.
	if m.IsBorderVertex(v0) && m.IsBorderVertex(v1) && f01.IsValid() && f10.IsValid() {
		return false
	}

	// Link condition.
	ring := make(map[handle.VertexHandle]struct{})
	for _, n := range m.GetNeighboursOfVertex(v0) {
		ring[n] = struct{}{}
	}
	for _, n := range m.GetNeighboursOfVertex(v1) {
		if _, ok := ring[n]; ok && n != vl && n != vr {
			return false
		}
	}

	// Faces (v0, vl, vr) and (v1, vl, vr) would become duplicates.
	if vl.IsValid() && vr.IsValid() {
		if h := m.findHalfEdge(vl, vr); h.IsValid() {
			touches0, touches1 := false, false
			for _, side := range []handle.HalfEdgeHandle{h, m.Twin(h)} {
				if !m.IsBoundaryHalfEdge(side) {
					apex := m.Target(m.Next(side))
					touches0 = touches0 || apex == v0
					touches1 = touches1 || apex == v1
				}
			}
			if touches0 && touches1 {
				return false
			}
		}
	}

	return true
}

// CollapseEdge merges the endpoints of e into the target of its canonical
// half-edge, placed at the midpoint.
func (m *Mesh) CollapseEdge(e handle.EdgeHandle) (CollapseResult, error) {
	if !m.IsCollapsable(e) {
		return CollapseResult{}, fmt.Errorf("%w: %s", ErrNotCollapsable, e)
	}
	vs := m.GetVerticesOfEdge(e)
	mid := r3.Scale(0.5, r3.Add(m.GetVertexPosition(vs[0]), m.GetVertexPosition(vs[1])))
	return m.collapse(m.HalfEdgeOf(e), mid), nil
}

// CollapseEdgeTo is CollapseEdge with a caller-chosen survivor position.
func (m *Mesh) CollapseEdgeTo(e handle.EdgeHandle, pos r3.Vec) (CollapseResult, error) {
	if !m.IsCollapsable(e) {
		return CollapseResult{}, fmt.Errorf("%w: %s", ErrNotCollapsable, e)
	}
	return m.collapse(m.HalfEdgeOf(e), pos), nil
}

func (m *Mesh) collapse(h handle.HalfEdgeHandle, pos r3.Vec) CollapseResult {
	h1 := m.Next(h)
	o := m.Twin(h)
	o1 := m.Next(o)

	res := CollapseResult{
		Survivor:     m.Target(h),
		Removed:      m.Target(o),
		RemovedEdges: []handle.EdgeHandle{m.EdgeOf(h)},
	}
	for _, f := range []handle.FaceHandle{m.FaceOf(h), m.FaceOf(o)} {
		if f.IsValid() {
			res.RemovedFaces = append(res.RemovedFaces, f)
		}
	}

	m.collapseEdge(h)

	// Remove the degenerate two-edge loops left behind.
	if m.Next(m.Next(h1)) == h1 {
		res.RemovedEdges = append(res.RemovedEdges, m.collapseLoop(m.Next(h1)))
	}
	if m.Next(m.Next(o1)) == o1 {
		res.RemovedEdges = append(res.RemovedEdges, m.collapseLoop(o1))
	}

	m.SetVertexPosition(res.Survivor, pos)
	return res
}

func (m *Mesh) collapseEdge(h handle.HalfEdgeHandle) {
	hn := m.Next(h)
	hp := m.Prev(h)

	o := m.Twin(h)
	on := m.Next(o)
	op := m.Prev(o)

	fh, fo := m.FaceOf(h), m.FaceOf(o)
	vh, vo := m.Target(h), m.Target(o)

	var incoming []handle.HalfEdgeHandle
	for out := range m.OutgoingHalfEdges(vo) {
		incoming = append(incoming, m.Twin(out))
	}
	for _, in := range incoming {
		m.halfEdges.Ref(in).target = vh
	}

	m.halfEdges.Ref(hp).next = hn
	m.halfEdges.Ref(op).next = on

	if fh.IsValid() {
		m.faces.Ref(fh).edge = hn
	}
	if fo.IsValid() {
		m.faces.Ref(fo).edge = on
	}

	if m.OutgoingHalfEdge(vh) == o {
		m.vertices.Ref(vh).outgoing = hn
	}
	m.adjustOutgoing(vh)

	m.vertices.Erase(vo)
	m.halfEdges.Erase(h)
	m.halfEdges.Erase(o)
}

// collapseLoop removes the two-edge loop starting at h0, keeping the edge of
// next(h0) and handing it the face on the outer side of h0.
func (m *Mesh) collapseLoop(h0 handle.HalfEdgeHandle) handle.EdgeHandle {
	h1 := m.Next(h0)
	o0 := m.Twin(h0)
	o1 := m.Twin(h1)

	v0, v1 := m.Target(h0), m.Target(h1)
	fh, fo := m.FaceOf(h0), m.FaceOf(o0)

	nextO0 := m.Next(o0)
	prevO0 := m.Prev(o0)

	m.halfEdges.Ref(h1).next = nextO0
	m.halfEdges.Ref(prevO0).next = h1
	m.halfEdges.Ref(h1).face = fo

	m.vertices.Ref(v0).outgoing = h1
	m.adjustOutgoing(v0)
	m.vertices.Ref(v1).outgoing = o1
	m.adjustOutgoing(v1)

	if fo.IsValid() && m.faces.Ref(fo).edge == o0 {
		m.faces.Ref(fo).edge = h1
	}

	if fh.IsValid() {
		m.faces.Erase(fh)
	}
	m.halfEdges.Erase(h0)
	m.halfEdges.Erase(o0)
	return m.EdgeOf(h0)
}
