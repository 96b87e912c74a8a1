// Package halfedge implements a handle-indexed half-edge mesh.
//
// Every entity lives in an attrmap.StableVector, so handles stay valid until
// the entity itself is removed. Half-edges are allocated in twin pairs: edge e
// owns half-edges 2e and 2e+1. A half-edge without a face is a boundary
// half-edge.
//
// Topology-changing methods either apply completely or return an error and
// leave the mesh untouched. A Mesh is not safe for concurrent mutation.
package halfedge

import (
	"fmt"
	"iter"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/attrmap"
	"github.com/hupe1980/meshrecon/handle"
)

type halfEdge struct {
	target handle.VertexHandle
	twin   handle.HalfEdgeHandle
	next   handle.HalfEdgeHandle
	face   handle.FaceHandle
}

type vertex struct {
	pos      r3.Vec
	outgoing handle.HalfEdgeHandle
}

type face struct {
	edge handle.HalfEdgeHandle
}

// Mesh is a half-edge mesh.
type Mesh struct {
	vertices  *attrmap.StableVector[handle.VertexHandle, vertex]
	faces     *attrmap.StableVector[handle.FaceHandle, face]
	halfEdges *attrmap.StableVector[handle.HalfEdgeHandle, halfEdge]
}

// New creates an empty mesh.
func New() *Mesh {
	return &Mesh{
		vertices:  attrmap.NewStableVector[handle.VertexHandle, vertex](0),
		faces:     attrmap.NewStableVector[handle.FaceHandle, face](0),
		halfEdges: attrmap.NewStableVector[handle.HalfEdgeHandle, halfEdge](0),
	}
}

// AddVertex adds an isolated vertex at pos.
func (m *Mesh) AddVertex(pos r3.Vec) handle.VertexHandle {
	return m.vertices.Push(vertex{pos: pos, outgoing: handle.NoHalfEdge})
}

// NumVertices returns the number of live vertices.
func (m *Mesh) NumVertices() int { return m.vertices.NumUsed() }

// NumFaces returns the number of live faces.
func (m *Mesh) NumFaces() int { return m.faces.NumUsed() }

// NumEdges returns the number of live edges.
func (m *Mesh) NumEdges() int { return m.halfEdges.NumUsed() / 2 }

// NextVertexIndex is one past the largest vertex handle ever issued.
// Useful as capacity for dense attribute maps.
func (m *Mesh) NextVertexIndex() int { return int(m.vertices.NextHandle()) }

// NextFaceIndex is one past the largest face handle ever issued.
func (m *Mesh) NextFaceIndex() int { return int(m.faces.NextHandle()) }

// NextEdgeIndex is one past the largest edge handle ever issued.
func (m *Mesh) NextEdgeIndex() int { return int(m.halfEdges.NextHandle()) / 2 }

// ContainsVertex reports whether v is a live vertex.
func (m *Mesh) ContainsVertex(v handle.VertexHandle) bool { return m.vertices.Contains(v) }

// ContainsFace reports whether f is a live face.
func (m *Mesh) ContainsFace(f handle.FaceHandle) bool { return m.faces.Contains(f) }

// ContainsEdge reports whether e is a live edge.
func (m *Mesh) ContainsEdge(e handle.EdgeHandle) bool {
	return e.IsValid() && m.halfEdges.Contains(handle.HalfEdgeHandle(2*uint32(e)))
}

// Vertices yields all live vertex handles in ascending order.
func (m *Mesh) Vertices() iter.Seq[handle.VertexHandle] { return m.vertices.Handles() }

// Faces yields all live face handles in ascending order.
func (m *Mesh) Faces() iter.Seq[handle.FaceHandle] { return m.faces.Handles() }

// Edges yields all live edge handles in ascending order.
func (m *Mesh) Edges() iter.Seq[handle.EdgeHandle] {
	return func(yield func(handle.EdgeHandle) bool) {
		for h := range m.halfEdges.Handles() {
			if h&1 != 0 {
				continue
			}
			if !yield(handle.EdgeHandle(h / 2)) {
				return
			}
		}
	}
}

// HalfEdges yields all live half-edge handles in ascending order.
func (m *Mesh) HalfEdges() iter.Seq[handle.HalfEdgeHandle] { return m.halfEdges.Handles() }

// GetVertexPosition returns the position of v.
func (m *Mesh) GetVertexPosition(v handle.VertexHandle) r3.Vec { return m.vertices.Ref(v).pos }

// SetVertexPosition moves v to pos.
func (m *Mesh) SetVertexPosition(v handle.VertexHandle, pos r3.Vec) { m.vertices.Ref(v).pos = pos }

// Next returns the half-edge following h around its face or boundary loop.
func (m *Mesh) Next(h handle.HalfEdgeHandle) handle.HalfEdgeHandle { return m.halfEdges.Ref(h).next }

// Twin returns the oppositely oriented half-edge of h.
func (m *Mesh) Twin(h handle.HalfEdgeHandle) handle.HalfEdgeHandle { return m.halfEdges.Ref(h).twin }

// Target returns the vertex h points to.
func (m *Mesh) Target(h handle.HalfEdgeHandle) handle.VertexHandle { return m.halfEdges.Ref(h).target }

// Origin returns the vertex h starts at.
func (m *Mesh) Origin(h handle.HalfEdgeHandle) handle.VertexHandle { return m.Target(m.Twin(h)) }

// FaceOf returns the face left of h, or NoFace on the boundary.
func (m *Mesh) FaceOf(h handle.HalfEdgeHandle) handle.FaceHandle { return m.halfEdges.Ref(h).face }

// EdgeOf returns the edge h belongs to.
func (m *Mesh) EdgeOf(h handle.HalfEdgeHandle) handle.EdgeHandle { return handle.EdgeHandle(h / 2) }

// IsBoundaryHalfEdge reports whether h has no face.
func (m *Mesh) IsBoundaryHalfEdge(h handle.HalfEdgeHandle) bool { return !m.FaceOf(h).IsValid() }

// HalfEdgeOf returns the first half-edge of e.
func (m *Mesh) HalfEdgeOf(e handle.EdgeHandle) handle.HalfEdgeHandle { return handle.HalfEdgeHandle(2 * e) }

// FaceHalfEdge returns the seed half-edge of f.
func (m *Mesh) FaceHalfEdge(f handle.FaceHandle) handle.HalfEdgeHandle { return m.faces.Ref(f).edge }

// OutgoingHalfEdge returns the seed outgoing half-edge of v, or
// handle.NoHalfEdge for an isolated vertex.
func (m *Mesh) OutgoingHalfEdge(v handle.VertexHandle) handle.HalfEdgeHandle {
	return m.vertices.Ref(v).outgoing
}

// Prev returns the half-edge whose next is h.
func (m *Mesh) Prev(h handle.HalfEdgeHandle) handle.HalfEdgeHandle {
	return m.prevWith(h, m.Next)
}

// prevWith rotates around the origin of h using next until it finds the
// incoming half-edge that links to h.
func (m *Mesh) prevWith(h handle.HalfEdgeHandle, next func(handle.HalfEdgeHandle) handle.HalfEdgeHandle) handle.HalfEdgeHandle {
	o := h
	for {
		in := m.Twin(o)
		n := next(in)
		if n == h {
			return in
		}
		o = n
	}
}

// OutgoingHalfEdges yields the outgoing half-edges of v in rotation order.
func (m *Mesh) OutgoingHalfEdges(v handle.VertexHandle) iter.Seq[handle.HalfEdgeHandle] {
	return func(yield func(handle.HalfEdgeHandle) bool) {
		start := m.OutgoingHalfEdge(v)
		if !start.IsValid() {
			return
		}
		h := start
		for {
			// Read the successor first so callers may retarget h.
			n := m.Next(m.Twin(h))
			if !yield(h) {
				return
			}
			h = n
			if h == start {
				return
			}
		}
	}
}

// FaceHalfEdges yields the half-edges bounding f, starting at its seed.
func (m *Mesh) FaceHalfEdges(f handle.FaceHandle) iter.Seq[handle.HalfEdgeHandle] {
	return m.cycle(m.FaceHalfEdge(f))
}

func (m *Mesh) cycle(start handle.HalfEdgeHandle) iter.Seq[handle.HalfEdgeHandle] {
	return func(yield func(handle.HalfEdgeHandle) bool) {
		h := start
		for {
			if !yield(h) {
				return
			}
			h = m.Next(h)
			if h == start {
				return
			}
		}
	}
}

// GetVerticesOfFace returns the vertices of f in counter-clockwise order.
func (m *Mesh) GetVerticesOfFace(f handle.FaceHandle) []handle.VertexHandle {
	out := make([]handle.VertexHandle, 0, 3)
	for h := range m.FaceHalfEdges(f) {
		out = append(out, m.Target(h))
	}
	return out
}

// GetVertexPositionsOfFace returns the vertex positions of f in
// counter-clockwise order.
func (m *Mesh) GetVertexPositionsOfFace(f handle.FaceHandle) []r3.Vec {
	out := make([]r3.Vec, 0, 3)
	for h := range m.FaceHalfEdges(f) {
		out = append(out, m.GetVertexPosition(m.Target(h)))
	}
	return out
}

// GetEdgesOfFace returns the edges bounding f.
func (m *Mesh) GetEdgesOfFace(f handle.FaceHandle) []handle.EdgeHandle {
	out := make([]handle.EdgeHandle, 0, 3)
	for h := range m.FaceHalfEdges(f) {
		out = append(out, m.EdgeOf(h))
	}
	return out
}

// GetNeighboursOfFace returns the faces sharing an edge with f.
func (m *Mesh) GetNeighboursOfFace(f handle.FaceHandle) []handle.FaceHandle {
	out := make([]handle.FaceHandle, 0, 3)
	for h := range m.FaceHalfEdges(f) {
		if nf := m.FaceOf(m.Twin(h)); nf.IsValid() {
			out = append(out, nf)
		}
	}
	return out
}

func (m *Mesh) faceValence(f handle.FaceHandle) int {
	n := 0
	for range m.FaceHalfEdges(f) {
		n++
	}
	return n
}

// GetFacesOfEdge returns the faces on both sides of e. Missing faces are
// handle.NoFace.
func (m *Mesh) GetFacesOfEdge(e handle.EdgeHandle) [2]handle.FaceHandle {
	h := m.HalfEdgeOf(e)
	return [2]handle.FaceHandle{m.FaceOf(h), m.FaceOf(m.Twin(h))}
}

// NumAdjacentFaces returns how many faces (0, 1 or 2) touch e.
func (m *Mesh) NumAdjacentFaces(e handle.EdgeHandle) int {
	n := 0
	for _, f := range m.GetFacesOfEdge(e) {
		if f.IsValid() {
			n++
		}
	}
	return n
}

// IsBorderEdge reports whether e has fewer than two faces.
func (m *Mesh) IsBorderEdge(e handle.EdgeHandle) bool { return m.NumAdjacentFaces(e) < 2 }

// GetVerticesOfEdge returns the origin and target of the canonical half-edge of e.
func (m *Mesh) GetVerticesOfEdge(e handle.EdgeHandle) [2]handle.VertexHandle {
	h := m.HalfEdgeOf(e)
	return [2]handle.VertexHandle{m.Origin(h), m.Target(h)}
}

// GetEdgesOfVertex returns the edges incident to v.
func (m *Mesh) GetEdgesOfVertex(v handle.VertexHandle) []handle.EdgeHandle {
	var out []handle.EdgeHandle
	for h := range m.OutgoingHalfEdges(v) {
		out = append(out, m.EdgeOf(h))
	}
	return out
}

// GetFacesOfVertex returns the faces incident to v.
func (m *Mesh) GetFacesOfVertex(v handle.VertexHandle) []handle.FaceHandle {
	var out []handle.FaceHandle
	for h := range m.OutgoingHalfEdges(v) {
		if f := m.FaceOf(h); f.IsValid() {
			out = append(out, f)
		}
	}
	return out
}

// GetNeighboursOfVertex returns the vertices connected to v by an edge.
func (m *Mesh) GetNeighboursOfVertex(v handle.VertexHandle) []handle.VertexHandle {
	var out []handle.VertexHandle
	for h := range m.OutgoingHalfEdges(v) {
		out = append(out, m.Target(h))
	}
	return out
}

// Valence returns the number of edges incident to v.
func (m *Mesh) Valence(v handle.VertexHandle) int {
	n := 0
	for range m.OutgoingHalfEdges(v) {
		n++
	}
	return n
}

// IsBorderVertex reports whether v has an outgoing boundary half-edge.
func (m *Mesh) IsBorderVertex(v handle.VertexHandle) bool {
	h := m.OutgoingHalfEdge(v)
	return h.IsValid() && m.IsBoundaryHalfEdge(h)
}

// isBoundaryVertex also counts isolated vertices, which can still take faces.
func (m *Mesh) isBoundaryVertex(v handle.VertexHandle) bool {
	h := m.OutgoingHalfEdge(v)
	return !h.IsValid() || m.IsBoundaryHalfEdge(h)
}

func (m *Mesh) findHalfEdge(from, to handle.VertexHandle) handle.HalfEdgeHandle {
	for h := range m.OutgoingHalfEdges(from) {
		if m.Target(h) == to {
			return h
		}
	}
	return handle.NoHalfEdge
}

// GetEdgeBetween returns the edge connecting a and b, if any.
func (m *Mesh) GetEdgeBetween(a, b handle.VertexHandle) (handle.EdgeHandle, bool) {
	h := m.findHalfEdge(a, b)
	if !h.IsValid() {
		return handle.NoEdge, false
	}
	return m.EdgeOf(h), true
}

// adjustOutgoing makes a boundary half-edge the seed of v if v has one.
func (m *Mesh) adjustOutgoing(v handle.VertexHandle) {
	for h := range m.OutgoingHalfEdges(v) {
		if m.IsBoundaryHalfEdge(h) {
			m.vertices.Ref(v).outgoing = h
			return
		}
	}
}

func (m *Mesh) newEdge(from, to handle.VertexHandle) handle.HalfEdgeHandle {
	h0 := m.halfEdges.NextHandle()
	h1 := h0 + 1
	m.halfEdges.Push(halfEdge{target: to, twin: h1, next: handle.NoHalfEdge, face: handle.NoFace})
	m.halfEdges.Push(halfEdge{target: from, twin: h0, next: handle.NoHalfEdge, face: handle.NoFace})
	return h0
}

func (m *Mesh) checkVertex(v handle.VertexHandle) error {
	if !m.vertices.Contains(v) {
		return fmt.Errorf("%w: vertex %s", ErrInvalidHandle, v)
	}
	return nil
}
