package halfedge

import (
	"fmt"

	"github.com/hupe1980/meshrecon/handle"
)

type link struct {
	from, to handle.HalfEdgeHandle
}

// facePlan is a validated face insertion. Building it never mutates the mesh.
type facePlan struct {
	vs      []handle.VertexHandle
	hs      []handle.HalfEdgeHandle
	isNew   []bool
	relinks []link
}

// AddFace inserts a face over vs in counter-clockwise order.
//
// Existing boundary half-edges between consecutive vertices are reused,
// missing edges are created. When a vertex already carries several
// disconnected fans, the boundary patches around it are re-linked so the new
// face closes the right gap. The call fails without touching the mesh if the
// face is degenerate, a vertex is not on the boundary, an edge already has
// a face on this side, or no free gap exists.
func (m *Mesh) AddFace(vs ...handle.VertexHandle) (handle.FaceHandle, error) {
	plan, err := m.planFace(vs)
	if err != nil {
		return handle.NoFace, err
	}
	return m.commitFace(plan), nil
}

// IsFaceInsertionValid reports whether AddFace(vs...) would succeed.
func (m *Mesh) IsFaceInsertionValid(vs ...handle.VertexHandle) bool {
	_, err := m.planFace(vs)
	return err == nil
}

func (m *Mesh) planFace(vs []handle.VertexHandle) (*facePlan, error) {
	n := len(vs)
	if n < 3 {
		return nil, fmt.Errorf("%w: got %d vertices", ErrDegenerateFace, n)
	}
	for i, v := range vs {
		if err := m.checkVertex(v); err != nil {
			return nil, err
		}
		for _, w := range vs[:i] {
			if v == w {
				return nil, fmt.Errorf("%w: vertex %s repeats", ErrDegenerateFace, v)
			}
		}
	}

	p := &facePlan{
		vs:    append([]handle.VertexHandle(nil), vs...),
		hs:    make([]handle.HalfEdgeHandle, n),
		isNew: make([]bool, n),
	}

	for i := range n {
		if !m.isBoundaryVertex(vs[i]) {
			return nil, fmt.Errorf("%w: complex vertex %s", ErrNonManifold, vs[i])
		}
		h := m.findHalfEdge(vs[i], vs[(i+1)%n])
		p.hs[i] = h
		p.isNew[i] = !h.IsValid()
		if !p.isNew[i] && !m.IsBoundaryHalfEdge(h) {
			return nil, fmt.Errorf("%w: complex edge %s-%s", ErrNonManifold, vs[i], vs[(i+1)%n])
		}
	}

	// Patch re-linking is simulated on an overlay of next pointers so a
	// failure leaves the mesh unchanged.
	overlay := make(map[handle.HalfEdgeHandle]handle.HalfEdgeHandle)
	next := func(h handle.HalfEdgeHandle) handle.HalfEdgeHandle {
		if n, ok := overlay[h]; ok {
			return n
		}
		return m.Next(h)
	}
	limit := m.halfEdges.NumUsed() + 1

	for i := range n {
		ii := (i + 1) % n
		if p.isNew[i] || p.isNew[ii] {
			continue
		}
		innerPrev, innerNext := p.hs[i], p.hs[ii]
		if next(innerPrev) == innerNext {
			continue
		}

		// Search a free gap between boundaryPrev and boundaryNext.
		boundaryPrev := m.Twin(innerNext)
		found := false
		for range limit {
			boundaryPrev = m.Twin(next(boundaryPrev))
			if m.IsBoundaryHalfEdge(boundaryPrev) {
				found = true
				break
			}
		}
		if !found || boundaryPrev == innerPrev {
			return nil, fmt.Errorf("%w: no free gap at vertex %s", ErrNonManifold, vs[ii])
		}
		boundaryNext := next(boundaryPrev)

		patchStart := next(innerPrev)
		patchEnd := m.prevWith(innerNext, next)

		for _, l := range []link{{boundaryPrev, patchStart}, {patchEnd, boundaryNext}, {innerPrev, innerNext}} {
			overlay[l.from] = l.to
			p.relinks = append(p.relinks, l)
		}
	}

	return p, nil
}

func (m *Mesh) commitFace(p *facePlan) handle.FaceHandle {
	n := len(p.vs)

	for _, l := range p.relinks {
		m.halfEdges.Ref(l.from).next = l.to
	}

	for i := range n {
		if p.isNew[i] {
			p.hs[i] = m.newEdge(p.vs[i], p.vs[(i+1)%n])
		}
	}

	f := m.faces.Push(face{edge: p.hs[n-1]})

	var cache []link
	needsAdjust := make([]bool, n)
	for i := range n {
		ii := (i + 1) % n
		v := p.vs[ii]
		innerPrev, innerNext := p.hs[i], p.hs[ii]

		id := 0
		if p.isNew[i] {
			id |= 1
		}
		if p.isNew[ii] {
			id |= 2
		}

		if id != 0 {
			outerPrev := m.Twin(innerNext)
			outerNext := m.Twin(innerPrev)
			vx := m.vertices.Ref(v)

			switch id {
			case 1: // prev is new, next is old
				boundaryPrev := m.Prev(innerNext)
				cache = append(cache, link{boundaryPrev, outerNext})
				vx.outgoing = outerNext
			case 2: // next is new, prev is old
				boundaryNext := m.Next(innerPrev)
				cache = append(cache, link{outerPrev, boundaryNext})
				vx.outgoing = boundaryNext
			case 3: // both are new
				if !vx.outgoing.IsValid() {
					vx.outgoing = outerNext
					cache = append(cache, link{outerPrev, outerNext})
				} else {
					boundaryNext := vx.outgoing
					boundaryPrev := m.Prev(boundaryNext)
					cache = append(cache, link{boundaryPrev, outerNext}, link{outerPrev, boundaryNext})
				}
			}

			cache = append(cache, link{innerPrev, innerNext})
		} else {
			needsAdjust[ii] = m.OutgoingHalfEdge(v) == innerNext
		}

		m.halfEdges.Ref(innerPrev).face = f
	}

	for _, l := range cache {
		m.halfEdges.Ref(l.from).next = l.to
	}

	for i, v := range p.vs {
		if needsAdjust[i] {
			m.adjustOutgoing(v)
		}
	}

	return f
}

// RemoveFace detaches f from its half-edges, turning them into boundary
// half-edges. Edges and vertices are kept; use RemoveWireEdges to drop
// edges that no longer touch any face.
func (m *Mesh) RemoveFace(f handle.FaceHandle) error {
	if !m.faces.Contains(f) {
		return fmt.Errorf("%w: face %s", ErrInvalidHandle, f)
	}

	var vs []handle.VertexHandle
	for h := range m.FaceHalfEdges(f) {
		m.halfEdges.Ref(h).face = handle.NoFace
		vs = append(vs, m.Target(h))
	}
	m.faces.Erase(f)

	for _, v := range vs {
		m.adjustOutgoing(v)
	}
	return nil
}

// RemoveWireEdges deletes every edge without a face on either side and every
// vertex left without edges by doing so. It returns the number of removed
// edges and vertices.
func (m *Mesh) RemoveWireEdges() (edges, vertices int) {
	for e := range m.Edges() {
		h0 := m.HalfEdgeOf(e)
		h1 := m.Twin(h0)
		if !m.IsBoundaryHalfEdge(h0) || !m.IsBoundaryHalfEdge(h1) {
			continue
		}
		for _, v := range m.removeEdge(h0, h1) {
			m.vertices.Erase(v)
			vertices++
		}
		edges++
	}
	return edges, vertices
}

// RemoveWireEdge deletes e, which must not have a face on either side.
// Vertices left without edges stay in the mesh as isolated vertices.
func (m *Mesh) RemoveWireEdge(e handle.EdgeHandle) error {
	if !m.ContainsEdge(e) {
		return fmt.Errorf("%w: edge %s", ErrInvalidHandle, e)
	}
	h0 := m.HalfEdgeOf(e)
	h1 := m.Twin(h0)
	if !m.IsBoundaryHalfEdge(h0) || !m.IsBoundaryHalfEdge(h1) {
		return fmt.Errorf("%w: edge %s", ErrNotWireEdge, e)
	}
	m.removeEdge(h0, h1)
	return nil
}

// removeEdge unlinks the boundary edge (h0, h1) and returns the vertices
// that became isolated.
func (m *Mesh) removeEdge(h0, h1 handle.HalfEdgeHandle) []handle.VertexHandle {
	v0, v1 := m.Target(h0), m.Target(h1)
	next0, next1 := m.Next(h0), m.Next(h1)
	prev0, prev1 := m.Prev(h0), m.Prev(h1)

	m.halfEdges.Ref(prev0).next = next1
	m.halfEdges.Ref(prev1).next = next0

	var isolated []handle.VertexHandle
	if m.OutgoingHalfEdge(v0) == h1 {
		if next0 == h1 {
			m.vertices.Ref(v0).outgoing = handle.NoHalfEdge
			isolated = append(isolated, v0)
		} else {
			m.vertices.Ref(v0).outgoing = next0
		}
	}
	if m.OutgoingHalfEdge(v1) == h0 {
		if next1 == h0 {
			m.vertices.Ref(v1).outgoing = handle.NoHalfEdge
			isolated = append(isolated, v1)
		} else {
			m.vertices.Ref(v1).outgoing = next1
		}
	}

	m.halfEdges.Erase(h0)
	m.halfEdges.Erase(h1)
	return isolated
}
