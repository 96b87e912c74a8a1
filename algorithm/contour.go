package algorithm

import (
	"fmt"

	"github.com/hupe1980/meshrecon/halfedge"
	"github.com/hupe1980/meshrecon/handle"
	"github.com/hupe1980/meshrecon/internal/visited"
)

// RegionPredicate classifies faces as inside or outside a region. It is
// never called with handle.NoFace, which is always outside.
type RegionPredicate func(f handle.FaceHandle) bool

// AllFaces is the region of every live face. Its contours are the borders of
// the mesh.
func AllFaces(handle.FaceHandle) bool { return true }

// WalkContour walks once around the contour of the region inside that passes
// through e, keeping the region on the left. For every contour edge it calls
// visit with the vertex the edge is entered from and the edge itself,
// starting with e.
//
// e must have the region on exactly one side, otherwise ErrNotContourEdge is
// returned.
func WalkContour(m *halfedge.Mesh, e handle.EdgeHandle, inside RegionPredicate, visit func(handle.VertexHandle, handle.EdgeHandle)) error {
	if !m.ContainsEdge(e) {
		return fmt.Errorf("%w: %s", halfedge.ErrInvalidHandle, e)
	}
	in := func(f handle.FaceHandle) bool { return f.IsValid() && inside(f) }

	start := m.HalfEdgeOf(e)
	switch a, b := in(m.FaceOf(start)), in(m.FaceOf(m.Twin(start))); {
	case a && !b:
	case b && !a:
		start = m.Twin(start)
	default:
		return fmt.Errorf("%w: %s", ErrNotContourEdge, e)
	}

	// A contour never uses a half-edge twice.
	limit := 2 * m.NextEdgeIndex()
	h := start
	for range limit {
		visit(m.Origin(h), m.EdgeOf(h))

		// Rotate around the target until the next half-edge leaves the region.
		c := m.Next(h)
		for in(m.FaceOf(m.Twin(c))) {
			c = m.Next(m.Twin(c))
		}
		h = c
		if h == start {
			return nil
		}
	}
	return &halfedge.IntegrityError{Entity: "halfedge", Handle: uint32(start), Reason: "contour does not close"}
}

// CalcContourEdges returns the edges of the mesh border through e in walking
// order.
func CalcContourEdges(m *halfedge.Mesh, e handle.EdgeHandle) ([]handle.EdgeHandle, error) {
	var out []handle.EdgeHandle
	err := WalkContour(m, e, AllFaces, func(_ handle.VertexHandle, ce handle.EdgeHandle) {
		out = append(out, ce)
	})
	return out, err
}

// CalcContourVertices returns the vertices of the mesh border through e in
// walking order.
func CalcContourVertices(m *halfedge.Mesh, e handle.EdgeHandle) ([]handle.VertexHandle, error) {
	var out []handle.VertexHandle
	err := WalkContour(m, e, AllFaces, func(v handle.VertexHandle, _ handle.EdgeHandle) {
		out = append(out, v)
	})
	return out, err
}

// FindContours returns every contour of the region inside, each as its edges
// in walking order. Contours are ordered by their lowest edge handle.
func FindContours(m *halfedge.Mesh, inside RegionPredicate) ([][]handle.EdgeHandle, error) {
	in := func(f handle.FaceHandle) bool { return f.IsValid() && inside(f) }
	seen := visited.New[handle.EdgeHandle](m.NextEdgeIndex())

	var contours [][]handle.EdgeHandle
	for e := range m.Edges() {
		h := m.HalfEdgeOf(e)
		if seen.Visited(e) || in(m.FaceOf(h)) == in(m.FaceOf(m.Twin(h))) {
			continue
		}
		var contour []handle.EdgeHandle
		err := WalkContour(m, e, inside, func(_ handle.VertexHandle, ce handle.EdgeHandle) {
			seen.Visit(ce)
			contour = append(contour, ce)
		})
		if err != nil {
			return nil, err
		}
		contours = append(contours, contour)
	}
	return contours, nil
}

// BoundaryLoops returns the cycles of faceless half-edges, each in next
// order. Loops are ordered by their lowest half-edge handle.
//
// Edges without any face (left behind by RemoveFace) take part in the loops;
// call RemoveWireEdges first to get the borders of the remaining surface.
func BoundaryLoops(m *halfedge.Mesh) [][]handle.HalfEdgeHandle {
	seen := visited.New[handle.HalfEdgeHandle](2 * m.NextEdgeIndex())
	limit := 2 * m.NextEdgeIndex()

	var loops [][]handle.HalfEdgeHandle
	for h := range m.HalfEdges() {
		if !m.IsBoundaryHalfEdge(h) || seen.Visited(h) {
			continue
		}
		var loop []handle.HalfEdgeHandle
		for c := h; seen.Visit(c) && len(loop) < limit; c = m.Next(c) {
			loop = append(loop, c)
		}
		loops = append(loops, loop)
	}
	return loops
}
