package algorithm

import (
	"github.com/hupe1980/meshrecon/halfedge"
	"github.com/hupe1980/meshrecon/handle"
)

// NaiveFillSmallHoles closes every boundary loop of at most maxEdges edges
// with a triangle fan and returns the number of loops closed.
//
// The fan apex is the first loop vertex, in loop order, whose diagonals do
// not exist yet. Loops that visit a vertex twice or have no such apex stay
// open; so do loops with more than maxEdges edges.
func NaiveFillSmallHoles(m *halfedge.Mesh, maxEdges int) int {
	filled := 0
	for _, loop := range BoundaryLoops(m) {
		// Earlier fills may have re-linked the loop, so walk it again.
		vs, ok := loopVertices(m, loop[0], maxEdges)
		if !ok || len(vs) < 3 || !distinct(vs) {
			continue
		}
		apex, ok := fanApex(m, vs)
		if !ok {
			continue
		}
		if fillFan(m, rotate(vs, apex)) {
			filled++
		}
	}
	return filled
}

// loopVertices returns the origins of the boundary loop through h, or false
// if the loop has more than maxEdges edges.
func loopVertices(m *halfedge.Mesh, h handle.HalfEdgeHandle, maxEdges int) ([]handle.VertexHandle, bool) {
	if !m.IsBoundaryHalfEdge(h) {
		return nil, false
	}
	var vs []handle.VertexHandle
	for c := h; ; c = m.Next(c) {
		if len(vs) == maxEdges {
			return nil, false
		}
		vs = append(vs, m.Origin(c))
		if m.Next(c) == h {
			return vs, true
		}
	}
}

func distinct(vs []handle.VertexHandle) bool {
	seen := make(map[handle.VertexHandle]struct{}, len(vs))
	for _, v := range vs {
		if _, dup := seen[v]; dup {
			return false
		}
		seen[v] = struct{}{}
	}
	return true
}

func fanApex(m *halfedge.Mesh, vs []handle.VertexHandle) (int, bool) {
	n := len(vs)
	for k := range n {
		ok := true
		for i := 2; i <= n-2 && ok; i++ {
			if _, exists := m.GetEdgeBetween(vs[k], vs[(k+i)%n]); exists {
				ok = false
			}
		}
		if ok {
			return k, true
		}
	}
	return 0, false
}

func rotate(vs []handle.VertexHandle, k int) []handle.VertexHandle {
	out := make([]handle.VertexHandle, 0, len(vs))
	out = append(out, vs[k:]...)
	return append(out, vs[:k]...)
}

// fillFan adds the triangles (vs[0], vs[i], vs[i+1]). If the mesh rejects
// one, the triangles and diagonals added so far are removed again.
func fillFan(m *halfedge.Mesh, vs []handle.VertexHandle) bool {
	added := make([]handle.FaceHandle, 0, len(vs)-2)
	var created []handle.EdgeHandle
	for i := 1; i+1 < len(vs); i++ {
		firstEdge := handle.EdgeHandle(m.NextEdgeIndex())
		f, err := m.AddFace(vs[0], vs[i], vs[i+1])
		if err != nil {
			for _, af := range added {
				_ = m.RemoveFace(af)
			}
			for _, e := range created {
				_ = m.RemoveWireEdge(e)
			}
			return false
		}
		for e := firstEdge; int(e) < m.NextEdgeIndex(); e++ {
			created = append(created, e)
		}
		added = append(added, f)
	}
	return true
}
