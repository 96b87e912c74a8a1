package algorithm

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/geometry"
	"github.com/hupe1980/meshrecon/halfedge"
	"github.com/hupe1980/meshrecon/handle"
)

// flipMinCos bounds the dihedral angle across an edge that may be flipped.
var flipMinCos = math.Cos(2 * math.Pi / 180)

// OptimizeByFlipping flips interior edges between nearly coplanar triangles
// whenever the other diagonal yields a larger minimum angle. It sweeps all
// edges up to maxIterations times, stopping after a sweep without flips, and
// returns the number of flips.
func OptimizeByFlipping(m *halfedge.Mesh, maxIterations int) int {
	total := 0
	for range maxIterations {
		flips := 0
		for e := range m.Edges() {
			if shouldFlip(m, e) && m.FlipEdge(e) == nil {
				flips++
			}
		}
		total += flips
		if flips == 0 {
			break
		}
	}
	return total
}

func shouldFlip(m *halfedge.Mesh, e handle.EdgeHandle) bool {
	if !m.IsFlippable(e) {
		return false
	}
	h := m.HalfEdgeOf(e)
	o := m.Twin(h)
	p := m.GetVertexPosition(m.Target(h))
	q := m.GetVertexPosition(m.Target(o))
	a := m.GetVertexPosition(m.Target(m.Next(h)))
	b := m.GetVertexPosition(m.Target(m.Next(o)))

	n1 := geometry.TriangleNormal(q, p, a)
	n2 := geometry.TriangleNormal(p, q, b)
	if r3.Dot(n1, n2) < flipMinCos {
		return false
	}
	m1 := geometry.TriangleNormal(b, a, q)
	m2 := geometry.TriangleNormal(a, b, p)
	if r3.Dot(m1, m2) < flipMinCos || r3.Dot(m1, n1) < flipMinCos {
		return false
	}

	before := math.Min(geometry.MinTriangleAngle(q, p, a), geometry.MinTriangleAngle(p, q, b))
	after := math.Min(geometry.MinTriangleAngle(b, a, q), geometry.MinTriangleAngle(a, b, p))
	return after > before+1e-9
}
