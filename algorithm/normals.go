package algorithm

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/attrmap"
	"github.com/hupe1980/meshrecon/geometry"
	"github.com/hupe1980/meshrecon/halfedge"
	"github.com/hupe1980/meshrecon/handle"
)

// NormalSource estimates a surface normal at an arbitrary position.
// *reconstruction.Surface satisfies it.
type NormalSource interface {
	Normal(p r3.Vec) r3.Vec
}

var up = r3.Vec{Z: 1}

// FaceNormal returns the unit normal of f computed from its first three
// vertices, or the zero vector for a degenerate face.
func FaceNormal(m *halfedge.Mesh, f handle.FaceHandle) r3.Vec {
	ps := m.GetVertexPositionsOfFace(f)
	if len(ps) < 3 {
		return r3.Vec{}
	}
	return geometry.TriangleNormal(ps[0], ps[1], ps[2])
}

// FaceArea returns the area of f, fanning polygons from their first vertex.
func FaceArea(m *halfedge.Mesh, f handle.FaceHandle) float64 {
	ps := m.GetVertexPositionsOfFace(f)
	var a float64
	for i := 1; i+1 < len(ps); i++ {
		a += geometry.TriangleArea(ps[0], ps[i], ps[i+1])
	}
	return a
}

// CalcFaceNormals returns the unit normal of every face. Degenerate faces
// get +Z.
func CalcFaceNormals(m *halfedge.Mesh) *attrmap.VectorMap[handle.FaceHandle, r3.Vec] {
	return attrmap.FromFunc(m.Faces(), m.NextFaceIndex(), func(f handle.FaceHandle) r3.Vec {
		return geometry.Normalize(FaceNormal(m, f), up)
	})
}

// CalcFaceAreas returns the area of every face.
func CalcFaceAreas(m *halfedge.Mesh) *attrmap.VectorMap[handle.FaceHandle, float64] {
	return attrmap.FromFunc(m.Faces(), m.NextFaceIndex(), func(f handle.FaceHandle) float64 {
		return FaceArea(m, f)
	})
}

// CalcVertexNormals returns an area weighted average of the normals of the
// faces around every vertex. Vertices without faces, or whose faces cancel
// out, fall back to the normal of fallback at their position, or +Z if
// fallback is nil.
func CalcVertexNormals(m *halfedge.Mesh, faceNormals attrmap.AttributeMap[handle.FaceHandle, r3.Vec], fallback NormalSource) *attrmap.VectorMap[handle.VertexHandle, r3.Vec] {
	return attrmap.FromFunc(m.Vertices(), m.NextVertexIndex(), func(v handle.VertexHandle) r3.Vec {
		var sum r3.Vec
		for _, f := range m.GetFacesOfVertex(v) {
			n, ok := faceNormals.Get(f)
			if !ok {
				n = FaceNormal(m, f)
			}
			sum = r3.Add(sum, r3.Scale(FaceArea(m, f), n))
		}
		if r3.Norm(sum) > 1e-12 {
			return r3.Unit(sum)
		}
		if fallback != nil {
			return geometry.Normalize(fallback.Normal(m.GetVertexPosition(v)), up)
		}
		return up
	})
}
