package algorithm_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/algorithm"
	"github.com/hupe1980/meshrecon/testutil"
)

func TestCalcFaceNormals_House(t *testing.T) {
	m, _ := testutil.House(2)
	normals := algorithm.CalcFaceNormals(m)
	require.Equal(t, m.NumFaces(), normals.NumValues())

	assert.Equal(t, r3.Vec{Y: -1}, normals.At(0))
	assert.Equal(t, r3.Vec{Y: -1}, normals.At(1))

	// Every normal points away from the house center.
	center := r3.Vec{X: 1, Y: 1.2, Z: 1}
	for f := range m.Faces() {
		c := r3.Vec{}
		for _, q := range m.GetVertexPositionsOfFace(f) {
			c = r3.Add(c, r3.Scale(1.0/3, q))
		}
		assert.Positive(t, r3.Dot(normals.At(f), r3.Sub(c, center)), "face %s", f)
	}

	areas := algorithm.CalcFaceAreas(m)
	assert.InDelta(t, 2.0, areas.At(0), 1e-12)
	total := 0.0
	for f := range m.Faces() {
		total += areas.At(f)
	}
	// Five square sides plus four roof triangles with base 2 and height sqrt(2).
	assert.InDelta(t, 5*4+4*0.5*2*math.Sqrt2, total, 1e-9)
}

func TestCalcVertexNormals(t *testing.T) {
	t.Run("Plane", func(t *testing.T) {
		m := testutil.PlaneGrid(3)
		normals := algorithm.CalcVertexNormals(m, algorithm.CalcFaceNormals(m), nil)
		for v := range m.Vertices() {
			assert.InDelta(t, 1, normals.At(v).Z, 1e-12, "vertex %s", v)
		}
	})

	t.Run("Fallback", func(t *testing.T) {
		m := testutil.PlaneGrid(1)
		lone := m.AddVertex(r3.Vec{X: 5})
		faceNormals := algorithm.CalcFaceNormals(m)

		normals := algorithm.CalcVertexNormals(m, faceNormals, constNormal{X: 2})
		assert.Equal(t, r3.Vec{X: 1}, normals.At(lone))

		normals = algorithm.CalcVertexNormals(m, faceNormals, nil)
		assert.Equal(t, r3.Vec{Z: 1}, normals.At(lone))
	})

	t.Run("Corner", func(t *testing.T) {
		m, p := testutil.House(2)
		normals := algorithm.CalcVertexNormals(m, algorithm.CalcFaceNormals(m), nil)
		// Vertex 0 sits at the origin, its normal points into the negative octant.
		n := normals.At(p[0])
		assert.Negative(t, n.X)
		assert.Negative(t, n.Y)
		assert.Negative(t, n.Z)
		assert.InDelta(t, 1, r3.Norm(n), 1e-12)
	})
}
