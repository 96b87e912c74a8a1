package algorithm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/halfedge"
	"github.com/hupe1980/meshrecon/handle"
)

func TestFillFan_Rollback(t *testing.T) {
	m := halfedge.New()

	// A closed tetrahedron, none of its vertices can take another face.
	tet := []handle.VertexHandle{
		m.AddVertex(r3.Vec{X: 5}),
		m.AddVertex(r3.Vec{X: 6}),
		m.AddVertex(r3.Vec{X: 5, Y: 1}),
		m.AddVertex(r3.Vec{X: 5, Z: 1}),
	}
	for _, f := range [][3]int{{0, 2, 1}, {0, 1, 3}, {1, 2, 3}, {0, 3, 2}} {
		_, err := m.AddFace(tet[f[0]], tet[f[1]], tet[f[2]])
		require.NoError(t, err)
	}

	// Unrelated wire edges left behind by a removed face.
	x := m.AddVertex(r3.Vec{Y: 5})
	y := m.AddVertex(r3.Vec{X: 1, Y: 5})
	z := m.AddVertex(r3.Vec{Y: 6})
	wf, err := m.AddFace(x, y, z)
	require.NoError(t, err)
	require.NoError(t, m.RemoveFace(wf))

	a := m.AddVertex(r3.Vec{})
	b := m.AddVertex(r3.Vec{X: 1})
	c := m.AddVertex(r3.Vec{X: 1, Y: 1})

	edges, vertices := m.NumEdges(), m.NumVertices()
	assert.False(t, fillFan(m, []handle.VertexHandle{a, b, c, tet[0]}))

	assert.Equal(t, 4, m.NumFaces())
	assert.Equal(t, edges, m.NumEdges())
	assert.Equal(t, vertices, m.NumVertices())
	for _, pair := range [][2]handle.VertexHandle{{x, y}, {y, z}, {z, x}} {
		_, ok := m.GetEdgeBetween(pair[0], pair[1])
		assert.True(t, ok, "wire edge %s-%s", pair[0], pair[1])
	}
	for _, pair := range [][2]handle.VertexHandle{{a, b}, {b, c}, {c, a}} {
		_, ok := m.GetEdgeBetween(pair[0], pair[1])
		assert.False(t, ok, "fan edge %s-%s", pair[0], pair[1])
	}
	require.NoError(t, m.DebugCheckMeshIntegrity())
}
