package algorithm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/algorithm"
	"github.com/hupe1980/meshrecon/halfedge"
	"github.com/hupe1980/meshrecon/testutil"
)

func TestOptimizeByFlipping(t *testing.T) {
	t.Run("ThinQuad", func(t *testing.T) {
		m := halfedge.New()
		p := m.AddVertex(r3.Vec{})
		q := m.AddVertex(r3.Vec{X: 2})
		a := m.AddVertex(r3.Vec{X: 1, Y: 0.2})
		b := m.AddVertex(r3.Vec{X: 1, Y: -0.2})
		_, err := m.AddFace(p, q, a)
		require.NoError(t, err)
		_, err = m.AddFace(q, p, b)
		require.NoError(t, err)

		assert.Equal(t, 1, algorithm.OptimizeByFlipping(m, 10))
		require.NoError(t, m.DebugCheckMeshIntegrity())

		_, ok := m.GetEdgeBetween(a, b)
		assert.True(t, ok)
		_, ok = m.GetEdgeBetween(p, q)
		assert.False(t, ok)
		for f := range m.Faces() {
			assert.InDelta(t, 1, algorithm.FaceNormal(m, f).Z, 1e-12)
		}
	})

	t.Run("Stable", func(t *testing.T) {
		// Square halves and non-coplanar pairs are left alone.
		m, _ := testutil.House(5)
		assert.Zero(t, algorithm.OptimizeByFlipping(m, 10))
		require.NoError(t, m.DebugCheckMeshIntegrity())

		grid := testutil.PlaneGrid(3)
		assert.Zero(t, algorithm.OptimizeByFlipping(grid, 10))
	})
}
