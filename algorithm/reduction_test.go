package algorithm_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/algorithm"
	"github.com/hupe1980/meshrecon/handle"
	"github.com/hupe1980/meshrecon/testutil"
)

func TestCollapseCostNormalDeviation(t *testing.T) {
	t.Run("Plane", func(t *testing.T) {
		m := testutil.PlaneGrid(3)
		cost := algorithm.CollapseCostNormalDeviation(m)
		for e := range m.Edges() {
			c, ok := cost(e)
			if m.IsBorderEdge(e) {
				assert.False(t, ok, "border edge %s", e)
				continue
			}
			if ok {
				assert.InDelta(t, 0, c, 1e-12, "edge %s", e)
			}
		}
	})

	t.Run("Bump", func(t *testing.T) {
		m := testutil.PlaneGrid(6)
		at := func(x, y int) handle.VertexHandle { return handle.VertexHandle(y*7 + x) }
		m.SetVertexPosition(at(3, 3), r3.Vec{X: 3, Y: 3, Z: 1})
		cost := algorithm.CollapseCostNormalDeviation(m)

		flat, ok := m.GetEdgeBetween(at(1, 1), at(1, 2))
		require.True(t, ok)
		c, ok := cost(flat)
		require.True(t, ok)
		assert.InDelta(t, 0, c, 1e-12)

		positive := 0
		for _, e := range m.GetEdgesOfVertex(at(3, 3)) {
			if c, ok := cost(e); ok && c > 1e-3 {
				positive++
			}
		}
		assert.Positive(t, positive)
	})
}

func TestReduceByRatio_InvalidRatio(t *testing.T) {
	m, _ := testutil.House(5)
	for _, ratio := range []float64{0, -0.5, 1.5, math.NaN()} {
		_, err := algorithm.ReduceByRatio(m, ratio, algorithm.CollapseCostNormalDeviation(m))
		assert.ErrorIs(t, err, algorithm.ErrInvalidReductionRatio, "ratio %v", ratio)
	}
	assert.Equal(t, 14, m.NumFaces())
}

func TestReduceByRatio_Sphere(t *testing.T) {
	m := sphereMesh(t)
	n := m.NumFaces()

	collapses, err := algorithm.ReduceByRatio(m, 0.5, algorithm.CollapseCostNormalDeviation(m))
	require.NoError(t, err)
	require.NoError(t, m.DebugCheckMeshIntegrity())

	assert.LessOrEqual(t, len(collapses), int(math.Floor(float64(n)/2*0.5)))
	assert.Positive(t, len(collapses))

	// Every collapse removed faces, so the count went down monotonically.
	removed := 0
	for _, c := range collapses {
		assert.NotEmpty(t, c.RemovedFaces)
		removed += len(c.RemovedFaces)
	}
	assert.Equal(t, n-removed, m.NumFaces())

	// Still a closed sphere.
	assert.Zero(t, boundaryHalfEdges(m))
	assert.Equal(t, 2, eulerCharacteristic(m))
}

func TestIterativeEdgeCollapse(t *testing.T) {
	t.Run("Count", func(t *testing.T) {
		m := testutil.PlaneGrid(8)
		collapses := algorithm.IterativeEdgeCollapse(m, 5, algorithm.CollapseCostNormalDeviation(m))
		require.NoError(t, m.DebugCheckMeshIntegrity())
		assert.Len(t, collapses, 5)
		assert.Equal(t, 128-10, m.NumFaces())

		// The grid stays flat.
		for v := range m.Vertices() {
			assert.Zero(t, m.GetVertexPosition(v).Z)
		}
	})

	t.Run("Exhausted", func(t *testing.T) {
		m, _ := testutil.House(5)
		collapses := algorithm.IterativeEdgeCollapse(m, 1000, algorithm.CollapseCostNormalDeviation(m))
		require.NoError(t, m.DebugCheckMeshIntegrity())
		assert.Less(t, len(collapses), 1000)
		assert.GreaterOrEqual(t, m.NumFaces(), 4)
		assert.Equal(t, 2, eulerCharacteristic(m))
	})

	t.Run("CheapestFirst", func(t *testing.T) {
		m, p := testutil.House(5)
		target, ok := m.GetEdgeBetween(p[2], p[7])
		require.True(t, ok)
		cost := func(e handle.EdgeHandle) (float64, bool) {
			if e == target {
				return 0, true
			}
			return 1, true
		}
		collapses := algorithm.IterativeEdgeCollapse(m, 1, cost)
		require.Len(t, collapses, 1)
		assert.False(t, m.ContainsEdge(target))
	})

	t.Run("None", func(t *testing.T) {
		m, _ := testutil.House(5)
		never := func(handle.EdgeHandle) (float64, bool) { return 0, false }
		assert.Empty(t, algorithm.IterativeEdgeCollapse(m, 10, never))
		assert.Empty(t, algorithm.IterativeEdgeCollapse(m, 0, algorithm.CollapseCostNormalDeviation(m)))
		assert.Equal(t, 14, m.NumFaces())
	})
}
