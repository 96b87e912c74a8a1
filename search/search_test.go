package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/testutil"
)

func TestKDTree_MatchesFlat(t *testing.T) {
	rng := testutil.NewRNG(4711)
	lo, hi := r3.Vec{X: -1, Y: -1, Z: -1}, r3.Vec{X: 1, Y: 1, Z: 1}
	points := rng.UniformPoints(2000, lo, hi)
	queries := rng.UniformPoints(50, lo, hi)

	tree := NewKDTree(points)
	flat := NewFlat(points)
	require.Equal(t, len(points), tree.Len())
	require.Equal(t, len(points), flat.Len())

	for _, q := range queries {
		for _, k := range []int{1, 7, 30} {
			want := flat.KSearch(q, k)
			got := tree.KSearch(q, k)
			require.Len(t, got, k)
			assert.Equal(t, want, got)
		}

		want := flat.RadiusSearch(q, 0.25)
		got := tree.RadiusSearch(q, 0.25)
		assert.Equal(t, want, got)
	}
}

func TestKSearch_Ordering(t *testing.T) {
	points := []r3.Vec{{X: 3}, {X: 1}, {X: 2}, {X: -0.5}}

	for name, tree := range map[string]Tree{
		"KDTree": NewKDTree(points),
		"Flat":   NewFlat(points),
	} {
		t.Run(name, func(t *testing.T) {
			res := tree.KSearch(r3.Vec{}, 3)
			require.Len(t, res, 3)
			assert.Equal(t, 3, res[0].Index)
			assert.InDelta(t, 0.5, res[0].Dist, 1e-12)
			assert.Equal(t, 1, res[1].Index)
			assert.Equal(t, 2, res[2].Index)

			// Asking for more than available returns everything.
			assert.Len(t, tree.KSearch(r3.Vec{}, 10), 4)
			assert.Empty(t, tree.KSearch(r3.Vec{}, 0))
		})
	}
}

func TestRadiusSearch(t *testing.T) {
	points := []r3.Vec{{X: 1}, {Y: 2}, {Z: 3}}

	for name, tree := range map[string]Tree{
		"KDTree": NewKDTree(points),
		"Flat":   NewFlat(points),
	} {
		t.Run(name, func(t *testing.T) {
			res := tree.RadiusSearch(r3.Vec{}, 2.5)
			require.Len(t, res, 2)
			assert.Equal(t, 0, res[0].Index)
			assert.Equal(t, 1, res[1].Index)

			assert.Empty(t, tree.RadiusSearch(r3.Vec{}, 0.5))
		})
	}
}

func TestEmpty(t *testing.T) {
	tree := NewKDTree(nil)
	assert.Equal(t, 0, tree.Len())
	assert.Empty(t, tree.KSearch(r3.Vec{}, 3))
	assert.Empty(t, tree.RadiusSearch(r3.Vec{}, 3))
}
