package reconstruction

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/search"
	"github.com/hupe1980/meshrecon/testutil"
)

func TestPointBuffer_Validate(t *testing.T) {
	assert.ErrorIs(t, (&PointBuffer{}).Validate(), ErrEmptyPointCloud)

	b := &PointBuffer{
		Points:  []r3.Vec{{}, {X: 1}},
		Normals: []r3.Vec{{Z: 1}},
	}
	assert.ErrorIs(t, b.Validate(), ErrAttributeLength)

	b = &PointBuffer{
		Points: []r3.Vec{{}, {X: 1}},
		Colors: []RGB{{1, 2, 3}},
	}
	assert.ErrorIs(t, b.Validate(), ErrAttributeLength)

	b.Colors = append(b.Colors, RGB{4, 5, 6})
	assert.NoError(t, b.Validate())
	assert.True(t, b.HasColors())
	assert.False(t, b.HasNormals())
}

func TestNewSurface_Errors(t *testing.T) {
	_, err := NewSurface(&PointBuffer{}, nil, DefaultSurfaceOptions)
	assert.ErrorIs(t, err, ErrEmptyPointCloud)

	opts := DefaultSurfaceOptions
	opts.KD = 0
	_, err = NewSurface(&PointBuffer{Points: []r3.Vec{{}}}, nil, opts)
	assert.ErrorIs(t, err, ErrInvalidNeighborhood)
}

func TestFitPlaneNormal(t *testing.T) {
	rng := testutil.NewRNG(1)
	pts := rng.UniformPoints(50, r3.Vec{X: -1, Y: -1}, r3.Vec{X: 1, Y: 1})

	n := fitPlaneNormal(pts)
	assert.InDelta(t, 1, math.Abs(n.Z), 1e-9)

	// Too few points fall back to +Z.
	assert.Equal(t, r3.Vec{Z: 1}, fitPlaneNormal(pts[:2]))
}

func TestSurface_CalculateSurfaceNormals(t *testing.T) {
	center := r3.Vec{X: 1, Y: 2, Z: 3}
	pts, want := testutil.SphereSurface(center, 2, 2000)

	t.Run("Centroid", func(t *testing.T) {
		s, err := NewSurface(&PointBuffer{Points: pts}, nil, DefaultSurfaceOptions)
		require.NoError(t, err)
		require.Nil(t, s.Normals())

		require.NoError(t, s.CalculateSurfaceNormals(context.Background()))
		got := s.Normals()
		require.Len(t, got, len(pts))
		for i := range pts {
			assert.Greater(t, r3.Dot(got[i], want[i]), 0.95, "point %d", i)
		}
	})

	t.Run("FlipPoint", func(t *testing.T) {
		opts := DefaultSurfaceOptions
		opts.FlipPoint = &center
		opts.Workers = 2
		s, err := NewSurface(&PointBuffer{Points: pts}, search.NewFlat(pts), opts)
		require.NoError(t, err)

		require.NoError(t, s.CalculateSurfaceNormals(context.Background()))
		for i, n := range s.Normals() {
			assert.Less(t, r3.Dot(n, want[i]), -0.95, "point %d", i)
		}
	})

	t.Run("Given", func(t *testing.T) {
		s, err := NewSurface(&PointBuffer{Points: pts, Normals: want}, nil, DefaultSurfaceOptions)
		require.NoError(t, err)
		require.NoError(t, s.CalculateSurfaceNormals(context.Background()))
		assert.Equal(t, want, s.Normals())
	})
}

func TestSurface_Distance(t *testing.T) {
	pts, normals := testutil.SphereSurface(r3.Vec{}, 1, 2000)
	s, err := NewSurface(&PointBuffer{Points: pts, Normals: normals}, nil, DefaultSurfaceOptions)
	require.NoError(t, err)

	assert.Less(t, s.Distance(r3.Vec{X: 0.5}), 0.0)
	assert.InDelta(t, 0.5, s.Distance(r3.Vec{Z: 1.5}), 0.05)
	assert.Greater(t, r3.Dot(s.Normal(r3.Vec{Y: 1.2}), r3.Vec{Y: 1}), 0.99)
}
