package reconstruction

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/halfedge"
	"github.com/hupe1980/meshrecon/testutil"
)

func boundaryHalfEdges(m *halfedge.Mesh) int {
	n := 0
	for h := range m.HalfEdges() {
		if m.IsBoundaryHalfEdge(h) {
			n++
		}
	}
	return n
}

func eulerCharacteristic(m *halfedge.Mesh) int {
	return m.NumVertices() - m.NumEdges() + m.NumFaces()
}

func sphereReconstruction(t *testing.T, interp Interpolation, workers int) (*halfedge.Mesh, Stats) {
	t.Helper()
	sdf := testutil.Sphere{Center: r3.Vec{X: 0.3, Y: -0.2, Z: 0.1}, Radius: 1}
	pts, _ := testutil.SphereSurface(sdf.Center, sdf.Radius, 6000)

	g, err := NewGrid(pts, GridOptions{VoxelSize: 0.15, Extrude: true, Workers: workers})
	require.NoError(t, err)

	m := halfedge.New()
	r := NewFastReconstruction(g, sdf, WithInterpolation(interp), WithWorkers(workers))
	stats, err := r.GetMesh(context.Background(), m)
	require.NoError(t, err)
	return m, stats
}

func TestFastReconstruction_Sphere(t *testing.T) {
	for _, interp := range []Interpolation{Linear, Bilinear} {
		t.Run(interp.String(), func(t *testing.T) {
			m, stats := sphereReconstruction(t, interp, 4)

			require.NoError(t, m.DebugCheckMeshIntegrity())
			assert.Zero(t, stats.FailedFaces)
			assert.Equal(t, stats.Faces, m.NumFaces())
			assert.Equal(t, stats.Vertices, m.NumVertices())
			assert.Positive(t, stats.ActiveCells)

			// A closed surface of genus zero.
			assert.Zero(t, boundaryHalfEdges(m))
			assert.Equal(t, 2, eulerCharacteristic(m))

			sdf := testutil.Sphere{Center: r3.Vec{X: 0.3, Y: -0.2, Z: 0.1}, Radius: 1}
			tol := 0.15 * 0.25
			if interp == Bilinear {
				tol = 1e-9
			}
			for v := range m.Vertices() {
				d := sdf.Distance(m.GetVertexPosition(v))
				assert.LessOrEqual(t, math.Abs(d), tol, "vertex %s", v)
			}
		})
	}
}

func TestFastReconstruction_Deterministic(t *testing.T) {
	a, sa := sphereReconstruction(t, Linear, 1)
	b, sb := sphereReconstruction(t, Linear, 8)

	assert.Equal(t, sa, sb)

	var pa, pb []r3.Vec
	for v := range a.Vertices() {
		pa = append(pa, a.GetVertexPosition(v))
	}
	for v := range b.Vertices() {
		pb = append(pb, b.GetVertexPosition(v))
	}
	assert.Equal(t, pa, pb)

	for f := range a.Faces() {
		assert.Equal(t, a.GetVerticesOfFace(f), b.GetVerticesOfFace(f))
	}
}

func TestFastReconstruction_CubePointCloud(t *testing.T) {
	const size = 1.0
	pts, normals := testutil.CubeSurface(size, 21)

	s, err := NewSurface(&PointBuffer{Points: pts, Normals: normals}, nil, DefaultSurfaceOptions)
	require.NoError(t, err)
	require.NoError(t, s.CalculateSurfaceNormals(context.Background()))

	g, err := NewGrid(pts, GridOptions{Intersections: 10, Extrude: true})
	require.NoError(t, err)
	assert.InDelta(t, size/10, g.VoxelSize(), 1e-12)

	m := halfedge.New()
	stats, err := NewFastReconstruction(g, s).GetMesh(context.Background(), m)
	require.NoError(t, err)

	require.NoError(t, m.DebugCheckMeshIntegrity())
	assert.Zero(t, stats.FailedFaces)
	assert.Positive(t, m.NumFaces())
	assert.Zero(t, boundaryHalfEdges(m))
	assert.Equal(t, 2, eulerCharacteristic(m))

	// The surface stays close to the cube.
	for v := range m.Vertices() {
		p := m.GetVertexPosition(v)
		for _, c := range []float64{p.X, p.Y, p.Z} {
			assert.Greater(t, c, -0.2*size)
			assert.Less(t, c, 1.2*size)
		}
	}
}

func TestFastReconstruction_MissingNormals(t *testing.T) {
	pts, _ := testutil.CubeSurface(1, 11)

	s, err := NewSurface(&PointBuffer{Points: pts}, nil, DefaultSurfaceOptions)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Ready(), ErrMissingNormals)

	g, err := NewGrid(pts, GridOptions{Intersections: 5, Extrude: true})
	require.NoError(t, err)

	m := halfedge.New()
	assert.NotPanics(t, func() {
		_, err = NewFastReconstruction(g, s).GetMesh(context.Background(), m)
	})
	assert.ErrorIs(t, err, ErrMissingNormals)
	assert.ErrorIs(t, g.CalcDistanceValues(context.Background(), s), ErrMissingNormals)
	assert.False(t, g.HasDistances())
	assert.Zero(t, m.NumFaces())

	require.NoError(t, s.CalculateSurfaceNormals(context.Background()))
	require.NoError(t, s.Ready())
	_, err = NewFastReconstruction(g, s).GetMesh(context.Background(), m)
	require.NoError(t, err)
	assert.Positive(t, m.NumFaces())
}

func TestFastReconstruction_Canceled(t *testing.T) {
	pts, _ := testutil.SphereSurface(r3.Vec{}, 1, 500)
	g, err := NewGrid(pts, GridOptions{VoxelSize: 0.25, Extrude: true})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := halfedge.New()
	_, err = NewFastReconstruction(g, testutil.Sphere{Radius: 1}).GetMesh(ctx, m)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, m.NumFaces())
}
