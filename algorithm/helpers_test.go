package algorithm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/algorithm"
	"github.com/hupe1980/meshrecon/halfedge"
	"github.com/hupe1980/meshrecon/handle"
	"github.com/hupe1980/meshrecon/reconstruction"
	"github.com/hupe1980/meshrecon/testutil"
)

// assertPartition checks that every live face is in exactly one cluster and
// that clusters hold nothing else.
func assertPartition(t *testing.T, m *halfedge.Mesh, cm *algorithm.ClusterBiMap[handle.FaceHandle]) {
	t.Helper()
	seen := make(map[handle.FaceHandle]handle.ClusterHandle)
	for c := range cm.Clusters() {
		require.Positive(t, cm.ClusterSize(c), "empty cluster %s", c)
		for f := range cm.Members(c) {
			prev, dup := seen[f]
			require.False(t, dup, "face %s in %s and %s", f, prev, c)
			require.True(t, m.ContainsFace(f), "dead face %s", f)
			seen[f] = c

			owner, ok := cm.ClusterOf(f)
			require.True(t, ok)
			require.Equal(t, c, owner)
		}
	}
	require.Len(t, seen, m.NumFaces())
}

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

// sphereMesh polygonizes an analytic sphere into a closed mesh.
func sphereMesh(t *testing.T) *halfedge.Mesh {
	t.Helper()
	sdf := testutil.Sphere{Radius: 1}
	pts, _ := testutil.SphereSurface(sdf.Center, sdf.Radius, 1500)
	g, err := reconstruction.NewGrid(pts, reconstruction.GridOptions{VoxelSize: 0.2, Extrude: true})
	require.NoError(t, err)

	m := halfedge.New()
	_, err = reconstruction.NewFastReconstruction(g, sdf, reconstruction.WithInterpolation(reconstruction.Linear)).
		GetMesh(context.Background(), m)
	require.NoError(t, err)
	require.Zero(t, boundaryHalfEdges(m))
	return m
}

// removeFaces deletes the given faces and sweeps wire edges.
func removeFaces(t *testing.T, m *halfedge.Mesh, fs ...handle.FaceHandle) {
	t.Helper()
	for _, f := range fs {
		require.NoError(t, m.RemoveFace(f))
	}
	m.RemoveWireEdges()
	require.NoError(t, m.DebugCheckMeshIntegrity())
}

type constNormal r3.Vec

func (n constNormal) Normal(r3.Vec) r3.Vec { return r3.Vec(n) }
