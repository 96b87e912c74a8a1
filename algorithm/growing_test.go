package algorithm_test

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/algorithm"
	"github.com/hupe1980/meshrecon/handle"
	"github.com/hupe1980/meshrecon/testutil"
)

func clusterSizes(cm *algorithm.ClusterBiMap[handle.FaceHandle]) []int {
	var sizes []int
	for c := range cm.Clusters() {
		sizes = append(sizes, cm.ClusterSize(c))
	}
	slices.Sort(sizes)
	return sizes
}

func TestClusterGrowing(t *testing.T) {
	m, _ := testutil.House(5)

	t.Run("Connected", func(t *testing.T) {
		cm := algorithm.ClusterGrowing(m, func(_, _ handle.FaceHandle) bool { return true })
		assertPartition(t, m, cm)
		assert.Equal(t, 1, cm.NumClusters())
	})

	t.Run("Nothing", func(t *testing.T) {
		cm := algorithm.ClusterGrowing(m, func(_, _ handle.FaceHandle) bool { return false })
		assertPartition(t, m, cm)
		assert.Equal(t, m.NumFaces(), cm.NumClusters())
	})

	t.Run("PredicateArguments", func(t *testing.T) {
		// Face 0 seeds the only cluster, every candidate is judged against it.
		algorithm.ClusterGrowing(m, func(ref, cand handle.FaceHandle) bool {
			assert.Equal(t, handle.FaceHandle(0), ref)
			assert.NotEqual(t, ref, cand)
			return true
		})
	})

	t.Run("SeedReference", func(t *testing.T) {
		// Accepting only handles within 3 of the seed stops the chain 0, 1, 2, ...
		cm := algorithm.ClusterGrowing(m, func(ref, cand handle.FaceHandle) bool {
			return cand-ref <= 3
		})
		assertPartition(t, m, cm)
		for c := range cm.Clusters() {
			members := cm.Cluster(c)
			seed := slices.Min(members)
			for _, f := range members {
				assert.LessOrEqual(t, f-seed, handle.FaceHandle(3))
			}
		}
	})
}

func TestPlanarClusterGrowing_House(t *testing.T) {
	m, _ := testutil.House(5)
	normals := algorithm.CalcFaceNormals(m)

	cm := algorithm.PlanarClusterGrowing(m, normals, 0.99)
	assertPartition(t, m, cm)
	// Floor and four walls of two triangles each, four roof triangles.
	assert.Equal(t, []int{1, 1, 1, 1, 2, 2, 2, 2, 2}, clusterSizes(cm))

	floor, _ := cm.ClusterOf(0)
	assert.Equal(t, []handle.FaceHandle{0, 1}, cm.Cluster(floor))
}

func TestIterativePlanarClusterGrowing(t *testing.T) {
	m, _ := testutil.House(5)
	normals := algorithm.CalcFaceNormals(m)

	t.Run("MergeIntoWalls", func(t *testing.T) {
		for _, iterations := range []int{1, 3} {
			cm := algorithm.IterativePlanarClusterGrowing(m, normals, 0.99, iterations, 2)
			assertPartition(t, m, cm)
			assert.Equal(t, []int{2, 3, 3, 3, 3}, clusterSizes(cm), "iterations %d", iterations)

			// The front roof triangle joins the front wall it shares an edge with.
			roof, _ := cm.ClusterOf(10)
			front, _ := cm.ClusterOf(6)
			assert.Equal(t, front, roof)
		}
	})

	t.Run("Unclustered", func(t *testing.T) {
		cm := algorithm.IterativePlanarClusterGrowing(m, normals, 0.99, 1, 4)
		assertPartition(t, m, cm)
		require.Equal(t, 1, cm.NumClusters())
		assert.Equal(t, []int{14}, clusterSizes(cm))
	})

	t.Run("Relaxed", func(t *testing.T) {
		// Roof and walls enclose 45 degrees.
		cm := algorithm.IterativePlanarClusterGrowing(m, normals, 0.64, 4, 1)
		assertPartition(t, m, cm)
		assert.Less(t, cm.NumClusters(), 9)
	})
}

func TestPlanarClusterGrowing_Sphere(t *testing.T) {
	m := sphereMesh(t)
	normals := algorithm.CalcFaceNormals(m)

	cm := algorithm.PlanarClusterGrowing(m, normals, 0.95)
	assertPartition(t, m, cm)
	assert.Greater(t, cm.NumClusters(), 1)

	// Normals must not drift across the curved surface: every member stays
	// close to the seed, the lowest face of its cluster.
	maxAngle := 2 * math.Acos(0.95)
	for c := range cm.Clusters() {
		members := cm.Cluster(c)
		seed, _ := normals.Get(slices.Min(members))
		for _, f := range members {
			n, _ := normals.Get(f)
			assert.Greater(t, r3.Dot(seed, n), 0.95, "face %d", f)
		}
		for _, a := range members {
			na, _ := normals.Get(a)
			for _, b := range members {
				nb, _ := normals.Get(b)
				assert.LessOrEqual(t, math.Acos(math.Max(-1, math.Min(1, r3.Dot(na, nb)))), maxAngle+1e-9)
			}
		}
	}

	it := algorithm.IterativePlanarClusterGrowing(m, normals, 0.95, 3, 5)
	assertPartition(t, m, it)
	small := 0
	for c := range it.Clusters() {
		if it.ClusterSize(c) < 5 {
			small++
		}
	}
	// Only the bucket of faces without a large neighbor may stay small.
	assert.LessOrEqual(t, small, 1)
}
