package algorithm

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/attrmap"
	"github.com/hupe1980/meshrecon/geometry"
	"github.com/hupe1980/meshrecon/halfedge"
	"github.com/hupe1980/meshrecon/handle"
	"github.com/hupe1980/meshrecon/internal/visited"
)

// FacePredicate decides whether cand joins the cluster grown from the seed
// face ref.
type FacePredicate func(ref, cand handle.FaceHandle) bool

// ClusterGrowing partitions the faces of m into clusters by breadth-first
// flood fill. Seeds are taken in ascending face order; a face adjacent to the
// cluster joins it when pred accepts it against the cluster's seed. Every
// live face ends up in exactly one cluster.
func ClusterGrowing(m *halfedge.Mesh, pred FacePredicate) *ClusterBiMap[handle.FaceHandle] {
	cm := NewClusterBiMap[handle.FaceHandle]()
	seen := visited.New[handle.FaceHandle](m.NextFaceIndex())
	var frontier []handle.FaceHandle

	for seed := range m.Faces() {
		if !seen.Visit(seed) {
			continue
		}
		c := cm.CreateCluster()
		cm.AddToCluster(c, seed)

		frontier = append(frontier[:0], seed)
		for len(frontier) > 0 {
			cur := frontier[0]
			frontier = frontier[1:]
			for _, nb := range m.GetNeighboursOfFace(cur) {
				if seen.Visited(nb) || !pred(seed, nb) {
					continue
				}
				seen.Visit(nb)
				cm.AddToCluster(c, nb)
				frontier = append(frontier, nb)
			}
		}
	}
	return cm
}

// PlanarClusterGrowing clusters connected faces whose normals enclose an
// angle with cosine above minCos with the normal of the cluster's seed.
func PlanarClusterGrowing(m *halfedge.Mesh, normals attrmap.AttributeMap[handle.FaceHandle, r3.Vec], minCos float64) *ClusterBiMap[handle.FaceHandle] {
	return ClusterGrowing(m, func(ref, cand handle.FaceHandle) bool {
		a, _ := normals.Get(ref)
		b, _ := normals.Get(cand)
		return r3.Dot(a, b) > minCos
	})
}

// IterativePlanarClusterGrowing refines PlanarClusterGrowing over several
// rounds and then dissolves small clusters.
//
// Round r (0-based) of n allows an angle of acos(minCos) * (1 + r/n), so the
// threshold is relaxed linearly towards twice the initial angle. From the
// second round on a candidate is compared with the area weighted normal of
// the previous round's cluster of the seed instead of the seed's own normal.
//
// Afterwards every cluster with fewer than minClusterSize faces is merged
// into the neighboring cluster of at least minClusterSize faces with which
// it shares the most edges (ties: smallest angle between the representative
// normals, then lowest handle). Clusters without such a neighbor are
// collected into one shared cluster.
func IterativePlanarClusterGrowing(m *halfedge.Mesh, normals attrmap.AttributeMap[handle.FaceHandle, r3.Vec], minCos float64, iterations, minClusterSize int) *ClusterBiMap[handle.FaceHandle] {
	areas := CalcFaceAreas(m)
	theta0 := math.Acos(math.Max(-1, math.Min(1, minCos)))
	rounds := max(iterations, 1)

	var cm *ClusterBiMap[handle.FaceHandle]
	for r := range rounds {
		cosT := math.Cos(math.Min(math.Pi, theta0*(1+float64(r)/float64(rounds))))
		if cm == nil {
			cm = PlanarClusterGrowing(m, normals, cosT)
			continue
		}
		prev := cm
		reps := representativeNormals(prev, normals, areas)
		cm = ClusterGrowing(m, func(ref, cand handle.FaceHandle) bool {
			c, _ := prev.ClusterOf(ref)
			n, _ := normals.Get(cand)
			return r3.Dot(reps.At(c), n) > cosT
		})
	}

	mergeSmallClusters(m, cm, normals, areas, minClusterSize)
	return cm
}

// representativeNormals returns the area weighted mean normal of every cluster.
func representativeNormals(cm *ClusterBiMap[handle.FaceHandle], normals attrmap.AttributeMap[handle.FaceHandle, r3.Vec], areas attrmap.AttributeMap[handle.FaceHandle, float64]) *attrmap.VectorMap[handle.ClusterHandle, r3.Vec] {
	return attrmap.FromFunc(cm.Clusters(), cm.NextClusterIndex(), func(c handle.ClusterHandle) r3.Vec {
		var sum, first r3.Vec
		for f := range cm.Members(c) {
			n, _ := normals.Get(f)
			if first == (r3.Vec{}) {
				first = n
			}
			a, _ := areas.Get(f)
			sum = r3.Add(sum, r3.Scale(a, n))
		}
		return geometry.Normalize(sum, geometry.Normalize(first, up))
	})
}

func mergeSmallClusters(m *halfedge.Mesh, cm *ClusterBiMap[handle.FaceHandle], normals attrmap.AttributeMap[handle.FaceHandle, r3.Vec], areas attrmap.AttributeMap[handle.FaceHandle, float64], minClusterSize int) {
	if minClusterSize <= 1 {
		return
	}
	reps := representativeNormals(cm, normals, areas)

	var small []handle.ClusterHandle
	for c := range cm.Clusters() {
		if cm.ClusterSize(c) < minClusterSize {
			small = append(small, c)
		}
	}

	unclustered := handle.NoCluster
	for _, c := range small {
		shared := make(map[handle.ClusterHandle]int)
		for f := range cm.Members(c) {
			for h := range m.FaceHalfEdges(f) {
				nf := m.FaceOf(m.Twin(h))
				if !nf.IsValid() {
					continue
				}
				if nc, ok := cm.ClusterOf(nf); ok && nc != c && nc != unclustered && cm.ClusterSize(nc) >= minClusterSize {
					shared[nc]++
				}
			}
		}

		target := unclustered
		if len(shared) > 0 {
			cands := make([]handle.ClusterHandle, 0, len(shared))
			for nc := range shared {
				cands = append(cands, nc)
			}
			rep := reps.At(c)
			target = slices.MinFunc(cands, func(a, b handle.ClusterHandle) int {
				if d := cmp.Compare(shared[b], shared[a]); d != 0 {
					return d
				}
				if d := cmp.Compare(geometry.Angle(rep, reps.At(a)), geometry.Angle(rep, reps.At(b))); d != 0 {
					return d
				}
				return cmp.Compare(a, b)
			})
		} else if !unclustered.IsValid() {
			unclustered = cm.CreateCluster()
			target = unclustered
		}

		for _, f := range cm.Cluster(c) {
			cm.AddToCluster(target, f)
		}
		cm.RemoveCluster(c)
	}
}
