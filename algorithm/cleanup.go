package algorithm

import (
	"github.com/hupe1980/meshrecon/halfedge"
	"github.com/hupe1980/meshrecon/handle"
)

// deleteFaces removes fs from m and sweeps the edges and vertices left
// without faces. It returns the number of faces removed.
func deleteFaces(m *halfedge.Mesh, fs []handle.FaceHandle) int {
	n := 0
	for _, f := range fs {
		if err := m.RemoveFace(f); err == nil {
			n++
		}
	}
	if n > 0 {
		m.RemoveWireEdges()
	}
	return n
}

// RemoveDanglingCluster deletes every connected component of m with fewer
// than threshold faces and returns the number of faces removed.
func RemoveDanglingCluster(m *halfedge.Mesh, threshold int) int {
	components := ClusterGrowing(m, func(_, _ handle.FaceHandle) bool { return true })

	var doomed []handle.FaceHandle
	for c := range components.Clusters() {
		if components.ClusterSize(c) < threshold {
			doomed = append(doomed, components.Cluster(c)...)
		}
	}
	return deleteFaces(m, doomed)
}

// DeleteSmallPlanarCluster deletes every cluster with fewer than threshold
// faces from clusters together with its faces from m. It returns the number
// of faces removed.
func DeleteSmallPlanarCluster(m *halfedge.Mesh, clusters *ClusterBiMap[handle.FaceHandle], threshold int) int {
	var (
		doomed  []handle.FaceHandle
		emptied []handle.ClusterHandle
	)
	for c := range clusters.Clusters() {
		if clusters.ClusterSize(c) < threshold {
			doomed = append(doomed, clusters.Cluster(c)...)
			emptied = append(emptied, c)
		}
	}
	for _, c := range emptied {
		clusters.RemoveCluster(c)
	}
	return deleteFaces(m, doomed)
}

// CleanContours erodes frayed borders. Each of up to iterations passes
// removes every face that has at least two border edges, or one border edge
// and an area below areaThreshold. It stops early once a pass removes
// nothing and returns the total number of faces removed.
func CleanContours(m *halfedge.Mesh, iterations int, areaThreshold float64) int {
	total := 0
	for range iterations {
		var doomed []handle.FaceHandle
		for f := range m.Faces() {
			border := 0
			for h := range m.FaceHalfEdges(f) {
				if m.IsBoundaryHalfEdge(m.Twin(h)) {
					border++
				}
			}
			if border >= 2 || (border == 1 && FaceArea(m, f) < areaThreshold) {
				doomed = append(doomed, f)
			}
		}
		n := deleteFaces(m, doomed)
		if n == 0 {
			break
		}
		total += n
	}
	return total
}
