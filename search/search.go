// Package search provides k-nearest-neighbor oracles over static 3D point sets.
//
// Two implementations satisfy Tree:
//
//   - KDTree: a k-d tree built on gonum's spatial/kdtree, the default.
//   - Flat: an exhaustive scan, exact and allocation-light, used as a
//     reference oracle and for very small clouds.
//
// Results are always ordered by ascending distance; ties are broken by the
// smaller point index so that every implementation answers identically.
package search

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// Neighbor is a single search result.
type Neighbor struct {
	Index int     // Index of the point in the slice the tree was built from.
	Dist  float64 // Dist is the Euclidean distance to the query.
}

// Tree answers nearest neighbor queries against a fixed point set.
//
// Implementations are safe for concurrent queries.
type Tree interface {
	// KSearch returns the k points closest to q. Fewer are returned when the
	// tree holds fewer than k points.
	KSearch(q r3.Vec, k int) []Neighbor

	// RadiusSearch returns every point within distance r of q.
	RadiusSearch(q r3.Vec, r float64) []Neighbor

	// Len returns the number of indexed points.
	Len() int
}

func sortNeighbors(ns []Neighbor) {
	slices.SortFunc(ns, func(a, b Neighbor) int {
		if c := cmp.Compare(a.Dist, b.Dist); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
}

func distSq(a, b r3.Vec) float64 {
	d := r3.Sub(a, b)
	return r3.Dot(d, d)
}
