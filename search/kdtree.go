package search

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// Compile time check to ensure KDTree satisfies the Tree interface.
var _ Tree = (*KDTree)(nil)

// KDTree is a static k-d tree over 3D points.
type KDTree struct {
	tree *kdtree.Tree
	n    int
}

// NewKDTree builds a k-d tree over points. The input slice is not modified.
func NewKDTree(points []r3.Vec) *KDTree {
	if len(points) == 0 {
		return &KDTree{}
	}
	ps := make(indexedPoints, len(points))
	for i, p := range points {
		ps[i] = indexedPoint{Vec: p, idx: i}
	}
	return &KDTree{
		tree: kdtree.New(ps, false),
		n:    len(points),
	}
}

// Len returns the number of indexed points.
func (t *KDTree) Len() int { return t.n }

// KSearch returns the k points closest to q.
func (t *KDTree) KSearch(q r3.Vec, k int) []Neighbor {
	if k <= 0 || t.tree == nil {
		return nil
	}
	keep := kdtree.NewNKeeper(k)
	t.tree.NearestSet(keep, indexedPoint{Vec: q, idx: -1})
	return collect(keep.Heap)
}

// RadiusSearch returns every point within distance r of q.
func (t *KDTree) RadiusSearch(q r3.Vec, r float64) []Neighbor {
	if r < 0 || t.tree == nil {
		return nil
	}
	// Keepers compare against the squared distance reported by the points.
	keep := kdtree.NewDistKeeper(r * r)
	t.tree.NearestSet(keep, indexedPoint{Vec: q, idx: -1})
	return collect(keep.Heap)
}

func collect(h kdtree.Heap) []Neighbor {
	var res []Neighbor
	for _, cd := range h {
		// Keepers are seeded with a nil sentinel.
		if cd.Comparable == nil {
			continue
		}
		res = append(res, Neighbor{
			Index: cd.Comparable.(indexedPoint).idx,
			Dist:  math.Sqrt(cd.Dist),
		})
	}
	sortNeighbors(res)
	return res
}

// indexedPoint is a kdtree.Comparable that remembers its input position,
// since building the tree reorders the backing slice.
type indexedPoint struct {
	r3.Vec
	idx int
}

func (p indexedPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(indexedPoint)
	return p.coord(d) - q.coord(d)
}

func (p indexedPoint) Dims() int { return 3 }

func (p indexedPoint) Distance(c kdtree.Comparable) float64 {
	return distSq(p.Vec, c.(indexedPoint).Vec)
}

func (p indexedPoint) coord(d kdtree.Dim) float64 {
	switch d {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

type indexedPoints []indexedPoint

func (p indexedPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p indexedPoints) Len() int                      { return len(p) }
func (p indexedPoints) Pivot(d kdtree.Dim) int {
	return plane{Dim: d, indexedPoints: p}.pivot()
}
func (p indexedPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane sorts points along one dimension for median partitioning.
type plane struct {
	kdtree.Dim
	indexedPoints
}

func (p plane) Less(i, j int) bool {
	return p.indexedPoints[i].coord(p.Dim) < p.indexedPoints[j].coord(p.Dim)
}

func (p plane) Swap(i, j int) {
	p.indexedPoints[i], p.indexedPoints[j] = p.indexedPoints[j], p.indexedPoints[i]
}

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.indexedPoints = p.indexedPoints[start:end]
	return p
}

func (p plane) pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}
