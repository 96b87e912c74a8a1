package search

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/internal/queue"
)

// Compile time check to ensure Flat satisfies the Tree interface.
var _ Tree = (*Flat)(nil)

// Flat is an exhaustive nearest neighbor search.
type Flat struct {
	points []r3.Vec
}

// NewFlat creates a brute force oracle over points. The slice is retained,
// not copied.
func NewFlat(points []r3.Vec) *Flat {
	return &Flat{points: points}
}

// Len returns the number of indexed points.
func (f *Flat) Len() int { return len(f.points) }

// KSearch returns the k points closest to q.
func (f *Flat) KSearch(q r3.Vec, k int) []Neighbor {
	if k <= 0 || len(f.points) == 0 {
		return nil
	}

	// Bounded max-heap: the top is the worst candidate kept so far.
	pq := queue.NewMax(k + 1)
	for i, p := range f.points {
		d := distSq(p, q)
		if pq.Len() == k {
			top, _ := pq.Top()
			if d > top.Priority || (d == top.Priority && uint32(i) > top.ID) {
				continue
			}
		}
		pq.Push(queue.Item{ID: uint32(i), Priority: d})
		if pq.Len() > k {
			pq.Pop()
		}
	}

	res := make([]Neighbor, 0, pq.Len())
	for _, it := range pq.Items() {
		res = append(res, Neighbor{Index: int(it.ID), Dist: math.Sqrt(it.Priority)})
	}
	sortNeighbors(res)
	return res
}

// RadiusSearch returns every point within distance r of q.
func (f *Flat) RadiusSearch(q r3.Vec, r float64) []Neighbor {
	if r < 0 {
		return nil
	}
	r2 := r * r

	var res []Neighbor
	for i, p := range f.points {
		if d := distSq(p, q); d <= r2 {
			res = append(res, Neighbor{Index: i, Dist: math.Sqrt(d)})
		}
	}
	sortNeighbors(res)
	return res
}
