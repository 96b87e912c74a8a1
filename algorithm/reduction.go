package algorithm

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/geometry"
	"github.com/hupe1980/meshrecon/halfedge"
	"github.com/hupe1980/meshrecon/handle"
	"github.com/hupe1980/meshrecon/internal/queue"
)

// CollapseCostFunc returns the cost of collapsing e in the current mesh
// state. ok is false if e must not be collapsed.
type CollapseCostFunc func(e handle.EdgeHandle) (cost float64, ok bool)

// CollapseCostNormalDeviation returns a cost function measuring how far the
// normals of the faces around an edge turn when the edge is collapsed to its
// midpoint: the largest 1 - cos of the angle between a face normal before
// and after. Border edges, collapses that flip a face over and collapses
// that make a face degenerate have no cost.
func CollapseCostNormalDeviation(m *halfedge.Mesh) CollapseCostFunc {
	return func(e handle.EdgeHandle) (float64, bool) {
		if !m.ContainsEdge(e) || m.NumAdjacentFaces(e) != 2 {
			return 0, false
		}
		ends := m.GetVerticesOfEdge(e)
		edgeFaces := m.GetFacesOfEdge(e)
		mid := r3.Scale(0.5, r3.Add(m.GetVertexPosition(ends[0]), m.GetVertexPosition(ends[1])))

		worst := 0.0
		seen := make(map[handle.FaceHandle]struct{}, 12)
		for _, v := range ends {
			for _, f := range m.GetFacesOfVertex(v) {
				if f == edgeFaces[0] || f == edgeFaces[1] {
					continue
				}
				if _, dup := seen[f]; dup {
					continue
				}
				seen[f] = struct{}{}

				ps := m.GetVertexPositionsOfFace(f)
				before := geometry.TriangleNormal(ps[0], ps[1], ps[2])
				if before == (r3.Vec{}) {
					continue
				}
				for i, u := range m.GetVerticesOfFace(f) {
					if u == ends[0] || u == ends[1] {
						ps[i] = mid
					}
				}
				after := geometry.TriangleNormal(ps[0], ps[1], ps[2])
				cos := r3.Dot(before, after)
				if after == (r3.Vec{}) || cos <= 0 {
					return 0, false
				}
				worst = math.Max(worst, 1-cos)
			}
		}
		return worst, true
	}
}

// IterativeEdgeCollapse greedily collapses the cheapest collapsable edge
// until count collapses were performed or no candidate is left. Costs are
// recomputed for the edges of the faces around each survivor; stale queue
// entries are recognized by their stamp. It returns the performed collapses
// in order.
func IterativeEdgeCollapse(m *halfedge.Mesh, count int, cost CollapseCostFunc) []halfedge.CollapseResult {
	if count <= 0 {
		return nil
	}

	pq := queue.NewMin(m.NumEdges())
	stamps := make([]uint32, m.NextEdgeIndex())
	push := func(e handle.EdgeHandle) {
		if !m.IsCollapsable(e) {
			return
		}
		c, ok := cost(e)
		if !ok {
			return
		}
		pq.Push(queue.Item{ID: uint32(e), Stamp: stamps[e], Priority: c})
	}
	for e := range m.Edges() {
		push(e)
	}

	var done []halfedge.CollapseResult
	for len(done) < count {
		it, ok := pq.Pop()
		if !ok {
			break
		}
		e := handle.EdgeHandle(it.ID)
		if !m.ContainsEdge(e) || it.Stamp != stamps[e] {
			continue
		}
		res, err := m.CollapseEdge(e)
		if err != nil {
			continue
		}
		done = append(done, res)

		touched := make(map[handle.EdgeHandle]struct{})
		for _, f := range m.GetFacesOfVertex(res.Survivor) {
			for _, fe := range m.GetEdgesOfFace(f) {
				touched[fe] = struct{}{}
			}
		}
		for _, fe := range m.GetEdgesOfVertex(res.Survivor) {
			touched[fe] = struct{}{}
		}
		for fe := range touched {
			stamps[fe]++
		}
		for _, fe := range slices.Sorted(maps.Keys(touched)) {
			push(fe)
		}
	}
	return done
}

// ReduceByRatio collapses floor(F/2) * ratio edges, F being the current face
// count, with IterativeEdgeCollapse.
func ReduceByRatio(m *halfedge.Mesh, ratio float64, cost CollapseCostFunc) ([]halfedge.CollapseResult, error) {
	if math.IsNaN(ratio) || ratio <= 0 || ratio > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidReductionRatio, ratio)
	}
	count := int(float64(m.NumFaces()/2) * ratio)
	return IterativeEdgeCollapse(m, count, cost), nil
}
