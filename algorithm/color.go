package algorithm

import (
	"context"
	"fmt"
	"slices"

	"github.com/hupe1980/meshrecon/attrmap"
	"github.com/hupe1980/meshrecon/halfedge"
	"github.com/hupe1980/meshrecon/handle"
	"github.com/hupe1980/meshrecon/internal/parallel"
	"github.com/hupe1980/meshrecon/reconstruction"
	"github.com/hupe1980/meshrecon/search"
)

// CalcColorFromPointCloud colors every vertex of m with the color of the
// nearest point of buf. tree must index buf.Points; nil builds a k-d tree.
// Lookups run on up to workers goroutines (0 = GOMAXPROCS).
func CalcColorFromPointCloud(ctx context.Context, m *halfedge.Mesh, buf *reconstruction.PointBuffer, tree search.Tree, workers int) (*attrmap.VectorMap[handle.VertexHandle, reconstruction.RGB], error) {
	if !buf.HasColors() {
		return nil, ErrNoColors
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if tree == nil {
		tree = search.NewKDTree(buf.Points)
	}

	vs := slices.Collect(m.Vertices())
	colors := make([]reconstruction.RGB, len(vs))
	err := parallel.Range(ctx, len(vs), workers, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			nbs := tree.KSearch(m.GetVertexPosition(vs[i]), 1)
			if len(nbs) > 0 {
				colors[i] = buf.Colors[nbs[0].Index]
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("vertex colors: %w", err)
	}

	out := attrmap.NewVectorMap[handle.VertexHandle, reconstruction.RGB](m.NextVertexIndex())
	for i, v := range vs {
		out.Insert(v, colors[i])
	}
	return out, nil
}
