package reconstruction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/handle"
	"github.com/hupe1980/meshrecon/halfedge"
	"github.com/hupe1980/meshrecon/internal/parallel"
)

// Interpolation selects how vertices are placed on active cell edges.
type Interpolation int

const (
	// Linear places the vertex at the zero crossing of the linearly
	// interpolated corner distances.
	Linear Interpolation = iota
	// Bilinear additionally projects the linear estimate onto the surface
	// along the local surface normal.
	Bilinear
)

// String returns the decomposition name of the interpolation.
func (i Interpolation) String() string {
	switch i {
	case Linear:
		return "MC"
	case Bilinear:
		return "PMC"
	default:
		return fmt.Sprintf("Interpolation(%d)", int(i))
	}
}

// Stats summarizes a polygonization.
type Stats struct {
	Cells       int // materialized cells
	ActiveCells int // cells the surface passes through
	Vertices    int // mesh vertices created
	Faces       int // mesh faces created
	FailedFaces int // triangles rejected by the mesh
}

// FastReconstruction polygonizes a Grid with marching cubes.
type FastReconstruction struct {
	grid    *Grid
	surface PointsetSurface
	interp  Interpolation
	workers int
	logger  *slog.Logger
}

// ReconstructionOption configures a FastReconstruction.
type ReconstructionOption func(*FastReconstruction)

// WithInterpolation sets the vertex placement strategy (default Bilinear).
func WithInterpolation(i Interpolation) ReconstructionOption {
	return func(r *FastReconstruction) {
		r.interp = i
	}
}

// WithWorkers bounds the parallelism of cell evaluation (0 = GOMAXPROCS).
func WithWorkers(n int) ReconstructionOption {
	return func(r *FastReconstruction) {
		r.workers = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ReconstructionOption {
	return func(r *FastReconstruction) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewFastReconstruction creates a polygonizer for grid. The surface is used to
// evaluate distances (if the grid has none yet) and for bilinear placement.
func NewFastReconstruction(grid *Grid, surface PointsetSurface, optFns ...ReconstructionOption) *FastReconstruction {
	r := &FastReconstruction{
		grid:    grid,
		surface: surface,
		interp:  Bilinear,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, fn := range optFns {
		fn(r)
	}
	return r
}

// edgeKey identifies a lattice edge by its lower corner and its axis.
type edgeKey struct {
	corner Key
	axis   uint8
}

// cellEval holds the evaluation result of one active cell.
type cellEval struct {
	config  uint8
	pos     [numEdges]r3.Vec
	centers []r3.Vec
}

// GetMesh polygonizes every cell into m.
//
// Cell configurations and vertex positions are evaluated in parallel. Mesh
// construction then runs serially in cell order, sharing vertices between
// cells through their lattice edge, so the result does not depend on the
// number of workers. Triangles the mesh rejects are skipped and counted.
func (r *FastReconstruction) GetMesh(ctx context.Context, m *halfedge.Mesh) (Stats, error) {
	if err := checkReady(r.surface); err != nil {
		return Stats{}, err
	}
	g := r.grid
	if !g.HasDistances() {
		if err := g.CalcDistanceValues(ctx, r.surface); err != nil {
			return Stats{}, err
		}
	}

	start := time.Now()
	evals := make([]*cellEval, len(g.cells))
	err := parallel.Range(ctx, len(g.cells), r.workers, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			evals[i] = r.evaluate(i)
		}
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("evaluate cells: %w", err)
	}

	stats := Stats{Cells: len(g.cells)}
	cache := make(map[edgeKey]handle.VertexHandle)
	refs := make([]handle.VertexHandle, 0, numEdges+4)

	for i, ev := range evals {
		if ev == nil {
			continue
		}
		stats.ActiveCells++
		cs := &mcTable[ev.config]
		cell := g.cells[i]

		refs = refs[:0]
		for e := range numEdges {
			if !edgeActive(ev.config, e) {
				refs = append(refs, handle.NoVertex)
				continue
			}
			key := edgeKey{corner: cell.add(cornerOffsets[edgeLower[e]]), axis: edgeAxis[e]}
			v, ok := cache[key]
			if !ok {
				v = m.AddVertex(ev.pos[e])
				cache[key] = v
				stats.Vertices++
			}
			refs = append(refs, v)
		}
		for _, c := range ev.centers {
			refs = append(refs, m.AddVertex(c))
			stats.Vertices++
		}

		for _, t := range cs.tris {
			if _, err := m.AddFace(refs[t[0]], refs[t[1]], refs[t[2]]); err != nil {
				if !errors.Is(err, halfedge.ErrNonManifold) && !errors.Is(err, halfedge.ErrDegenerateFace) {
					return stats, fmt.Errorf("add face in cell %v: %w", cell, err)
				}
				stats.FailedFaces++
				r.logger.Debug("skipped triangle", "cell", cell, "error", err)
				continue
			}
			stats.Faces++
		}
	}

	r.logger.Info("polygonized grid",
		"decomposition", r.interp.String(),
		"cells", stats.Cells,
		"active_cells", stats.ActiveCells,
		"vertices", stats.Vertices,
		"faces", stats.Faces,
		"failed_faces", stats.FailedFaces,
		"duration", time.Since(start),
	)
	return stats, nil
}

// evaluate returns nil for cells the surface does not pass through.
func (r *FastReconstruction) evaluate(i int) *cellEval {
	d := r.grid.cornerDistances(i)

	var config uint8
	for c, v := range d {
		if v < 0 {
			config |= 1 << c
		}
	}
	if config == 0 || config == 0xff {
		return nil
	}

	p := r.grid.cornerPositions(i)
	ev := &cellEval{config: config}
	for e := range numEdges {
		if !edgeActive(config, e) {
			continue
		}
		a, b := edgeCorners[e][0], edgeCorners[e][1]
		t := d[a] / (d[a] - d[b])
		pos := r3.Add(p[a], r3.Scale(t, r3.Sub(p[b], p[a])))
		if r.interp == Bilinear {
			pos = r.project(pos)
		}
		ev.pos[e] = pos
	}
	for _, poly := range mcTable[config].centers {
		var sum r3.Vec
		for _, e := range poly {
			sum = r3.Add(sum, ev.pos[e])
		}
		c := r3.Scale(1/float64(len(poly)), sum)
		if r.interp == Bilinear {
			c = r.project(c)
		}
		ev.centers = append(ev.centers, c)
	}
	return ev
}

// project moves pos onto the estimated surface unless the estimate points
// further away than one voxel.
func (r *FastReconstruction) project(pos r3.Vec) r3.Vec {
	dist := r.surface.Distance(pos)
	if math.IsNaN(dist) || math.Abs(dist) > r.grid.voxel {
		return pos
	}
	n := r.surface.Normal(pos)
	return r3.Sub(pos, r3.Scale(dist, n))
}

func edgeActive(config uint8, e int) bool {
	a, b := edgeCorners[e][0], edgeCorners[e][1]
	return (config>>a)&1 != (config>>b)&1
}
