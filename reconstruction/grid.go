package reconstruction

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/geometry"
	"github.com/hupe1980/meshrecon/internal/parallel"
)

// Key addresses a cell or a cell corner on the integer lattice.
type Key struct {
	X, Y, Z int32
}

func (k Key) add(o [3]int32) Key {
	return Key{X: k.X + o[0], Y: k.Y + o[1], Z: k.Z + o[2]}
}

func compareKeys(a, b Key) int {
	if c := cmp.Compare(a.Z, b.Z); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Y, b.Y); c != 0 {
		return c
	}
	return cmp.Compare(a.X, b.X)
}

// GridOptions configures a Grid.
type GridOptions struct {
	// VoxelSize is the cell edge length. Ignored when Intersections > 0.
	VoxelSize float64
	// Intersections derives the voxel size as the longest bounding box side
	// divided by this count.
	Intersections int
	// Extrude materializes the 26 neighbors of every cell that holds a point.
	Extrude bool
	// Workers bounds the parallelism of distance evaluation (0 = GOMAXPROCS).
	Workers int
	// Logger receives progress messages. Nil disables logging.
	Logger *slog.Logger
}

// Grid is a sparse voxel grid over a point cloud.
//
// Cell (i, j, k) is centered on min + (i, j, k)*voxel, so the cell corner with
// key (i, j, k) sits at min + (i-0.5, j-0.5, k-0.5)*voxel. Corners shared by
// neighboring cells are stored once.
type Grid struct {
	voxel   float64
	bbox    geometry.BoundingBox
	workers int
	logger  *slog.Logger

	cells       []Key      // sorted
	cellCorners [][8]int32 // per cell, indices into corners
	corners     []Key
	distances   []float64
}

// NewGrid materializes every cell that contains a point (and its neighbors
// when extruding).
func NewGrid(points []r3.Vec, opts GridOptions) (*Grid, error) {
	if len(points) == 0 {
		return nil, ErrEmptyPointCloud
	}
	bbox := geometry.NewBoundingBox(points)
	longest := bbox.LongestSide()
	if longest <= 0 {
		return nil, ErrDegenerateBoundingBox
	}

	var voxel float64
	switch {
	case opts.Intersections > 0:
		voxel = longest / float64(opts.Intersections)
	case opts.VoxelSize > 0:
		voxel = opts.VoxelSize
	default:
		return nil, fmt.Errorf("%w: voxel size %v, intersections %d", ErrInvalidResolution, opts.VoxelSize, opts.Intersections)
	}
	if math.IsInf(voxel, 0) || math.IsNaN(voxel) || voxel <= 0 {
		return nil, fmt.Errorf("%w: voxel size %v", ErrInvalidResolution, voxel)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	g := &Grid{
		voxel:   voxel,
		bbox:    bbox,
		workers: opts.Workers,
		logger:  logger,
	}

	start := time.Now()
	set := make(map[Key]struct{}, len(points))
	for _, p := range points {
		k := g.cellOf(p)
		if !opts.Extrude {
			set[k] = struct{}{}
			continue
		}
		for dz := int32(-1); dz <= 1; dz++ {
			for dy := int32(-1); dy <= 1; dy++ {
				for dx := int32(-1); dx <= 1; dx++ {
					set[k.add([3]int32{dx, dy, dz})] = struct{}{}
				}
			}
		}
	}

	g.cells = make([]Key, 0, len(set))
	for k := range set {
		g.cells = append(g.cells, k)
	}
	slices.SortFunc(g.cells, compareKeys)

	cornerIndex := make(map[Key]int32, len(g.cells)*2)
	g.cellCorners = make([][8]int32, len(g.cells))
	for i, cell := range g.cells {
		for c, off := range cornerOffsets {
			ck := cell.add(off)
			idx, ok := cornerIndex[ck]
			if !ok {
				idx = int32(len(g.corners))
				cornerIndex[ck] = idx
				g.corners = append(g.corners, ck)
			}
			g.cellCorners[i][c] = idx
		}
	}

	logger.Info("created grid",
		"voxel_size", voxel,
		"cells", len(g.cells),
		"query_points", len(g.corners),
		"extrude", opts.Extrude,
		"duration", time.Since(start),
	)
	return g, nil
}

func (g *Grid) cellOf(p r3.Vec) Key {
	d := r3.Sub(p, g.bbox.Min)
	return Key{
		X: int32(math.Floor(d.X/g.voxel + 0.5)),
		Y: int32(math.Floor(d.Y/g.voxel + 0.5)),
		Z: int32(math.Floor(d.Z/g.voxel + 0.5)),
	}
}

// VoxelSize returns the cell edge length.
func (g *Grid) VoxelSize() float64 { return g.voxel }

// BoundingBox returns the bounds of the points the grid was built from.
func (g *Grid) BoundingBox() geometry.BoundingBox { return g.bbox }

// NumCells returns the number of materialized cells.
func (g *Grid) NumCells() int { return len(g.cells) }

// NumQueryPoints returns the number of distinct cell corners.
func (g *Grid) NumQueryPoints() int { return len(g.corners) }

// Cells returns the materialized cell keys in ascending (z, y, x) order.
func (g *Grid) Cells() []Key { return g.cells }

// CellCenter returns the center of cell k.
func (g *Grid) CellCenter(k Key) r3.Vec {
	return r3.Add(g.bbox.Min, r3.Vec{
		X: float64(k.X) * g.voxel,
		Y: float64(k.Y) * g.voxel,
		Z: float64(k.Z) * g.voxel,
	})
}

// CornerPosition returns the position of the corner with key k.
func (g *Grid) CornerPosition(k Key) r3.Vec {
	return r3.Add(g.bbox.Min, r3.Vec{
		X: (float64(k.X) - 0.5) * g.voxel,
		Y: (float64(k.Y) - 0.5) * g.voxel,
		Z: (float64(k.Z) - 0.5) * g.voxel,
	})
}

// HasDistances reports whether CalcDistanceValues has completed.
func (g *Grid) HasDistances() bool { return g.distances != nil }

// CalcDistanceValues evaluates the signed distance of every cell corner.
// Each corner is evaluated exactly once; the work is split across workers.
func (g *Grid) CalcDistanceValues(ctx context.Context, surface PointsetSurface) error {
	if err := checkReady(surface); err != nil {
		return err
	}
	start := time.Now()
	dist := make([]float64, len(g.corners))
	err := parallel.Range(ctx, len(g.corners), g.workers, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			dist[i] = surface.Distance(g.CornerPosition(g.corners[i]))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("calculate distance values: %w", err)
	}
	g.distances = dist

	g.logger.Info("calculated distance values",
		"query_points", len(dist),
		"duration", time.Since(start),
	)
	return nil
}

// cornerDistances returns the distances of the 8 corners of cell i.
func (g *Grid) cornerDistances(i int) [8]float64 {
	var d [8]float64
	for c, idx := range g.cellCorners[i] {
		d[c] = g.distances[idx]
	}
	return d
}

// cornerPositions returns the positions of the 8 corners of cell i.
func (g *Grid) cornerPositions(i int) [8]r3.Vec {
	var p [8]r3.Vec
	for c, idx := range g.cellCorners[i] {
		p[c] = g.CornerPosition(g.corners[idx])
	}
	return p
}
