package meshrecon

import (
	"context"
	"errors"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/algorithm"
	"github.com/hupe1980/meshrecon/attrmap"
	"github.com/hupe1980/meshrecon/halfedge"
	"github.com/hupe1980/meshrecon/handle"
	"github.com/hupe1980/meshrecon/reconstruction"
)

// Pipeline stages, as reported to loggers and metrics collectors.
const (
	StageNormals    = "normals"
	StageGrid       = "grid"
	StagePolygonize = "polygonize"
	StageCleanup    = "cleanup"
	StageReduce     = "reduce"
	StageFlip       = "flip"
	StageSegment    = "segment"
	StageColor      = "color"
	StageFinalize   = "finalize"
)

// contourAreaThreshold is the area below which a face with one border edge
// is trimmed by contour cleaning.
const contourAreaThreshold = 0.0001

// Stats summarizes a reconstruction run.
type Stats struct {
	Points    int
	VoxelSize float64

	Reconstruction reconstruction.Stats

	DanglingFacesRemoved     int
	ContourFacesRemoved      int
	HolesFilled              int
	Collapses                int
	Flips                    int
	SmallClusterFacesRemoved int

	Clusters  int
	Materials int
	Vertices  int // vertices of the final buffer
	Faces     int // triangles of the final buffer
}

// Result is the outcome of Reconstruct.
type Result struct {
	// Mesh is the simplified mesh after segmentation.
	Mesh *halfedge.Mesh
	// Clusters groups the faces of Mesh into planar regions.
	Clusters *algorithm.ClusterBiMap[handle.FaceHandle]
	// FaceNormals holds the unit normal of every face of Mesh.
	FaceNormals *attrmap.VectorMap[handle.FaceHandle, r3.Vec]
	// Buffer is the flattened, exportable mesh.
	Buffer *algorithm.MeshBuffer
	Stats  Stats
}

type pipeline struct {
	opts    options
	logger  *Logger
	metrics MetricsCollector
}

func (p *pipeline) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return &ErrStageFailed{Stage: name, cause: err}
	}
	start := time.Now()
	err := fn()
	duration := time.Since(start)
	p.metrics.RecordStage(name, duration, err)
	p.logger.LogStage(ctx, name, duration, err)
	if err != nil {
		return &ErrStageFailed{Stage: name, cause: err}
	}
	return nil
}

// Reconstruct turns an unorganized point cloud into a segmented, simplified
// triangle mesh.
//
// The stages run in this order: normal estimation, grid construction and
// distance evaluation, marching cubes, removal of dangling components,
// contour cleaning, hole filling, edge collapse, edge flipping, planar
// segmentation, coloring and flattening into a MeshBuffer. Stages disabled
// by the configuration are skipped.
func Reconstruct(ctx context.Context, buf *reconstruction.PointBuffer, optFns ...Option) (*Result, error) {
	o := applyOptions(optFns)
	p := &pipeline{opts: o, logger: o.logger, metrics: o.metricsCollector}

	start := time.Now()
	res := &Result{}
	err := p.run(ctx, buf, res)
	err = translateError(err)

	duration := time.Since(start)
	p.metrics.RecordReconstruct(res.Stats, duration, err)
	p.logger.LogReconstruct(ctx, res.Stats, duration, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (p *pipeline) run(ctx context.Context, buf *reconstruction.PointBuffer, res *Result) error {
	if buf == nil {
		return ErrNilPointBuffer
	}
	cfg := p.opts.config
	if err := cfg.Validate(); err != nil {
		return err
	}
	interp, err := cfg.Interpolation()
	if err != nil {
		return err
	}
	slogger := p.logger.Logger
	res.Stats.Points = buf.Len()

	var surface *reconstruction.Surface
	err = p.stage(ctx, StageNormals, func() error {
		s, err := reconstruction.NewSurface(buf, p.opts.tree, cfg.SurfaceOptions(slogger))
		if err != nil {
			return err
		}
		surface = s
		return s.CalculateSurfaceNormals(ctx)
	})
	if err != nil {
		return err
	}

	var grid *reconstruction.Grid
	err = p.stage(ctx, StageGrid, func() error {
		g, err := reconstruction.NewGrid(buf.Points, cfg.GridOptions(slogger))
		if err != nil {
			return err
		}
		grid = g
		res.Stats.VoxelSize = g.VoxelSize()
		return g.CalcDistanceValues(ctx, surface)
	})
	if err != nil {
		return err
	}

	m := halfedge.New()
	res.Mesh = m
	err = p.stage(ctx, StagePolygonize, func() error {
		fr := reconstruction.NewFastReconstruction(grid, surface,
			reconstruction.WithInterpolation(interp),
			reconstruction.WithWorkers(cfg.Workers),
			reconstruction.WithLogger(slogger),
		)
		stats, err := fr.GetMesh(ctx, m)
		res.Stats.Reconstruction = stats
		return err
	})
	if err != nil {
		return err
	}

	err = p.stage(ctx, StageCleanup, func() error {
		if cfg.DanglingArtifacts > 0 {
			res.Stats.DanglingFacesRemoved = algorithm.RemoveDanglingCluster(m, cfg.DanglingArtifacts)
		}
		res.Stats.ContourFacesRemoved = algorithm.CleanContours(m, cfg.CleanContourIterations, contourAreaThreshold)
		if cfg.FillHoles > 0 {
			res.Stats.HolesFilled = algorithm.NaiveFillSmallHoles(m, cfg.FillHoles)
		}
		p.logger.LogCleanup(ctx, res.Stats.DanglingFacesRemoved, res.Stats.ContourFacesRemoved, res.Stats.HolesFilled)
		return nil
	})
	if err != nil {
		return err
	}

	if cfg.ReductionRatio > 0 {
		err = p.stage(ctx, StageReduce, func() error {
			requested := int(float64(m.NumFaces()/2) * cfg.ReductionRatio)
			done, err := algorithm.ReduceByRatio(m, cfg.ReductionRatio, algorithm.CollapseCostNormalDeviation(m))
			if err != nil {
				return err
			}
			res.Stats.Collapses = len(done)
			p.logger.LogReduction(ctx, requested, len(done), m.NumFaces())
			return nil
		})
		if err != nil {
			return err
		}
	}

	if cfg.FlipIterations > 0 {
		err = p.stage(ctx, StageFlip, func() error {
			res.Stats.Flips = algorithm.OptimizeByFlipping(m, cfg.FlipIterations)
			return nil
		})
		if err != nil {
			return err
		}
	}

	var clusters *algorithm.ClusterBiMap[handle.FaceHandle]
	faceNormals := algorithm.CalcFaceNormals(m)
	err = p.stage(ctx, StageSegment, func() error {
		if !cfg.OptimizePlanes {
			clusters = algorithm.PlanarClusterGrowing(m, faceNormals, cfg.NormalThreshold)
			return nil
		}
		clusters = algorithm.IterativePlanarClusterGrowing(m, faceNormals, cfg.NormalThreshold, cfg.PlaneIterations, cfg.MinPlaneSize)
		if cfg.SmallRegionThreshold > 0 {
			res.Stats.SmallClusterFacesRemoved = algorithm.DeleteSmallPlanarCluster(m, clusters, cfg.SmallRegionThreshold)
		}
		return nil
	})
	if err != nil {
		return err
	}
	res.Clusters = clusters
	res.FaceNormals = faceNormals
	res.Stats.Clusters = clusters.NumClusters()

	painter := algorithm.NewClusterPainter(clusters).WithPalette(p.opts.palette)
	clusterColors := painter.Paint()
	var vertexColors *attrmap.VectorMap[handle.VertexHandle, reconstruction.RGB]
	if cfg.VertexColorsFromPointCloud {
		err = p.stage(ctx, StageColor, func() error {
			colors, err := algorithm.CalcColorFromPointCloud(ctx, m, buf, surface.Tree(), cfg.Workers)
			if errors.Is(err, algorithm.ErrNoColors) {
				p.logger.WarnContext(ctx, "point cloud has no colors, using cluster colors")
				return nil
			}
			vertexColors = colors
			return err
		})
		if err != nil {
			return err
		}
	}

	return p.stage(ctx, StageFinalize, func() error {
		vertexNormals := algorithm.CalcVertexNormals(m, faceNormals, surface)

		finalizer := algorithm.NewClusterFlatteningFinalizer(clusters)
		finalizer.SetVertexNormals(vertexNormals)
		if vertexColors != nil {
			finalizer.SetVertexColors(vertexColors)
		} else {
			finalizer.SetClusterColors(clusterColors)
		}
		materials := algorithm.NewMaterializer(clusters, clusterColors).Generate()
		finalizer.SetMaterializerResult(materials)

		out, err := finalizer.Apply(m)
		if err != nil {
			return err
		}
		res.Buffer = out
		res.Stats.Materials = len(materials.Materials)
		res.Stats.Vertices = out.NumVertices()
		res.Stats.Faces = out.NumFaces()
		return nil
	})
}
