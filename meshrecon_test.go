package meshrecon

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/algorithm"
	"github.com/hupe1980/meshrecon/config"
	"github.com/hupe1980/meshrecon/reconstruction"
	"github.com/hupe1980/meshrecon/search"
	"github.com/hupe1980/meshrecon/testutil"
)

func cubeCloud() *reconstruction.PointBuffer {
	pts, normals := testutil.CubeSurface(1, 21)
	return &reconstruction.PointBuffer{Points: pts, Normals: normals}
}

func cubeConfig() *config.Config {
	cfg := config.Default()
	cfg.Intersections = 10
	return cfg
}

func assertBuffer(t *testing.T, res *Result) {
	t.Helper()
	require.NoError(t, res.Mesh.DebugCheckMeshIntegrity())

	out := res.Buffer
	require.NotNil(t, out)
	assert.Positive(t, out.NumFaces())
	assert.Len(t, out.Normals, out.NumVertices())
	assert.Len(t, out.Colors, out.NumVertices())
	assert.Len(t, out.FaceMaterials, out.NumFaces())
	assert.Equal(t, res.Mesh.NumFaces(), out.NumFaces())
	assert.Equal(t, out.NumFaces(), res.Stats.Faces)
	assert.Equal(t, out.NumVertices(), res.Stats.Vertices)

	for _, f := range out.Faces {
		for _, idx := range f {
			assert.Less(t, int(idx), out.NumVertices())
		}
	}
	for i, mat := range out.FaceMaterials {
		assert.True(t, mat >= 0 && mat < len(out.Materials), "face %d has material %d", i, mat)
	}
	for _, n := range out.Normals {
		assert.InDelta(t, 1, r3.Norm(n), 1e-9)
	}
	for _, p := range out.Vertices {
		for _, c := range []float64{p.X, p.Y, p.Z} {
			assert.Greater(t, c, -0.2)
			assert.Less(t, c, 1.2)
		}
	}
}

func TestReconstruct(t *testing.T) {
	ctx := context.Background()

	t.Run("Cube", func(t *testing.T) {
		res, err := Reconstruct(ctx, cubeCloud(), WithConfig(cubeConfig()))
		require.NoError(t, err)
		assertBuffer(t, res)

		assert.Equal(t, 6*21*21, res.Stats.Points)
		assert.InDelta(t, 0.1, res.Stats.VoxelSize, 1e-12)
		assert.Zero(t, res.Stats.Reconstruction.FailedFaces)
		assert.Equal(t, res.Stats.Reconstruction.Faces, res.Mesh.NumFaces())
		assert.Zero(t, res.Stats.Collapses)

		assert.Equal(t, res.Clusters.NumClusters(), res.Stats.Clusters)
		assert.Equal(t, res.Mesh.NumFaces(), res.Clusters.NumMembers())
		assert.LessOrEqual(t, res.Stats.Materials, res.Stats.Clusters)
	})

	t.Run("Reduced", func(t *testing.T) {
		cfg := cubeConfig()
		cfg.ReductionRatio = 0.5

		res, err := Reconstruct(ctx, cubeCloud(), WithConfig(cfg))
		require.NoError(t, err)
		assertBuffer(t, res)

		initial := res.Stats.Reconstruction.Faces
		assert.Positive(t, res.Stats.Collapses)
		assert.LessOrEqual(t, res.Stats.Collapses, int(float64(initial/2)*0.5))
		// Every collapse on the closed surface removes two triangles.
		assert.Equal(t, initial-2*res.Stats.Collapses, res.Mesh.NumFaces())
	})

	t.Run("OptimizePlanes", func(t *testing.T) {
		cfg := cubeConfig()
		cfg.OptimizePlanes = true
		cfg.SmallRegionThreshold = 0

		res, err := Reconstruct(ctx, cubeCloud(), WithConfig(cfg))
		require.NoError(t, err)
		assertBuffer(t, res)
		assert.Equal(t, res.Mesh.NumFaces(), res.Clusters.NumMembers())
		assert.Zero(t, res.Stats.SmallClusterFacesRemoved)
	})

	t.Run("SmallRegions", func(t *testing.T) {
		cfg := cubeConfig()
		cfg.OptimizePlanes = true
		cfg.SmallRegionThreshold = 10

		res, err := Reconstruct(ctx, cubeCloud(), WithConfig(cfg))
		require.NoError(t, err)
		require.NoError(t, res.Mesh.DebugCheckMeshIntegrity())
		assert.Equal(t, res.Stats.Reconstruction.Faces-res.Stats.SmallClusterFacesRemoved, res.Mesh.NumFaces())
		for c := range res.Clusters.Clusters() {
			assert.GreaterOrEqual(t, res.Clusters.ClusterSize(c), 10)
		}
	})

	t.Run("Flip", func(t *testing.T) {
		cfg := cubeConfig()
		cfg.ReductionRatio = 0.3
		cfg.FlipIterations = 3

		res, err := Reconstruct(ctx, cubeCloud(), WithConfig(cfg))
		require.NoError(t, err)
		assertBuffer(t, res)
		assert.GreaterOrEqual(t, res.Stats.Flips, 0)
	})

	t.Run("VertexColors", func(t *testing.T) {
		buf := cubeCloud()
		red := reconstruction.RGB{200, 10, 10}
		for range buf.Points {
			buf.Colors = append(buf.Colors, red)
		}
		cfg := cubeConfig()
		cfg.VertexColorsFromPointCloud = true

		res, err := Reconstruct(ctx, buf, WithConfig(cfg), WithSearchTree(search.NewFlat(buf.Points)))
		require.NoError(t, err)
		assertBuffer(t, res)
		for _, c := range res.Buffer.Colors {
			assert.Equal(t, red, c)
		}
	})

	t.Run("VertexColorsMissing", func(t *testing.T) {
		cfg := cubeConfig()
		cfg.VertexColorsFromPointCloud = true
		palette := []reconstruction.RGB{{1, 2, 3}}

		res, err := Reconstruct(ctx, cubeCloud(), WithConfig(cfg), WithPalette(palette))
		require.NoError(t, err)
		assertBuffer(t, res)
		for _, c := range res.Buffer.Colors {
			assert.Equal(t, palette[0], c)
		}
		assert.Len(t, res.Buffer.Materials, 1)
	})
}

func TestReconstruct_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("NilBuffer", func(t *testing.T) {
		_, err := Reconstruct(ctx, nil)
		assert.ErrorIs(t, err, ErrNilPointBuffer)
	})

	t.Run("EmptyCloud", func(t *testing.T) {
		_, err := Reconstruct(ctx, &reconstruction.PointBuffer{}, WithConfig(cubeConfig()))
		require.ErrorIs(t, err, ErrEmptyPointCloud)

		var sf *ErrStageFailed
		require.True(t, errors.As(err, &sf))
		assert.Equal(t, StageNormals, sf.Stage)
	})

	t.Run("InvalidConfig", func(t *testing.T) {
		cfg := cubeConfig()
		cfg.Decomposition = "SF"

		_, err := Reconstruct(ctx, cubeCloud(), WithConfig(cfg))
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.ErrorIs(t, err, config.ErrUnknownDecomposition)
	})

	t.Run("InvalidRatio", func(t *testing.T) {
		cfg := cubeConfig()
		cfg.ReductionRatio = 2

		_, err := Reconstruct(ctx, cubeCloud(), WithConfig(cfg))
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.ErrorIs(t, err, algorithm.ErrInvalidReductionRatio)
	})

	t.Run("Canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := Reconstruct(cctx, cubeCloud(), WithConfig(cubeConfig()))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestReconstruct_Metrics(t *testing.T) {
	metrics := &BasicMetricsCollector{}

	res, err := Reconstruct(context.Background(), cubeCloud(),
		WithConfig(cubeConfig()),
		WithMetricsCollector(metrics),
	)
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.ReconstructCount)
	assert.Zero(t, stats.ReconstructErrors)
	assert.Equal(t, int64(6), stats.StageCount)
	for _, stage := range []string{StageNormals, StageGrid, StagePolygonize, StageCleanup, StageSegment, StageFinalize} {
		assert.Equal(t, int64(1), stats.StageRuns[stage], stage)
	}
	assert.NotContains(t, stats.StageRuns, StageReduce)
	assert.Equal(t, int64(res.Stats.Points), stats.PointsProcessed)
	assert.Equal(t, int64(res.Stats.Faces), stats.FacesProduced)

	_, err = Reconstruct(context.Background(), &reconstruction.PointBuffer{},
		WithConfig(cubeConfig()),
		WithMetricsCollector(metrics),
	)
	require.Error(t, err)

	stats = metrics.GetStats()
	assert.Equal(t, int64(2), stats.ReconstructCount)
	assert.Equal(t, int64(1), stats.ReconstructErrors)
	assert.Equal(t, int64(1), stats.StageErrors)
}

func TestReconstruct_Logger(t *testing.T) {
	var out bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Reconstruct(context.Background(), cubeCloud(),
		WithConfig(cubeConfig()),
		WithLogger(logger),
	)
	require.NoError(t, err)

	logs := out.String()
	assert.Contains(t, logs, `"msg":"stage completed"`)
	assert.Contains(t, logs, `"stage":"polygonize"`)
	assert.Contains(t, logs, `"msg":"mesh cleaned"`)
	assert.Contains(t, logs, `"msg":"reconstruction completed"`)
}

func TestOptions_NilValues(t *testing.T) {
	o := applyOptions([]Option{WithConfig(nil), WithLogger(nil), WithMetricsCollector(nil), nil})
	assert.Equal(t, config.Default(), o.config)
	assert.NotNil(t, o.logger)
	assert.Equal(t, NoopMetricsCollector{}, o.metricsCollector)
}
