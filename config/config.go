// Package config holds the reconstruction parameters and their YAML form.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/algorithm"
	"github.com/hupe1980/meshrecon/reconstruction"
)

const (
	// DecompositionPMC places vertices with the bilinear (planar) strategy.
	DecompositionPMC = "PMC"
	// DecompositionMC places vertices by linear interpolation.
	DecompositionMC = "MC"
)

// ErrUnknownDecomposition is returned for decomposition names other than
// DecompositionPMC and DecompositionMC.
var ErrUnknownDecomposition = errors.New("unknown decomposition")

// ValidationError reports an invalid configuration field.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ValidationError struct {
	Field  string
	Reason string
	cause  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config field %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.cause }

// Config configures a reconstruction run.
type Config struct {
	// VoxelSize is the edge length of a grid cell. Ignored when
	// Intersections is positive.
	VoxelSize float64 `yaml:"voxel_size"`
	// Intersections derives the voxel size from the longest side of the
	// bounding box. Zero disables it.
	Intersections int `yaml:"intersections"`

	KN int `yaml:"kn"`
	KI int `yaml:"ki"`
	KD int `yaml:"kd"`

	// FlipPoint orients estimated normals toward it when set (x, y, z).
	FlipPoint     []float64 `yaml:"flip_point,omitempty"`
	RecalcNormals bool      `yaml:"recalc_normals"`

	Decomposition string `yaml:"decomposition"`
	Extrude       bool   `yaml:"extrude"`
	Workers       int    `yaml:"workers"`

	DanglingArtifacts      int `yaml:"dangling_artifacts"`
	CleanContourIterations int `yaml:"clean_contour_iterations"`
	FillHoles              int `yaml:"fill_holes"`

	// ReductionRatio in (0, 1] enables edge collapse; 0 disables it.
	ReductionRatio float64 `yaml:"reduction_ratio"`
	FlipIterations int     `yaml:"flip_iterations"`

	// NormalThreshold is the minimum cosine between neighboring face
	// normals of one planar cluster.
	NormalThreshold      float64 `yaml:"normal_threshold"`
	OptimizePlanes       bool    `yaml:"optimize_planes"`
	PlaneIterations      int     `yaml:"plane_iterations"`
	MinPlaneSize         int     `yaml:"min_plane_size"`
	SmallRegionThreshold int     `yaml:"small_region_threshold"`

	VertexColorsFromPointCloud bool `yaml:"vertex_colors_from_point_cloud"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		VoxelSize:       10,
		KN:              10,
		KI:              10,
		KD:              5,
		Decomposition:   DecompositionPMC,
		Extrude:         true,
		NormalThreshold: 0.85,
		PlaneIterations: 3,
		MinPlaneSize:    7,
		// Only applied with OptimizePlanes.
		SmallRegionThreshold: 10,
	}
}

// Validate checks all fields and returns the first violation.
func (c *Config) Validate() error {
	if c.Intersections < 0 {
		return &ValidationError{Field: "intersections", Reason: "must not be negative"}
	}
	if c.Intersections == 0 && !(c.VoxelSize > 0) {
		return &ValidationError{Field: "voxel_size", Reason: fmt.Sprintf("must be positive, got %v", c.VoxelSize)}
	}

	for _, k := range []struct {
		field string
		value int
	}{{"kn", c.KN}, {"ki", c.KI}, {"kd", c.KD}} {
		if k.value <= 0 {
			return &ValidationError{Field: k.field, Reason: fmt.Sprintf("must be positive, got %d", k.value), cause: reconstruction.ErrInvalidNeighborhood}
		}
	}

	if len(c.FlipPoint) != 0 && len(c.FlipPoint) != 3 {
		return &ValidationError{Field: "flip_point", Reason: fmt.Sprintf("needs 3 coordinates, got %d", len(c.FlipPoint))}
	}

	if _, err := c.Interpolation(); err != nil {
		return &ValidationError{Field: "decomposition", Reason: err.Error(), cause: err}
	}

	for _, n := range []struct {
		field string
		value int
	}{
		{"workers", c.Workers},
		{"dangling_artifacts", c.DanglingArtifacts},
		{"clean_contour_iterations", c.CleanContourIterations},
		{"fill_holes", c.FillHoles},
		{"flip_iterations", c.FlipIterations},
		{"plane_iterations", c.PlaneIterations},
		{"min_plane_size", c.MinPlaneSize},
		{"small_region_threshold", c.SmallRegionThreshold},
	} {
		if n.value < 0 {
			return &ValidationError{Field: n.field, Reason: fmt.Sprintf("must not be negative, got %d", n.value)}
		}
	}

	if math.IsNaN(c.ReductionRatio) || c.ReductionRatio < 0 || c.ReductionRatio > 1 {
		return &ValidationError{
			Field:  "reduction_ratio",
			Reason: fmt.Sprintf("must be between 0 and 1, got %v", c.ReductionRatio),
			cause:  algorithm.ErrInvalidReductionRatio,
		}
	}
	if math.IsNaN(c.NormalThreshold) || c.NormalThreshold < -1 || c.NormalThreshold > 1 {
		return &ValidationError{Field: "normal_threshold", Reason: fmt.Sprintf("must be a cosine in [-1, 1], got %v", c.NormalThreshold)}
	}
	return nil
}

// Interpolation maps the decomposition name to a vertex placement strategy.
func (c *Config) Interpolation() (reconstruction.Interpolation, error) {
	switch c.Decomposition {
	case DecompositionPMC:
		return reconstruction.Bilinear, nil
	case DecompositionMC:
		return reconstruction.Linear, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDecomposition, c.Decomposition)
	}
}

// FlipVec returns the flip point, or nil if none is configured.
func (c *Config) FlipVec() *r3.Vec {
	if len(c.FlipPoint) != 3 {
		return nil
	}
	return &r3.Vec{X: c.FlipPoint[0], Y: c.FlipPoint[1], Z: c.FlipPoint[2]}
}

// SurfaceOptions returns the surface parameters of c.
func (c *Config) SurfaceOptions(logger *slog.Logger) reconstruction.SurfaceOptions {
	return reconstruction.SurfaceOptions{
		KN:            c.KN,
		KI:            c.KI,
		KD:            c.KD,
		FlipPoint:     c.FlipVec(),
		RecalcNormals: c.RecalcNormals,
		Workers:       c.Workers,
		Logger:        logger,
	}
}

// GridOptions returns the grid parameters of c.
func (c *Config) GridOptions(logger *slog.Logger) reconstruction.GridOptions {
	return reconstruction.GridOptions{
		VoxelSize:     c.VoxelSize,
		Intersections: c.Intersections,
		Extrude:       c.Extrude,
		Workers:       c.Workers,
		Logger:        logger,
	}
}
