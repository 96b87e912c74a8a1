package reconstruction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/geometry"
	"github.com/hupe1980/meshrecon/internal/parallel"
	"github.com/hupe1980/meshrecon/search"
)

// PointsetSurface is an implicit surface that can be sampled anywhere in space.
type PointsetSurface interface {
	// Distance returns the signed distance from p to the surface. Negative
	// values lie inside.
	Distance(p r3.Vec) float64

	// Normal returns the outward surface normal closest to p.
	Normal(p r3.Vec) r3.Vec
}

// Compile time check to ensure Surface satisfies the PointsetSurface interface.
var _ PointsetSurface = (*Surface)(nil)

// readySurface is implemented by surfaces that need preparation before they
// can be sampled.
type readySurface interface {
	Ready() error
}

// checkReady returns the Ready error of surface, if it has one.
func checkReady(surface PointsetSurface) error {
	if rs, ok := surface.(readySurface); ok {
		return rs.Ready()
	}
	return nil
}

// SurfaceOptions configures a Surface.
type SurfaceOptions struct {
	// KN is the neighborhood size for plane fitting during normal estimation.
	KN int
	// KI is the neighborhood size for normal interpolation.
	KI int
	// KD is the neighborhood size for distance evaluation.
	KD int
	// FlipPoint, when set, orients estimated normals toward this point.
	// Otherwise normals point away from the centroid of the cloud.
	FlipPoint *r3.Vec
	// RecalcNormals forces normal estimation even if the buffer has normals.
	RecalcNormals bool
	// Workers bounds the parallelism of normal estimation (0 = GOMAXPROCS).
	Workers int
	// Logger receives progress messages. Nil disables logging.
	Logger *slog.Logger
}

// DefaultSurfaceOptions contains the default neighborhood sizes.
var DefaultSurfaceOptions = SurfaceOptions{
	KN: 10,
	KI: 10,
	KD: 5,
}

// Surface estimates a signed distance field from an oriented point cloud by
// averaging the kd nearest points and normals around a query.
type Surface struct {
	buf     *PointBuffer
	tree    search.Tree
	normals []r3.Vec
	opts    SurfaceOptions
	logger  *slog.Logger
}

// NewSurface creates a surface over buf. A nil tree builds a k-d tree.
// Normals present in buf are used as given until CalculateSurfaceNormals
// is asked to recompute them.
func NewSurface(buf *PointBuffer, tree search.Tree, opts SurfaceOptions) (*Surface, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if opts.KN <= 0 || opts.KI <= 0 || opts.KD <= 0 {
		return nil, fmt.Errorf("%w: kn=%d ki=%d kd=%d", ErrInvalidNeighborhood, opts.KN, opts.KI, opts.KD)
	}
	if tree == nil {
		tree = search.NewKDTree(buf.Points)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Surface{
		buf:    buf,
		tree:   tree,
		opts:   opts,
		logger: logger,
	}
	if buf.HasNormals() {
		s.normals = buf.Normals
	}
	return s, nil
}

// PointBuffer returns the underlying point cloud.
func (s *Surface) PointBuffer() *PointBuffer { return s.buf }

// Tree returns the nearest neighbor oracle over the point positions.
func (s *Surface) Tree() search.Tree { return s.tree }

// Normals returns the per-point normals, or nil before they are known.
func (s *Surface) Normals() []r3.Vec { return s.normals }

// BoundingBox returns the bounds of the point cloud.
func (s *Surface) BoundingBox() geometry.BoundingBox { return s.buf.BoundingBox() }

// CalculateSurfaceNormals estimates one outward normal per point.
//
// Each point gets the normal of a least squares plane through its KN nearest
// neighbors, oriented by the flip point, and is then replaced by the mean of
// the raw normals of its KI nearest neighbors. Buffers that already carry
// normals are left untouched unless RecalcNormals is set.
func (s *Surface) CalculateSurfaceNormals(ctx context.Context) error {
	if s.normals != nil && !s.opts.RecalcNormals {
		s.logger.Debug("using given normals", "points", s.buf.Len())
		return nil
	}

	start := time.Now()
	pts := s.buf.Points

	orient := s.orientation()
	raw := make([]r3.Vec, len(pts))
	err := parallel.Range(ctx, len(pts), s.opts.Workers, func(lo, hi int) error {
		nbPts := make([]r3.Vec, 0, s.opts.KN)
		for i := lo; i < hi; i++ {
			nbPts = nbPts[:0]
			for _, nb := range s.tree.KSearch(pts[i], s.opts.KN) {
				nbPts = append(nbPts, pts[nb.Index])
			}
			raw[i] = orient(pts[i], fitPlaneNormal(nbPts))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("estimate normals: %w", err)
	}

	smoothed := make([]r3.Vec, len(pts))
	err = parallel.Range(ctx, len(pts), s.opts.Workers, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			var sum r3.Vec
			for _, nb := range s.tree.KSearch(pts[i], s.opts.KI) {
				sum = r3.Add(sum, raw[nb.Index])
			}
			smoothed[i] = geometry.Normalize(sum, raw[i])
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("interpolate normals: %w", err)
	}

	s.normals = smoothed
	s.logger.Info("estimated normals",
		"points", len(pts),
		"kn", s.opts.KN,
		"ki", s.opts.KI,
		"duration", time.Since(start),
	)
	return nil
}

func (s *Surface) orientation() func(p, n r3.Vec) r3.Vec {
	if s.opts.FlipPoint != nil {
		fp := *s.opts.FlipPoint
		return func(p, n r3.Vec) r3.Vec {
			if r3.Dot(n, r3.Sub(fp, p)) < 0 {
				return r3.Scale(-1, n)
			}
			return n
		}
	}
	c := geometry.Centroid(s.buf.Points)
	return func(p, n r3.Vec) r3.Vec {
		if r3.Dot(n, r3.Sub(p, c)) < 0 {
			return r3.Scale(-1, n)
		}
		return n
	}
}

// Ready returns ErrMissingNormals while the surface has no per-point normals.
// Distance and Normal must not be called before Ready returns nil.
func (s *Surface) Ready() error {
	if len(s.normals) != s.buf.Len() {
		return fmt.Errorf("%w: call CalculateSurfaceNormals first", ErrMissingNormals)
	}
	return nil
}

// Distance returns the signed distance from p to the plane through the mean
// of its KD nearest points, oriented by their mean normal.
func (s *Surface) Distance(p r3.Vec) float64 {
	c, n := s.localPlane(p)
	return r3.Dot(r3.Sub(p, c), n)
}

// Normal returns the mean normal of the KD nearest points.
func (s *Surface) Normal(p r3.Vec) r3.Vec {
	_, n := s.localPlane(p)
	return n
}

func (s *Surface) localPlane(p r3.Vec) (center, normal r3.Vec) {
	nbs := s.tree.KSearch(p, s.opts.KD)
	if len(nbs) == 0 {
		return p, r3.Vec{Z: 1}
	}
	var sumP, sumN r3.Vec
	for _, nb := range nbs {
		sumP = r3.Add(sumP, s.buf.Points[nb.Index])
		sumN = r3.Add(sumN, s.normals[nb.Index])
	}
	center = r3.Scale(1/float64(len(nbs)), sumP)
	normal = geometry.Normalize(sumN, s.normals[nbs[0].Index])
	return center, normal
}

// fitPlaneNormal returns the eigenvector of the smallest eigenvalue of the
// covariance of pts, the normal of their least squares plane.
func fitPlaneNormal(pts []r3.Vec) r3.Vec {
	up := r3.Vec{Z: 1}
	if len(pts) < 3 {
		return up
	}

	c := geometry.Centroid(pts)
	var cov [9]float64
	for _, p := range pts {
		d := r3.Sub(p, c)
		v := [3]float64{d.X, d.Y, d.Z}
		for i := range 3 {
			for j := range 3 {
				cov[i*3+j] += v[i] * v[j]
			}
		}
	}

	var es mat.EigenSym
	if !es.Factorize(mat.NewSymDense(3, cov[:]), true) {
		return up
	}
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	// Eigenvalues are returned in ascending order.
	n := r3.Vec{X: vecs.At(0, 0), Y: vecs.At(1, 0), Z: vecs.At(2, 0)}
	return geometry.Normalize(n, up)
}
