package reconstruction

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/geometry"
)

// RGB is an 8-bit color.
type RGB [3]uint8

// PointBuffer is an unorganized point cloud with optional per-point
// attributes. Normals and Colors are either empty or have one entry per point.
type PointBuffer struct {
	Points  []r3.Vec
	Normals []r3.Vec
	Colors  []RGB
}

// Len returns the number of points.
func (b *PointBuffer) Len() int { return len(b.Points) }

// HasNormals reports whether every point carries a normal.
func (b *PointBuffer) HasNormals() bool { return len(b.Normals) > 0 }

// HasColors reports whether every point carries a color.
func (b *PointBuffer) HasColors() bool { return len(b.Colors) > 0 }

// BoundingBox returns the axis aligned bounds of the points.
func (b *PointBuffer) BoundingBox() geometry.BoundingBox {
	return geometry.NewBoundingBox(b.Points)
}

// Validate checks the buffer for emptiness and attribute consistency.
func (b *PointBuffer) Validate() error {
	if len(b.Points) == 0 {
		return ErrEmptyPointCloud
	}
	if b.HasNormals() && len(b.Normals) != len(b.Points) {
		return fmt.Errorf("%w: %d normals for %d points", ErrAttributeLength, len(b.Normals), len(b.Points))
	}
	if b.HasColors() && len(b.Colors) != len(b.Points) {
		return fmt.Errorf("%w: %d colors for %d points", ErrAttributeLength, len(b.Colors), len(b.Points))
	}
	return nil
}
