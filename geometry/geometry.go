// Package geometry holds small 3D helpers shared by the mesh and
// reconstruction packages. Vectors are gonum r3.Vec values.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// BoundingBox is an axis aligned box. The zero value is empty.
type BoundingBox struct {
	Min, Max r3.Vec
	valid    bool
}

// NewBoundingBox returns the smallest box containing pts.
func NewBoundingBox(pts []r3.Vec) BoundingBox {
	var bb BoundingBox
	for _, p := range pts {
		bb.Expand(p)
	}
	return bb
}

// Expand grows the box to contain p.
func (bb *BoundingBox) Expand(p r3.Vec) {
	if !bb.valid {
		bb.Min, bb.Max, bb.valid = p, p, true
		return
	}
	bb.Min = r3.Vec{X: math.Min(bb.Min.X, p.X), Y: math.Min(bb.Min.Y, p.Y), Z: math.Min(bb.Min.Z, p.Z)}
	bb.Max = r3.Vec{X: math.Max(bb.Max.X, p.X), Y: math.Max(bb.Max.Y, p.Y), Z: math.Max(bb.Max.Z, p.Z)}
}

// IsValid reports whether the box contains at least one point.
func (bb BoundingBox) IsValid() bool { return bb.valid }

// Size returns the extent along each axis.
func (bb BoundingBox) Size() r3.Vec { return r3.Sub(bb.Max, bb.Min) }

// LongestSide returns the largest extent.
func (bb BoundingBox) LongestSide() float64 {
	s := bb.Size()
	return math.Max(s.X, math.Max(s.Y, s.Z))
}

// Centroid returns the box center.
func (bb BoundingBox) Centroid() r3.Vec { return r3.Scale(0.5, r3.Add(bb.Min, bb.Max)) }

// TriangleNormal returns the unit normal of the counter-clockwise triangle
// (a, b, c), or the zero vector if the triangle is degenerate.
func TriangleNormal(a, b, c r3.Vec) r3.Vec {
	n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	l := r3.Norm(n)
	if l == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/l, n)
}

// TriangleArea returns the area of the triangle (a, b, c).
func TriangleArea(a, b, c r3.Vec) float64 {
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
}

// Centroid returns the mean of pts.
func Centroid(pts []r3.Vec) r3.Vec {
	var c r3.Vec
	if len(pts) == 0 {
		return c
	}
	for _, p := range pts {
		c = r3.Add(c, p)
	}
	return r3.Scale(1/float64(len(pts)), c)
}

// Normalize returns v scaled to unit length, or fallback if v is (nearly) zero.
func Normalize(v, fallback r3.Vec) r3.Vec {
	l := r3.Norm(v)
	if l < 1e-12 {
		return fallback
	}
	return r3.Scale(1/l, v)
}

// Angle returns the angle between two unit vectors in radians.
func Angle(a, b r3.Vec) float64 {
	return math.Acos(math.Max(-1, math.Min(1, r3.Dot(a, b))))
}

// MinTriangleAngle returns the smallest interior angle of the triangle
// (a, b, c) in radians.
func MinTriangleAngle(a, b, c r3.Vec) float64 {
	corner := func(p, q, r r3.Vec) float64 {
		u := Normalize(r3.Sub(q, p), r3.Vec{})
		v := Normalize(r3.Sub(r, p), r3.Vec{})
		return Angle(u, v)
	}
	return math.Min(corner(a, b, c), math.Min(corner(b, c, a), corner(c, a, b)))
}
