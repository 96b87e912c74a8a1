package testutil

import (
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/handle"
	"github.com/hupe1980/meshrecon/halfedge"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformPoints generates num points uniformly inside the box [lo, hi).
func (r *RNG) UniformPoints(num int, lo, hi r3.Vec) []r3.Vec {
	r.mu.Lock()
	defer r.mu.Unlock()

	span := r3.Sub(hi, lo)
	pts := make([]r3.Vec, num)
	for i := range pts {
		pts[i] = r3.Vec{
			X: lo.X + r.rand.Float64()*span.X,
			Y: lo.Y + r.rand.Float64()*span.Y,
			Z: lo.Z + r.rand.Float64()*span.Z,
		}
	}
	return pts
}

// Jitter displaces every point by a uniform offset in [-amount, amount).
func (r *RNG) Jitter(pts []r3.Vec, amount float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range pts {
		pts[i].X += (r.rand.Float64()*2 - 1) * amount
		pts[i].Y += (r.rand.Float64()*2 - 1) * amount
		pts[i].Z += (r.rand.Float64()*2 - 1) * amount
	}
}

// House builds the "house of Nikolaus": a cube of the given edge length with
// a pyramid roof in place of its top side, 9 vertices and 14 triangles. Faces are added in
// a fixed order, so face handles 0 and 1 are the floor and 10 is the front
// roof triangle.
func House(size float64) (*halfedge.Mesh, []handle.VertexHandle) {
	s := size
	m := halfedge.New()
	p := []handle.VertexHandle{
		m.AddVertex(r3.Vec{X: 0, Y: 0, Z: 0}),
		m.AddVertex(r3.Vec{X: s, Y: 0, Z: 0}),
		m.AddVertex(r3.Vec{X: s, Y: 0, Z: s}),
		m.AddVertex(r3.Vec{X: 0, Y: 0, Z: s}),
		m.AddVertex(r3.Vec{X: 0, Y: s, Z: 0}),
		m.AddVertex(r3.Vec{X: s, Y: s, Z: 0}),
		m.AddVertex(r3.Vec{X: s, Y: s, Z: s}),
		m.AddVertex(r3.Vec{X: 0, Y: s, Z: s}),
		m.AddVertex(r3.Vec{X: s / 2, Y: s + s/2, Z: s / 2}),
	}

	faces := [][3]int{
		{0, 1, 2}, {0, 2, 3}, // floor
		{1, 5, 6}, {1, 6, 2}, // right
		{3, 7, 4}, {4, 0, 3}, // left
		{7, 3, 2}, {2, 6, 7}, // front
		{0, 4, 5}, {5, 1, 0}, // back
		{7, 6, 8}, {4, 7, 8}, {5, 4, 8}, {6, 5, 8}, // roof
	}
	for _, f := range faces {
		if _, err := m.AddFace(p[f[0]], p[f[1]], p[f[2]]); err != nil {
			panic(err)
		}
	}
	return m, p
}

// PlaneGrid builds an n x n grid of unit quads in the z=0 plane, each split
// into two counter-clockwise triangles. The result has a single boundary loop.
func PlaneGrid(n int) *halfedge.Mesh {
	m := halfedge.New()
	vs := make([]handle.VertexHandle, 0, (n+1)*(n+1))
	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			vs = append(vs, m.AddVertex(r3.Vec{X: float64(x), Y: float64(y)}))
		}
	}
	at := func(x, y int) handle.VertexHandle { return vs[y*(n+1)+x] }
	for y := range n {
		for x := range n {
			a, b, c, d := at(x, y), at(x+1, y), at(x+1, y+1), at(x, y+1)
			if _, err := m.AddFace(a, b, c); err != nil {
				panic(err)
			}
			if _, err := m.AddFace(a, c, d); err != nil {
				panic(err)
			}
		}
	}
	return m
}

// CubeSurface samples the surface of the axis aligned cube [0, size]^3 on a
// regular (perFace x perFace) lattice per side and returns positions and
// exact outward normals. Points on shared cube edges are emitted once per side.
func CubeSurface(size float64, perFace int) (points, normals []r3.Vec) {
	step := size / float64(perFace-1)
	sides := []struct {
		normal r3.Vec
		at     func(u, v float64) r3.Vec
	}{
		{r3.Vec{X: -1}, func(u, v float64) r3.Vec { return r3.Vec{X: 0, Y: u, Z: v} }},
		{r3.Vec{X: 1}, func(u, v float64) r3.Vec { return r3.Vec{X: size, Y: u, Z: v} }},
		{r3.Vec{Y: -1}, func(u, v float64) r3.Vec { return r3.Vec{X: u, Y: 0, Z: v} }},
		{r3.Vec{Y: 1}, func(u, v float64) r3.Vec { return r3.Vec{X: u, Y: size, Z: v} }},
		{r3.Vec{Z: -1}, func(u, v float64) r3.Vec { return r3.Vec{X: u, Y: v, Z: 0} }},
		{r3.Vec{Z: 1}, func(u, v float64) r3.Vec { return r3.Vec{X: u, Y: v, Z: size} }},
	}
	for _, side := range sides {
		for i := range perFace {
			for j := range perFace {
				points = append(points, side.at(float64(i)*step, float64(j)*step))
				normals = append(normals, side.normal)
			}
		}
	}
	return points, normals
}

// SphereSurface returns n points on a Fibonacci lattice over the sphere
// with the given center and radius, together with their outward normals.
func SphereSurface(center r3.Vec, radius float64, n int) (points, normals []r3.Vec) {
	golden := math.Pi * (3 - math.Sqrt(5))
	for i := range n {
		y := 1 - 2*(float64(i)+0.5)/float64(n)
		r := math.Sqrt(1 - y*y)
		theta := golden * float64(i)
		dir := r3.Vec{X: math.Cos(theta) * r, Y: y, Z: math.Sin(theta) * r}
		points = append(points, r3.Add(center, r3.Scale(radius, dir)))
		normals = append(normals, dir)
	}
	return points, normals
}

// Sphere is an analytic signed distance field, negative inside.
type Sphere struct {
	Center r3.Vec
	Radius float64
}

// Distance returns the signed distance from p to the sphere surface.
func (s Sphere) Distance(p r3.Vec) float64 {
	return r3.Norm(r3.Sub(p, s.Center)) - s.Radius
}

// Normal returns the outward unit normal of the sphere at the projection of p.
func (s Sphere) Normal(p r3.Vec) r3.Vec {
	d := r3.Sub(p, s.Center)
	l := r3.Norm(d)
	if l == 0 {
		return r3.Vec{Z: 1}
	}
	return r3.Scale(1/l, d)
}
