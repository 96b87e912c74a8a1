// Package testutil provides testing utilities for meshrecon.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded random point generators, synthetic point clouds with
// exact normals, and small reference meshes.
//
// # Reference Meshes
//
//	m, vs := testutil.House(5)   // 9 vertices, 14 triangles, closed
//	grid := testutil.PlaneGrid(4) // 4x4 quads, 32 triangles, one boundary loop
//
// # Point Clouds
//
//	pts, normals := testutil.CubeSurface(1, 41)
//	pts, normals := testutil.SphereSurface(center, 1, 4000)
//
// # Analytic Distance Fields
//
//	sdf := testutil.Sphere{Center: center, Radius: 1}
package testutil
