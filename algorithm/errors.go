package algorithm

import "errors"

var (
	// ErrInvalidReductionRatio is returned when a reduction ratio lies outside (0, 1].
	ErrInvalidReductionRatio = errors.New("algorithm: reduction ratio must be in (0, 1]")

	// ErrNotContourEdge is returned when a contour walk starts at an edge that
	// does not separate the region from the rest of the mesh.
	ErrNotContourEdge = errors.New("algorithm: edge is not on the region contour")

	// ErrNoColors is returned when colors are requested from a point buffer
	// without colors.
	ErrNoColors = errors.New("algorithm: point buffer has no colors")
)
