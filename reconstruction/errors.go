package reconstruction

import "errors"

var (
	// ErrEmptyPointCloud is returned when a reconstruction input holds no points.
	ErrEmptyPointCloud = errors.New("reconstruction: empty point cloud")

	// ErrDegenerateBoundingBox is returned when the points span no volume along
	// every axis, so no grid resolution can be derived.
	ErrDegenerateBoundingBox = errors.New("reconstruction: degenerate bounding box")

	// ErrInvalidResolution is returned for a non-positive voxel size or
	// intersection count.
	ErrInvalidResolution = errors.New("reconstruction: invalid resolution")

	// ErrAttributeLength is returned when per-point normals or colors do not
	// match the number of points.
	ErrAttributeLength = errors.New("reconstruction: attribute length does not match point count")

	// ErrMissingNormals is returned when a Surface is sampled before its
	// normals are known.
	ErrMissingNormals = errors.New("reconstruction: surface has no normals")

	// ErrInvalidNeighborhood is returned when kn, ki or kd is not positive.
	ErrInvalidNeighborhood = errors.New("reconstruction: neighborhood sizes must be positive")
)
