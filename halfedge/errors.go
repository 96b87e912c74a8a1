package halfedge

import (
	"errors"
	"fmt"
)

var (
	// ErrNonManifold is returned when a face insertion would produce a complex
	// vertex or an edge with more than two faces.
	ErrNonManifold = errors.New("halfedge: non-manifold topology")

	// ErrDegenerateFace is returned when a face has fewer than 3 distinct vertices.
	ErrDegenerateFace = errors.New("halfedge: face needs at least 3 distinct vertices")

	// ErrNotCollapsable is returned by CollapseEdge when IsCollapsable is false.
	ErrNotCollapsable = errors.New("halfedge: edge is not collapsable")

	// ErrNotFlippable is returned by FlipEdge when IsFlippable is false.
	ErrNotFlippable = errors.New("halfedge: edge is not flippable")

	// ErrNotWireEdge is returned by RemoveWireEdge for an edge with a face.
	ErrNotWireEdge = errors.New("halfedge: edge has an adjacent face")

	// ErrInvalidHandle is returned when a handle does not refer to a live entity.
	ErrInvalidHandle = errors.New("halfedge: invalid handle")
)

// IntegrityError describes the first invariant violation found by
// DebugCheckMeshIntegrity.
type IntegrityError struct {
	Entity string // "vertex", "halfedge" or "face"
	Handle uint32
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("halfedge: integrity violation at %s %d: %s", e.Entity, e.Handle, e.Reason)
}
