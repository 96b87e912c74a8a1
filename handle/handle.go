// Package handle defines the typed indices used to address mesh entities.
//
// Handles are plain uint32 values. They are only meaningful together with the
// store that issued them and are never dereferenced directly.
package handle

import (
	"fmt"
	"math"
)

// Invalid is the raw value every handle type uses to encode "none".
const Invalid = math.MaxUint32

// Index is satisfied by every handle type.
type Index interface {
	~uint32
}

// VertexHandle addresses a mesh vertex.
type VertexHandle uint32

// EdgeHandle addresses an undirected mesh edge (a pair of twin half-edges).
type EdgeHandle uint32

// FaceHandle addresses a mesh face.
type FaceHandle uint32

// HalfEdgeHandle addresses one directed half of an edge.
type HalfEdgeHandle uint32

// ClusterHandle addresses a cluster of faces.
type ClusterHandle uint32

const (
	NoVertex   VertexHandle   = Invalid
	NoEdge     EdgeHandle     = Invalid
	NoFace     FaceHandle     = Invalid
	NoHalfEdge HalfEdgeHandle = Invalid
	NoCluster  ClusterHandle  = Invalid
)

func (h VertexHandle) Idx() uint32   { return uint32(h) }
func (h VertexHandle) IsValid() bool { return h != Invalid }
func (h VertexHandle) String() string {
	return format("V", uint32(h))
}

func (h EdgeHandle) Idx() uint32   { return uint32(h) }
func (h EdgeHandle) IsValid() bool { return h != Invalid }
func (h EdgeHandle) String() string {
	return format("E", uint32(h))
}

func (h FaceHandle) Idx() uint32   { return uint32(h) }
func (h FaceHandle) IsValid() bool { return h != Invalid }
func (h FaceHandle) String() string {
	return format("F", uint32(h))
}

func (h HalfEdgeHandle) Idx() uint32   { return uint32(h) }
func (h HalfEdgeHandle) IsValid() bool { return h != Invalid }
func (h HalfEdgeHandle) String() string {
	return format("H", uint32(h))
}

func (h ClusterHandle) Idx() uint32   { return uint32(h) }
func (h ClusterHandle) IsValid() bool { return h != Invalid }
func (h ClusterHandle) String() string {
	return format("C", uint32(h))
}

func format(prefix string, idx uint32) string {
	if idx == Invalid {
		return prefix + "(none)"
	}
	return fmt.Sprintf("%s%d", prefix, idx)
}
