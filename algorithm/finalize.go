package algorithm

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshrecon/attrmap"
	"github.com/hupe1980/meshrecon/halfedge"
	"github.com/hupe1980/meshrecon/handle"
	"github.com/hupe1980/meshrecon/reconstruction"
)

// NoMaterial marks faces without a material in MeshBuffer.FaceMaterials.
const NoMaterial = -1

// MeshBuffer is a flat, index based triangle mesh ready to be written out.
// Normals and Colors are either empty or have one entry per vertex;
// FaceMaterials is either empty or has one entry per face.
type MeshBuffer struct {
	Vertices      []r3.Vec
	Normals       []r3.Vec
	Colors        []reconstruction.RGB
	Faces         [][3]uint32
	FaceMaterials []int
	Materials     []Material
}

// NumVertices returns the number of vertices.
func (b *MeshBuffer) NumVertices() int { return len(b.Vertices) }

// NumFaces returns the number of triangles.
func (b *MeshBuffer) NumFaces() int { return len(b.Faces) }

// bufferBuilder appends vertices and fan-triangulated faces to a MeshBuffer.
type bufferBuilder struct {
	m       *halfedge.Mesh
	buf     *MeshBuffer
	normals attrmap.AttributeMap[handle.VertexHandle, r3.Vec]
	colors  attrmap.AttributeMap[handle.VertexHandle, reconstruction.RGB]
}

func (bb *bufferBuilder) addVertex(v handle.VertexHandle, color *reconstruction.RGB) uint32 {
	idx := uint32(len(bb.buf.Vertices))
	bb.buf.Vertices = append(bb.buf.Vertices, bb.m.GetVertexPosition(v))
	if bb.normals != nil {
		n, _ := bb.normals.Get(v)
		bb.buf.Normals = append(bb.buf.Normals, n)
	}
	switch {
	case color != nil:
		bb.buf.Colors = append(bb.buf.Colors, *color)
	case bb.colors != nil:
		c, _ := bb.colors.Get(v)
		bb.buf.Colors = append(bb.buf.Colors, c)
	}
	return idx
}

func (bb *bufferBuilder) addFace(f handle.FaceHandle, index func(handle.VertexHandle) uint32, material int, withMaterials bool) error {
	if !bb.m.ContainsFace(f) {
		return fmt.Errorf("%w: %s", halfedge.ErrInvalidHandle, f)
	}
	vs := bb.m.GetVerticesOfFace(f)
	for i := 1; i+1 < len(vs); i++ {
		bb.buf.Faces = append(bb.buf.Faces, [3]uint32{index(vs[0]), index(vs[i]), index(vs[i+1])})
		if withMaterials {
			bb.buf.FaceMaterials = append(bb.buf.FaceMaterials, material)
		}
	}
	return nil
}

// Finalize converts m into a MeshBuffer with vertices in ascending handle
// order. normals and colors are optional per-vertex attributes.
func Finalize(m *halfedge.Mesh, normals attrmap.AttributeMap[handle.VertexHandle, r3.Vec], colors attrmap.AttributeMap[handle.VertexHandle, reconstruction.RGB]) *MeshBuffer {
	bb := &bufferBuilder{m: m, buf: &MeshBuffer{}, normals: normals, colors: colors}

	index := make(map[handle.VertexHandle]uint32, m.NumVertices())
	for v := range m.Vertices() {
		index[v] = bb.addVertex(v, nil)
	}
	for f := range m.Faces() {
		// Faces from m.Faces() are always live.
		_ = bb.addFace(f, func(v handle.VertexHandle) uint32 { return index[v] }, NoMaterial, false)
	}
	return bb.buf
}

// ClusterFlatteningFinalizer converts a clustered mesh into a MeshBuffer in
// which clusters share no vertices. Vertices on cluster borders are
// duplicated, so each cluster can carry its own color and material.
type ClusterFlatteningFinalizer struct {
	clusters      *ClusterBiMap[handle.FaceHandle]
	vertexNormals attrmap.AttributeMap[handle.VertexHandle, r3.Vec]
	vertexColors  attrmap.AttributeMap[handle.VertexHandle, reconstruction.RGB]
	clusterColors attrmap.AttributeMap[handle.ClusterHandle, reconstruction.RGB]
	materials     *MaterializerResult
}

// NewClusterFlatteningFinalizer creates a finalizer for clusters.
func NewClusterFlatteningFinalizer(clusters *ClusterBiMap[handle.FaceHandle]) *ClusterFlatteningFinalizer {
	return &ClusterFlatteningFinalizer{clusters: clusters}
}

// SetVertexNormals sets the per-vertex normals to export.
func (cf *ClusterFlatteningFinalizer) SetVertexNormals(normals attrmap.AttributeMap[handle.VertexHandle, r3.Vec]) {
	cf.vertexNormals = normals
}

// SetVertexColors sets per-vertex colors, used for clusters without a
// cluster color.
func (cf *ClusterFlatteningFinalizer) SetVertexColors(colors attrmap.AttributeMap[handle.VertexHandle, reconstruction.RGB]) {
	cf.vertexColors = colors
}

// SetClusterColors sets per-cluster colors, applied to every vertex of the
// cluster.
func (cf *ClusterFlatteningFinalizer) SetClusterColors(colors attrmap.AttributeMap[handle.ClusterHandle, reconstruction.RGB]) {
	cf.clusterColors = colors
}

// SetMaterializerResult attaches materials; faces then carry the material of
// their cluster.
func (cf *ClusterFlatteningFinalizer) SetMaterializerResult(res MaterializerResult) {
	cf.materials = &res
}

// Apply builds the buffer, cluster by cluster in ascending order. Faces that
// belong to no cluster follow at the end and share their vertices.
// Clusters referring to faces no longer in m yield an error.
func (cf *ClusterFlatteningFinalizer) Apply(m *halfedge.Mesh) (*MeshBuffer, error) {
	bb := &bufferBuilder{m: m, buf: &MeshBuffer{}, normals: cf.vertexNormals}
	withColors := cf.clusterColors != nil || cf.vertexColors != nil
	withMaterials := cf.materials != nil
	if withMaterials {
		bb.buf.Materials = cf.materials.Materials
	}

	flatten := func(faces []handle.FaceHandle, color *reconstruction.RGB, material int) error {
		index := make(map[handle.VertexHandle]uint32)
		lookup := func(v handle.VertexHandle) uint32 {
			idx, ok := index[v]
			if !ok {
				idx = bb.addVertex(v, color)
				if withColors && color == nil && bb.colors == nil {
					bb.buf.Colors = append(bb.buf.Colors, reconstruction.RGB{})
				}
				index[v] = idx
			}
			return idx
		}
		for _, f := range faces {
			if err := bb.addFace(f, lookup, material, withMaterials); err != nil {
				return fmt.Errorf("flatten cluster: %w", err)
			}
		}
		return nil
	}

	bb.colors = cf.vertexColors
	for c := range cf.clusters.Clusters() {
		var color *reconstruction.RGB
		if cf.clusterColors != nil {
			if cc, ok := cf.clusterColors.Get(c); ok {
				color = &cc
			}
		}
		material := NoMaterial
		if withMaterials {
			if idx, ok := cf.materials.ClusterMaterials.Get(c); ok {
				material = idx
			}
		}
		if err := flatten(cf.clusters.Cluster(c), color, material); err != nil {
			return nil, err
		}
	}

	var rest []handle.FaceHandle
	for f := range m.Faces() {
		if _, ok := cf.clusters.ClusterOf(f); !ok {
			rest = append(rest, f)
		}
	}
	if err := flatten(rest, nil, NoMaterial); err != nil {
		return nil, err
	}
	return bb.buf, nil
}
