package algorithm

import (
	"github.com/hupe1980/meshrecon/attrmap"
	"github.com/hupe1980/meshrecon/handle"
	"github.com/hupe1980/meshrecon/reconstruction"
)

// Material is a flat colored surface material.
type Material struct {
	Color reconstruction.RGB
}

// MaterializerResult maps clusters to indices into Materials.
type MaterializerResult struct {
	ClusterMaterials *attrmap.VectorMap[handle.ClusterHandle, int]
	Materials        []Material
}

// Materializer derives one material per cluster color.
type Materializer struct {
	clusters *ClusterBiMap[handle.FaceHandle]
	colors   attrmap.AttributeMap[handle.ClusterHandle, reconstruction.RGB]
}

// NewMaterializer creates a Materializer for the given cluster colors.
func NewMaterializer(clusters *ClusterBiMap[handle.FaceHandle], colors attrmap.AttributeMap[handle.ClusterHandle, reconstruction.RGB]) *Materializer {
	return &Materializer{clusters: clusters, colors: colors}
}

// Generate creates the materials. Clusters with equal colors share a
// material; clusters without a color get none.
func (mz *Materializer) Generate() MaterializerResult {
	res := MaterializerResult{
		ClusterMaterials: attrmap.NewVectorMap[handle.ClusterHandle, int](mz.clusters.NextClusterIndex()),
	}
	index := make(map[reconstruction.RGB]int)
	for c := range mz.clusters.Clusters() {
		color, ok := mz.colors.Get(c)
		if !ok {
			continue
		}
		idx, ok := index[color]
		if !ok {
			idx = len(res.Materials)
			index[color] = idx
			res.Materials = append(res.Materials, Material{Color: color})
		}
		res.ClusterMaterials.Insert(c, idx)
	}
	return res
}
