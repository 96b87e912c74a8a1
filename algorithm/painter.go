package algorithm

import (
	"github.com/hupe1980/meshrecon/attrmap"
	"github.com/hupe1980/meshrecon/handle"
	"github.com/hupe1980/meshrecon/reconstruction"
)

// DefaultPalette holds well distinguishable colors for painting clusters.
var DefaultPalette = []reconstruction.RGB{
	{255, 213, 0},
	{0, 117, 220},
	{153, 63, 0},
	{76, 0, 92},
	{0, 92, 49},
	{43, 206, 72},
	{255, 204, 153},
	{128, 128, 128},
	{148, 255, 181},
	{143, 124, 0},
	{157, 204, 0},
	{194, 0, 136},
	{0, 51, 128},
	{255, 164, 5},
	{255, 168, 187},
	{66, 102, 0},
	{255, 0, 16},
	{94, 241, 242},
	{0, 153, 143},
	{224, 255, 102},
}

// ClusterPainter assigns a color to every cluster.
type ClusterPainter struct {
	clusters *ClusterBiMap[handle.FaceHandle]
	palette  []reconstruction.RGB
}

// NewClusterPainter creates a painter using DefaultPalette.
func NewClusterPainter(clusters *ClusterBiMap[handle.FaceHandle]) *ClusterPainter {
	return &ClusterPainter{clusters: clusters, palette: DefaultPalette}
}

// WithPalette replaces the palette. An empty palette is ignored.
func (p *ClusterPainter) WithPalette(palette []reconstruction.RGB) *ClusterPainter {
	if len(palette) > 0 {
		p.palette = palette
	}
	return p
}

// Paint cycles through the palette in ascending cluster order, so equal
// clusterings get equal colors.
func (p *ClusterPainter) Paint() *attrmap.VectorMap[handle.ClusterHandle, reconstruction.RGB] {
	colors := attrmap.NewVectorMap[handle.ClusterHandle, reconstruction.RGB](p.clusters.NextClusterIndex())
	i := 0
	for c := range p.clusters.Clusters() {
		colors.Insert(c, p.palette[i%len(p.palette)])
		i++
	}
	return colors
}
