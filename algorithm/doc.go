// Package algorithm implements the post-processing stages applied to a
// reconstructed half-edge mesh.
//
// The stages operate on a *halfedge.Mesh in place and share a few
// conventions:
//
//   - Per-entity data (face normals, vertex colors) lives in attrmap maps
//     keyed by handles, computed by the Calc* functions.
//   - Faces are grouped into clusters held in a ClusterBiMap.
//   - Costs and predicates are plain function values.
//   - Faces are deleted with RemoveFace followed by a single
//     RemoveWireEdges sweep, so handles of surviving entities stay valid.
//
// # Typical Pipeline
//
//	algorithm.RemoveDanglingCluster(m, 20)
//	algorithm.CleanContours(m, 1, 0.0001)
//	algorithm.NaiveFillSmallHoles(m, 30)
//	algorithm.ReduceByRatio(m, 0.5, algorithm.CollapseCostNormalDeviation(m))
//	normals := algorithm.CalcFaceNormals(m)
//	clusters := algorithm.PlanarClusterGrowing(m, normals, 0.85)
//	buf, err := algorithm.NewClusterFlatteningFinalizer(clusters).Apply(m)
package algorithm
