// Package meshrecon reconstructs polygonal surface meshes from unorganized
// 3D point clouds.
//
// A point cloud is turned into a signed distance field on a sparse voxel
// grid, polygonized with marching cubes into a half-edge mesh, repaired,
// simplified by edge collapse and segmented into planar clusters. The result
// is a flat MeshBuffer with per-vertex normals and colors and one material
// per cluster color.
//
// # Quick Start
//
//	pts, normals := loadCloud()
//	buf := &reconstruction.PointBuffer{Points: pts, Normals: normals}
//
//	cfg := config.Default()
//	cfg.VoxelSize = 0.05
//	cfg.ReductionRatio = 0.5
//
//	res, err := meshrecon.Reconstruct(ctx, buf, meshrecon.WithConfig(cfg))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Buffer.NumVertices(), res.Buffer.NumFaces())
//
// Configurations can also be read from YAML:
//
//	cfg, err := config.LoadConfig("reconstruct.yaml")
//
// # Packages
//
//   - handle, attrmap: typed handles and per-entity attribute storage
//   - halfedge: the manifold half-edge mesh
//   - search: nearest neighbor oracles (k-d tree, brute force)
//   - reconstruction: normal estimation, voxel grid, marching cubes
//   - algorithm: cleanup, reduction, segmentation, contours, export
//   - config: YAML configuration and validation
//
// The individual stages are exported, so pipelines other than Reconstruct
// can be assembled from the packages directly.
//
// # Observability
//
// Reconstruct reports every stage to a MetricsCollector and a Logger:
//
//	metrics := &meshrecon.BasicMetricsCollector{}
//	res, _ := meshrecon.Reconstruct(ctx, buf,
//	    meshrecon.WithMetricsCollector(metrics),
//	    meshrecon.WithLogger(meshrecon.NewJSONLogger(slog.LevelDebug)))
package meshrecon
