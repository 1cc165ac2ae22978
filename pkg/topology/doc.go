// Package topology builds a welded vertex/edge/triangle adjacency graph from
// raw triangle meshes and classifies its edges as boundary, crease or
// silhouette edges for drafting annotations.
//
// The graph is an arena: vertices, edges and triangles live in slices and
// refer to each other by integer IDs, so there are no pointer cycles to tear
// down and iteration order is the order of insertion.
package topology
