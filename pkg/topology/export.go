package topology

import (
	"github.com/chazu/drafting/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// vertexNormals returns, per welded vertex, the normalized sum of the face
// normals of every live triangle touching it.
func vertexNormals(g *Graph) []v3.Vec {
	sums := make([]v3.Vec, len(g.vertices))
	for _, tid := range g.Triangles() {
		n := g.TriangleNormal(tid)
		for _, vid := range g.triangles[tid].Vertices {
			sums[vid] = sums[vid].Add(n)
		}
	}
	for i := range sums {
		sums[i] = normalize(sums[i])
	}
	return sums
}

func appendVec(dst []float32, v v3.Vec) []float32 {
	return append(dst, float32(v.X), float32(v.Y), float32(v.Z))
}

// sequentialIndices returns 0..n-1.
func sequentialIndices(n int) []uint32 {
	idx := make([]uint32, n)
	for i := range idx {
		idx[i] = uint32(i)
	}
	return idx
}

// SmoothMesh emits one vertex per triangle corner. Each normal is the
// normalized, area-unweighted sum of the face normals around the welded
// vertex.
func SmoothMesh(g *Graph) *kernel.Mesh {
	tris := g.Triangles()
	normals := vertexNormals(g)

	m := &kernel.Mesh{
		Vertices: make([]float32, 0, len(tris)*9),
		Normals:  make([]float32, 0, len(tris)*9),
	}
	for _, tid := range tris {
		for _, vid := range g.triangles[tid].Vertices {
			m.Vertices = appendVec(m.Vertices, g.vertices[vid].Pos)
			m.Normals = appendVec(m.Normals, normals[vid])
		}
	}
	m.Indices = sequentialIndices(len(tris) * 3)
	return m
}

// FlatMesh emits one vertex per triangle corner with the face normal, so
// every triangle shades uniformly.
func FlatMesh(g *Graph) *kernel.Mesh {
	tris := g.Triangles()

	m := &kernel.Mesh{
		Vertices: make([]float32, 0, len(tris)*9),
		Normals:  make([]float32, 0, len(tris)*9),
	}
	for _, tid := range tris {
		n := g.TriangleNormal(tid)
		for _, vid := range g.triangles[tid].Vertices {
			m.Vertices = appendVec(m.Vertices, g.vertices[vid].Pos)
			m.Normals = appendVec(m.Normals, n)
		}
	}
	m.Indices = sequentialIndices(len(tris) * 3)
	return m
}

// WatertightMesh emits one vertex per welded vertex; triangles index the
// shared set through Vertex.Index.
func WatertightMesh(g *Graph) *kernel.Mesh {
	tris := g.Triangles()
	normals := vertexNormals(g)

	m := &kernel.Mesh{
		Vertices: make([]float32, 0, len(g.vertices)*3),
		Normals:  make([]float32, 0, len(g.vertices)*3),
		Indices:  make([]uint32, 0, len(tris)*3),
	}
	for i := range g.vertices {
		m.Vertices = appendVec(m.Vertices, g.vertices[i].Pos)
		m.Normals = appendVec(m.Normals, normals[i])
	}
	for _, tid := range tris {
		for _, vid := range g.triangles[tid].Vertices {
			m.Indices = append(m.Indices, uint32(g.vertices[vid].Index))
		}
	}
	return m
}
