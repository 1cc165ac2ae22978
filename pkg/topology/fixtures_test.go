package topology

import (
	"github.com/chazu/drafting/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// cubeFaces lists the unit cube's faces as counter-clockwise quads seen from
// outside, with their outward normals.
var cubeFaces = []struct {
	normal  [3]float32
	corners [4][3]float32
}{
	{[3]float32{1, 0, 0}, [4][3]float32{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}}},
	{[3]float32{-1, 0, 0}, [4][3]float32{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}}},
	{[3]float32{0, 1, 0}, [4][3]float32{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}}},
	{[3]float32{0, -1, 0}, [4][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}},
	{[3]float32{0, 0, 1}, [4][3]float32{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}},
	{[3]float32{0, 0, -1}, [4][3]float32{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}}},
}

// cubeMesh returns a flat-shaded unit cube: 24 vertices (4 per face carrying
// the face normal) and 12 triangles.
func cubeMesh() *kernel.Mesh {
	m := &kernel.Mesh{Name: "cube"}
	for _, f := range cubeFaces {
		base := uint32(m.VertexCount())
		for _, c := range f.corners {
			m.Vertices = append(m.Vertices, c[0], c[1], c[2])
			m.Normals = append(m.Normals, f.normal[0], f.normal[1], f.normal[2])
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// finMesh returns two triangles folded flat onto each other along the edge
// (0,0,0)-(1,0,0): one faces +Z, the other -Z. Normals are left empty.
func finMesh() *kernel.Mesh {
	return &kernel.Mesh{
		Name: "fin",
		Vertices: []float32{
			0, 0, 0,
			1, 0, 0,
			0, 1, 0,
			0, -1, 0,
		},
		Indices: []uint32{0, 1, 2, 0, 1, 3},
	}
}

func vec(x, y, z float64) v3.Vec {
	return v3.Vec{X: x, Y: y, Z: z}
}

// mustGraph builds a graph from m with the default config.
func mustGraph(m *kernel.Mesh) *Graph {
	g := New(DefaultConfig())
	if err := g.SetMesh(m); err != nil {
		panic(err)
	}
	return g
}
