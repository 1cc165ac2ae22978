package kernel

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidMesh is returned when mesh arrays cannot be read as triangles.
var ErrInvalidMesh = errors.New("invalid mesh")

// Mesh is a triangle mesh suitable for rendering and topology analysis.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex (or is empty), indices has 3 uint32s per
// triangle. A mesh made of several sub-meshes keeps one index list per
// section in Sections; Indices is then ignored.
type Mesh struct {
	Vertices []float32  `json:"vertices"`           // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32  `json:"normals"`            // [nx0,ny0,nz0, ...]
	Indices  []uint32   `json:"indices"`            // [i0,i1,i2, ...] triangles
	Sections [][]uint32 `json:"sections,omitempty"` // per sub-mesh triangle lists
	Name     string     `json:"name"`               // which solid or part this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles across all sections.
func (m *Mesh) TriangleCount() int {
	n := 0
	for i := 0; i < m.SectionCount(); i++ {
		n += len(m.Section(i)) / 3
	}
	return n
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// SectionCount returns the number of sub-mesh index lists.
// A mesh without explicit sections has a single section: Indices.
func (m *Mesh) SectionCount() int {
	if len(m.Sections) > 0 {
		return len(m.Sections)
	}
	return 1
}

// Section returns the triangle index list of sub-mesh i.
func (m *Mesh) Section(i int) []uint32 {
	if len(m.Sections) > 0 {
		return m.Sections[i]
	}
	return m.Indices
}

// Position returns vertex i as a float64 triple.
func (m *Mesh) Position(i uint32) [3]float64 {
	return [3]float64{
		float64(m.Vertices[i*3]),
		float64(m.Vertices[i*3+1]),
		float64(m.Vertices[i*3+2]),
	}
}

// Normal returns the normal of vertex i, or the zero triple when the mesh
// carries no normals.
func (m *Mesh) Normal(i uint32) [3]float64 {
	if len(m.Normals) == 0 {
		return [3]float64{}
	}
	return [3]float64{
		float64(m.Normals[i*3]),
		float64(m.Normals[i*3+1]),
		float64(m.Normals[i*3+2]),
	}
}

// Validate reports whether the mesh can be read triangle by triangle and
// every position is finite. Errors wrap ErrInvalidMesh.
func (m *Mesh) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil mesh", ErrInvalidMesh)
	}
	if len(m.Vertices)%3 != 0 {
		return fmt.Errorf("%w: %d vertex floats is not a multiple of 3", ErrInvalidMesh, len(m.Vertices))
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Vertices) {
		return fmt.Errorf("%w: %d normal floats for %d vertex floats", ErrInvalidMesh, len(m.Normals), len(m.Vertices))
	}
	for i, f := range m.Vertices {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return fmt.Errorf("%w: vertex %d has non-finite coordinate %v", ErrInvalidMesh, i/3, f)
		}
	}
	n := uint32(m.VertexCount())
	for s := 0; s < m.SectionCount(); s++ {
		idx := m.Section(s)
		if len(idx)%3 != 0 {
			return fmt.Errorf("%w: section %d has %d indices, not a multiple of 3", ErrInvalidMesh, s, len(idx))
		}
		for _, i := range idx {
			if i >= n {
				return fmt.Errorf("%w: section %d index %d out of range (%d vertices)", ErrInvalidMesh, s, i, n)
			}
		}
	}
	return nil
}
