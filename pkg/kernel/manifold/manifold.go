//go:build manifold

// Package manifold is a cgo mesh source backed by the Manifold library
// (https://github.com/elalish/manifold). Its booleans are exact on the
// triangle mesh, so drawings of polyhedral parts come out without the
// rounding that marching cubes introduces along sharp edges.
//
// Requires the manifoldc C library. Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/chazu/drafting/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var _ kernel.Kernel = (*ManifoldKernel)(nil)
var _ kernel.Solid = (*manifoldSolid)(nil)

type manifoldSolid struct {
	ptr *C.ManifoldManifold
}

// BoundingBox returns the axis-aligned bounding box of the solid.
func (s *manifoldSolid) BoundingBox() (min, max [3]float64) {
	bbox := C.manifold_bounding_box(C.manifold_alloc_box(), s.ptr)
	defer C.manifold_delete_box(bbox)

	min = [3]float64{
		float64(C.manifold_box_min_x(bbox)),
		float64(C.manifold_box_min_y(bbox)),
		float64(C.manifold_box_min_z(bbox)),
	}
	max = [3]float64{
		float64(C.manifold_box_max_x(bbox)),
		float64(C.manifold_box_max_y(bbox)),
		float64(C.manifold_box_max_z(bbox)),
	}
	return min, max
}

// newSolid takes ownership of ptr; the finalizer frees it.
func newSolid(ptr *C.ManifoldManifold) *manifoldSolid {
	s := &manifoldSolid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *manifoldSolid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

func unwrap(s kernel.Solid) *C.ManifoldManifold {
	return s.(*manifoldSolid).ptr
}

// ManifoldKernel implements kernel.Kernel with the Manifold C library.
// Its placement conventions match the sdfx kernel so the two are
// interchangeable behind the App.
type ManifoldKernel struct{}

// New returns a ManifoldKernel.
func New() (kernel.Kernel, error) {
	return &ManifoldKernel{}, nil
}

// Box creates a box with its minimum corner at the origin.
func (k *ManifoldKernel) Box(x, y, z float64) kernel.Solid {
	ptr := C.manifold_cube(C.manifold_alloc_manifold(),
		C.double(x), C.double(y), C.double(z),
		C.int(0), // center=false
	)
	return newSolid(ptr)
}

// Cylinder creates a cylinder along Z, centered at the origin, approximated
// with the given number of sides.
func (k *ManifoldKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	ptr := C.manifold_cylinder(C.manifold_alloc_manifold(),
		C.double(height),
		C.double(radius),
		C.double(radius),
		C.int(segments),
		C.int(1), // center=true
	)
	return newSolid(ptr)
}

// Sphere creates a sphere centered at the origin. Manifold picks the
// tessellation from its default circular resolution.
func (k *ManifoldKernel) Sphere(radius float64) kernel.Solid {
	ptr := C.manifold_sphere(C.manifold_alloc_manifold(), C.double(radius), C.int(0))
	return newSolid(ptr)
}

// Union returns the boolean union of two solids.
func (k *ManifoldKernel) Union(a, b kernel.Solid) kernel.Solid {
	return newSolid(C.manifold_union(C.manifold_alloc_manifold(), unwrap(a), unwrap(b)))
}

// Difference returns a minus b.
func (k *ManifoldKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return newSolid(C.manifold_difference(C.manifold_alloc_manifold(), unwrap(a), unwrap(b)))
}

// Intersection returns the boolean intersection of two solids.
func (k *ManifoldKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return newSolid(C.manifold_intersection(C.manifold_alloc_manifold(), unwrap(a), unwrap(b)))
}

// Translate moves the solid by (x, y, z).
func (k *ManifoldKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	ptr := C.manifold_translate(C.manifold_alloc_manifold(), unwrap(s),
		C.double(x), C.double(y), C.double(z),
	)
	return newSolid(ptr)
}

// Rotate rotates the solid by Euler angles in degrees about X, Y then Z.
func (k *ManifoldKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	ptr := C.manifold_rotate(C.manifold_alloc_manifold(), unwrap(s),
		C.double(x), C.double(y), C.double(z),
	)
	return newSolid(ptr)
}

// ToMesh extracts the solid's triangles. MeshGL shares vertices between
// faces; the result unshares them so every triangle carries its own face
// normal, the same layout the sdfx kernel produces.
func (k *ManifoldKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	meshGL := C.manifold_get_meshgl(C.manifold_alloc_meshgl(), unwrap(s))
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))
	if numVert == 0 || numTri == 0 {
		return &kernel.Mesh{}, nil
	}

	// Positions are the first three of numProp floats per vertex.
	numProp := int(C.manifold_meshgl_num_prop(meshGL))
	if numProp < 3 {
		return nil, fmt.Errorf("manifold: %d properties per vertex: %w", numProp, kernel.ErrInvalidMesh)
	}
	props := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties((*C.float)(unsafe.Pointer(&props[0])), meshGL)

	tris := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts((*C.uint32_t)(unsafe.Pointer(&tris[0])), meshGL)

	position := func(i uint32) v3.Vec {
		if int(i) >= numVert {
			return v3.Vec{}
		}
		p := props[int(i)*numProp:]
		return v3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
	}

	m := &kernel.Mesh{
		Vertices: make([]float32, 0, numTri*9),
		Normals:  make([]float32, 0, numTri*9),
		Indices:  make([]uint32, 0, numTri*3),
	}
	for t := 0; t < numTri; t++ {
		i0, i1, i2 := tris[t*3], tris[t*3+1], tris[t*3+2]
		if int(i0) >= numVert || int(i1) >= numVert || int(i2) >= numVert {
			return nil, fmt.Errorf("manifold: triangle %d references vertex past %d: %w", t, numVert, kernel.ErrInvalidMesh)
		}
		a, b, c := position(i0), position(i1), position(i2)
		n := b.Sub(a).Cross(c.Sub(a))
		if l := n.Length(); l > 0 {
			n = n.MulScalar(1 / l)
		}
		base := uint32(len(m.Vertices) / 3)
		for _, p := range [3]v3.Vec{a, b, c} {
			m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
			m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
		}
		m.Indices = append(m.Indices, base, base+1, base+2)
	}
	return m, nil
}
