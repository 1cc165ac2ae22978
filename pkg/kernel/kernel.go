// Package kernel defines the mesh source used by the annotation pipeline and
// the abstract solid kernel that can produce such meshes. Implementations
// (sdfx, manifold) model solids behind this interface so the rest of the
// system only ever sees flat triangle meshes.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid
	Sphere(radius float64) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler degrees about X, then Y, then Z

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
