package sdfx

import (
	"math"
	"testing"
)

// testCells keeps marching cubes cheap in tests.
const testCells = 40

func TestBox(t *testing.T) {
	k := NewWithCells(testCells)
	mesh, err := k.ToMesh(k.Box(100, 50, 25))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	triCount := mesh.TriangleCount()
	if triCount == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	t.Logf("box triangle count: %d", triCount)

	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != triCount*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), triCount*3)
	}
	if err := mesh.Validate(); err != nil {
		t.Fatalf("box mesh does not validate: %v", err)
	}
}

func TestNewWithCellsFallback(t *testing.T) {
	tests := []struct {
		name  string
		cells int
		want  int
	}{
		{"explicit", 64, 64},
		{"zero", 0, DefaultMeshCells},
		{"negative", -3, DefaultMeshCells},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewWithCells(tt.cells).Cells(); got != tt.want {
				t.Errorf("Cells() = %d, want %d", got, tt.want)
			}
		})
	}
	if got := New().Cells(); got != DefaultMeshCells {
		t.Errorf("New().Cells() = %d, want %d", got, DefaultMeshCells)
	}
}

func TestCylinder(t *testing.T) {
	k := NewWithCells(testCells)
	mesh, err := k.ToMesh(k.Cylinder(50, 10, 32))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.TriangleCount() == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	t.Logf("cylinder triangle count: %d", mesh.TriangleCount())
}

func TestSphere(t *testing.T) {
	k := NewWithCells(testCells)
	s := k.Sphere(20)
	min, max := s.BoundingBox()
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]+20) > 0.01 || math.Abs(max[i]-20) > 0.01 {
			t.Errorf("axis %d bounds = [%f, %f], want [-20, 20]", i, min[i], max[i])
		}
	}
	mesh, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.TriangleCount() == 0 {
		t.Fatal("expected non-zero triangle count")
	}
}

func TestDifference(t *testing.T) {
	k := NewWithCells(testCells)

	box := k.Box(100, 100, 100)
	boxMesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh(box) failed: %v", err)
	}

	cyl := k.Translate(k.Cylinder(120, 20, 32), 50, 50, 50)
	diffMesh, err := k.ToMesh(k.Difference(box, cyl))
	if err != nil {
		t.Fatalf("ToMesh(diff) failed: %v", err)
	}
	// A box with a hole should have more triangles than a plain box.
	if diffMesh.TriangleCount() <= boxMesh.TriangleCount() {
		t.Fatalf("difference (%d triangles) should have more triangles than box (%d triangles)",
			diffMesh.TriangleCount(), boxMesh.TriangleCount())
	}
}

func TestUnion(t *testing.T) {
	k := NewWithCells(testCells)
	box1 := k.Box(50, 50, 50)
	box2 := k.Translate(k.Box(50, 50, 50), 30, 0, 0)
	mesh, err := k.ToMesh(k.Union(box1, box2))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("union mesh is empty")
	}
	t.Logf("union triangle count: %d", mesh.TriangleCount())
}

func TestBoxBoundingBox(t *testing.T) {
	k := New()
	box := k.Box(100, 50, 25)
	min, max := box.BoundingBox()

	// Box places its minimum corner at the origin.
	const tol = 0.01
	expectMin := [3]float64{0, 0, 0}
	expectMax := [3]float64{100, 50, 25}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], expectMax[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	k := New()
	translated := k.Translate(k.Box(10, 10, 10), 100, 200, 300)
	min, max := translated.BoundingBox()

	const tol = 0.01
	expectMin := [3]float64{100, 200, 300}
	expectMax := [3]float64{110, 210, 310}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], expectMax[i])
		}
	}
}

func TestRotate(t *testing.T) {
	k := New()
	min, max := k.Rotate(k.Box(10, 20, 5), 0, 0, 90).BoundingBox()

	const tol = 0.01
	expectMin := [3]float64{-20, 0, 0}
	expectMax := [3]float64{0, 10, 5}
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], expectMax[i])
		}
	}
}

func TestIntersection(t *testing.T) {
	k := NewWithCells(testCells)
	overlap := k.Intersection(k.Box(10, 10, 10), k.Translate(k.Box(10, 10, 10), 5, 5, 5))
	mesh, err := k.ToMesh(overlap)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}

	// The solid is the [5,10] cube; marching cubes stays within a cell of it.
	const tol = 0.5
	for i := 0; i < mesh.VertexCount(); i++ {
		p := mesh.Position(uint32(i))
		for axis, c := range p {
			if c < 5-tol || c > 10+tol {
				t.Fatalf("vertex %d axis %d = %f, outside the overlap", i, axis, c)
			}
		}
	}
}
