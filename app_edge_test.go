package main

import (
	"reflect"
	"strings"
	"testing"

	"github.com/chazu/drafting/pkg/kernel"
	"github.com/chazu/drafting/pkg/topology"
)

// ---------------------------------------------------------------------------
// Result shape: slices are non-nil so JSON serializes as [] not null.
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	app := newTestApp()
	result := app.Annotate("", cubeMesh(), [3]float64{0, 0, 1}, 1)

	if result.Batches == nil {
		t.Error("Batches should be non-nil empty slice, got nil")
	}
	if result.Params == nil {
		t.Error("Params should be non-nil empty slice, got nil")
	}
	if result.Errors == nil {
		t.Error("Errors should be non-nil empty slice, got nil")
	}
	if result.Segments == nil {
		t.Error("Segments should be non-nil, got nil")
	}
}

func TestE2ECommentsOnly(t *testing.T) {
	app := newTestApp()
	result := app.Annotate(";; nothing here\n; still nothing\n", cubeMesh(), [3]float64{0, 0, 1}, 1)
	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for comment-only source, got %v", result.Errors)
	}
	if len(result.Batches) != 0 {
		t.Errorf("expected 0 batches, got %d", len(result.Batches))
	}
}

// ---------------------------------------------------------------------------
// Style sheet errors
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	app := newTestApp()

	source := "(stroke-style \"a\")\n(edge-rule :kind :crease"
	result := app.Annotate(source, cubeMesh(), [3]float64{0, 0, 1}, 1)

	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	if result.Errors[0].Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	if result.Errors[0].Line > 0 {
		t.Logf("error on line %d: %s", result.Errors[0].Line, result.Errors[0].Message)
	}
}

func TestE2EUndefinedStyleReference(t *testing.T) {
	app := newTestApp()
	result := app.Annotate(`(edge-rule :kind :crease :style "ghost")`, cubeMesh(), [3]float64{0, 0, 1}, 1)

	if len(result.Errors) == 0 {
		t.Fatal("expected an error for an undefined style")
	}
	if !strings.Contains(result.Errors[0].Message, "ghost") {
		t.Errorf("error %q does not name the style", result.Errors[0].Message)
	}
	if len(result.Batches) != 0 {
		t.Errorf("expected 0 batches on error, got %d", len(result.Batches))
	}
}

// ---------------------------------------------------------------------------
// Mesh errors
// ---------------------------------------------------------------------------

func TestE2EInvalidMesh(t *testing.T) {
	tests := []struct {
		name string
		mesh *kernel.Mesh
	}{
		{"nil mesh", nil},
		{"index out of range", &kernel.Mesh{Vertices: []float32{0, 0, 0}, Indices: []uint32{0, 1, 2}}},
		{"partial vertex", &kernel.Mesh{Vertices: []float32{0, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp()
			result := app.Annotate(defaultStyles, tt.mesh, [3]float64{0, 0, 1}, 1)
			if len(result.Errors) == 0 {
				t.Fatal("expected an error for an invalid mesh")
			}
			if !strings.Contains(result.Errors[0].Message, "invalid mesh") {
				t.Errorf("error %q does not mention the invalid mesh", result.Errors[0].Message)
			}
			if len(result.Batches) != 0 {
				t.Errorf("expected 0 batches, got %d", len(result.Batches))
			}
		})
	}
}

func TestE2EEmptyMesh(t *testing.T) {
	app := newTestApp()
	result := app.Annotate(defaultStyles, &kernel.Mesh{}, [3]float64{0, 0, 1}, 1)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Batches) != 0 {
		t.Errorf("expected 0 batches for an empty mesh, got %d", len(result.Batches))
	}
	// Styles are still registered and report parameters.
	if len(result.Params) != 2 {
		t.Errorf("expected 2 params, got %d", len(result.Params))
	}
}

// ---------------------------------------------------------------------------
// Configuration flowing from the sheet
// ---------------------------------------------------------------------------

func TestE2EBatchSizeFromSheet(t *testing.T) {
	app := newTestApp()
	source := `
(stroke-config :max-segments 5)
(stroke-style "edges")
(edge-rule :kind :crease :style "edges")
`
	result := app.Annotate(source, cubeMesh(), [3]float64{0, 0, 1}, 1)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}

	var sizes []int
	for _, b := range result.Batches {
		sizes = append(sizes, b.SegmentCount())
	}
	if len(sizes) != 3 || sizes[0] != 5 || sizes[1] != 5 || sizes[2] != 2 {
		t.Errorf("batch sizes = %v, want [5 5 2]", sizes)
	}
	if result.Params[0].Batches != 3 {
		t.Errorf("params report %d batches, want 3", result.Params[0].Batches)
	}
	if result.Batches[0].LeftNormals != nil {
		t.Error("silhouette normals emitted without being enabled")
	}
}

func TestE2EPixelScaling(t *testing.T) {
	source := `
(stroke-style "screen" :width 2 :units :pixels)
(stroke-style "model" :width 2 :units :world :dashes [1 1] :dash-units :world)
`
	tests := []struct {
		pixel       float64
		screenWidth float64
		modelWidth  float64
	}{
		{1, 2, 2},
		{0.25, 0.5, 2},
		{4, 8, 2},
	}
	app := newTestApp()
	for _, tt := range tests {
		result := app.Annotate(source, cubeMesh(), [3]float64{0, 0, 1}, tt.pixel)
		if len(result.Errors) != 0 {
			t.Fatalf("unexpected errors: %v", result.Errors)
		}
		if got := result.Params[0].Width; got != tt.screenWidth {
			t.Errorf("pixel %g: screen width = %g, want %g", tt.pixel, got, tt.screenWidth)
		}
		if got := result.Params[1].Width; got != tt.modelWidth {
			t.Errorf("pixel %g: model width = %g, want %g", tt.pixel, got, tt.modelWidth)
		}
		if got := result.Params[1].StippleWidth; got != 1 {
			t.Errorf("pixel %g: model stipple width = %g, want 1", tt.pixel, got)
		}
	}
}

func TestE2EViewChangesSilhouettes(t *testing.T) {
	source := `
(stroke-style "outline")
(edge-rule :kind :silhouette :style "outline")
`
	tests := []struct {
		name string
		view [3]float64
		want int
	}{
		{"axis view", [3]float64{0, 0, -1}, 0},
		{"oblique view", [3]float64{1, 2, 3}, 6},
		{"opposite oblique view", [3]float64{-1, -2, -3}, 6},
	}
	app := newTestApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := app.Annotate(source, cubeMesh(), tt.view, 1)
			if len(result.Errors) != 0 {
				t.Fatalf("unexpected errors: %v", result.Errors)
			}
			if got := result.Segments["outline"]; got != tt.want {
				t.Errorf("outline segments = %d, want %d", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Repeated runs
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	// Alternates between valid and invalid sources on one App. Calls are
	// sequential; the engine serializes evaluation anyway.
	app := newTestApp()
	sources := []string{
		defaultStyles,
		`(stroke-style`,
		defaultStyles,
		`(edge-rule :kind :crease :style "nope")`,
		defaultStyles,
	}
	for i, source := range sources {
		result := app.Annotate(source, cubeMesh(), [3]float64{1, 2, 3}, 1)
		valid := i%2 == 0
		if valid && len(result.Errors) != 0 {
			t.Errorf("iteration %d: unexpected errors %v", i, result.Errors)
		}
		if !valid && len(result.Errors) == 0 {
			t.Errorf("iteration %d: expected errors", i)
		}
	}
}

func TestE2EDeterministic(t *testing.T) {
	app := newTestApp()
	first := app.Annotate(defaultStyles, cubeMesh(), [3]float64{1, 2, 3}, 1)
	for i := 0; i < 3; i++ {
		again := app.Annotate(defaultStyles, cubeMesh(), [3]float64{1, 2, 3}, 1)
		if !reflect.DeepEqual(again, first) {
			t.Fatalf("run %d differs from the first run", i)
		}
	}
}

// ---------------------------------------------------------------------------
// Shapes and flags
// ---------------------------------------------------------------------------

func TestSolidShapes(t *testing.T) {
	app := newTestApp()
	for _, shape := range Shapes {
		t.Run(shape, func(t *testing.T) {
			m, err := app.Solid(shape)
			if err != nil {
				t.Fatalf("Solid(%q): %v", shape, err)
			}
			if m.TriangleCount() == 0 {
				t.Errorf("Solid(%q) has no triangles", shape)
			}
			if err := m.Validate(); err != nil {
				t.Errorf("Solid(%q) mesh invalid: %v", shape, err)
			}
		})
	}
	if _, err := app.Solid("teapot"); err == nil {
		t.Error("expected an error for an unknown shape")
	}
}

func TestParseView(t *testing.T) {
	tests := []struct {
		in    string
		want  [3]float64
		valid bool
	}{
		{"1,2,3", [3]float64{1, 2, 3}, true},
		{" 0, 0 , -1 ", [3]float64{0, 0, -1}, true},
		{"1,2", [3]float64{}, false},
		{"1,x,3", [3]float64{}, false},
	}
	for _, tt := range tests {
		got, err := parseView(tt.in)
		if tt.valid != (err == nil) {
			t.Errorf("parseView(%q) error = %v, valid = %v", tt.in, err, tt.valid)
			continue
		}
		if tt.valid && got != tt.want {
			t.Errorf("parseView(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestKernelSelection(t *testing.T) {
	// Every choice yields a working kernel; manifold falls back to sdfx
	// unless built with the manifold tag.
	for _, name := range append([]string{"", "bogus"}, Kernels...) {
		t.Run(name, func(t *testing.T) {
			app := NewAppWithConfig(AppConfig{Kernel: name, MeshCells: testCells, Epsilon: topology.DefaultEpsilon})
			m, err := app.Solid("box")
			if err != nil {
				t.Fatalf("Solid(box): %v", err)
			}
			result := app.Annotate(defaultStyles, m, [3]float64{1, 2, 3}, 1)
			if len(result.Errors) != 0 {
				t.Fatalf("errors: %v", result.Errors)
			}
			if result.Segments["visible"] == 0 {
				t.Errorf("segments = %v, want creases", result.Segments)
			}
		})
	}
}
