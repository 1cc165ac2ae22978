package main

import (
	"fmt"
	"log"

	"github.com/chazu/drafting/pkg/annotate"
	"github.com/chazu/drafting/pkg/engine"
	"github.com/chazu/drafting/pkg/kernel"
	"github.com/chazu/drafting/pkg/kernel/manifold"
	"github.com/chazu/drafting/pkg/kernel/sdfx"
	"github.com/chazu/drafting/pkg/stroke"
	"github.com/chazu/drafting/pkg/topology"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// AppConfig holds the pipeline settings that are not part of a style sheet.
type AppConfig struct {
	Kernel    string  `json:"kernel"`     // "sdfx" or "manifold"
	MeshCells int     `json:"mesh_cells"` // marching cubes resolution for built-in shapes
	Epsilon   float64 `json:"epsilon"`    // vertex weld distance
}

// Kernels lists the values accepted for AppConfig.Kernel.
var Kernels = []string{"sdfx", "manifold"}

// DefaultAppConfig returns the default pipeline settings.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Kernel:    "sdfx",
		MeshCells: sdfx.DefaultMeshCells,
		Epsilon:   topology.DefaultEpsilon,
	}
}

// App runs the annotation pipeline: style source -> style sheet, mesh ->
// welded topology, rules -> stroke batches.
type App struct {
	cfg    AppConfig
	engine *engine.Engine
	kernel kernel.Kernel
}

// EvalErrorData is a JSON-serializable pipeline error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// AnnotateResult is the full result of one annotation run.
type AnnotateResult struct {
	Batches  []*stroke.Batch `json:"batches"`
	Params   []stroke.Params `json:"params"`
	Segments map[string]int  `json:"segments"`
	Stats    topology.Stats  `json:"stats"`
	Errors   []EvalErrorData `json:"errors"`
}

// NewApp creates an App with the default configuration.
func NewApp() *App {
	return NewAppWithConfig(DefaultAppConfig())
}

// NewAppWithConfig creates an App using cfg.
func NewAppWithConfig(cfg AppConfig) *App {
	return &App{
		cfg:    cfg,
		engine: engine.NewEngine(),
		kernel: newKernel(cfg),
	}
}

// newKernel picks the mesh source named by cfg.Kernel. A manifold request
// in a binary built without the manifold tag falls back to sdfx.
func newKernel(cfg AppConfig) kernel.Kernel {
	switch cfg.Kernel {
	case "", "sdfx":
	case "manifold":
		k, err := manifold.New()
		if err == nil {
			return k
		}
		log.Printf("%v; using sdfx", err)
	default:
		log.Printf("unknown kernel %q; using sdfx", cfg.Kernel)
	}
	return sdfx.NewWithCells(cfg.MeshCells)
}

// Shapes lists the names accepted by Solid.
var Shapes = []string{"box", "cylinder", "sphere", "bracket", "peg", "wedge"}

// Solid meshes one of the built-in demo shapes.
func (a *App) Solid(shape string) (*kernel.Mesh, error) {
	k := a.kernel
	var s kernel.Solid
	switch shape {
	case "box":
		s = k.Box(20, 10, 5)
	case "cylinder":
		s = k.Cylinder(20, 5, 32)
	case "sphere":
		s = k.Sphere(10)
	case "bracket":
		// Plate with a through hole.
		s = k.Difference(k.Box(30, 20, 10), k.Translate(k.Cylinder(12, 4, 32), 15, 10, 5))
	case "peg":
		s = k.Union(k.Box(20, 20, 4), k.Translate(k.Cylinder(20, 3, 32), 10, 10, 10))
	case "wedge":
		// Block cut along its XZ diagonal by a tilted slab.
		s = k.Intersection(k.Box(20, 10, 20), k.Rotate(k.Box(40, 10, 40), 0, 45, 0))
	default:
		return nil, fmt.Errorf("unknown shape %q, expected one of %v", shape, Shapes)
	}

	m, err := k.ToMesh(s)
	if err != nil {
		return nil, fmt.Errorf("mesh %s: %w", shape, err)
	}
	m.Name = shape
	return m, nil
}

// Annotate evaluates styleSource, welds mesh and draws the sheet's rules,
// looking along view. pixel is the world size of one screen pixel and feeds
// the per-style parameters.
func (a *App) Annotate(styleSource string, mesh *kernel.Mesh, view [3]float64, pixel float64) AnnotateResult {
	result := AnnotateResult{
		Batches:  []*stroke.Batch{},
		Params:   []stroke.Params{},
		Segments: map[string]int{},
		Errors:   []EvalErrorData{},
	}
	fail := func(msg string) AnnotateResult {
		result.Errors = append(result.Errors, EvalErrorData{Message: msg})
		return result
	}

	// Step 1: Evaluate the style source into a style sheet.
	sheet, evalErrs, err := a.engine.Evaluate(styleSource)
	if err != nil {
		log.Printf("Evaluate fatal error: %v", err)
		return fail(err.Error())
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Step 2: Weld the mesh.
	g := topology.New(topology.Config{Epsilon: a.cfg.Epsilon})
	if err := g.SetMesh(mesh); err != nil {
		return fail(err.Error())
	}
	result.Stats = g.Stats()

	// Step 3: Draw every rule into a fresh batcher.
	cfg := stroke.DefaultConfig()
	if sheet.Config != nil {
		cfg = *sheet.Config
	}
	b := stroke.NewBatcher(cfg)
	sum, err := annotate.Annotate(g, b, sheet, v3.Vec{X: view[0], Y: view[1], Z: view[2]})
	if err != nil {
		log.Printf("Annotate error: %v", err)
		return fail("annotation failed: " + err.Error())
	}
	result.Segments = sum.Segments

	// Step 4: Build geometry and collect it in style order.
	b.UpdateDirty()
	for _, st := range b.Styles() {
		result.Batches = append(result.Batches, b.Batches(st.Name)...)
	}
	result.Params = b.Params(pixel)

	return result
}
