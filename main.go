package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

// defaultStyles is used when no style sheet file is given.
const defaultStyles = `
(stroke-style "visible" :width 1.5 :color "black" :queue 3001)
(stroke-style "outline" :width 2.5 :color "black" :queue 3002)
(edge-rule :kind :crease :angle 30 :style "visible")
(edge-rule :kind :silhouette :style "outline")
(edge-rule :kind :boundary :style "outline")
`

func parseView(s string) ([3]float64, error) {
	var v [3]float64
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("view %q: expected x,y,z", s)
	}
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return v, fmt.Errorf("view %q: %w", s, err)
		}
		v[i] = f
	}
	return v, nil
}

func main() {
	cfg := DefaultAppConfig()

	stylesPath := flag.String("styles", "", "style sheet file (default: built-in sheet)")
	shape := flag.String("shape", "bracket", "built-in shape: "+strings.Join(Shapes, ", "))
	viewFlag := flag.String("view", "1,2,3", "view direction as x,y,z")
	pixel := flag.Float64("pixel", 1, "world size of one screen pixel")
	flag.StringVar(&cfg.Kernel, "kernel", cfg.Kernel, "mesh source: "+strings.Join(Kernels, ", "))
	flag.IntVar(&cfg.MeshCells, "cells", cfg.MeshCells, "marching cubes resolution")
	flag.Float64Var(&cfg.Epsilon, "epsilon", cfg.Epsilon, "vertex weld distance")
	asJSON := flag.Bool("json", false, "write the full result as JSON to stdout")
	flag.Parse()

	view, err := parseView(*viewFlag)
	if err != nil {
		log.Fatal(err)
	}

	source := defaultStyles
	if *stylesPath != "" {
		data, err := os.ReadFile(*stylesPath)
		if err != nil {
			log.Fatalf("read styles: %v", err)
		}
		source = string(data)
	}

	app := NewAppWithConfig(cfg)
	mesh, err := app.Solid(*shape)
	if err != nil {
		log.Fatal(err)
	}

	result := app.Annotate(source, mesh, view, *pixel)
	for _, e := range result.Errors {
		if e.Line > 0 {
			log.Printf("error (line %d): %s", e.Line, e.Message)
		} else {
			log.Printf("error: %s", e.Message)
		}
	}
	if len(result.Errors) > 0 {
		os.Exit(1)
	}

	s := result.Stats
	log.Printf("%s: %d vertices, %d edges, %d triangles (%d open, %d non-manifold, %d degenerate)",
		*shape, s.Vertices, s.Edges, s.Triangles, s.OpenEdges, s.NonManifoldEdges, s.Degenerate)
	for _, p := range result.Params {
		log.Printf("style %q: %d segments in %d batches, width %g", p.Style, result.Segments[p.Style], p.Batches, p.Width)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		if err := enc.Encode(result); err != nil {
			log.Fatalf("encode result: %v", err)
		}
	}
}
