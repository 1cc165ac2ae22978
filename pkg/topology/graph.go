package topology

import (
	"fmt"
	"log"
	"math"

	"github.com/chazu/drafting/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultEpsilon is the default welding distance.
const DefaultEpsilon = 1e-4

// Config controls graph construction.
type Config struct {
	Epsilon float64 `json:"epsilon"` // quantization step for vertex welding
}

// DefaultConfig returns the default graph configuration.
func DefaultConfig() Config {
	return Config{Epsilon: DefaultEpsilon}
}

// VertexID, EdgeID and TriangleID index the graph's arenas.
type (
	VertexID   int32
	EdgeID     int32
	TriangleID int32
)

// Vertex is a welded mesh vertex.
type Vertex struct {
	Pos    v3.Vec // quantized position
	Normal v3.Vec // normal of the first contribution
	Sharp  bool   // a later contribution disagreed with Normal
	Index  int    // slot in watertight exports
}

// Edge is an unordered vertex pair and the triangles incident to it.
type Edge struct {
	A, B      VertexID
	Triangles []TriangleID

	removed bool
}

// Incidence returns the number of triangles touching the edge.
func (e *Edge) Incidence() int {
	return len(e.Triangles)
}

// Triangle references three distinct vertices and the edges between them.
// Edges[i] joins Vertices[i] and Vertices[(i+1)%3].
type Triangle struct {
	Vertices [3]VertexID
	Edges    [3]EdgeID

	removed bool
}

// Stats is a snapshot of graph sizes and validity diagnostics.
type Stats struct {
	Vertices         int `json:"vertices"`
	Edges            int `json:"edges"`
	Triangles        int `json:"triangles"`
	OpenEdges        int `json:"open_edges"`
	NonManifoldEdges int `json:"non_manifold_edges"`
	Degenerate       int `json:"degenerate"` // dropped triangles
}

// cell is a quantized position used as the welding key.
type cell [3]int64

// edgeKey is the canonical (low, high) vertex pair of an edge.
type edgeKey struct {
	lo, hi VertexID
}

func makeEdgeKey(a, b VertexID) edgeKey {
	if a < b {
		return edgeKey{lo: a, hi: b}
	}
	return edgeKey{lo: b, hi: a}
}

// Graph is the welded adjacency structure of a triangle mesh.
// It is not safe for concurrent use.
type Graph struct {
	cfg Config

	vertices []Vertex
	cells    map[cell]VertexID

	edges     []Edge
	edgeIndex map[edgeKey]EdgeID

	triangles []Triangle

	liveEdges     int
	liveTriangles int
	degenerate    int
}

// New creates an empty graph. A non-positive epsilon falls back to
// DefaultEpsilon.
func New(cfg Config) *Graph {
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = DefaultEpsilon
	}
	g := &Graph{cfg: cfg}
	g.Clear()
	return g
}

// Config returns the configuration the graph was built with.
func (g *Graph) Config() Config {
	return g.cfg
}

// Clear releases all vertices, edges and triangles.
func (g *Graph) Clear() {
	g.vertices = nil
	g.cells = make(map[cell]VertexID)
	g.edges = nil
	g.edgeIndex = make(map[edgeKey]EdgeID)
	g.triangles = nil
	g.liveEdges = 0
	g.liveTriangles = 0
	g.degenerate = 0
}

// SetMesh clears the graph and adds every triangle of every section of m.
// If m cannot be read the graph is left empty and the error is returned.
func (g *Graph) SetMesh(m *kernel.Mesh) error {
	g.Clear()

	if err := m.Validate(); err != nil {
		name := ""
		if m != nil {
			name = m.Name
		}
		log.Printf("topology: can't access mesh %q: %v", name, err)
		return fmt.Errorf("topology: set mesh: %w", err)
	}

	for s := 0; s < m.SectionCount(); s++ {
		idx := m.Section(s)
		for i := 0; i+2 < len(idx); i += 3 {
			a, b, c := idx[i], idx[i+1], idx[i+2]
			g.AddTriangle(
				toVec(m.Position(a)), toVec(m.Normal(a)),
				toVec(m.Position(b)), toVec(m.Normal(b)),
				toVec(m.Position(c)), toVec(m.Normal(c)),
			)
		}
	}
	return nil
}

// snap quantizes p to the welding grid.
func (g *Graph) snap(p v3.Vec) cell {
	eps := g.cfg.Epsilon
	return cell{
		int64(math.Floor(p.X/eps + 0.5)),
		int64(math.Floor(p.Y/eps + 0.5)),
		int64(math.Floor(p.Z/eps + 0.5)),
	}
}

// addVertex returns the vertex welded at p, creating it if needed.
func (g *Graph) addVertex(p, n v3.Vec) VertexID {
	c := g.snap(p)
	if id, ok := g.cells[c]; ok {
		v := &g.vertices[id]
		if !v.Sharp && !sameNormal(v.Normal, n) {
			v.Sharp = true
		}
		return id
	}

	eps := g.cfg.Epsilon
	id := VertexID(len(g.vertices))
	g.vertices = append(g.vertices, Vertex{
		Pos:    v3.Vec{X: float64(c[0]) * eps, Y: float64(c[1]) * eps, Z: float64(c[2]) * eps},
		Normal: n,
		Index:  int(id),
	})
	g.cells[c] = id
	return id
}

// addEdge returns the edge between a and b, creating it if needed.
func (g *Graph) addEdge(a, b VertexID) EdgeID {
	key := makeEdgeKey(a, b)
	if id, ok := g.edgeIndex[key]; ok {
		return id
	}
	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, Edge{A: a, B: b})
	g.edgeIndex[key] = id
	g.liveEdges++
	return id
}

// AddTriangle welds the three corners and registers the triangle.
// Triangles with a non-finite corner, or whose corners weld to fewer than
// three distinct vertices, are dropped; the second result is false for them.
func (g *Graph) AddTriangle(pa, na, pb, nb, pc, nc v3.Vec) (TriangleID, bool) {
	if !isFinite(pa) || !isFinite(pb) || !isFinite(pc) {
		g.degenerate++
		return -1, false
	}
	a := g.addVertex(pa, na)
	b := g.addVertex(pb, nb)
	c := g.addVertex(pc, nc)
	if a == b || a == c || b == c {
		g.degenerate++
		return -1, false
	}

	id := TriangleID(len(g.triangles))
	t := Triangle{Vertices: [3]VertexID{a, b, c}}
	for i := 0; i < 3; i++ {
		e := g.addEdge(t.Vertices[i], t.Vertices[(i+1)%3])
		g.edges[e].Triangles = append(g.edges[e].Triangles, id)
		t.Edges[i] = e
	}
	g.triangles = append(g.triangles, t)
	g.liveTriangles++
	return id, true
}

// RemoveTriangle detaches a triangle from its edges. Edges left without
// triangles are dropped. Vertices are kept.
func (g *Graph) RemoveTriangle(id TriangleID) bool {
	if id < 0 || int(id) >= len(g.triangles) || g.triangles[id].removed {
		return false
	}
	t := &g.triangles[id]
	for _, eid := range t.Edges {
		e := &g.edges[eid]
		for i, tid := range e.Triangles {
			if tid == id {
				e.Triangles = append(e.Triangles[:i], e.Triangles[i+1:]...)
				break
			}
		}
		if len(e.Triangles) == 0 {
			e.removed = true
			delete(g.edgeIndex, makeEdgeKey(e.A, e.B))
			g.liveEdges--
		}
	}
	t.removed = true
	g.liveTriangles--
	return true
}

// VertexCount returns the number of welded vertices.
func (g *Graph) VertexCount() int {
	return len(g.vertices)
}

// EdgeCount returns the number of live edges.
func (g *Graph) EdgeCount() int {
	return g.liveEdges
}

// TriangleCount returns the number of live triangles.
func (g *Graph) TriangleCount() int {
	return g.liveTriangles
}

// Vertex returns the vertex with the given ID.
func (g *Graph) Vertex(id VertexID) Vertex {
	return g.vertices[id]
}

// Edge returns the edge with the given ID. The Triangles slice is owned by
// the graph and must not be modified.
func (g *Graph) Edge(id EdgeID) Edge {
	return g.edges[id]
}

// Triangle returns the triangle with the given ID.
func (g *Graph) Triangle(id TriangleID) Triangle {
	return g.triangles[id]
}

// Edges returns the live edge IDs in insertion order.
func (g *Graph) Edges() []EdgeID {
	ids := make([]EdgeID, 0, g.liveEdges)
	for i := range g.edges {
		if !g.edges[i].removed {
			ids = append(ids, EdgeID(i))
		}
	}
	return ids
}

// Triangles returns the live triangle IDs in insertion order.
func (g *Graph) Triangles() []TriangleID {
	ids := make([]TriangleID, 0, g.liveTriangles)
	for i := range g.triangles {
		if !g.triangles[i].removed {
			ids = append(ids, TriangleID(i))
		}
	}
	return ids
}

// FindVertex returns the vertex welded at p.
func (g *Graph) FindVertex(p v3.Vec) (VertexID, bool) {
	id, ok := g.cells[g.snap(p)]
	return id, ok
}

// FindEdge returns the edge joining the vertices welded at p0 and p1.
func (g *Graph) FindEdge(p0, p1 v3.Vec) (EdgeID, bool) {
	a, ok := g.FindVertex(p0)
	if !ok {
		return -1, false
	}
	b, ok := g.FindVertex(p1)
	if !ok {
		return -1, false
	}
	id, ok := g.edgeIndex[makeEdgeKey(a, b)]
	return id, ok
}

// TriangleNormal returns the unit face normal of a triangle, derived from the
// current vertex positions with counter-clockwise front faces. Collinear
// triangles have the zero normal.
func (g *Graph) TriangleNormal(id TriangleID) v3.Vec {
	t := &g.triangles[id]
	a := g.vertices[t.Vertices[0]].Pos
	b := g.vertices[t.Vertices[1]].Pos
	c := g.vertices[t.Vertices[2]].Pos
	return normalize(b.Sub(a).Cross(c.Sub(a)))
}

// CountOpenEdges returns the number of edges with exactly one triangle.
func (g *Graph) CountOpenEdges() int {
	n := 0
	for i := range g.edges {
		e := &g.edges[i]
		if !e.removed && len(e.Triangles) == 1 {
			n++
		}
	}
	return n
}

// CountNonManifoldEdges returns the number of edges shared by more than two
// triangles.
func (g *Graph) CountNonManifoldEdges() int {
	n := 0
	for i := range g.edges {
		e := &g.edges[i]
		if !e.removed && len(e.Triangles) > 2 {
			n++
		}
	}
	return n
}

// CountErrors returns the number of open plus non-manifold edges.
func (g *Graph) CountErrors() int {
	return g.CountOpenEdges() + g.CountNonManifoldEdges()
}

// Stats returns a snapshot of the graph's sizes and diagnostics.
func (g *Graph) Stats() Stats {
	return Stats{
		Vertices:         len(g.vertices),
		Edges:            g.liveEdges,
		Triangles:        g.liveTriangles,
		OpenEdges:        g.CountOpenEdges(),
		NonManifoldEdges: g.CountNonManifoldEdges(),
		Degenerate:       g.degenerate,
	}
}
