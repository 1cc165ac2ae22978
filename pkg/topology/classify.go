package topology

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// facingEpsilon is the band around zero inside which a face counts as
// edge-on to the viewer rather than front- or back-facing.
const facingEpsilon = 1e-9

// SilhouetteType classifies a silhouette edge. Values are bit flags so a
// set of types can be used as a filter mask.
type SilhouetteType int

const (
	Soft     SilhouetteType = 1 << iota // adjacent faces differ, endpoints smooth
	Sharp                               // adjacent faces differ, both endpoints creased
	Boundary                            // fewer than two adjacent faces

	All          = Soft | Sharp | Boundary
	BoundarySoft = Soft | Boundary
)

func (t SilhouetteType) String() string {
	switch t {
	case Soft:
		return "soft"
	case Sharp:
		return "sharp"
	case Boundary:
		return "boundary"
	case All:
		return "all"
	case BoundarySoft:
		return "boundary-soft"
	default:
		return "unknown"
	}
}

// EdgePair is an edge reduced to its endpoint positions.
type EdgePair struct {
	A, B v3.Vec
}

// SilhouetteEdge is an edge record for silhouette-aware stroking. Left and
// Right are the two chosen adjacent face normals (zero for boundaries).
type SilhouetteEdge struct {
	A, B        v3.Vec
	Left, Right v3.Vec
	Type        SilhouetteType
	Incidence   int // number of triangles on the edge; >2 is non-manifold
}

// isNormalsSharp reports whether the angle between two unit normals is at
// least angle degrees.
func isNormalsSharp(n0, n1 v3.Vec, angle float64) bool {
	return n0.Dot(n1) <= math.Cos(angle*math.Pi/180)
}

// facing returns -1, 0 or +1 for a back-facing, edge-on or front-facing
// normal relative to view.
func facing(n, view v3.Vec) int {
	d := n.Dot(view)
	switch {
	case d > facingEpsilon:
		return 1
	case d < -facingEpsilon:
		return -1
	default:
		return 0
	}
}

// IsEdgeSharp reports whether the dihedral angle across an edge reaches
// angle degrees: the first incident face is compared against every later
// one. Edges with fewer than two triangles are never sharp.
func (g *Graph) IsEdgeSharp(id EdgeID, angle float64) bool {
	e := &g.edges[id]
	if len(e.Triangles) < 2 {
		return false
	}
	first := g.TriangleNormal(e.Triangles[0])
	for _, tid := range e.Triangles[1:] {
		if isNormalsSharp(first, g.TriangleNormal(tid), angle) {
			return true
		}
	}
	return false
}

// IsEdgeSilhouette is the view-dependent sharpness test: an edge is a
// silhouette when two consecutive incident faces lie on opposite sides of
// the view direction, whatever the angle between them.
func (g *Graph) IsEdgeSilhouette(id EdgeID, view v3.Vec) bool {
	e := &g.edges[id]
	if len(e.Triangles) < 2 {
		return false
	}
	prev := facing(g.TriangleNormal(e.Triangles[0]), view)
	for _, tid := range e.Triangles[1:] {
		cur := facing(g.TriangleNormal(tid), view)
		if prev*cur < 0 {
			return true
		}
		prev = cur
	}
	return false
}

// IsSegmentSharp looks up the edge between two positions and applies
// IsEdgeSharp. Unknown positions or edges are not sharp.
func (g *Graph) IsSegmentSharp(p0, p1 v3.Vec, angle float64) bool {
	id, ok := g.FindEdge(p0, p1)
	if !ok {
		return false
	}
	return g.IsEdgeSharp(id, angle)
}

// GenerateEdges returns a snapshot of all edges passing IsEdgeSharp.
func (g *Graph) GenerateEdges(angle float64) []EdgePair {
	var result []EdgePair
	for i := range g.edges {
		e := &g.edges[i]
		if e.removed || !g.IsEdgeSharp(EdgeID(i), angle) {
			continue
		}
		result = append(result, EdgePair{A: g.vertices[e.A].Pos, B: g.vertices[e.B].Pos})
	}
	return result
}

// ForEachEdge calls fn with the endpoints of every silhouette edge for the
// given view direction, without materializing a list.
func (g *Graph) ForEachEdge(view v3.Vec, fn func(a, b v3.Vec)) {
	for i := range g.edges {
		e := &g.edges[i]
		if e.removed || !g.IsEdgeSilhouette(EdgeID(i), view) {
			continue
		}
		fn(g.vertices[e.A].Pos, g.vertices[e.B].Pos)
	}
}

// GenerateSilhouetteEdges classifies every edge as Boundary, Sharp or Soft.
func (g *Graph) GenerateSilhouetteEdges() []SilhouetteEdge {
	return g.SilhouetteEdges(All)
}

// SilhouetteEdges returns the silhouette records whose type is in mask.
//
// The reference normal is the first incident face. The second face is the
// most divergent one (smallest dot product) among those whose normal differs
// from the reference, the earliest winning ties. Edges whose faces all agree,
// or whose reference face is degenerate, produce no record.
func (g *Graph) SilhouetteEdges(mask SilhouetteType) []SilhouetteEdge {
	var result []SilhouetteEdge
	for i := range g.edges {
		e := &g.edges[i]
		if e.removed {
			continue
		}
		a, b := g.vertices[e.A], g.vertices[e.B]

		if len(e.Triangles) < 2 {
			if mask&Boundary != 0 {
				result = append(result, SilhouetteEdge{
					A:         a.Pos,
					B:         b.Pos,
					Type:      Boundary,
					Incidence: len(e.Triangles),
				})
			}
			continue
		}

		ln := g.TriangleNormal(e.Triangles[0])
		if isZero(ln) {
			continue
		}
		rn, found := v3.Vec{}, false
		best := math.Inf(1)
		for _, tid := range e.Triangles[1:] {
			n := g.TriangleNormal(tid)
			if sameNormal(n, ln) {
				continue
			}
			if d := ln.Dot(n); d < best {
				best, rn, found = d, n, true
			}
		}
		if !found {
			continue
		}

		typ := Soft
		if a.Sharp && b.Sharp {
			typ = Sharp
		}
		if mask&typ == 0 {
			continue
		}
		result = append(result, SilhouetteEdge{
			A:         a.Pos,
			B:         b.Pos,
			Left:      ln,
			Right:     rn,
			Type:      typ,
			Incidence: len(e.Triangles),
		})
	}
	return result
}
