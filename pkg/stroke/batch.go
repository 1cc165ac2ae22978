package stroke

import v3 "github.com/deadsy/sdfx/vec/v3"

// Per-segment geometry sizes.
const (
	VerticesPerSegment = 4
	IndicesPerSegment  = 6
)

// Segment is one straight stroke between A and B. Left and Right are the
// normals of the faces adjacent to the edge the segment was drawn for; they
// are meaningful only when HasNormals is set.
type Segment struct {
	A, B        v3.Vec
	Left, Right v3.Vec
	HasNormals  bool
}

// Reversed returns the segment running from B to A.
func (s Segment) Reversed() Segment {
	s.A, s.B = s.B, s.A
	return s
}

// Length returns the distance between the endpoints.
func (s Segment) Length() float64 {
	return s.B.Sub(s.A).Length()
}

// corner markers, in emission order: two at A, two at B.
var corners = [VerticesPerSegment][2]float32{
	{-1, -1},
	{-1, +1},
	{+1, -1},
	{+1, +1},
}

// Batch is one independently renderable chunk of stroke geometry. All
// attribute slices are flat and indexed by vertex.
type Batch struct {
	Style        string    `json:"style"`
	Positions    []float32 `json:"positions"`  // 3 per vertex
	Corners      []float32 `json:"corners"`    // 2 per vertex: (±1, ±1)
	Directions   []float32 `json:"directions"` // 3 per vertex: B - A
	Coords       []float32 `json:"coords"`     // 2 per vertex: (phase, side)
	LeftNormals  []float32 `json:"left_normals,omitempty"`
	RightNormals []float32 `json:"right_normals,omitempty"`
	Indices      []uint32  `json:"indices"`
}

func newBatch(style string, segments int, normals bool) *Batch {
	n := segments * VerticesPerSegment
	b := &Batch{
		Style:      style,
		Positions:  make([]float32, 0, n*3),
		Corners:    make([]float32, 0, n*2),
		Directions: make([]float32, 0, n*3),
		Coords:     make([]float32, 0, n*2),
		Indices:    make([]uint32, 0, segments*IndicesPerSegment),
	}
	if normals {
		b.LeftNormals = make([]float32, 0, n*3)
		b.RightNormals = make([]float32, 0, n*3)
	}
	return b
}

// SegmentCount returns the number of segments in the batch.
func (b *Batch) SegmentCount() int {
	return len(b.Indices) / IndicesPerSegment
}

// VertexCount returns the number of vertices in the batch.
func (b *Batch) VertexCount() int {
	return len(b.Positions) / 3
}

func appendVec(dst []float32, v v3.Vec) []float32 {
	return append(dst, float32(v.X), float32(v.Y), float32(v.Z))
}

// appendSegment emits the quad for s: phase0 at A, phase1 at B.
func (b *Batch) appendSegment(s Segment, dir v3.Vec, phase0, phase1 float64) {
	base := uint32(b.VertexCount())
	for i, c := range corners {
		p, phase := s.A, phase0
		if i >= 2 {
			p, phase = s.B, phase1
		}
		b.Positions = appendVec(b.Positions, p)
		b.Corners = append(b.Corners, c[0], c[1])
		b.Directions = appendVec(b.Directions, dir)
		b.Coords = append(b.Coords, float32(phase), c[1])
		if b.LeftNormals != nil {
			b.LeftNormals = appendVec(b.LeftNormals, s.Left)
			b.RightNormals = appendVec(b.RightNormals, s.Right)
		}
	}
	b.Indices = append(b.Indices,
		base+0, base+1, base+2,
		base+3, base+2, base+1,
	)
}
