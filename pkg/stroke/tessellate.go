package stroke

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Tessellate turns one style's segment list into renderable batches of at
// most cfg.MaxSegmentsPerBatch segments each. The input slice is never
// modified, so calling Tessellate twice on the same data yields identical
// batches.
//
// For dashed styles segments are first stitched: each segment is flipped
// where needed so it starts where the previous one ended, and the phase
// (the distance along the chain) resets after every break. Without
// stitching the phase accumulates over the whole list.
func Tessellate(style Style, segments []Segment, cfg Config) []*Batch {
	if len(segments) == 0 {
		return nil
	}
	segs := append([]Segment(nil), segments...)

	var breaks []bool
	if style.Stitched() {
		breaks = stitch(segs)
	}
	dirs := directions(segs)

	limit := cfg.MaxSegmentsPerBatch
	if limit <= 0 {
		limit = DefaultMaxSegmentsPerBatch
	}

	batches := make([]*Batch, 0, (len(segs)+limit-1)/limit)
	phase := 0.0
	for start := 0; start < len(segs); start += limit {
		end := min(start+limit, len(segs))
		batch := newBatch(style.Name, end-start, cfg.SilhouetteNormals)
		for i := start; i < end; i++ {
			p0 := phase
			phase += segs[i].Length()
			batch.appendSegment(segs[i], dirs[i], p0, phase)
			if breaks != nil && breaks[i] {
				phase = 0
			}
		}
		batches = append(batches, batch)
	}
	return batches
}

// stitch orients segs in place so consecutive segments share endpoints where
// they can. Only the head of a chain may be flipped, since flipping a later
// segment would break the link already made to its predecessor. The returned
// slice marks segments after which the chain is broken.
func stitch(segs []Segment) []bool {
	breaks := make([]bool, len(segs))
	head := true
	for i := 0; i+1 < len(segs); i++ {
		l, n := segs[i], segs[i+1]
		switch {
		case l.B == n.A:
		case l.B == n.B:
			n = n.Reversed()
		case l.A == n.B:
			n = n.Reversed()
			if head {
				l = l.Reversed()
			}
		case l.A == n.A:
			if head {
				l = l.Reversed()
			}
		}
		breaks[i] = l.B != n.A
		segs[i], segs[i+1] = l, n
		head = breaks[i]
	}
	return breaks
}

// directions returns B - A for every segment. A zero-length segment borrows
// the unit direction of the nearest earlier non-degenerate segment, else the
// nearest later one, else +X.
func directions(segs []Segment) []v3.Vec {
	dirs := make([]v3.Vec, len(segs))
	var (
		prev    v3.Vec
		found   bool
		pending []int
	)
	for i, s := range segs {
		d := s.B.Sub(s.A)
		if d.Length() > 0 {
			dirs[i] = d
			prev = d.MulScalar(1 / d.Length())
			if !found {
				for _, j := range pending {
					dirs[j] = prev
				}
				pending = nil
				found = true
			}
			continue
		}
		if found {
			dirs[i] = prev
		} else {
			pending = append(pending, i)
		}
	}
	for _, j := range pending {
		dirs[j] = v3.Vec{X: 1}
	}
	return dirs
}
