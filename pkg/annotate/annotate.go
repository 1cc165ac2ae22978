// Package annotate draws the feature edges of a welded mesh into a stroke
// batcher according to the rules of a style sheet.
package annotate

import (
	"errors"
	"fmt"

	"github.com/chazu/drafting/pkg/stroke"
	"github.com/chazu/drafting/pkg/topology"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrUnknownStyle is returned for a rule naming a style the sheet does not
// define.
var ErrUnknownStyle = errors.New("annotate: unknown style")

// Summary counts what an annotation pass drew.
type Summary struct {
	Rules    int            `json:"rules"`
	Segments map[string]int `json:"segments"` // per style
}

// Total returns the number of segments drawn across all styles.
func (s Summary) Total() int {
	n := 0
	for _, c := range s.Segments {
		n += c
	}
	return n
}

// Annotate registers every style of sheet with b and then applies the rules
// in order, drawing their edges of g. view is the direction used by
// silhouette rules without their own view. Rules are checked before anything
// is drawn, so an error leaves b untouched. Annotate does not rebuild batch
// geometry; call b.UpdateDirty afterwards.
func Annotate(g *topology.Graph, b *stroke.Batcher, sheet *StyleSheet, view v3.Vec) (Summary, error) {
	sum := Summary{Segments: make(map[string]int)}
	if sheet == nil {
		return sum, nil
	}

	for i, r := range sheet.Rules {
		if _, ok := sheet.Lookup(r.Style); !ok {
			return sum, fmt.Errorf("annotate: rule %d (%s): %w %q", i, r.Kind, ErrUnknownStyle, r.Style)
		}
		if _, ok := kindNames[r.Kind]; !ok {
			return sum, fmt.Errorf("annotate: rule %d: unknown kind %d", i, int(r.Kind))
		}
		if a := r.CreaseAngle(); a < 0 || a > 180 {
			return sum, fmt.Errorf("annotate: rule %d: crease angle %g outside [0, 180]", i, a)
		}
	}

	for _, st := range sheet.Styles {
		b.SetStyle(st)
	}
	for _, r := range sheet.Rules {
		st, _ := sheet.Lookup(r.Style)
		b.SetStyle(st)
		n, err := applyRule(g, b, r, view)
		if err != nil {
			return sum, fmt.Errorf("annotate: %s rule: %w", r.Kind, err)
		}
		sum.Segments[st.Name] += n
		sum.Rules++
	}
	return sum, nil
}

// applyRule draws the edges selected by r with the active style.
func applyRule(g *topology.Graph, b *stroke.Batcher, r Rule, view v3.Vec) (int, error) {
	switch r.Kind {
	case Crease:
		return drawCreases(g, b, r)

	case Silhouette:
		if r.View != nil {
			view = *r.View
		}
		return drawViewSilhouettes(g, b, view)

	case Boundary:
		return drawClassified(g, b, topology.Boundary)

	case Sharp:
		return drawClassified(g, b, topology.Sharp)

	case Soft:
		return drawClassified(g, b, topology.Soft)

	default:
		return 0, fmt.Errorf("unknown rule kind: %v", r.Kind)
	}
}

func drawCreases(g *topology.Graph, b *stroke.Batcher, r Rule) (int, error) {
	edges := g.GenerateEdges(r.CreaseAngle())
	for _, e := range edges {
		if err := b.DrawLine(e.A, e.B); err != nil {
			return 0, err
		}
	}
	return len(edges), nil
}

func drawViewSilhouettes(g *topology.Graph, b *stroke.Batcher, view v3.Vec) (int, error) {
	var (
		n   int
		err error
	)
	g.ForEachEdge(view, func(a, c v3.Vec) {
		if err != nil {
			return
		}
		err = b.DrawLine(a, c)
		n++
	})
	return n, err
}

// drawClassified draws classified silhouette records along with the normals
// of their two faces.
func drawClassified(g *topology.Graph, b *stroke.Batcher, mask topology.SilhouetteType) (int, error) {
	edges := g.SilhouetteEdges(mask)
	for _, e := range edges {
		if err := b.DrawLineNormals(e.A, e.B, e.Left, e.Right); err != nil {
			return 0, err
		}
	}
	return len(edges), nil
}
