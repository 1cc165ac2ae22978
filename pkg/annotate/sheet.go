package annotate

import (
	"fmt"

	"github.com/chazu/drafting/pkg/stroke"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultCreaseAngle is the dihedral threshold, in degrees, used by crease
// rules that do not set one.
const DefaultCreaseAngle = 30.0

// Kind selects which edges a rule draws.
type Kind int

const (
	Crease     Kind = iota // static dihedral angle test
	Silhouette             // front/back facing change for a view direction
	Boundary               // edges with a single adjacent face
	Sharp                  // edges whose vertices carry split normals
	Soft                   // remaining edges between non-coplanar faces
)

var kindNames = map[Kind]string{
	Crease:     "crease",
	Silhouette: "silhouette",
	Boundary:   "boundary",
	Sharp:      "sharp",
	Soft:       "soft",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind converts a kind name such as "crease" to a Kind.
func ParseKind(name string) (Kind, error) {
	for k, s := range kindNames {
		if s == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("invalid edge kind %q, expected crease, silhouette, boundary, sharp, or soft", name)
}

// Rule draws one class of mesh edges with a named style.
type Rule struct {
	Kind  Kind     `json:"kind"`
	Style string   `json:"style"`
	Angle *float64 `json:"angle,omitempty"` // crease threshold in degrees; nil means DefaultCreaseAngle

	// View overrides the annotation view direction for silhouette rules.
	View *v3.Vec `json:"view,omitempty"`
}

// CreaseAngle returns the rule's crease threshold in degrees.
func (r Rule) CreaseAngle() float64 {
	if r.Angle == nil {
		return DefaultCreaseAngle
	}
	return *r.Angle
}

// StyleSheet is an evaluated style source: the stroke styles in declaration
// order and the rules that use them.
type StyleSheet struct {
	Styles []stroke.Style `json:"styles"`
	Rules  []Rule         `json:"rules"`

	// Config, when set, replaces the batcher defaults.
	Config *stroke.Config `json:"config,omitempty"`
}

// NewStyleSheet returns an empty style sheet.
func NewStyleSheet() *StyleSheet {
	return &StyleSheet{}
}

// Lookup returns the style with the given name.
func (s *StyleSheet) Lookup(name string) (stroke.Style, bool) {
	for _, st := range s.Styles {
		if st.Name == name {
			return st, true
		}
	}
	return stroke.Style{}, false
}

// AddStyle appends st, replacing an earlier style with the same name in place.
func (s *StyleSheet) AddStyle(st stroke.Style) {
	for i := range s.Styles {
		if s.Styles[i].Name == st.Name {
			s.Styles[i] = st
			return
		}
	}
	s.Styles = append(s.Styles, st)
}

// AddRule appends r.
func (s *StyleSheet) AddRule(r Rule) {
	s.Rules = append(s.Rules, r)
}
