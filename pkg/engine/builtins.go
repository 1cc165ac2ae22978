package engine

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"

	"github.com/chazu/drafting/pkg/annotate"
	"github.com/chazu/drafting/pkg/stroke"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
	"golang.org/x/image/colornames"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpStyleRef names a style returned by `stroke-style` so it can be passed
// to `edge-rule`.
type sexpStyleRef struct {
	name string
}

func (s *sexpStyleRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(style %q)", s.name)
}
func (s *sexpStyleRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a v3.Vec.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	return strings.CutPrefix(str.S, kwPrefix)
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			// Trailing keyword with no value.
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer, rejecting fractional numbers.
func toInt(s zygo.Sexp) (int, error) {
	f, err := toFloat64(s)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("expected integer, got %g", f)
	}
	return int(f), nil
}

func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_pixels) and plain strings ("pixels").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toUnits converts :pixels or :world to stroke.Units.
func toUnits(s zygo.Sexp) (stroke.Units, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected units keyword (:pixels, :world): %w", err)
	}
	switch name {
	case "pixels":
		return stroke.Pixels, nil
	case "world":
		return stroke.World, nil
	}
	return 0, fmt.Errorf("invalid units %q, expected pixels or world", name)
}

// toColor accepts a color name ("black"), a hex string ("#rrggbb" or
// "#rrggbbaa"), or a list of 3 or 4 channel values in 0..255.
func toColor(s zygo.Sexp) (color.RGBA, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return parseColor(strings.TrimPrefix(str.S, kwPrefix))
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("expected color name, hex string, or channel list: %w", err)
	}
	if len(items) != 3 && len(items) != 4 {
		return color.RGBA{}, fmt.Errorf("color list needs 3 or 4 channels, got %d", len(items))
	}
	ch := [4]uint8{3: 0xff}
	for i, item := range items {
		v, err := toInt(item)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("color channel %d: %w", i, err)
		}
		if v < 0 || v > 0xff {
			return color.RGBA{}, fmt.Errorf("color channel %d out of range: %d", i, v)
		}
		ch[i] = uint8(v)
	}
	return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}

func parseColor(s string) (color.RGBA, error) {
	if hexStr, ok := strings.CutPrefix(s, "#"); ok {
		raw, err := hex.DecodeString(hexStr)
		if err != nil || (len(raw) != 3 && len(raw) != 4) {
			return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
		}
		c := color.RGBA{R: raw[0], G: raw[1], B: raw[2], A: 0xff}
		if len(raw) == 4 {
			c.A = raw[3]
		}
		return c, nil
	}
	c, ok := colornames.Map[strings.ToLower(s)]
	if !ok {
		return color.RGBA{}, fmt.Errorf("unknown color %q", s)
	}
	return c, nil
}

// toVec3 extracts a v3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toStyleName accepts a style reference or a style name string.
func toStyleName(s zygo.Sexp) (string, error) {
	if ref, ok := s.(*sexpStyleRef); ok {
		return ref.name, nil
	}
	name, err := toKeywordString(s)
	if err != nil {
		return "", fmt.Errorf("expected style or style name: %w", err)
	}
	return name, nil
}

// toFloats converts a list or array of numbers.
func toFloats(s zygo.Sexp) ([]float64, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(items))
	for i, item := range items {
		f, err := toFloat64(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the style sheet builtins into a zygomys
// environment. The builtins populate sheet during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, sheet *annotate.StyleSheet) {

	// -----------------------------------------------------------------------
	// (stroke-style "hidden" :width 1 :dashes [4 2] :color "gray"
	//               :units :pixels :dash-units :pixels :queue 3000
	//               :depth-test true)
	// -----------------------------------------------------------------------
	env.AddFunction("stroke_style", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("stroke-style requires a name argument")
		}
		styleName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("stroke-style: name: %w", err)
		}

		st := stroke.DefaultStyle()
		st.Name = styleName

		if v, ok := pa.kw["width"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("stroke-style: width: %w", err)
			}
			if f <= 0 {
				return zygo.SexpNull, fmt.Errorf("stroke-style: width must be positive, got %g", f)
			}
			st.Width = f
		}
		if v, ok := pa.kw["dashes"]; ok {
			d, err := toFloats(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("stroke-style: dashes: %w", err)
			}
			st.Dashes = d
		}
		if v, ok := pa.kw["color"]; ok {
			c, err := toColor(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("stroke-style: color: %w", err)
			}
			st.Color = c
		}
		if v, ok := pa.kw["queue"]; ok {
			q, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("stroke-style: queue: %w", err)
			}
			st.Queue = q
		}
		if v, ok := pa.kw["depth-test"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("stroke-style: depth-test: %w", err)
			}
			st.DepthTest = b
		}
		if v, ok := pa.kw["units"]; ok {
			u, err := toUnits(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("stroke-style: units: %w", err)
			}
			st.Units = u
		}
		if v, ok := pa.kw["dash-units"]; ok {
			u, err := toUnits(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("stroke-style: dash-units: %w", err)
			}
			st.DashUnits = u
		}

		sheet.AddStyle(st)
		return &sexpStyleRef{name: styleName}, nil
	})

	// -----------------------------------------------------------------------
	// (edge-rule :kind :crease :angle 30 :style "visible")
	// (edge-rule :kind :silhouette :style hidden :view (vec3 0 0 -1))
	// -----------------------------------------------------------------------
	env.AddFunction("edge_rule", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var r annotate.Rule

		v, ok := pa.kw["kind"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("edge-rule requires :kind")
		}
		kindName, err := toKeywordString(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("edge-rule: kind: %w", err)
		}
		if r.Kind, err = annotate.ParseKind(kindName); err != nil {
			return zygo.SexpNull, fmt.Errorf("edge-rule: %w", err)
		}

		v, ok = pa.kw["style"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("edge-rule requires :style")
		}
		if r.Style, err = toStyleName(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("edge-rule: style: %w", err)
		}
		if _, ok := sheet.Lookup(r.Style); !ok {
			return zygo.SexpNull, fmt.Errorf("edge-rule: no style named %q", r.Style)
		}

		if v, ok := pa.kw["angle"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("edge-rule: angle: %w", err)
			}
			if r.Kind != annotate.Crease {
				return zygo.SexpNull, fmt.Errorf("edge-rule: angle only applies to crease rules")
			}
			if f < 0 || f > 180 {
				return zygo.SexpNull, fmt.Errorf("edge-rule: angle %g outside [0, 180]", f)
			}
			r.Angle = &f
		}
		if v, ok := pa.kw["view"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("edge-rule: view: %w", err)
			}
			if r.Kind != annotate.Silhouette {
				return zygo.SexpNull, fmt.Errorf("edge-rule: view only applies to silhouette rules")
			}
			r.View = &vec
		}

		sheet.AddRule(r)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (stroke-config :max-segments 16000 :silhouette-normals true
	//                :dpi-scale 2 :feather 0.7)
	// -----------------------------------------------------------------------
	env.AddFunction("stroke_config", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		cfg := stroke.DefaultConfig()
		if sheet.Config != nil {
			cfg = *sheet.Config
		}

		if v, ok := pa.kw["max-segments"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("stroke-config: max-segments: %w", err)
			}
			if n <= 0 {
				return zygo.SexpNull, fmt.Errorf("stroke-config: max-segments must be positive, got %d", n)
			}
			cfg.MaxSegmentsPerBatch = n
		}
		if v, ok := pa.kw["silhouette-normals"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("stroke-config: silhouette-normals: %w", err)
			}
			cfg.SilhouetteNormals = b
		}
		if v, ok := pa.kw["dpi-scale"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("stroke-config: dpi-scale: %w", err)
			}
			cfg.DpiScale = f
		}
		if v, ok := pa.kw["feather"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("stroke-config: feather: %w", err)
			}
			cfg.Feather = f
		}

		sheet.Config = &cfg
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		var c [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			c[i] = f
		}

		return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})
}
