package stroke

import (
	"image/color"
	"math"
)

// Units selects how a style length reacts to zoom.
type Units int

const (
	Pixels Units = iota // constant on screen: scaled by the pixel size
	World               // constant in model space
)

func (u Units) String() string {
	switch u {
	case Pixels:
		return "pixels"
	case World:
		return "world"
	default:
		return "unknown"
	}
}

// Style describes how a set of segments is drawn. Styles are identified by
// Name; only the dash pattern and the scale functions affect tessellation,
// the rest is carried through to Params.
type Style struct {
	Name      string     `json:"name"`
	Width     float64    `json:"width"`
	Dashes    []float64  `json:"dashes,omitempty"` // alternating dash/gap lengths
	Color     color.RGBA `json:"color"`
	Queue     int        `json:"queue"` // draw order
	DepthTest bool       `json:"depth_test"`
	Units     Units      `json:"units"`      // width units
	DashUnits Units      `json:"dash_units"` // dash pattern units

	// Scale and DashScale map a pixel size (world units per screen pixel)
	// to a multiplier. When nil they follow Units and DashUnits.
	Scale     func(pixel float64) float64 `json:"-"`
	DashScale func(pixel float64) float64 `json:"-"`
}

// DefaultStyle returns a solid, one pixel wide, opaque black style.
func DefaultStyle() Style {
	return Style{
		Name:      "default",
		Width:     1,
		Color:     color.RGBA{A: 0xff},
		Queue:     3000,
		DepthTest: true,
		Units:     Pixels,
		DashUnits: Pixels,
	}
}

func unitScale(u Units, pixel float64) float64 {
	if u == Pixels {
		return pixel
	}
	return 1
}

// WidthScale returns the multiplier applied to Width at the given pixel size.
func (s Style) WidthScale(pixel float64) float64 {
	if s.Scale != nil {
		return s.Scale(pixel)
	}
	return unitScale(s.Units, pixel)
}

// DashesScale returns the multiplier applied to the dash pattern at the
// given pixel size.
func (s Style) DashesScale(pixel float64) float64 {
	if s.DashScale != nil {
		return s.DashScale(pixel)
	}
	return unitScale(s.DashUnits, pixel)
}

// PatternLength returns the length of one full dash cycle.
func (s Style) PatternLength() float64 {
	var total float64
	for _, d := range s.Dashes {
		total += math.Abs(d)
	}
	return total
}

// Stitched reports whether segments of this style are chained so the dash
// pattern runs continuously across joints.
func (s Style) Stitched() bool {
	return len(s.Dashes) > 1
}
