// Package stroke collects 3D line segments grouped by style and turns them
// into indexed quad geometry suitable for a screen-space line shader.
package stroke

import (
	"errors"
	"image/color"
	"sync"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrNoStyle is returned when a segment is drawn before any style was set.
var ErrNoStyle = errors.New("stroke: no active style")

// Defaults for Config.
const (
	DefaultMaxSegmentsPerBatch = 64000 / VerticesPerSegment
	DefaultDpiScale            = 1.0
	DefaultFeather             = 0.7
)

// Config holds renderer-wide settings shared by every style.
type Config struct {
	MaxSegmentsPerBatch int     `json:"max_segments_per_batch"`
	SilhouetteNormals   bool    `json:"silhouette_normals"` // emit face normals per vertex
	DpiScale            float64 `json:"dpi_scale"`
	Feather             float64 `json:"feather"`
}

// DefaultConfig returns the default batcher configuration.
func DefaultConfig() Config {
	return Config{
		MaxSegmentsPerBatch: DefaultMaxSegmentsPerBatch,
		DpiScale:            DefaultDpiScale,
		Feather:             DefaultFeather,
	}
}

type bucket struct {
	style    Style
	segments []Segment
	batches  []*Batch
	dirty    bool
}

// Batcher accumulates segments per style and regenerates geometry for the
// styles that changed. A Batcher is not safe for concurrent use; UpdateDirty
// parallelizes internally.
type Batcher struct {
	cfg     Config
	buckets []*bucket // insertion order
	byName  map[string]*bucket
	active  *Style
}

// NewBatcher creates an empty batcher.
func NewBatcher(cfg Config) *Batcher {
	if cfg.MaxSegmentsPerBatch <= 0 {
		cfg.MaxSegmentsPerBatch = DefaultMaxSegmentsPerBatch
	}
	return &Batcher{
		cfg:    cfg,
		byName: make(map[string]*bucket),
	}
}

// Config returns the batcher configuration.
func (b *Batcher) Config() Config {
	return b.cfg
}

func (b *Batcher) bucketFor(s Style) *bucket {
	if bk, ok := b.byName[s.Name]; ok {
		return bk
	}
	bk := &bucket{style: s}
	b.buckets = append(b.buckets, bk)
	b.byName[s.Name] = bk
	return bk
}

// SetStyle makes s the active style for subsequent DrawLine calls. A style
// with a name seen before replaces the stored one and keeps its segments.
func (b *Batcher) SetStyle(s Style) {
	bk := b.bucketFor(s)
	bk.style = s
	if len(bk.segments) > 0 {
		bk.dirty = true
	}
	active := s
	b.active = &active
}

// CurrentStyle returns the active style.
func (b *Batcher) CurrentStyle() (Style, bool) {
	if b.active == nil {
		return Style{}, false
	}
	return *b.active, true
}

// DrawLine appends the segment a-c to the active style.
func (b *Batcher) DrawLine(a, c v3.Vec) error {
	return b.draw(Segment{A: a, B: c})
}

// DrawLineNormals appends the segment a-c together with the normals of the
// two faces meeting along it.
func (b *Batcher) DrawLineNormals(a, c, left, right v3.Vec) error {
	return b.draw(Segment{A: a, B: c, Left: left, Right: right, HasNormals: true})
}

func (b *Batcher) draw(s Segment) error {
	if b.active == nil {
		return ErrNoStyle
	}
	bk := b.bucketFor(*b.active)
	bk.segments = append(bk.segments, s)
	bk.dirty = true
	return nil
}

// Clear drops every style together with its segments and geometry. The
// active style stays selected and is registered again on the next draw.
func (b *Batcher) Clear() {
	b.buckets = nil
	b.byName = make(map[string]*bucket)
}

// ClearStyle drops the segments and geometry of one style.
func (b *Batcher) ClearStyle(name string) {
	bk, ok := b.byName[name]
	if !ok {
		return
	}
	bk.segments = nil
	bk.batches = nil
	bk.dirty = false
}

// Dirty reports whether the named style has segments newer than its geometry.
func (b *Batcher) Dirty(name string) bool {
	bk, ok := b.byName[name]
	return ok && bk.dirty
}

// UpdateDirty regenerates geometry for every dirty style and returns how many
// styles were rebuilt. Styles are independent and rebuilt in parallel.
func (b *Batcher) UpdateDirty() int {
	var wg sync.WaitGroup
	rebuilt := 0
	for _, bk := range b.buckets {
		if !bk.dirty {
			continue
		}
		rebuilt++
		wg.Add(1)
		go func(bk *bucket) {
			defer wg.Done()
			bk.batches = Tessellate(bk.style, bk.segments, b.cfg)
			bk.dirty = false
		}(bk)
	}
	wg.Wait()
	return rebuilt
}

// Batches returns the geometry generated for the named style by the last
// UpdateDirty.
func (b *Batcher) Batches(name string) []*Batch {
	if bk, ok := b.byName[name]; ok {
		return bk.batches
	}
	return nil
}

// Styles returns every registered style in registration order.
func (b *Batcher) Styles() []Style {
	out := make([]Style, len(b.buckets))
	for i, bk := range b.buckets {
		out[i] = bk.style
	}
	return out
}

// StyledSegments pairs a style with a copy of its segments.
type StyledSegments struct {
	Style    Style
	Segments []Segment
}

// StyledSegments returns the raw segments of every style that has any.
func (b *Batcher) StyledSegments() []StyledSegments {
	var out []StyledSegments
	for _, bk := range b.buckets {
		if len(bk.segments) == 0 {
			continue
		}
		out = append(out, StyledSegments{
			Style:    bk.style,
			Segments: append([]Segment(nil), bk.segments...),
		})
	}
	return out
}

// Params are the per-style shader inputs for one frame.
type Params struct {
	Style             string     `json:"style"`
	Width             float64    `json:"width"`
	StippleWidth      float64    `json:"stipple_width"`
	PatternLength     float64    `json:"pattern_length"`
	Color             color.RGBA `json:"color"`
	DepthTest         bool       `json:"depth_test"`
	Queue             int        `json:"queue"`
	DpiScale          float64    `json:"dpi_scale"`
	Feather           float64    `json:"feather"`
	SilhouetteNormals bool       `json:"silhouette_normals"`
	Batches           int        `json:"batches"`
}

// Params computes shader parameters for every style at the given pixel size.
func (b *Batcher) Params(pixel float64) []Params {
	out := make([]Params, len(b.buckets))
	for i, bk := range b.buckets {
		s := bk.style
		out[i] = Params{
			Style:             s.Name,
			Width:             s.Width * s.WidthScale(pixel),
			StippleWidth:      s.DashesScale(pixel),
			PatternLength:     s.PatternLength(),
			Color:             s.Color,
			DepthTest:         s.DepthTest,
			Queue:             s.Queue,
			DpiScale:          b.cfg.DpiScale,
			Feather:           b.cfg.Feather,
			SilhouetteNormals: b.cfg.SilhouetteNormals,
			Batches:           len(bk.batches),
		}
	}
	return out
}
