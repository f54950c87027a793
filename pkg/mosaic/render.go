package mosaic

import (
	"slices"

	"github.com/matzehuels/reflections/pkg/geom"
	"github.com/matzehuels/reflections/pkg/shard"
	"github.com/matzehuels/reflections/pkg/viewport"
)

// EdgeMode decides what happens to cells that reach the viewport circle.
type EdgeMode int

const (
	// EdgeReject drops every cell with a vertex on or beyond the circle.
	EdgeReject EdgeMode = iota
	// EdgeClip keeps such cells, intersected with the circle.
	EdgeClip
)

func (m EdgeMode) String() string {
	if m == EdgeClip {
		return "clip"
	}
	return "reject"
}

// ParseEdgeMode accepts "reject" and "clip".
func ParseEdgeMode(s string) (EdgeMode, bool) {
	switch s {
	case "", "reject":
		return EdgeReject, true
	case "clip":
		return EdgeClip, true
	}
	return EdgeReject, false
}

// DefaultInset is the inward offset of the interactive shape in pixels.
const DefaultInset = 4.0

// circleSegments is the resolution of the circle used by EdgeClip.
const circleSegments = 96

// Cell is one rendered Voronoi cell. Coordinates are pixels relative to the
// viewport center.
type Cell struct {
	Rendered int
	Original int
	Site     geom.Point
	Border   geom.Polygon
	Inset    geom.Polygon

	// Set by Bind.
	Shard *shard.Shard
	// Set by Hover.
	Highlighted bool
}

// Claimed reports whether a shard is bound to the cell.
func (c *Cell) Claimed() bool { return c.Shard != nil }

// Diagram is the result of one render pass.
type Diagram struct {
	Size          viewport.Size
	Radius        float64
	Margin        float64
	OriginalCount int
	Rotation      int
	Cells         []*Cell
}

// Viewport returns the viewport the diagram was rendered for.
func (d *Diagram) Viewport() viewport.Viewport {
	return viewport.Viewport{Size: d.Size, Margin: d.Margin}
}

// CellAt returns the cell whose interactive shape contains p (center
// relative pixels), or nil.
func (d *Diagram) CellAt(p geom.Point) *Cell {
	if d == nil {
		return nil
	}
	for _, c := range d.Cells {
		if c.Inset.Contains(p) {
			return c
		}
	}
	return nil
}

// CellsFor returns every cell derived from the given original point.
func (d *Diagram) CellsFor(original int) []*Cell {
	if d == nil {
		return nil
	}
	var out []*Cell
	for _, c := range d.Cells {
		if c.Original == original {
			out = append(out, c)
		}
	}
	return out
}

// Renderer builds diagrams. The zero value is not ready; use NewRenderer.
type Renderer struct {
	margin float64
	inset  float64
	edge   EdgeMode
	hooks  RenderHooks
}

// RenderHooks observes render passes. Both functions may be nil.
type RenderHooks struct {
	OnRender func(sites, cells int)
	OnError  func(err error)
}

// Option configures a Renderer.
type Option func(*Renderer)

func WithMargin(m float64) Option    { return func(r *Renderer) { r.margin = m } }
func WithInset(px float64) Option    { return func(r *Renderer) { r.inset = px } }
func WithEdgeMode(m EdgeMode) Option { return func(r *Renderer) { r.edge = m } }
func WithHooks(h RenderHooks) Option { return func(r *Renderer) { r.hooks = h } }

// NewRenderer returns a renderer with the default margin, inset and edge mode.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{margin: viewport.DefaultMargin, inset: DefaultInset, edge: EdgeReject}
	for _, opt := range opts {
		opt(r)
	}
	if r.margin <= 0 || r.margin > 1 {
		r.margin = viewport.DefaultMargin
	}
	return r
}

// Margin returns the fraction of the radius spanned by normalized [-1, 1].
func (r *Renderer) Margin() float64 { return r.margin }

// Render builds a fresh diagram from ws for a container of the given size.
// It returns (nil, nil) when the container has no area so callers keep the
// previous diagram. An empty working set renders an empty diagram. The
// working set is not modified.
func (r *Renderer) Render(ws WorkingSet, size viewport.Size) (*Diagram, error) {
	if size.Zero() {
		return nil, nil
	}
	vp := viewport.New(size, r.margin)
	radius := vp.Radius()
	n := len(ws.Points)
	d := &Diagram{
		Size:          size,
		Radius:        radius,
		Margin:        vp.Margin,
		OriginalCount: n,
		Rotation:      ws.Rotation,
	}
	if n == 0 {
		r.observe(0, 0)
		return d, nil
	}

	px := make([]geom.Point, n)
	for i, p := range ws.Points {
		px[i] = vp.ToPixel(p.Clamp(-1, 1))
	}
	center := geom.Point{}
	sites := geom.DuplicateAndRotate(px, ws.Rotation, center)
	polys := geom.Tessellate(sites, geom.Square(center, radius))

	cells := make([]*Cell, 0, len(polys))
	for i, poly := range polys {
		if poly == nil {
			continue
		}
		orig, err := OriginalIndex(i, n)
		if err != nil {
			r.fail(err)
			return nil, err
		}
		switch r.edge {
		case EdgeClip:
			poly = geom.ClipCircle(poly, center, radius, circleSegments)
			if poly == nil {
				continue
			}
		default:
			if geom.TouchesCircle(poly, center, radius) {
				continue
			}
		}
		inset := geom.Offset(poly, r.inset)
		if geom.Collapsed(poly, inset) {
			inset = poly.Clone()
		}
		cells = append(cells, &Cell{
			Rendered: i,
			Original: orig,
			Site:     sites[i],
			Border:   poly,
			Inset:    inset,
		})
	}
	d.Cells = slices.Clip(cells)
	r.observe(len(sites), len(cells))
	return d, nil
}

func (r *Renderer) observe(sites, cells int) {
	if r.hooks.OnRender != nil {
		r.hooks.OnRender(sites, cells)
	}
}

func (r *Renderer) fail(err error) {
	if r.hooks.OnError != nil {
		r.hooks.OnError(err)
	}
}
