// Package viewport converts between normalized point coordinates and pixels.
//
// The mosaic is drawn inside a circle inscribed in the host container. A
// normalized coordinate in [-1, 1] maps to radius*margin pixels from the
// circle's center, so a margin below 1 keeps every stored point strictly
// inside the visible disc.
package viewport

import (
	"math"

	"github.com/matzehuels/reflections/pkg/geom"
)

// DefaultMargin is the fraction of the radius that the normalized range
// [-1, 1] spans.
const DefaultMargin = 0.8

// Size is a container size in pixels.
type Size struct {
	Width, Height float64
}

// Zero reports whether either dimension is not positive.
func (s Size) Zero() bool { return s.Width <= 0 || s.Height <= 0 }

// Viewport is the circular drawing area inscribed in a container.
type Viewport struct {
	Size   Size
	Margin float64
}

// New returns a viewport for the container. A margin outside (0, 1] falls
// back to DefaultMargin.
func New(size Size, margin float64) Viewport {
	if margin <= 0 || margin > 1 {
		margin = DefaultMargin
	}
	return Viewport{Size: size, Margin: margin}
}

// Radius is half of the container's smaller side.
func (v Viewport) Radius() float64 { return Radius(v.Size) }

// Center is the container center in absolute pixels.
func (v Viewport) Center() geom.Point {
	return geom.Pt(v.Size.Width/2, v.Size.Height/2)
}

// ToPixel maps a normalized point to pixels relative to the center.
func (v Viewport) ToPixel(p geom.Point) geom.Point {
	return ToPixel(p, v.Radius(), v.Margin)
}

// ToNormalized maps a center-relative pixel point back to normalized space.
func (v Viewport) ToNormalized(px geom.Point) geom.Point {
	return ToNormalized(px, v.Radius(), v.Margin)
}

// Screen converts a center-relative pixel point to absolute container pixels.
func (v Viewport) Screen(px geom.Point) geom.Point { return px.Add(v.Center()) }

// FromScreen converts absolute container pixels to center-relative pixels.
func (v Viewport) FromScreen(s geom.Point) geom.Point { return s.Sub(v.Center()) }

// Inside reports whether an absolute container point lies within the circle.
func (v Viewport) Inside(s geom.Point) bool {
	r := v.Radius()
	return r > 0 && v.FromScreen(s).Len() < r
}

// Radius returns min(width, height)/2, or 0 for an empty container.
func Radius(s Size) float64 {
	if s.Zero() {
		return 0
	}
	return math.Min(s.Width, s.Height) / 2
}

// ToPixel computes p * r * margin.
func ToPixel(p geom.Point, r, margin float64) geom.Point {
	return p.Scale(r * margin)
}

// ToNormalized inverts ToPixel and clamps the result to [-1, 1]. A zero scale
// maps everything to the origin.
func ToNormalized(px geom.Point, r, margin float64) geom.Point {
	f := r * margin
	if f == 0 {
		return geom.Point{}
	}
	return px.Scale(1/f).Clamp(-1, 1)
}
