package geom

import (
	"encoding/json"
	"fmt"
	"math"
)

// Epsilon merges coordinates that differ only by rounding error.
const Epsilon = 1e-9

// Point is a 2D coordinate. On the wire it is the two-element array [x, y].
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }
func (p Point) Dot(q Point) float64   { return p.X*q.X + p.Y*q.Y }
func (p Point) Cross(q Point) float64 { return p.X*q.Y - p.Y*q.X }
func (p Point) Len() float64          { return math.Hypot(p.X, p.Y) }
func (p Point) Dist(q Point) float64  { return p.Sub(q).Len() }
func (p Point) String() string        { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }
func (p Point) Finite() bool          { return finite(p.X) && finite(p.Y) }
func (p Point) Near(q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// Clamp limits both axes to [lo, hi].
func (p Point) Clamp(lo, hi float64) Point {
	return Point{clamp(p.X, lo, hi), clamp(p.Y, lo, hi)}
}

// MarshalJSON encodes the point as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON decodes a two-element array.
func (p *Point) UnmarshalJSON(data []byte) error {
	var raw []float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("point: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("point: want 2 coordinates, got %d", len(raw))
	}
	p.X, p.Y = raw[0], raw[1]
	return nil
}

// Rotate turns p about center by deg degrees.
func Rotate(p Point, deg float64, center Point) Point {
	if deg == 0 {
		return p
	}
	sin, cos := math.Sincos(deg * math.Pi / 180)
	d := p.Sub(center)
	return Point{
		X: center.X + d.X*cos - d.Y*sin,
		Y: center.Y + d.X*sin + d.Y*cos,
	}
}

// DuplicateAndRotate returns the original points followed by k rotated
// copies. Copy j (1-based) is rotated by 360/(k+1)*j degrees about center and
// occupies indices [j*n, (j+1)*n). With k <= 0 the result is a copy of points.
func DuplicateAndRotate(points []Point, k int, center Point) []Point {
	if k < 0 {
		k = 0
	}
	n := len(points)
	out := make([]Point, 0, n*(k+1))
	out = append(out, points...)
	step := 360 / float64(k+1)
	for j := 1; j <= k; j++ {
		for _, p := range points {
			out = append(out, Rotate(p, step*float64(j), center))
		}
	}
	return out
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
