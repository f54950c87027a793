package geom

import "math"

// TouchesRect reports whether any vertex of pg lies on or outside r.
func TouchesRect(pg Polygon, r Rect) bool {
	for _, p := range pg {
		if p.X <= r.Min.X+Epsilon || p.X >= r.Max.X-Epsilon ||
			p.Y <= r.Min.Y+Epsilon || p.Y >= r.Max.Y-Epsilon {
			return true
		}
	}
	return false
}

// TouchesCircle reports whether any vertex of pg lies on or beyond the circle.
func TouchesCircle(pg Polygon, center Point, radius float64) bool {
	for _, p := range pg {
		if p.Dist(center) >= radius-Epsilon {
			return true
		}
	}
	return false
}

// Circle approximates a circle with a regular counter-clockwise ring of the
// given number of segments (at least 3).
func Circle(center Point, radius float64, segments int) Polygon {
	if segments < 3 {
		segments = 3
	}
	out := make(Polygon, segments)
	for i := range out {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / float64(segments))
		out[i] = Point{center.X + radius*cos, center.Y + radius*sin}
	}
	return out
}

// ClipCircle intersects a convex ring with a polygonal approximation of the
// circle. It returns nil when nothing remains.
func ClipCircle(pg Polygon, center Point, radius float64, segments int) Polygon {
	out := ClipConvex(pg, Circle(center, radius, segments))
	if len(out) < 3 {
		return nil
	}
	return out
}
