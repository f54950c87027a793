package geom

import "math"

// Polygon is a closed ring of vertices. The closing edge from the last vertex
// back to the first is implicit.
type Polygon []Point

// Clone returns an independent copy.
func (pg Polygon) Clone() Polygon {
	if pg == nil {
		return nil
	}
	return append(Polygon(nil), pg...)
}

// SignedArea is positive for counter-clockwise rings in a Y-up frame.
func (pg Polygon) SignedArea() float64 {
	var a float64
	for i, p := range pg {
		q := pg[(i+1)%len(pg)]
		a += p.Cross(q)
	}
	return a / 2
}

// Area is the absolute enclosed area.
func (pg Polygon) Area() float64 { return math.Abs(pg.SignedArea()) }

// Centroid returns the area centroid, or the vertex mean for degenerate rings.
func (pg Polygon) Centroid() Point {
	if len(pg) == 0 {
		return Point{}
	}
	a := pg.SignedArea()
	if math.Abs(a) < Epsilon {
		var s Point
		for _, p := range pg {
			s = s.Add(p)
		}
		return s.Scale(1 / float64(len(pg)))
	}
	var cx, cy float64
	for i, p := range pg {
		q := pg[(i+1)%len(pg)]
		c := p.Cross(q)
		cx += (p.X + q.X) * c
		cy += (p.Y + q.Y) * c
	}
	return Point{cx / (6 * a), cy / (6 * a)}
}

// Contains reports whether p lies inside the ring (even-odd rule).
func (pg Polygon) Contains(p Point) bool {
	in := false
	for i, j := 0, len(pg)-1; i < len(pg); j, i = i, i+1 {
		a, b := pg[i], pg[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				in = !in
			}
		}
	}
	return in
}

// Bounds returns the axis-aligned bounding rectangle.
func (pg Polygon) Bounds() Rect {
	if len(pg) == 0 {
		return Rect{}
	}
	r := Rect{Min: pg[0], Max: pg[0]}
	for _, p := range pg[1:] {
		r.Min.X = math.Min(r.Min.X, p.X)
		r.Min.Y = math.Min(r.Min.Y, p.Y)
		r.Max.X = math.Max(r.Max.X, p.X)
		r.Max.Y = math.Max(r.Max.Y, p.Y)
	}
	return r
}

// ClipHalfPlane keeps the part of a convex ring where n·x <= c
// (Sutherland-Hodgman against a single edge).
func ClipHalfPlane(pg Polygon, n Point, c float64) Polygon {
	if len(pg) == 0 {
		return nil
	}
	out := make(Polygon, 0, len(pg)+1)
	prev := pg[len(pg)-1]
	prevIn := n.Dot(prev) <= c+Epsilon
	for _, cur := range pg {
		curIn := n.Dot(cur) <= c+Epsilon
		if curIn != prevIn {
			d := n.Dot(cur.Sub(prev))
			if d != 0 {
				t := (c - n.Dot(prev)) / d
				out = append(out, prev.Add(cur.Sub(prev).Scale(t)))
			}
		}
		if curIn {
			out = append(out, cur)
		}
		prev, prevIn = cur, curIn
	}
	return dedupe(out)
}

// ClipConvex intersects a convex subject with a convex clip ring.
func ClipConvex(subject, clip Polygon) Polygon {
	if len(clip) < 3 {
		return nil
	}
	ccw := clip.SignedArea() > 0
	out := subject.Clone()
	for i, a := range clip {
		b := clip[(i+1)%len(clip)]
		e := b.Sub(a)
		// Outward normal of edge a->b.
		n := Point{e.Y, -e.X}
		if !ccw {
			n = n.Scale(-1)
		}
		out = ClipHalfPlane(out, n, n.Dot(a))
		if len(out) == 0 {
			return nil
		}
	}
	return out
}

// Offset displaces every edge of the ring by distance along its normal.
// Positive distances move edges inward. Each vertex moves along the bisector
// of its adjacent edges by distance/cos(half angle), so edges stay parallel to
// the originals. Rings with fewer than 3 vertices are returned unchanged.
func Offset(pg Polygon, distance float64) Polygon {
	if len(pg) < 3 || distance == 0 {
		return pg.Clone()
	}
	// Inward normals point left of each edge on a counter-clockwise ring.
	sign := 1.0
	if pg.SignedArea() < 0 {
		sign = -1
	}
	n := len(pg)
	normals := make([]Point, n)
	for i, p := range pg {
		e := pg[(i+1)%n].Sub(p)
		l := e.Len()
		if l < Epsilon {
			continue
		}
		normals[i] = Point{-e.Y / l, e.X / l}.Scale(sign)
	}
	out := make(Polygon, n)
	for i, p := range pg {
		n1 := normals[(i-1+n)%n]
		n2 := normals[i]
		switch {
		case n1 == (Point{}):
			n1 = n2
		case n2 == (Point{}):
			n2 = n1
		}
		denom := 1 + n1.Dot(n2)
		var w Point
		if denom < 1e-6 {
			w = n1.Scale(distance)
		} else {
			w = n1.Add(n2).Scale(distance / denom)
		}
		out[i] = p.Add(w)
	}
	return out
}

// Collapsed reports whether an offset ring lost its shape: an edge reversed
// direction relative to the source ring, or the area vanished.
func Collapsed(source, offset Polygon) bool {
	if len(offset) < 3 || len(offset) != len(source) {
		return true
	}
	if math.Abs(offset.SignedArea()) < Epsilon {
		return true
	}
	n := len(source)
	for i := range source {
		e0 := source[(i+1)%n].Sub(source[i])
		e1 := offset[(i+1)%n].Sub(offset[i])
		if e0.Dot(e1) <= 0 && e0.Len() > Epsilon {
			return true
		}
	}
	return false
}

func dedupe(pg Polygon) Polygon {
	if len(pg) < 2 {
		return pg
	}
	out := pg[:0:0]
	for i, p := range pg {
		if i > 0 && p.Near(out[len(out)-1], Epsilon) {
			continue
		}
		out = append(out, p)
	}
	if len(out) > 1 && out[0].Near(out[len(out)-1], Epsilon) {
		out = out[:len(out)-1]
	}
	return out
}
