package geom

import (
	"math"
	"testing"
)

func square(x0, y0, x1, y1 float64) Polygon {
	return Rect{Min: Pt(x0, y0), Max: Pt(x1, y1)}.Polygon()
}

func TestPolygonArea(t *testing.T) {
	sq := square(0, 0, 10, 10)
	if a := sq.SignedArea(); math.Abs(a-100) > tol {
		t.Errorf("SignedArea = %v, want 100", a)
	}
	rev := Polygon{sq[3], sq[2], sq[1], sq[0]}
	if a := rev.SignedArea(); math.Abs(a+100) > tol {
		t.Errorf("reversed SignedArea = %v, want -100", a)
	}
	if c := sq.Centroid(); !near(c, Pt(5, 5)) {
		t.Errorf("Centroid = %v", c)
	}
}

func TestPolygonContains(t *testing.T) {
	sq := square(0, 0, 10, 10)
	tests := []struct {
		p    Point
		want bool
	}{
		{Pt(5, 5), true},
		{Pt(0.1, 9.9), true},
		{Pt(-1, 5), false},
		{Pt(5, 11), false},
	}
	for _, tt := range tests {
		if got := sq.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestClipHalfPlane(t *testing.T) {
	sq := square(0, 0, 10, 10)
	got := ClipHalfPlane(sq, Pt(1, 0), 4)
	if a := got.Area(); math.Abs(a-40) > 1e-6 {
		t.Errorf("area = %v, want 40", a)
	}
	if b := got.Bounds(); math.Abs(b.Max.X-4) > 1e-6 {
		t.Errorf("max x = %v, want 4", b.Max.X)
	}

	if got := ClipHalfPlane(sq, Pt(1, 0), -1); len(got) != 0 {
		t.Errorf("fully clipped = %v, want empty", got)
	}
	if got := ClipHalfPlane(sq, Pt(1, 0), 20); len(got) != 4 {
		t.Errorf("unclipped vertex count = %d, want 4", len(got))
	}
}

func TestOffset(t *testing.T) {
	tests := []struct {
		name string
		pg   Polygon
	}{
		{"ccw", square(0, 0, 10, 10)},
		{"cw", Polygon{Pt(0, 0), Pt(0, 10), Pt(10, 10), Pt(10, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Offset(tt.pg, 1)
			b := got.Bounds()
			if !near(b.Min, Pt(1, 1)) || !near(b.Max, Pt(9, 9)) {
				t.Errorf("bounds = %v..%v, want (1,1)..(9,9)", b.Min, b.Max)
			}
			if Collapsed(tt.pg, got) {
				t.Error("reported collapsed")
			}
		})
	}

	t.Run("edges stay parallel", func(t *testing.T) {
		tri := Polygon{Pt(0, 0), Pt(12, 0), Pt(0, 9)}
		got := Offset(tri, 1)
		for i := range tri {
			e0 := tri[(i+1)%3].Sub(tri[i])
			e1 := got[(i+1)%3].Sub(got[i])
			if math.Abs(e0.Cross(e1)) > 1e-6 {
				t.Errorf("edge %d not parallel: %v vs %v", i, e0, e1)
			}
		}
		// Bottom edge moved up by exactly 1.
		if math.Abs(got[0].Y-1) > 1e-9 || math.Abs(got[1].Y-1) > 1e-9 {
			t.Errorf("bottom edge = %v, %v", got[0], got[1])
		}
	})

	t.Run("zero distance is border", func(t *testing.T) {
		sq := square(0, 0, 4, 4)
		got := Offset(sq, 0)
		for i := range sq {
			if got[i] != sq[i] {
				t.Fatalf("vertex %d = %v, want %v", i, got[i], sq[i])
			}
		}
	})

	t.Run("under three vertices unchanged", func(t *testing.T) {
		seg := Polygon{Pt(0, 0), Pt(1, 1)}
		got := Offset(seg, 5)
		if len(got) != 2 || got[0] != seg[0] || got[1] != seg[1] {
			t.Errorf("Offset(segment) = %v", got)
		}
	})

	t.Run("collapse detected", func(t *testing.T) {
		sq := square(0, 0, 2, 2)
		if !Collapsed(sq, Offset(sq, 3)) {
			t.Error("expected collapse for offset wider than the cell")
		}
	})
}
