package geom

import "testing"

func TestTouchesRect(t *testing.T) {
	r := Square(Point{}, 10)
	if TouchesRect(square(-2, -2, 2, 2), r) {
		t.Error("interior square reported touching")
	}
	if !TouchesRect(square(0, 0, 10, 5), r) {
		t.Error("square on the edge not reported")
	}
	if !TouchesRect(square(0, 0, 12, 5), r) {
		t.Error("square beyond the edge not reported")
	}
}

func TestTouchesCircle(t *testing.T) {
	tests := []struct {
		name string
		pg   Polygon
		want bool
	}{
		{"inside", square(-1, -1, 1, 1), false},
		{"vertex on circle", Polygon{Pt(0, 0), Pt(5, 0), Pt(0, 1)}, true},
		{"vertex beyond", Polygon{Pt(0, 0), Pt(4, 4), Pt(0, 1)}, true},
		{"just inside", Polygon{Pt(0, 0), Pt(4.99, 0), Pt(0, 1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TouchesCircle(tt.pg, Point{}, 5); got != tt.want {
				t.Errorf("TouchesCircle = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClipCircle(t *testing.T) {
	big := square(-10, -10, 10, 10)
	got := ClipCircle(big, Point{}, 5, 64)
	if len(got) != 64 {
		t.Errorf("vertices = %d, want 64", len(got))
	}
	for _, p := range got {
		if p.Len() > 5+1e-6 {
			t.Errorf("vertex %v outside circle", p)
		}
	}
	if got := ClipCircle(square(20, 20, 30, 30), Point{}, 5, 64); got != nil {
		t.Errorf("disjoint clip = %v, want nil", got)
	}
}
