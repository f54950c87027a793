package viewport

import (
	"math"
	"testing"

	"github.com/matzehuels/reflections/pkg/geom"
)

func TestRadius(t *testing.T) {
	tests := []struct {
		size Size
		want float64
	}{
		{Size{800, 600}, 300},
		{Size{400, 1000}, 200},
		{Size{0, 600}, 0},
		{Size{-1, -1}, 0},
	}
	for _, tt := range tests {
		if got := Radius(tt.size); got != tt.want {
			t.Errorf("Radius(%v) = %v, want %v", tt.size, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	pts := []geom.Point{
		geom.Pt(0, 0), geom.Pt(1, 1), geom.Pt(-1, 0.25), geom.Pt(0.333, -0.777),
	}
	for _, r := range []float64{1, 37.5, 300} {
		for _, margin := range []float64{0.5, DefaultMargin, 1} {
			for _, p := range pts {
				got := ToNormalized(ToPixel(p, r, margin), r, margin)
				if !got.Near(p, 1e-12) {
					t.Errorf("r=%v margin=%v: %v -> %v", r, margin, p, got)
				}
			}
		}
	}
}

func TestToPixel(t *testing.T) {
	got := ToPixel(geom.Pt(1, -0.5), 100, 0.8)
	if math.Abs(got.X-80) > 1e-9 || math.Abs(got.Y+40) > 1e-9 {
		t.Errorf("ToPixel = %v, want (80, -40)", got)
	}
}

func TestToNormalizedClamps(t *testing.T) {
	got := ToNormalized(geom.Pt(500, -500), 100, 0.8)
	if got != geom.Pt(1, -1) {
		t.Errorf("ToNormalized = %v, want (1, -1)", got)
	}
	if got := ToNormalized(geom.Pt(3, 3), 0, 0.8); got != (geom.Point{}) {
		t.Errorf("zero radius = %v", got)
	}
}

func TestViewportScreen(t *testing.T) {
	v := New(Size{800, 600}, 0)
	if v.Margin != DefaultMargin {
		t.Errorf("Margin = %v, want default", v.Margin)
	}
	if c := v.Center(); c != geom.Pt(400, 300) {
		t.Errorf("Center = %v", c)
	}
	s := geom.Pt(460, 240)
	if back := v.Screen(v.FromScreen(s)); back != s {
		t.Errorf("screen round trip = %v", back)
	}
	if !v.Inside(geom.Pt(400, 300)) {
		t.Error("center not inside")
	}
	if v.Inside(geom.Pt(400, 0)) {
		t.Error("top edge reported inside")
	}
	if New(Size{}, 0.8).Inside(geom.Point{}) {
		t.Error("empty viewport reported inside")
	}
}
