package geom

import (
	"math"
	"testing"
)

// sharedEdges counts edges that appear (in either direction) in both rings.
func sharedEdges(a, b Polygon) int {
	n := 0
	for i := range a {
		p, q := a[i], a[(i+1)%len(a)]
		for j := range b {
			r, s := b[j], b[(j+1)%len(b)]
			if (near(p, r) && near(q, s)) || (near(p, s) && near(q, r)) {
				n++
			}
		}
	}
	return n
}

func TestTessellateTooFew(t *testing.T) {
	bounds := Square(Point{}, 10)
	for _, sites := range [][]Point{nil, {Pt(0, 0)}} {
		if got := Tessellate(sites, bounds); len(got) != 0 {
			t.Errorf("Tessellate(%v) = %d cells, want 0", sites, len(got))
		}
	}
}

func TestTessellateTwoSites(t *testing.T) {
	sites := []Point{Pt(0, 0), Pt(10, 0)}
	cells := Tessellate(sites, Square(Point{}, 20))
	if len(cells) != 2 || cells[0] == nil || cells[1] == nil {
		t.Fatalf("cells = %v", cells)
	}
	if n := sharedEdges(cells[0], cells[1]); n != 1 {
		t.Fatalf("shared edges = %d, want 1", n)
	}
	// The shared edge lies on the perpendicular bisector x = 5.
	for _, c := range cells {
		for _, p := range c {
			if math.Abs(p.X-5) < 1e-6 {
				continue
			}
			if math.Abs(p.X+20) > 1e-6 && math.Abs(p.X-20) > 1e-6 {
				t.Errorf("unexpected vertex %v", p)
			}
		}
	}
	if a := cells[0].Area() + cells[1].Area(); math.Abs(a-1600) > 1e-6 {
		t.Errorf("total area = %v, want 1600", a)
	}
}

func TestTessellatePartition(t *testing.T) {
	sites := []Point{
		Pt(-5, -5), Pt(4, -6), Pt(6, 5), Pt(-3, 7), Pt(0, 0), Pt(8, -1), Pt(-7, 2),
	}
	bounds := Square(Point{}, 10)
	cells := Tessellate(sites, bounds)
	if len(cells) != len(sites) {
		t.Fatalf("len = %d, want %d", len(cells), len(sites))
	}
	var total float64
	for i, c := range cells {
		if c == nil {
			t.Fatalf("cell %d is nil", i)
		}
		if !c.Contains(sites[i]) {
			t.Errorf("cell %d does not contain its site", i)
		}
		// Every vertex is at least as close to its own site as to any other.
		for _, v := range c {
			own := v.Dist(sites[i])
			for j, s := range sites {
				if j != i && v.Dist(s) < own-1e-6 {
					t.Errorf("cell %d vertex %v closer to site %d", i, v, j)
				}
			}
		}
		total += c.Area()
	}
	if math.Abs(total-400) > 1e-6 {
		t.Errorf("total area = %v, want 400", total)
	}
}

func TestTessellateCollinear(t *testing.T) {
	sites := []Point{Pt(-6, 0), Pt(0, 0), Pt(6, 0)}
	cells := Tessellate(sites, Square(Point{}, 10))
	for i, c := range cells {
		if c == nil {
			t.Fatalf("cell %d is nil", i)
		}
	}
	if a := cells[1].Area(); math.Abs(a-6*20) > 1e-6 {
		t.Errorf("middle area = %v, want 120", a)
	}
}

func TestTessellateDuplicates(t *testing.T) {
	sites := []Point{Pt(0, 0), Pt(5, 5), Pt(0, 0)}
	cells := Tessellate(sites, Square(Point{}, 10))
	if cells[0] == nil || cells[1] == nil {
		t.Fatal("distinct sites should have cells")
	}
	if cells[2] != nil {
		t.Errorf("duplicate site cell = %v, want nil", cells[2])
	}
}

func TestEdges(t *testing.T) {
	sites := []Point{Pt(0, 0), Pt(10, 0), Pt(0, 10), Pt(10, 10)}
	edges := Edges(sites)
	// A square triangulates into 5 edges (4 sides and one diagonal).
	if len(edges) != 5 {
		t.Errorf("edges = %v, want 5", edges)
	}
	for _, e := range edges {
		if e[0] >= e[1] {
			t.Errorf("edge %v not ordered", e)
		}
	}
	if got := Edges([]Point{Pt(0, 0), Pt(1, 1)}); len(got) != 1 {
		t.Errorf("two sites: %v", got)
	}
}
