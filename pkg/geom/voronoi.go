package geom

import (
	"math"
	"slices"

	"github.com/fogleman/delaunay"
)

// Rect is an axis-aligned rectangle.
type Rect struct {
	Min, Max Point
}

// Square returns the square of half-width half centred on c.
func Square(c Point, half float64) Rect {
	return Rect{Min: Point{c.X - half, c.Y - half}, Max: Point{c.X + half, c.Y + half}}
}

func (r Rect) Dx() float64 { return r.Max.X - r.Min.X }
func (r Rect) Dy() float64 { return r.Max.Y - r.Min.Y }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Dx() <= 0 || r.Dy() <= 0 }

// Polygon returns the rectangle as a counter-clockwise ring.
func (r Rect) Polygon() Polygon {
	return Polygon{
		r.Min,
		{r.Max.X, r.Min.Y},
		r.Max,
		{r.Min.X, r.Max.Y},
	}
}

// Tessellate computes the Voronoi cell of every site clipped to bounds.
// The result is indexed like sites. A site that coincides with an earlier
// site gets a nil cell, as does any site whose cell lies outside bounds.
// Fewer than two sites, or empty bounds, produce no cells at all.
func Tessellate(sites []Point, bounds Rect) []Polygon {
	if len(sites) < 2 || bounds.Empty() {
		return nil
	}

	// Collapse coincident sites onto their first occurrence.
	unique := make([]int, 0, len(sites))
	firstOf := make(map[[2]int64]int, len(sites))
	dup := make([]bool, len(sites))
	for i, s := range sites {
		k := snap(s)
		if _, ok := firstOf[k]; ok {
			dup[i] = true
			continue
		}
		firstOf[k] = i
		unique = append(unique, i)
	}

	cells := make([]Polygon, len(sites))
	if len(unique) < 2 {
		return cells
	}

	adj := neighbours(sites, unique)
	box := bounds.Polygon()
	for _, i := range unique {
		others := adj[i]
		if len(others) == 0 {
			others = unique
		}
		cell := box
		for _, j := range others {
			if j == i {
				continue
			}
			cell = clipBisector(cell, sites[i], sites[j])
			if len(cell) == 0 {
				break
			}
		}
		if len(cell) >= 3 {
			cells[i] = cell
		}
	}
	for i := range cells {
		if dup[i] {
			cells[i] = nil
		}
	}
	return cells
}

// Edges returns the Delaunay edges between distinct sites as index pairs with
// the lower index first. Sites that cannot be triangulated yield no edges.
func Edges(sites []Point) [][2]int {
	idx := make([]int, 0, len(sites))
	seen := make(map[[2]int64]bool, len(sites))
	for i, s := range sites {
		if k := snap(s); !seen[k] {
			seen[k] = true
			idx = append(idx, i)
		}
	}
	adj := neighbours(sites, idx)
	var out [][2]int
	for _, i := range idx {
		for _, j := range adj[i] {
			if i < j {
				out = append(out, [2]int{i, j})
			}
		}
	}
	return out
}

// neighbours maps each of the given site indices to its Delaunay neighbours.
// A nil result means the triangulation failed and callers should treat every
// site as a potential neighbour.
func neighbours(sites []Point, idx []int) map[int][]int {
	if len(idx) < 3 {
		if len(idx) == 2 {
			return map[int][]int{idx[0]: {idx[1]}, idx[1]: {idx[0]}}
		}
		return nil
	}
	pts := make([]delaunay.Point, len(idx))
	for k, i := range idx {
		pts[k] = delaunay.Point{X: sites[i].X, Y: sites[i].Y}
	}
	tri, err := delaunay.Triangulate(pts)
	if err != nil || len(tri.Triangles) == 0 {
		return nil
	}
	sets := make(map[int]map[int]struct{}, len(idx))
	link := func(a, b int) {
		if sets[a] == nil {
			sets[a] = make(map[int]struct{})
		}
		sets[a][b] = struct{}{}
	}
	for t := 0; t+2 < len(tri.Triangles); t += 3 {
		a, b, c := idx[tri.Triangles[t]], idx[tri.Triangles[t+1]], idx[tri.Triangles[t+2]]
		link(a, b)
		link(b, a)
		link(b, c)
		link(c, b)
		link(a, c)
		link(c, a)
	}
	out := make(map[int][]int, len(sets))
	for _, i := range idx {
		for j := range sets[i] {
			out[i] = append(out[i], j)
		}
		slices.Sort(out[i])
	}
	return out
}

// clipBisector keeps the half of cell closer to a than to b.
func clipBisector(cell Polygon, a, b Point) Polygon {
	n := b.Sub(a)
	c := (b.Dot(b) - a.Dot(a)) / 2
	return ClipHalfPlane(cell, n, c)
}

func snap(p Point) [2]int64 {
	return [2]int64{int64(math.Round(p.X / Epsilon)), int64(math.Round(p.Y / Epsilon))}
}
