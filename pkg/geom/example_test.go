package geom_test

import (
	"fmt"
	"math"

	"github.com/matzehuels/reflections/pkg/geom"
)

func ExampleDuplicateAndRotate() {
	pts := []geom.Point{geom.Pt(1, 0)}
	out := geom.DuplicateAndRotate(pts, 3, geom.Point{})
	for _, p := range out {
		fmt.Println(math.Round(p.X)+0, math.Round(p.Y)+0)
	}
	// Output:
	// 1 0
	// 0 1
	// -1 0
	// 0 -1
}

func ExampleTessellate() {
	sites := []geom.Point{geom.Pt(-1, 0), geom.Pt(1, 0)}
	cells := geom.Tessellate(sites, geom.Square(geom.Point{}, 2))
	for i, c := range cells {
		fmt.Printf("site %d: area %.0f\n", i, c.Area())
	}
	// Output:
	// site 0: area 8
	// site 1: area 8
}
