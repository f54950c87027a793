package sink

import (
	"bytes"
	"encoding/json"
	"image/png"
	"strings"
	"testing"

	"github.com/matzehuels/reflections/pkg/geom"
	"github.com/matzehuels/reflections/pkg/mosaic"
	"github.com/matzehuels/reflections/pkg/shard"
	"github.com/matzehuels/reflections/pkg/viewport"
)

func testDiagram(t *testing.T) *mosaic.Diagram {
	t.Helper()
	ws := mosaic.WorkingSet{
		Points:   []geom.Point{geom.Pt(0.2, 0.1), geom.Pt(-0.4, 0.3), geom.Pt(0.1, -0.5)},
		Rotation: 1,
	}
	d, err := mosaic.NewRenderer(mosaic.WithEdgeMode(mosaic.EdgeClip)).Render(ws, viewport.Size{Width: 200, Height: 160})
	if err != nil {
		t.Fatal(err)
	}
	mosaic.Bind(d, []shard.Shard{
		{ID: "s<1>", Spark: "What makes you glow?", Text: `rain & "fog"`, Tint: 4, Glow: 1, Point: 1},
		{ID: "s2", Spark: "x", Text: "y", Tint: 2, Point: 2, Tarnished: true},
	})
	return d
}

func TestRenderSVG(t *testing.T) {
	d := testDiagram(t)
	out := string(RenderSVG(d, WithBorders(), WithSites()))

	if !strings.HasPrefix(out, "<svg") || !strings.HasSuffix(out, "</svg>\n") {
		t.Fatal("not an SVG document")
	}
	if n := strings.Count(out, `class="cell`); n != len(d.Cells) {
		t.Errorf("cell polygons = %d, want %d", n, len(d.Cells))
	}
	if n := strings.Count(out, `data-original="1"`); n != 2 {
		t.Errorf(`data-original="1" count = %d, want 2`, n)
	}
	if !strings.Contains(out, `data-text="rain &amp; &#34;fog&#34;"`) {
		t.Error("shard text not escaped")
	}
	if !strings.Contains(out, `data-shard="s&lt;1&gt;"`) {
		t.Error("shard id not escaped")
	}
	if !strings.Contains(out, TintColor(4)) {
		t.Error("tint color missing")
	}
	if !strings.Contains(out, colorTarnished) {
		t.Error("tarnished color missing")
	}
	if !strings.Contains(out, "setTimeout(() => highlight(orig), 150)") {
		t.Error("hover script missing delay")
	}
	// Entering a sibling copy of the pending or highlighted cell keeps the
	// running timer.
	if !strings.Contains(out, "if (orig === pending || orig === active) return;") {
		t.Error("hover script restarts the timer for sibling copies")
	}
	if n := strings.Count(out, `class="border"`); n != len(d.Cells) {
		t.Errorf("borders = %d", n)
	}
}

func TestRenderSVGStatic(t *testing.T) {
	out := string(RenderSVG(testDiagram(t), WithoutInteraction()))
	if strings.Contains(out, "<script>") || strings.Contains(out, "<style>") {
		t.Error("static SVG contains interaction")
	}
}

func TestRenderSVGHighlighted(t *testing.T) {
	d := testDiagram(t)
	for _, c := range d.CellsFor(0) {
		c.Highlighted = true
	}
	out := string(RenderSVG(d))
	if n := strings.Count(out, `class="cell highlight"`); n != 2 {
		t.Errorf("highlighted cells = %d, want 2", n)
	}
}

func TestRenderPNG(t *testing.T) {
	data, err := RenderPNG(testDiagram(t), WithScale(2), WithPNGBorders())
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 320 {
		t.Errorf("size = %v, want 400x320", b)
	}
}

func TestRenderJSON(t *testing.T) {
	d := testDiagram(t)
	data, err := RenderJSON(d)
	if err != nil {
		t.Fatal(err)
	}
	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Width != 200 || out.OriginalCount != 3 || out.Rotation != 1 {
		t.Errorf("header = %+v", out)
	}
	if len(out.Cells) != len(d.Cells) {
		t.Fatalf("cells = %d, want %d", len(out.Cells), len(d.Cells))
	}
	for i, c := range out.Cells {
		want := d.Cells[i].Site.Add(geom.Pt(100, 80))
		if !c.Site.Near(want, 1e-9) {
			t.Errorf("cell %d site = %v, want %v", i, c.Site, want)
		}
		if (c.ShardID != "") != d.Cells[i].Claimed() {
			t.Errorf("cell %d shard id = %q", i, c.ShardID)
		}
	}
}

func TestTintColor(t *testing.T) {
	if TintColor(0) != Tints[0] || TintColor(8) != Tints[8] {
		t.Error("in-range tints")
	}
	if TintColor(9) != Tints[0] || TintColor(-1) != Tints[8] {
		t.Error("wrapping tints")
	}
}

func TestToDOT(t *testing.T) {
	d := testDiagram(t)
	dot := ToDOT(d)

	if !strings.HasPrefix(dot, "graph Delaunay {") {
		t.Error("ToDOT() output missing graph declaration")
	}
	if n := strings.Count(dot, "pos="); n != len(d.Cells) {
		t.Errorf("ToDOT() has %d nodes, want %d", n, len(d.Cells))
	}
	if len(d.Cells) >= 2 && !strings.Contains(dot, " -- ") {
		t.Error("ToDOT() output has no edges")
	}
	if !strings.Contains(dot, TintColor(4)) {
		t.Error("ToDOT() claimed cell missing its tint")
	}
}

func TestToDOTEmpty(t *testing.T) {
	d := &mosaic.Diagram{}
	dot := ToDOT(d)
	if strings.Contains(dot, "--") || strings.Contains(dot, "pos=") {
		t.Errorf("ToDOT() of an empty diagram = %q", dot)
	}
}
