package mosaic

import (
	"testing"

	"github.com/matzehuels/reflections/pkg/shard"
)

func clipDiagram(t *testing.T) *Diagram {
	t.Helper()
	ws := WorkingSet{Points: pts(0.5, 0.1, -0.3, 0.4, 0.2, -0.6, 0.7, 0.5), Rotation: 2}
	d, err := NewRenderer(WithEdgeMode(EdgeClip)).Render(ws, size)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestBindDuplicates(t *testing.T) {
	d := clipDiagram(t)
	shards := []shard.Shard{{ID: "s3", Spark: "a", Text: "b", Tint: 5, Glow: 1, Point: 3}}
	if n := Bind(d, shards); n != 3 {
		t.Errorf("claimed = %d, want 3", n)
	}
	for _, c := range d.Cells {
		want := c.Rendered == 3 || c.Rendered == 7 || c.Rendered == 11
		if c.Claimed() != want {
			t.Errorf("cell %d claimed = %v, want %v", c.Rendered, c.Claimed(), want)
		}
		if want && (c.Shard.ID != "s3" || c.Shard.Tint != 5) {
			t.Errorf("cell %d shard = %+v", c.Rendered, c.Shard)
		}
	}
}

func TestBindClearsPrevious(t *testing.T) {
	d := clipDiagram(t)
	Bind(d, []shard.Shard{{ID: "x", Point: 1}})
	Bind(d, []shard.Shard{{ID: "y", Point: 2}})
	for _, c := range d.Cells {
		switch c.Original {
		case 1:
			if c.Claimed() {
				t.Errorf("cell %d kept stale shard", c.Rendered)
			}
		case 2:
			if !c.Claimed() || c.Shard.ID != "y" {
				t.Errorf("cell %d shard = %+v", c.Rendered, c.Shard)
			}
		}
	}
	if n := Bind(d, nil); n != 0 {
		t.Errorf("Bind(nil) = %d", n)
	}
	for _, c := range d.Cells {
		if c.Claimed() {
			t.Errorf("cell %d still claimed", c.Rendered)
		}
	}
}

func TestBindSkipsMissingPoints(t *testing.T) {
	d := clipDiagram(t)
	if n := Bind(d, []shard.Shard{{ID: "far", Point: 40}}); n != 0 {
		t.Errorf("claimed = %d, want 0", n)
	}
	if n := Bind(nil, []shard.Shard{{Point: 0}}); n != 0 {
		t.Errorf("Bind(nil diagram) = %d", n)
	}
}
