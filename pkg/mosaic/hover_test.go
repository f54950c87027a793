package mosaic

import (
	"testing"
	"time"

	"github.com/matzehuels/reflections/pkg/clock/clocktest"
	"github.com/matzehuels/reflections/pkg/shard"
)

type hoverRecorder struct {
	shown []*HoverInfo
}

func (r *hoverRecorder) show(info *HoverInfo) { r.shown = append(r.shown, info) }

func (r *hoverRecorder) last() *HoverInfo {
	if len(r.shown) == 0 {
		return nil
	}
	return r.shown[len(r.shown)-1]
}

func newHoverFixture(t *testing.T) (*Hover, *Diagram, *clocktest.Fake, *hoverRecorder) {
	d := clipDiagram(t)
	Bind(d, []shard.Shard{{ID: "s1", Spark: "spark", Text: "text", Tint: 2, Point: 1}})
	c := clocktest.New()
	rec := &hoverRecorder{}
	h := NewHover(c, 100*time.Millisecond, rec.show)
	h.SetDiagram(d)
	return h, d, c, rec
}

func highlighted(d *Diagram) []int {
	var out []int
	for _, c := range d.Cells {
		if c.Highlighted {
			out = append(out, c.Rendered)
		}
	}
	return out
}

func TestHoverDelayedEnter(t *testing.T) {
	h, d, c, rec := newHoverFixture(t)
	cell := d.CellsFor(1)[0]

	h.Enter(cell)
	c.Advance(99 * time.Millisecond)
	if len(highlighted(d)) != 0 || len(rec.shown) != 0 {
		t.Fatal("highlighted before the delay")
	}
	c.Advance(time.Millisecond)
	if got := highlighted(d); len(got) != 3 {
		t.Fatalf("highlighted = %v, want all 3 copies", got)
	}
	info := rec.last()
	if info == nil || !info.Claimed || info.Text != "text" || info.Spark != "spark" || info.Original != 1 {
		t.Errorf("info = %+v", info)
	}
}

func TestHoverEmptyPlaceholder(t *testing.T) {
	h, d, c, rec := newHoverFixture(t)
	h.Enter(d.CellsFor(0)[0])
	c.Advance(time.Second)
	if info := rec.last(); info == nil || info.Claimed || info.Text != EmptyText {
		t.Errorf("info = %+v", info)
	}
}

func TestHoverImmediateLeave(t *testing.T) {
	h, d, c, rec := newHoverFixture(t)
	cell := d.CellsFor(1)[0]
	h.Enter(cell)
	c.Advance(time.Second)

	h.Leave(cell, nil)
	if got := highlighted(d); len(got) != 0 {
		t.Errorf("highlighted after leave = %v", got)
	}
	if rec.last() != nil {
		t.Error("display not cleared")
	}
	if h.Active() != -1 {
		t.Errorf("Active = %d", h.Active())
	}
}

func TestHoverLeaveCancelsPending(t *testing.T) {
	h, d, c, rec := newHoverFixture(t)
	cell := d.CellsFor(1)[0]
	h.Enter(cell)
	c.Advance(50 * time.Millisecond)
	h.Leave(cell, nil)
	c.Advance(time.Second)
	if len(highlighted(d)) != 0 || len(rec.shown) != 0 {
		t.Error("cancelled hover fired")
	}
	if c.Pending() != 0 {
		t.Errorf("pending timers = %d", c.Pending())
	}
}

func TestHoverSameOriginalNoRestart(t *testing.T) {
	h, d, c, _ := newHoverFixture(t)
	copies := d.CellsFor(1)

	h.Enter(copies[0])
	c.Advance(60 * time.Millisecond)
	h.Leave(copies[0], copies[1])
	h.Enter(copies[1])
	c.Advance(40 * time.Millisecond)
	if got := highlighted(d); len(got) != 3 {
		t.Fatalf("delay restarted: highlighted = %v", got)
	}

	// Moving between copies while active keeps the highlight.
	h.Leave(copies[1], copies[2])
	h.Enter(copies[2])
	if got := highlighted(d); len(got) != 3 {
		t.Errorf("highlight dropped: %v", got)
	}
}

func TestHoverSwitchOriginal(t *testing.T) {
	h, d, c, _ := newHoverFixture(t)
	a, b := d.CellsFor(1)[0], d.CellsFor(2)[0]
	h.Enter(a)
	c.Advance(time.Second)

	h.Leave(a, b)
	if len(highlighted(d)) != 0 {
		t.Error("old highlight kept while moving to a different point")
	}
	if h.Pending() != 2 {
		t.Errorf("Pending = %d, want 2", h.Pending())
	}
	c.Advance(time.Second)
	for _, cell := range d.Cells {
		if cell.Highlighted != (cell.Original == 2) {
			t.Errorf("cell %d highlighted = %v", cell.Rendered, cell.Highlighted)
		}
	}
}

func TestHoverSetDiagramClears(t *testing.T) {
	h, d, c, _ := newHoverFixture(t)
	h.Enter(d.CellsFor(1)[0])
	h.SetDiagram(clipDiagram(t))
	c.Advance(time.Second)
	if h.Active() != -1 || h.Pending() != -1 {
		t.Errorf("active %d pending %d after SetDiagram", h.Active(), h.Pending())
	}
}
