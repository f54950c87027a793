package mosaic

import (
	"time"

	"github.com/matzehuels/reflections/pkg/clock"
)

// EmptyText is shown when hovering a cell without a shard.
const EmptyText = "empty"

// DefaultHoverDelay is the delay before a hovered point is highlighted.
const DefaultHoverDelay = 150 * time.Millisecond

// HoverInfo describes the highlighted point.
type HoverInfo struct {
	Original int
	Claimed  bool
	Spark    string
	Text     string
	Tint     int
	Glow     int
}

// Hover highlights every cell of the hovered original point after a delay
// and clears the highlight immediately on leave. Moving between cells of the
// same original point neither clears nor restarts the delay.
//
// Timer callbacks must be delivered on the goroutine that drives Hover; the
// clock passed in is responsible for that.
type Hover struct {
	clock   clock.Clock
	delay   time.Duration
	show    func(*HoverInfo)
	diagram *Diagram
	active  int
	pending int
	timer   clock.Timer
}

// NewHover returns a controller that reports highlight changes to show
// (nil info means nothing is highlighted).
func NewHover(c clock.Clock, delay time.Duration, show func(*HoverInfo)) *Hover {
	if show == nil {
		show = func(*HoverInfo) {}
	}
	return &Hover{clock: c, delay: delay, show: show, active: -1, pending: -1}
}

// SetDiagram switches to a freshly rendered diagram, dropping any highlight.
func (h *Hover) SetDiagram(d *Diagram) {
	h.Clear()
	h.diagram = d
}

// Active returns the highlighted original index, or -1.
func (h *Hover) Active() int { return h.active }

// Pending returns the original index waiting for its delay, or -1.
func (h *Hover) Pending() int { return h.pending }

// Enter starts hovering cell.
func (h *Hover) Enter(c *Cell) {
	if c == nil {
		return
	}
	if c.Original == h.active || c.Original == h.pending {
		return
	}
	h.Clear()
	orig := c.Original
	h.pending = orig
	h.timer = h.clock.AfterFunc(h.delay, func() {
		if h.pending != orig {
			return
		}
		h.timer = nil
		h.pending = -1
		h.activate(orig)
	})
}

// Leave ends hovering from; next is the cell the pointer moved to, if any.
func (h *Hover) Leave(from, next *Cell) {
	if from != nil && next != nil && from.Original == next.Original {
		return
	}
	h.Clear()
	if next != nil {
		h.Enter(next)
	}
}

// Clear cancels any pending highlight and removes the current one.
func (h *Hover) Clear() {
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.pending = -1
	if h.active < 0 {
		return
	}
	for _, c := range h.diagram.CellsFor(h.active) {
		c.Highlighted = false
	}
	h.active = -1
	h.show(nil)
}

func (h *Hover) activate(orig int) {
	cells := h.diagram.CellsFor(orig)
	if len(cells) == 0 {
		return
	}
	info := &HoverInfo{Original: orig, Text: EmptyText}
	for _, c := range cells {
		c.Highlighted = true
		if s := c.Shard; s != nil {
			info.Claimed = true
			info.Spark, info.Text, info.Tint, info.Glow = s.Spark, s.Text, s.Tint, s.Glow
		}
	}
	h.active = orig
	h.show(info)
}
