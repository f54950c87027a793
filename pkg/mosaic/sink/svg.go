package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/reflections/pkg/geom"
	"github.com/matzehuels/reflections/pkg/mosaic"
)

const cellInteractionCSS = `
    .cell { transition: stroke-width 0.15s ease, filter 0.15s ease; }
    .cell.highlight { stroke: #ffffff; stroke-width: 3; filter: brightness(1.25); }
    .border { pointer-events: none; }`

const cellInteractionJS = `
    let timer = null, pending = null, active = null;
    function highlight(orig) {
      pending = null; active = orig;
      document.querySelectorAll('.cell').forEach(c => c.classList.toggle('highlight', c.dataset.original === orig));
      const s = document.querySelector('.cell[data-original="' + orig + '"]');
      const label = document.getElementById('hover-text');
      if (label && s) label.textContent = s.dataset.text || 'empty';
    }
    function clearHighlight() {
      clearTimeout(timer); timer = null; pending = null; active = null;
      document.querySelectorAll('.cell').forEach(c => c.classList.remove('highlight'));
      const label = document.getElementById('hover-text');
      if (label) label.textContent = '';
    }
    document.querySelectorAll('.cell').forEach(el => {
      el.addEventListener('mouseenter', () => {
        const orig = el.dataset.original;
        if (orig === pending || orig === active) return;
        clearTimeout(timer);
        pending = orig;
        timer = setTimeout(() => highlight(orig), %d);
      });
      el.addEventListener('mouseleave', e => {
        const next = e.relatedTarget;
        if (next && next.dataset && next.dataset.original === el.dataset.original) return;
        clearHighlight();
      });
    });`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	interactive bool
	delayMS     int
	borders     bool
	sites       bool
}

// WithoutInteraction omits the hover script and styles.
func WithoutInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = false } }

// WithHoverDelay sets the enter delay of the hover script in milliseconds.
func WithHoverDelay(ms int) SVGOption { return func(r *svgRenderer) { r.delayMS = ms } }

// WithBorders draws the zero-offset border ring behind each inset shape.
func WithBorders() SVGOption { return func(r *svgRenderer) { r.borders = true } }

// WithSites marks every rendered site with a dot.
func WithSites() SVGOption { return func(r *svgRenderer) { r.sites = true } }

// RenderSVG renders the diagram as a standalone SVG document.
func RenderSVG(d *mosaic.Diagram, opts ...SVGOption) []byte {
	r := svgRenderer{interactive: true, delayMS: int(mosaic.DefaultHoverDelay.Milliseconds())}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := d.Size.Width, d.Size.Height
	c := d.Viewport().Center()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", cellInteractionCSS)
	}
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", colorBackground)
	fmt.Fprintf(&buf, `  <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n", c.X, c.Y, d.Radius, colorViewport)

	if r.borders {
		for _, cell := range d.Cells {
			fmt.Fprintf(&buf, `  <polygon class="border" points="%s" fill="none" stroke="%s" stroke-width="1"/>`+"\n",
				polyPoints(cell.Border, c), colorBorder)
		}
	}
	for _, cell := range d.Cells {
		renderCell(&buf, cell, c)
	}
	if r.sites {
		for _, cell := range d.Cells {
			p := cell.Site.Add(c)
			fmt.Fprintf(&buf, `  <circle class="site" cx="%.2f" cy="%.2f" r="2" fill="%s"/>`+"\n", p.X, p.Y, colorHighlight)
		}
	}
	if r.interactive {
		fmt.Fprintf(&buf, `  <text id="hover-text" x="%.2f" y="%.2f" text-anchor="middle" fill="%s" font-family="sans-serif" font-size="14"></text>`+"\n",
			c.X, h-12, colorHighlight)
		fmt.Fprintf(&buf, "  <script><![CDATA[%s\n  ]]></script>\n", fmt.Sprintf(cellInteractionJS, r.delayMS))
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderCell(buf *bytes.Buffer, cell *mosaic.Cell, c geom.Point) {
	fill, stroke, width := cellColors(cell)
	class := "cell"
	if cell.Highlighted {
		class += " highlight"
	}
	fmt.Fprintf(buf, `  <polygon id="cell-%d" class="%s" data-rendered="%d" data-original="%d"`,
		cell.Rendered, class, cell.Rendered, cell.Original)
	if s := cell.Shard; s != nil {
		fmt.Fprintf(buf, ` data-shard="%s" data-spark="%s" data-text="%s"`,
			escapeXML(s.ID), escapeXML(s.Spark), escapeXML(s.Text))
	}
	fmt.Fprintf(buf, ` points="%s" fill="%s" stroke="%s" stroke-width="%.1f"/>`+"\n",
		polyPoints(cell.Inset, c), fill, stroke, width)
}

func cellColors(cell *mosaic.Cell) (fill, stroke string, width float64) {
	fill, stroke, width = colorEmpty, colorBorder, 1
	s := cell.Shard
	if s == nil {
		return fill, stroke, width
	}
	fill = TintColor(s.Tint)
	if s.Tarnished {
		fill = colorTarnished
	}
	if s.Glow > 0 {
		stroke, width = colorGlow, 2.5
	}
	return fill, stroke, width
}

func polyPoints(pg geom.Polygon, offset geom.Point) string {
	parts := make([]string, len(pg))
	for i, p := range pg {
		q := p.Add(offset)
		parts[i] = fmt.Sprintf("%.2f,%.2f", q.X, q.Y)
	}
	return strings.Join(parts, " ")
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
