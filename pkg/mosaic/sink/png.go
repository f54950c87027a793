package sink

import (
	"bytes"
	"math"

	"github.com/gogpu/gg"

	"github.com/matzehuels/reflections/pkg/geom"
	"github.com/matzehuels/reflections/pkg/mosaic"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale   float64
	borders bool
}

// WithScale sets the PNG scale factor (default 1).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithPNGBorders strokes the border ring of each cell.
func WithPNGBorders() PNGOption {
	return func(r *pngRenderer) { r.borders = true }
}

// RenderPNG rasterizes the diagram.
func RenderPNG(d *mosaic.Diagram, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 1}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		r.scale = 1
	}

	w := int(math.Ceil(d.Size.Width * r.scale))
	h := int(math.Ceil(d.Size.Height * r.scale))
	dc := gg.NewContext(max(w, 1), max(h, 1))
	defer dc.Close()

	dc.ClearWithColor(gg.Hex(colorBackground))

	c := d.Viewport().Center()
	dc.SetHexColor(colorViewport)
	dc.DrawCircle(c.X*r.scale, c.Y*r.scale, d.Radius*r.scale)
	if err := dc.Fill(); err != nil {
		return nil, err
	}

	for _, cell := range d.Cells {
		if r.borders {
			tracePolygon(dc, cell.Border, c, r.scale)
			dc.SetHexColor(colorBorder)
			dc.SetLineWidth(r.scale)
			if err := dc.Stroke(); err != nil {
				return nil, err
			}
		}
		fill, stroke, width := cellColors(cell)
		tracePolygon(dc, cell.Inset, c, r.scale)
		dc.SetHexColor(fill)
		if err := dc.FillPreserve(); err != nil {
			return nil, err
		}
		if cell.Highlighted {
			stroke, width = colorHighlight, 3
		}
		dc.SetHexColor(stroke)
		dc.SetLineWidth(width * r.scale)
		if err := dc.Stroke(); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func tracePolygon(dc *gg.Context, pg geom.Polygon, offset geom.Point, scale float64) {
	for i, p := range pg {
		q := p.Add(offset).Scale(scale)
		if i == 0 {
			dc.MoveTo(q.X, q.Y)
			continue
		}
		dc.LineTo(q.X, q.Y)
	}
	dc.ClosePath()
}
