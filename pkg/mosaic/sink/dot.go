package sink

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/reflections/pkg/geom"
	"github.com/matzehuels/reflections/pkg/mosaic"
)

// ToDOT returns the Delaunay neighbour graph of the diagram's rendered sites
// in Graphviz DOT format. Nodes are pinned at their site positions so the
// graph overlays the mosaic; each is labelled "rendered/original".
// Claimed cells are filled with their shard's tint.
func ToDOT(d *mosaic.Diagram) string {
	sites := make([]geom.Point, len(d.Cells))
	for i, cell := range d.Cells {
		sites[i] = cell.Site
	}

	var buf bytes.Buffer
	buf.WriteString("graph Delaunay {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontname=\"SF Mono, Menlo, monospace\", fontsize=10, width=0.3, fixedsize=true];\n")
	fmt.Fprintf(&buf, "  edge [color=%q];\n\n", colorEmpty)

	for i, cell := range d.Cells {
		fill := "white"
		if cell.Shard != nil {
			fill = TintColor(cell.Shard.Tint)
		}
		// DOT's y axis points up.
		fmt.Fprintf(&buf, "  n%d [label=\"%d/%d\", pos=\"%.2f,%.2f!\", fillcolor=%q];\n",
			i, cell.Rendered, cell.Original, sites[i].X, -sites[i].Y, fill)
	}
	buf.WriteString("\n")
	for _, e := range geom.Edges(sites) {
		fmt.Fprintf(&buf, "  n%d -- n%d;\n", e[0], e[1])
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderDOT renders DOT text to SVG using Graphviz.
func RenderDOT(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
