package sink

import (
	"encoding/json"

	"github.com/matzehuels/reflections/pkg/geom"
	"github.com/matzehuels/reflections/pkg/mosaic"
)

type jsonOutput struct {
	Width         float64    `json:"width"`
	Height        float64    `json:"height"`
	Radius        float64    `json:"radius"`
	Margin        float64    `json:"margin"`
	OriginalCount int        `json:"original_count"`
	Rotation      int        `json:"rotation"`
	Cells         []jsonCell `json:"cells"`
}

type jsonCell struct {
	Rendered    int          `json:"rendered"`
	Original    int          `json:"original"`
	Site        geom.Point   `json:"site"`
	Border      geom.Polygon `json:"border"`
	Inset       geom.Polygon `json:"inset"`
	ShardID     string       `json:"shard_id,omitempty"`
	Tint        *int         `json:"tint,omitempty"`
	Glow        int          `json:"glow,omitempty"`
	Tarnished   bool         `json:"tarnished,omitempty"`
	Highlighted bool         `json:"highlighted,omitempty"`
}

// RenderJSON exports the diagram's cells in absolute container pixels.
func RenderJSON(d *mosaic.Diagram) ([]byte, error) {
	c := d.Viewport().Center()
	out := jsonOutput{
		Width:         d.Size.Width,
		Height:        d.Size.Height,
		Radius:        d.Radius,
		Margin:        d.Margin,
		OriginalCount: d.OriginalCount,
		Rotation:      d.Rotation,
		Cells:         make([]jsonCell, 0, len(d.Cells)),
	}
	for _, cell := range d.Cells {
		jc := jsonCell{
			Rendered:    cell.Rendered,
			Original:    cell.Original,
			Site:        cell.Site.Add(c),
			Border:      translate(cell.Border, c),
			Inset:       translate(cell.Inset, c),
			Highlighted: cell.Highlighted,
		}
		if s := cell.Shard; s != nil {
			tint := s.Tint
			jc.ShardID, jc.Tint, jc.Glow, jc.Tarnished = s.ID, &tint, s.Glow, s.Tarnished
		}
		out.Cells = append(out.Cells, jc)
	}
	return json.MarshalIndent(out, "", "  ")
}

func translate(pg geom.Polygon, by geom.Point) geom.Polygon {
	out := make(geom.Polygon, len(pg))
	for i, p := range pg {
		out[i] = p.Add(by)
	}
	return out
}
