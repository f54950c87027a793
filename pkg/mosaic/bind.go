package mosaic

import "github.com/matzehuels/reflections/pkg/shard"

// Bind clears every cell's shard and then attaches each shard to all cells
// whose original index equals the shard's point. Shards whose point has no
// visible cell are skipped. It returns the number of cells claimed.
func Bind(d *Diagram, shards []shard.Shard) int {
	if d == nil {
		return 0
	}
	for _, c := range d.Cells {
		c.Shard = nil
	}
	claimed := 0
	for i := range shards {
		s := &shards[i]
		for _, c := range d.CellsFor(s.Point) {
			if c.Shard == nil {
				claimed++
			}
			c.Shard = s
		}
	}
	return claimed
}
