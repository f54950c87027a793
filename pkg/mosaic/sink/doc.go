// Package sink provides output format renderers for rendered mosaics.
//
// # Overview
//
// A "sink" transforms a [mosaic.Diagram] into a final output format:
//
//   - SVG: vector output with hover highlighting of every copy of a point
//   - PNG: raster output drawn with github.com/gogpu/gg
//   - JSON: cell geometry and bindings for external tools
//
// All sinks draw in absolute container pixels; the diagram's center
// relative coordinates are translated by half the container size.
//
// # Colors
//
// Claimed cells are filled with the shard's tint from [Tints]. Glowing
// shards get a brighter stroke, tarnished shards are drawn in grey, and
// unclaimed cells use a neutral fill.
package sink
