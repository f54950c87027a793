// Package mosaic turns a points working set into the rendered Voronoi mosaic
// and binds shards to its cells.
//
// # Pipeline
//
// A [Renderer] takes a [WorkingSet] (normalized points plus a rotation count)
// and a container size and produces a [Diagram]:
//
//  1. The viewport radius is min(width, height)/2.
//  2. Points are scaled to pixels relative to the viewport center.
//  3. The points are duplicated rotation+1 times around the center.
//  4. The rendered sites are tessellated inside the square circumscribing the
//     viewport circle.
//  5. Cells reaching the circle are dropped (or clipped, see [EdgeClip]).
//  6. Each surviving cell gets a border ring and an inset ring, tagged with
//     its rendered index and its original index.
//
// Rendered site i always derives from original point i mod n, which is what
// lets a shard pinned to point k light up every rotated copy of k.
//
// # Ownership
//
// Diagrams are rebuilt from scratch on every render and never mutated by the
// renderer afterwards. [Bind] and [Hover] write shard and highlight state into
// the cells of the diagram they are given; callers swap the whole diagram
// when they re-render.
package mosaic
