// Package geom is the geometry kernel behind the mosaic: point rotation,
// rotational duplication, Voronoi tessellation with per-cell polygons,
// boundary tests and inward polygon offsets.
//
// All functions are pure. Inputs are never mutated and every result is a
// freshly allocated slice, so callers may keep references to results across
// renders.
//
// # Coordinates
//
// The package works in whatever planar frame the caller uses; the mosaic
// feeds it pixel coordinates relative to the viewport center. Angles are in
// degrees and positive angles rotate from +X toward +Y.
//
// # Tessellation
//
// [Tessellate] finds Voronoi neighbours with a Delaunay triangulation
// (github.com/fogleman/delaunay) and builds each cell by clipping the bounding
// rectangle with the perpendicular bisector of every neighbour. Degenerate
// inputs that cannot be triangulated, such as collinear sites, fall back to
// clipping against every other site. Fewer than two sites produce no cells.
package geom
