// Package pkg provides the libraries behind the Reflections mosaic engine.
//
// # Overview
//
// Reflections turns a small set of user-placed points into a Voronoi mosaic.
// The points live in a normalized disc, are mirrored around its center by a
// rotation count, and are tessellated; each resulting cell can hold a shard,
// a short written answer to a prompt (the spark). The pkg directory is
// organized into four areas:
//
//  1. Geometry and rendering: [geom], [viewport], [mosaic], [mosaic/sink]
//  2. Domain data: [shard], [store], [session], [cache]
//  3. Interaction: [interact], [clock]
//  4. Transport: [server], [api], [httputil], [observability]
//
// # Architecture
//
// The data flow for one render:
//
//	WorkingSet (points + rotation count)
//	         ↓
//	    [mosaic.Renderer] (expand rotations, tessellate, clip to the disc)
//	         ↓
//	    [mosaic.Bind] (attach shards to cells by original point)
//	         ↓
//	    [mosaic/sink] (SVG, PNG, JSON or DOT)
//
// # Quick Start
//
//	ws := mosaic.WorkingSet{
//	    Points:   []geom.Point{geom.Pt(0.5, 0.1), geom.Pt(-0.3, 0.4)},
//	    Rotation: 3,
//	}
//	d, _ := mosaic.NewRenderer().Render(ws, viewport.Size{Width: 800, Height: 800})
//	mosaic.Bind(d, shards)
//	svg := sink.RenderSVG(d)
//
// # Main Packages
//
// [mosaic] - Working sets, the renderer and the diagram model. Cells carry
// their rendered and original indices so a shard bound to one point shows up
// in every rotated copy.
//
// [interact] - The interaction state machine shared by the terminal editor and
// tests. It owns the viewing, point editing and shard form modes and talks to
// a [interact.Backend] and a [interact.Host].
//
// [store] - Persistence of patterns and shards with memory, Redis and MongoDB
// implementations. [store.Local] binds a store to one user so it can back the
// interaction machine directly.
//
// [server] - The REST API (chi router) with session cookies, CORS, caching of
// rendered mosaics and Prometheus metrics.
//
// [api] - The HTTP client for the REST API. It implements [interact.Backend]
// so the editor can run against a remote server.
//
// # Testing
//
//	go test ./pkg/...                                    # All tests
//	REFLECTIONS_TEST_REDIS_URL=redis://localhost:6379/0 go test ./pkg/store/redis
//	REFLECTIONS_TEST_MONGO_URI=mongodb://localhost go test ./pkg/store/mongo
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/reflections/pkg/geom
// [viewport]: https://pkg.go.dev/github.com/matzehuels/reflections/pkg/viewport
// [mosaic]: https://pkg.go.dev/github.com/matzehuels/reflections/pkg/mosaic
// [mosaic/sink]: https://pkg.go.dev/github.com/matzehuels/reflections/pkg/mosaic/sink
// [shard]: https://pkg.go.dev/github.com/matzehuels/reflections/pkg/shard
// [store]: https://pkg.go.dev/github.com/matzehuels/reflections/pkg/store
// [store.Local]: https://pkg.go.dev/github.com/matzehuels/reflections/pkg/store#Local
// [session]: https://pkg.go.dev/github.com/matzehuels/reflections/pkg/session
// [cache]: https://pkg.go.dev/github.com/matzehuels/reflections/pkg/cache
// [interact]: https://pkg.go.dev/github.com/matzehuels/reflections/pkg/interact
// [interact.Backend]: https://pkg.go.dev/github.com/matzehuels/reflections/pkg/interact#Backend
// [interact.Host]: https://pkg.go.dev/github.com/matzehuels/reflections/pkg/interact#Host
// [clock]: https://pkg.go.dev/github.com/matzehuels/reflections/pkg/clock
// [server]: https://pkg.go.dev/github.com/matzehuels/reflections/pkg/server
// [api]: https://pkg.go.dev/github.com/matzehuels/reflections/pkg/api
// [httputil]: https://pkg.go.dev/github.com/matzehuels/reflections/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/reflections/pkg/observability
//
// [mosaic.Renderer]: https://pkg.go.dev/github.com/matzehuels/reflections/pkg/mosaic#Renderer
// [mosaic.Bind]: https://pkg.go.dev/github.com/matzehuels/reflections/pkg/mosaic#Bind
package pkg
