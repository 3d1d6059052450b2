// Package pkg provides the core libraries for spacecol, a space-colonization
// growth engine.
//
// # Overview
//
// spacecol grows branching structures (trees, roots, corals, leaf veins) by
// letting a cloud of attractor points pull a forest of nodes towards them.
// Each tick every live attractor votes for its nearest node, voted nodes sprout
// one step towards the mean of their attractors, and attractors that are
// reached or have stalled for too long are removed. The run ends when the
// field is consumed or the node cap is hit.
//
// The pkg directory is organized into four areas:
//
//  1. Domain: [tree], [field], [mesh], [colonize]
//  2. Output: [render], [render/nodelink], [graph]
//  3. Infrastructure: [cache], [archive], [observability], [errors]
//  4. Orchestration: [pipeline], used by the CLI and the HTTP server
//
// # Architecture
//
// The typical data flow through spacecol:
//
//	Attractor source (radial rings, image mask, OBJ mesh, ellipse)
//	         ↓
//	    [field] package (generate attractors and root seeds)
//	         ↓
//	    [colonize] package (association → growth → pruning, per tick)
//	         ↓
//	    [tree] package (append-only node forest)
//	         ↓
//	    [render] / [graph] packages
//	         ↓
//	    SVG/PNG/OBJ/JSON/DOT output
//
// # Quick Start
//
// Grow a tree inside an ellipse and render it to SVG:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/spacecol/pkg/colonize"
//	    "github.com/matzehuels/spacecol/pkg/field"
//	    "github.com/matzehuels/spacecol/pkg/render"
//	)
//
//	// 1. Build the attractor field
//	gen := field.NewEllipse(field.EllipseConfig{Width: 800, Height: 1000, Count: 1000})
//
//	// 2. Grow
//	cfg := colonize.DefaultConfig()
//	cfg.MaxNodes = 5000
//	sim, _ := colonize.New(cfg, gen, colonize.WithSeed(42))
//	res, _ := sim.Run(context.Background())
//
//	// 3. Render
//	svg := render.RenderSVG(res.Edges, render.Options{Width: 800, Height: 1000})
//
// # Main Packages
//
// ## Domain
//
// [tree] - Append-only forest of nodes with parent links. Node ids are dense
// and every parent precedes its children.
//
// [field] - Attractor generators. Radial rings expand while the tree grows;
// mask, volume and ellipse fields are generated once.
//
// [mesh] - Wavefront OBJ loading and voxelisation for the volume field.
//
// [colonize] - The growth loop, nearest-node indexes (brute force and k-d
// tree), pruning, and the event stream used for progress reporting.
//
// ## Output
//
// [render] - SVG, PNG and OBJ encoders plus a PNG frame writer for growth
// animations.
//
// [render/nodelink] - Graphviz DOT and SVG diagrams of the tree topology.
//
// [graph] - JSON serialization of finished trees.
//
// ## Infrastructure
//
// [cache] - Tree and artifact cache with null, file and Redis backends.
//
// [archive] - Run history in SQLite (CLI) or MongoDB (server).
//
// [observability] - Hook interfaces for runs, caches and HTTP requests, with a
// Prometheus implementation.
//
// [errors] - Coded errors shared by the library, the CLI and the API.
//
// [pipeline] - Complete field → grow → render pipeline with caching and
// archiving. Ensures consistent behavior across all entry points.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/colonize/...   # Specific package
//	go test -run Example ./...   # Examples only
//
// [tree]: https://pkg.go.dev/github.com/matzehuels/spacecol/pkg/tree
// [field]: https://pkg.go.dev/github.com/matzehuels/spacecol/pkg/field
// [mesh]: https://pkg.go.dev/github.com/matzehuels/spacecol/pkg/mesh
// [colonize]: https://pkg.go.dev/github.com/matzehuels/spacecol/pkg/colonize
// [render]: https://pkg.go.dev/github.com/matzehuels/spacecol/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/spacecol/pkg/render/nodelink
// [graph]: https://pkg.go.dev/github.com/matzehuels/spacecol/pkg/graph
// [cache]: https://pkg.go.dev/github.com/matzehuels/spacecol/pkg/cache
// [archive]: https://pkg.go.dev/github.com/matzehuels/spacecol/pkg/archive
// [observability]: https://pkg.go.dev/github.com/matzehuels/spacecol/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/spacecol/pkg/errors
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/spacecol/pkg/pipeline
package pkg
