// Package pkg provides the core libraries for Flowtower pipeline layout.
//
// # Overview
//
// Flowtower takes the pipeline tree of a workflow engine (start and end
// events, activities, gateways and the flows between them) and derives
// three views of it: canvas positions, canvas render cells, and a nested
// list tree. The pkg directory is organized into these areas:
//
//  1. [flow] - Payload decoding and the pipeline graph model
//  2. [layout], [cells], [tree] - The three derived views
//  3. [graph] - Serialization types shared by the views
//  4. [pipeline] - Orchestration (parse → layout → cells → tree → render)
//  5. [cache], [config], [observability], [errors] - Infrastructure
//
// # Architecture
//
// The typical data flow through Flowtower:
//
//	Pipeline tree (JSON or YAML)
//	         ↓
//	    [flow] package (decode + graph model)
//	         ↓
//	    [layout] package (positions + ports)
//	         ↓                        ↘
//	    [cells] package (canvas cells)   [tree] package (nested list)
//	         ↓
//	    [render] package (SVG/PNG/PDF/DOT preview)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/flowtower/pkg/cells"
//	    "github.com/matzehuels/flowtower/pkg/flow"
//	    "github.com/matzehuels/flowtower/pkg/layout"
//	    "github.com/matzehuels/flowtower/pkg/tree"
//	)
//
//	g, _ := flow.ReadFile("order.yaml")
//	l := layout.Compute(g)
//	cs, _ := cells.Serialize(l, g, cells.ModeVertical)
//	t := tree.Build(g)
//
// # Main Packages
//
// [flow] - Decodes pipeline trees, including embedded sub-workflows, into a
// graph with adjacency, back-edge and split/join pairing queries.
//
// [layout] - Depth-first placement with branch ordering, converge waiting
// and collision correction. Records the port each flow uses.
//
// [cells] - Converts a layout into canvas cells: nodes, orthogonal edges and,
// in vertical mode, nested lane groups.
//
// [tree] - Builds the nested list view. Every node appears once; condition
// branches that return to an earlier step are marked as loops.
//
// [render] - Pins a layout into Graphviz DOT and renders previews.
//
// [check] - Lints payloads: schema validation, condition expressions and
// structural warnings.
//
// [pipeline] - Runs the stages with caching. Used by both the CLI and the
// HTTP API so they behave the same.
//
// [cache] - File, Redis and MongoDB result caches keyed by payload hash.
//
// # Testing
//
//	go test ./...                 # All tests
//	go test ./pkg/layout/...      # Specific package
//	go test -run Example ./pkg/...
//
// [flow]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/flow
// [layout]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/layout
// [cells]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/cells
// [tree]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/tree
// [graph]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/graph
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/render
// [check]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/check
// [cache]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/errors
package pkg
