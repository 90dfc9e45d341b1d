// Package pkg provides the core libraries of the lineage engine.
//
// # Overview
//
// lineage prepares data-lineage graphs for interactive rendering. It takes a
// document of entities (tables, views, files) and the links between their
// attributes, and produces a laid-out, render-ready graph that a front end
// can draw and interact with: tracing an attribute through the pipeline,
// expanding and collapsing entities, switching orientation.
//
// # Architecture
//
// The data flow through lineage:
//
//	JSON / YAML document
//	         ↓
//	    [io] package (decode into a raw document)
//	         ↓
//	    [graph] package (validated model, curvature, adjacency index)
//	         ↓
//	    [layout] package (hierarchical layout, LR or TB)
//	         ↓
//	    [render] package (render-ready view) → [render/nodelink] (DOT, SVG, PDF, PNG)
//
// [engine] ties these together around one graph and answers the renderer's
// callbacks with the help of [trace] and [expand]. [force] derives the
// parameters for the alternative force-directed view and drives its tick
// loop.
//
// # Quick Start
//
//	e, err := engine.Load(ctx, "lineage.json", engine.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	e.OnNodeToggle(ctx, "orders")
//	res := e.OnAttributeClick(ctx, "orders", "amount")
//	fmt.Println(res.NodeIDs(e.Graph()))
//
//	svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(e.View(), nodelink.Options{}))
//
// # Main Packages
//
// ## Domain
//
// [graph] - Nodes, attributes and edges keyed by canonical ids, the build
// step that drops and reports bad records, multi-edge curvature and the
// adjacency index used by traces.
//
// [layout] - Layered layout: back-edge removal, longest-path ranking,
// crossing reduction and coordinate assignment.
//
// [trace] - Attribute-level lineage walk and highlight/dim application.
//
// [expand] - Expand/collapse state, handle remapping and the re-layouts
// they trigger.
//
// [force] - Force simulation parameters and a cancelable tick loop.
//
// ## Surfaces
//
// [server] - HTTP API over one engine, with optional reload on file change.
//
// [render] - View projection, plus SVG to PDF/PNG conversion.
//
// ## Infrastructure
//
// [config] - TOML configuration with validated defaults.
//
// [cache] - Render cache backends: file, Redis, MongoDB.
//
// [errors] - Coded errors shared by every package.
//
// [observability] - Hooks for build, layout, trace and toggle events.
//
// [engine]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/engine
// [io]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/io
// [graph]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/graph
// [layout]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/layout
// [trace]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/trace
// [expand]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/expand
// [force]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/force
// [server]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/server
// [render]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/render/nodelink
// [config]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/config
// [cache]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/observability
package pkg
