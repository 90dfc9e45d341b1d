// Package nodelink renders a lineage view as a node-link diagram.
//
// # Overview
//
// [ToDOT] turns a [render.View] into Graphviz DOT. Every node is pinned at
// the position computed by the hierarchical layout engine, so Graphviz only
// routes edges and draws shapes; it never re-lays the graph out. Expanded
// nodes are drawn as records with one field per attribute and
// attribute-level edges attach to those fields. Trace highlighting and
// dimming, back edges (dashed) and edge labels carry over.
//
// # Usage
//
//	dot := nodelink.ToDOT(view, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0) // 2x scale
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering with the neato engine. PDF and PNG conversion requires librsvg
// (rsvg-convert).
//
// [render.View]: github.com/matzehuels/lineage/pkg/render.View
package nodelink
