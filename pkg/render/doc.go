// Package render projects a laid-out lineage graph into a render-ready
// [View] and converts rendered SVG to other formats.
//
// # View
//
// A [View] is a snapshot of the graph after layout, expand/collapse and
// tracing: every node carries its box, its attribute rows and the anchor
// points edges attach to, and every edge carries the resolved start and end
// points of its current handles together with its curvature and trace
// flags. Edges reference their endpoints by id and, inside the view, by
// pointer to the projected nodes, so a renderer never has to look anything
// up in the graph itself.
//
//	v := render.NewView(g, layoutOpts)
//	for _, e := range v.Edges {
//	    drawCurve(e.From, e.To, e.Curvature, e.Highlighted)
//	}
//
// Nodes sharing a Layer tag (bronze, silver, gold, ...) are collected into
// [View.Layers] with their bounding box, for drawing background bands.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert SVG using the external rsvg-convert tool
// (from librsvg). SVG itself is produced by the [nodelink] subpackage.
//
// [nodelink]: github.com/matzehuels/lineage/pkg/render/nodelink
package render
