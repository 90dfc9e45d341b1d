// Package engine is the entry point for embedding the lineage engine.
//
// An [Engine] owns one lineage graph. Creating it runs the whole
// preparation pipeline:
//
//  1. build the graph from a raw document, dropping and reporting bad records
//  2. assign curvature to parallel edges
//  3. bring every node to the collapsed state
//  4. compute the hierarchical layout
//
// After that the engine answers the two renderer callbacks,
// [Engine.OnAttributeClick] (trace an attribute's lineage) and
// [Engine.OnNodeToggle] (expand or collapse a node), plus the toolbar
// operations: orientation switch, focus, expand/collapse all, search and
// reset. [Engine.View] returns the render-ready projection after any of
// them.
//
//	e, err := engine.Load(ctx, "lineage.json", engine.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	e.OnNodeToggle(ctx, "orders")
//	e.OnAttributeClick(ctx, "orders", "amount")
//	view := e.View()
//
// Unknown node or attribute ids in callbacks are no-ops, never errors.
// Every build, layout, trace and toggle is reported to the hooks registered
// with the observability package.
package engine
