// Package graph provides the canonical lineage graph and its construction
// from imported node-link data.
//
// # Overview
//
// A lineage graph describes how data attributes are derived from one another.
// Nodes are tables, schemas or entities, each with an ordered list of
// attributes (columns). Edges connect two nodes and may be narrowed to a
// source and a target attribute, in which case they describe column-level
// lineage; otherwise they are node-level.
//
// # Building
//
// [Build] turns a [RawDocument] into a [Graph]. Import is forgiving: records
// with dangling endpoints or duplicate ids are dropped, unknown attribute
// references degrade to node-level endpoints, and every such event is logged
// and returned in a [BuildReport]:
//
//	var doc graph.RawDocument
//	_ = json.Unmarshal(data, &doc)
//	g, report := graph.Build(doc, graph.BuildOptions{Logger: logger})
//	if report.Dropped() > 0 {
//	    // inspect report.Issues
//	}
//
// Edge endpoints may be bare ids or {"id": ...} objects. Fields the engine
// does not interpret ride along in an opaque [Payload].
//
// # Canonical and Derived State
//
// Imported fields never change after Build. Derived fields are owned by the
// packages that compute them:
//
//   - InDegree/OutDegree and Curvature: this package
//   - Rank, Position, Size, BackEdge: pkg/layout
//   - Expanded and edge handles: pkg/expand
//   - Dimmed, Highlighted, Animated, HighlightedAttrs: pkg/trace
//
// Topology is fixed: a fresh load builds a new graph.
//
// # Handles
//
// Edges attach to nodes through [Handle] values:
//
//	orders-amount-source   attribute-level, outgoing
//	revenue-total-target   attribute-level, incoming
//	orders-node-source     node-level, outgoing
//
// An edge is drawn from attribute handles only while the node on that side is
// expanded; collapsed nodes expose their node-level handles.
//
// Handle names are for the renderer. They are not unique ("a" with attribute
// "b-c" and "a-b" with attribute "c" both spell a-b-c-source), so the
// package identifies endpoints by [Endpoint] values instead.
//
// # Curvature
//
// [AssignCurvature] spreads edges that share an unordered node pair so they
// stay distinguishable: three parallel edges with spread 0.5 get -0.5, 0 and
// 0.5. Self-loops get 1, 1.2, 1.4, ... and never draw straight.
//
// # Index
//
// [Index] answers "which edges leave or enter this node or endpoint" in O(1).
// It is a snapshot tied to [Graph.Revision]; rebuild it after handles change.
package graph
