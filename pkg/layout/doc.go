// Package layout computes hierarchical (layered) layouts for lineage graphs.
//
// # Overview
//
// Lineage flows from sources to consumers, so the natural drawing is a
// layered one: every node gets a rank, ranks are drawn as columns (LR) or
// rows (TB), and edges point forward from rank to rank. [Compute] produces
// such a layout for any graph, including cyclic ones.
//
// # Pipeline
//
//  1. Back edges. Self-loops and one edge of every cycle are excluded from
//     ranking. Cycles are confined to strongly connected components, which
//     are found with gonum's Tarjan implementation; a DFS inside them that
//     visits roots in insertion order and edges by ascending id marks the
//     edges that close a cycle.
//  2. Ranks. Longest path from the sources over the remaining edges
//     (Kahn's algorithm).
//  3. Ordering. Long edges are split by virtual nodes; barycenter sweeps
//     down then up reorder each rank for at most MaxRounds rounds, keeping
//     the ordering with the fewest crossings (counted with a Fenwick tree).
//  4. Coordinates. Node boxes follow the expanded state: an expanded node is
//     HeaderHeight + RowHeight x attributes + Margin tall, a collapsed node
//     CollapsedHeight. Ranks are spaced by RankSep, nodes by NodeSep, and
//     every rank is centred on the widest.
//
// # Purity
//
// Compute reads the graph and returns a [Result]; [Apply] writes it back.
// A cancelled context or invalid options leave the graph untouched, and a
// layout whose ordering did not settle within MaxRounds is still returned
// with Converged=false.
//
// # Anchors
//
// [AttributeAnchor] and [NodeAnchor] give the exact points where edges
// attach, so attribute-level edges line up with the rows they reference.
package layout
