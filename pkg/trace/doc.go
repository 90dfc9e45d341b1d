// Package trace computes attribute-level lineage and annotates the graph
// with it.
//
// Clicking an attribute asks two questions: which attributes feed it
// (upstream) and which attributes does it feed (downstream). [Run] answers
// both by walking edges between attribute handles; [Apply] dims everything
// outside the answer and highlights the rest; [Clear] resets the view.
//
//	res := trace.Run(g, idx, "orders", "amount")
//	trace.Apply(g, res)
//	...
//	trace.Clear(g)
//
// Traversal is iterative and keeps visited sets, so cyclic lineage (including
// a node mapping its own columns into each other) always terminates.
//
// [Neighborhood] is the node-level counterpart used while hovering: the node,
// its direct neighbours and the edges between them.
package trace
