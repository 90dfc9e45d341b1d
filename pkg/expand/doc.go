// Package expand coordinates the collapsed/expanded state of lineage nodes.
//
// A collapsed node is drawn as a small box; edges attach to its node-level
// handles ("orders-node-source"). An expanded node lists its attributes and
// attribute-level edges attach to the matching rows ("orders-amount-source").
// Changing the state therefore changes the node's size, the handles of its
// edges, and through the size the whole layout.
//
// [Coordinator] performs these changes and then asks a [Relayouter] to lay
// the graph out again, once per operation:
//
//	c := expand.NewCoordinator(g, expand.Options{
//	    Sizer:      layoutOpts,
//	    Relayouter: expand.RelayoutFunc(relayout),
//	})
//	expanded, err := c.Toggle(ctx, "orders")
//	n, err := c.ExpandAll(ctx) // one re-layout for all nodes
package expand
