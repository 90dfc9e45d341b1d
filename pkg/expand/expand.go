package expand

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/graph"
)

// Sizer computes the box of a node for its current expanded state.
// layout.Options implements it.
type Sizer interface {
	NodeSize(n *graph.Node) graph.Size
}

// Relayouter recomputes the layout of the whole graph.
type Relayouter interface {
	Relayout(ctx context.Context) error
}

// RelayoutFunc adapts a function to [Relayouter].
type RelayoutFunc func(ctx context.Context) error

// Relayout calls f(ctx).
func (f RelayoutFunc) Relayout(ctx context.Context) error { return f(ctx) }

// Options configures a [Coordinator].
type Options struct {
	Sizer      Sizer
	Relayouter Relayouter // nil skips re-layout
	Logger     *log.Logger
}

// Coordinator owns the collapsed/expanded state of every node.
//
// Each node starts in whatever state the graph holds (collapsed after a
// fresh build). A transition resizes the node, points its incident edges at
// the matching handles and bumps the graph revision. Every public operation
// that changes at least one node then triggers exactly one re-layout, so
// bulk operations cost one layout pass, not one per node. Operations that
// change nothing do not re-layout. When the re-layout fails, every node the
// operation changed is put back into its previous state, so the graph keeps
// matching the last successful layout.
//
// Coordinator is not safe for concurrent use.
type Coordinator struct {
	g      *graph.Graph
	idx    *graph.Index
	sizer  Sizer
	relay  Relayouter
	logger *log.Logger
}

// NewCoordinator creates a coordinator for g and brings every node's size
// and edge handles in line with its current expanded state.
func NewCoordinator(g *graph.Graph, opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	c := &Coordinator{
		g:      g,
		idx:    graph.NewIndex(g),
		sizer:  opts.Sizer,
		relay:  opts.Relayouter,
		logger: logger,
	}
	for _, n := range g.Nodes() {
		c.sync(n)
	}
	g.Touch()
	return c
}

// Expanded reports whether node id is expanded.
func (c *Coordinator) Expanded(id string) bool {
	n, ok := c.g.Node(id)
	return ok && n.Expanded
}

// ExpandedIDs returns the expanded nodes in insertion order.
func (c *Coordinator) ExpandedIDs() []string {
	var ids []string
	for _, n := range c.g.Nodes() {
		if n.Expanded {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// Toggle flips node id and returns its new state.
func (c *Coordinator) Toggle(ctx context.Context, id string) (bool, error) {
	n, ok := c.g.Node(id)
	if !ok {
		return false, errors.New(errors.ErrCodeUnknownNode, "node %q not found", id)
	}
	want := !n.Expanded
	c.set(n, want)
	if err := c.finish(ctx, "toggle", n); err != nil {
		return !want, err
	}
	return want, nil
}

// SetExpanded puts node id into the requested state. It reports whether the
// state changed.
func (c *Coordinator) SetExpanded(ctx context.Context, id string, expanded bool) (bool, error) {
	n, ok := c.g.Node(id)
	if !ok {
		return false, errors.New(errors.ErrCodeUnknownNode, "node %q not found", id)
	}
	if n.Expanded == expanded {
		return false, nil
	}
	c.set(n, expanded)
	if err := c.finish(ctx, "set", n); err != nil {
		return false, err
	}
	return true, nil
}

// Focus expands node id if needed and returns the centre of its box after
// layout, for the renderer to pan to.
func (c *Coordinator) Focus(ctx context.Context, id string) (graph.Point, error) {
	n, ok := c.g.Node(id)
	if !ok {
		return graph.Point{}, errors.New(errors.ErrCodeUnknownNode, "node %q not found", id)
	}
	if !n.Expanded {
		c.set(n, true)
		if err := c.finish(ctx, "focus", n); err != nil {
			return graph.Point{}, err
		}
	}
	return n.Center(), nil
}

// ExpandAll expands every node and returns how many changed.
func (c *Coordinator) ExpandAll(ctx context.Context) (int, error) {
	return c.setAll(ctx, true)
}

// CollapseAll collapses every node and returns how many changed.
func (c *Coordinator) CollapseAll(ctx context.Context) (int, error) {
	return c.setAll(ctx, false)
}

func (c *Coordinator) setAll(ctx context.Context, expanded bool) (int, error) {
	var changed []*graph.Node
	for _, n := range c.g.Nodes() {
		if n.Expanded != expanded {
			c.set(n, expanded)
			changed = append(changed, n)
		}
	}
	if len(changed) == 0 {
		return 0, nil
	}
	op := "collapse all"
	if expanded {
		op = "expand all"
	}
	if err := c.finish(ctx, op, changed...); err != nil {
		return 0, err
	}
	return len(changed), nil
}

func (c *Coordinator) set(n *graph.Node, expanded bool) {
	n.Expanded = expanded
	c.sync(n)
}

// sync resizes n and remaps the handles of its incident edges: node-level
// while collapsed, the edge's own attribute handle while expanded.
func (c *Coordinator) sync(n *graph.Node) {
	if c.sizer != nil {
		n.Size = c.sizer.NodeSize(n)
	}
	for _, e := range c.idx.EdgesFrom(n.ID) {
		e.SourceHandle = graph.CurrentSourceHandle(n, e.SourceAttr)
	}
	for _, e := range c.idx.EdgesTo(n.ID) {
		e.TargetHandle = graph.CurrentTargetHandle(n, e.TargetAttr)
	}
}

// finish bumps the revision and re-lays the graph out. If that fails, the
// changed nodes are flipped back and the revision bumped again.
func (c *Coordinator) finish(ctx context.Context, op string, changed ...*graph.Node) error {
	c.g.Touch()
	c.logger.Debug("expand: "+op, "nodes", len(changed), "revision", c.g.Revision())
	if c.relay == nil {
		return nil
	}
	err := c.relay.Relayout(ctx)
	if err == nil {
		return nil
	}
	for _, n := range changed {
		c.set(n, !n.Expanded)
	}
	c.g.Touch()
	c.logger.Debug("expand: "+op+" rolled back", "nodes", len(changed), "err", err)
	return err
}
