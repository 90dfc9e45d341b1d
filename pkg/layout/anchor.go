package layout

import "github.com/matzehuels/lineage/pkg/graph"

// AttributeAnchor returns the point where attr's row on n attaches edges.
// Rows sit below the header, one RowHeight each, and handles are on the
// right side for sources and the left side for targets in both orientations:
//
//	y = top + HeaderHeight + RowHeight*i + RowHeight/2
//
// It reports false when n is collapsed or has no such attribute. Position
// and Size must have been applied.
func AttributeAnchor(n *graph.Node, attr string, source bool, opts Options) (graph.Point, bool) {
	if !n.Expanded {
		return graph.Point{}, false
	}
	_, i, ok := n.Attribute(attr)
	if !ok {
		return graph.Point{}, false
	}
	opts = opts.WithDefaults()
	x := n.Position.X
	if source {
		x += n.Size.Width
	}
	y := n.Position.Y + opts.HeaderHeight + opts.RowHeight*float64(i) + opts.RowHeight/2
	return graph.Point{X: x, Y: y}, true
}

// NodeAnchor returns the node-level attachment point of n: the middle of the
// trailing side for sources and of the leading side for targets, relative to
// the rank axis.
func NodeAnchor(n *graph.Node, source bool, orientation Orientation) graph.Point {
	c := n.Center()
	if orientation == TopToBottom {
		if source {
			return graph.Point{X: c.X, Y: n.Position.Y + n.Size.Height}
		}
		return graph.Point{X: c.X, Y: n.Position.Y}
	}
	if source {
		return graph.Point{X: n.Position.X + n.Size.Width, Y: c.Y}
	}
	return graph.Point{X: n.Position.X, Y: c.Y}
}

// Anchor resolves a handle endpoint: the attribute row when attr is set and
// visible, the node-level point otherwise.
func Anchor(n *graph.Node, attr string, source bool, opts Options) graph.Point {
	if attr != "" {
		if p, ok := AttributeAnchor(n, attr, source, opts); ok {
			return p
		}
	}
	return NodeAnchor(n, source, opts.WithDefaults().Orientation)
}
