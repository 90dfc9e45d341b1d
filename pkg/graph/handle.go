package graph

import "strings"

// Handle is the presentation name of an attachment point on a node, as the
// renderer uses it. Attribute-level handles look like "orders-amount-source";
// node-level handles use the reserved attribute name "node", as in
// "orders-node-target".
//
// Handle strings are not unique: an attribute called "node", or ids that
// contain dashes, can spell the same handle for different endpoints. Lookups
// therefore go through [Endpoint].
type Handle string

const (
	// ReservedAttribute is the attribute name node-level handles are spelled
	// with. [Build] reports attributes that use it.
	ReservedAttribute = "node"

	sourceSuffix = "-source"
	targetSuffix = "-target"
)

// Endpoint identifies one end of an edge: an attribute of a node, or the node
// itself when Attr is empty.
type Endpoint struct {
	Node string
	Attr string
}

// NodeEndpoint returns the node-level endpoint of node.
func NodeEndpoint(node string) Endpoint { return Endpoint{Node: node} }

// NodeLevel reports whether ep attaches to the node rather than an attribute.
func (ep Endpoint) NodeLevel() bool { return ep.Attr == "" }

// SourceHandle returns the outgoing handle name of ep.
func (ep Endpoint) SourceHandle() Handle { return SourceHandle(ep.Node, ep.Attr) }

// TargetHandle returns the incoming handle name of ep.
func (ep Endpoint) TargetHandle() Handle { return TargetHandle(ep.Node, ep.Attr) }

// CurrentEndpoint returns the endpoint an edge through attr on n is drawn
// at: the attribute while n is expanded, the node itself while it is
// collapsed or when attr is empty.
func CurrentEndpoint(n *Node, attr string) Endpoint {
	if n.Expanded && attr != "" {
		return Endpoint{Node: n.ID, Attr: attr}
	}
	return NodeEndpoint(n.ID)
}

// SourceHandle returns the outgoing handle for attr on node. An empty attr
// yields the node-level handle.
func SourceHandle(node, attr string) Handle {
	if attr == "" {
		attr = ReservedAttribute
	}
	return Handle(node + "-" + attr + sourceSuffix)
}

// TargetHandle returns the incoming handle for attr on node. An empty attr
// yields the node-level handle.
func TargetHandle(node, attr string) Handle {
	if attr == "" {
		attr = ReservedAttribute
	}
	return Handle(node + "-" + attr + targetSuffix)
}

// NodeSourceHandle returns the synthetic node-level outgoing handle.
func NodeSourceHandle(node string) Handle { return SourceHandle(node, "") }

// NodeTargetHandle returns the synthetic node-level incoming handle.
func NodeTargetHandle(node string) Handle { return TargetHandle(node, "") }

// CurrentSourceHandle is the outgoing handle name of [CurrentEndpoint].
func CurrentSourceHandle(n *Node, attr string) Handle { return CurrentEndpoint(n, attr).SourceHandle() }

// CurrentTargetHandle is the incoming handle name of [CurrentEndpoint].
func CurrentTargetHandle(n *Node, attr string) Handle { return CurrentEndpoint(n, attr).TargetHandle() }

// IsSource reports whether h is an outgoing handle.
func (h Handle) IsSource() bool { return strings.HasSuffix(string(h), sourceSuffix) }

// IsTarget reports whether h is an incoming handle.
func (h Handle) IsTarget() bool { return strings.HasSuffix(string(h), targetSuffix) }

func (h Handle) String() string { return string(h) }
