package graph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrInvalidEdgeID is returned by [Graph.AddEdge] when the edge ID is empty.
	ErrInvalidEdgeID = errors.New("edge ID must not be empty")

	// ErrDuplicateEdgeID is returned by [Graph.AddEdge] when an edge with the
	// same ID already exists in the graph.
	ErrDuplicateEdgeID = errors.New("duplicate edge ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the Source node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the Target node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Attribute is a single column or field of a node, rendered as one row when
// the node is expanded.
type Attribute struct {
	Name         string
	DataType     string
	IsPrimaryKey bool
}

// Point is a 2D coordinate in layout space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is the bounding box of a node.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Node is a table, schema or entity in the lineage graph.
//
// ID, DisplayName, Category, Layer, Schema, Attributes and Payload come from
// imported data and never change after [Build]. Everything else is derived:
// degrees by the builder, Rank/Position/Size by the layout engine, Expanded by
// the expand/collapse coordinator, and Dimmed/HighlightedAttrs by the trace
// engine.
type Node struct {
	ID          string
	DisplayName string
	Category    string // table, schema, entity, ... (color/icon tag)
	Layer       string // bronze, silver, gold, ... (banding tag)
	Schema      string
	Attributes  []Attribute
	Payload     Payload

	Expanded  bool
	InDegree  int
	OutDegree int

	Rank     int
	Position Point // top-left corner
	Size     Size

	Dimmed           bool
	HighlightedAttrs []string

	attrIndex map[string]int
}

// Label returns DisplayName if set, otherwise the ID.
func (n *Node) Label() string {
	if n.DisplayName != "" {
		return n.DisplayName
	}
	return n.ID
}

// Attribute returns the attribute with the given name and its row index.
func (n *Node) Attribute(name string) (Attribute, int, bool) {
	i, ok := n.attrIndex[name]
	if !ok {
		return Attribute{}, -1, false
	}
	return n.Attributes[i], i, true
}

// HasAttribute reports whether the node declares an attribute called name.
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.attrIndex[name]
	return ok
}

// Center returns the centre of the node's bounding box.
func (n *Node) Center() Point {
	return Point{X: n.Position.X + n.Size.Width/2, Y: n.Position.Y + n.Size.Height/2}
}

// Edge is a directed lineage relation between two nodes, optionally narrowed
// to a source and a target attribute.
type Edge struct {
	ID         string
	Source     string
	Target     string
	SourceAttr string // empty for a node-level endpoint
	TargetAttr string // empty for a node-level endpoint
	Label      string // transformation or relationship type

	UpdatedAt  string // ISO-8601, passed through unaltered
	Logic      string
	ScriptName string
	Payload    Payload

	Curvature float64

	// SourceHandle and TargetHandle are the handles the edge is currently
	// drawn between. They follow the expanded state of the endpoint nodes.
	SourceHandle Handle
	TargetHandle Handle

	// BackEdge marks an edge excluded from ranking because it closes a cycle.
	BackEdge bool

	Highlighted bool
	Dimmed      bool
	Animated    bool
}

// IsSelfLoop reports whether the edge starts and ends at the same node.
func (e *Edge) IsSelfLoop() bool { return e.Source == e.Target }

// GroupKey returns the unordered node pair the edge belongs to.
func (e *Edge) GroupKey() GroupKey { return NewGroupKey(e.Source, e.Target) }

// SourceEndpoint returns the canonical source endpoint of the edge:
// attribute-level when SourceAttr is set, node-level otherwise.
func (e *Edge) SourceEndpoint() Endpoint { return Endpoint{Node: e.Source, Attr: e.SourceAttr} }

// TargetEndpoint returns the canonical target endpoint of the edge.
func (e *Edge) TargetEndpoint() Endpoint { return Endpoint{Node: e.Target, Attr: e.TargetAttr} }

// AttributeSourceHandle returns the handle name of [Edge.SourceEndpoint].
func (e *Edge) AttributeSourceHandle() Handle { return e.SourceEndpoint().SourceHandle() }

// AttributeTargetHandle returns the handle name of [Edge.TargetEndpoint].
func (e *Edge) AttributeTargetHandle() Handle { return e.TargetEndpoint().TargetHandle() }

// GroupKey identifies the unordered pair of nodes an edge connects. For a
// self-loop both members are the same node.
type GroupKey struct {
	A string
	B string
}

// NewGroupKey returns the key for the unordered pair {u, v}.
func NewGroupKey(u, v string) GroupKey {
	if v < u {
		u, v = v, u
	}
	return GroupKey{A: u, B: v}
}

// IsLoop reports whether the key describes a self-loop group.
func (k GroupKey) IsLoop() bool { return k.A == k.B }

// String renders the key as "a|b", or "a" for loops.
func (k GroupKey) String() string {
	if k.IsLoop() {
		return k.A
	}
	return k.A + "|" + k.B
}

// Graph owns the nodes and edges of one data load.
//
// Nodes are kept in insertion order and indexed by ID; edges are kept in
// insertion order, which curvature assignment and layout rely on for stable
// output. Topology never changes after construction: the only mutations are
// the derived fields on [Node] and [Edge]. Every change to edge handles bumps
// [Graph.Revision] so that an [Index] built earlier can detect it is stale.
//
// The zero value is not usable - use New to create a valid Graph instance.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes    map[string]*Node
	order    []*Node
	edges    []*Edge
	edgeByID map[string]*Edge
	revision uint64
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		edgeByID: make(map[string]*Edge),
	}
}

// AddNode adds a node. Returns ErrInvalidNodeID for an empty ID and
// ErrDuplicateNodeID if the ID is already taken. Derived fields are reset;
// the attribute slice is copied so the caller's slice is never aliased.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	node := &n
	node.Attributes = slices.Clone(n.Attributes)
	node.InDegree, node.OutDegree = 0, 0
	node.attrIndex = make(map[string]int, len(node.Attributes))
	for i, a := range node.Attributes {
		if _, dup := node.attrIndex[a.Name]; !dup {
			node.attrIndex[a.Name] = i
		}
	}
	g.nodes[node.ID] = node
	g.order = append(g.order, node)
	return nil
}

// AddEdge appends an edge between two existing nodes and updates their
// degrees. Returns ErrInvalidEdgeID, ErrDuplicateEdgeID, ErrUnknownSourceNode
// or ErrUnknownTargetNode. Parallel edges and self-loops are allowed.
//
// The edge's handles are initialised to the node-level or attribute-level
// handle matching the current expanded state of its endpoints.
func (g *Graph) AddEdge(e Edge) error {
	if e.ID == "" {
		return ErrInvalidEdgeID
	}
	if _, exists := g.edgeByID[e.ID]; exists {
		return ErrDuplicateEdgeID
	}
	src, ok := g.nodes[e.Source]
	if !ok {
		return ErrUnknownSourceNode
	}
	dst, ok := g.nodes[e.Target]
	if !ok {
		return ErrUnknownTargetNode
	}
	edge := &e
	edge.SourceHandle = CurrentSourceHandle(src, edge.SourceAttr)
	edge.TargetHandle = CurrentTargetHandle(dst, edge.TargetAttr)
	g.edges = append(g.edges, edge)
	g.edgeByID[edge.ID] = edge
	src.OutDegree++
	dst.InDegree++
	return nil
}

// Node returns the node with the given ID and true, or nil and false if not found.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edge returns the edge with the given ID and true, or nil and false if not found.
func (g *Graph) Edge(id string) (*Edge, bool) {
	e, ok := g.edgeByID[id]
	return e, ok
}

// Nodes returns all nodes in insertion order. The slice is a copy; the node
// pointers refer to the graph's nodes.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.order) }

// Edges returns all edges in insertion order. The slice is a copy; the edge
// pointers refer to the graph's edges.
func (g *Graph) Edges() []*Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Revision returns a counter that changes whenever edge handles are remapped.
func (g *Graph) Revision() uint64 { return g.revision }

// Touch bumps the revision. Callers that rewrite edge handles must call it.
func (g *Graph) Touch() { g.revision++ }

// Sources returns nodes with no incoming edges, in insertion order.
func (g *Graph) Sources() []*Node {
	var sources []*Node
	for _, n := range g.order {
		if n.InDegree == 0 {
			sources = append(sources, n)
		}
	}
	return sources
}

// NodeIDs extracts the ID from each node in a slice.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
