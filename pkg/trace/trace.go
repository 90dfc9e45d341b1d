package trace

import (
	"slices"

	"github.com/matzehuels/lineage/pkg/graph"
)

// Focus is the attribute a trace started from.
type Focus struct {
	NodeID string `json:"nodeId"`
	Attr   string `json:"attr"`
}

// Result is the lineage of one attribute: every node and edge on a directed
// attribute-level path into or out of it.
type Result struct {
	Focus Focus
	Nodes map[string]bool
	Edges map[string]bool

	// Attrs lists, per highlighted node, the attributes reached on it in
	// discovery order. The focus node lists its focus attribute first.
	Attrs map[string][]string
}

// Empty reports whether the trace highlighted nothing, which is the case for
// unknown nodes or attributes.
func (r Result) Empty() bool { return len(r.Nodes) == 0 }

// NodeIDs returns the highlighted node ids in graph insertion order.
func (r Result) NodeIDs(g *graph.Graph) []string {
	var ids []string
	for _, n := range g.Nodes() {
		if r.Nodes[n.ID] {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// EdgeIDs returns the highlighted edge ids in graph insertion order.
func (r Result) EdgeIDs(g *graph.Graph) []string {
	var ids []string
	for _, e := range g.Edges() {
		if r.Edges[e.ID] {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

func newResult(focus Focus) Result {
	return Result{
		Focus: focus,
		Nodes: make(map[string]bool),
		Edges: make(map[string]bool),
		Attrs: make(map[string][]string),
	}
}

func (r *Result) addAttr(node, attr string) {
	if !slices.Contains(r.Attrs[node], attr) {
		r.Attrs[node] = append(r.Attrs[node], attr)
	}
}

// Run traces the lineage of attr on nodeID.
//
// Downstream, it follows edges leaving the attribute's source handle; each
// edge reached is highlighted together with its target node and target
// attribute, and the walk continues from that attribute's source handle.
// Upstream is symmetric, following edges into target handles. Handles are
// matched by (node, attribute) [graph.Endpoint], not by name. Each direction
// keeps its own visited edge and endpoint sets and uses an explicit work stack,
// so cycles and self-referential edges terminate. Edges with a node-level
// endpoint are highlighted but end the walk on that side, since they carry
// no attribute to continue from.
//
// idx is rebuilt when nil or stale. An unknown node or attribute yields an
// empty result.
func Run(g *graph.Graph, idx *graph.Index, nodeID, attr string) Result {
	res := newResult(Focus{NodeID: nodeID, Attr: attr})
	n, ok := g.Node(nodeID)
	if !ok || attr == "" || !n.HasAttribute(attr) {
		return res
	}
	if idx == nil || idx.Stale(g) {
		idx = graph.NewIndex(g)
	}

	res.Nodes[nodeID] = true
	res.addAttr(nodeID, attr)
	start := graph.Endpoint{Node: nodeID, Attr: attr}
	res.walk(idx, start, true)
	res.walk(idx, start, false)
	return res
}

// Neighborhood returns nodeID together with every node one edge away, in
// either direction, and the edges joining them. It is the node-level
// highlight shown while the pointer rests on a node; Attrs stays empty.
// An unknown node yields an empty result.
func Neighborhood(g *graph.Graph, idx *graph.Index, nodeID string) Result {
	res := newResult(Focus{NodeID: nodeID})
	if _, ok := g.Node(nodeID); !ok {
		return res
	}
	if idx == nil || idx.Stale(g) {
		idx = graph.NewIndex(g)
	}
	res.Nodes[nodeID] = true
	for _, e := range idx.EdgesFrom(nodeID) {
		res.Edges[e.ID] = true
		res.Nodes[e.Target] = true
	}
	for _, e := range idx.EdgesTo(nodeID) {
		res.Edges[e.ID] = true
		res.Nodes[e.Source] = true
	}
	return res
}

func (r *Result) walk(idx *graph.Index, start graph.Endpoint, downstream bool) {
	visitedEdges := make(map[string]bool)
	visitedEndpoints := map[graph.Endpoint]bool{start: true}
	stack := []graph.Endpoint{start}

	for len(stack) > 0 {
		ep := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var edges []*graph.Edge
		if downstream {
			edges = idx.EdgesFromEndpoint(ep)
		} else {
			edges = idx.EdgesToEndpoint(ep)
		}
		for _, e := range edges {
			if visitedEdges[e.ID] {
				continue
			}
			visitedEdges[e.ID] = true
			r.Edges[e.ID] = true

			node, attr := e.Source, e.SourceAttr
			if downstream {
				node, attr = e.Target, e.TargetAttr
			}
			r.Nodes[node] = true
			if attr == "" {
				continue
			}
			r.addAttr(node, attr)

			next := graph.Endpoint{Node: node, Attr: attr}
			if !visitedEndpoints[next] {
				visitedEndpoints[next] = true
				stack = append(stack, next)
			}
		}
	}
}

// Apply annotates g with a trace: nodes and edges outside the result are
// dimmed, highlighted edges are marked for directional animation, and each
// highlighted node lists its reached attributes. An empty result clears
// all annotations instead.
func Apply(g *graph.Graph, res Result) {
	if res.Empty() {
		Clear(g)
		return
	}
	for _, n := range g.Nodes() {
		n.Dimmed = !res.Nodes[n.ID]
		n.HighlightedAttrs = slices.Clone(res.Attrs[n.ID])
	}
	for _, e := range g.Edges() {
		on := res.Edges[e.ID]
		e.Highlighted = on
		e.Animated = on
		e.Dimmed = !on
	}
}

// Clear removes every trace annotation from g.
func Clear(g *graph.Graph) {
	for _, n := range g.Nodes() {
		n.Dimmed = false
		n.HighlightedAttrs = nil
	}
	for _, e := range g.Edges() {
		e.Highlighted = false
		e.Animated = false
		e.Dimmed = false
	}
}
