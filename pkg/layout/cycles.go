package layout

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/matzehuels/lineage/pkg/graph"
)

// findBackEdges returns the ids of edges that must be ignored for ranking so
// that the remaining edges form a DAG.
//
// Every self-loop is a back edge. Other cycles can only live inside a
// strongly connected component, so the components are found first (Tarjan)
// and a depth-first search is run over intra-component edges only. Roots are
// visited in node insertion order and out-edges in ascending edge id order;
// an edge reaching a node still on the DFS stack closes a cycle and is marked.
// The selection is therefore deterministic for a given graph.
func findBackEdges(g *graph.Graph) map[string]bool {
	back := make(map[string]bool)
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return back
	}

	ids := make(map[string]int64, len(nodes))
	dg := simple.NewDirectedGraph()
	for i, n := range nodes {
		ids[n.ID] = int64(i)
		dg.AddNode(simple.Node(int64(i)))
	}

	out := make(map[string][]*graph.Edge)
	for _, e := range g.Edges() {
		if e.IsSelfLoop() {
			back[e.ID] = true
			continue
		}
		out[e.Source] = append(out[e.Source], e)
		dg.SetEdge(dg.NewEdge(dg.Node(ids[e.Source]), dg.Node(ids[e.Target])))
	}

	component := make(map[int64]int, len(nodes))
	cyclic := false
	for c, scc := range topo.TarjanSCC(dg) {
		for _, n := range scc {
			component[n.ID()] = c
		}
		if len(scc) > 1 {
			cyclic = true
		}
	}
	if !cyclic {
		return back
	}

	sameComponent := func(e *graph.Edge) bool {
		return component[ids[e.Source]] == component[ids[e.Target]]
	}
	for id, edges := range out {
		kept := slices.DeleteFunc(slices.Clone(edges), func(e *graph.Edge) bool { return !sameComponent(e) })
		slices.SortFunc(kept, func(a, b *graph.Edge) int { return cmp.Compare(a.ID, b.ID) })
		out[id] = kept
	}

	const (
		white = iota
		gray
		black
	)
	type frame struct {
		node string
		next int
	}

	color := make(map[string]int, len(nodes))
	for _, root := range nodes {
		if color[root.ID] != white {
			continue
		}
		color[root.ID] = gray
		stack := []frame{{node: root.ID}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			edges := out[top.node]
			if top.next == len(edges) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}
			e := edges[top.next]
			top.next++
			switch color[e.Target] {
			case white:
				color[e.Target] = gray
				stack = append(stack, frame{node: e.Target})
			case gray:
				back[e.ID] = true
			}
		}
	}
	return back
}
