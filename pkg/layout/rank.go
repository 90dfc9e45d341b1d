package layout

import "github.com/matzehuels/lineage/pkg/graph"

// assignRanks places every node one rank past the deepest of its
// predecessors over the non-back edges (longest path from the sources).
//
// It is Kahn's algorithm seeded with the zero in-degree nodes in insertion
// order. Back edges are skipped, so the traversal always drains the queue;
// a node that is somehow never reached keeps rank 0.
func assignRanks(g *graph.Graph, back map[string]bool) map[string]int {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	children := make(map[string][]string, len(nodes))
	for _, e := range g.Edges() {
		if back[e.ID] {
			continue
		}
		inDegree[e.Target]++
		children[e.Source] = append(children[e.Source], e.Target)
	}

	ranks := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ranks[n.ID] = 0
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range children[curr] {
			if r := ranks[curr] + 1; r > ranks[child] {
				ranks[child] = r
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return ranks
}
