package graph

// DefaultSpread is the curvature step between neighbouring parallel edges.
const DefaultSpread = 0.5

const (
	loopBaseCurvature = 1.0
	loopStep          = 0.2
)

// AssignCurvature sets Curvature on every edge so that edges sharing the same
// unordered node pair are drawn apart.
//
// Edges are grouped by [Edge.GroupKey] in first-seen order. In a group of n
// edges between two distinct nodes the i-th edge (input order) gets
// (i - (n-1)/2) * spread, which is symmetric around zero and increasing in
// input order; a lone edge gets 0. Antiparallel edges share the group, so
// A->B and B->A bow to opposite sides. The i-th self-loop on a node gets
// 1 + i*0.2 and is never straight.
//
// The result depends only on grouping and order, never on the previous
// Curvature values, so repeated calls are idempotent.
func AssignCurvature(edges []*Edge, spread float64) {
	groups := make(map[GroupKey][]*Edge)
	var order []GroupKey
	for _, e := range edges {
		k := e.GroupKey()
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], e)
	}

	for _, k := range order {
		group := groups[k]
		if k.IsLoop() {
			for i, e := range group {
				e.Curvature = loopBaseCurvature + float64(i)*loopStep
			}
			continue
		}
		mid := float64(len(group)-1) / 2
		for i, e := range group {
			e.Curvature = (float64(i) - mid) * spread
		}
	}
}
