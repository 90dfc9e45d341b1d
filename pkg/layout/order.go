package layout

import (
	"cmp"
	"context"
	"slices"
	"strconv"

	"github.com/matzehuels/lineage/pkg/graph"
)

// layering holds the nodes of each rank in their current order, including
// virtual nodes that split edges spanning more than one rank.
type layering struct {
	layers  [][]string
	up      map[string][]string // neighbours in rank-1
	down    map[string][]string // neighbours in rank+1
	virtual map[string]bool
}

// buildLayering places nodes in their ranks in insertion order and chains a
// virtual node into every intermediate rank of a long edge. Back edges are
// reversed for ordering purposes; self-loops and edges inside one rank do
// not influence the order.
func buildLayering(g *graph.Graph, ranks map[string]int, back map[string]bool) *layering {
	maxRank := 0
	for _, r := range ranks {
		maxRank = max(maxRank, r)
	}
	l := &layering{
		layers:  make([][]string, maxRank+1),
		up:      make(map[string][]string),
		down:    make(map[string][]string),
		virtual: make(map[string]bool),
	}
	if len(ranks) == 0 {
		l.layers = nil
		return l
	}
	for _, n := range g.Nodes() {
		r := ranks[n.ID]
		l.layers[r] = append(l.layers[r], n.ID)
	}

	link := func(a, b string) {
		l.down[a] = append(l.down[a], b)
		l.up[b] = append(l.up[b], a)
	}
	for _, e := range g.Edges() {
		if e.IsSelfLoop() {
			continue
		}
		u, v := e.Source, e.Target
		if back[e.ID] {
			u, v = v, u
		}
		if ranks[u] > ranks[v] {
			u, v = v, u
		}
		lo, hi := ranks[u], ranks[v]
		if lo == hi {
			continue
		}
		prev := u
		for r := lo + 1; r < hi; r++ {
			vid := "\x00" + e.ID + "#" + strconv.Itoa(r)
			l.virtual[vid] = true
			l.layers[r] = append(l.layers[r], vid)
			link(prev, vid)
			prev = vid
		}
		link(prev, v)
	}
	return l
}

func (l *layering) crossings() int {
	total := 0
	for r := 0; r+1 < len(l.layers); r++ {
		total += countLayerCrossings(l.layers[r], l.layers[r+1], l.down)
	}
	return total
}

func (l *layering) snapshot() [][]string {
	out := make([][]string, len(l.layers))
	for i, layer := range l.layers {
		out[i] = slices.Clone(layer)
	}
	return out
}

// sweep reorders every rank by the barycenter of its neighbours in the rank
// just visited: top to bottom when downward, bottom to top otherwise.
func (l *layering) sweep(downward bool) {
	if downward {
		for r := 1; r < len(l.layers); r++ {
			l.reorder(r, r-1, l.up)
		}
		return
	}
	for r := len(l.layers) - 2; r >= 0; r-- {
		l.reorder(r, r+1, l.down)
	}
}

func (l *layering) reorder(r, fixed int, neighbours map[string][]string) {
	pos := posMap(l.layers[fixed])
	layer := l.layers[r]
	bary := make(map[string]float64, len(layer))
	for i, id := range layer {
		sum, n := 0.0, 0
		for _, nb := range neighbours[id] {
			if p, ok := pos[nb]; ok {
				sum += float64(p)
				n++
			}
		}
		if n == 0 {
			bary[id] = float64(i) // unconnected nodes hold their place
		} else {
			bary[id] = sum / float64(n)
		}
	}
	slices.SortStableFunc(layer, func(a, b string) int { return cmp.Compare(bary[a], bary[b]) })
}

// orderStats describes the outcome of [minimizeCrossings].
type orderStats struct {
	rounds    int
	crossings int
	converged bool
}

// minimizeCrossings runs down/up barycenter sweeps for at most maxRounds
// rounds and keeps the ordering with the fewest crossings. It stops early
// once a round brings no improvement or no crossings remain; running out of
// rounds first is reported as not converged.
func (l *layering) minimizeCrossings(ctx context.Context, maxRounds int) (orderStats, error) {
	best := l.crossings()
	bestLayers := l.snapshot()
	stats := orderStats{crossings: best, converged: best == 0}

	for !stats.converged && stats.rounds < maxRounds {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.rounds++
		l.sweep(true)
		l.sweep(false)

		c := l.crossings()
		if c >= best {
			stats.converged = true
			break
		}
		best, bestLayers = c, l.snapshot()
		stats.crossings = best
		stats.converged = best == 0
	}
	l.layers = bestLayers
	return stats, nil
}

// realOrder returns the non-virtual nodes of each rank in order.
func (l *layering) realOrder() [][]string {
	out := make([][]string, len(l.layers))
	for r, layer := range l.layers {
		for _, id := range layer {
			if !l.virtual[id] {
				out[r] = append(out[r], id)
			}
		}
	}
	return out
}
