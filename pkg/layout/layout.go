package layout

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/graph"
)

// Result is a computed layout. It is detached from the graph until [Apply]
// writes it back.
type Result struct {
	Orientation Orientation

	Ranks     map[string]int
	Positions map[string]graph.Point // top-left corners
	Sizes     map[string]graph.Size
	BackEdges map[string]bool // edge ids excluded from ranking
	Order     [][]string      // node ids per rank, in drawing order

	Crossings int
	Rounds    int
	Converged bool

	Width  float64 // bounding box including margins
	Height float64
}

// Timeout returns a LAYOUT_TIMEOUT error when crossing minimisation ran out
// of rounds, or nil. The layout is usable either way.
func (r *Result) Timeout() error {
	if r.Converged {
		return nil
	}
	return errors.New(errors.ErrCodeLayoutTimeout,
		"crossing minimisation stopped after %d rounds with %d crossings", r.Rounds, r.Crossings)
}

// Compute lays out g along opts.Orientation without modifying it.
//
// The pipeline is:
//  1. back-edge selection (cycles and self-loops, see findBackEdges)
//  2. longest-path ranking over the remaining edges
//  3. barycenter ordering with virtual nodes on long edges
//  4. coordinates from node sizes, rank spacing and node spacing
//
// Node sizes follow each node's current Expanded flag. The result only
// depends on the graph and the options, so repeated calls are identical.
// Compute returns an error for invalid options or when ctx is done; a
// layout whose ordering did not converge is still returned (see
// [Result.Timeout]).
func Compute(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.WithDefaults()
	logger := opts.logger()
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	back := findBackEdges(g)
	ranks := assignRanks(g, back)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := buildLayering(g, ranks, back)
	stats, err := l.minimizeCrossings(ctx, opts.MaxRounds)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Orientation: opts.Orientation,
		Ranks:       ranks,
		BackEdges:   back,
		Order:       l.realOrder(),
		Crossings:   stats.crossings,
		Rounds:      stats.rounds,
		Converged:   stats.converged,
	}
	placeNodes(g, res, opts)

	logger.Debug("layout computed",
		"orientation", opts.Orientation,
		"nodes", g.NodeCount(),
		"ranks", len(res.Order),
		"back_edges", len(back),
		"crossings", res.Crossings,
		"rounds", res.Rounds,
		"elapsed", time.Since(start))
	if err := res.Timeout(); err != nil {
		logger.Warn("layout: ordering did not converge, using best found", "err", err)
	}
	return res, nil
}

// Apply writes a computed layout into g: Rank, Position and Size of every
// node and BackEdge of every edge. Nodes missing from the result are left
// alone.
func Apply(g *graph.Graph, res *Result) {
	for _, n := range g.Nodes() {
		if r, ok := res.Ranks[n.ID]; ok {
			n.Rank = r
		}
		if p, ok := res.Positions[n.ID]; ok {
			n.Position = p
		}
		if s, ok := res.Sizes[n.ID]; ok {
			n.Size = s
		}
	}
	for _, e := range g.Edges() {
		e.BackEdge = res.BackEdges[e.ID]
	}
}

// Layout computes and applies a layout in one step. On error g is unchanged.
func Layout(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	res, err := Compute(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	Apply(g, res)
	return res, nil
}

// placeNodes assigns top-left coordinates. Along the rank axis each rank
// starts after the previous rank's extent plus the rank separation; across
// it, nodes are stacked with NodeSep between them and every rank is centred
// on the widest one. Within its rank a node is centred on the rank axis.
func placeNodes(g *graph.Graph, res *Result, opts Options) {
	lr := opts.Orientation == LeftToRight
	rankMargin, crossMargin := opts.MarginY, opts.MarginX
	if lr {
		rankMargin, crossMargin = opts.MarginX, opts.MarginY
	}

	res.Sizes = make(map[string]graph.Size, g.NodeCount())
	res.Positions = make(map[string]graph.Point, g.NodeCount())
	along := func(s graph.Size) float64 {
		if lr {
			return s.Width
		}
		return s.Height
	}
	across := func(s graph.Size) float64 {
		if lr {
			return s.Height
		}
		return s.Width
	}

	extent := make([]float64, len(res.Order))
	span := make([]float64, len(res.Order))
	maxSpan := 0.0
	for r, ids := range res.Order {
		for i, id := range ids {
			n, _ := g.Node(id)
			s := opts.NodeSize(n)
			res.Sizes[id] = s
			extent[r] = max(extent[r], along(s))
			span[r] += across(s)
			if i > 0 {
				span[r] += opts.NodeSep
			}
		}
		maxSpan = max(maxSpan, span[r])
	}

	rankStart := rankMargin
	for r, ids := range res.Order {
		offset := crossMargin + (maxSpan-span[r])/2
		for _, id := range ids {
			s := res.Sizes[id]
			a := rankStart + (extent[r]-along(s))/2
			if lr {
				res.Positions[id] = graph.Point{X: a, Y: offset}
			} else {
				res.Positions[id] = graph.Point{X: offset, Y: a}
			}
			offset += across(s) + opts.NodeSep
		}
		rankStart += extent[r]
		if r+1 < len(res.Order) {
			rankStart += opts.RankSep()
		}
	}

	totalAlong := rankStart + rankMargin
	totalAcross := maxSpan + 2*crossMargin
	if lr {
		res.Width, res.Height = totalAlong, totalAcross
	} else {
		res.Width, res.Height = totalAcross, totalAlong
	}
}
