package layout

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/graph"
)

func newGraph(t testing.TB, nodes []string, edges ...[3]string) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, id := range nodes {
		if err := g.AddNode(graph.Node{ID: id}); err != nil {
			t.Fatalf("AddNode(%s) error = %v", id, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(graph.Edge{ID: e[0], Source: e[1], Target: e[2]}); err != nil {
			t.Fatalf("AddEdge(%s) error = %v", e[0], err)
		}
	}
	return g
}

func TestComputeThreeCycle(t *testing.T) {
	g := newGraph(t, []string{"A", "B", "C"},
		[3]string{"e1", "A", "B"},
		[3]string{"e2", "B", "C"},
		[3]string{"e3", "C", "A"},
	)

	res, err := Compute(context.Background(), g, Options{})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if want := map[string]bool{"e3": true}; !reflect.DeepEqual(res.BackEdges, want) {
		t.Errorf("BackEdges = %v, want %v", res.BackEdges, want)
	}
	if want := map[string]int{"A": 0, "B": 1, "C": 2}; !reflect.DeepEqual(res.Ranks, want) {
		t.Errorf("Ranks = %v, want %v", res.Ranks, want)
	}
}

func TestComputeSelfLoopIsBackEdge(t *testing.T) {
	g := newGraph(t, []string{"X", "Y"},
		[3]string{"loop", "X", "X"},
		[3]string{"xy", "X", "Y"},
	)
	res, err := Compute(context.Background(), g, Options{})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if !res.BackEdges["loop"] || res.BackEdges["xy"] {
		t.Errorf("BackEdges = %v, want only loop", res.BackEdges)
	}
	if res.Ranks["Y"] != 1 {
		t.Errorf("Ranks[Y] = %d, want 1", res.Ranks["Y"])
	}
}

func TestComputeBackEdgeLowestID(t *testing.T) {
	// Two-node cycle; DFS from A follows a1 first, so b1 closes the cycle.
	g := newGraph(t, []string{"A", "B"},
		[3]string{"b1", "B", "A"},
		[3]string{"a1", "A", "B"},
	)
	res, _ := Compute(context.Background(), g, Options{})
	if !res.BackEdges["b1"] || res.BackEdges["a1"] {
		t.Errorf("BackEdges = %v, want b1", res.BackEdges)
	}
}

func TestComputeCoordinates(t *testing.T) {
	tests := []struct {
		name        string
		orientation Orientation
		want        map[string]graph.Point
		width       float64
		height      float64
	}{
		{
			name:        "LR",
			orientation: LeftToRight,
			want: map[string]graph.Point{
				"a": {X: 50, Y: 105},
				"b": {X: 560, Y: 50},
				"c": {X: 560, Y: 160},
			},
			width:  870,
			height: 260,
		},
		{
			name:        "TB",
			orientation: TopToBottom,
			want: map[string]graph.Point{
				"a": {X: 210, Y: 50},
				"b": {X: 50, Y: 250},
				"c": {X: 370, Y: 250},
			},
			width:  680,
			height: 350,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGraph(t, []string{"a", "b", "c"},
				[3]string{"e1", "a", "b"},
				[3]string{"e2", "a", "c"},
			)
			res, err := Compute(context.Background(), g, Options{Orientation: tt.orientation})
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			if !reflect.DeepEqual(res.Positions, tt.want) {
				t.Errorf("Positions = %v, want %v", res.Positions, tt.want)
			}
			if res.Width != tt.width || res.Height != tt.height {
				t.Errorf("size = %vx%v, want %vx%v", res.Width, res.Height, tt.width, tt.height)
			}
		})
	}
}

func TestComputeExpandedSize(t *testing.T) {
	g := graph.New()
	_ = g.AddNode(graph.Node{ID: "t", Expanded: true, Attributes: []graph.Attribute{{Name: "a"}, {Name: "b"}, {Name: "c"}}})
	_ = g.AddNode(graph.Node{ID: "u", Attributes: []graph.Attribute{{Name: "a"}}})

	res, err := Compute(context.Background(), g, Options{})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if got := res.Sizes["t"]; got != (graph.Size{Width: 260, Height: 85 + 3*36 + 20}) {
		t.Errorf("Sizes[t] = %v, want 260x213", got)
	}
	if got := res.Sizes["u"]; got != (graph.Size{Width: 260, Height: 50}) {
		t.Errorf("Sizes[u] = %v, want 260x50", got)
	}
}

func TestComputeReducesCrossings(t *testing.T) {
	g := newGraph(t, []string{"a", "b", "c", "d"},
		[3]string{"e1", "a", "d"},
		[3]string{"e2", "b", "c"},
	)
	res, err := Compute(context.Background(), g, Options{})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if res.Crossings != 0 || !res.Converged {
		t.Errorf("Crossings = %d, Converged = %v, want 0, true", res.Crossings, res.Converged)
	}
	if want := [][]string{{"a", "b"}, {"d", "c"}}; !reflect.DeepEqual(res.Order, want) {
		t.Errorf("Order = %v, want %v", res.Order, want)
	}
	if res.Timeout() != nil {
		t.Errorf("Timeout() = %v, want nil", res.Timeout())
	}
}

func TestComputeDoesNotMutateGraph(t *testing.T) {
	g := newGraph(t, []string{"a", "b"}, [3]string{"e", "a", "b"})
	if _, err := Compute(context.Background(), g, Options{}); err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	b, _ := g.Node("b")
	if b.Rank != 0 || b.Position != (graph.Point{}) || b.Size != (graph.Size{}) {
		t.Errorf("Compute() mutated node b: %+v", b)
	}
}

func TestComputeCancelled(t *testing.T) {
	g := newGraph(t, []string{"a", "b"}, [3]string{"e", "a", "b"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Layout(ctx, g, Options{}); err == nil {
		t.Fatal("Layout() with cancelled context succeeded")
	}
	b, _ := g.Node("b")
	if b.Position != (graph.Point{}) {
		t.Errorf("cancelled Layout() moved b to %v", b.Position)
	}
}

func TestComputeInvalidOptions(t *testing.T) {
	g := newGraph(t, []string{"a"})
	_, err := Compute(context.Background(), g, Options{Orientation: "diagonal"})
	if !errors.Is(err, errors.ErrCodeInvalidOrientation) {
		t.Errorf("Compute() error = %v, want %s", err, errors.ErrCodeInvalidOrientation)
	}
	_, err = Compute(context.Background(), g, Options{NodeSep: -5})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Compute() error = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}
}

func TestComputeEmptyGraph(t *testing.T) {
	res, err := Compute(context.Background(), graph.New(), Options{})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if len(res.Positions) != 0 || len(res.Order) != 0 {
		t.Errorf("empty graph produced %v / %v", res.Positions, res.Order)
	}
}

func TestOptionsExplicitZero(t *testing.T) {
	o := Options{NodeSep: Zero, MarginX: Zero, Margin: Zero}.WithDefaults()
	if o.NodeSep != 0 || o.MarginX != 0 || o.Margin != 0 {
		t.Errorf("WithDefaults() spacing = %v/%v/%v, want 0/0/0", o.NodeSep, o.MarginX, o.Margin)
	}
	if o.MarginY != DefaultMarginY || o.RankSepLR != DefaultRankSepLR {
		t.Errorf("WithDefaults() unset spacing = %v/%v, want defaults", o.MarginY, o.RankSepLR)
	}
	if again := o.WithDefaults(); again.NodeSep != 0 || again.Margin != 0 {
		t.Errorf("second WithDefaults() restored defaults: %v/%v", again.NodeSep, again.Margin)
	}
	n := &graph.Node{ID: "n", Expanded: true, Attributes: []graph.Attribute{{Name: "x"}}}
	if got := o.NodeSize(n).Height; got != DefaultHeaderHeight+DefaultRowHeight {
		t.Errorf("NodeSize() height = %v, want %v without margin", got, DefaultHeaderHeight+DefaultRowHeight)
	}
	if got := (Options{RankSepLR: Zero}).WithDefaults().RankSep(); got != 0 {
		t.Errorf("RankSep() = %v, want 0", got)
	}

	g := newGraph(t, []string{"a", "b"})
	res, err := Compute(context.Background(), g, Options{NodeSep: Zero, MarginX: Zero, MarginY: Zero})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if got := res.Positions["a"]; got != (graph.Point{}) {
		t.Errorf("Positions[a] = %v, want origin", got)
	}
	if got := res.Positions["b"]; got != (graph.Point{X: 0, Y: DefaultCollapsedHeight}) {
		t.Errorf("Positions[b] = %v, want directly below a", got)
	}
}

func TestLayoutApply(t *testing.T) {
	g := newGraph(t, []string{"a", "b"},
		[3]string{"fwd", "a", "b"},
		[3]string{"bwd", "b", "a"},
	)
	if _, err := Layout(context.Background(), g, Options{Orientation: "tb"}); err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	b, _ := g.Node("b")
	if b.Rank != 1 || b.Position.Y != 250 {
		t.Errorf("b = rank %d at %v, want rank 1 at y=250", b.Rank, b.Position)
	}
	bwd, _ := g.Edge("bwd")
	if !bwd.BackEdge {
		t.Error("bwd.BackEdge = false, want true")
	}
}

func TestComputeRoundLimit(t *testing.T) {
	// A complete bipartite block keeps nine crossings whatever the order;
	// the x/y pair starts crossed and needs one round to untangle, and a
	// second round to confirm nothing improves.
	g := newGraph(t, []string{"a1", "a2", "a3", "x", "y", "b1", "b2", "b3", "yt", "xt"},
		[3]string{"x-xt", "x", "xt"},
		[3]string{"y-yt", "y", "yt"},
	)
	for _, a := range []string{"a1", "a2", "a3"} {
		for _, b := range []string{"b1", "b2", "b3"} {
			if err := g.AddEdge(graph.Edge{ID: a + "-" + b, Source: a, Target: b}); err != nil {
				t.Fatal(err)
			}
		}
	}

	res, err := Compute(context.Background(), g, Options{MaxRounds: 1})
	if err != nil {
		t.Fatalf("Compute() error = %v, want best layout without error", err)
	}
	if res.Converged || res.Rounds != 1 || res.Crossings != 9 {
		t.Errorf("Converged = %v, Rounds = %d, Crossings = %d, want false, 1, 9", res.Converged, res.Rounds, res.Crossings)
	}
	if !errors.Is(res.Timeout(), errors.ErrCodeLayoutTimeout) {
		t.Errorf("Timeout() = %v, want %s", res.Timeout(), errors.ErrCodeLayoutTimeout)
	}
	if len(res.Positions) != g.NodeCount() || len(res.Sizes) != g.NodeCount() {
		t.Errorf("Positions/Sizes cover %d/%d nodes, want %d", len(res.Positions), len(res.Sizes), g.NodeCount())
	}
	if want := []string{"b1", "b2", "b3", "xt", "yt"}; !reflect.DeepEqual(res.Order[1], want) {
		t.Errorf("Order[1] = %v, want %v", res.Order[1], want)
	}

	res, err = Compute(context.Background(), g, Options{})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if !res.Converged || res.Rounds != 2 {
		t.Errorf("default rounds: Converged = %v, Rounds = %d, want true, 2", res.Converged, res.Rounds)
	}
}

func TestTimeout(t *testing.T) {
	res := &Result{Rounds: 8, Crossings: 3}
	if !errors.Is(res.Timeout(), errors.ErrCodeLayoutTimeout) {
		t.Errorf("Timeout() = %v, want %s", res.Timeout(), errors.ErrCodeLayoutTimeout)
	}
}

func TestParseOrientation(t *testing.T) {
	tests := []struct {
		in      string
		want    Orientation
		wantErr bool
	}{
		{"LR", LeftToRight, false},
		{"tb", TopToBottom, false},
		{"RL", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOrientation(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseOrientation(%q) = %q, %v, want %q (err %v)", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestCountLayerCrossings(t *testing.T) {
	down := map[string][]string{"a": {"d"}, "b": {"c"}}
	if got := countLayerCrossings([]string{"a", "b"}, []string{"c", "d"}, down); got != 1 {
		t.Errorf("countLayerCrossings() = %d, want 1", got)
	}
	if got := countLayerCrossings([]string{"a", "b"}, []string{"d", "c"}, down); got != 0 {
		t.Errorf("countLayerCrossings() = %d, want 0", got)
	}
	if got := countLayerCrossings(nil, []string{"c"}, down); got != 0 {
		t.Errorf("countLayerCrossings(empty) = %d, want 0", got)
	}
}

func TestAttributeAnchor(t *testing.T) {
	n := &graph.Node{
		ID:         "orders",
		Expanded:   true,
		Attributes: []graph.Attribute{{Name: "id"}, {Name: "amount"}},
		Position:   graph.Point{X: 50, Y: 50},
		Size:       graph.Size{Width: 260, Height: 197},
	}
	g := graph.New()
	_ = g.AddNode(*n)
	n, _ = g.Node("orders")

	p, ok := AttributeAnchor(n, "amount", true, Options{})
	if !ok || p != (graph.Point{X: 310, Y: 189}) {
		t.Errorf("AttributeAnchor(amount, source) = %v, %v, want {310 189}, true", p, ok)
	}
	p, _ = AttributeAnchor(n, "id", false, Options{})
	if p != (graph.Point{X: 50, Y: 153}) {
		t.Errorf("AttributeAnchor(id, target) = %v, want {50 153}", p)
	}
	if _, ok := AttributeAnchor(n, "missing", true, Options{}); ok {
		t.Error("AttributeAnchor(missing) ok = true")
	}

	n.Expanded = false
	n.Size = graph.Size{Width: 260, Height: 50}
	if got := Anchor(n, "amount", true, Options{}); got != (graph.Point{X: 310, Y: 75}) {
		t.Errorf("Anchor(collapsed) = %v, want node-level {310 75}", got)
	}
	if got := Anchor(n, "", false, Options{Orientation: TopToBottom}); got != (graph.Point{X: 180, Y: 50}) {
		t.Errorf("Anchor(TB target) = %v, want {180 50}", got)
	}
}

func TestComputeProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(t, "nodes")
		m := rapid.IntRange(0, 40).Draw(t, "edges")
		g := graph.New()
		for i := range n {
			var attrs []graph.Attribute
			for j := range rapid.IntRange(0, 4).Draw(t, "attributes") {
				attrs = append(attrs, graph.Attribute{Name: fmt.Sprintf("a%d", j)})
			}
			_ = g.AddNode(graph.Node{ID: fmt.Sprintf("n%02d", i), Expanded: rapid.Bool().Draw(t, "expanded"), Attributes: attrs})
		}
		for i := range m {
			src := rapid.IntRange(0, n-1).Draw(t, "src")
			dst := rapid.IntRange(0, n-1).Draw(t, "dst")
			_ = g.AddEdge(graph.Edge{ID: fmt.Sprintf("e%02d", i), Source: fmt.Sprintf("n%02d", src), Target: fmt.Sprintf("n%02d", dst)})
		}
		orientation := rapid.SampledFrom([]Orientation{LeftToRight, TopToBottom}).Draw(t, "orientation")

		r1, err := Compute(context.Background(), g, Options{Orientation: orientation})
		if err != nil {
			t.Fatalf("Compute() error = %v", err)
		}
		r2, _ := Compute(context.Background(), g, Options{Orientation: orientation})
		if !reflect.DeepEqual(r1.Positions, r2.Positions) || !reflect.DeepEqual(r1.BackEdges, r2.BackEdges) {
			t.Fatal("Compute() is not deterministic")
		}

		for _, e := range g.Edges() {
			if r1.BackEdges[e.ID] {
				continue
			}
			if r1.Ranks[e.Target] <= r1.Ranks[e.Source] {
				t.Fatalf("ranking edge %s: rank %d -> %d", e.ID, r1.Ranks[e.Source], r1.Ranks[e.Target])
			}
		}
		if len(r1.Positions) != n {
			t.Fatalf("positions for %d nodes, want %d", len(r1.Positions), n)
		}

		nodes := g.Nodes()
		for i, a := range nodes {
			for _, b := range nodes[i+1:] {
				if overlap(r1.Positions[a.ID], r1.Sizes[a.ID], r1.Positions[b.ID], r1.Sizes[b.ID]) {
					t.Fatalf("%s at %v %v overlaps %s at %v %v", a.ID, r1.Positions[a.ID], r1.Sizes[a.ID],
						b.ID, r1.Positions[b.ID], r1.Sizes[b.ID])
				}
			}
		}
	})
}

// overlap reports whether two boxes share interior area. Touching edges do
// not count.
func overlap(p1 graph.Point, s1 graph.Size, p2 graph.Point, s2 graph.Size) bool {
	return p1.X < p2.X+s2.Width && p2.X < p1.X+s1.Width &&
		p1.Y < p2.Y+s2.Height && p2.Y < p1.Y+s1.Height
}
