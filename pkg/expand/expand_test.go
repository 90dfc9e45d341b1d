package expand

import (
	"context"
	"maps"
	"testing"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/layout"
)

type countingRelayouter struct{ calls int }

func (r *countingRelayouter) Relayout(context.Context) error {
	r.calls++
	return nil
}

func fixture(t *testing.T) (*graph.Graph, *countingRelayouter, *Coordinator) {
	t.Helper()
	g := graph.New()
	_ = g.AddNode(graph.Node{ID: "orders", Attributes: []graph.Attribute{{Name: "id"}, {Name: "amount"}}})
	_ = g.AddNode(graph.Node{ID: "revenue", Attributes: []graph.Attribute{{Name: "total"}}})
	_ = g.AddNode(graph.Node{ID: "audit"})
	_ = g.AddEdge(graph.Edge{ID: "sum", Source: "orders", SourceAttr: "amount", Target: "revenue", TargetAttr: "total"})
	_ = g.AddEdge(graph.Edge{ID: "log", Source: "orders", Target: "audit"})
	_ = g.AddEdge(graph.Edge{ID: "self", Source: "orders", SourceAttr: "id", Target: "orders", TargetAttr: "amount"})

	r := &countingRelayouter{}
	c := NewCoordinator(g, Options{Sizer: layout.DefaultOptions(), Relayouter: r})
	return g, r, c
}

func handles(g *graph.Graph) map[string][2]graph.Handle {
	out := make(map[string][2]graph.Handle)
	for _, e := range g.Edges() {
		out[e.ID] = [2]graph.Handle{e.SourceHandle, e.TargetHandle}
	}
	return out
}

func TestToggleRemapsHandles(t *testing.T) {
	g, r, c := fixture(t)
	ctx := context.Background()

	expanded, err := c.Toggle(ctx, "orders")
	if err != nil || !expanded {
		t.Fatalf("Toggle() = %v, %v, want true, nil", expanded, err)
	}
	sum, _ := g.Edge("sum")
	if sum.SourceHandle != "orders-amount-source" || sum.TargetHandle != "revenue-node-target" {
		t.Errorf("sum handles = %s -> %s", sum.SourceHandle, sum.TargetHandle)
	}
	log, _ := g.Edge("log")
	if log.SourceHandle != "orders-node-source" {
		t.Errorf("node-level edge got %s, want orders-node-source", log.SourceHandle)
	}
	self, _ := g.Edge("self")
	if self.SourceHandle != "orders-id-source" || self.TargetHandle != "orders-amount-target" {
		t.Errorf("self handles = %s -> %s", self.SourceHandle, self.TargetHandle)
	}
	orders, _ := g.Node("orders")
	if orders.Size.Height != 85+2*36+20 {
		t.Errorf("expanded height = %v, want %v", orders.Size.Height, 85+2*36+20)
	}
	if r.calls != 1 {
		t.Errorf("Relayout calls = %d, want 1", r.calls)
	}
}

func TestExpandCollapseRoundTrip(t *testing.T) {
	g, _, c := fixture(t)
	ctx := context.Background()
	before := handles(g)
	rev := g.Revision()

	_, _ = c.Toggle(ctx, "orders")
	_, _ = c.Toggle(ctx, "revenue")
	_, _ = c.Toggle(ctx, "orders")
	_, _ = c.Toggle(ctx, "revenue")

	after := handles(g)
	for id, h := range before {
		if after[id] != h {
			t.Errorf("edge %s handles = %v, want %v", id, after[id], h)
		}
	}
	if g.Revision() == rev {
		t.Error("Revision() unchanged after toggles")
	}
	orders, _ := g.Node("orders")
	if orders.Size.Height != layout.DefaultCollapsedHeight {
		t.Errorf("collapsed height = %v, want %v", orders.Size.Height, layout.DefaultCollapsedHeight)
	}
}

func TestBulkOperationsRelayoutOnce(t *testing.T) {
	g, r, c := fixture(t)
	ctx := context.Background()

	n, err := c.ExpandAll(ctx)
	if err != nil || n != 3 {
		t.Fatalf("ExpandAll() = %d, %v, want 3, nil", n, err)
	}
	if r.calls != 1 {
		t.Errorf("Relayout calls after ExpandAll = %d, want 1", r.calls)
	}
	if got := c.ExpandedIDs(); len(got) != g.NodeCount() {
		t.Errorf("ExpandedIDs() = %v, want all nodes", got)
	}

	if n, _ := c.ExpandAll(ctx); n != 0 || r.calls != 1 {
		t.Errorf("repeated ExpandAll() = %d changes, %d calls, want 0, 1", n, r.calls)
	}

	if n, _ := c.CollapseAll(ctx); n != 3 || r.calls != 2 {
		t.Errorf("CollapseAll() = %d changes, %d calls, want 3, 2", n, r.calls)
	}
}

func TestSetExpanded(t *testing.T) {
	_, r, c := fixture(t)
	ctx := context.Background()

	if changed, _ := c.SetExpanded(ctx, "audit", false); changed || r.calls != 0 {
		t.Errorf("SetExpanded(no-op) = %v, %d calls", changed, r.calls)
	}
	if changed, _ := c.SetExpanded(ctx, "audit", true); !changed || !c.Expanded("audit") {
		t.Errorf("SetExpanded(true) changed = %v, Expanded = %v", changed, c.Expanded("audit"))
	}
}

func TestFocus(t *testing.T) {
	g := graph.New()
	_ = g.AddNode(graph.Node{ID: "a", Attributes: []graph.Attribute{{Name: "x"}}})
	opts := layout.DefaultOptions()
	calls := 0
	c := NewCoordinator(g, Options{
		Sizer: opts,
		Relayouter: RelayoutFunc(func(ctx context.Context) error {
			calls++
			_, err := layout.Layout(ctx, g, opts)
			return err
		}),
	})

	p, err := c.Focus(context.Background(), "a")
	if err != nil {
		t.Fatalf("Focus() error = %v", err)
	}
	// 50 margin + half of 260 wide, 50 margin + half of 85+36+20 tall
	if want := (graph.Point{X: 180, Y: 120.5}); p != want {
		t.Errorf("Focus() = %v, want %v", p, want)
	}
	if _, _ = c.Focus(context.Background(), "a"); calls != 1 {
		t.Errorf("Relayout calls = %d, want 1 (already expanded)", calls)
	}
}

func TestUnknownNode(t *testing.T) {
	_, r, c := fixture(t)
	ctx := context.Background()

	if _, err := c.Toggle(ctx, "ghost"); !errors.Is(err, errors.ErrCodeUnknownNode) {
		t.Errorf("Toggle(ghost) error = %v, want %s", err, errors.ErrCodeUnknownNode)
	}
	if _, err := c.Focus(ctx, "ghost"); !errors.Is(err, errors.ErrCodeUnknownNode) {
		t.Errorf("Focus(ghost) error = %v, want %s", err, errors.ErrCodeUnknownNode)
	}
	if r.calls != 0 {
		t.Errorf("Relayout calls = %d, want 0", r.calls)
	}
}

func TestFailedRelayoutRollsBack(t *testing.T) {
	tests := []struct {
		name string
		op   func(ctx context.Context, c *Coordinator) error
	}{
		{"toggle", func(ctx context.Context, c *Coordinator) error {
			_, err := c.Toggle(ctx, "orders")
			return err
		}},
		{"set expanded", func(ctx context.Context, c *Coordinator) error {
			_, err := c.SetExpanded(ctx, "orders", true)
			return err
		}},
		{"focus", func(ctx context.Context, c *Coordinator) error {
			_, err := c.Focus(ctx, "orders")
			return err
		}},
		{"expand all", func(ctx context.Context, c *Coordinator) error {
			_, err := c.ExpandAll(ctx)
			return err
		}},
		{"collapse all", func(ctx context.Context, c *Coordinator) error {
			_, err := c.CollapseAll(ctx)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New()
			_ = g.AddNode(graph.Node{ID: "orders", Attributes: []graph.Attribute{{Name: "amount"}}})
			_ = g.AddNode(graph.Node{ID: "revenue", Attributes: []graph.Attribute{{Name: "total"}}})
			_ = g.AddEdge(graph.Edge{ID: "sum", Source: "orders", SourceAttr: "amount", Target: "revenue", TargetAttr: "total"})
			c := NewCoordinator(g, Options{
				Sizer:      layout.DefaultOptions(),
				Relayouter: RelayoutFunc(func(ctx context.Context) error { return ctx.Err() }),
			})
			if _, err := c.SetExpanded(context.Background(), "revenue", true); err != nil {
				t.Fatalf("SetExpanded() error = %v", err)
			}
			wantHandles := handles(g)
			wantSizes := map[string]graph.Size{}
			for _, n := range g.Nodes() {
				wantSizes[n.ID] = n.Size
			}
			wantExpanded := c.ExpandedIDs()
			rev := g.Revision()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			if err := tt.op(ctx, c); err == nil {
				t.Fatal("operation with cancelled context succeeded")
			}

			if got := c.ExpandedIDs(); len(got) != len(wantExpanded) || got[0] != wantExpanded[0] {
				t.Errorf("ExpandedIDs() = %v, want %v", got, wantExpanded)
			}
			if got := handles(g); !maps.Equal(got, wantHandles) {
				t.Errorf("handles = %v, want %v", got, wantHandles)
			}
			for _, n := range g.Nodes() {
				if n.Size != wantSizes[n.ID] {
					t.Errorf("%s size = %v, want %v", n.ID, n.Size, wantSizes[n.ID])
				}
			}
			if g.Revision() == rev {
				t.Error("revision unchanged, indexes built during the operation would look fresh")
			}
		})
	}
}

func TestToggleReportsPreviousStateOnFailure(t *testing.T) {
	g := graph.New()
	_ = g.AddNode(graph.Node{ID: "a", Attributes: []graph.Attribute{{Name: "x"}}})
	c := NewCoordinator(g, Options{
		Sizer:      layout.DefaultOptions(),
		Relayouter: RelayoutFunc(func(ctx context.Context) error { return context.Canceled }),
	})
	expanded, err := c.Toggle(context.Background(), "a")
	if err == nil || expanded || c.Expanded("a") {
		t.Errorf("Toggle() = %v, %v; Expanded = %v, want false, error, false", expanded, err, c.Expanded("a"))
	}
	if n, err := c.ExpandAll(context.Background()); err == nil || n != 0 {
		t.Errorf("ExpandAll() = %d, %v, want 0 and an error", n, err)
	}
}
