package render

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/matzehuels/lineage/pkg/expand"
	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/layout"
	"github.com/matzehuels/lineage/pkg/trace"
)

func chain(t *testing.T) (*graph.Graph, *expand.Coordinator, layout.Options) {
	t.Helper()
	g := graph.New()
	for _, n := range []graph.Node{
		{ID: "raw", Layer: "bronze", Attributes: []graph.Attribute{{Name: "id", IsPrimaryKey: true}, {Name: "amount"}}},
		{ID: "clean", Layer: "silver", Attributes: []graph.Attribute{{Name: "amount"}}},
		{ID: "audit", Layer: "silver"},
	} {
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range []graph.Edge{
		{ID: "e1", Source: "raw", SourceAttr: "amount", Target: "clean", TargetAttr: "amount"},
		{ID: "e2", Source: "raw", Target: "audit"},
	} {
		if err := g.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	opts := layout.DefaultOptions()
	c := expand.NewCoordinator(g, expand.Options{
		Sizer: opts,
		Relayouter: expand.RelayoutFunc(func(ctx context.Context) error {
			_, err := layout.Layout(ctx, g, opts)
			return err
		}),
	})
	if _, err := layout.Layout(context.Background(), g, opts); err != nil {
		t.Fatal(err)
	}
	return g, c, opts
}

func TestNewViewCollapsed(t *testing.T) {
	g, _, opts := chain(t)
	v := NewView(g, opts)

	if len(v.Nodes) != 3 || len(v.Edges) != 2 {
		t.Fatalf("NewView() = %d nodes, %d edges, want 3, 2", len(v.Nodes), len(v.Edges))
	}
	e := v.Edges[0]
	raw, _ := g.Node("raw")
	clean, _ := g.Node("clean")
	if want := layout.NodeAnchor(raw, true, opts.Orientation); e.From != want {
		t.Errorf("From = %v, want node anchor %v", e.From, want)
	}
	if want := layout.NodeAnchor(clean, false, opts.Orientation); e.To != want {
		t.Errorf("To = %v, want node anchor %v", e.To, want)
	}
	if e.SourceNode == nil || e.SourceNode.ID != "raw" || e.TargetNode.ID != "clean" {
		t.Errorf("edge node references = %v -> %v", e.SourceNode, e.TargetNode)
	}
	for _, a := range v.Nodes[0].Attributes {
		if a.SourceAnchor != nil || a.TargetAnchor != nil {
			t.Errorf("collapsed attribute %s has anchors", a.Name)
		}
	}
	if v.Traced {
		t.Error("Traced = true without a trace")
	}
}

func TestNewViewExpandedAnchors(t *testing.T) {
	g, c, opts := chain(t)
	ctx := context.Background()
	if _, err := c.ExpandAll(ctx); err != nil {
		t.Fatal(err)
	}
	v := NewView(g, opts)

	raw, _ := g.Node("raw")
	e := v.Edges[0]
	want, _ := layout.AttributeAnchor(raw, "amount", true, opts)
	if e.From != want {
		t.Errorf("From = %v, want attribute anchor %v", e.From, want)
	}
	if e.SourceHandle != "raw-amount-source" {
		t.Errorf("SourceHandle = %s", e.SourceHandle)
	}
	// Row 1 of raw: top + header + one row + half a row.
	if got := want.Y - raw.Position.Y; got != 85+36+18 {
		t.Errorf("row offset = %v, want %v", got, 85+36+18)
	}

	// node-level edge stays on node anchors
	audit, _ := g.Node("audit")
	if want := layout.NodeAnchor(audit, false, opts.Orientation); v.Edges[1].To != want {
		t.Errorf("node-level To = %v, want %v", v.Edges[1].To, want)
	}
	n, _ := v.Node("raw")
	if n.Attributes[1].SourceAnchor == nil || *n.Attributes[1].SourceAnchor != want {
		t.Errorf("attribute anchor = %v, want %v", n.Attributes[1].SourceAnchor, want)
	}
}

func TestNewViewTrace(t *testing.T) {
	g, c, opts := chain(t)
	_, _ = c.ExpandAll(context.Background())
	trace.Apply(g, trace.Run(g, nil, "raw", "amount"))

	v := NewView(g, opts)
	if !v.Traced {
		t.Error("Traced = false with a trace applied")
	}
	byID := map[string]*ViewNode{}
	for _, n := range v.Nodes {
		byID[n.ID] = n
	}
	if !byID["clean"].Highlighted || byID["audit"].Highlighted || !byID["audit"].Dimmed {
		t.Errorf("highlight flags clean=%v audit=%v/%v", byID["clean"].Highlighted, byID["audit"].Highlighted, byID["audit"].Dimmed)
	}
	if !v.Edges[0].Animated || !v.Edges[1].Dimmed {
		t.Errorf("edge flags = %+v, %+v", v.Edges[0], v.Edges[1])
	}
	if a := byID["raw"].Attributes; a[0].Highlighted || !a[1].Highlighted {
		t.Errorf("raw attribute highlights = %v, %v", a[0].Highlighted, a[1].Highlighted)
	}
}

func TestLayers(t *testing.T) {
	g, _, opts := chain(t)
	v := NewView(g, opts)

	if len(v.Layers) != 2 {
		t.Fatalf("Layers = %v, want bronze and silver", v.Layers)
	}
	silver := v.Layers[1]
	if silver.Name != "silver" || len(silver.Nodes) != 2 {
		t.Errorf("silver = %+v", silver)
	}
	clean, _ := g.Node("clean")
	audit, _ := g.Node("audit")
	if silver.Min.Y != min(clean.Position.Y, audit.Position.Y) {
		t.Errorf("silver Min.Y = %v", silver.Min.Y)
	}
	if silver.Max.Y != max(clean.Position.Y, audit.Position.Y)+opts.CollapsedHeight {
		t.Errorf("silver Max.Y = %v", silver.Max.Y)
	}
}

func TestViewJSONLink(t *testing.T) {
	g, _, opts := chain(t)
	data, err := json.Marshal(NewView(g, opts))
	if err != nil {
		t.Fatal(err)
	}
	var v View
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatal(err)
	}
	v.Link()
	if v.Edges[1].TargetNode == nil || v.Edges[1].TargetNode.ID != "audit" {
		t.Errorf("Link() did not resolve target of %s", v.Edges[1].ID)
	}
}

func TestEmptyView(t *testing.T) {
	v := NewView(graph.New(), layout.Options{})
	if v.Width != 0 || v.Height != 0 || len(v.Layers) != 0 {
		t.Errorf("empty view = %+v", v)
	}
	if v.Orientation != layout.LeftToRight {
		t.Errorf("Orientation = %q, want LR", v.Orientation)
	}
}
