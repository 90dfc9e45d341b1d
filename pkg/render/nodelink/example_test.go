package nodelink_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/layout"
	"github.com/matzehuels/lineage/pkg/render"
	"github.com/matzehuels/lineage/pkg/render/nodelink"
)

func ExampleToDOT() {
	g := graph.New()
	_ = g.AddNode(graph.Node{ID: "orders"})
	_ = g.AddNode(graph.Node{ID: "revenue"})
	_ = g.AddEdge(graph.Edge{ID: "e1", Source: "orders", Target: "revenue"})

	opts := layout.DefaultOptions()
	_, _ = layout.Layout(context.Background(), g, opts)

	dot := nodelink.ToDOT(render.NewView(g, opts), nodelink.Options{})
	fmt.Println(strings.Contains(dot, `"orders" -> "revenue"`))
	// Output:
	// true
}
