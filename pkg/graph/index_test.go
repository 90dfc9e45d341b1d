package graph

import (
	"slices"
	"testing"
)

func indexFixture() *Graph {
	g := New()
	_ = g.AddNode(Node{ID: "a", Attributes: []Attribute{{Name: "x"}}})
	_ = g.AddNode(Node{ID: "b", Attributes: []Attribute{{Name: "y"}}})
	_ = g.AddEdge(Edge{ID: "e1", Source: "a", SourceAttr: "x", Target: "b", TargetAttr: "y"})
	_ = g.AddEdge(Edge{ID: "e2", Source: "a", Target: "b"})
	return g
}

func edgeIDs(edges []*Edge) []string {
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.ID
	}
	return ids
}

func TestIndexLookups(t *testing.T) {
	g := indexFixture()
	idx := NewIndex(g)

	tests := []struct {
		name string
		got  []*Edge
		want []string
	}{
		{"from a", idx.EdgesFrom("a"), []string{"e1", "e2"}},
		{"to b", idx.EdgesTo("b"), []string{"e1", "e2"}},
		{"to a", idx.EdgesTo("a"), nil},
		{"from attribute", idx.EdgesFromEndpoint(Endpoint{"a", "x"}), []string{"e1"}},
		{"to attribute", idx.EdgesToEndpoint(Endpoint{"b", "y"}), []string{"e1"}},
		{"from node", idx.EdgesFromEndpoint(NodeEndpoint("a")), []string{"e1", "e2"}},
		{"to node", idx.EdgesToEndpoint(NodeEndpoint("b")), []string{"e1", "e2"}},
		{"unknown node", idx.EdgesFromEndpoint(NodeEndpoint("z")), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := edgeIDs(tt.got)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestIndexStale(t *testing.T) {
	g := indexFixture()
	idx := NewIndex(g)
	if idx.Stale(g) {
		t.Fatal("fresh index reported stale")
	}
	if !idx.Stale(indexFixture()) {
		t.Error("index reported fresh for another graph")
	}
	g.Touch()
	if !idx.Stale(g) {
		t.Error("index not stale after Touch()")
	}
}

func TestIndexEndpointsDoNotCollide(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a", Attributes: []Attribute{{Name: "b-c"}, {Name: "node"}, {Name: "x"}}})
	_ = g.AddNode(Node{ID: "a-b", Attributes: []Attribute{{Name: "c"}}})
	_ = g.AddNode(Node{ID: "p"})
	_ = g.AddEdge(Edge{ID: "dashed", Source: "a", SourceAttr: "b-c", Target: "p"})
	_ = g.AddEdge(Edge{ID: "split", Source: "a-b", SourceAttr: "c", Target: "p"})
	_ = g.AddEdge(Edge{ID: "named", Source: "a", SourceAttr: "node", Target: "p"})
	_ = g.AddEdge(Edge{ID: "other", Source: "a", SourceAttr: "x", Target: "p"})
	idx := NewIndex(g)

	tests := []struct {
		ep   Endpoint
		want []string
	}{
		{Endpoint{"a", "b-c"}, []string{"dashed"}},
		{Endpoint{"a-b", "c"}, []string{"split"}},
		{Endpoint{"a", "node"}, []string{"named"}},
		{NodeEndpoint("a"), []string{"dashed", "named", "other"}},
	}
	for _, tt := range tests {
		got := edgeIDs(idx.EdgesFromEndpoint(tt.ep))
		if !slices.Equal(got, tt.want) {
			t.Errorf("EdgesFromEndpoint(%+v) = %v, want %v", tt.ep, got, tt.want)
		}
	}
}
