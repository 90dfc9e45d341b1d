package graph

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	lerrors "github.com/matzehuels/lineage/pkg/errors"
)

func decodeDoc(t *testing.T, s string) RawDocument {
	t.Helper()
	var doc RawDocument
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	return doc
}

func TestBuildDropsInvalidRecords(t *testing.T) {
	doc := decodeDoc(t, `{
		"nodes": [
			{"id": "a", "attributes": [{"name": "x"}, {"name": "x"}, {"name": ""}]},
			{"id": "b", "attributes": [{"name": "y"}]},
			{"id": "a"},
			{"id": ""},
			"garbage"
		],
		"links": [
			{"id": "e1", "source": "a", "target": "b", "sourceAttr": "x", "targetAttr": "y"},
			{"id": "e1", "source": "b", "target": "a"},
			{"id": "e2", "source": "a", "target": "ghost"},
			{"id": "e3", "source": "a", "target": "b", "sourceAttr": "missing"}
		]
	}`)

	g, report := Build(doc, BuildOptions{})

	if g.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, want 2", g.NodeCount())
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}

	counts := map[lerrors.Code]int{
		lerrors.ErrCodeDuplicateNode:    1,
		lerrors.ErrCodeMalformedInput:   2,
		lerrors.ErrCodeDuplicateEdge:    1,
		lerrors.ErrCodeDanglingEdge:     1,
		lerrors.ErrCodeUnknownAttribute: 1,
	}
	for code, want := range counts {
		if got := report.Count(code); got != want {
			t.Errorf("Count(%s) = %d, want %d", code, got, want)
		}
	}
	if report.Dropped() != 5 {
		t.Errorf("Dropped() = %d, want 5", report.Dropped())
	}
	if report.Err() == nil {
		t.Error("Err() = nil, want joined issues")
	}

	a, _ := g.Node("a")
	if len(a.Attributes) != 1 {
		t.Errorf("a attributes = %v, want only the first x", a.Attributes)
	}
	e3, ok := g.Edge("e3")
	if !ok {
		t.Fatal("e3 should be kept with a node-level source")
	}
	if e3.SourceAttr != "" {
		t.Errorf("e3.SourceAttr = %q, want empty", e3.SourceAttr)
	}
}

func TestBuildCleanImport(t *testing.T) {
	doc := decodeDoc(t, `{"nodes": [{"id": "a"}, {"id": "b"}], "links": [{"id": "e", "source": "a", "target": "b"}]}`)
	_, report := Build(doc, BuildOptions{})
	if report.Err() != nil || len(report.Issues) != 0 {
		t.Errorf("Build() issues = %v, want none", report.Issues)
	}
	if report.Nodes != 2 || report.Edges != 1 {
		t.Errorf("report = %d nodes %d edges, want 2, 1", report.Nodes, report.Edges)
	}
}

func TestBuildReportsReservedAttribute(t *testing.T) {
	doc := decodeDoc(t, `{
		"nodes": [{"id": "a", "attributes": [{"name": "node"}, {"name": "x"}]}, {"id": "b"}],
		"links": [{"id": "e1", "source": "a", "target": "b", "sourceAttr": "node"}]
	}`)

	g, report := Build(doc, BuildOptions{})

	if report.Count(lerrors.ErrCodeReservedName) != 1 || report.Dropped() != 0 {
		t.Fatalf("issues = %+v, want one kept RESERVED_NAME issue", report.Issues)
	}
	a, _ := g.Node("a")
	if !a.HasAttribute("node") {
		t.Error("reserved attribute was removed")
	}
	e, _ := g.Edge("e1")
	if e.SourceAttr != "node" {
		t.Errorf("e1.SourceAttr = %q, want node", e.SourceAttr)
	}
}

func TestBuildDegrees(t *testing.T) {
	doc := decodeDoc(t, `{
		"nodes": [{"id": "hub"}, {"id": "a"}, {"id": "b"}, {"id": "c"}],
		"links": [
			{"source": "a", "target": "hub"},
			{"source": "b", "target": "hub"},
			{"source": "c", "target": "hub"},
			{"source": "hub", "target": "a"}
		]
	}`)
	g, _ := Build(doc, BuildOptions{})

	hub, _ := g.Node("hub")
	if hub.InDegree != 3 || hub.OutDegree != 1 {
		t.Errorf("hub degrees = in %d out %d, want in 3 out 1", hub.InDegree, hub.OutDegree)
	}
}

func TestBuildMappingString(t *testing.T) {
	doc := decodeDoc(t, `{
		"nodes": [
			{"id": "Customer", "attributes": ["id", "email"]},
			{"id": "Contact", "attributes": ["email"]}
		],
		"links": [{"id": "m", "source": "Customer", "target": "Contact", "map": "Customer.email -> Contact.email"}]
	}`)
	g, _ := Build(doc, BuildOptions{})
	e, _ := g.Edge("m")
	if e.SourceAttr != "email" || e.TargetAttr != "email" {
		t.Errorf("edge attrs = %q -> %q, want email -> email", e.SourceAttr, e.TargetAttr)
	}
}

func TestBuildGeneratedIDsAreDeterministic(t *testing.T) {
	input := `{"nodes": [{"id": "a"}, {"id": "b"}], "links": [{"source": "a", "target": "b"}, {"source": "a", "target": "b"}]}`
	g1, _ := Build(decodeDoc(t, input), BuildOptions{})
	g2, _ := Build(decodeDoc(t, input), BuildOptions{})

	e1, e2 := g1.Edges(), g2.Edges()
	if e1[0].ID != e2[0].ID || e1[1].ID != e2[1].ID {
		t.Errorf("generated ids differ between builds: %s/%s vs %s/%s", e1[0].ID, e1[1].ID, e2[0].ID, e2[1].ID)
	}
	if e1[0].ID == e1[1].ID {
		t.Errorf("parallel edges share generated id %s", e1[0].ID)
	}
	if !strings.HasPrefix(e1[0].ID, "e-") {
		t.Errorf("generated id = %s, want e- prefix", e1[0].ID)
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	doc := decodeDoc(t, `{"nodes": [{"id": "a", "meta": 1}], "links": [{"id": "e", "source": "a", "target": "a", "w": 2}]}`)
	g, _ := Build(doc, BuildOptions{})

	n, _ := g.Node("a")
	n.Payload["meta"] = json.RawMessage(`99`)
	if string(doc.Nodes[0].Extra["meta"]) != "1" {
		t.Errorf("input payload changed to %s", doc.Nodes[0].Extra["meta"])
	}
}

func TestBuildExportIsIdempotent(t *testing.T) {
	doc := decodeDoc(t, `{
		"nodes": [
			{"id": "P", "name": "Producer", "label": "table", "layer": "bronze", "attributes": [{"name": "k", "isPrimaryKey": true}]},
			{"id": "Q", "name": "Consumer", "layer": "silver", "attributes": ["k", "v"], "extra": {"deep": [1, 2]}}
		],
		"links": [
			{"source": {"id": "P"}, "target": "Q", "sourceAttr": "k", "targetAttr": "k", "type": "copy", "updated_at": "2024-03-01T10:00:00Z"},
			{"source": "P", "target": "Q", "map": "P.k -> Q.v", "logic": "hash(k)"},
			{"source": "Q", "target": "P"},
			{"source": "Q", "target": "Q", "script_name": "self.sql"}
		]
	}`)

	g1, _ := Build(doc, BuildOptions{})
	exported1, err := json.Marshal(g1.Export())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	g2, report := Build(decodeDoc(t, string(exported1)), BuildOptions{})
	if len(report.Issues) != 0 {
		t.Fatalf("rebuild issues = %v", report.Issues)
	}
	exported2, _ := json.Marshal(g2.Export())
	if string(exported1) != string(exported2) {
		t.Errorf("Export() not stable:\n%s\n%s", exported1, exported2)
	}

	curv := func(g *Graph) []float64 {
		var out []float64
		for _, e := range g.Edges() {
			out = append(out, e.Curvature)
		}
		return out
	}
	if !reflect.DeepEqual(curv(g1), curv(g2)) {
		t.Errorf("curvatures differ: %v vs %v", curv(g1), curv(g2))
	}
}
