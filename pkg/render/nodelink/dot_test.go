package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/render"
)

func testView() *render.View {
	raw := &render.ViewNode{
		ID:       "raw",
		Label:    "raw.orders",
		Expanded: true,
		Position: graph.Point{X: 50, Y: 50},
		Size:     graph.Size{Width: 260, Height: 177},
		Attributes: []render.ViewAttribute{
			{Name: "id", DataType: "int", IsPrimaryKey: true},
			{Name: "amount", DataType: "decimal"},
		},
	}
	clean := &render.ViewNode{
		ID:       "clean",
		Label:    "clean",
		Position: graph.Point{X: 560, Y: 50},
		Size:     graph.Size{Width: 260, Height: 50},
		Dimmed:   true,
	}
	return &render.View{
		Width:  870,
		Height: 277,
		Nodes:  []*render.ViewNode{raw, clean},
		Edges: []*render.ViewEdge{{
			ID:           "e1",
			Source:       "raw",
			Target:       "clean",
			SourceAttr:   "amount",
			TargetAttr:   "amount",
			SourceHandle: "raw-amount-source",
			TargetHandle: "clean-node-target",
			Label:        "sum",
			Highlighted:  true,
			SourceNode:   raw,
			TargetNode:   clean,
		}, {
			ID:           "loop",
			Source:       "clean",
			Target:       "clean",
			SourceHandle: "clean-node-source",
			TargetHandle: "clean-node-target",
			BackEdge:     true,
			SourceNode:   clean,
			TargetNode:   clean,
		}},
	}
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(testView(), Options{})

	for _, want := range []string{
		"digraph G",
		`"raw" [pos="180.00,138.50!"`,
		`"clean" [pos="690.00,202.00!"`,
		`"raw":f1:e -> "clean" [`,
		`"clean" -> "clean" [`,
		"style=dashed",
		`label="sum"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q\n%s", want, dot)
		}
	}
}

func TestToDOT_Record(t *testing.T) {
	dot := ToDOT(testView(), Options{})
	if !strings.Contains(dot, `label="{raw.orders|<f0> id|<f1> amount}"`) {
		t.Errorf("ToDOT() missing record label:\n%s", dot)
	}
	if !strings.Contains(dot, "shape=record") {
		t.Error("ToDOT() expanded node is not a record")
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(testView(), Options{Detailed: true})
	if !strings.Contains(dot, "<f0> id: int (PK)") {
		t.Errorf("ToDOT() detailed output missing data type:\n%s", dot)
	}
}

func TestToDOT_TraceColors(t *testing.T) {
	dot := ToDOT(testView(), Options{})
	if !strings.Contains(dot, colorHighlight) {
		t.Error("ToDOT() missing highlight color")
	}
	if !strings.Contains(dot, `fontcolor="`+colorDimmed+`"`) {
		t.Error("ToDOT() missing dimmed node color")
	}
}

func TestEscapeRecord(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a|b", `a\|b`},
		{"{x}", `\{x\}`},
		{"<pk>", `\<pk\>`},
	}
	for _, tt := range tests {
		if got := escapeRecord(tt.in); got != tt.want {
			t.Errorf("escapeRecord(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQuote(t *testing.T) {
	if got := quote(`say "hi"`); got != `"say \"hi\""` {
		t.Errorf("quote() = %s", got)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("normalizeViewBox() without viewBox = %s", got)
	}
}
