package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/lineage/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds data types and primary-key markers to attribute rows.
	Detailed bool
}

const (
	colorHighlight = "#f59e0b"
	colorDimmed    = "#cbd5e1"
	colorEdge      = "#64748b"
	colorPrimary   = "#0f172a"
)

// ToDOT converts a view to Graphviz DOT with every node pinned at its laid
// out position. Expanded nodes become record shapes with one field per
// attribute, and attribute-level edges attach to the matching field.
func ToDOT(v *render.View, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  notranslate=true;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, fixedsize=true];\n")
	buf.WriteString("  edge [fontsize=10, arrowsize=0.7];\n")
	buf.WriteString("\n")

	for _, n := range v.Nodes {
		fmt.Fprintf(&buf, "  %s [%s];\n", quote(n.ID), strings.Join(nodeAttrs(v, n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range v.Edges {
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n",
			endpoint(e.SourceNode, e.Source, e.SourceAttr, string(e.SourceHandle), "e"),
			endpoint(e.TargetNode, e.Target, e.TargetAttr, string(e.TargetHandle), "w"),
			strings.Join(edgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(v *render.View, n *render.ViewNode, opts Options) []string {
	cx := n.Position.X + n.Size.Width/2
	cy := v.Height - (n.Position.Y + n.Size.Height/2)
	attrs := []string{
		fmt.Sprintf("pos=\"%.2f,%.2f!\"", cx, cy),
		fmt.Sprintf("width=%.3f", n.Size.Width/72),
		fmt.Sprintf("height=%.3f", n.Size.Height/72),
	}
	if n.Expanded && len(n.Attributes) > 0 {
		attrs = append(attrs, "shape=record", "label="+quote(recordLabel(n, opts)))
	} else {
		attrs = append(attrs, "label="+quote(escapeRecord(n.Label)))
	}
	switch {
	case n.Dimmed:
		attrs = append(attrs, "color=\""+colorDimmed+"\"", "fontcolor=\""+colorDimmed+"\"")
	case n.Highlighted:
		attrs = append(attrs, "color=\""+colorHighlight+"\"", "penwidth=2")
	}
	if n.Category != "" {
		attrs = append(attrs, "tooltip="+quote(n.Category))
	}
	return attrs
}

func recordLabel(n *render.ViewNode, opts Options) string {
	fields := []string{escapeRecord(n.Label)}
	for i, a := range n.Attributes {
		text := a.Name
		if opts.Detailed {
			if a.DataType != "" {
				text += ": " + a.DataType
			}
			if a.IsPrimaryKey {
				text += " (PK)"
			}
		}
		fields = append(fields, fmt.Sprintf("<f%d> %s", i, escapeRecord(text)))
	}
	return "{" + strings.Join(fields, "|") + "}"
}

// endpoint returns the DOT node reference for one side of an edge, with a
// record port when the edge is drawn at an attribute handle.
func endpoint(n *render.ViewNode, id, attr, handle, compass string) string {
	ref := quote(id)
	if n == nil || !n.Expanded || attr == "" || strings.HasSuffix(handle, "-node-source") || strings.HasSuffix(handle, "-node-target") {
		return ref
	}
	for i, a := range n.Attributes {
		if a.Name == attr {
			return fmt.Sprintf("%s:f%d:%s", ref, i, compass)
		}
	}
	return ref
}

func edgeAttrs(e *render.ViewEdge) []string {
	var attrs []string
	switch {
	case e.Highlighted:
		attrs = append(attrs, "color=\""+colorHighlight+"\"", "penwidth=2")
	case e.Dimmed:
		attrs = append(attrs, "color=\""+colorDimmed+"\"")
	default:
		attrs = append(attrs, "color=\""+colorEdge+"\"")
	}
	if e.BackEdge {
		attrs = append(attrs, "style=dashed")
	}
	if e.Label != "" {
		attrs = append(attrs, "label="+quote(e.Label), "fontcolor=\""+colorPrimary+"\"")
	}
	return attrs
}

// quote returns s as a DOT double-quoted string. Backslashes are kept as is
// so record escapes survive.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

var recordSpecial = strings.NewReplacer(
	`\`, `\\`,
	`{`, `\{`,
	`}`, `\}`,
	`|`, `\|`,
	`<`, `\<`,
	`>`, `\>`,
)

func escapeRecord(s string) string { return recordSpecial.Replace(s) }

// RenderSVG renders DOT produced by [ToDOT] to SVG. Nodes keep their pinned
// positions, so the picture matches the hierarchical layout.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders DOT as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders DOT as PNG via SVG conversion at the given scale.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
