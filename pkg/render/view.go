package render

import (
	"slices"

	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/layout"
)

// View is the render-ready projection of a laid-out lineage graph. It is a
// snapshot: later changes to the graph are not reflected.
type View struct {
	Orientation layout.Orientation `json:"orientation"`
	Width       float64            `json:"width"`
	Height      float64            `json:"height"`
	Nodes       []*ViewNode        `json:"nodes"`
	Edges       []*ViewEdge        `json:"edges"`
	Layers      []Layer            `json:"layers,omitempty"`

	// Traced is true while a lineage trace is applied.
	Traced bool `json:"traced"`

	byID map[string]*ViewNode
}

// ViewNode is a node box with its attribute rows.
type ViewNode struct {
	ID          string          `json:"id"`
	Label       string          `json:"label"`
	Category    string          `json:"category,omitempty"`
	Layer       string          `json:"layer,omitempty"`
	Schema      string          `json:"schema,omitempty"`
	Expanded    bool            `json:"expanded"`
	Rank        int             `json:"rank"`
	Position    graph.Point     `json:"position"`
	Size        graph.Size      `json:"size"`
	InDegree    int             `json:"inDegree"`
	OutDegree   int             `json:"outDegree"`
	Attributes  []ViewAttribute `json:"attributes,omitempty"`
	Dimmed      bool            `json:"dimmed,omitempty"`
	Highlighted bool            `json:"highlighted,omitempty"`
	Payload     graph.Payload   `json:"payload,omitempty"`

	// SourceAnchor and TargetAnchor are the node-level handle points.
	SourceAnchor graph.Point `json:"sourceAnchor"`
	TargetAnchor graph.Point `json:"targetAnchor"`
}

// ViewAttribute is one attribute row. Anchors are only set while the node is
// expanded.
type ViewAttribute struct {
	Name         string       `json:"name"`
	DataType     string       `json:"dataType,omitempty"`
	IsPrimaryKey bool         `json:"isPrimaryKey,omitempty"`
	Highlighted  bool         `json:"highlighted,omitempty"`
	SourceAnchor *graph.Point `json:"sourceAnchor,omitempty"`
	TargetAnchor *graph.Point `json:"targetAnchor,omitempty"`
}

// ViewEdge is an edge between two handles. From and To are the resolved
// anchor points of SourceHandle and TargetHandle.
type ViewEdge struct {
	ID           string       `json:"id"`
	Source       string       `json:"source"`
	Target       string       `json:"target"`
	SourceAttr   string       `json:"sourceAttr,omitempty"`
	TargetAttr   string       `json:"targetAttr,omitempty"`
	SourceHandle graph.Handle `json:"sourceHandle"`
	TargetHandle graph.Handle `json:"targetHandle"`
	Label        string       `json:"label,omitempty"`
	UpdatedAt    string       `json:"updatedAt,omitempty"`
	Curvature    float64      `json:"curvature"`
	From         graph.Point  `json:"from"`
	To           graph.Point  `json:"to"`
	BackEdge     bool         `json:"backEdge,omitempty"`
	Highlighted  bool         `json:"highlighted,omitempty"`
	Dimmed       bool         `json:"dimmed,omitempty"`
	Animated     bool         `json:"animated,omitempty"`

	// SourceNode and TargetNode point into View.Nodes.
	SourceNode *ViewNode `json:"-"`
	TargetNode *ViewNode `json:"-"`
}

// Layer is a band of nodes sharing a Layer tag, with their bounding box.
type Layer struct {
	Name  string      `json:"name"`
	Nodes []string    `json:"nodes"`
	Min   graph.Point `json:"min"`
	Max   graph.Point `json:"max"`
}

// NewView projects g. Positions and sizes are taken from the graph as they
// were last applied by the layout engine; opts must match the options used
// for that layout so attribute anchors line up with the rows.
func NewView(g *graph.Graph, opts layout.Options) *View {
	opts = opts.WithDefaults()
	v := &View{
		Orientation: opts.Orientation,
		byID:        make(map[string]*ViewNode, g.NodeCount()),
	}

	for _, n := range g.Nodes() {
		vn := projectNode(n, opts)
		v.Nodes = append(v.Nodes, vn)
		v.byID[n.ID] = vn
		v.Width = max(v.Width, n.Position.X+n.Size.Width)
		v.Height = max(v.Height, n.Position.Y+n.Size.Height)
		if n.Dimmed || len(n.HighlightedAttrs) > 0 {
			v.Traced = true
		}
	}
	if len(v.Nodes) > 0 {
		v.Width += opts.MarginX
		v.Height += opts.MarginY
	}

	for _, e := range g.Edges() {
		src, _ := g.Node(e.Source)
		dst, _ := g.Node(e.Target)
		srcAttr, dstAttr := "", ""
		if e.SourceHandle == e.AttributeSourceHandle() {
			srcAttr = e.SourceAttr
		}
		if e.TargetHandle == e.AttributeTargetHandle() {
			dstAttr = e.TargetAttr
		}
		v.Edges = append(v.Edges, &ViewEdge{
			ID:           e.ID,
			Source:       e.Source,
			Target:       e.Target,
			SourceAttr:   e.SourceAttr,
			TargetAttr:   e.TargetAttr,
			SourceHandle: e.SourceHandle,
			TargetHandle: e.TargetHandle,
			Label:        e.Label,
			UpdatedAt:    e.UpdatedAt,
			Curvature:    e.Curvature,
			From:         layout.Anchor(src, srcAttr, true, opts),
			To:           layout.Anchor(dst, dstAttr, false, opts),
			BackEdge:     e.BackEdge,
			Highlighted:  e.Highlighted,
			Dimmed:       e.Dimmed,
			Animated:     e.Animated,
			SourceNode:   v.byID[e.Source],
			TargetNode:   v.byID[e.Target],
		})
	}

	v.Layers = bandLayers(v.Nodes)
	return v
}

// Node returns the projected node with the given id.
func (v *View) Node(id string) (*ViewNode, bool) {
	if v.byID == nil {
		v.byID = make(map[string]*ViewNode, len(v.Nodes))
		for _, n := range v.Nodes {
			v.byID[n.ID] = n
		}
	}
	n, ok := v.byID[id]
	return n, ok
}

// Link resolves SourceNode and TargetNode after a View was decoded from
// JSON.
func (v *View) Link() {
	v.byID = nil
	for _, e := range v.Edges {
		e.SourceNode, _ = v.Node(e.Source)
		e.TargetNode, _ = v.Node(e.Target)
	}
}

func projectNode(n *graph.Node, opts layout.Options) *ViewNode {
	vn := &ViewNode{
		ID:           n.ID,
		Label:        n.Label(),
		Category:     n.Category,
		Layer:        n.Layer,
		Schema:       n.Schema,
		Expanded:     n.Expanded,
		Rank:         n.Rank,
		Position:     n.Position,
		Size:         n.Size,
		InDegree:     n.InDegree,
		OutDegree:    n.OutDegree,
		Dimmed:       n.Dimmed,
		Highlighted:  len(n.HighlightedAttrs) > 0,
		Payload:      n.Payload,
		SourceAnchor: layout.NodeAnchor(n, true, opts.Orientation),
		TargetAnchor: layout.NodeAnchor(n, false, opts.Orientation),
	}
	for _, a := range n.Attributes {
		va := ViewAttribute{
			Name:         a.Name,
			DataType:     a.DataType,
			IsPrimaryKey: a.IsPrimaryKey,
			Highlighted:  slices.Contains(n.HighlightedAttrs, a.Name),
		}
		if p, ok := layout.AttributeAnchor(n, a.Name, true, opts); ok {
			va.SourceAnchor = &p
		}
		if p, ok := layout.AttributeAnchor(n, a.Name, false, opts); ok {
			va.TargetAnchor = &p
		}
		vn.Attributes = append(vn.Attributes, va)
	}
	return vn
}

func bandLayers(nodes []*ViewNode) []Layer {
	var layers []Layer
	pos := make(map[string]int)
	for _, n := range nodes {
		if n.Layer == "" {
			continue
		}
		lo := n.Position
		hi := graph.Point{X: n.Position.X + n.Size.Width, Y: n.Position.Y + n.Size.Height}
		i, ok := pos[n.Layer]
		if !ok {
			pos[n.Layer] = len(layers)
			layers = append(layers, Layer{Name: n.Layer, Nodes: []string{n.ID}, Min: lo, Max: hi})
			continue
		}
		l := &layers[i]
		l.Nodes = append(l.Nodes, n.ID)
		l.Min = graph.Point{X: min(l.Min.X, lo.X), Y: min(l.Min.Y, lo.Y)}
		l.Max = graph.Point{X: max(l.Max.X, hi.X), Y: max(l.Max.Y, hi.Y)}
	}
	return layers
}
