package graph

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	lerrors "github.com/matzehuels/lineage/pkg/errors"
)

// edgeNamespace seeds the name-based UUIDs given to links without an id.
var edgeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/matzehuels/lineage/edge"))

// BuildOptions configures [Build].
type BuildOptions struct {
	// Spread is the curvature step between parallel edges. Zero or negative
	// selects DefaultSpread.
	Spread float64

	// Logger receives one Warn line per dropped or degraded record and a
	// Debug summary. Nil discards output.
	Logger *log.Logger
}

// Issue describes one imported record the builder dropped or degraded.
type Issue struct {
	Record string // "node" or "link"
	Index  int    // position in the imported list
	ID     string // record id, when known
	Err    *lerrors.Error
}

// Dropped reports whether the record was removed from the graph. Records with
// an unknown attribute reference are kept with a node-level endpoint instead,
// and nodes declaring the reserved attribute name are kept as they are.
func (i Issue) Dropped() bool {
	return i.Err.Code != lerrors.ErrCodeUnknownAttribute && i.Err.Code != lerrors.ErrCodeReservedName
}

// BuildReport summarises a [Build] run.
type BuildReport struct {
	Nodes  int // nodes kept
	Edges  int // edges kept
	Issues []Issue
}

// Count returns the number of issues with the given code.
func (r *BuildReport) Count(code lerrors.Code) int {
	n := 0
	for _, is := range r.Issues {
		if is.Err.Code == code {
			n++
		}
	}
	return n
}

// Dropped returns the number of records removed from the graph.
func (r *BuildReport) Dropped() int {
	n := 0
	for _, is := range r.Issues {
		if is.Dropped() {
			n++
		}
	}
	return n
}

// Err joins all issues into one error, or returns nil when the import was clean.
func (r *BuildReport) Err() error {
	errs := make([]error, len(r.Issues))
	for i, is := range r.Issues {
		errs[i] = is.Err
	}
	return errors.Join(errs...)
}

// Build normalises an imported document into a [Graph].
//
// Nodes with an empty, malformed or duplicate id are dropped, as are links
// with a duplicate id or an endpoint that names no kept node. A link that
// references an attribute its node does not declare keeps a node-level
// endpoint on that side. A node with an attribute named [ReservedAttribute]
// is kept but reported, since that attribute's handle name coincides with
// the node-level one. Every such record is logged and listed in the report;
// Build itself never fails.
//
// Links without an id receive a name-based UUID derived from their position
// and endpoints, so building the output of [Graph.Export] again yields the
// same graph. Curvature is assigned before returning. The document is not
// modified; payloads are copied.
func Build(doc RawDocument, opts BuildOptions) (*Graph, *BuildReport) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	spread := opts.Spread
	if spread <= 0 {
		spread = DefaultSpread
	}

	g := New()
	report := &BuildReport{}
	issue := func(record string, i int, id string, err *lerrors.Error) {
		is := Issue{Record: record, Index: i, ID: id, Err: err}
		report.Issues = append(report.Issues, is)
		verb := " skipped"
		if !is.Dropped() {
			verb = " degraded"
		}
		logger.Warn("import: "+record+verb, "index", i, "id", id, "code", err.Code, "reason", err.Message)
	}

	for i, rn := range doc.Nodes {
		if err := rn.Err(); err != nil {
			issue("node", i, "", lerrors.Wrap(lerrors.ErrCodeMalformedInput, err, "node #%d", i))
			continue
		}
		if err := lerrors.ValidateID("node", rn.ID); err != nil {
			issue("node", i, rn.ID, asError(err))
			continue
		}
		err := g.AddNode(Node{
			ID:          rn.ID,
			DisplayName: rn.Name,
			Category:    rn.Category,
			Layer:       rn.Layer,
			Schema:      rn.Schema,
			Attributes:  buildAttributes(rn.Attributes),
			Payload:     rn.Extra.Clone(),
		})
		switch {
		case errors.Is(err, ErrDuplicateNodeID):
			issue("node", i, rn.ID, lerrors.New(lerrors.ErrCodeDuplicateNode, "node %s already defined", rn.ID))
		case err == nil && g.nodes[rn.ID].HasAttribute(ReservedAttribute):
			issue("node", i, rn.ID, lerrors.New(lerrors.ErrCodeReservedName,
				"node %s: attribute %q shares its handle name with the node-level handle", rn.ID, ReservedAttribute))
		}
	}

	for i, rl := range doc.Links {
		if err := rl.Err(); err != nil {
			issue("link", i, "", lerrors.Wrap(lerrors.ErrCodeMalformedInput, err, "link #%d", i))
			continue
		}
		e, degraded, err := buildEdge(g, i, rl)
		if err != nil {
			issue("link", i, rl.ID, err)
			continue
		}
		for _, d := range degraded {
			issue("link", i, e.ID, d)
		}
		if errors.Is(g.AddEdge(e), ErrDuplicateEdgeID) {
			issue("link", i, e.ID, lerrors.New(lerrors.ErrCodeDuplicateEdge, "link %s already defined", e.ID))
		}
	}

	AssignCurvature(g.edges, spread)

	report.Nodes, report.Edges = g.NodeCount(), g.EdgeCount()
	logger.Debug("import: graph built", "nodes", report.Nodes, "edges", report.Edges, "issues", len(report.Issues))
	return g, report
}

// buildAttributes copies attribute records, skipping unnamed ones and later
// duplicates of a name.
func buildAttributes(raw []RawAttribute) []Attribute {
	if len(raw) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(raw))
	attrs := make([]Attribute, 0, len(raw))
	for _, ra := range raw {
		if ra.Name == "" || seen[ra.Name] {
			continue
		}
		seen[ra.Name] = true
		attrs = append(attrs, Attribute{Name: ra.Name, DataType: ra.DataType, IsPrimaryKey: ra.IsPrimaryKey})
	}
	return attrs
}

// buildEdge resolves one link against the nodes already in g. It returns the
// edge to add, any attribute references that had to be degraded, or the
// error that drops the link.
func buildEdge(g *Graph, i int, rl RawLink) (Edge, []*lerrors.Error, *lerrors.Error) {
	src, ok := g.nodes[rl.Source]
	if !ok {
		return Edge{}, nil, lerrors.New(lerrors.ErrCodeDanglingEdge, "link #%d: unknown source %q", i, rl.Source)
	}
	dst, ok := g.nodes[rl.Target]
	if !ok {
		return Edge{}, nil, lerrors.New(lerrors.ErrCodeDanglingEdge, "link #%d: unknown target %q", i, rl.Target)
	}

	srcAttr, dstAttr := rl.SourceAttr, rl.TargetAttr
	if rl.Map != "" && (srcAttr == "" || dstAttr == "") {
		if ms, mt, ok := ParseMapping(rl.Map); ok {
			if srcAttr == "" {
				srcAttr = ms
			}
			if dstAttr == "" {
				dstAttr = mt
			}
		}
	}

	var degraded []*lerrors.Error
	if srcAttr != "" && !src.HasAttribute(srcAttr) {
		degraded = append(degraded, lerrors.New(lerrors.ErrCodeUnknownAttribute,
			"link #%d: node %s has no attribute %q, using node-level source", i, src.ID, srcAttr))
		srcAttr = ""
	}
	if dstAttr != "" && !dst.HasAttribute(dstAttr) {
		degraded = append(degraded, lerrors.New(lerrors.ErrCodeUnknownAttribute,
			"link #%d: node %s has no attribute %q, using node-level target", i, dst.ID, dstAttr))
		dstAttr = ""
	}

	id := rl.ID
	if id == "" {
		id = deterministicEdgeID(i, src.ID, srcAttr, dst.ID, dstAttr)
	} else if err := lerrors.ValidateID("link", id); err != nil {
		return Edge{}, nil, asError(err)
	}

	return Edge{
		ID:         id,
		Source:     src.ID,
		Target:     dst.ID,
		SourceAttr: srcAttr,
		TargetAttr: dstAttr,
		Label:      rl.Type,
		UpdatedAt:  rl.UpdatedAt,
		Logic:      rl.Logic,
		ScriptName: rl.ScriptName,
		Payload:    rl.Extra.Clone(),
	}, degraded, nil
}

func deterministicEdgeID(i int, src, srcAttr, dst, dstAttr string) string {
	name := fmt.Sprintf("%d:%s:%s:%s:%s", i, src, srcAttr, dst, dstAttr)
	return "e-" + uuid.NewSHA1(edgeNamespace, []byte(name)).String()
}

func asError(err error) *lerrors.Error {
	var e *lerrors.Error
	if errors.As(err, &e) {
		return e
	}
	return lerrors.Wrap(lerrors.ErrCodeInternal, err, "unexpected error")
}

// Export returns the canonical import document for g. Building the result
// again yields a graph with identical nodes, edges and curvatures.
func (g *Graph) Export() RawDocument {
	doc := RawDocument{
		Nodes: make([]RawNode, 0, len(g.order)),
		Links: make([]RawLink, 0, len(g.edges)),
	}
	for _, n := range g.order {
		rn := RawNode{
			ID:       n.ID,
			Name:     n.DisplayName,
			Category: n.Category,
			Schema:   n.Schema,
			Layer:    n.Layer,
			Extra:    n.Payload.Clone(),
		}
		for _, a := range n.Attributes {
			rn.Attributes = append(rn.Attributes, RawAttribute{Name: a.Name, DataType: a.DataType, IsPrimaryKey: a.IsPrimaryKey})
		}
		doc.Nodes = append(doc.Nodes, rn)
	}
	for _, e := range g.edges {
		doc.Links = append(doc.Links, RawLink{
			ID:         e.ID,
			Source:     e.Source,
			Target:     e.Target,
			SourceAttr: e.SourceAttr,
			TargetAttr: e.TargetAttr,
			Type:       e.Label,
			UpdatedAt:  e.UpdatedAt,
			Logic:      e.Logic,
			ScriptName: e.ScriptName,
			Extra:      e.Payload.Clone(),
		})
	}
	return doc
}
