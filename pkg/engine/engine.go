package engine

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lineage/pkg/config"
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/expand"
	"github.com/matzehuels/lineage/pkg/force"
	"github.com/matzehuels/lineage/pkg/graph"
	lio "github.com/matzehuels/lineage/pkg/io"
	"github.com/matzehuels/lineage/pkg/layout"
	"github.com/matzehuels/lineage/pkg/observability"
	"github.com/matzehuels/lineage/pkg/render"
	"github.com/matzehuels/lineage/pkg/trace"
)

// Options configures an [Engine].
type Options struct {
	Layout layout.Options
	Force  force.Config
	Spread float64 // curvature spread, graph.DefaultSpread when zero
	Logger *log.Logger
}

// DefaultOptions returns the built-in settings.
func DefaultOptions() Options {
	return FromConfig(config.Default(), nil)
}

// FromConfig converts a loaded configuration.
func FromConfig(cfg config.Config, logger *log.Logger) Options {
	return Options{
		Layout: cfg.LayoutOptions(),
		Force:  cfg.Force,
		Spread: cfg.Curvature.Spread,
		Logger: logger,
	}
}

// Engine ties the lineage components together around one graph: it builds
// the graph, keeps it laid out, and answers the renderer's callbacks.
//
// Engine is not safe for concurrent use.
type Engine struct {
	g      *graph.Graph
	report *graph.BuildReport
	idx    *graph.Index
	coord  *expand.Coordinator
	opts   Options
	logger *log.Logger

	layout *layout.Result
	trace  trace.Result
}

// New builds a graph from doc and computes its initial layout with every
// node collapsed. Dropped records are available from [Engine.Report]; New
// only fails when the options are invalid or ctx is done.
func New(ctx context.Context, doc graph.RawDocument, opts Options) (*Engine, error) {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if err := opts.Layout.Validate(); err != nil {
		return nil, err
	}
	if opts.Force == (force.Config{}) {
		opts.Force = force.DefaultConfig()
	}
	opts.Layout.Logger = opts.Logger

	start := time.Now()
	g, report := graph.Build(doc, graph.BuildOptions{Spread: opts.Spread, Logger: opts.Logger})
	observability.Engine().OnBuild(ctx, g.NodeCount(), g.EdgeCount(), report.Dropped(), time.Since(start))

	e := &Engine{
		g:      g,
		report: report,
		opts:   opts,
		logger: opts.Logger,
	}
	e.coord = expand.NewCoordinator(g, expand.Options{
		Sizer:      opts.Layout,
		Relayouter: e,
		Logger:     opts.Logger,
	})
	if err := e.Relayout(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// Load imports the document at path and creates an engine for it.
func Load(ctx context.Context, path string, opts Options) (*Engine, error) {
	doc, err := lio.Import(path)
	if err != nil {
		return nil, err
	}
	return New(ctx, doc, opts)
}

// Graph returns the underlying graph. Callers must not change its topology.
func (e *Engine) Graph() *graph.Graph { return e.g }

// Report returns the build report.
func (e *Engine) Report() *graph.BuildReport { return e.report }

// LayoutResult returns the most recent layout.
func (e *Engine) LayoutResult() *layout.Result { return e.layout }

// Orientation returns the current layout orientation.
func (e *Engine) Orientation() layout.Orientation { return e.opts.Layout.WithDefaults().Orientation }

// Relayout recomputes the hierarchical layout from scratch and applies it.
// The graph is left untouched when ctx is done before the layout finishes.
func (e *Engine) Relayout(ctx context.Context) error {
	start := time.Now()
	res, err := layout.Compute(ctx, e.g, e.opts.Layout)
	rounds := 0
	if res != nil {
		rounds = res.Rounds
	}
	observability.Engine().OnLayout(ctx, e.g.NodeCount(), rounds, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	layout.Apply(e.g, res)
	e.layout = res
	return nil
}

// View returns the render-ready projection of the current state.
func (e *Engine) View() *render.View {
	return render.NewView(e.g, e.opts.Layout)
}

// index returns an adjacency index that matches the current graph revision.
func (e *Engine) index() *graph.Index {
	if e.idx == nil || e.idx.Stale(e.g) {
		e.idx = graph.NewIndex(e.g)
	}
	return e.idx
}

// =============================================================================
// Renderer callbacks
// =============================================================================

// OnAttributeClick traces the lineage of attr on nodeID and applies it:
// everything on the lineage is highlighted and the rest dimmed. An unknown
// node or attribute yields an empty result and clears any previous trace.
func (e *Engine) OnAttributeClick(ctx context.Context, nodeID, attr string) trace.Result {
	res := trace.Run(e.g, e.index(), nodeID, attr)
	trace.Apply(e.g, res)
	e.trace = res
	observability.Engine().OnTrace(ctx, nodeID, attr, len(res.Nodes), len(res.Edges))
	if res.Empty() {
		e.logger.Debug("trace: nothing to highlight", "node", nodeID, "attr", attr)
	}
	return res
}

// OnNodeToggle flips the expanded state of nodeID and re-lays the graph out.
// It returns the new state. An unknown node is ignored and reported as
// collapsed; the error is only set when the re-layout fails, in which case
// the node keeps its previous state and the previous layout stays in place.
func (e *Engine) OnNodeToggle(ctx context.Context, nodeID string) (bool, error) {
	if _, ok := e.g.Node(nodeID); !ok {
		e.logger.Debug("toggle: unknown node", "node", nodeID)
		return false, nil
	}
	expanded, err := e.coord.Toggle(ctx, nodeID)
	if err == nil {
		observability.Engine().OnToggle(ctx, "toggle", 1)
	}
	return expanded, err
}

// OnNodeHover highlights nodeID and its direct neighbours and dims the rest.
// The attribute trace in effect is kept and comes back with
// [Engine.OnNodeLeave]. An unknown node shows that trace instead.
func (e *Engine) OnNodeHover(nodeID string) trace.Result {
	res := trace.Neighborhood(e.g, e.index(), nodeID)
	if res.Empty() {
		e.logger.Debug("hover: unknown node", "node", nodeID)
		trace.Apply(e.g, e.trace)
		return res
	}
	trace.Apply(e.g, res)
	return res
}

// OnNodeLeave ends a hover and restores the current attribute trace, or
// clears all highlighting when there is none.
func (e *Engine) OnNodeLeave() {
	trace.Apply(e.g, e.trace)
}

// =============================================================================
// Operations
// =============================================================================

// Trace returns the trace currently applied, or an empty result.
func (e *Engine) Trace() trace.Result { return e.trace }

// Reset removes the current trace highlighting.
func (e *Engine) Reset() {
	trace.Clear(e.g)
	e.trace = trace.Result{}
}

// SetOrientation switches between "LR" and "TB" and re-lays the graph out.
// Setting the current orientation again does nothing.
func (e *Engine) SetOrientation(ctx context.Context, s string) error {
	o, err := layout.ParseOrientation(s)
	if err != nil {
		return err
	}
	prev := e.opts.Layout.Orientation
	if o == e.Orientation() {
		return nil
	}
	e.opts.Layout.Orientation = o
	if err := e.Relayout(ctx); err != nil {
		e.opts.Layout.Orientation = prev
		return err
	}
	return nil
}

// Focus expands nodeID if needed and returns its centre, for the viewport to
// pan to.
func (e *Engine) Focus(ctx context.Context, nodeID string) (graph.Point, error) {
	was := e.coord.Expanded(nodeID)
	p, err := e.coord.Focus(ctx, nodeID)
	if err == nil && !was {
		observability.Engine().OnToggle(ctx, "focus", 1)
	}
	return p, err
}

// ExpandAll expands every node with a single re-layout.
func (e *Engine) ExpandAll(ctx context.Context) (int, error) {
	n, err := e.coord.ExpandAll(ctx)
	if err == nil {
		observability.Engine().OnToggle(ctx, "expand_all", n)
	}
	return n, err
}

// CollapseAll collapses every node with a single re-layout.
func (e *Engine) CollapseAll(ctx context.Context) (int, error) {
	n, err := e.coord.CollapseAll(ctx)
	if err == nil {
		observability.Engine().OnToggle(ctx, "collapse_all", n)
	}
	return n, err
}

// Search returns the nodes whose display name or id contains query,
// ignoring case, in graph order. An empty query matches every node.
func (e *Engine) Search(query string) []*graph.Node {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []*graph.Node
	for _, n := range e.g.Nodes() {
		if q == "" || strings.Contains(strings.ToLower(n.Label()), q) || strings.Contains(strings.ToLower(n.ID), q) {
			out = append(out, n)
		}
	}
	return out
}

// Node returns the node with the given id, for detail views.
func (e *Engine) Node(id string) (*graph.Node, error) {
	n, ok := e.g.Node(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownNode, "unknown node %q", id)
	}
	return n, nil
}

// Edge returns the edge with the given id, for detail views.
func (e *Engine) Edge(id string) (*graph.Edge, error) {
	ed, ok := e.g.Edge(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownEdge, "unknown edge %q", id)
	}
	return ed, nil
}

// Neighborhood returns the direct neighbourhood of a node without applying
// it.
func (e *Engine) Neighborhood(id string) (trace.Result, error) {
	if _, ok := e.g.Node(id); !ok {
		return trace.Result{}, errors.New(errors.ErrCodeUnknownNode, "unknown node %q", id)
	}
	return trace.Neighborhood(e.g, e.index(), id), nil
}

// ForceParams derives force simulation parameters for the current graph.
func (e *Engine) ForceParams() force.Params {
	return force.Configure(e.g, e.opts.Force)
}
