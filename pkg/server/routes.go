package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/lineage/pkg/buildinfo"
	"github.com/matzehuels/lineage/pkg/engine"
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/render"
	"github.com/matzehuels/lineage/pkg/render/nodelink"
	"github.com/matzehuels/lineage/pkg/trace"
)

func (s *Server) routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/view", s.handleView)
		r.Get("/report", s.handleReport)
		r.Get("/search", s.handleSearch)
		r.Get("/force", s.handleForce)
		r.Get("/svg", s.handleSVG)
		r.Get("/events", s.handleEvents)
		r.Get("/version", handleVersion)

		r.Post("/trace", s.handleTrace)
		r.Delete("/trace", s.handleReset)
		r.Post("/orientation", s.handleOrientation)
		r.Post("/expand-all", s.handleExpandAll)
		r.Post("/collapse-all", s.handleCollapseAll)
		r.Delete("/hover", s.handleLeave)

		r.Route("/nodes/{id}", func(r chi.Router) {
			r.Get("/", s.handleNode)
			r.Post("/toggle", s.handleToggle)
			r.Post("/focus", s.handleFocus)
			r.Get("/neighborhood", s.handleNeighborhood)
			r.Post("/hover", s.handleHover)
		})
		r.Get("/edges/{id}", s.handleEdge)
	})
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

// =============================================================================
// Response types
// =============================================================================

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

type traceResponse struct {
	Focus trace.Focus         `json:"focus"`
	Nodes []string            `json:"nodes"`
	Edges []string            `json:"edges"`
	Attrs map[string][]string `json:"attrs"`
	View  *render.View        `json:"view,omitempty"`
}

type toggleResponse struct {
	ID       string       `json:"id"`
	Expanded bool         `json:"expanded"`
	View     *render.View `json:"view"`
}

type countResponse struct {
	Changed int          `json:"changed"`
	View    *render.View `json:"view"`
}

type attributeResponse struct {
	Name         string `json:"name"`
	DataType     string `json:"dataType,omitempty"`
	IsPrimaryKey bool   `json:"isPrimaryKey,omitempty"`
}

type nodeResponse struct {
	ID         string              `json:"id"`
	Label      string              `json:"label"`
	Category   string              `json:"category,omitempty"`
	Layer      string              `json:"layer,omitempty"`
	Schema     string              `json:"schema,omitempty"`
	Attributes []attributeResponse `json:"attributes"`
	Expanded   bool                `json:"expanded"`
	InDegree   int                 `json:"inDegree"`
	OutDegree  int                 `json:"outDegree"`
	Upstream   []string            `json:"upstream"`
	Downstream []string            `json:"downstream"`
	Payload    graph.Payload       `json:"payload,omitempty"`
	Position   graph.Point         `json:"position"`
	Size       graph.Size          `json:"size"`
}

type edgeResponse struct {
	ID         string        `json:"id"`
	Source     string        `json:"source"`
	Target     string        `json:"target"`
	SourceAttr string        `json:"sourceAttr,omitempty"`
	TargetAttr string        `json:"targetAttr,omitempty"`
	Label      string        `json:"label,omitempty"`
	UpdatedAt  string        `json:"updatedAt,omitempty"`
	Logic      string        `json:"logic,omitempty"`
	ScriptName string        `json:"scriptName,omitempty"`
	BackEdge   bool          `json:"backEdge"`
	Payload    graph.Payload `json:"payload,omitempty"`
}

type issueResponse struct {
	Record  string      `json:"record"`
	Index   int         `json:"index"`
	ID      string      `json:"id,omitempty"`
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
	Dropped bool        `json:"dropped"`
}

type reportResponse struct {
	Nodes  int             `json:"nodes"`
	Edges  int             `json:"edges"`
	Issues []issueResponse `json:"issues"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	var v *render.View
	s.with(func(e *engine.Engine) { v = e.View() })
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var resp reportResponse
	s.with(func(e *engine.Engine) {
		rep := e.Report()
		resp = reportResponse{Nodes: rep.Nodes, Edges: rep.Edges, Issues: []issueResponse{}}
		for _, is := range rep.Issues {
			resp.Issues = append(resp.Issues, issueResponse{
				Record:  is.Record,
				Index:   is.Index,
				ID:      is.ID,
				Code:    is.Err.Code,
				Message: is.Err.Message,
				Dropped: is.Dropped(),
			})
		}
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var ids []string
	s.with(func(e *engine.Engine) { ids = graph.NodeIDs(e.Search(r.URL.Query().Get("q"))) })
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"nodes": ids})
}

func (s *Server) handleForce(w http.ResponseWriter, r *http.Request) {
	var resp any
	s.with(func(e *engine.Engine) { resp = e.ForceParams() })
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	var v *render.View
	s.with(func(e *engine.Engine) { v = e.View() })
	svg, err := nodelink.RenderSVG(r.Context(), nodelink.ToDOT(v, nodelink.Options{Detailed: r.URL.Query().Has("detailed")}))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render svg"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Node string `json:"node"`
		Attr string `json:"attr"`
	}
	if !decode(w, r, &req) {
		return
	}
	var resp traceResponse
	s.with(func(e *engine.Engine) {
		resp = newTraceResponse(e, e.OnAttributeClick(r.Context(), req.Node, req.Attr), true)
	})
	writeJSON(w, http.StatusOK, resp)
}

func newTraceResponse(e *engine.Engine, res trace.Result, withView bool) traceResponse {
	resp := traceResponse{
		Focus: res.Focus,
		Nodes: nonNil(res.NodeIDs(e.Graph())),
		Edges: nonNil(res.EdgeIDs(e.Graph())),
		Attrs: res.Attrs,
	}
	if resp.Attrs == nil {
		resp.Attrs = map[string][]string{}
	}
	if withView {
		resp.View = e.View()
	}
	return resp
}

func (s *Server) handleNeighborhood(w http.ResponseWriter, r *http.Request) {
	var (
		resp traceResponse
		err  error
	)
	s.with(func(e *engine.Engine) {
		var res trace.Result
		if res, err = e.Neighborhood(chi.URLParam(r, "id")); err == nil {
			resp = newTraceResponse(e, res, false)
		}
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	var resp traceResponse
	s.with(func(e *engine.Engine) {
		resp = newTraceResponse(e, e.OnNodeHover(chi.URLParam(r, "id")), true)
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	var v *render.View
	s.with(func(e *engine.Engine) {
		e.OnNodeLeave()
		v = e.View()
	})
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var v *render.View
	s.with(func(e *engine.Engine) {
		e.Reset()
		v = e.View()
	})
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleOrientation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Orientation string `json:"orientation"`
	}
	if !decode(w, r, &req) {
		return
	}
	var (
		v   *render.View
		err error
	)
	s.with(func(e *engine.Engine) {
		if err = e.SetOrientation(r.Context(), req.Orientation); err == nil {
			v = e.View()
		}
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleExpandAll(w http.ResponseWriter, r *http.Request) {
	s.bulk(w, r, (*engine.Engine).ExpandAll)
}

func (s *Server) handleCollapseAll(w http.ResponseWriter, r *http.Request) {
	s.bulk(w, r, (*engine.Engine).CollapseAll)
}

func (s *Server) bulk(w http.ResponseWriter, r *http.Request, op func(*engine.Engine, context.Context) (int, error)) {
	var (
		resp countResponse
		err  error
	)
	s.with(func(e *engine.Engine) {
		resp.Changed, err = op(e, r.Context())
		resp.View = e.View()
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var (
		resp toggleResponse
		err  error
	)
	s.with(func(e *engine.Engine) {
		resp.ID = id
		resp.Expanded, err = e.OnNodeToggle(r.Context(), id)
		resp.View = e.View()
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	var (
		p   graph.Point
		err error
	)
	s.with(func(e *engine.Engine) { p, err = e.Focus(r.Context(), chi.URLParam(r, "id")) })
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	var (
		resp nodeResponse
		err  error
	)
	s.with(func(e *engine.Engine) {
		var n *graph.Node
		if n, err = e.Node(chi.URLParam(r, "id")); err != nil {
			return
		}
		resp = nodeResponse{
			ID:         n.ID,
			Label:      n.Label(),
			Category:   n.Category,
			Layer:      n.Layer,
			Schema:     n.Schema,
			Attributes: []attributeResponse{},
			Expanded:   n.Expanded,
			InDegree:   n.InDegree,
			OutDegree:  n.OutDegree,
			Upstream:   []string{},
			Downstream: []string{},
			Payload:    n.Payload,
			Position:   n.Position,
			Size:       n.Size,
		}
		for _, a := range n.Attributes {
			resp.Attributes = append(resp.Attributes, attributeResponse{a.Name, a.DataType, a.IsPrimaryKey})
		}
		for _, ed := range e.Graph().Edges() {
			if ed.Target == n.ID {
				resp.Upstream = append(resp.Upstream, ed.ID)
			}
			if ed.Source == n.ID {
				resp.Downstream = append(resp.Downstream, ed.ID)
			}
		}
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEdge(w http.ResponseWriter, r *http.Request) {
	var (
		resp edgeResponse
		err  error
	)
	s.with(func(e *engine.Engine) {
		var ed *graph.Edge
		if ed, err = e.Edge(chi.URLParam(r, "id")); err != nil {
			return
		}
		resp = edgeResponse{
			ID:         ed.ID,
			Source:     ed.Source,
			Target:     ed.Target,
			SourceAttr: ed.SourceAttr,
			TargetAttr: ed.TargetAttr,
			Label:      ed.Label,
			UpdatedAt:  ed.UpdatedAt,
			Logic:      ed.Logic,
			ScriptName: ed.ScriptName,
			BackEdge:   ed.BackEdge,
			Payload:    ed.Payload,
		}
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Helpers
// =============================================================================

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, code.HTTPStatus(), errorResponse{Code: code, Message: errors.UserMessage(err)})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
