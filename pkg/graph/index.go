package graph

// Index provides O(1) lookup of a graph's edges by node and by endpoint.
//
// Both the canonical endpoints of each edge (attribute-level when the edge
// names an attribute) and the endpoints it is currently drawn between are
// indexed, so lookups work whatever the expanded state of the nodes. Keys
// are structural (node, attribute) pairs rather than handle strings, so an
// attribute named "node" or dashed ids never share a bucket. Slices keep
// edge insertion order.
//
// An Index is a snapshot. It records the graph revision it was built from;
// once handles are remapped [Index.Stale] reports true and callers rebuild it
// with [NewIndex].
type Index struct {
	graph    *Graph
	revision uint64
	from     map[string][]*Edge
	to       map[string][]*Edge
	fromEP   map[Endpoint][]*Edge
	toEP     map[Endpoint][]*Edge
}

// NewIndex builds an index over the current edges of g.
func NewIndex(g *Graph) *Index {
	idx := &Index{
		graph:    g,
		revision: g.Revision(),
		from:     make(map[string][]*Edge),
		to:       make(map[string][]*Edge),
		fromEP:   make(map[Endpoint][]*Edge),
		toEP:     make(map[Endpoint][]*Edge),
	}
	for _, e := range g.edges {
		idx.from[e.Source] = append(idx.from[e.Source], e)
		idx.to[e.Target] = append(idx.to[e.Target], e)

		src := e.SourceEndpoint()
		idx.fromEP[src] = append(idx.fromEP[src], e)
		if cur := CurrentEndpoint(g.nodes[e.Source], e.SourceAttr); cur != src {
			idx.fromEP[cur] = append(idx.fromEP[cur], e)
		}

		dst := e.TargetEndpoint()
		idx.toEP[dst] = append(idx.toEP[dst], e)
		if cur := CurrentEndpoint(g.nodes[e.Target], e.TargetAttr); cur != dst {
			idx.toEP[cur] = append(idx.toEP[cur], e)
		}
	}
	return idx
}

// EdgesFrom returns the edges leaving node id.
func (idx *Index) EdgesFrom(id string) []*Edge { return idx.from[id] }

// EdgesTo returns the edges entering node id.
func (idx *Index) EdgesTo(id string) []*Edge { return idx.to[id] }

// EdgesFromEndpoint returns the edges whose source endpoint is ep.
func (idx *Index) EdgesFromEndpoint(ep Endpoint) []*Edge { return idx.fromEP[ep] }

// EdgesToEndpoint returns the edges whose target endpoint is ep.
func (idx *Index) EdgesToEndpoint(ep Endpoint) []*Edge { return idx.toEP[ep] }

// Revision returns the graph revision the index was built from.
func (idx *Index) Revision() uint64 { return idx.revision }

// Stale reports whether the index no longer describes g, either because it
// was built for another graph or because g has changed since.
func (idx *Index) Stale(g *Graph) bool { return idx.graph != g || idx.revision != g.Revision() }
