package graph

import (
	"fmt"

	"github.com/hornverify/hornverify/pkg/errs"
	"github.com/hornverify/hornverify/pkg/term"
)

// HyperEdge is a (possibly) non-linear directed edge: From is a
// non-empty ordered list of source predicates (spec.md §3).
type HyperEdge struct {
	ID    EdgeID
	From  []VertexID
	To    VertexID
	Label term.Term
}

// HyperGraph is a directed hypergraph whose edges may have more than
// one source. A HyperGraph all of whose edges have exactly one source
// is normal (spec.md §3).
type HyperGraph struct {
	store *term.Store

	vertices map[VertexID]*Vertex
	edges    map[EdgeID]*HyperEdge

	nextVertex VertexID
	nextEdge   EdgeID

	entry VertexID
	exit  VertexID
}

// NewHyperGraph allocates an empty hypergraph with entry/exit already
// present.
func NewHyperGraph(store *term.Store) *HyperGraph {
	hg := &HyperGraph{
		store:    store,
		vertices: make(map[VertexID]*Vertex),
		edges:    make(map[EdgeID]*HyperEdge),
	}

	hg.entry = hg.addNamedVertex("true", nil)
	hg.exit = hg.addNamedVertex("false", nil)

	return hg
}

func (hg *HyperGraph) addNamedVertex(name string, args []Arg) VertexID {
	id := hg.nextVertex
	hg.nextVertex++
	hg.vertices[id] = &Vertex{ID: id, Name: name, Args: args}

	return id
}

// Store returns the backing term arena.
func (hg *HyperGraph) Store() *term.Store { return hg.store }

// Entry returns the distinguished entry vertex.
func (hg *HyperGraph) Entry() VertexID { return hg.entry }

// Exit returns the distinguished exit vertex.
func (hg *HyperGraph) Exit() VertexID { return hg.exit }

// AddVertex declares a new predicate vertex.
func (hg *HyperGraph) AddVertex(name string, args []Arg) VertexID {
	return hg.addNamedVertex(name, args)
}

// Vertex looks up a vertex by id.
func (hg *HyperGraph) Vertex(id VertexID) *Vertex { return hg.vertices[id] }

// Vertices returns every vertex id.
func (hg *HyperGraph) Vertices() []VertexID {
	out := make([]VertexID, 0, len(hg.vertices))
	for id := range hg.vertices {
		out = append(out, id)
	}

	return out
}

// AddEdge inserts a new hyperedge and returns its fresh id.
func (hg *HyperGraph) AddEdge(from []VertexID, to VertexID, label term.Term) EdgeID {
	id := hg.nextEdge
	hg.nextEdge++
	hg.edges[id] = &HyperEdge{ID: id, From: append([]VertexID(nil), from...), To: to, Label: label}

	return id
}

// Edge looks up an edge by id.
func (hg *HyperGraph) Edge(id EdgeID) *HyperEdge { return hg.edges[id] }

// Edges returns every live edge.
func (hg *HyperGraph) Edges() []*HyperEdge {
	out := make([]*HyperEdge, 0, len(hg.edges))
	for _, e := range hg.edges {
		out = append(out, e)
	}

	return out
}

// DeleteEdge erases an edge by id.
func (hg *HyperGraph) DeleteEdge(id EdgeID) { delete(hg.edges, id) }

// StateVars mirrors Graph.StateVars.
func (hg *HyperGraph) StateVars(id VertexID) []term.VarKey {
	v := hg.vertices[id]
	out := make([]term.VarKey, len(v.Args))

	for i, a := range v.Args {
		out[i] = term.VarKey{Base: a.Name, Time: 0}
	}

	return out
}

// NextVars mirrors Graph.NextVars.
func (hg *HyperGraph) NextVars(id VertexID) []term.VarKey {
	v := hg.vertices[id]
	out := make([]term.VarKey, len(v.Args))

	for i, a := range v.Args {
		out[i] = term.VarKey{Base: a.Name, Time: 1}
	}

	return out
}

// IsNormal reports whether every edge of hg has exactly one source
// (original_source ChcGraph.cc, ChcDirectedHyperGraph::isNormalGraph).
func (hg *HyperGraph) IsNormal() bool {
	for _, e := range hg.edges {
		if len(e.From) != 1 {
			return false
		}
	}

	return true
}

// ToNormalGraph lowers a normal hypergraph (every edge single-source)
// to a Graph. It is an error to call this on a hypergraph that is not
// normal.
func (hg *HyperGraph) ToNormalGraph() (*Graph, error) {
	if !hg.IsNormal() {
		return nil, fmt.Errorf("ToNormalGraph: graph contains a hyperedge with more than one source")
	}

	g := &Graph{
		store:      hg.store,
		vertices:   make(map[VertexID]*Vertex, len(hg.vertices)),
		edges:      make(map[EdgeID]*Edge, len(hg.edges)),
		nextVertex: hg.nextVertex,
		nextEdge:   hg.nextEdge,
		entry:      hg.entry,
		exit:       hg.exit,
	}

	for id, v := range hg.vertices {
		g.vertices[id] = &Vertex{ID: v.ID, Name: v.Name, Args: v.Args}
	}

	for id, e := range hg.edges {
		g.edges[id] = &Edge{ID: id, From: e.From[0], To: e.To, Label: e.Label}
	}

	return g, nil
}

// ToHyperGraph lifts a normal Graph to a single-source HyperGraph
// (original_source ChcGraph.cc, ChcDirectedGraph::toHyperGraph).
func (g *Graph) ToHyperGraph() *HyperGraph {
	hg := &HyperGraph{
		store:      g.store,
		vertices:   make(map[VertexID]*Vertex, len(g.vertices)),
		edges:      make(map[EdgeID]*HyperEdge, len(g.edges)),
		nextVertex: g.nextVertex,
		nextEdge:   g.nextEdge,
		entry:      g.entry,
		exit:       g.exit,
	}

	for id, v := range g.vertices {
		hg.vertices[id] = &Vertex{ID: v.ID, Name: v.Name, Args: v.Args}
	}

	for id, e := range g.edges {
		hg.edges[id] = &HyperEdge{ID: id, From: []VertexID{e.From}, To: e.To, Label: e.Label}
	}

	return hg
}

// VertexInstances counts, for each hyperedge, the zero-based
// occurrence index of each of its (possibly repeated) sources; used
// to disambiguate multiple occurrences of the same predicate within a
// single hyperedge, per spec.md §3 "different instance indices"
// (original_source ChcGraph.cc, VertexInstances).
type VertexInstances struct {
	counts map[EdgeID][]int
}

// NewVertexInstances computes the instance table for hg.
func NewVertexInstances(hg *HyperGraph) *VertexInstances {
	vi := &VertexInstances{counts: make(map[EdgeID][]int)}

	for id, e := range hg.edges {
		seen := make(map[VertexID]int)
		counts := make([]int, len(e.From))

		for i, src := range e.From {
			counts[i] = seen[src]
			seen[src]++
		}

		vi.counts[id] = counts
	}

	return vi
}

// InstanceOf returns the occurrence index of the sourceIndex-th source
// of edge eid.
func (vi *VertexInstances) InstanceOf(eid EdgeID, sourceIndex int) int {
	return vi.counts[eid][sourceIndex]
}

// DeleteFalseEdges drops every edge whose label is syntactically false
// (spec.md §4.1 stage 3).
func (hg *HyperGraph) DeleteFalseEdges() {
	for id, e := range hg.edges {
		if hg.store.IsFalse(e.Label) {
			delete(hg.edges, id)
		}
	}
}

// DeleteNode erases sym itself along with every edge incident to it,
// as either a source or the target.
func (hg *HyperGraph) DeleteNode(sym VertexID) {
	for id, e := range hg.edges {
		if e.To == sym {
			delete(hg.edges, id)
			continue
		}

		for _, s := range e.From {
			if s == sym {
				delete(hg.edges, id)
				break
			}
		}
	}

	delete(hg.vertices, sym)
}

// MergeMultiEdges groups single-source edges by (from, to) and
// replaces each group of two or more by a single edge whose label is
// the disjunction of the group's labels (spec.md §4.1 stage 1).
// Hyperedges with more than one source are excluded from merging, as
// specified. It returns whether any merge happened.
func (hg *HyperGraph) MergeMultiEdges() bool {
	type key struct {
		from VertexID
		to   VertexID
	}

	buckets := make(map[key][]EdgeID)

	for id, e := range hg.edges {
		if len(e.From) != 1 {
			continue
		}

		buckets[key{e.From[0], e.To}] = append(buckets[key{e.From[0], e.To}], id)
	}

	changed := false

	for _, bucket := range buckets {
		if len(bucket) < 2 {
			continue
		}

		labels := make([]term.Term, len(bucket))
		for i, id := range bucket {
			labels[i] = hg.edges[id].Label
		}

		hg.edges[bucket[0]].Label = hg.store.Or(labels...)

		for _, id := range bucket[1:] {
			delete(hg.edges, id)
		}

		changed = true
	}

	return changed
}

// mergeLabels conjoins the incoming and outgoing edge labels across a
// contracted vertex, renaming the contracted vertex's next-state
// variables in the incoming label to its state variables so they line
// up with the outgoing label's use of them, then eliminates every
// auxiliary variable introduced along the way
// (original_source ChcGraph.cc, ChcDirectedGraph::mergeLabels).
func (hg *HyperGraph) mergeLabels(incoming, outgoing *HyperEdge) term.Term {
	contracted := outgoing.From[0]
	subst := make(map[term.VarKey]term.Term)
	nextVars := hg.NextVars(contracted)
	stateVars := hg.StateVars(contracted)
	sortsOf := hg.vertices[contracted].Args

	for i := range nextVars {
		subst[nextVars[i]] = hg.store.Var(stateVars[i], sortsOf[i].Sort)
	}

	renamedIncoming := hg.store.Substitute(incoming.Label, subst)
	combined := hg.store.And(renamedIncoming, outgoing.Label)

	keep := append(append([]term.VarKey(nil), hg.StateVars(incoming.From[0])...), hg.NextVars(outgoing.To)...)

	return hg.store.TrivialQuantifierEliminationExcept(combined, keep)
}

// ContractVertex eliminates a non-loop vertex by contraction
// (spec.md §4.1 stage 2): for each pair (incoming, outgoing) edge at
// sym, it emits a new edge from the incoming source to the outgoing
// target whose label is the conjunction of the two labels (after
// renaming), then drops all edges touching sym. If any incident edge
// is a genuine hyperedge (more than one source), contraction fails
// with an *errs.ContractionBlocker rather than approximating.
func (hg *HyperGraph) ContractVertex(sym VertexID) ([]EdgeID, error) {
	adj := NewAdjacency(hg)

	incoming := adj.Incoming(sym)
	outgoing := adj.Outgoing(sym)

	for _, eid := range incoming {
		if len(hg.edges[eid].From) != 1 {
			return nil, &errs.ContractionBlocker{Vertex: hg.vertices[sym].Name}
		}
	}

	for _, eid := range outgoing {
		if len(hg.edges[eid].From) != 1 {
			return nil, &errs.ContractionBlocker{Vertex: hg.vertices[sym].Name}
		}
	}

	var created []EdgeID

	for _, inID := range incoming {
		in := hg.edges[inID]

		for _, outID := range outgoing {
			out := hg.edges[outID]
			label := hg.mergeLabels(in, out)
			id := hg.AddEdge(in.From, out.To, label)
			created = append(created, id)
		}
	}

	hg.DeleteNode(sym)

	return created, nil
}

// ContractTrivialChain merges a linear chain of single-source edges
// v0->v1->...->vn into a single summary edge v0->vn, removing the
// intermediate vertices. The chain must have at least two edges
// (original_source ChcGraph.cc, contractTrivialChain).
func (hg *HyperGraph) ContractTrivialChain(chain []EdgeID) (EdgeID, error) {
	if len(chain) < 2 {
		return 0, fmt.Errorf("ContractTrivialChain: chain must have at least two edges")
	}

	labels := make([]term.Term, len(chain))
	subst := make(map[term.VarKey]term.Term)

	source := hg.edges[chain[0]].From[0]
	target := hg.edges[chain[len(chain)-1]].To

	for i, eid := range chain {
		labels[i] = hg.edges[eid].Label

		if i+1 < len(chain) {
			common := hg.edges[eid].To
			next := hg.edges[chain[i+1]].From[0]

			if common != next {
				return 0, fmt.Errorf("ContractTrivialChain: chain is not contiguous at index %d", i)
			}

			nextVars := hg.NextVars(common)
			stateVars := hg.StateVars(common)
			sortsOf := hg.vertices[common].Args

			for j := range nextVars {
				subst[nextVars[j]] = hg.store.Var(stateVars[j], sortsOf[j].Sort)
			}
		}
	}

	combined := hg.store.Substitute(hg.store.And(labels...), subst)
	keep := append(append([]term.VarKey(nil), hg.StateVars(source)...), hg.NextVars(target)...)
	simplified := hg.store.TrivialQuantifierEliminationExcept(combined, keep)

	newID := hg.AddEdge([]VertexID{source}, target, simplified)

	for _, eid := range chain[:len(chain)-1] {
		hg.DeleteNode(hg.edges[eid].To)
	}

	for _, eid := range chain {
		delete(hg.edges, eid)
	}

	return newID, nil
}
