// Package graph implements the Graph Model of spec.md §2/§3: a
// directed (hyper)graph whose vertices are uninterpreted predicates
// and whose edges carry interpreted labels over the source and target
// predicate arguments, with canonical state/next-state argument
// versions per vertex. Grounded on
// original_source/src/graph/ChcGraph.{h,cc} (ChcDirectedGraph,
// ChcDirectedHyperGraph, AdjacencyListsGraphRepresentation).
package graph

import (
	"fmt"

	"github.com/hornverify/hornverify/pkg/term"
)

// VertexID is an arena-local identifier for a predicate vertex
// (spec.md §9 "Cyclic ownership" — identifiers, not pointers).
type VertexID uint32

// EdgeID is an arena-local identifier for an edge. Edge identifiers
// are unique within a graph and stable under mutation until that edge
// is erased (spec.md §3 Graph invariants).
type EdgeID uint32

// Arg is one formal argument of a predicate's canonical signature.
type Arg struct {
	Name string
	Sort term.Sort
}

// Vertex is a predicate symbol together with its canonical argument
// tuple.
type Vertex struct {
	ID   VertexID
	Name string
	Args []Arg
}

// Signature returns the base variable names of v's canonical
// arguments, in order — the X vector of spec.md §3.
func (v *Vertex) Signature() term.Signature {
	sig := make(term.Signature, len(v.Args))
	for i, a := range v.Args {
		sig[i] = a.Name
	}

	return sig
}

// Edge is a normal (single-source) directed edge: (from, to, label,
// id), as per spec.md §3.
type Edge struct {
	ID    EdgeID
	From  VertexID
	To    VertexID
	Label term.Term
}

// Graph is a normal directed graph: every edge has exactly one source
// (spec.md §3 Graph invariants).
type Graph struct {
	store *term.Store

	vertices map[VertexID]*Vertex
	edges    map[EdgeID]*Edge

	nextVertex VertexID
	nextEdge   EdgeID

	entry VertexID
	exit  VertexID
}

// NewGraph allocates an empty graph backed by store, with its
// distinguished entry ("true") and exit ("false") vertices already
// present (spec.md §3: entry/exit model the true/false predicates).
func NewGraph(store *term.Store) *Graph {
	g := &Graph{
		store:    store,
		vertices: make(map[VertexID]*Vertex),
		edges:    make(map[EdgeID]*Edge),
	}

	g.entry = g.addNamedVertex("true", nil)
	g.exit = g.addNamedVertex("false", nil)

	return g
}

// Store returns the term arena this graph's labels are interned in.
func (g *Graph) Store() *term.Store { return g.store }

// Entry returns the distinguished entry vertex.
func (g *Graph) Entry() VertexID { return g.entry }

// Exit returns the distinguished exit vertex.
func (g *Graph) Exit() VertexID { return g.exit }

func (g *Graph) addNamedVertex(name string, args []Arg) VertexID {
	id := g.nextVertex
	g.nextVertex++
	g.vertices[id] = &Vertex{ID: id, Name: name, Args: args}

	return id
}

// AddVertex declares a new predicate vertex with the given canonical
// argument tuple.
func (g *Graph) AddVertex(name string, args []Arg) VertexID {
	return g.addNamedVertex(name, args)
}

// Vertex looks up a vertex by id.
func (g *Graph) Vertex(id VertexID) *Vertex { return g.vertices[id] }

// Vertices returns every vertex id, including entry and exit.
func (g *Graph) Vertices() []VertexID {
	out := make([]VertexID, 0, len(g.vertices))
	for id := range g.vertices {
		out = append(out, id)
	}

	return out
}

// AddEdge inserts a new edge and returns its fresh id.
func (g *Graph) AddEdge(from, to VertexID, label term.Term) EdgeID {
	id := g.nextEdge
	g.nextEdge++
	g.edges[id] = &Edge{ID: id, From: from, To: to, Label: label}

	return id
}

// Edge looks up an edge by id, or nil if it has been erased.
func (g *Graph) Edge(id EdgeID) *Edge { return g.edges[id] }

// Edges returns every live edge.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}

	return out
}

// DeleteEdge erases an edge by id.
func (g *Graph) DeleteEdge(id EdgeID) { delete(g.edges, id) }

// StateVars returns the canonical state-version (time 0) variable keys
// of v's arguments: used when v appears as the source of an edge.
func (g *Graph) StateVars(id VertexID) []term.VarKey {
	v := g.vertices[id]
	out := make([]term.VarKey, len(v.Args))

	for i, a := range v.Args {
		out[i] = term.VarKey{Base: a.Name, Time: 0}
	}

	return out
}

// NextVars returns the canonical next-state-version (time 1) variable
// keys of v's arguments: used when v appears as the target of an
// edge.
func (g *Graph) NextVars(id VertexID) []term.VarKey {
	v := g.vertices[id]
	out := make([]term.VarKey, len(v.Args))

	for i, a := range v.Args {
		out[i] = term.VarKey{Base: a.Name, Time: 1}
	}

	return out
}

// StateTerm returns the state-version term for the i-th argument of
// vertex id.
func (g *Graph) StateTerm(id VertexID, i int) term.Term {
	v := g.vertices[id]
	return g.store.Var(term.VarKey{Base: v.Args[i].Name, Time: 0}, v.Args[i].Sort)
}

// NextTerm returns the next-state-version term for the i-th argument
// of vertex id.
func (g *Graph) NextTerm(id VertexID, i int) term.Term {
	v := g.vertices[id]
	return g.store.Var(term.VarKey{Base: v.Args[i].Name, Time: 1}, v.Args[i].Sort)
}

func (g *Graph) renameMap(from, to []term.VarKey, args []Arg) map[term.VarKey]term.Term {
	subst := make(map[term.VarKey]term.Term, len(from))

	for i := range from {
		subst[from[i]] = g.store.Var(to[i], args[i].Sort)
	}

	return subst
}

// Reverse returns a new graph with the same vertices, canonical
// signatures, entry and exit, and every edge reversed: its
// source/target endpoints are swapped (with entry and exit exchanged
// wherever they occur as an endpoint) and its label has state and
// next-state variables exchanged.
//
// The original Golem implementation (original_source ChcGraph.cc,
// ChcDirectedGraph::reverse) computes a swapTrueFalse remapping of the
// reversed edge's endpoints but never assigns the result back — a
// latent bug flagged as an Open Question in spec.md §9. This
// implementation resolves the question by explicitly remapping
// entry<->exit on the reversed endpoints (see TestReverseRemapsEntryExit).
func (g *Graph) Reverse() *Graph {
	r := &Graph{
		store:      g.store,
		vertices:   make(map[VertexID]*Vertex, len(g.vertices)),
		edges:      make(map[EdgeID]*Edge, len(g.edges)),
		nextVertex: g.nextVertex,
		nextEdge:   g.nextEdge,
		entry:      g.entry,
		exit:       g.exit,
	}

	for id, v := range g.vertices {
		r.vertices[id] = &Vertex{ID: v.ID, Name: v.Name, Args: v.Args}
	}

	swap := func(id VertexID) VertexID {
		switch id {
		case g.entry:
			return g.exit
		case g.exit:
			return g.entry
		default:
			return id
		}
	}

	for id, e := range g.edges {
		subst := g.renameMap(g.StateVars(e.From), g.NextVars(e.From), g.vertices[e.From].Args)
		for k, v := range g.renameMap(g.NextVars(e.To), g.StateVars(e.To), g.vertices[e.To].Args) {
			subst[k] = v
		}

		newLabel := g.store.Substitute(e.Label, subst)
		r.edges[id] = &Edge{ID: id, From: swap(e.To), To: swap(e.From), Label: newLabel}
	}

	return r
}

// String renders a one-line vertex/edge count summary, for diagnostics.
func (g *Graph) String() string {
	return fmt.Sprintf("Graph[%d vertices, %d edges]", len(g.vertices), len(g.edges))
}
