package graph

// Adjacency is a precomputed incoming/outgoing edge index over a
// HyperGraph, grounded on original_source/src/graph/ChcGraph.{h,cc}'s
// AdjacencyListsGraphRepresentation. It is a snapshot: edges added or
// removed from the underlying graph after construction are not
// reflected.
type Adjacency struct {
	incoming map[VertexID][]EdgeID
	outgoing map[VertexID][]EdgeID
}

// NewAdjacency builds the incoming/outgoing edge lists of hg.
func NewAdjacency(hg *HyperGraph) *Adjacency {
	a := &Adjacency{
		incoming: make(map[VertexID][]EdgeID),
		outgoing: make(map[VertexID][]EdgeID),
	}

	for id, e := range hg.edges {
		a.incoming[e.To] = append(a.incoming[e.To], id)

		for _, src := range e.From {
			a.outgoing[src] = append(a.outgoing[src], id)
		}
	}

	return a
}

// Incoming returns the ids of edges targeting v.
func (a *Adjacency) Incoming(v VertexID) []EdgeID { return a.incoming[v] }

// Outgoing returns the ids of edges sourced (at least partially) at v.
func (a *Adjacency) Outgoing(v VertexID) []EdgeID { return a.outgoing[v] }

// NewGraphAdjacency builds the equivalent index directly over a normal
// Graph, without requiring a ToHyperGraph conversion.
func NewGraphAdjacency(g *Graph) *Adjacency {
	a := &Adjacency{
		incoming: make(map[VertexID][]EdgeID),
		outgoing: make(map[VertexID][]EdgeID),
	}

	for id, e := range g.edges {
		a.incoming[e.To] = append(a.incoming[e.To], id)
		a.outgoing[e.From] = append(a.outgoing[e.From], id)
	}

	return a
}

// GetSelfLoopFor returns the id of an edge from v to itself, if any
// (the loop edge of the entry -> loop -> exit shape, spec.md §4.2).
// pkg/tsextract locates that edge with its own scan and does not call
// this.
func GetSelfLoopFor(g *Graph, v VertexID) (EdgeID, bool) {
	adj := NewGraphAdjacency(g)

	for _, eid := range adj.Outgoing(v) {
		if g.edges[eid].To == v {
			return eid, true
		}
	}

	return 0, false
}

// PostOrder returns the vertices of g reachable from root in
// depth-first post-order: a vertex is emitted only after all of its
// (graph-edge) successors have been emitted.
func PostOrder(g *Graph, root VertexID) []VertexID {
	adj := NewGraphAdjacency(g)

	visited := make(map[VertexID]bool)
	var order []VertexID

	var visit func(v VertexID)
	visit = func(v VertexID) {
		if visited[v] {
			return
		}

		visited[v] = true

		for _, eid := range adj.Outgoing(v) {
			visit(g.edges[eid].To)
		}

		order = append(order, v)
	}

	visit(root)

	return order
}

// ReversePostOrder returns PostOrder reversed: a standard topological
// approximation in which a vertex comes after its predecessors where
// possible. pkg/rewrite does not use it to order contraction.
func ReversePostOrder(g *Graph, root VertexID) []VertexID {
	order := PostOrder(g, root)

	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}

	return order
}

// ReverseDFS returns the vertices of g reachable from root by
// traversing edges backwards (from target to source) in depth-first
// order. Used to find the set of vertices that can reach a given
// vertex, e.g. the exit vertex when pruning dead predicates.
func ReverseDFS(g *Graph, root VertexID) []VertexID {
	adj := NewGraphAdjacency(g)

	visited := make(map[VertexID]bool)
	var order []VertexID

	var visit func(v VertexID)
	visit = func(v VertexID) {
		if visited[v] {
			return
		}

		visited[v] = true
		order = append(order, v)

		for _, eid := range adj.Incoming(v) {
			visit(g.edges[eid].From)
		}
	}

	visit(root)

	return order
}
