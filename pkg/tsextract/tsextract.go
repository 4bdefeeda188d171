// Package tsextract implements the Transition-System Extractor of
// spec.md §4.2: recognising the entry -> L -> exit single-self-loop
// shape a rewritten graph should have and materialising it into the
// (X, X', A, Init, Tr, Bad) tuple the k-induction and accelerated
// engines operate over. Grounded on
// original_source/src/graph/ChcGraph.cc's getSelfLoopFor/toNormalGraph
// helpers.
package tsextract

import (
	"fmt"

	"github.com/hornverify/hornverify/pkg/graph"
	"github.com/hornverify/hornverify/pkg/term"
)

// TS is a transition system extracted from a single-loop graph
// fragment: X is the current-state vector, Xp its next-state
// counterpart, A the predicate name the loop vertex carried, Init the
// initiation formula over X, Tr the transition relation over X ∪ Xp,
// and Bad the formula over X characterising unsafe states.
type TS struct {
	X     []term.VarKey
	Xp    []term.VarKey
	Sorts []term.Sort
	A     string
	Init  term.Term
	Tr    term.Term
	Bad   term.Term
}

// IsTransitionSystem reports whether, after discounting entry and
// exit, g consists of exactly one vertex L with edges exactly
// {entry->L, L->L, L->exit} (spec.md §4.2).
func IsTransitionSystem(g *graph.Graph) bool {
	_, ok := findLoopVertex(g)
	return ok
}

// findLoopVertex returns the single non-terminal vertex of g, if and
// only if g's edge set is exactly {entry->L, L->L, L->exit}.
func findLoopVertex(g *graph.Graph) (graph.VertexID, bool) {
	var loop graph.VertexID

	found := false

	for _, v := range g.Vertices() {
		if v == g.Entry() || v == g.Exit() {
			continue
		}

		if found {
			return 0, false
		}

		loop, found = v, true
	}

	if !found {
		return 0, false
	}

	var initEdges, loopEdges, badEdges int

	for _, e := range g.Edges() {
		switch {
		case e.From == g.Entry() && e.To == loop:
			initEdges++
		case e.From == loop && e.To == loop:
			loopEdges++
		case e.From == loop && e.To == g.Exit():
			badEdges++
		default:
			return 0, false
		}
	}

	if initEdges != 1 || loopEdges != 1 || badEdges != 1 {
		return 0, false
	}

	return loop, true
}

// ToTransitionSystem extracts the transition system from g, which
// must satisfy IsTransitionSystem(g).
func ToTransitionSystem(g *graph.Graph) (TS, error) {
	loop, ok := findLoopVertex(g)
	if !ok {
		return TS{}, fmt.Errorf("tsextract: graph is not of the entry -> L -> exit single-loop shape")
	}

	var initEdge, loopEdge, badEdge *graph.Edge

	for _, e := range g.Edges() {
		switch {
		case e.From == g.Entry() && e.To == loop:
			initEdge = e
		case e.From == loop && e.To == loop:
			loopEdge = e
		case e.From == loop && e.To == g.Exit():
			badEdge = e
		}
	}

	store := g.Store()

	x := g.StateVars(loop)
	xp := g.NextVars(loop)
	args := g.Vertex(loop).Args

	sorts := make([]term.Sort, len(args))
	for i, a := range args {
		sorts[i] = a.Sort
	}

	// Init's label is the entry->L edge label, written over L's
	// next-state variables (L is the target); rename them down to X.
	initRenamed := store.Substitute(initEdge.Label, renameSubst(store, xp, x, args))
	// Bad's label is the L->exit edge label, already written over L's
	// state variables (L is the source): the substitution is the
	// identity, named explicitly to mirror spec.md §4.2's phrasing.
	badRenamed := store.Substitute(badEdge.Label, renameSubst(store, x, x, args))

	sig := make(term.Signature, len(x))
	for i, v := range x {
		sig[i] = v.Base
	}

	if !store.IsPureState(initRenamed, sig) {
		return TS{}, fmt.Errorf("tsextract: Init is not a pure state formula over X (spec.md §4.4)")
	}

	if !store.IsPureTransition(loopEdge.Label, sig) {
		return TS{}, fmt.Errorf("tsextract: Tr is not a pure transition formula over X, X' (spec.md §4.4)")
	}

	if !store.IsPureState(badRenamed, sig) {
		return TS{}, fmt.Errorf("tsextract: Bad is not a pure state formula over X (spec.md §4.4)")
	}

	return TS{
		X:     x,
		Xp:    xp,
		Sorts: sorts,
		A:     g.Vertex(loop).Name,
		Init:  initRenamed,
		Tr:    loopEdge.Label,
		Bad:   badRenamed,
	}, nil
}

// renameSubst builds the substitution mapping each key in from to a
// Var term over the corresponding key in to, at the matching arg sort.
func renameSubst(store *term.Store, from, to []term.VarKey, args []graph.Arg) map[term.VarKey]term.Term {
	subst := make(map[term.VarKey]term.Term, len(from))

	for i := range from {
		subst[from[i]] = store.Var(to[i], args[i].Sort)
	}

	return subst
}

// Reverse swaps Init with Bad and substitutes X <-> X' throughout Tr,
// producing the transition system whose safety problem corresponds to
// backward reachability of the original (spec.md §4.2).
func Reverse(ts TS, store *term.Store) TS {
	subst := make(map[term.VarKey]term.Term, 2*len(ts.X))

	for i := range ts.X {
		subst[ts.X[i]] = store.Var(ts.Xp[i], ts.Sorts[i])
		subst[ts.Xp[i]] = store.Var(ts.X[i], ts.Sorts[i])
	}

	return TS{
		X:     ts.X,
		Xp:    ts.Xp,
		Sorts: ts.Sorts,
		A:     ts.A,
		Init:  ts.Bad,
		Tr:    store.Substitute(ts.Tr, subst),
		Bad:   ts.Init,
	}
}
